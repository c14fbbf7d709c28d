package main

import (
	"context"

	"github.com/desertthunder/propdesk/internal/server"
	"github.com/urfave/cli/v3"
)

// Stub runs the local stand-in backend until interrupted.
func (r *Runner) Stub(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Stub
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}
	if delay := cmd.Int("delay"); delay >= 0 {
		cfg.DelayMS = delay
	}

	srv := server.New(server.Opts{
		Stub:   cfg,
		Routes: r.config.Server,
		Upload: r.config.Upload,
		Logger: r.logger,
	})

	r.writePlain("Stub backend on http://%s (ctrl+c to stop)\n", srv.Addr())
	return srv.Start(ctx)
}
