package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/propdesk/internal/shared"
	"github.com/urfave/cli/v3"
)

// Status checks that the backend answers on its root path.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	base := r.config.Server.BaseURL
	r.logger.Info("checking backend", "url", base)

	resp, err := r.backend.Health(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if !resp.OK() {
		return fmt.Errorf("%w: %s answered with status %d", shared.ErrServiceUnavailable, base, resp.StatusCode)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"base_url": base,
			"status":   resp.StatusCode,
			"body":     resp.JSONData,
		}, true)
	}
	return r.writePlain("✓ Backend reachable at %s (HTTP %d)\n", base, resp.StatusCode)
}
