package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/propdesk/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrMissingArgument), errors.Is(err, shared.ErrInvalidArgument):
			logger.Error(err.Error())
			os.Exit(2)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}

// newApp builds the root command. Running it without a subcommand opens the TUI.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "propdesk",
		Usage:   "Process spreadsheets and download project archives from the terminal",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:    "downloads",
				Aliases: []string{"d"},
				Usage:   "Directory saved files are written to (overrides downloads.dir)",
			},
			&cli.StringFlag{
				Name:  "server",
				Usage: "Backend base URL (overrides server.base_url)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.Configure,
		Action:   r.TUI,
		Commands: r.register(),
	}
}
