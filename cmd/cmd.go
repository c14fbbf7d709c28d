// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func revealFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "reveal",
		Usage: "Open the saved file when done",
	}
}

// uploadCommand sends a spreadsheet for processing and saves the result.
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Aliases:   []string{"up"},
		Usage:     "Upload a spreadsheet for processing and save the result",
		ArgsUsage: "<file.xlsx>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file"},
		},
		Flags:  []cli.Flag{revealFlag()},
		Action: r.Upload,
	}
}

// projectCommand downloads the archive generated for a listing URL.
func projectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "project",
		Aliases:   []string{"convert"},
		Usage:     "Generate and download the project archive for a listing URL",
		ArgsUsage: "<url>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "url"},
		},
		Flags:  []cli.Flag{revealFlag()},
		Action: r.Project,
	}
}

// statusCommand checks that the backend answers.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Check that the processing backend is reachable",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Status,
	}
}

// configCommand handles configuration files.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write the example configuration to the --config path",
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration as TOML",
				Action: r.ConfigShow,
			},
		},
	}
}

// stubCommand runs the local stand-in backend.
func stubCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stub",
		Usage: "Run a local stand-in for the processing backend",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on (overrides stub.port)",
			},
			&cli.IntFlag{
				Name:  "delay",
				Usage: "Milliseconds the archive endpoint waits before answering (overrides stub.delay_ms)",
				Value: -1,
			},
		},
		Action: r.Stub,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal UI",
		Action:  r.TUI,
	}
}
