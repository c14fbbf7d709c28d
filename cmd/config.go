package main

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/propdesk/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the example configuration to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	r.logger.Info("config file created", "path", r.configPath)
	return r.writePlain("✓ Config written to %s\n", r.configPath)
}

// ConfigShow prints the effective configuration after file and flag overrides.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader("Effective configuration")
	if err := toml.NewEncoder(r.output).Encode(r.config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
