package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/propdesk/internal/shared"
	"github.com/desertthunder/propdesk/internal/workflow"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// Upload sends a spreadsheet through the upload workflow and prints each status change.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("file")
	file, ok, err := workflow.LoadFile(raw, r.upload.Extension())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: a %s file path is required", shared.ErrMissingArgument, r.upload.Extension())
	}

	unsubscribe := r.upload.Subscribe(func(s workflow.UploadSnapshot) {
		r.writePlain("%s\n", s.Status)
	})
	defer unsubscribe()

	if err := r.upload.Submit(ctx, file); err != nil {
		return err
	}

	artifact := r.upload.Snapshot().Artifact
	r.writePlain("✓ Saved %s (%s)\n", artifact.Path, humanize.Bytes(uint64(artifact.Size)))
	return r.reveal(cmd, artifact)
}

// Project requests the archive for a listing URL, printing progress milestones as they change.
func (r *Runner) Project(ctx context.Context, cmd *cli.Command) error {
	target := cmd.StringArg("url")

	var mu sync.Mutex
	last := ""
	unsubscribe := r.project.Subscribe(func(s workflow.ProjectSnapshot) {
		mu.Lock()
		defer mu.Unlock()
		if s.Status == last {
			return
		}
		last = s.Status
		r.writePlain("%3.0f%% %s\n", s.Progress, s.Status)
	})
	defer unsubscribe()

	if err := r.project.Convert(ctx, target); err != nil {
		if alert := r.project.Snapshot().Alert; alert != "" {
			r.logger.Error(alert)
		}
		return err
	}

	artifact := r.project.Snapshot().Artifact
	r.writePlain("✓ Saved %s (%s)\n", artifact.Path, humanize.Bytes(uint64(artifact.Size)))
	return r.reveal(cmd, artifact)
}

// reveal opens artifact when --reveal is set. Failing to open is reported but not fatal.
func (r *Runner) reveal(cmd *cli.Command, artifact *workflow.Artifact) error {
	if artifact == nil || !cmd.Bool("reveal") {
		return nil
	}
	if err := r.opener(artifact.Path); err != nil {
		r.logger.Warn("could not open saved file", "path", artifact.Path, "error", err)
	}
	return nil
}
