package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/propdesk/internal/services"
	"github.com/desertthunder/propdesk/internal/shared"
)

const (
	DefaultExtension = ".xlsx"

	StatusUploadDone   = "Done! File saved."
	StatusUploadFailed = "Error processing file."

	LabelProcessAnother = "Process Another File"
	LabelTryAgain       = "Try Again"
)

// SheetProcessor sends a spreadsheet to the processing endpoint.
//
// Implemented by [services.Backend].
type SheetProcessor interface {
	ProcessSheet(ctx context.Context, filename string, data []byte) (*services.APIResponse, error)
}

// UploadSnapshot is the observable state of the upload workflow.
type UploadSnapshot struct {
	Attempt    string
	State      State
	File       string    // Selected file name, empty when Idle
	Status     string    // Status line
	ResetLabel string    // Label of the reset affordance
	Artifact   *Artifact // Saved result after success
	Err        error     // Failure cause after failure
}

func (s UploadSnapshot) InputVisible() bool  { return s.State == Idle }
func (s UploadSnapshot) BusyVisible() bool   { return s.State == Busy }
func (s UploadSnapshot) StatusVisible() bool { return s.State != Idle }
func (s UploadSnapshot) ResetVisible() bool  { return s.State.Settled() }

// DownloadVisible is always false: the result is saved automatically.
func (s UploadSnapshot) DownloadVisible() bool { return false }

// UploadOpts configures an [UploadController].
type UploadOpts struct {
	Backend   SheetProcessor
	Saver     Saver
	Logger    *log.Logger
	Extension string
}

// UploadController owns the spreadsheet upload lifecycle: Idle → Busy → Succeeded|Failed → Idle.
type UploadController struct {
	backend SheetProcessor
	saver   Saver
	logger  *log.Logger
	ext     string

	mu     sync.Mutex
	snap   UploadSnapshot
	file   *SelectedFile
	events broadcaster[UploadSnapshot]
}

// NewUploadController creates an Idle [UploadController].
func NewUploadController(opts UploadOpts) *UploadController {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	return &UploadController{
		backend: opts.Backend,
		saver:   opts.Saver,
		logger:  opts.Logger.With("workflow", "upload"),
		ext:     opts.Extension,
	}
}

// Extension returns the required file extension.
func (c *UploadController) Extension() string {
	return c.ext
}

// Snapshot returns the current state.
func (c *UploadController) Snapshot() UploadSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Selected returns the file of the current attempt, if any.
func (c *UploadController) Selected() (SelectedFile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return SelectedFile{}, false
	}
	return *c.file, true
}

// Subscribe registers fn for every state change and returns a function that removes it.
func (c *UploadController) Subscribe(fn func(UploadSnapshot)) func() {
	return c.events.subscribe(fn)
}

// SubmitDropped submits the first of files. An empty drop is ignored.
func (c *UploadController) SubmitDropped(ctx context.Context, files []SelectedFile) error {
	if len(files) == 0 {
		return nil
	}
	return c.Submit(ctx, files[0])
}

// Submit validates file, uploads it, and saves the processed result. It blocks until the attempt settles.
//
// A file with the wrong extension returns a [*ValidationError] without changing state.
// Submitting while Busy returns [shared.ErrBusy] and is otherwise ignored.
func (c *UploadController) Submit(ctx context.Context, file SelectedFile) error {
	if err := CheckFile(file.Name, c.ext); err != nil {
		return err
	}

	c.mu.Lock()
	if c.snap.State == Busy {
		c.mu.Unlock()
		return shared.ErrBusy
	}
	attempt := shared.GenerateID()
	c.file = &file
	c.snap = UploadSnapshot{
		Attempt: attempt,
		State:   Busy,
		File:    file.Name,
		Status:  fmt.Sprintf("Processing %s...", file.Name),
	}
	snap := c.snap
	c.mu.Unlock()
	c.events.publish(snap)

	logger := c.logger.With("attempt", attempt, "file", file.Name)
	logger.Info("uploading spreadsheet", "bytes", len(file.Data))

	artifact, err := c.process(ctx, file)
	if err != nil {
		logger.Error("upload failed", "error", err)
		c.settle(attempt, UploadSnapshot{
			State:      Failed,
			Status:     StatusUploadFailed,
			ResetLabel: LabelTryAgain,
			Err:        err,
		})
		return err
	}

	logger.Info("processed file saved", "path", artifact.Path, "bytes", artifact.Size)
	c.settle(attempt, UploadSnapshot{
		State:      Succeeded,
		Status:     StatusUploadDone,
		ResetLabel: LabelProcessAnother,
		Artifact:   artifact,
	})
	return nil
}

func (c *UploadController) process(ctx context.Context, file SelectedFile) (*Artifact, error) {
	resp, err := c.backend.ProcessSheet(ctx, file.Name, file.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	filename := ResolveFilename(resp.Filename(), file.Name)
	path, err := c.saver.Save(resp.Body, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSaveFailed, err)
	}

	return &Artifact{Filename: filename, Path: path, Size: len(resp.Body)}, nil
}

// settle publishes the terminal snapshot of attempt, keeping the selected file name.
func (c *UploadController) settle(attempt string, next UploadSnapshot) {
	c.mu.Lock()
	if c.snap.Attempt != attempt {
		c.mu.Unlock()
		return
	}
	next.Attempt = attempt
	next.File = c.snap.File
	c.snap = next
	snap := c.snap
	c.mu.Unlock()
	c.events.publish(snap)
}

// Reset returns a settled workflow to Idle and clears the selection.
//
// It is a no-op while Idle or Busy.
func (c *UploadController) Reset() {
	c.mu.Lock()
	if !c.snap.State.Settled() {
		c.mu.Unlock()
		return
	}
	c.file = nil
	c.snap = UploadSnapshot{State: Idle}
	snap := c.snap
	c.mu.Unlock()
	c.events.publish(snap)
}
