package workflow

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/propdesk/internal/services"
	"github.com/desertthunder/propdesk/internal/shared"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultArchiveName  = "project_files.zip"
	DefaultTickInterval = 800 * time.Millisecond
	DefaultMaxStep      = 5.0

	StatusConnecting  = "Connecting to server..."
	StatusDownloading = "Done! Downloading..."

	MsgEmptyURL         = "Please enter a valid URL"
	MsgGenerationFailed = "Generation failed"
)

// ProjectArchiver asks the archival endpoint to scrape a URL into an archive.
//
// Implemented by [services.Backend].
type ProjectArchiver interface {
	ArchiveProject(ctx context.Context, url string) (*services.APIResponse, error)
}

// ProjectSnapshot is the observable state of the archive download workflow.
type ProjectSnapshot struct {
	Attempt        string
	State          State
	URL            string
	Progress       float64   // Displayed percentage in [0,100]
	Status         string    // Status line
	TriggerEnabled bool      // Whether the convert trigger accepts input
	ErrorColor     bool      // Whether the progress bar shows the error color
	Alert          string    // Blocking alert text after failure
	Artifact       *Artifact // Saved archive after success
	Err            error     // Failure cause after failure
}

// ProgressVisible reports whether the progress UI has been revealed.
func (s ProjectSnapshot) ProgressVisible() bool { return s.State != Idle }

// ProjectOpts configures a [ProjectController].
type ProjectOpts struct {
	Backend     ProjectArchiver
	Saver       Saver
	Logger      *log.Logger
	ArchiveName string
	Interval    time.Duration  // Progress tick cadence
	MaxStep     float64        // Upper bound of a single random increment
	Rand        func() float64 // Source in [0,1); defaults to math/rand/v2
}

// ProjectController owns the URL-to-archive lifecycle.
//
// While Busy a ticker goroutine advances a synthetic [Estimate]. The ticker lives in a cancellation scope
// that is cancelled and joined as soon as the request settles, before the settlement is published.
type ProjectController struct {
	backend     ProjectArchiver
	saver       Saver
	logger      *log.Logger
	archiveName string
	interval    time.Duration
	maxStep     float64
	rand        func() float64
	tickLog     rate.Sometimes

	mu       sync.Mutex
	snap     ProjectSnapshot
	estimate Estimate
	events   broadcaster[ProjectSnapshot]
}

// NewProjectController creates an Idle [ProjectController] with its trigger enabled.
func NewProjectController(opts ProjectOpts) *ProjectController {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultTickInterval
	}
	if opts.MaxStep <= 0 {
		opts.MaxStep = DefaultMaxStep
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	return &ProjectController{
		backend:     opts.Backend,
		saver:       opts.Saver,
		logger:      opts.Logger.With("workflow", "project"),
		archiveName: NormalizeArchiveName(opts.ArchiveName),
		interval:    opts.Interval,
		maxStep:     opts.MaxStep,
		rand:        opts.Rand,
		tickLog:     rate.Sometimes{Interval: 5 * time.Second},
		snap:        ProjectSnapshot{State: Idle, TriggerEnabled: true},
	}
}

// ArchiveName returns the fixed name archives are saved under.
func (c *ProjectController) ArchiveName() string {
	return c.archiveName
}

// Snapshot returns the current state.
func (c *ProjectController) Snapshot() ProjectSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Subscribe registers fn for every state change and returns a function that removes it.
func (c *ProjectController) Subscribe(fn func(ProjectSnapshot)) func() {
	return c.events.subscribe(fn)
}

// Convert requests an archive of rawURL and saves it. It blocks until the archive is saved.
//
// A successful response settles the attempt as Succeeded before the save; a save fault then marks it Failed.
// A blank URL returns a [*ValidationError] without changing state.
// Converting while Busy returns [shared.ErrBusy] and is otherwise ignored.
// Failures return a [*FailureError]; the trigger is re-enabled on every exit path.
func (c *ProjectController) Convert(ctx context.Context, rawURL string) (err error) {
	target := strings.TrimSpace(rawURL)
	if target == "" {
		return &ValidationError{Message: MsgEmptyURL}
	}

	c.mu.Lock()
	if c.snap.State == Busy {
		c.mu.Unlock()
		return shared.ErrBusy
	}
	attempt := shared.GenerateID()
	c.estimate = Estimate{}
	c.snap = ProjectSnapshot{
		Attempt: attempt,
		State:   Busy,
		URL:     target,
		Status:  StatusConnecting,
	}
	snap := c.snap
	c.mu.Unlock()
	c.events.publish(snap)

	logger := c.logger.With("attempt", attempt, "url", target)
	logger.Info("requesting project archive")

	defer c.finish(attempt, logger, &err)
	stop := c.animate(ctx, attempt, logger)
	defer stop()

	body, err := c.request(ctx, target)
	stop()
	if err != nil {
		return c.fail(attempt, logger, err)
	}

	c.update(attempt, func(s *ProjectSnapshot) {
		c.estimate.Complete()
		s.State = Succeeded
		s.TriggerEnabled = true
		s.Progress = c.estimate.Display()
		s.Status = StatusDownloading
	})

	path, err := c.saver.Save(body, c.archiveName)
	if err != nil {
		return c.fail(attempt, logger, &FailureError{
			Reason: "Could not save " + c.archiveName,
			Err:    fmt.Errorf("%w: %v", shared.ErrSaveFailed, err),
		})
	}

	logger.Info("archive saved", "path", path, "bytes", len(body))
	c.update(attempt, func(s *ProjectSnapshot) {
		s.Status = "Done! Saved " + c.archiveName
		s.Artifact = &Artifact{Filename: c.archiveName, Path: path, Size: len(body)}
	})
	return nil
}

// request performs the single archival call and maps every failure to a [*FailureError].
func (c *ProjectController) request(ctx context.Context, target string) ([]byte, error) {
	resp, err := c.backend.ArchiveProject(ctx, target)
	if err != nil {
		return nil, &FailureError{
			Reason: MsgGenerationFailed,
			Err:    fmt.Errorf("%w: %v", shared.ErrAPIRequest, err),
		}
	}

	if !resp.OK() {
		reason := resp.ErrorMessage()
		if reason == "" {
			reason = MsgGenerationFailed
		}
		return nil, &FailureError{
			Reason: reason,
			Err:    fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode),
		}
	}

	return resp.Body, nil
}

// animate starts the progress ticker for attempt and returns the function that cancels and joins it.
func (c *ProjectController) animate(ctx context.Context, attempt string, logger *log.Logger) func() {
	scope, cancel := context.WithCancel(ctx)
	var g errgroup.Group

	g.Go(func() error {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-scope.Done():
				return nil
			case <-ticker.C:
				if scope.Err() != nil {
					return nil
				}
				c.tick(attempt, logger)
			}
		}
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = g.Wait()
		})
	}
}

func (c *ProjectController) tick(attempt string, logger *log.Logger) {
	c.mu.Lock()
	if c.snap.Attempt != attempt || c.snap.State != Busy || c.estimate.Done() {
		c.mu.Unlock()
		return
	}
	progress := c.estimate.Advance(c.rand() * c.maxStep)
	status := c.snap.Status
	if msg := Milestone(c.estimate.Value()); msg != "" {
		status = msg
	}
	if progress == c.snap.Progress && status == c.snap.Status {
		c.mu.Unlock()
		return
	}
	c.snap.Progress = progress
	c.snap.Status = status
	snap := c.snap
	c.mu.Unlock()

	c.tickLog.Do(func() { logger.Debug("progress tick", "estimate", snap.Progress) })
	c.events.publish(snap)
}

// update applies fn to the snapshot of attempt and publishes the result.
func (c *ProjectController) update(attempt string, fn func(*ProjectSnapshot)) {
	c.mu.Lock()
	if c.snap.Attempt != attempt {
		c.mu.Unlock()
		return
	}
	fn(&c.snap)
	snap := c.snap
	c.mu.Unlock()
	c.events.publish(snap)
}

func (c *ProjectController) fail(attempt string, logger *log.Logger, err error) error {
	reason := MsgGenerationFailed
	if ferr, ok := err.(*FailureError); ok {
		reason = ferr.Reason
	}
	logger.Error("project archive failed", "reason", reason, "error", err)

	c.update(attempt, func(s *ProjectSnapshot) {
		s.State = Failed
		s.TriggerEnabled = true
		s.Status = "Error: " + reason
		s.ErrorColor = true
		s.Alert = "Failed: " + reason
		s.Err = err
	})
	return err
}

// finish re-enables the trigger of attempt whatever happened, converting a panic into a failure.
func (c *ProjectController) finish(attempt string, logger *log.Logger, errp *error) {
	if r := recover(); r != nil {
		*errp = c.fail(attempt, logger, &FailureError{
			Reason: MsgGenerationFailed,
			Err:    fmt.Errorf("panic: %v", r),
		})
	}

	c.mu.Lock()
	if c.snap.Attempt != attempt || c.snap.TriggerEnabled {
		c.mu.Unlock()
		return
	}
	c.snap.TriggerEnabled = true
	if c.snap.State == Busy {
		c.snap.State = Failed
	}
	snap := c.snap
	c.mu.Unlock()
	c.events.publish(snap)
}
