package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/propdesk/internal/services"
	"github.com/desertthunder/propdesk/internal/shared"
	"github.com/desertthunder/propdesk/internal/workflow"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	backend    *services.Backend
	saver      *shared.DiskSaver
	upload     *workflow.UploadController
	project    *workflow.ProjectController
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	opener     func(string) error
	clientSet  bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Opener     func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Opener == nil {
		opts.Opener = shared.OpenPath
	}

	r := &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		clientSet:  opts.HTTPClient != nil,
		logger:     opts.Logger,
		output:     opts.Output,
		opener:     opts.Opener,
	}
	r.wire()
	return r
}

// wire rebuilds the transport, saver, and workflow controllers from the current config and logger.
func (r *Runner) wire() {
	if !r.clientSet {
		r.httpClient = &http.Client{Timeout: r.config.Server.Timeout()}
	}

	r.api = services.NewAPIService(r.config.Server.BaseURL, r.httpClient)
	r.backend = services.NewBackend(r.api, r.config.Server, r.config.Upload)
	r.saver = shared.NewDiskSaver(r.config.Downloads.Dir)
	r.upload = workflow.NewUploadController(workflow.UploadOpts{
		Backend:   r.backend,
		Saver:     r.saver,
		Logger:    r.logger,
		Extension: r.config.Upload.Extension,
	})
	r.project = workflow.NewProjectController(workflow.ProjectOpts{
		Backend:     r.backend,
		Saver:       r.saver,
		Logger:      r.logger,
		ArchiveName: r.config.Project.ArchiveName,
		Interval:    r.config.Project.TickInterval(),
		MaxStep:     r.config.Project.MaxStep,
	})
}

// SetLogger replaces the logger and rewires every component that logs.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.wire()
}

// Configure loads the --config file and applies flag overrides before any command runs.
//
// A missing config file is not an error: the embedded defaults apply.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.logger.Debug("loaded config", "path", r.configPath)
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	if dir := cmd.String("downloads"); dir != "" {
		r.config.Downloads.Dir = dir
	}
	if base := cmd.String("server"); base != "" {
		r.config.Server.BaseURL = base
	}
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	r.wire()
	return ctx, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		uploadCommand, projectCommand, statusCommand, configCommand, stubCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
