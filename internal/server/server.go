package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/propdesk/internal/shared"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server is the stand-in backend.
type Server struct {
	echo   *echo.Echo
	addr   string
	delay  time.Duration
	ext    string
	field  string
	logger *log.Logger
	clock  func() time.Time
}

// Opts configures a [Server].
type Opts struct {
	Stub   shared.StubConfig
	Routes shared.ServerConfig
	Upload shared.UploadConfig
	Logger *log.Logger
}

// New creates a [Server] with its routes registered.
func New(opts Opts) *Server {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	s := &Server{
		echo:   echo.New(),
		addr:   opts.Stub.Addr(),
		delay:  time.Duration(opts.Stub.DelayMS) * time.Millisecond,
		ext:    opts.Upload.Extension,
		field:  opts.Upload.FieldName,
		logger: opts.Logger.With("component", "stub"),
		clock:  time.Now,
	}
	if s.ext == "" {
		s.ext = ".xlsx"
	}
	if s.field == "" {
		s.field = "file"
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	uploadPath, projectPath := opts.Routes.UploadPath, opts.Routes.ProjectPath
	if uploadPath == "" {
		uploadPath = "/upload"
	}
	if projectPath == "" {
		projectPath = "/download-project"
	}

	s.echo.GET("/", s.HandleHealth)
	s.echo.POST(uploadPath, s.HandleUpload)
	s.echo.POST(projectPath, s.HandleProject)
	return s
}

// Handler exposes the router for in-process use.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("stub backend listening", "addr", "http://"+s.addr)
		errc <- s.echo.Start(s.addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("stub backend shutting down")
		return s.echo.Shutdown(shutdown)
	}
}
