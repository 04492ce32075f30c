// Package server hosts the HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/clover/pkg/middleware"
)

// APIPrefix is the path every route group is mounted under.
const APIPrefix = "/api/v1"

// Config holds the HTTP listener settings.
type Config struct {
	ServiceName       string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
	AllowOrigins      []string
	DependsOn         []string
}

// Registrar adds its routes to a group.
type Registrar interface {
	Register(g *echo.Group)
}

// RegisterFunc adapts a plain function to Registrar.
type RegisterFunc func(g *echo.Group)

func (f RegisterFunc) Register(g *echo.Group) { f(g) }

// Route mounts a Registrar at a path below APIPrefix.
type Route struct {
	Path    string
	Handler Registrar
}

// Server is the echo instance plus its http.Server. It implements
// startup.StartupDependency so it only listens once its dependencies are up.
type Server struct {
	cfg    Config
	echo   *echo.Echo
	http   *http.Server
	logger ectologger.Logger
	done   chan error
}

// New builds the echo instance and registers routes.
func New(cfg Config, logger ectologger.Logger, routes ...Route) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(echomw.Recover())
	e.Use(otelecho.Middleware(cfg.ServiceName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	if len(cfg.AllowOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.AllowOrigins}))
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group(APIPrefix)
	for _, r := range routes {
		r.Handler.Register(api.Group(r.Path))
	}

	return &Server{
		cfg:  cfg,
		echo: e,
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           e,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
		},
		logger: logger,
		done:   make(chan error, 1),
	}
}

// Echo exposes the router, mainly for tests.
func (s *Server) Echo() *echo.Echo { return s.echo }

// GetName implements startup.StartupDependency.
func (s *Server) GetName() string { return "http-server" }

// DependsOn implements startup.StartupDependency.
func (s *Server) DependsOn() []string { return s.cfg.DependsOn }

// Start binds the port and serves in the background. A bind failure is
// returned so startup can retry it.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}

	s.logger.WithContext(ctx).Infof("HTTP server listening on %s", ln.Addr())
	go func() {
		err := s.http.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	return nil
}

// Stop drains in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// Done reports the serve loop's exit error, nil after a clean Stop.
func (s *Server) Done() <-chan error { return s.done }
