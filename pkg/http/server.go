package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"YieldPull/pkg/http/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler registers routes on the server's Echo instance.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

// ServerOption configures Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	host         string
	port         int
	readTimeout  time.Duration
	writeTimeout time.Duration
	stopTimeout  time.Duration
	cors         bool
}

func WithHost(host string) ServerOption {
	return func(c *serverConfig) { c.host = host }
}

func WithPort(port int) ServerOption {
	return func(c *serverConfig) { c.port = port }
}

func WithTimeouts(read, write, shutdown time.Duration) ServerOption {
	return func(c *serverConfig) {
		c.readTimeout = read
		c.writeTimeout = write
		c.stopTimeout = shutdown
	}
}

func WithCORS(enabled bool) ServerOption {
	return func(c *serverConfig) { c.cors = enabled }
}

// Server is the Echo HTTP server with recovery, request logging and an
// always-on /metrics endpoint.
type Server struct {
	echo *echo.Echo
	addr string
}

func NewServer(handler Handler, opts ...ServerOption) *Server {
	cfg := serverConfig{
		host:         "0.0.0.0",
		port:         8080,
		readTimeout:  10 * time.Second,
		writeTimeout: 10 * time.Second,
		stopTimeout:  10 * time.Second,
		cors:         true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	e := newEcho(cfg)
	if handler != nil {
		handler.RegisterRoutes(e)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return &Server{
		echo: e,
		addr: fmt.Sprintf("%s:%d", cfg.host, cfg.port),
	}
}

func newEcho(cfg serverConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.readTimeout
	e.Server.WriteTimeout = cfg.writeTimeout

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLogging())
	if cfg.cors {
		// the API is read-only, so only GET needs to cross origins
		e.Use(middleware.CORS(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{http.MethodGet, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
	return e
}

// Start listens in the background; startup errors are logged, not returned.
func (s *Server) Start() error {
	go func() {
		log.Printf("http server: listening on %s", s.addr)
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server: %v", err)
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Echo exposes the underlying instance for route inspection in tests.
func (s *Server) Echo() *echo.Echo { return s.echo }
