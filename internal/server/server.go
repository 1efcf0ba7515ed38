// Package server runs the conversation relay as a long-lived HTTP service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"
	"github.com/kagent-dev/opsbridge/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultPort            = "8080"
	defaultShutdownTimeout = 5 * time.Second

	EventsPath = "/slack/events"
)

// Config configures the relay HTTP server.
type Config struct {
	// Host to bind to. Empty binds all interfaces.
	Host string
	// Port to listen on. Defaults to 8080.
	Port string
	// ShutdownTimeout is the graceful shutdown timeout. Defaults to 5 seconds.
	ShutdownTimeout time.Duration
	// Logger receives server and request logs. The zero value discards.
	Logger logr.Logger
}

// Server serves Slack events plus health and metrics endpoints.
type Server struct {
	cfg     Config
	handler http.Handler
}

// New creates a Server that passes Slack events to events.
func New(cfg Config, events http.Handler) *Server {
	cfg = applyDefaults(cfg)

	router := mux.NewRouter()
	router.Use(auditLoggingMiddleware(cfg.Logger))
	router.Handle(EventsPath, events).Methods(http.MethodPost)
	router.Handle("/metrics", telemetry.Handler()).Methods(http.MethodGet)
	RegisterHealthEndpoints(router)

	return &Server{cfg: cfg, handler: otelhttp.NewHandler(router, "opsbridge.relay")}
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr is the address the server listens on.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, s.cfg.Port)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := s.cfg.Logger

	httpServer := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting relay server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("relay server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	log.Info("Shutting down relay server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down relay server: %w", err)
	}
	return nil
}

func applyDefaults(cfg Config) Config {
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return cfg
}
