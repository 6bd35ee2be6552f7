package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/polyarb/arb-monitor/pkg/healthprobe"
)

// Server provides HTTP endpoints for metrics, health checks and scanner
// status.
type Server struct {
	server *http.Server
	logger *zap.Logger
	probe  *healthprobe.Probe
}

// Config holds server configuration.
type Config struct {
	Port           string
	Logger         *zap.Logger
	Probe          *healthprobe.Probe
	StatusProvider StatusProvider
}

// New creates a new HTTP server.
func New(cfg *Config) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/health", cfg.Probe.Health())
	r.Get("/ready", cfg.Probe.Ready())

	if cfg.StatusProvider != nil {
		handler := NewStatusHandler(cfg.StatusProvider, cfg.Logger)
		r.Get("/api/status", handler.HandleStatus)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{
		server: server,
		logger: cfg.Logger,
		probe:  cfg.Probe,
	}
}

// Start starts the HTTP server. It blocks until the server stops or fails.
func (s *Server) Start() error {
	s.logger.Info("http-server-starting", zap.String("addr", s.server.Addr))

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http-server-shutdown-complete")
	return nil
}
