package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rickgao/everline-data/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

// Config holds HTTP server settings.
type Config struct {
	Addr           string
	InstanceID     string
	AllowedOrigins []string
	StaleAfter     time.Duration // Snapshots older than this make /health report degraded
	MetricsPath    string        // Empty disables /metrics
}

// Server serves the tracker's HTTP API.
type Server struct {
	cfg     Config
	source  SnapshotSource
	metrics *metrics.Metrics
	hub     *Hub
	router  chi.Router
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a server with all routes registered. m may be nil.
func New(cfg Config, source SnapshotSource, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		cfg:     cfg,
		source:  source,
		metrics: m,
		hub:     NewHub(source, cfg.AllowedOrigins, logger),
		logger:  logger,
		now:     time.Now,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/stations", s.handleStations)
		r.Get("/stations/{code}", s.handleStation)
		r.Get("/trains", s.handleTrains)
		r.Get("/interval", s.handleInterval)
		r.Method(http.MethodGet, "/ws", s.hub)
	})

	r.Get("/gtfs-rt/vehicle-positions.pb", s.handleVehiclePositions)

	if s.metrics != nil && s.cfg.MetricsPath != "" {
		r.Method(http.MethodGet, s.cfg.MetricsPath, s.metrics.Handler())
	}
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub. Register it with the poller.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run listens on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
