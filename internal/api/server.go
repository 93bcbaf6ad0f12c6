// Package api exposes the triage service over HTTP.
package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/civicstack/civic-triage/internal/config"
	"github.com/civicstack/civic-triage/internal/models"
	"github.com/civicstack/civic-triage/internal/trends"
)

// AnalysisAPI is the single-message surface the handlers depend on.
type AnalysisAPI interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error)
	LatencyP95() time.Duration
}

// BatchAPI is the batch job surface the handlers depend on.
type BatchAPI interface {
	Submit(ctx context.Context, ownerID string, messages []string, msgContext map[string]string) (models.BatchJob, error)
	Status(ctx context.Context, jobID string) (models.BatchJob, error)
}

// HealthCheck probes a backing dependency. A nil check is skipped.
type HealthCheck func(ctx context.Context) error

// Server hosts the HTTP API and owns its lifecycle.
type Server struct {
	cfg      config.ServerConfig
	logger   *slog.Logger
	echo     *echo.Echo
	analysis AnalysisAPI
	batch    BatchAPI
	series   *trends.SeriesGenerator
	// storeCheck probes the key-value store backing the cache and job store.
	storeCheck HealthCheck
	started    time.Time
}

// NewServer wires the handlers onto an echo instance. Dependencies may not be
// nil except series, which falls back to a time-seeded generator.
func NewServer(cfg config.ServerConfig, logger *slog.Logger, analysis AnalysisAPI, jobs BatchAPI, series *trends.SeriesGenerator, storeCheck HealthCheck) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if series == nil {
		series = trends.NewSeriesGenerator(time.Now().UnixNano(), nil)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		echo:       e,
		analysis:   analysis,
		batch:      jobs,
		series:     series,
		storeCheck: storeCheck,
		started:    time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/analyze", s.handleAnalyze)
	v1.POST("/batch/process", s.handleBatchSubmit)
	v1.GET("/batch/jobs/:id", s.handleBatchStatus)
	v1.GET("/batch/jobs/:id/summary", s.handleBatchSummary)
	v1.GET("/analytics/sentiment-trends", s.handleSentimentTrends)
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", slog.String("address", s.cfg.Address))
	return s.echo.Start(s.cfg.Address)
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.cfg.Address
}

// GracefulTimeout returns the configured drain window.
func (s *Server) GracefulTimeout() time.Duration {
	if s.cfg.GracefulTimeout <= 0 {
		return 10 * time.Second
	}
	return s.cfg.GracefulTimeout
}
