package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/civicstack/civic-triage/internal/cache"
	"github.com/civicstack/civic-triage/internal/metrics"
	"github.com/civicstack/civic-triage/internal/models"
	"github.com/civicstack/civic-triage/internal/normalize"
	"github.com/civicstack/civic-triage/internal/utils"
)

// Analyzer runs the single-message pipeline. Satisfied by engine.Pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error)
}

// AnalysisService fronts the pipeline with validation, result caching, and
// request coalescing. Identical concurrent requests share one pipeline run.
type AnalysisService struct {
	logger    *slog.Logger
	pipeline  Analyzer
	cache     *cache.ResultCache
	group     singleflight.Group
	latencies *utils.LatencyTracker
}

// NewAnalysisService constructs the service facade. A nil cache disables
// caching.
func NewAnalysisService(logger *slog.Logger, pipeline Analyzer, resultCache *cache.ResultCache) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if resultCache == nil {
		resultCache = cache.NewResultCache(nil, logger, 0)
	}
	return &AnalysisService{
		logger:    logger,
		pipeline:  pipeline,
		cache:     resultCache,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// Analyze validates, serves from cache when possible, and otherwise runs the
// pipeline once per distinct key regardless of concurrent callers.
func (s *AnalysisService) Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	normalized := normalize.Normalize(req.Text)
	if normalized == "" {
		return models.AnalysisResult{}, models.ErrEmptyText
	}

	start := time.Now()
	key := s.cache.Key(normalized, req.Context)

	if result, ok := s.cache.Get(ctx, key); ok {
		metrics.ObserveCacheLookup(metrics.CacheHit)
		return *result, nil
	}
	metrics.ObserveCacheLookup(metrics.CacheMiss)

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		result, err := s.pipeline.Analyze(ctx, req)
		if err != nil {
			return nil, err
		}
		s.cache.Put(ctx, key, &result)
		return result, nil
	})
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveAnalysis(duration, metrics.OutcomeError)
		wrapped := utils.NewAppError("analyze", "pipeline failed", err)
		s.logger.Error("analysis failed", slog.Any("error", wrapped))
		return models.AnalysisResult{}, wrapped
	}

	s.latencies.Observe(duration)
	metrics.ObserveAnalysis(duration, metrics.OutcomeSuccess)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("analysis latency",
			slog.Duration("p95", s.latencies.Percentile(95)),
			slog.Int("samples", count))
	}

	return v.(models.AnalysisResult), nil
}

// LatencyP95 returns the current p95 analysis latency.
func (s *AnalysisService) LatencyP95() time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Percentile(95)
}
