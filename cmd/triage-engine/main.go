package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/civicstack/civic-triage/internal/api"
	"github.com/civicstack/civic-triage/internal/batch"
	"github.com/civicstack/civic-triage/internal/cache"
	"github.com/civicstack/civic-triage/internal/config"
	"github.com/civicstack/civic-triage/internal/engine"
	"github.com/civicstack/civic-triage/internal/llm"
	"github.com/civicstack/civic-triage/internal/metrics"
	"github.com/civicstack/civic-triage/internal/services"
	"github.com/civicstack/civic-triage/internal/signals"
	"github.com/civicstack/civic-triage/internal/trends"
	"github.com/civicstack/civic-triage/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting civic-triage", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	var cacheProvider cache.Provider
	if cfg.Cache.Backend == "redis" {
		provider, err := cache.NewRedisProvider(cache.RedisConfig{
			Addr:         cfg.Cache.Addr,
			Username:     cfg.Cache.Username,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
		}, logger)
		if err != nil {
			logger.Error("redis cache unavailable", slog.Any("error", err))
			os.Exit(1)
		}
		cacheProvider = provider
	} else {
		cacheProvider = cache.NewMemoryProvider(nil)
	}
	defer cacheProvider.Close()

	rulePack, err := signals.LoadRulePack(cfg.Signals.RulesPath)
	if err != nil {
		logger.Error("failed to load rule pack", slog.Any("error", err))
		os.Exit(1)
	}

	// Provider order drives ensemble tie-breaks: model first, then rules,
	// then lexicon.
	var sentimentProviders []signals.SentimentProvider
	var categoryProviders []signals.CategoryProvider
	if cfg.Model.Enabled && cfg.Model.APIKey != "" {
		modelProvider := llm.NewAnthropicProvider(cfg.Model.APIKey, cfg.Model.Model, cfg.Model.RequestsPerSecond)
		sentimentProviders = append(sentimentProviders, signals.NewModelSentimentSignal(modelProvider, cfg.Model.Timeout))
		categoryProviders = append(categoryProviders, signals.NewModelCategorySignal(modelProvider, cfg.Model.Timeout))
		logger.Info("model signal enabled", slog.String("model", cfg.Model.Model))
	}
	sentimentProviders = append(sentimentProviders,
		signals.NewRuleSentimentSignal(rulePack),
		signals.NewLexiconSentimentSignal())
	categoryProviders = append(categoryProviders,
		signals.NewRuleCategorySignal(rulePack),
		signals.NewLexiconCategorySignal())

	pipeline := engine.NewPipeline(logger, nil, sentimentProviders, categoryProviders, signals.NewEmotionSignal())

	resultCache := cache.NewResultCache(cacheProvider, logger, cfg.Cache.ResultTTL)
	analysisService := services.NewAnalysisService(logger, pipeline, resultCache)

	jobStore := batch.NewJobStore(cacheProvider, cfg.Batch.JobTTL)
	jobManager := batch.NewManager(logger, nil, analysisService, jobStore, batch.Config{
		Workers:         cfg.Batch.Workers,
		MaxBatchSize:    cfg.Batch.MaxBatchSize,
		EstimatePerItem: cfg.Batch.EstimatePerItem,
	})

	storeCheck := func(ctx context.Context) error {
		if _, err := cacheProvider.Get(ctx, "health:ping"); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			return err
		}
		return nil
	}

	series := trends.NewSeriesGenerator(time.Now().UnixNano(), nil)
	server := api.NewServer(cfg.Server, logger, analysisService, jobManager, series, storeCheck)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if serveErr := server.Start(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("http server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.GracefulTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", slog.Any("error", err))
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("civic-triage stopped")
}
