package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/civicstack/civic-triage/internal/engine"
	"github.com/civicstack/civic-triage/internal/models"
	"github.com/civicstack/civic-triage/internal/utils"
)

const resultKeyPrefix = "analysis:"

// ResultCache stores final analysis results keyed by a content hash of the
// normalized text. Context is folded into the key only when it can change the
// outcome, so callers with different effective context never share entries.
// The cache is an optimization: any store failure degrades to a miss with a
// warning, never a request failure.
type ResultCache struct {
	provider Provider
	logger   *slog.Logger
	ttl      time.Duration
}

// NewResultCache builds a ResultCache over the given provider. A nil provider
// disables caching via NoopProvider.
func NewResultCache(provider Provider, logger *slog.Logger, ttl time.Duration) *ResultCache {
	if provider == nil {
		provider = NoopProvider{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultCache{provider: provider, logger: logger, ttl: ttl}
}

// Key derives the stable cache key for a normalized text and its context.
func (c *ResultCache) Key(normalizedText string, context map[string]string) string {
	h := sha256.New()
	h.Write([]byte(normalizedText))
	if fp := contextFingerprint(context); fp != "" {
		h.Write([]byte{0})
		h.Write([]byte(fp))
	}
	return resultKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for the key, or false on a miss. Store
// errors are logged and reported as misses.
func (c *ResultCache) Get(ctx context.Context, key string) (*models.AnalysisResult, bool) {
	data, err := c.provider.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("result cache read failed, proceeding uncached",
				slog.String("key", key),
				slog.Any("error", err))
		}
		return nil, false
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("result cache entry corrupt, discarding",
			slog.String("key", key),
			slog.Any("error", err))
		_ = c.provider.Del(ctx, key)
		return nil, false
	}
	return &result, true
}

// Put stores a result under the key. Entries are write-once within their TTL
// window; a concurrent writer keeps the first value.
func (c *ResultCache) Put(ctx context.Context, key string, result *models.AnalysisResult) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("result cache encode failed", slog.Any("error", err))
		return
	}
	if _, err := c.provider.SetNX(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("result cache write failed",
			slog.String("key", key),
			slog.Any("error", err))
	}
}

// Close releases the underlying provider.
func (c *ResultCache) Close() error {
	return c.provider.Close()
}

// contextFingerprint canonicalizes the outcome-affecting part of the context.
// The late-night window is bucketed so every hour inside it maps to the same
// fingerprint.
func contextFingerprint(context map[string]string) string {
	if !engine.ContextAffectsOutcome(context) {
		return ""
	}

	var parts []string
	switch context[models.ContextUserHistory] {
	case string(models.SentimentNegative), string(models.SentimentPositive):
		parts = append(parts, fmt.Sprintf("%s=%s", models.ContextUserHistory, context[models.ContextUserHistory]))
	}
	if raw, ok := context[models.ContextHourOfDay]; ok {
		if hour, err := utils.ParseHour(raw); err == nil && utils.IsLateNight(hour) {
			parts = append(parts, "late_night=1")
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}
