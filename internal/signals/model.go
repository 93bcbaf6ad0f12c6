package signals

import (
	"context"
	"time"

	"github.com/civicstack/civic-triage/internal/llm"
	"github.com/civicstack/civic-triage/internal/models"
)

// ModelSignal delegates to the external model provider with a hard per-call
// timeout. Timeouts and provider errors become abstains so a slow model can
// degrade the ensemble but never block or corrupt it.
type ModelSignal struct {
	id       string
	provider llm.Provider
	labels   []string
	timeout  time.Duration
}

// NewModelSentimentSignal builds the model-backed sentiment provider.
func NewModelSentimentSignal(provider llm.Provider, timeout time.Duration) *ModelSignal {
	return &ModelSignal{
		id:       "model-sentiment",
		provider: provider,
		labels: []string{
			string(models.SentimentPositive),
			string(models.SentimentNegative),
			string(models.SentimentNeutral),
		},
		timeout: timeout,
	}
}

// NewModelCategorySignal builds the model-backed category provider using the
// known category names as candidate labels.
func NewModelCategorySignal(provider llm.Provider, timeout time.Duration) *ModelSignal {
	return &ModelSignal{
		id:       "model-category",
		provider: provider,
		labels:   Categories(),
		timeout:  timeout,
	}
}

// ID identifies this provider in signal results.
func (s *ModelSignal) ID() string { return s.id }

// Analyze satisfies SentimentProvider.
func (s *ModelSignal) Analyze(ctx context.Context, text string) models.SignalResult {
	return s.classify(ctx, text)
}

// Classify satisfies CategoryProvider.
func (s *ModelSignal) Classify(ctx context.Context, text string) models.SignalResult {
	return s.classify(ctx, text)
}

func (s *ModelSignal) classify(ctx context.Context, text string) models.SignalResult {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cls, err := s.provider.Classify(ctx, text, s.labels)
	if err != nil {
		return abstain(s.id, err)
	}

	confidence := cls.Score
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return models.SignalResult{SourceID: s.id, Label: cls.Label, Confidence: confidence}
}
