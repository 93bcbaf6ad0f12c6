// Package signals contains the heterogeneous producers of sentiment and
// category opinions that feed the ensemble.
package signals

import (
	"context"

	"github.com/civicstack/civic-triage/internal/models"
)

// SentimentProvider produces a sentiment opinion for normalized text.
// Implementations never fail past their own boundary: internal errors become
// abstains (Err set, confidence zero) which the combiner skips.
type SentimentProvider interface {
	ID() string
	Analyze(ctx context.Context, text string) models.SignalResult
}

// CategoryProvider produces a topic category opinion for normalized text.
type CategoryProvider interface {
	ID() string
	Classify(ctx context.Context, text string) models.SignalResult
}

func abstain(sourceID string, err error) models.SignalResult {
	return models.SignalResult{SourceID: sourceID, Confidence: 0, Err: err.Error()}
}
