package engine

import (
	"github.com/civicstack/civic-triage/internal/models"
)

// Combine merges one axis worth of signal results by weighted voting.
// Callers pass results in provider priority order (model, rule, lexicon);
// exact score ties resolve to the label encountered first in that order, so
// the verdict is reproducible for identical inputs.
func Combine(results []models.SignalResult, fallback string) models.EnsembleResult {
	scores := make(map[string]float64)
	var order []string
	contributing := 0

	for _, r := range results {
		if r.Abstained() || r.Label == "" {
			continue
		}
		if _, seen := scores[r.Label]; !seen {
			order = append(order, r.Label)
		}
		scores[r.Label] += r.Confidence
		contributing++
	}

	if contributing == 0 {
		return models.EnsembleResult{
			Label:       fallback,
			Confidence:  0.1,
			SignalCount: 0,
		}
	}

	total := 0.0
	for _, s := range scores {
		total += s
	}

	winner := order[0]
	for _, label := range order[1:] {
		if scores[label] > scores[winner] {
			winner = label
		}
	}

	confidence := 0.0
	if total > 0 {
		confidence = scores[winner] / total
	}

	agreement := len(order) == 1
	if agreement {
		confidence += 0.1
	}

	return models.EnsembleResult{
		Label:       winner,
		Confidence:  clamp01(confidence),
		Scores:      scores,
		Agreement:   agreement,
		SignalCount: contributing,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
