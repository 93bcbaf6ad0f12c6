package engine

import (
	"github.com/civicstack/civic-triage/internal/models"
	"github.com/civicstack/civic-triage/internal/utils"
)

// AdjustConfidence applies bounded multiplicative context factors to the
// ensemble confidence. The label is never changed, only how sure we are of
// it, and the result is re-clipped to [0, 1]. Missing or malformed context
// keys are ignored.
func AdjustConfidence(result models.EnsembleResult, context map[string]string) models.EnsembleResult {
	if len(context) == 0 {
		return result
	}

	factor := 1.0

	switch context[models.ContextUserHistory] {
	case string(models.SentimentNegative):
		factor *= 0.9
	case string(models.SentimentPositive):
		factor *= 1.1
	}

	// Late-night submissions skew negative; discount the reporting bias for
	// negative and safety-relevant verdicts.
	if raw, ok := context[models.ContextHourOfDay]; ok {
		if hour, err := utils.ParseHour(raw); err == nil && utils.IsLateNight(hour) {
			if result.Label == string(models.SentimentNegative) || result.Label == "Public Safety" {
				factor *= 1.1
			}
		}
	}

	if factor == 1.0 {
		return result
	}
	result.Confidence = clamp01(result.Confidence * factor)
	return result
}

// ContextAffectsOutcome reports whether the supplied context carries any key
// that can change the computed confidence. Cache keys only incorporate
// context when this holds.
func ContextAffectsOutcome(context map[string]string) bool {
	if len(context) == 0 {
		return false
	}
	switch context[models.ContextUserHistory] {
	case string(models.SentimentNegative), string(models.SentimentPositive):
		return true
	}
	if raw, ok := context[models.ContextHourOfDay]; ok {
		if hour, err := utils.ParseHour(raw); err == nil && utils.IsLateNight(hour) {
			return true
		}
	}
	return false
}
