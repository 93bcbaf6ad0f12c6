package trends

import (
	"testing"
	"time"

	"github.com/civicstack/civic-triage/internal/models"
)

func result(sentiment models.Sentiment, category string, priority models.Priority, confidence, urgency float64) models.AnalysisResult {
	return models.AnalysisResult{
		Sentiment:           sentiment,
		SentimentConfidence: confidence,
		Category:            category,
		Priority:            priority,
		UrgencyScore:        urgency,
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	results := []models.AnalysisResult{
		result(models.SentimentNegative, "Infrastructure", models.PriorityHigh, 0.9, 8.0),
		result(models.SentimentNegative, "Infrastructure", models.PriorityMedium, 0.7, 6.0),
		result(models.SentimentPositive, models.CategoryGeneral, models.PriorityLow, 0.8, 3.5),
		result(models.SentimentNeutral, "Environment", models.PriorityLow, 0.5, 4.5),
	}

	got := Summarize(results, now)

	if got.TotalAnalyzed != 4 {
		t.Errorf("TotalAnalyzed = %d, want 4", got.TotalAnalyzed)
	}
	if got.SentimentCounts["negative"] != 2 || got.SentimentCounts["positive"] != 1 || got.SentimentCounts["neutral"] != 1 {
		t.Errorf("SentimentCounts = %v", got.SentimentCounts)
	}
	if got.SentimentPercentages["negative"] != 50 {
		t.Errorf("negative percentage = %v, want 50", got.SentimentPercentages["negative"])
	}
	// (1 positive - 2 negative) / 4 = -0.25, below the neutral band.
	if got.OverallSentiment != models.SentimentNegative {
		t.Errorf("OverallSentiment = %q, want negative", got.OverallSentiment)
	}
	if got.OverallScore != -0.25 {
		t.Errorf("OverallScore = %v, want -0.25", got.OverallScore)
	}
	if diff := got.AverageConfidence - 0.725; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AverageConfidence = %v, want 0.725", got.AverageConfidence)
	}
	if diff := got.AverageUrgencyScore - 5.5; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AverageUrgencyScore = %v, want 5.5", got.AverageUrgencyScore)
	}
	if got.TopCategory != "Infrastructure" {
		t.Errorf("TopCategory = %q, want Infrastructure", got.TopCategory)
	}
	if got.HighPriorityCount != 1 {
		t.Errorf("HighPriorityCount = %d, want 1", got.HighPriorityCount)
	}
	if !got.GeneratedAt.Equal(now) {
		t.Errorf("GeneratedAt = %v, want %v", got.GeneratedAt, now)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil, time.Now())
	if got.TotalAnalyzed != 0 {
		t.Errorf("TotalAnalyzed = %d, want 0", got.TotalAnalyzed)
	}
	if got.TopCategory != "" {
		t.Errorf("TopCategory = %q, want empty", got.TopCategory)
	}
}

func TestSummarizeNeutralBand(t *testing.T) {
	results := []models.AnalysisResult{
		result(models.SentimentPositive, models.CategoryGeneral, models.PriorityLow, 0.8, 3.5),
		result(models.SentimentNegative, models.CategoryGeneral, models.PriorityLow, 0.8, 3.5),
		result(models.SentimentNeutral, models.CategoryGeneral, models.PriorityLow, 0.5, 3.5),
		result(models.SentimentNeutral, models.CategoryGeneral, models.PriorityLow, 0.5, 3.5),
	}
	got := Summarize(results, time.Now())
	if got.OverallSentiment != models.SentimentNeutral {
		t.Errorf("OverallSentiment = %q, want neutral for balanced counts", got.OverallSentiment)
	}
}

func TestSummarizeTopCategoryTieBreak(t *testing.T) {
	results := []models.AnalysisResult{
		result(models.SentimentNeutral, "Transportation", models.PriorityLow, 0.5, 3.5),
		result(models.SentimentNeutral, "Environment", models.PriorityLow, 0.5, 3.5),
	}
	for i := 0; i < 5; i++ {
		got := Summarize(results, time.Now())
		if got.TopCategory != "Environment" {
			t.Fatalf("TopCategory = %q, want alphabetical tie-break to Environment", got.TopCategory)
		}
	}
}
