// Package trends derives aggregate views over completed analyses: batch
// summaries and sentiment time series for the analytics endpoints.
package trends

import (
	"sort"
	"time"

	"github.com/civicstack/civic-triage/internal/models"
)

// Summary aggregates a set of analysis results into distribution statistics.
type Summary struct {
	TotalAnalyzed        int                `json:"total_analyzed"`
	SentimentCounts      map[string]int     `json:"sentiment_counts"`
	SentimentPercentages map[string]float64 `json:"sentiment_percentages"`
	OverallSentiment     models.Sentiment   `json:"overall_sentiment"`
	OverallScore         float64            `json:"overall_score"`
	AverageConfidence    float64            `json:"average_confidence"`
	CategoryDistribution map[string]float64 `json:"category_distribution"`
	PriorityDistribution map[string]float64 `json:"priority_distribution"`
	AverageUrgencyScore  float64            `json:"average_urgency_score"`
	TopCategory          string             `json:"top_category"`
	HighPriorityCount    int                `json:"high_priority_count"`
	GeneratedAt          time.Time          `json:"generated_at"`
}

// Summarize computes the aggregate view over the given results. Overall
// sentiment is the sign of the positive-minus-negative share with a 0.1
// neutral band. Category ties resolve alphabetically so repeated calls over
// the same inputs agree.
func Summarize(results []models.AnalysisResult, now time.Time) Summary {
	summary := Summary{GeneratedAt: now.UTC()}
	if len(results) == 0 {
		return summary
	}

	total := len(results)
	summary.TotalAnalyzed = total
	summary.SentimentCounts = map[string]int{
		string(models.SentimentPositive): 0,
		string(models.SentimentNegative): 0,
		string(models.SentimentNeutral):  0,
	}
	categoryCounts := make(map[string]int)
	priorityCounts := make(map[string]int)

	confidenceSum := 0.0
	urgencySum := 0.0
	for _, r := range results {
		summary.SentimentCounts[string(r.Sentiment)]++
		categoryCounts[r.Category]++
		priorityCounts[string(r.Priority)]++
		confidenceSum += r.SentimentConfidence
		urgencySum += r.UrgencyScore
	}

	summary.SentimentPercentages = make(map[string]float64, len(summary.SentimentCounts))
	for sentiment, count := range summary.SentimentCounts {
		summary.SentimentPercentages[sentiment] = float64(count) / float64(total) * 100
	}

	score := float64(summary.SentimentCounts[string(models.SentimentPositive)]-
		summary.SentimentCounts[string(models.SentimentNegative)]) / float64(total)
	summary.OverallScore = score
	switch {
	case score > 0.1:
		summary.OverallSentiment = models.SentimentPositive
	case score < -0.1:
		summary.OverallSentiment = models.SentimentNegative
	default:
		summary.OverallSentiment = models.SentimentNeutral
	}

	summary.AverageConfidence = confidenceSum / float64(total)
	summary.AverageUrgencyScore = urgencySum / float64(total)

	summary.CategoryDistribution = make(map[string]float64, len(categoryCounts))
	for category, count := range categoryCounts {
		summary.CategoryDistribution[category] = float64(count) / float64(total) * 100
	}
	summary.PriorityDistribution = make(map[string]float64, len(priorityCounts))
	for priority, count := range priorityCounts {
		summary.PriorityDistribution[priority] = float64(count) / float64(total) * 100
	}

	summary.TopCategory = topCategory(categoryCounts)
	summary.HighPriorityCount = priorityCounts[string(models.PriorityHigh)]

	return summary
}

func topCategory(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	best := ""
	bestCount := -1
	for _, name := range names {
		if counts[name] > bestCount {
			best = name
			bestCount = counts[name]
		}
	}
	return best
}
