package models

import (
	"errors"
	"time"
)

// ErrEmptyText signals a submission with no analyzable content.
var ErrEmptyText = errors.New("text is empty")

// Sentiment enumerates the primary sentiment axis.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Priority captures the ordinal triage tier of a submission.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// CategoryGeneral is the fallback category when no signal places the text elsewhere.
const CategoryGeneral = "General"

// Context keys recognised by the adjuster and cache fingerprint.
const (
	ContextUserHistory = "user_history_sentiment"
	ContextHourOfDay   = "hour_of_day"
	ContextLocation    = "location"
)

// AnalysisRequest is a single submission to analyze. Context is optional
// caller-supplied metadata; absence of any key is a no-op downstream.
type AnalysisRequest struct {
	Text    string            `json:"text"`
	Context map[string]string `json:"context,omitempty"`
}

// SignalResult is one provider's opinion about a text, produced once per
// provider per request and never mutated.
type SignalResult struct {
	SourceID   string   `json:"source_id"`
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence,omitempty"`
	Err        string   `json:"error,omitempty"`
}

// Abstained reports whether the provider declined to vote. An abstain carries
// zero weight in the ensemble, unlike a genuine low-confidence vote.
func (r SignalResult) Abstained() bool {
	return r.Err != ""
}

// EnsembleResult is the weighted combination of the non-abstaining signals
// for one axis.
type EnsembleResult struct {
	Label      string             `json:"label"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores,omitempty"`
	// Agreement is true when every contributing signal chose the same label.
	Agreement bool `json:"agreement"`
	// SignalCount distinguishes the low-confidence default (zero contributing
	// signals) from a genuine low-confidence verdict.
	SignalCount int `json:"signal_count"`
}

// EmotionResult carries the auxiliary emotion axis. It is metadata only and
// never votes into sentiment or category.
type EmotionResult struct {
	Dominant   string             `json:"dominant_emotion"`
	Scores     map[string]float64 `json:"emotion_scores,omitempty"`
	Confidence float64            `json:"emotion_confidence"`
}

// AnalysisResult is the final combined verdict for one submission.
type AnalysisResult struct {
	Sentiment           Sentiment      `json:"sentiment"`
	SentimentConfidence float64        `json:"sentiment_confidence"`
	Category            string         `json:"category"`
	CategoryConfidence  float64        `json:"category_confidence"`
	Subcategory         string         `json:"subcategory"`
	Priority            Priority       `json:"priority"`
	UrgencyScore        float64        `json:"urgency_score"`
	MatchedKeywords     []string       `json:"matched_keywords,omitempty"`
	Emotions            *EmotionResult `json:"emotions,omitempty"`
	Agreement           bool           `json:"agreement"`
	SignalCount         int            `json:"signal_count"`
	GeneratedAt         time.Time      `json:"generated_at"`
}
