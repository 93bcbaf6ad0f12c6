package signals

import (
	"context"
	"fmt"
	"strings"

	"github.com/civicstack/civic-triage/internal/models"
)

var positiveWords = []string{
	"good", "great", "excellent", "amazing", "wonderful", "fantastic",
	"awesome", "brilliant", "outstanding", "perfect", "satisfied",
	"happy", "pleased", "delighted", "impressed", "grateful",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "horrible", "disgusting", "hate",
	"angry", "frustrated", "disappointed", "annoyed", "upset",
	"broken", "damaged", "problem", "issue", "complaint", "poor",
}

// categoryEntry pairs a category with its keyword tables. Held as an ordered
// slice so scoring iterates deterministically.
type categoryEntry struct {
	Name             string
	Keywords         []string
	PriorityKeywords []string
}

var categoryTable = []categoryEntry{
	{
		Name: "Infrastructure",
		Keywords: []string{
			"road", "bridge", "water", "electricity", "power", "sewer",
			"drainage", "streetlight", "pothole", "construction",
			"maintenance", "repair", "broken", "damaged", "pipeline",
		},
		PriorityKeywords: []string{"emergency", "urgent", "dangerous", "broken"},
	},
	{
		Name: "Public Safety",
		Keywords: []string{
			"police", "crime", "safety", "security", "theft", "violence",
			"emergency", "fire", "accident", "patrol", "law", "order",
			"harassment", "assault", "robbery", "vandalism",
		},
		PriorityKeywords: []string{"emergency", "urgent", "dangerous", "crime"},
	},
	{
		Name: "Environment",
		Keywords: []string{
			"pollution", "waste", "garbage", "trash", "recycling",
			"clean", "dirty", "smell", "air", "noise",
			"park", "green", "tree", "environment", "sanitation",
		},
		PriorityKeywords: []string{"pollution", "contamination", "health hazard"},
	},
	{
		Name: "Transportation",
		Keywords: []string{
			"bus", "transport", "traffic", "parking", "vehicle",
			"route", "station", "signal", "congestion",
			"auto", "taxi", "rickshaw", "bicycle", "pedestrian",
		},
		PriorityKeywords: []string{"accident", "blocked", "emergency"},
	},
	{
		Name: "Healthcare",
		Keywords: []string{
			"hospital", "clinic", "doctor", "medicine", "health",
			"treatment", "patient", "medical", "ambulance",
			"disease", "vaccination", "pharmacy",
		},
		PriorityKeywords: []string{"emergency", "urgent", "critical", "life threatening"},
	},
	{
		Name: "Education",
		Keywords: []string{
			"school", "college", "university", "teacher", "student",
			"education", "library", "book", "class", "exam",
			"admission", "fee", "scholarship", "learning",
		},
		PriorityKeywords: []string{"urgent", "exam", "admission"},
	},
	{
		Name: "Digital Services",
		Keywords: []string{
			"website", "online", "app", "digital", "internet",
			"computer", "system", "portal", "login", "password",
			"technical", "software", "wifi", "connection",
		},
		PriorityKeywords: []string{"not working", "down", "error"},
	},
	{
		Name: models.CategoryGeneral,
		Keywords: []string{
			"complaint", "suggestion", "feedback", "service",
			"help", "support", "information", "question",
			"request", "application", "form", "office",
		},
		PriorityKeywords: []string{"urgent", "important"},
	},
}

// Categories returns the known category names in stable table order.
func Categories() []string {
	names := make([]string, 0, len(categoryTable))
	for _, entry := range categoryTable {
		names = append(names, entry.Name)
	}
	return names
}

// LexiconSentimentSignal votes by counting matches against fixed positive and
// negative word lists.
type LexiconSentimentSignal struct{}

// NewLexiconSentimentSignal constructs the sentiment lexicon provider.
func NewLexiconSentimentSignal() *LexiconSentimentSignal {
	return &LexiconSentimentSignal{}
}

// ID identifies this provider in signal results.
func (s *LexiconSentimentSignal) ID() string { return "lexicon-sentiment" }

// Analyze counts sentiment-bearing words. When no sentiment words are present
// it emits the neutral default at 0.5 with zero evidence, which callers can
// distinguish from a genuine neutral vote.
func (s *LexiconSentimentSignal) Analyze(_ context.Context, text string) models.SignalResult {
	words := strings.Fields(strings.ToLower(text))

	var positives, negatives []string
	for _, w := range words {
		if containsWord(positiveWords, w) {
			positives = append(positives, w)
		}
		if containsWord(negativeWords, w) {
			negatives = append(negatives, w)
		}
	}

	total := len(positives) + len(negatives)
	if total == 0 {
		return models.SignalResult{SourceID: s.ID(), Label: string(models.SentimentNeutral), Confidence: 0.5}
	}

	switch {
	case len(positives) > len(negatives):
		return models.SignalResult{
			SourceID:   s.ID(),
			Label:      string(models.SentimentPositive),
			Confidence: float64(len(positives)) / float64(total),
			Evidence:   positives,
		}
	case len(negatives) > len(positives):
		return models.SignalResult{
			SourceID:   s.ID(),
			Label:      string(models.SentimentNegative),
			Confidence: float64(len(negatives)) / float64(total),
			Evidence:   negatives,
		}
	default:
		return models.SignalResult{
			SourceID:   s.ID(),
			Label:      string(models.SentimentNeutral),
			Confidence: 0.5,
			Evidence:   append(positives, negatives...),
		}
	}
}

// LexiconCategorySignal votes by scoring per-category keyword tables.
// Multiword keywords weigh proportionally to their word count and priority
// keywords add a fixed bonus.
type LexiconCategorySignal struct{}

// NewLexiconCategorySignal constructs the category lexicon provider.
func NewLexiconCategorySignal() *LexiconCategorySignal {
	return &LexiconCategorySignal{}
}

// ID identifies this provider in signal results.
func (s *LexiconCategorySignal) ID() string { return "lexicon-category" }

// Classify scores every category table against the text and votes for the
// highest scorer. Confidence saturates at a table score of ten.
func (s *LexiconCategorySignal) Classify(_ context.Context, text string) models.SignalResult {
	lower := strings.ToLower(text)

	bestScore := 0
	bestName := ""
	var bestMatches []string
	for _, entry := range categoryTable {
		score := 0
		var matches []string
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, kw) {
				score += len(strings.Fields(kw))
				matches = append(matches, kw)
			}
		}
		for _, kw := range entry.PriorityKeywords {
			if strings.Contains(lower, kw) {
				score += 2
				matches = append(matches, fmt.Sprintf("%s (priority)", kw))
			}
		}
		if score > bestScore {
			bestScore = score
			bestName = entry.Name
			bestMatches = matches
		}
	}

	if bestScore == 0 {
		return models.SignalResult{SourceID: s.ID(), Label: models.CategoryGeneral, Confidence: 0.1}
	}

	confidence := float64(bestScore) / 10
	if confidence > 1 {
		confidence = 1
	}
	return models.SignalResult{
		SourceID:   s.ID(),
		Label:      bestName,
		Confidence: confidence,
		Evidence:   bestMatches,
	}
}

func containsWord(list []string, word string) bool {
	for _, w := range list {
		if w == word {
			return true
		}
	}
	return false
}
