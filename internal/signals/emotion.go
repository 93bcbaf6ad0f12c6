package signals

import (
	"strings"

	"github.com/civicstack/civic-triage/internal/models"
)

// Ordered so dominant-emotion ties resolve deterministically.
var emotionTable = []struct {
	Emotion  string
	Keywords []string
}{
	{"joy", []string{"happy", "glad", "pleased", "delighted", "cheerful"}},
	{"anger", []string{"angry", "mad", "furious", "annoyed", "irritated"}},
	{"sadness", []string{"sad", "disappointed", "upset", "depressed"}},
	{"fear", []string{"scared", "afraid", "worried", "anxious", "concerned"}},
	{"surprise", []string{"surprised", "shocked", "amazed", "astonished"}},
	{"disgust", []string{"disgusted", "revolted", "appalled", "horrified"}},
}

// EmotionSignal detects the auxiliary emotion axis via keyword matching.
// Its output is carried through as metadata only and never voted into the
// sentiment or category ensembles.
type EmotionSignal struct{}

// NewEmotionSignal constructs the emotion detector.
func NewEmotionSignal() *EmotionSignal {
	return &EmotionSignal{}
}

// Detect scores each emotion as matched keywords over table size. Texts with
// no emotional vocabulary report a neutral dominant emotion.
func (s *EmotionSignal) Detect(text string) models.EmotionResult {
	lower := strings.ToLower(text)

	scores := make(map[string]float64)
	dominant := ""
	best := 0.0
	for _, entry := range emotionTable {
		matched := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, kw) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		score := float64(matched) / float64(len(entry.Keywords))
		scores[entry.Emotion] = score
		if score > best {
			best = score
			dominant = entry.Emotion
		}
	}

	if dominant == "" {
		return models.EmotionResult{
			Dominant:   "neutral",
			Scores:     map[string]float64{"neutral": 1.0},
			Confidence: 1.0,
		}
	}
	return models.EmotionResult{Dominant: dominant, Scores: scores, Confidence: best}
}
