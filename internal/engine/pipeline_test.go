package engine

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/civicstack/civic-triage/internal/models"
	"github.com/civicstack/civic-triage/internal/signals"
)

func newTestPipeline(clock clockwork.Clock) *Pipeline {
	pack := signals.DefaultRulePack()
	return NewPipeline(
		nil,
		clock,
		[]signals.SentimentProvider{
			signals.NewRuleSentimentSignal(pack),
			signals.NewLexiconSentimentSignal(),
		},
		[]signals.CategoryProvider{
			signals.NewRuleCategorySignal(pack),
			signals.NewLexiconCategorySignal(),
		},
		signals.NewEmotionSignal(),
	)
}

func TestPipelineUrgentSafetyReport(t *testing.T) {
	pipeline := newTestPipeline(nil)

	result, err := pipeline.Analyze(context.Background(), models.AnalysisRequest{
		Text: "The streetlight is broken and this is an urgent safety issue!",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.Category != "Public Safety" {
		t.Errorf("Category = %q, want Public Safety", result.Category)
	}
	if result.Sentiment != models.SentimentNegative {
		t.Errorf("Sentiment = %q, want negative", result.Sentiment)
	}
	if result.Priority != models.PriorityHigh {
		t.Errorf("Priority = %q, want high", result.Priority)
	}
	if result.UrgencyScore != 10 {
		t.Errorf("UrgencyScore = %v, want 10", result.UrgencyScore)
	}
	if result.SignalCount == 0 {
		t.Error("SignalCount = 0, want contributing signals")
	}
	if len(result.MatchedKeywords) == 0 {
		t.Error("MatchedKeywords empty, want keyword evidence")
	}
}

func TestPipelinePositiveFeedback(t *testing.T) {
	pipeline := newTestPipeline(nil)

	result, err := pipeline.Analyze(context.Background(), models.AnalysisRequest{
		Text: "Thank you, the new park is excellent.",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.Sentiment != models.SentimentPositive {
		t.Errorf("Sentiment = %q, want positive", result.Sentiment)
	}
	if result.Category != models.CategoryGeneral {
		t.Errorf("Category = %q, want %q", result.Category, models.CategoryGeneral)
	}
	if result.Priority != models.PriorityLow {
		t.Errorf("Priority = %q, want low", result.Priority)
	}
	if result.UrgencyScore != 3.5 {
		t.Errorf("UrgencyScore = %v, want 3.5", result.UrgencyScore)
	}
}

func TestPipelineWhitespaceOnlyText(t *testing.T) {
	pipeline := newTestPipeline(nil)

	result, err := pipeline.Analyze(context.Background(), models.AnalysisRequest{Text: "   \t  "})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.SignalCount != 0 {
		t.Errorf("SignalCount = %d, want 0", result.SignalCount)
	}
	if result.Sentiment != models.SentimentNeutral {
		t.Errorf("Sentiment = %q, want neutral", result.Sentiment)
	}
	if result.Category != models.CategoryGeneral {
		t.Errorf("Category = %q, want %q", result.Category, models.CategoryGeneral)
	}
	if result.SentimentConfidence != 0.1 || result.CategoryConfidence != 0.1 {
		t.Errorf("confidences = %v/%v, want the 0.1 default",
			result.SentimentConfidence, result.CategoryConfidence)
	}
}

func TestPipelineContextAdjustsConfidence(t *testing.T) {
	pipeline := newTestPipeline(nil)
	text := "The garbage collection failed again, terrible service."

	plain, err := pipeline.Analyze(context.Background(), models.AnalysisRequest{Text: text})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	adjusted, err := pipeline.Analyze(context.Background(), models.AnalysisRequest{
		Text:    text,
		Context: map[string]string{models.ContextUserHistory: "negative"},
	})
	if err != nil {
		t.Fatalf("Analyze with context: %v", err)
	}

	if adjusted.Sentiment != plain.Sentiment {
		t.Errorf("context changed the label: %q vs %q", adjusted.Sentiment, plain.Sentiment)
	}
	if adjusted.SentimentConfidence >= plain.SentimentConfidence {
		t.Errorf("adjusted confidence %v, want below plain %v",
			adjusted.SentimentConfidence, plain.SentimentConfidence)
	}
}

func TestPipelineDeterministic(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pipeline := newTestPipeline(clock)
	req := models.AnalysisRequest{Text: "The hospital emergency ward has no doctor available."}

	first, err := pipeline.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := pipeline.Analyze(context.Background(), req)
		if err != nil {
			t.Fatalf("Analyze run %d: %v", i, err)
		}
		if again.Sentiment != first.Sentiment || again.Category != first.Category ||
			again.Priority != first.Priority || again.UrgencyScore != first.UrgencyScore ||
			again.Subcategory != first.Subcategory {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}

func TestPipelineUsesInjectedClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	pipeline := newTestPipeline(clock)

	result, err := pipeline.Analyze(context.Background(), models.AnalysisRequest{Text: "pothole on main road"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !result.GeneratedAt.Equal(clock.Now().UTC()) {
		t.Errorf("GeneratedAt = %v, want %v", result.GeneratedAt, clock.Now().UTC())
	}
}

func TestPipelineCancelledContext(t *testing.T) {
	pipeline := newTestPipeline(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := pipeline.Analyze(ctx, models.AnalysisRequest{Text: "anything"}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestPipelineEmotionMetadata(t *testing.T) {
	pipeline := newTestPipeline(nil)

	result, err := pipeline.Analyze(context.Background(), models.AnalysisRequest{
		Text: "I am scared and worried about the open manhole.",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Emotions == nil {
		t.Fatal("Emotions = nil, want detected emotions")
	}
	if result.Emotions.Dominant != "fear" {
		t.Errorf("Dominant = %q, want fear", result.Emotions.Dominant)
	}
}
