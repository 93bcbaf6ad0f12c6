package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/civicstack/civic-triage/internal/models"
	"github.com/civicstack/civic-triage/internal/normalize"
	"github.com/civicstack/civic-triage/internal/signals"
)

// Pipeline orchestrates one submission's analysis: normalization, concurrent
// signal collection per axis, ensemble combination, context adjustment, and
// priority scoring.
type Pipeline struct {
	logger    *slog.Logger
	clock     clockwork.Clock
	sentiment []signals.SentimentProvider
	category  []signals.CategoryProvider
	emotion   *signals.EmotionSignal
}

// NewPipeline constructs the analysis pipeline. Providers must be supplied in
// priority order (model, rule, lexicon); that order drives ensemble tie-breaks.
func NewPipeline(
	logger *slog.Logger,
	clock clockwork.Clock,
	sentiment []signals.SentimentProvider,
	category []signals.CategoryProvider,
	emotion *signals.EmotionSignal,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		logger:    logger,
		clock:     clock,
		sentiment: sentiment,
		category:  category,
		emotion:   emotion,
	}
}

// Analyze runs the full flow for one submission. Text that normalizes to
// empty yields the low-confidence default verdict with signal_count zero
// rather than an error.
func (p *Pipeline) Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return models.AnalysisResult{}, err
	}

	normalized := normalize.Normalize(req.Text)

	var sentimentVotes, categoryVotes []models.SignalResult
	if normalized != "" {
		sentimentVotes = p.collectSentiment(ctx, normalized)
		categoryVotes = p.collectCategory(ctx, normalized)
	}

	sentiment := AdjustConfidence(Combine(sentimentVotes, string(models.SentimentNeutral)), req.Context)
	category := AdjustConfidence(Combine(categoryVotes, models.CategoryGeneral), req.Context)

	result := models.AnalysisResult{
		Sentiment:           models.Sentiment(sentiment.Label),
		SentimentConfidence: sentiment.Confidence,
		Category:            category.Label,
		CategoryConfidence:  category.Confidence,
		Subcategory:         Subcategory(normalized, category.Label),
		Priority:            AssessPriority(normalized, category.Label),
		UrgencyScore:        UrgencyScore(normalized, category.Label),
		MatchedKeywords:     collectEvidence(categoryVotes),
		Agreement:           sentiment.Agreement && category.Agreement,
		SignalCount:         sentiment.SignalCount + category.SignalCount,
		GeneratedAt:         p.clock.Now().UTC(),
	}

	if p.emotion != nil && normalized != "" {
		emotions := p.emotion.Detect(normalized)
		result.Emotions = &emotions
	}

	return result, nil
}

func (p *Pipeline) collectSentiment(ctx context.Context, text string) []models.SignalResult {
	out := make([]models.SignalResult, len(p.sentiment))

	var wg sync.WaitGroup
	for i, provider := range p.sentiment {
		wg.Add(1)
		go func(i int, provider signals.SentimentProvider) {
			defer wg.Done()
			out[i] = provider.Analyze(ctx, text)
		}(i, provider)
	}
	wg.Wait()

	p.logAbstains(out)
	return out
}

func (p *Pipeline) collectCategory(ctx context.Context, text string) []models.SignalResult {
	out := make([]models.SignalResult, len(p.category))

	var wg sync.WaitGroup
	for i, provider := range p.category {
		wg.Add(1)
		go func(i int, provider signals.CategoryProvider) {
			defer wg.Done()
			out[i] = provider.Classify(ctx, text)
		}(i, provider)
	}
	wg.Wait()

	p.logAbstains(out)
	return out
}

func (p *Pipeline) logAbstains(results []models.SignalResult) {
	for _, r := range results {
		if r.Abstained() {
			p.logger.Debug("signal abstained",
				slog.String("source", r.SourceID),
				slog.String("error", r.Err))
		}
	}
}

// collectEvidence merges keyword evidence from the contributing category
// signals, preserving first occurrence order.
func collectEvidence(results []models.SignalResult) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, r := range results {
		if r.Abstained() {
			continue
		}
		for _, kw := range r.Evidence {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
