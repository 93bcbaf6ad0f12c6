// Package llm abstracts the external model provider used by the model-based
// signal. Failures and timeouts surface as plain errors; the signal layer
// turns them into abstains.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
)

// Classification is a labeled score returned by Classify.
type Classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Provider is the external model collaborator. Implementations must honour
// context deadlines imposed by the caller.
type Provider interface {
	Generate(ctx context.Context, prompt string, maxTokens int, stopSequences []string) (string, error)
	Classify(ctx context.Context, text string, labels []string) (Classification, error)
}

const classifySystemPrompt = `You classify short citizen submissions for a municipal triage system.
Reply with a single JSON object of the form {"label": "<one of the candidates>", "score": <confidence between 0 and 1>} and nothing else.`

// AnthropicProvider implements Provider against the Anthropic Messages API.
type AnthropicProvider struct {
	client  anthropic.Client
	model   string
	limiter *rate.Limiter
}

// NewAnthropicProvider builds a provider for the given model. A non-positive
// requestsPerSecond disables client-side rate limiting.
func NewAnthropicProvider(apiKey, model string, requestsPerSecond float64) *AnthropicProvider {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &AnthropicProvider{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		limiter: limiter,
	}
}

// Generate produces free-form text for the prompt.
func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, maxTokens int, stopSequences []string) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return p.complete(ctx, "", prompt, int64(maxTokens), stopSequences)
}

// Classify asks the model to pick one of the candidate labels and returns the
// parsed label with its confidence.
func (p *AnthropicProvider) Classify(ctx context.Context, text string, labels []string) (Classification, error) {
	if len(labels) == 0 {
		return Classification{}, fmt.Errorf("no candidate labels")
	}

	prompt := fmt.Sprintf("Candidates: %s\n\nText: %s", strings.Join(labels, ", "), text)
	raw, err := p.complete(ctx, classifySystemPrompt, prompt, 128, nil)
	if err != nil {
		return Classification{}, err
	}

	cls, err := parseClassification(raw, labels)
	if err != nil {
		return Classification{}, fmt.Errorf("parse model reply: %w", err)
	}
	return cls, nil
}

func (p *AnthropicProvider) complete(ctx context.Context, system, prompt string, maxTokens int64, stopSequences []string) (string, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if len(stopSequences) > 0 {
		params.StopSequences = stopSequences
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic message: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("no text content in response")
}

// parseClassification accepts the requested JSON shape but tolerates models
// answering with a bare label.
func parseClassification(raw string, labels []string) (Classification, error) {
	raw = strings.TrimSpace(raw)

	var cls Classification
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			if err := json.Unmarshal([]byte(raw[start:end+1]), &cls); err == nil && cls.Label != "" {
				if matched, ok := matchLabel(cls.Label, labels); ok {
					cls.Label = matched
					cls.Score = clamp01(cls.Score)
					return cls, nil
				}
			}
		}
	}

	if matched, ok := matchLabel(raw, labels); ok {
		return Classification{Label: matched, Score: 0.8}, nil
	}
	return Classification{}, fmt.Errorf("unrecognized label in %q", raw)
}

func matchLabel(candidate string, labels []string) (string, bool) {
	candidate = strings.ToLower(strings.TrimSpace(candidate))
	for _, label := range labels {
		if strings.EqualFold(label, candidate) || strings.Contains(candidate, strings.ToLower(label)) {
			return label, true
		}
	}
	return "", false
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
