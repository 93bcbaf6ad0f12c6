package signals

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/civicstack/civic-triage/internal/models"
)

// Axis names the classification axis a rule votes on.
type Axis string

const (
	// AxisSentiment marks rules voting on the sentiment axis.
	AxisSentiment Axis = "sentiment"
	// AxisCategory marks rules voting on the category axis.
	AxisCategory Axis = "category"
)

// Rule is one ordered predicate: the first rule whose Any keyword appears in
// the text wins with its fixed confidence.
type Rule struct {
	ID         string   `yaml:"id"`
	Axis       Axis     `yaml:"axis"`
	Any        []string `yaml:"any"`
	Label      string   `yaml:"label"`
	Confidence float64  `yaml:"confidence"`
}

// RulePack is the YAML root structure for rule configuration.
type RulePack struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRulePack reads a rule pack from the provided path. An empty path or a
// missing file falls back to the built-in default pack.
func LoadRulePack(path string) (*RulePack, error) {
	if path == "" {
		return DefaultRulePack(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultRulePack(), nil
		}
		return nil, fmt.Errorf("read rule pack: %w", err)
	}
	var pack RulePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse rule pack: %w", err)
	}
	if len(pack.Rules) == 0 {
		return DefaultRulePack(), nil
	}
	return &pack, nil
}

// DefaultRulePack returns the built-in ordered rules. Category rules place
// safety language first so it wins over overlapping infrastructure terms.
func DefaultRulePack() *RulePack {
	return &RulePack{Rules: []Rule{
		{ID: "safety-emergency", Axis: AxisCategory, Any: []string{"emergency", "urgent", "help", "police", "fire"}, Label: "Public Safety", Confidence: 0.9},
		{ID: "infrastructure", Axis: AxisCategory, Any: []string{"road", "pothole", "streetlight", "water", "electricity"}, Label: "Infrastructure", Confidence: 0.8},
		{ID: "environment", Axis: AxisCategory, Any: []string{"garbage", "waste", "pollution", "clean"}, Label: "Environment", Confidence: 0.8},
		{ID: "transportation", Axis: AxisCategory, Any: []string{"bus", "traffic", "parking", "transport"}, Label: "Transportation", Confidence: 0.8},
		{ID: "healthcare", Axis: AxisCategory, Any: []string{"hospital", "doctor", "health", "medical"}, Label: "Healthcare", Confidence: 0.8},
		{ID: "education", Axis: AxisCategory, Any: []string{"school", "education", "teacher", "student"}, Label: "Education", Confidence: 0.8},
		{ID: "digital-services", Axis: AxisCategory, Any: []string{"website", "online", "app", "digital"}, Label: "Digital Services", Confidence: 0.8},
		{ID: "gratitude", Axis: AxisSentiment, Any: []string{"thank", "appreciate", "grateful", "well done", "excellent"}, Label: string(models.SentimentPositive), Confidence: 0.8},
		{ID: "complaint", Axis: AxisSentiment, Any: []string{"terrible", "awful", "horrible", "disgusting", "hate", "worst"}, Label: string(models.SentimentNegative), Confidence: 0.8},
	}}
}

// RuleSignal applies an ordered rule list for one axis. No matching rule
// yields the axis fallback label at 0.5 without evidence.
type RuleSignal struct {
	id       string
	rules    []Rule
	fallback string
}

// NewRuleSentimentSignal builds the sentiment-axis rule provider from a pack.
func NewRuleSentimentSignal(pack *RulePack) *RuleSignal {
	return newRuleSignal("rule-sentiment", pack, AxisSentiment, string(models.SentimentNeutral))
}

// NewRuleCategorySignal builds the category-axis rule provider from a pack.
func NewRuleCategorySignal(pack *RulePack) *RuleSignal {
	return newRuleSignal("rule-category", pack, AxisCategory, models.CategoryGeneral)
}

func newRuleSignal(id string, pack *RulePack, axis Axis, fallback string) *RuleSignal {
	if pack == nil {
		pack = DefaultRulePack()
	}
	var rules []Rule
	for _, r := range pack.Rules {
		if r.Axis == axis {
			rules = append(rules, r)
		}
	}
	return &RuleSignal{id: id, rules: rules, fallback: fallback}
}

// ID identifies this provider in signal results.
func (s *RuleSignal) ID() string { return s.id }

// Analyze satisfies SentimentProvider.
func (s *RuleSignal) Analyze(ctx context.Context, text string) models.SignalResult {
	return s.match(text)
}

// Classify satisfies CategoryProvider.
func (s *RuleSignal) Classify(ctx context.Context, text string) models.SignalResult {
	return s.match(text)
}

func (s *RuleSignal) match(text string) models.SignalResult {
	lower := strings.ToLower(text)
	for _, rule := range s.rules {
		for _, kw := range rule.Any {
			if kw == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(kw)) {
				return models.SignalResult{
					SourceID:   s.id,
					Label:      rule.Label,
					Confidence: rule.Confidence,
					Evidence:   []string{"rule:" + rule.ID},
				}
			}
		}
	}
	return models.SignalResult{SourceID: s.id, Label: s.fallback, Confidence: 0.5}
}
