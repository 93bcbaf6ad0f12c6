// Package normalize prepares raw submission text for the signal providers.
package normalize

import (
	"regexp"
	"strings"
)

var (
	urlPattern   = regexp.MustCompile(`http[s]?://(?:[a-zA-Z0-9$\-_@.&+!*(),/#?=~]|(?:%[0-9a-fA-F]{2}))+`)
	emailPattern = regexp.MustCompile(`\S+@\S+`)
	phonePattern = regexp.MustCompile(`\b\d{10}\b|\b\d{3}-\d{3}-\d{4}\b`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// Contraction expansions applied most-specific first so "won't" never
// degrades into "wo not" under the generic n't rule.
var negationReplacer = strings.NewReplacer(
	"won't", "will not",
	"Won't", "will not",
	"can't", "cannot",
	"Can't", "cannot",
	"n't", " not",
)

// Normalize strips contact information, expands contracted negations, and
// collapses whitespace. Deterministic with no failure mode: pathological
// input yields an empty string, which downstream treats as "no signal".
// Negation expansion runs after contact stripping so phone-number-shaped
// tokens are never corrupted.
func Normalize(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = emailPattern.ReplaceAllString(text, "")
	text = phonePattern.ReplaceAllString(text, "")
	text = negationReplacer.Replace(text)
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
