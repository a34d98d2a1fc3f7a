// Package normalize canonicalizes user-typed item and city names.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rule is a literal substring replacement
type Rule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// DefaultRules covers spelling variants and Spanish size words found in the menu data
var DefaultRules = []Rule{
	{From: "coca cola", To: "coca-cola"},
	{From: "pequeñas", To: "small"},
	{From: "grandes", To: "large"},
	{From: "medianas", To: "medium"},
}

// Normalizer lowercases, trims and rewrites text with an ordered rule table.
// Rules run in order over the whole string, so the output of an earlier rule
// can be matched by a later one.
type Normalizer struct {
	rules []Rule
}

// New creates a normalizer. Rules with an empty From are dropped.
func New(rules []Rule) *Normalizer {
	n := &Normalizer{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		from := strings.ToLower(r.From)
		if from == "" {
			continue
		}
		n.rules = append(n.rules, Rule{From: from, To: r.To})
	}
	return n
}

// Plain returns a normalizer with no replacement rules
func Plain() *Normalizer {
	return &Normalizer{}
}

// Normalize returns the canonical form of raw
func (n *Normalizer) Normalize(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if n == nil {
		return s
	}
	for _, r := range n.rules {
		s = strings.ReplaceAll(s, r.From, r.To)
	}
	return s
}

// Rules returns a copy of the rule table
func (n *Normalizer) Rules() []Rule {
	if n == nil {
		return nil
	}
	return append([]Rule(nil), n.rules...)
}

// Title renders a normalized name for display, e.g. "pizza margarita" -> "Pizza Margarita".
// A cases.Caser keeps state between calls, so each call gets its own.
func Title(s string) string {
	return cases.Title(language.Spanish).String(s)
}
