// Package moderation screens chat input for offensive language.
package moderation

import (
	"unicode"

	"maitred/internal/normalize"

	goaway "github.com/TwiN/go-away"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MsgRefusal is the reply given to flagged input
const MsgRefusal = "Por favor, mantengamos una conversación respetuosa. ¿En qué puedo ayudarte con tu pedido?"

// DefaultTerms is a small Spanish and English word list
var DefaultTerms = []string{
	"idiota", "imbécil", "estúpido", "estúpida", "pendejo", "pendeja", "cabrón", "mierda", "puta", "joder", "gilipollas",
	"idiot", "stupid", "moron", "shit", "fuck", "bitch", "asshole", "bastard",
}

// FalsePositives are ordinary words that contain a default term
var FalsePositives = []string{
	"computa", "disputa", "reputa", "diputa", "imputa", "amputa",
}

// Filter flags text containing a listed term. Matching ignores case and
// accents and sees through leetspeak such as "idi0ta".
type Filter struct {
	detector *goaway.ProfanityDetector
	terms    int
}

// NewFilter creates a filter over terms. Terms are normalized; blank ones are dropped.
func NewFilter(terms []string) *Filter {
	plain := normalize.Plain()
	dictionary := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		t = stripAccents(plain.Normalize(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		dictionary = append(dictionary, t)
	}

	detector := goaway.NewProfanityDetector().
		WithSanitizeLeetSpeak(true).
		WithSanitizeSpecialCharacters(true).
		WithSanitizeAccents(true).
		WithCustomDictionary(dictionary, FalsePositives, nil)
	return &Filter{detector: detector, terms: len(dictionary)}
}

// IsProfane reports whether text contains a listed term. A nil filter flags nothing.
func (f *Filter) IsProfane(text string) bool {
	if f == nil || f.terms == 0 {
		return false
	}
	return f.detector.IsProfane(text)
}

// Len returns the number of terms
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return f.terms
}

// stripAccents folds "imbécil" to "imbecil", the form the detector compares against
func stripAccents(s string) string {
	out, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		return s
	}
	return out
}
