package intent

import (
	"strings"
	"unicode"
)

// words splits lowercased text into letter and digit runs
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// phrase is a query reduced to its words, padded with spaces so that
// entries can be matched on word boundaries with strings.Contains
type phrase string

func newPhrase(query string) phrase {
	return phrase(" " + strings.Join(words(query), " ") + " ")
}

// has reports whether any entry occurs as a whole word or word sequence
func (p phrase) has(entries []string) bool {
	for _, e := range entries {
		if e != "" && strings.Contains(string(p), " "+e+" ") {
			return true
		}
	}
	return false
}

// entryAt returns how many fields, starting at fields[i], spell one of
// the entries. The longest entry wins; 0 means none starts there.
func entryAt(fields []string, i int, entries []string) int {
	best := 0
	for _, e := range entries {
		want := words(e)
		n := len(want)
		if n == 0 || n <= best || i+n > len(fields) {
			continue
		}
		got := words(strings.Join(fields[i:i+n], " "))
		if strings.Join(got, " ") == strings.Join(want, " ") {
			best = n
		}
	}
	return best
}

// trimFragment strips surrounding spaces and sentence punctuation from a captured fragment
func trimFragment(s string) string {
	return strings.Trim(s, " \t.,;:?!¡¿\"'")
}
