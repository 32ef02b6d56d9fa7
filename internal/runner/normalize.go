package runner

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// utterance keeps the raw words next to their normalized forms so payloads
// can be cut from what the user actually said.
type utterance struct {
	raw   string
	norm  string   // normalized words joined by one space
	words []string // raw words that survive normalization
	keys  []string // normalized form of each entry in words
}

func parseUtterance(raw string) utterance {
	fold := cases.Fold()
	u := utterance{raw: strings.TrimSpace(raw)}
	for _, w := range strings.Fields(u.raw) {
		k := stripPunct(fold.String(w))
		if k == "" {
			continue
		}
		u.words = append(u.words, w)
		u.keys = append(u.keys, k)
	}
	u.norm = strings.Join(u.keys, " ")
	return u
}

// normalize case-folds s, drops punctuation and collapses whitespace.
func normalize(s string) string { return parseUtterance(s).norm }

func stripPunct(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, s)
}

// hasPrefix reports whether the normalized words start with phrase.
func (u utterance) hasPrefix(phrase string) bool {
	p := strings.Fields(phrase)
	if len(p) > len(u.keys) {
		return false
	}
	for i := range p {
		if u.keys[i] != p[i] {
			return false
		}
	}
	return true
}

// after returns the raw text following the first n words, with edge
// punctuation and sentence-final marks trimmed.
func (u utterance) after(n int) string {
	if n >= len(u.words) {
		return ""
	}
	return cleanPayload(strings.Join(u.words[n:], " "))
}

func cleanPayload(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, ":,;- ")
	return strings.TrimRight(s, ".!?,; ")
}
