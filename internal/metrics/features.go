// Package metrics derives privacy-safe shape features from text so telemetry
// can describe an utterance or a command without recording it.
package metrics

import (
	"strings"
	"unicode/utf8"
)

// Features holds basic local text features derived from an input string.
type Features struct {
	Bytes    int
	Runes    int
	Words    int
	Lines    int
	Question bool
}

// CountFeatures computes byte, rune, word and line counts for s and whether
// it reads as a question.
func CountFeatures(s string) Features {
	return Features{
		Bytes:    len(s),
		Runes:    utf8.RuneCountInString(s),
		Words:    len(strings.Fields(s)),
		Lines:    countLines(s),
		Question: isQuestion(s),
	}
}

// Map renders f as telemetry fields.
func (f Features) Map() map[string]any {
	return map[string]any{
		"bytes":    f.Bytes,
		"runes":    f.Runes,
		"words":    f.Words,
		"lines":    f.Lines,
		"question": f.Question,
	}
}

// countLines returns 0 for empty strings; otherwise 1 plus the number of '\n' runes.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return 1 + strings.Count(s, "\n")
}

var questionWords = []string{"what", "who", "where", "when", "why", "how", "which", "can", "could", "do", "does", "is", "are", "will", "would"}

func isQuestion(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.HasSuffix(s, "?") {
		return true
	}
	first := strings.ToLower(strings.Fields(s)[0])
	for _, w := range questionWords {
		if first == w {
			return true
		}
	}
	return false
}
