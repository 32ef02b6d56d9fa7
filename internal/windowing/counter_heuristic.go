package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/marvin/memory"
)

// TokenCounter estimates the input cost of a conversation turn.
type TokenCounter interface {
	CountTurn(t memory.Turn) int
}

// HeuristicCounter is the default deterministic estimator: rune count of the
// content plus a fixed per-turn overhead for role framing.
type HeuristicCounter struct{}

// Fixed per-turn overhead; changing this requires updating the guard test.
const turnOverhead = 4

func (HeuristicCounter) CountTurn(t memory.Turn) int {
	return utf8.RuneCountInString(t.Content) + turnOverhead
}
