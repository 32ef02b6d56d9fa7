// Package windowing selects which recent turns accompany a request to the
// reasoning service.
package windowing

import (
	"fmt"
	"os"

	"github.com/petasbytes/marvin/memory"
)

// Stats summarizes the result of window preparation.
//
// Fields:
// - Total: estimated cost of included turns only.
// - Budget: the rune budget used (0 means unlimited).
// - IncludedTurns: number of turns included.
// - SkippedTurns: candidate turns left out (count cap or budget).
// - OverBudgetNewest: true when the newest turn alone exceeds Budget.
type Stats struct {
	Total            int
	Budget           int
	IncludedTurns    int
	SkippedTurns     int
	OverBudgetNewest bool
}

// PrepareWindow returns the newest turns (oldest→newest) that fit both the
// maxTurns cap and the budget, scanning newest→oldest and stopping at the
// first turn that does not fit. budget <= 0 disables the budget check;
// maxTurns <= 0 yields an empty window.
func PrepareWindow(turns []memory.Turn, maxTurns, budget int, c TokenCounter) ([]memory.Turn, Stats) {
	stats := Stats{Budget: budget}
	if len(turns) == 0 || maxTurns <= 0 {
		stats.SkippedTurns = len(turns)
		return nil, stats
	}

	start := len(turns)
	for i := len(turns) - 1; i >= 0; i-- {
		if stats.IncludedTurns == maxTurns {
			break
		}
		cost := c.CountTurn(turns[i])
		if budget > 0 && stats.Total+cost > budget {
			if stats.IncludedTurns == 0 {
				vlogf("reason=over_budget_newest_turn budget=%d cost=%d", budget, cost)
				stats.OverBudgetNewest = true
			}
			break
		}
		stats.Total += cost
		stats.IncludedTurns++
		start = i
	}
	stats.SkippedTurns = len(turns) - stats.IncludedTurns

	if stats.IncludedTurns == 0 {
		return nil, stats
	}
	window := make([]memory.Turn, stats.IncludedTurns)
	copy(window, turns[start:])
	return window, stats
}

// vlogf prints window decisions when MARVIN_VERBOSE_WINDOW_LOGS=1.
func vlogf(format string, args ...any) {
	if os.Getenv("MARVIN_VERBOSE_WINDOW_LOGS") == "1" {
		fmt.Fprintf(os.Stderr, "windowing: "+format+"\n", args...)
	}
}
