package intent

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/petasbytes/marvin/internal/introspect"
	"github.com/petasbytes/marvin/internal/logger"
	"github.com/petasbytes/marvin/internal/telemetry"
	"github.com/petasbytes/marvin/internal/windowing"
	"github.com/petasbytes/marvin/memory"
)

// DefaultContextTurns is how many prior turns accompany each request.
const DefaultContextTurns = 8

// Sender is the reasoning-service transport. turns ends with the new user
// utterance.
type Sender interface {
	Send(ctx context.Context, system string, turns []memory.Turn) (string, error)
}

// Summarizer supplies the memory summary for the briefing.
type Summarizer interface {
	Summarize() string
}

// Host supplies the host context for the briefing.
type Host interface {
	Snapshot() introspect.Snapshot
}

// Resolver builds requests, calls the Sender and decodes its reply.
type Resolver struct {
	sender       Sender
	conv         *memory.Conversation
	memory       Summarizer
	host         Host
	name         string
	contextTurns int
	runeBudget   int
	counter      windowing.TokenCounter
	log          *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMemory includes the memory summary in each briefing.
func WithMemory(s Summarizer) Option { return func(r *Resolver) { r.memory = s } }

// WithHost includes host context in each briefing.
func WithHost(h Host) Option { return func(r *Resolver) { r.host = h } }

// WithName sets the assistant's name used in the briefing.
func WithName(name string) Option { return func(r *Resolver) { r.name = name } }

// WithContextTurns sets how many prior turns are sent (0 sends none).
func WithContextTurns(n int) Option {
	return func(r *Resolver) {
		if n >= 0 {
			r.contextTurns = n
		}
	}
}

// WithRuneBudget bounds the prior turns sent by estimated size (0 = unlimited).
func WithRuneBudget(n int) Option { return func(r *Resolver) { r.runeBudget = n } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// NewResolver returns a Resolver that records turns into conv.
func NewResolver(sender Sender, conv *memory.Conversation, opts ...Option) *Resolver {
	r := &Resolver{
		sender:       sender,
		conv:         conv,
		name:         "Marvin",
		contextTurns: DefaultContextTurns,
		counter:      windowing.HeuristicCounter{},
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Briefing assembles the current system prompt.
func (r *Resolver) Briefing() string {
	b := Briefing{Name: r.name}
	if r.host != nil {
		b.Host = r.host.Snapshot()
	}
	if r.memory != nil {
		b.MemorySummary = r.memory.Summarize()
	}
	return b.Render()
}

// Resolve asks the reasoning service what to do with utterance.
//
// The utterance is recorded in the conversation before the call and the raw
// reply after it, so a failed call still leaves the user turn logged. Errors
// are transport failures only; contract violations decode to Chat.
func (r *Resolver) Resolve(ctx context.Context, utterance string) (Decision, error) {
	system := r.Briefing()

	history, stats := windowing.PrepareWindow(r.conv.Recent(r.contextTurns), r.contextTurns, r.runeBudget, r.counter)
	telemetry.EmitTurn(ctx, "window_prepared", map[string]any{
		"included_turns":     stats.IncludedTurns,
		"skipped_turns":      stats.SkippedTurns,
		"estimated_runes":    stats.Total,
		"budget":             stats.Budget,
		"over_budget_newest": stats.OverBudgetNewest,
	})

	r.conv.Append(memory.RoleUser, utterance)
	turns := append(history, r.conv.Recent(1)...)

	start := time.Now()
	raw, err := r.sender.Send(ctx, system, turns)
	if err != nil {
		r.log.Debug("reasoning service call failed", "err", err, "turns", len(turns))
		return nil, fmt.Errorf("intent: resolve: %w", err)
	}
	r.conv.Append(memory.RoleAssistant, raw)

	d, ok := Decode(raw)
	if !ok {
		r.log.Debug("reply broke the contract, treating as chat", "runes", utf8.RuneCountInString(raw))
	}
	telemetry.EmitTurn(ctx, "intent_resolved", map[string]any{
		"mode":        d.Kind(),
		"contract_ok": ok,
		"reply_runes": utf8.RuneCountInString(raw),
		"latency_ms":  time.Since(start).Milliseconds(),
	})
	return d, nil
}
