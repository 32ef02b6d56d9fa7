package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/petasbytes/marvin/internal/executor"
	"github.com/petasbytes/marvin/internal/intent"
	"github.com/petasbytes/marvin/internal/logger"
	"github.com/petasbytes/marvin/internal/provider"
	"github.com/petasbytes/marvin/internal/speech"
	"github.com/petasbytes/marvin/internal/telemetry"
	"github.com/petasbytes/marvin/memory"
)

// Resolver turns an utterance into a decision.
type Resolver interface {
	Resolve(ctx context.Context, utterance string) (intent.Decision, error)
}

// Executor runs a shell command.
type Executor interface {
	Execute(ctx context.Context, command string) executor.Result
}

// Response is the outcome of one turn.
type Response struct {
	Text  string // shown to the user
	Speak string // voiced; empty means Text
	Exit  bool
	Kind  string // local command name, "run", "chat" or "error"
}

// Spoken returns what should be voiced.
func (r Response) Spoken() string {
	if r.Speak != "" {
		return r.Speak
	}
	return r.Text
}

// Runner owns the per-session state and handles turns one at a time.
type Runner struct {
	store    *memory.Store
	resolver Resolver
	exec     Executor
	notify   func(string)
	log      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithProgress receives progress lines, such as the command about to run,
// before the turn completes.
func WithProgress(fn func(string)) Option {
	return func(r *Runner) { r.notify = fn }
}

// New returns a Runner. Collaborators are injected so each turn can be
// tested in isolation.
func New(store *memory.Store, resolver Resolver, exec Executor, opts ...Option) *Runner {
	r := &Runner{
		store:    store,
		resolver: resolver,
		exec:     exec,
		notify:   func(string) {},
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleTurn processes one utterance. It never fails: errors become replies.
func (r *Runner) HandleTurn(ctx context.Context, text string) Response {
	if _, ok := telemetry.TurnIDFromContext(ctx); !ok {
		ctx = telemetry.WithTurnID(ctx, telemetry.NewTurnID())
	}
	telemetry.EmitTurn(ctx, "turn_started", nil)
	telemetry.EmitLocalFeatures(ctx, text)

	u := parseUtterance(text)
	if cmd, n, ok := matchLocal(u); ok {
		r.log.Debug("local command", "name", cmd.name)
		telemetry.EmitTurn(ctx, "local_command", map[string]any{"name": cmd.name})
		resp := cmd.handle(r, ctx, u, n)
		resp.Kind = cmd.name
		return resp
	}

	d, err := r.resolver.Resolve(ctx, u.raw)
	if err != nil {
		kind := provider.Classify(err)
		r.log.Warn("reasoning service unavailable", "kind", kind, "err", err)
		return Response{Text: kind.Reply(), Kind: "error"}
	}

	switch d := d.(type) {
	case intent.Run:
		return r.run(ctx, d.Command)
	case intent.Chat:
		// Display trims the reply; a blank one becomes NoAnswer.
		say := strings.TrimSpace(d.Say)
		if say == "" {
			say = NoAnswer
		}
		return Response{Text: say, Kind: "chat"}
	default:
		return Response{Text: "Sorry, I didn't understand that.", Kind: "error"}
	}
}

func (r *Runner) run(ctx context.Context, command string) Response {
	r.notify("Executing: " + command)
	res := r.exec.Execute(ctx, command)

	telemetry.EmitTurn(ctx, "command_exec", map[string]any{
		"status":       res.Status.String(),
		"exit_code":    res.ExitCode,
		"success":      res.Success,
		"duration_ms":  res.Duration.Milliseconds(),
		"output_bytes": len(res.Output),
	})
	if !res.Success {
		r.log.Info("command failed", "status", res.Status, "exit_code", res.ExitCode)
	}

	ack := fmt.Sprintf("Done. Exit code %d.", res.ExitCode)
	text := ack
	if res.Output != "" {
		text = res.Output + "\n" + ack
	}
	return Response{Text: text, Speak: ack, Kind: "run"}
}

// Display shows replies and progress lines.
type Display interface {
	Say(text string)
	Note(text string)
}

// Loop greets the user and handles turns until exit, end of input or ctx
// cancellation. It returns nil on exit and end of input.
func (r *Runner) Loop(ctx context.Context, name string, in speech.Listener, out Display, voice speech.Speaker) error {
	welcome := Welcome(name, time.Now())
	out.Say(welcome)
	voice.Speak(ctx, welcome)

	for {
		text, err := in.Listen(ctx)
		switch {
		case err == nil:
		case errors.Is(err, speech.ErrTooLong):
			out.Note("That was too long for me, please try a shorter request.")
			continue
		case errors.Is(err, speech.ErrNoSpeech):
			out.Note("No speech detected.")
			continue
		case errors.Is(err, io.EOF):
			return nil
		default:
			return err
		}

		resp := r.HandleTurn(ctx, text)
		out.Say(resp.Text)
		voice.Speak(ctx, resp.Spoken())
		if resp.Exit {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
