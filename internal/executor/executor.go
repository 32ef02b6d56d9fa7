// Package executor runs shell commands on behalf of the assistant.
//
// Execute never returns an error: launch failures, non-zero exits and
// timeouts are all described by the Result so the turn loop can report them.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/petasbytes/marvin/internal/logger"
	"github.com/petasbytes/marvin/internal/safety"
)

const (
	// DefaultTimeout bounds each command's wall-clock time.
	DefaultTimeout = 10 * time.Second

	// ExitTimeout is reported when a command is killed for exceeding the timeout.
	ExitTimeout = 124

	// ExitLaunchFailed is reported when the shell could not be started.
	ExitLaunchFailed = 1

	defaultMaxOutput = 1 << 20
	waitDelay        = 500 * time.Millisecond
)

// Status classifies how a command ended.
type Status int

const (
	// Completed means the process ran to exit; ExitCode holds its code.
	Completed Status = iota
	// TimedOut means the process was killed after the timeout.
	TimedOut
	// LaunchFailed means the interpreter could not be started.
	LaunchFailed
	// Interrupted means the caller's context ended first.
	Interrupted
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case TimedOut:
		return "timed_out"
	case LaunchFailed:
		return "launch_failed"
	case Interrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result describes one command execution.
type Result struct {
	Command  string
	Output   string // stdout and stderr merged, trimmed
	ExitCode int
	Status   Status
	Success  bool // exit 0, or a whitelisted non-zero exit
	Duration time.Duration
}

// Executor launches commands through the platform shell.
type Executor struct {
	shell     Shell
	timeout   time.Duration
	policy    *safety.SuccessPolicy
	maxOutput int
	log       *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout sets the per-command timeout; non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithShell overrides the detected interpreter.
func WithShell(s Shell) Option {
	return func(e *Executor) {
		if s.Path != "" {
			e.shell = s
		}
	}
}

// WithPolicy sets the policy deciding which non-zero exits count as success.
func WithPolicy(p *safety.SuccessPolicy) Option {
	return func(e *Executor) { e.policy = p }
}

// WithMaxOutput caps captured output in bytes.
func WithMaxOutput(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxOutput = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns an Executor for the running OS.
func New(opts ...Option) *Executor {
	e := &Executor{
		shell:     DetectShell(runtime.GOOS, nil),
		timeout:   DefaultTimeout,
		maxOutput: defaultMaxOutput,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Shell returns the interpreter commands are run through.
func (e *Executor) Shell() Shell { return e.shell }

// Timeout returns the per-command timeout.
func (e *Executor) Timeout() time.Duration { return e.timeout }

// Execute runs command and waits at most the configured timeout.
func (e *Executor) Execute(ctx context.Context, command string) Result {
	res := Result{Command: command}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	argv := e.shell.Argv(command)
	cmd := exec.CommandContext(execCtx, argv[0], argv[1:]...)
	out := &cappedBuffer{max: e.maxOutput}
	// Same writer for both streams: exec shares one pipe, preserving interleaving.
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.WaitDelay = waitDelay
	configureProcess(cmd)

	e.log.Debug("executing command", "shell", e.shell.Path, "timeout", e.timeout)
	err := cmd.Run()
	text := strings.TrimSpace(out.String())

	switch {
	case errors.Is(execCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		res.Status = TimedOut
		res.ExitCode = ExitTimeout
		res.Output = joinNonEmpty(fmt.Sprintf("[Executor timeout] command exceeded %s", e.timeout), text)
	case ctx.Err() != nil:
		res.Status = Interrupted
		res.ExitCode = ExitLaunchFailed
		res.Output = joinNonEmpty("[Executor error] interrupted", text)
	case err == nil:
		res.Status = Completed
		res.Output = text
	case cmd.ProcessState != nil:
		// Non-zero exit, or a background child kept the pipe open past WaitDelay.
		res.Status = Completed
		res.ExitCode = cmd.ProcessState.ExitCode()
		res.Output = text
	default:
		res.Status = LaunchFailed
		res.ExitCode = ExitLaunchFailed
		res.Output = fmt.Sprintf("[Executor error] %v", err)
	}

	res.Success = res.Status == Completed && e.policy.Succeeded(command, res.ExitCode)
	e.log.Debug("command finished", "status", res.Status, "exit_code", res.ExitCode, "bytes", out.Len())
	return res
}

func joinNonEmpty(head, tail string) string {
	if tail == "" {
		return head
	}
	return head + "\n" + tail
}

// cappedBuffer keeps the first max bytes and silently discards the rest.
type cappedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if room := c.max - c.buf.Len(); room < len(p) {
		c.truncated = true
		if room > 0 {
			c.buf.Write(p[:room])
		}
		return len(p), nil
	}
	return c.buf.Write(p)
}

func (c *cappedBuffer) Len() int { return c.buf.Len() }

func (c *cappedBuffer) String() string {
	if c.truncated {
		return c.buf.String() + "\n-- output truncated --"
	}
	return c.buf.String()
}
