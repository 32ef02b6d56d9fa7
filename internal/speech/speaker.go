package speech

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/petasbytes/marvin/internal/logger"
)

// Speaker voices a reply. Speaking is best effort: failures are logged,
// never returned.
type Speaker interface {
	Speak(ctx context.Context, text string)
}

// Silent is a Speaker that does nothing.
type Silent struct{}

// Speak implements Speaker.
func (Silent) Speak(context.Context, string) {}

// DefaultSpeakTimeout bounds one utterance.
const DefaultSpeakTimeout = 30 * time.Second

// psSpeak reads the text from the environment so it is never parsed as script.
const psSpeak = `Add-Type -AssemblyName System.Speech; ` +
	`(New-Object System.Speech.Synthesis.SpeechSynthesizer).Speak($env:MARVIN_SAY)`

// Voice is an OS text-to-speech program.
type Voice struct {
	Name string
	argv func(text string) []string
	env  func(text string) []string
}

// CommandSpeaker speaks through an OS TTS program.
type CommandSpeaker struct {
	voice   Voice
	timeout time.Duration
	log     *slog.Logger
}

// DetectVoice finds a TTS program for goos using lookPath.
// ok is false when none is installed.
func DetectVoice(goos string, lookPath func(string) (string, error)) (Voice, bool) {
	has := func(name string) bool {
		_, err := lookPath(name)
		return err == nil
	}
	switch goos {
	case "darwin":
		if has("say") {
			return Voice{Name: "say", argv: func(t string) []string { return []string{"say", "--", t} }}, true
		}
	case "windows":
		for _, ps := range []string{"powershell", "pwsh"} {
			if has(ps) {
				return Voice{
					Name: ps,
					argv: func(string) []string { return []string{ps, "-NoProfile", "-NonInteractive", "-Command", psSpeak} },
					env:  func(t string) []string { return []string{"MARVIN_SAY=" + t} },
				}, true
			}
		}
	default:
		if has("espeak") {
			return Voice{Name: "espeak", argv: func(t string) []string { return []string{"espeak", "--", t} }}, true
		}
		if has("spd-say") {
			return Voice{Name: "spd-say", argv: func(t string) []string { return []string{"spd-say", "--wait", "--", t} }}, true
		}
	}
	return Voice{}, false
}

// Argv returns the command line that speaks text.
func (v Voice) Argv(text string) []string { return v.argv(text) }

// NewSpeaker returns a CommandSpeaker for the running OS, or Silent when no
// TTS program is available.
func NewSpeaker(log *slog.Logger) Speaker {
	v, ok := DetectVoice(runtime.GOOS, exec.LookPath)
	if !ok {
		if log != nil {
			log.Warn("no text-to-speech program found, replies will be printed only")
		}
		return Silent{}
	}
	return NewCommandSpeaker(v, DefaultSpeakTimeout, log)
}

// NewCommandSpeaker speaks with v.
func NewCommandSpeaker(v Voice, timeout time.Duration, log *slog.Logger) *CommandSpeaker {
	if timeout <= 0 {
		timeout = DefaultSpeakTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CommandSpeaker{voice: v, timeout: timeout, log: log}
}

// Speak implements Speaker. It blocks until the program exits.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) {
	if text == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	argv := s.voice.Argv(text)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if s.voice.env != nil {
		cmd.Env = append(os.Environ(), s.voice.env(text)...)
	}
	if err := cmd.Run(); err != nil {
		s.log.Debug("text-to-speech failed", "voice", s.voice.Name, "err", err)
	}
}
