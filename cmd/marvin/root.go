package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petasbytes/marvin/internal/config"
	"github.com/petasbytes/marvin/internal/executor"
	"github.com/petasbytes/marvin/internal/intent"
	"github.com/petasbytes/marvin/internal/introspect"
	"github.com/petasbytes/marvin/internal/logger"
	"github.com/petasbytes/marvin/internal/provider"
	"github.com/petasbytes/marvin/internal/runner"
	"github.com/petasbytes/marvin/internal/speech"
	"github.com/petasbytes/marvin/memory"
)

const rootLongDesc = `Marvin is a voice-style assistant for your terminal.

Each line you type is one utterance. Marvin either handles it locally
(exit, remember that ..., note that ..., what do you remember, show notes,
set preference ... to ...) or asks the reasoning service, which answers with
a reply or a shell command to run on this machine.

Configuration is read from config.yaml in $MARVIN_HOME (default ~/.marvin)
or the working directory, from .env files, and from MARVIN_* variables.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "marvin",
		Short:         "Marvin - a local assistant that chats and runs commands",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, true)
			if err != nil {
				return err
			}
			return runSession(cmd, cfg)
		},
	}
	config.AddFlags(cmd)

	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newMemoryCmd())
	return cmd
}

// loadConfig layers .env, config.yaml, env vars and cmd's flags. validate
// makes configuration problems fatal.
func loadConfig(cmd *cobra.Command, validate bool) (*config.Config, error) {
	if err := config.LoadDotenv("."); err != nil {
		return nil, err
	}
	v, err := config.InitViper()
	if err != nil {
		return nil, err
	}
	return loadFrom(v, cmd, validate)
}

func loadFrom(v *viper.Viper, cmd *cobra.Command, validate bool) (*config.Config, error) {
	if err := config.BindFlags(v, cmd); err != nil {
		return nil, err
	}
	if validate {
		return config.Load(v)
	}
	return config.Decode(v)
}

func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	console := logger.New(
		logger.WithLevel(level),
		logger.WithSource(cfg.Log.Source),
		logger.WithJSON(cfg.Log.JSON),
		logger.WithPretty(!cfg.Log.JSON),
	)
	if cfg.Log.File == "" {
		return console, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	file := logger.New(logger.WithWriter(f), logger.WithJSON(true), logger.WithDebug(true), logger.WithSource(cfg.Log.Source))
	return logger.Multi(console, file), func() { _ = f.Close() }, nil
}

func newSender(ctx context.Context, cfg *config.Config, log *slog.Logger) (intent.Sender, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		o := provider.NewOllama(provider.OllamaConfig{BaseURL: cfg.Ollama.BaseURL, Model: cfg.ResolvedModel()})
		if err := o.Ping(ctx); err != nil {
			log.Warn("ollama is not reachable, replies will fail until it is", "base_url", cfg.Ollama.BaseURL, "err", err)
		}
		return o, nil
	default:
		return provider.NewAnthropic(provider.AnthropicConfig{
			APIKey:     cfg.Anthropic.APIKey,
			Model:      cfg.ResolvedModel(),
			MaxTokens:  cfg.MaxTokens,
			Timeout:    cfg.RequestTimeout,
			MaxRetries: cfg.Anthropic.MaxRetries,
			BaseURL:    cfg.Anthropic.BaseURL,
		})
	}
}

func runSession(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	log, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	sender, err := newSender(ctx, cfg, log)
	if err != nil {
		return err
	}

	store := memory.NewStore(cfg.Memory.Path, memory.WithLogger(log))
	conv := memory.NewConversation(cfg.History.MaxPairs)

	host, err := introspect.NewInspector(
		introspect.WithPathTTL(cfg.Introspect.PathTTL),
		introspect.WithLimits(cfg.Introspect.MaxEntries, cfg.Introspect.MaxExecutables),
		introspect.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("starting introspection: %w", err)
	}
	defer host.Close()

	resolver := intent.NewResolver(sender, conv,
		intent.WithName(cfg.Assistant.Name),
		intent.WithMemory(store),
		intent.WithHost(host),
		intent.WithContextTurns(cfg.History.ContextTurns),
		intent.WithRuneBudget(cfg.History.RuneBudget),
		intent.WithLogger(log),
	)

	policy, err := cfg.SuccessPolicy()
	if err != nil {
		return err
	}
	exec := executor.New(
		executor.WithTimeout(cfg.Executor.Timeout),
		executor.WithPolicy(policy),
		executor.WithLogger(log),
	)

	console := speech.NewConsole(cmd.OutOrStdout(), cfg.Assistant.Name, speech.IsTerminal(os.Stdin))
	listener := speech.NewLineListener(cmd.InOrStdin(), console.Prompt)
	var voice speech.Speaker = speech.Silent{}
	if cfg.Speech.TTS {
		voice = speech.NewSpeaker(log)
	}

	log.Debug("session starting",
		"provider", cfg.Provider,
		"model", cfg.ResolvedModel(),
		"os", host.OS().String(),
		"shell", exec.Shell().Path,
		"memory", store.Path(),
	)

	r := runner.New(store, resolver, exec,
		runner.WithProgress(console.Note),
		runner.WithLogger(log),
	)
	err = r.Loop(ctx, cfg.Assistant.Name, listener, console, voice)
	if errors.Is(err, context.Canceled) {
		console.Note("\nExiting...")
		return nil
	}
	return err
}
