// Package config loads Marvin's settings from defaults, an optional
// config.yaml, .env files, MARVIN_* environment variables and CLI flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/petasbytes/marvin/internal/executor"
	"github.com/petasbytes/marvin/internal/intent"
	"github.com/petasbytes/marvin/internal/introspect"
	"github.com/petasbytes/marvin/internal/provider"
	"github.com/petasbytes/marvin/internal/safety"
	"github.com/petasbytes/marvin/memory"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Config is the effective configuration.
type Config struct {
	Assistant      AssistantConfig  `mapstructure:"assistant" yaml:"assistant"`
	Provider       string           `mapstructure:"provider" yaml:"provider"`
	Model          string           `mapstructure:"model" yaml:"model"`
	MaxTokens      int              `mapstructure:"max_tokens" yaml:"max_tokens"`
	RequestTimeout time.Duration    `mapstructure:"request_timeout" yaml:"request_timeout"`
	Anthropic      AnthropicConfig  `mapstructure:"anthropic" yaml:"anthropic"`
	Ollama         OllamaConfig     `mapstructure:"ollama" yaml:"ollama"`
	Memory         MemoryConfig     `mapstructure:"memory" yaml:"memory"`
	History        HistoryConfig    `mapstructure:"history" yaml:"history"`
	Executor       ExecutorConfig   `mapstructure:"executor" yaml:"executor"`
	Introspect     IntrospectConfig `mapstructure:"introspect" yaml:"introspect"`
	Speech         SpeechConfig     `mapstructure:"speech" yaml:"speech"`
	Log            LogConfig        `mapstructure:"log" yaml:"log"`
}

type AssistantConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
}

type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	MaxRetries int    `mapstructure:"max_retries" yaml:"max_retries"`
}

type OllamaConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

type MemoryConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type HistoryConfig struct {
	MaxPairs     int `mapstructure:"max_pairs" yaml:"max_pairs"`
	ContextTurns int `mapstructure:"context_turns" yaml:"context_turns"`
	RuneBudget   int `mapstructure:"rune_budget" yaml:"rune_budget"`
}

type ExecutorConfig struct {
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	SuccessPatterns []string      `mapstructure:"success_patterns" yaml:"success_patterns"`
}

type IntrospectConfig struct {
	PathTTL        time.Duration `mapstructure:"path_ttl" yaml:"path_ttl"`
	MaxEntries     int           `mapstructure:"max_entries" yaml:"max_entries"`
	MaxExecutables int           `mapstructure:"max_executables" yaml:"max_executables"`
}

type SpeechConfig struct {
	TTS bool `mapstructure:"tts" yaml:"tts"`
}

type LogConfig struct {
	Debug  bool   `mapstructure:"debug" yaml:"debug"`
	Level  string `mapstructure:"level" yaml:"level,omitempty"`
	Source bool   `mapstructure:"source" yaml:"source"`
	JSON   bool   `mapstructure:"json" yaml:"json"`
	File   string `mapstructure:"file" yaml:"file,omitempty"`
}

// SlogLevel resolves the console level: Level when set (debug, info, warn,
// error), else Debug or Info from the debug switch.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	if l.Level == "" {
		if l.Debug {
			return slog.LevelDebug, nil
		}
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// NewDefaultConfig returns the built-in defaults. It is the single source of
// truth for viper defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Assistant:      AssistantConfig{Name: "Marvin"},
		Provider:       ProviderAnthropic,
		MaxTokens:      provider.DefaultMaxTokens,
		RequestTimeout: provider.DefaultTimeout,
		Anthropic:      AnthropicConfig{MaxRetries: 2},
		Ollama:         OllamaConfig{BaseURL: provider.DefaultOllamaBaseURL},
		Memory:         MemoryConfig{Path: memory.DefaultPath},
		History: HistoryConfig{
			MaxPairs:     memory.DefaultMaxHistory,
			ContextTurns: intent.DefaultContextTurns,
		},
		Executor: ExecutorConfig{
			Timeout:         executor.DefaultTimeout,
			SuccessPatterns: append([]string(nil), safety.DefaultSuccessPatterns...),
		},
		Introspect: IntrospectConfig{
			PathTTL:        introspect.DefaultPathTTL,
			MaxEntries:     introspect.DefaultMaxEntries,
			MaxExecutables: introspect.DefaultMaxExecutables,
		},
	}
}

// ResolvedModel returns Model, or the provider's default when unset.
func (c *Config) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderOllama {
		return provider.DefaultOllamaModel
	}
	return provider.DefaultModel
}

// SuccessPolicy builds the executor's whitelist policy for the running OS.
func (c *Config) SuccessPolicy() (*safety.SuccessPolicy, error) {
	return safety.NewSuccessPolicy(runtime.GOOS, c.Executor.SuccessPatterns)
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Provider {
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			errs = append(errs, provider.ErrMissingAPIKey)
		}
	case ProviderOllama:
		if c.Ollama.BaseURL == "" {
			errs = append(errs, errors.New("ollama.base_url must be set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderAnthropic, ProviderOllama))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.Executor.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("executor.timeout must be positive, got %s", c.Executor.Timeout))
	}
	if c.History.MaxPairs < 1 {
		errs = append(errs, fmt.Errorf("history.max_pairs must be at least 1, got %d", c.History.MaxPairs))
	}
	if c.History.ContextTurns < 0 {
		errs = append(errs, fmt.Errorf("history.context_turns must not be negative, got %d", c.History.ContextTurns))
	}
	if c.Memory.Path == "" {
		errs = append(errs, errors.New("memory.path must be set"))
	}
	if _, err := c.SuccessPolicy(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
