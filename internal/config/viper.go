package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MARVIN_EXECUTOR_TIMEOUT.
const EnvPrefix = "MARVIN"

// dotenvFiles are loaded in order; values already in the environment win.
var dotenvFiles = []string{".env", ".env.dev"}

// HomeDir is $MARVIN_HOME, or ~/.marvin.
func HomeDir() string {
	if h := os.Getenv("MARVIN_HOME"); h != "" {
		return h
	}
	if u, err := os.UserHomeDir(); err == nil {
		return filepath.Join(u, ".marvin")
	}
	return ".marvin"
}

// LoadDotenv loads the .env files that exist in dir.
func LoadDotenv(dir string) error {
	for _, name := range dotenvFiles {
		path := filepath.Join(dir, name)
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// InitViper returns a viper instance with defaults, the first config.yaml
// found in the given dirs (or HomeDir and the working directory when none
// are given) and MARVIN_* environment bindings.
//
// Precedence, highest first: flags (once bound), environment, config file,
// defaults.
func InitViper(dirs ...string) (*viper.Viper, error) {
	v := viper.New()
	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(dirs) == 0 {
		dirs = []string{HomeDir(), "."}
	}
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	if err := v.ReadInConfig(); err != nil {
		// No config file is fine; defaults apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

// Decode turns v into a Config and fills the Anthropic key from
// ANTHROPIC_API_KEY when unset. It does not validate.
func Decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Anthropic.APIKey == "" {
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return cfg, nil
}

// Load is Decode followed by Validate.
func Load(v *viper.Viper) (*Config, error) {
	cfg, err := Decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setViperDefaults registers NewDefaultConfig() under dotted keys.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("assistant.name", d.Assistant.Name)
	v.SetDefault("provider", d.Provider)
	v.SetDefault("model", d.Model)
	v.SetDefault("max_tokens", d.MaxTokens)
	v.SetDefault("request_timeout", d.RequestTimeout)

	v.SetDefault("anthropic.api_key", d.Anthropic.APIKey)
	v.SetDefault("anthropic.base_url", d.Anthropic.BaseURL)
	v.SetDefault("anthropic.max_retries", d.Anthropic.MaxRetries)
	v.SetDefault("ollama.base_url", d.Ollama.BaseURL)

	v.SetDefault("memory.path", d.Memory.Path)

	v.SetDefault("history.max_pairs", d.History.MaxPairs)
	v.SetDefault("history.context_turns", d.History.ContextTurns)
	v.SetDefault("history.rune_budget", d.History.RuneBudget)

	v.SetDefault("executor.timeout", d.Executor.Timeout)
	v.SetDefault("executor.success_patterns", d.Executor.SuccessPatterns)

	v.SetDefault("introspect.path_ttl", d.Introspect.PathTTL)
	v.SetDefault("introspect.max_entries", d.Introspect.MaxEntries)
	v.SetDefault("introspect.max_executables", d.Introspect.MaxExecutables)

	v.SetDefault("speech.tts", d.Speech.TTS)

	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.source", d.Log.Source)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.file", d.Log.File)
}
