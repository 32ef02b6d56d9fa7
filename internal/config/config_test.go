package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/petasbytes/marvin/internal/config"
	"github.com/petasbytes/marvin/internal/provider"
)

// isolate clears variables that would leak the developer's environment
// into a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("MARVIN_HOME", dir)
	for _, k := range []string{"MARVIN_PROVIDER", "MARVIN_MODEL", "MARVIN_EXECUTOR_TIMEOUT", "MARVIN_ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func load(t *testing.T, dirs ...string) (*config.Config, error) {
	t.Helper()
	v, err := config.InitViper(dirs...)
	if err != nil {
		t.Fatalf("InitViper: %v", err)
	}
	return config.Load(v)
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := load(t, dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := config.NewDefaultConfig()
	want.Anthropic.APIKey = "sk-test"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.ResolvedModel() != provider.DefaultModel {
		t.Fatalf("model = %q", cfg.ResolvedModel())
	}
	if cfg.History.MaxPairs != 10 || cfg.History.ContextTurns != 8 || cfg.Executor.Timeout != 10*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Introspect.MaxEntries != 500 || cfg.Introspect.MaxExecutables != 500 || cfg.Introspect.PathTTL != 5*time.Minute {
		t.Fatalf("unexpected introspect defaults: %+v", cfg.Introspect)
	}
	wantPatterns := []string{"explorer", "explorer *", "explorer.exe", "explorer.exe *", "start explorer*"}
	if diff := cmp.Diff(wantPatterns, cfg.Executor.SuccessPatterns); diff != "" {
		t.Fatalf("success patterns (-want +got):\n%s", diff)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	yml := `
provider: ollama
assistant:
  name: Marv
executor:
  timeout: 3s
history:
  max_pairs: 4
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yml), 0o644); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	t.Setenv("MARVIN_EXECUTOR_TIMEOUT", "7s")

	cfg, err := load(t, dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != config.ProviderOllama || cfg.Assistant.Name != "Marv" || cfg.History.MaxPairs != 4 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Executor.Timeout != 7*time.Second {
		t.Fatalf("env should override file, timeout = %s", cfg.Executor.Timeout)
	}
	if cfg.ResolvedModel() != provider.DefaultOllamaModel {
		t.Fatalf("model = %q", cfg.ResolvedModel())
	}
}

func TestLoad_MissingKeyFailsFast(t *testing.T) {
	dir := isolate(t)
	_, err := load(t, dir)
	if !errors.Is(err, provider.ErrMissingAPIKey) {
		t.Fatalf("want ErrMissingAPIKey, got %v", err)
	}
}

func TestValidate_CollectsProblems(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Provider = "gpt"
	cfg.Executor.Timeout = 0
	cfg.History.MaxPairs = 0
	cfg.Executor.SuccessPatterns = []string{"explorer["}
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{`unknown provider "gpt"`, "executor.timeout", "history.max_pairs", "invalid success pattern", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestLogConfig_SlogLevel(t *testing.T) {
	cases := []struct {
		cfg  config.LogConfig
		want slog.Level
	}{
		{config.LogConfig{}, slog.LevelInfo},
		{config.LogConfig{Debug: true}, slog.LevelDebug},
		{config.LogConfig{Debug: true, Level: "warn"}, slog.LevelWarn},
		{config.LogConfig{Level: "ERROR"}, slog.LevelError},
	}
	for _, tc := range cases {
		got, err := tc.cfg.SlogLevel()
		if err != nil || got != tc.want {
			t.Errorf("%+v: got %v, %v, want %v", tc.cfg, got, err, tc.want)
		}
	}
	if _, err := (config.LogConfig{Level: "loud"}).SlogLevel(); err == nil {
		t.Fatal("unknown level should fail")
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MARVIN_MODEL=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("MARVIN_MODEL") })
	if err := config.LoadDotenv(dir); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	t.Setenv("ANTHROPIC_API_KEY", "k")
	cfg, err := load(t, dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "from-dotenv" {
		t.Fatalf("model = %q", cfg.Model)
	}
	if err := config.LoadDotenv(t.TempDir()); err != nil {
		t.Fatalf("missing files should be ignored: %v", err)
	}
}

func TestBindFlags_OverrideEnv(t *testing.T) {
	dir := isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "k")
	t.Setenv("MARVIN_MODEL", "from-env")

	cmd := &cobra.Command{Use: "marvin", RunE: func(*cobra.Command, []string) error { return nil }}
	config.AddFlags(cmd)
	if err := cmd.ParseFlags([]string{"--model", "from-flag", "--debug"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	v, err := config.InitViper(dir)
	if err != nil {
		t.Fatalf("InitViper: %v", err)
	}
	if err := config.BindFlags(v, cmd); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "from-flag" || !cfg.Log.Debug {
		t.Fatalf("flags not applied: model=%q debug=%v", cfg.Model, cfg.Log.Debug)
	}
	if cfg.Memory.Path != config.NewDefaultConfig().Memory.Path {
		t.Fatalf("unset flag must not override: %q", cfg.Memory.Path)
	}
}

func TestDump_RedactsKey(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Anthropic.APIKey = "sk-secret"
	out, err := config.Dump(cfg)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if strings.Contains(string(out), "sk-secret") {
		t.Fatal("api key leaked")
	}
	if cfg.Anthropic.APIKey != "sk-secret" {
		t.Fatal("Dump must not mutate its argument")
	}
	var back map[string]any
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	exec := back["executor"].(map[string]any)
	if exec["timeout"] != "10s" {
		t.Fatalf("timeout rendered as %v", exec["timeout"])
	}
}
