package telemetry_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petasbytes/marvin/internal/telemetry"
)

func TestEmitLocalFeatures_HappyPath(t *testing.T) {
	path := observe(t)
	ctx := telemetry.WithTurnID(context.Background(), "turn-xyz")
	telemetry.EmitLocalFeatures(ctx, "what time is it")

	events := readEvents(t, path)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev["event"] != "local_features" || ev["turn_id"] != "turn-xyz" {
		t.Fatalf("unexpected event: %#v", ev)
	}
	user, ok := ev["user"].(map[string]any)
	if !ok {
		t.Fatalf("user field missing or wrong type: %T", ev["user"])
	}
	if user["words"] != float64(4) || user["question"] != true {
		t.Fatalf("unexpected features: %#v", user)
	}
}

func TestEmitLocalFeatures_NoRawTextLeakage(t *testing.T) {
	path := observe(t)
	secret := "remember that my pin is 4321"
	telemetry.EmitLocalFeatures(context.Background(), secret)

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "4321") || strings.Contains(string(b), secret) {
		t.Fatalf("raw utterance leaked into events: %s", b)
	}
}

func TestEmitLocalFeatures_ObserveOff_NoEvent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MARVIN_ARTIFACTS_DIR", dir)
	t.Setenv("MARVIN_OBSERVE_JSON", "0")

	telemetry.EmitLocalFeatures(context.Background(), "some text")

	if _, err := os.Stat(filepath.Join(dir, "events.jsonl")); !os.IsNotExist(err) {
		t.Fatalf("expected no events.jsonl when observe=0, got err=%v", err)
	}
}
