package memory_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/petasbytes/marvin/memory"
)

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	return memory.NewStore(filepath.Join(t.TempDir(), "memory.json"))
}

func TestStore_LoadMissing_ReturnsEmpty(t *testing.T) {
	s := newStore(t)
	m := s.Load()
	if m == nil {
		t.Fatal("nil memory")
	}
	if !m.Empty() {
		t.Fatalf("expected empty store, got %+v", m)
	}
	if m.Facts == nil || m.Notes == nil || m.Preferences == nil {
		t.Fatalf("fields must be present even when empty: %+v", m)
	}
	if m.Created == "" {
		t.Fatal("created not set")
	}
}

func TestStore_LoadCorrupt_ReturnsEmpty(t *testing.T) {
	for name, body := range map[string]string{
		"invalid":     "{oops",
		"array":       "[1,2,3]",
		"wrong types": `{"facts": "nope"}`,
	} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "memory.json")
			if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
				t.Fatalf("prep: %v", err)
			}
			m := memory.NewStore(p).Load()
			if !m.Empty() {
				t.Fatalf("expected empty store for %q, got %+v", body, m)
			}
		})
	}
}

func TestStore_LoadPartial_FillsMissingFields(t *testing.T) {
	p := filepath.Join(t.TempDir(), "memory.json")
	if err := os.WriteFile(p, []byte(`{"facts":[{"content":"x","timestamp":"t","source":"user_input"}]}`), 0o644); err != nil {
		t.Fatalf("prep: %v", err)
	}
	m := memory.NewStore(p).Load()
	if len(m.Facts) != 1 || m.Facts[0].Content != "x" {
		t.Fatalf("facts not loaded: %+v", m.Facts)
	}
	if m.Notes == nil || m.Preferences == nil || m.Created == "" {
		t.Fatalf("missing fields not normalised: %+v", m)
	}
}

func TestStore_RememberFact_RoundTrip(t *testing.T) {
	s := newStore(t)
	if err := s.RememberFact("X"); err != nil {
		t.Fatalf("remember: %v", err)
	}
	m := s.Load()
	last := m.Facts[len(m.Facts)-1]
	if last.Content != "X" {
		t.Fatalf("last fact: got %q want X", last.Content)
	}
	if last.Source != memory.SourceUserInput {
		t.Fatalf("source: got %q", last.Source)
	}
	if m.LastUpdated == "" {
		t.Fatal("last_updated not stamped")
	}
}

func TestStore_RecallFacts_MostRecentChronological(t *testing.T) {
	s := newStore(t)
	for _, f := range []string{"A", "B"} {
		if err := s.RememberFact(f); err != nil {
			t.Fatalf("remember %s: %v", f, err)
		}
	}
	got := s.RecallFacts(1)
	if len(got) != 1 || got[0].Content != "B" {
		t.Fatalf("RecallFacts(1): got %+v want [B]", got)
	}

	for _, f := range []string{"C", "D"} {
		_ = s.RememberFact(f)
	}
	var contents []string
	for _, f := range s.RecallFacts(3) {
		contents = append(contents, f.Content)
	}
	if diff := cmp.Diff([]string{"B", "C", "D"}, contents); diff != "" {
		t.Fatalf("RecallFacts(3) mismatch (-want +got):\n%s", diff)
	}
	if n := len(s.RecallFacts(0)); n != 0 {
		t.Fatalf("RecallFacts(0): got %d entries", n)
	}
}

func TestStore_RecallNotes(t *testing.T) {
	s := newStore(t)
	for _, n := range []string{"one", "two", "three"} {
		if err := s.RememberNote(n); err != nil {
			t.Fatalf("note: %v", err)
		}
	}
	var contents []string
	for _, n := range s.RecallNotes(5) {
		contents = append(contents, n.Content)
	}
	if diff := cmp.Diff([]string{"one", "two", "three"}, contents); diff != "" {
		t.Fatalf("RecallNotes mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SetPreference_Overwrites(t *testing.T) {
	s := newStore(t)
	if err := s.SetPreference("theme", "dark"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPreference("units", "metric"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPreference("theme", "light"); err != nil {
		t.Fatal(err)
	}
	want := []memory.Preference{{Key: "theme", Value: "light"}, {Key: "units", Value: "metric"}}
	if diff := cmp.Diff(want, s.Preferences()); diff != "" {
		t.Fatalf("preferences mismatch (-want +got):\n%s", diff)
	}

	// Exactly one "theme" key in the file.
	b, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	var raw struct {
		Preferences map[string]memory.PreferenceEntry `json:"preferences"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("file not valid JSON: %v", err)
	}
	if len(raw.Preferences) != 2 || raw.Preferences["theme"].Value != "light" {
		t.Fatalf("unexpected preferences on disk: %+v", raw.Preferences)
	}
}

func TestStore_RejectsEmptyInput(t *testing.T) {
	s := newStore(t)
	if err := s.RememberFact("   "); !errors.Is(err, memory.ErrEmptyContent) {
		t.Fatalf("fact: want ErrEmptyContent, got %v", err)
	}
	if err := s.RememberNote(""); !errors.Is(err, memory.ErrEmptyContent) {
		t.Fatalf("note: want ErrEmptyContent, got %v", err)
	}
	if err := s.SetPreference(" ", "x"); !errors.Is(err, memory.ErrEmptyKey) {
		t.Fatalf("pref: want ErrEmptyKey, got %v", err)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatal("rejected writes must not create the file")
	}
}

func TestStore_FileSchema(t *testing.T) {
	s := newStore(t)
	_ = s.RememberFact("likes tea")
	_ = s.RememberNote("buy milk")
	_ = s.SetPreference("theme", "dark")

	b, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, k := range []string{"facts", "notes", "preferences", "created", "last_updated"} {
		if _, ok := doc[k]; !ok {
			t.Errorf("missing key %q in %s", k, b)
		}
	}
}

func TestStore_CreatedSetOnce(t *testing.T) {
	first := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	clock := first
	s := memory.NewStore(filepath.Join(t.TempDir(), "m.json"), memory.WithClock(func() time.Time { return clock }))

	_ = s.RememberFact("a")
	clock = first.Add(time.Hour)
	_ = s.RememberFact("b")

	m := s.Load()
	if m.Created != first.Format(time.RFC3339Nano) {
		t.Fatalf("created changed: %s", m.Created)
	}
	if m.LastUpdated != clock.Format(time.RFC3339Nano) {
		t.Fatalf("last_updated not restamped: %s", m.LastUpdated)
	}
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := memory.NewStore(filepath.Join(dir, "m.json"))
	for i := 0; i < 3; i++ {
		if err := s.RememberNote("n"); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "m.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("unexpected directory contents: %v", names)
	}
}

func TestStore_SaveFailure_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	// A regular file where the parent directory should be.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := memory.NewStore(filepath.Join(blocker, "m.json"))
	if err := s.RememberFact("x"); err == nil {
		t.Fatal("expected save error")
	}
}

func TestStore_Summarize(t *testing.T) {
	s := newStore(t)
	if got := s.Summarize(); got != memory.NoMemories {
		t.Fatalf("empty summary: got %q", got)
	}
	for _, f := range []string{"f1", "f2", "f3", "f4"} {
		_ = s.RememberFact(f)
	}
	_ = s.SetPreference("theme", "dark")

	got := s.Summarize()
	if strings.Contains(got, "f1") {
		t.Fatalf("summary should only include the 3 newest facts: %q", got)
	}
	for _, want := range []string{"f2; f3; f4", "theme = dark"} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary %q missing %q", got, want)
		}
	}
}

func TestStore_StatsAndClear(t *testing.T) {
	s := newStore(t)
	_ = s.RememberFact("a")
	_ = s.RememberNote("b")
	if got, want := s.Stats(), "Memory contains: 1 facts, 1 notes, 0 preferences"; got != want {
		t.Fatalf("stats: got %q want %q", got, want)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !s.Load().Empty() {
		t.Fatal("store not empty after clear")
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}
