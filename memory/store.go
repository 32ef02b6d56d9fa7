package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/petasbytes/marvin/internal/logger"
)

// DefaultPath is the memory file used when none is configured.
const DefaultPath = "marvin_memory.json"

// NoMemories is returned by Summarize when nothing has been stored.
const NoMemories = "No memories stored yet."

// summaryFacts is how many recent facts Summarize includes.
const summaryFacts = 3

// SourceUserInput marks facts the user asked to be remembered.
const SourceUserInput = "user_input"

var (
	ErrEmptyContent = errors.New("memory: content is empty")
	ErrEmptyKey     = errors.New("memory: preference key is empty")
)

// FactEntry is an append-only fact.
type FactEntry struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// NoteEntry is an append-only note.
type NoteEntry struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// PreferenceEntry is the value stored under a preference key.
type PreferenceEntry struct {
	Value     string `json:"value"`
	Timestamp string `json:"timestamp"`
}

// Preference is a key/value view of a stored preference.
type Preference struct {
	Key   string
	Value string
}

// Memory is the on-disk document. Preferences keep insertion order so the
// file and the summary stay stable across rewrites.
type Memory struct {
	Facts       []FactEntry                                     `json:"facts"`
	Notes       []NoteEntry                                     `json:"notes"`
	Preferences *orderedmap.OrderedMap[string, PreferenceEntry] `json:"preferences"`
	Created     string                                          `json:"created"`
	LastUpdated string                                          `json:"last_updated,omitempty"`
}

// NewMemory returns an empty, well-formed document created at t.
func NewMemory(t time.Time) *Memory {
	return &Memory{
		Facts:       []FactEntry{},
		Notes:       []NoteEntry{},
		Preferences: orderedmap.New[string, PreferenceEntry](),
		Created:     stamp(t),
	}
}

// Empty reports whether the document holds no facts, notes or preferences.
func (m *Memory) Empty() bool {
	return len(m.Facts) == 0 && len(m.Notes) == 0 && m.Preferences.Len() == 0
}

// normalize fills in whatever a partial or hand-edited file left out.
func (m *Memory) normalize(t time.Time) {
	if m.Facts == nil {
		m.Facts = []FactEntry{}
	}
	if m.Notes == nil {
		m.Notes = []NoteEntry{}
	}
	if m.Preferences == nil {
		m.Preferences = orderedmap.New[string, PreferenceEntry]()
	}
	if m.Created == "" {
		m.Created = stamp(t)
	}
}

// Store reads and writes the memory file. It keeps no in-memory copy:
// every call goes to disk.
type Store struct {
	path string
	now  func() time.Time
	log  *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used to report load/save problems.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore returns a Store backed by path (DefaultPath when empty).
func NewStore(path string, opts ...StoreOption) *Store {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{
		path: path,
		now:  time.Now,
		log:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Load reads the memory file. A missing or undecodable file yields a fresh
// empty document; Load never fails.
func (s *Store) Load() *Memory {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("memory: read failed, starting empty", "path", s.path, "err", err)
		}
		return NewMemory(s.now())
	}
	var m Memory
	if err := json.Unmarshal(b, &m); err != nil {
		s.log.Warn("memory: decode failed, starting empty", "path", s.path, "err", err)
		return NewMemory(s.now())
	}
	m.normalize(s.now())
	return &m
}

// Save stamps LastUpdated and replaces the file atomically (write to a temp
// file in the same directory, then rename).
func (s *Store) Save(m *Memory) error {
	if m == nil {
		return errors.New("memory: nil document")
	}
	now := s.now()
	m.normalize(now)
	m.LastUpdated = stamp(now)

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("memory: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("memory: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("memory: create temp: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("memory: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("memory: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("memory: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("memory: replace %s: %w", s.path, err)
	}
	return nil
}

// RememberFact appends a fact sourced from user input.
func (s *Store) RememberFact(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}
	m := s.Load()
	m.Facts = append(m.Facts, FactEntry{Content: content, Timestamp: stamp(s.now()), Source: SourceUserInput})
	return s.Save(m)
}

// RememberNote appends a note.
func (s *Store) RememberNote(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}
	m := s.Load()
	m.Notes = append(m.Notes, NoteEntry{Content: content, Timestamp: stamp(s.now())})
	return s.Save(m)
}

// SetPreference stores value under key, replacing any previous value.
// A replaced key keeps its original position.
func (s *Store) SetPreference(key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	m := s.Load()
	m.Preferences.Set(key, PreferenceEntry{Value: strings.TrimSpace(value), Timestamp: stamp(s.now())})
	return s.Save(m)
}

// RecallFacts returns the newest limit facts in chronological order.
func (s *Store) RecallFacts(limit int) []FactEntry {
	return tail(s.Load().Facts, limit)
}

// RecallNotes returns the newest limit notes in chronological order.
func (s *Store) RecallNotes(limit int) []NoteEntry {
	return tail(s.Load().Notes, limit)
}

// Preferences returns all preferences in insertion order.
func (s *Store) Preferences() []Preference {
	return preferences(s.Load())
}

// Summarize returns a one-paragraph digest of the three newest facts and all
// preferences, or NoMemories when neither exists.
func (s *Store) Summarize() string {
	m := s.Load()
	var parts []string
	if facts := tail(m.Facts, summaryFacts); len(facts) > 0 {
		contents := make([]string, len(facts))
		for i, f := range facts {
			contents[i] = f.Content
		}
		parts = append(parts, "Recent facts: "+strings.Join(contents, "; ")+".")
	}
	if prefs := preferences(m); len(prefs) > 0 {
		kv := make([]string, len(prefs))
		for i, p := range prefs {
			kv[i] = p.Key + " = " + p.Value
		}
		parts = append(parts, "Preferences: "+strings.Join(kv, "; ")+".")
	}
	if len(parts) == 0 {
		return NoMemories
	}
	return strings.Join(parts, " ")
}

// Stats reports how many entries of each kind are stored.
func (s *Store) Stats() string {
	m := s.Load()
	return fmt.Sprintf("Memory contains: %d facts, %d notes, %d preferences",
		len(m.Facts), len(m.Notes), m.Preferences.Len())
}

// Clear removes the memory file. Clearing a store that was never written is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("memory: clear: %w", err)
	}
	return nil
}

func preferences(m *Memory) []Preference {
	out := make([]Preference, 0, m.Preferences.Len())
	for pair := m.Preferences.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Preference{Key: pair.Key, Value: pair.Value.Value})
	}
	return out
}

func tail[T any](xs []T, limit int) []T {
	if limit <= 0 || len(xs) == 0 {
		return []T{}
	}
	if limit > len(xs) {
		limit = len(xs)
	}
	out := make([]T, limit)
	copy(out, xs[len(xs)-limit:])
	return out
}

func stamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
