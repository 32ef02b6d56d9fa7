package runner

import (
	"context"
	"fmt"
	"strings"
)

// Farewell is the reply to an exit phrase.
const Farewell = "Goodbye! Have a great day!"

// NoAnswer replaces a blank chat reply.
const NoAnswer = "Sorry, I don't have an answer for that."

const recallLimit = 5

// exitPhrases match the whole normalized utterance, never a substring, so
// "how do I quit vim" still reaches the reasoning service.
var exitPhrases = map[string]bool{
	"exit":           true,
	"quit":           true,
	"bye":            true,
	"goodbye":        true,
	"stop":           true,
	"exit marvin":    true,
	"goodbye marvin": true,
}

// localCommand is one row of the dispatch table. match returns how many
// leading words it consumed, or -1.
type localCommand struct {
	name   string
	match  func(u utterance) int
	handle func(r *Runner, ctx context.Context, u utterance, n int) Response
}

// localCommands is evaluated top to bottom; the first match wins.
var localCommands = []localCommand{
	{name: "exit", match: matchExit, handle: (*Runner).exit},
	{name: "remember_fact", match: prefixes("remember that", "remember this"), handle: (*Runner).rememberFact},
	{name: "remember_note", match: prefixes(
		"take note that", "take note of", "take a note that", "take a note",
		"make a note that", "make a note", "take note", "note that",
	), handle: (*Runner).rememberNote},
	{name: "recall_facts", match: prefixes(
		"what do you remember", "recall facts", "recall my facts", "what do you know about me",
	), handle: (*Runner).recallFacts},
	{name: "show_notes", match: prefixes(
		"show notes", "show my notes", "what notes", "what are my notes",
		"list notes", "list my notes", "read my notes",
	), handle: (*Runner).showNotes},
	{name: "set_preference", match: prefixes(
		"set my preference", "set preference", "my preference",
	), handle: (*Runner).setPreference},
	{name: "show_preferences", match: prefixes(
		"show preferences", "show my preferences", "what are my preferences", "list my preferences",
	), handle: (*Runner).showPreferences},
	{name: "memory_summary", match: prefixes("memory summary", "memory stats"), handle: (*Runner).memorySummary},
}

func matchExit(u utterance) int {
	if exitPhrases[u.norm] {
		return len(u.keys)
	}
	return -1
}

// prefixes matches the first phrase the utterance starts with; list longer
// phrases before their own prefixes.
func prefixes(phrases ...string) func(utterance) int {
	return func(u utterance) int {
		for _, p := range phrases {
			if u.hasPrefix(p) {
				return len(strings.Fields(p))
			}
		}
		return -1
	}
}

func matchLocal(u utterance) (localCommand, int, bool) {
	for _, c := range localCommands {
		if n := c.match(u); n >= 0 {
			return c, n, true
		}
	}
	return localCommand{}, 0, false
}

func (r *Runner) exit(_ context.Context, _ utterance, _ int) Response {
	return Response{Text: Farewell, Exit: true}
}

func (r *Runner) rememberFact(_ context.Context, u utterance, n int) Response {
	fact := u.after(n)
	if fact == "" {
		return Response{Text: `What should I remember? Try "remember that I like tea".`}
	}
	if err := r.store.RememberFact(fact); err != nil {
		r.log.Error("remember fact", "err", err)
		return Response{Text: "Sorry, I couldn't save that to memory."}
	}
	return Response{Text: fmt.Sprintf("Got it. I'll remember that %s.", fact)}
}

func (r *Runner) rememberNote(_ context.Context, u utterance, n int) Response {
	note := u.after(n)
	if note == "" {
		return Response{Text: `What should I note? Try "note that the meeting is at 3".`}
	}
	if err := r.store.RememberNote(note); err != nil {
		r.log.Error("remember note", "err", err)
		return Response{Text: "Sorry, I couldn't save that note."}
	}
	return Response{Text: fmt.Sprintf("Noted: %s.", note)}
}

func (r *Runner) recallFacts(context.Context, utterance, int) Response {
	facts := r.store.RecallFacts(recallLimit)
	if len(facts) == 0 {
		return Response{Text: "I don't have any facts stored yet."}
	}
	items := make([]string, len(facts))
	for i, f := range facts {
		items[i] = f.Content
	}
	return Response{Text: "Here's what I remember: " + strings.Join(items, "; ") + "."}
}

func (r *Runner) showNotes(context.Context, utterance, int) Response {
	notes := r.store.RecallNotes(recallLimit)
	if len(notes) == 0 {
		return Response{Text: "You don't have any notes yet."}
	}
	var text strings.Builder
	text.WriteString("Your recent notes:")
	spoken := make([]string, len(notes))
	for i, n := range notes {
		fmt.Fprintf(&text, "\n%d. %s", i+1, n.Content)
		spoken[i] = n.Content
	}
	return Response{
		Text:  text.String(),
		Speak: "Your recent notes: " + strings.Join(spoken, ". ") + ".",
	}
}

const preferenceUsage = `To set a preference, say "set preference theme to dark" or "my preference for music is jazz".`

// setPreference splits the remainder on the first "is", or failing that the
// first "to". The key is stored normalized so "Theme" and "theme" are one entry.
func (r *Runner) setPreference(_ context.Context, u utterance, n int) Response {
	keys, words := u.keys[n:], u.words[n:]
	if len(keys) > 0 && (keys[0] == "for" || keys[0] == "on") {
		keys, words = keys[1:], words[1:]
	}
	sep := indexOf(keys, "is")
	if sep < 0 {
		sep = indexOf(keys, "to")
	}
	if sep <= 0 {
		return Response{Text: preferenceUsage}
	}
	key := strings.Join(keys[:sep], " ")
	value := cleanPayload(strings.Join(words[sep+1:], " "))
	if value == "" {
		return Response{Text: preferenceUsage}
	}
	if err := r.store.SetPreference(key, value); err != nil {
		r.log.Error("set preference", "err", err)
		return Response{Text: "Sorry, I couldn't save that preference."}
	}
	return Response{Text: fmt.Sprintf("Preference saved: %s is %s.", key, value)}
}

func (r *Runner) showPreferences(context.Context, utterance, int) Response {
	prefs := r.store.Preferences()
	if len(prefs) == 0 {
		return Response{Text: "You haven't set any preferences yet."}
	}
	items := make([]string, len(prefs))
	for i, p := range prefs {
		items[i] = p.Key + " is " + p.Value
	}
	return Response{Text: "Your preferences: " + strings.Join(items, "; ") + "."}
}

func (r *Runner) memorySummary(context.Context, utterance, int) Response {
	return Response{Text: r.store.Stats() + "."}
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}
