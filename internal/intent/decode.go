package intent

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Decode interprets a raw reply. ok is false when the reply broke the
// contract and the fallback (the whole reply, unchanged, as Chat) was applied.
//
// Rules, in order:
//   - not a JSON object, or mode missing or not run/chat: Chat{reply}
//   - mode run with a non-empty command: Run{command}
//   - otherwise: Chat{say} when say is a string, else Chat{reply}
//
// Surrounding whitespace is ignored when parsing but kept in Chat{reply}.
func Decode(raw string) (d Decision, ok bool) {
	text := strings.TrimSpace(raw)
	if !gjson.Valid(text) {
		return Chat{Say: raw}, false
	}
	v := gjson.Parse(text)
	if !v.IsObject() {
		return Chat{Say: raw}, false
	}

	mode := v.Get("mode")
	if mode.Type != gjson.String || (mode.Str != ModeRun && mode.Str != ModeChat) {
		return Chat{Say: raw}, false
	}

	if mode.Str == ModeRun {
		if cmd := v.Get("command"); cmd.Type == gjson.String {
			if c := strings.TrimSpace(cmd.Str); c != "" {
				return Run{Command: c}, true
			}
		}
	}
	if say := v.Get("say"); say.Type == gjson.String {
		return Chat{Say: say.Str}, true
	}
	return Chat{Say: raw}, true
}
