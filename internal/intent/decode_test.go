package intent_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/petasbytes/marvin/internal/intent"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		want   intent.Decision
		wantOK bool
	}{
		{"run", `{"mode":"run","command":"ls -la","say":""}`, intent.Run{Command: "ls -la"}, true},
		{"run trims command", `{"mode":"run","command":"  dir  ","say":""}`, intent.Run{Command: "dir"}, true},
		{"chat", `{"mode":"chat","command":"","say":"Hi there"}`, intent.Chat{Say: "Hi there"}, true},
		{"free text", "Sure, I can help with that!", intent.Chat{Say: "Sure, I can help with that!"}, false},
		{"free text kept verbatim", "  hello \n", intent.Chat{Say: "  hello \n"}, false},
		{"padded object", " {\"mode\":\"chat\",\"say\":\" hi \"}\n", intent.Chat{Say: " hi "}, true},
		{"padded object without say", " {\"mode\":\"chat\"}\n", intent.Chat{Say: " {\"mode\":\"chat\"}\n"}, true},
		{"empty", "", intent.Chat{Say: ""}, false},
		{"array", `["run","ls"]`, intent.Chat{Say: `["run","ls"]`}, false},
		{"string literal", `"run"`, intent.Chat{Say: `"run"`}, false},
		{"truncated", `{"mode":"run","command":"rm`, intent.Chat{Say: `{"mode":"run","command":"rm`}, false},
		{"missing mode", `{"command":"ls","say":"x"}`, intent.Chat{Say: `{"command":"ls","say":"x"}`}, false},
		{"unknown mode", `{"mode":"exec","command":"ls","say":"x"}`, intent.Chat{Say: `{"mode":"exec","command":"ls","say":"x"}`}, false},
		{"mode not string", `{"mode":1,"command":"ls"}`, intent.Chat{Say: `{"mode":1,"command":"ls"}`}, false},
		{"fenced json", "```json\n{\"mode\":\"run\",\"command\":\"ls\"}\n```", intent.Chat{Say: "```json\n{\"mode\":\"run\",\"command\":\"ls\"}\n```"}, false},
		{"run with blank command uses say", `{"mode":"run","command":"   ","say":"Which folder?"}`, intent.Chat{Say: "Which folder?"}, true},
		{"run with non-string command", `{"mode":"run","command":["ls"],"say":"no"}`, intent.Chat{Say: "no"}, true},
		{"run without command or say", `{"mode":"run"}`, intent.Chat{Say: `{"mode":"run"}`}, true},
		{"chat without say", `{"mode":"chat"}`, intent.Chat{Say: `{"mode":"chat"}`}, true},
		{"chat with non-string say", `{"mode":"chat","say":42}`, intent.Chat{Say: `{"mode":"chat","say":42}`}, true},
		{"chat ignores command", `{"mode":"chat","command":"rm -rf /","say":"No."}`, intent.Chat{Say: "No."}, true},
		{"multi-line object", "{\n  \"mode\": \"chat\",\n  \"say\": \"ok\"\n}", intent.Chat{Say: "ok"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := intent.Decode(tc.raw)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("decision mismatch (-want +got):\n%s", diff)
			}
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
		})
	}
}

func TestDecode_NeverRunsWithoutExplicitDirective(t *testing.T) {
	replies := []string{
		`ls -la`,
		`{"mode":"RUN","command":"ls"}`,
		`{"mode":"run ","command":"ls"}`,
		`{"Mode":"run","command":"ls"}`,
		`{"mode":"run","command":""}`,
		`{"mode":"run","cmd":"ls"}`,
		`{"mode":null,"command":"ls"}`,
	}
	for _, raw := range replies {
		if d, _ := intent.Decode(raw); d.Kind() == intent.ModeRun {
			t.Errorf("Decode(%q) = %#v, want Chat", raw, d)
		}
	}
}
