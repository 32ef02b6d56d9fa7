package intent

import (
	"fmt"
	"strings"

	"github.com/petasbytes/marvin/internal/introspect"
)

// DefaultPromptExecutables caps how many PATH executables the briefing names.
const DefaultPromptExecutables = 100

// osHints bias the service toward syntax that works on the host.
var osHints = map[string]string{
	"windows": `Open Chrome: start chrome
List directory: dir
List all services: sc query type= service state= all
Run Python script: python file.py`,
	"darwin": `Open Chrome: open -a "Google Chrome"
List directory: ls -la
List all services: launchctl list
Homebrew services (if installed): brew services list
Run Python script: python3 file.py`,
	"linux": `Open Chrome: google-chrome || chromium || xdg-open "https://www.google.com"
List directory: ls -la
List all services: systemctl list-units --type=service --all
Run Python script: python3 file.py`,
}

// OSHints returns example commands for goos.
func OSHints(goos string) string {
	if h, ok := osHints[goos]; ok {
		return h
	}
	return "List directory: ls -la"
}

const contractRules = `Rules:
- Consider the user's OS and the tools listed above.
- If the user asks for an OS action (open an app, list services, show files, run a script), use mode "run" with one concrete shell command for THIS OS.
- Otherwise use mode "chat" and put a helpful reply, in the user's language, in "say".
- No markdown, no backticks, no extra keys. One compact JSON line only.`

// Briefing is the system-level context sent with every request.
type Briefing struct {
	Name          string
	Host          introspect.Snapshot
	MemorySummary string
	MaxExecs      int
}

// Render formats the briefing as the system prompt.
func (b Briefing) Render() string {
	name := b.Name
	if name == "" {
		name = "Marvin"
	}
	maxExecs := b.MaxExecs
	if maxExecs <= 0 {
		maxExecs = DefaultPromptExecutables
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s, a voice assistant that can either chat or run local shell commands.\n", name)
	fmt.Fprintf(&sb, "OS: %s\n\n", b.Host.OS)

	fmt.Fprintf(&sb, "Current working directory: %s\n", orNone(b.Host.Cwd))
	if len(b.Host.Entries) == 0 {
		sb.WriteString("- (empty or unreadable)\n")
	}
	for _, e := range b.Host.Entries {
		fmt.Fprintf(&sb, "- %s\n", e)
	}

	execs := b.Host.Executables
	if len(execs) > maxExecs {
		execs = execs[:maxExecs]
	}
	fmt.Fprintf(&sb, "\nExecutables available on PATH (sample):\n- %s\n", orNone(strings.Join(execs, ", ")))

	if b.MemorySummary != "" {
		fmt.Fprintf(&sb, "\nWhat you remember about the user:\n%s\n", b.MemorySummary)
	}

	fmt.Fprintf(&sb, "\nExample commands (choose commands appropriate for THIS OS):\n%s\n", OSHints(b.Host.OS.GOOS))

	sb.WriteString("\nReturn a single-line JSON object ONLY, no prose, matching this JSON Schema:\n")
	sb.WriteString(ContractSchema())
	sb.WriteString("\n\n")
	sb.WriteString(contractRules)
	sb.WriteString("\n")
	return sb.String()
}

func orNone(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}
