package speech

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	nameStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("93"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
)

// Console prints prompts and replies. Styling and prompts are only used when
// the streams are terminals, so piped sessions stay plain.
type Console struct {
	out         io.Writer
	name        string
	styled      bool
	interactive bool
}

// NewConsole writes to out on behalf of the assistant called name.
// interactive controls whether prompts are printed.
func NewConsole(out io.Writer, name string, interactive bool) *Console {
	styled := false
	if f, ok := out.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}
	return &Console{out: out, name: name, styled: styled, interactive: interactive}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

// Prompt invites the next utterance.
func (c *Console) Prompt() {
	if !c.interactive {
		return
	}
	fmt.Fprint(c.out, c.style(promptStyle, "\n➡ You: "))
}

// Say prints a reply attributed to the assistant.
func (c *Console) Say(text string) {
	fmt.Fprintf(c.out, "%s %s\n", c.style(nameStyle, c.name+":"), text)
}

// Note prints secondary output such as command progress.
func (c *Console) Note(text string) {
	fmt.Fprintln(c.out, c.style(noteStyle, text))
}

func (c *Console) style(s lipgloss.Style, text string) string {
	if !c.styled {
		return text
	}
	return s.Render(text)
}
