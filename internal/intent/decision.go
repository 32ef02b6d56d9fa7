// Package intent turns a free-text utterance into a Decision by consulting
// the reasoning service under a strict JSON reply contract.
//
// A reply that does not honour the contract always decodes to Chat. Only an
// explicit, well-formed run directive with a non-empty command becomes Run.
package intent

// Decision is either Run or Chat.
type Decision interface {
	// Kind returns "run" or "chat".
	Kind() string
	isDecision()
}

// Run asks the executor to run Command.
type Run struct {
	Command string
}

// Chat is a conversational reply.
type Chat struct {
	Say string
}

func (Run) Kind() string  { return ModeRun }
func (Chat) Kind() string { return ModeChat }

func (Run) isDecision()  {}
func (Chat) isDecision() {}
