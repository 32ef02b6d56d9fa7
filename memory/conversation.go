package memory

import "time"

// DefaultMaxHistory is the number of user+assistant pairs kept in a Conversation.
const DefaultMaxHistory = 10

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single entry of the session log.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the bounded, ordered log of the current session.
// It is not safe for concurrent use; the turn loop is its only caller.
type Conversation struct {
	maxHistory int
	turns      []Turn
	now        func() time.Time
}

// NewConversation returns a Conversation holding at most 2*maxHistory turns.
// Values below 1 fall back to DefaultMaxHistory.
func NewConversation(maxHistory int) *Conversation {
	if maxHistory < 1 {
		maxHistory = DefaultMaxHistory
	}
	return &Conversation{maxHistory: maxHistory, now: time.Now}
}

// Append records a turn stamped with the current time and drops the oldest
// turns once the bound is exceeded.
func (c *Conversation) Append(role Role, content string) {
	c.turns = append(c.turns, Turn{Role: role, Content: content, Timestamp: c.now()})
	if over := len(c.turns) - c.Limit(); over > 0 {
		// Copy so the backing array doesn't grow without bound.
		c.turns = append([]Turn(nil), c.turns[over:]...)
	}
}

// Recent returns up to n of the newest turns, oldest first.
func (c *Conversation) Recent(n int) []Turn {
	if n <= 0 {
		return nil
	}
	if n > len(c.turns) {
		n = len(c.turns)
	}
	out := make([]Turn, n)
	copy(out, c.turns[len(c.turns)-n:])
	return out
}

// Len reports the number of turns currently held.
func (c *Conversation) Len() int { return len(c.turns) }

// Limit is the maximum number of turns held.
func (c *Conversation) Limit() int { return 2 * c.maxHistory }
