package runner

import (
	"fmt"
	"time"
)

// Greeting returns the salutation for the hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return "Good morning!"
	case h >= 12 && h < 17:
		return "Good afternoon!"
	case h >= 17 && h < 21:
		return "Good evening!"
	default:
		return "Good night!"
	}
}

// Welcome is the first thing the assistant says in a session.
func Welcome(name string, t time.Time) string {
	if name == "" {
		name = "Marvin"
	}
	return fmt.Sprintf("Hello, I am %s. %s How can I assist you today?", name, Greeting(t))
}
