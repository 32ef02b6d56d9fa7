// Package safety decides how command outcomes are judged.
package safety

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultSuccessPatterns lists Windows commands that exit non-zero on success.
// explorer.exe returns 1 even when the window opened fine.
var DefaultSuccessPatterns = []string{
	"explorer",
	"explorer *",
	"explorer.exe",
	"explorer.exe *",
	"start explorer*",
}

// SuccessPolicy treats a whitelisted command's non-zero exit as success.
// The whitelist only applies on Windows.
type SuccessPolicy struct {
	goos     string
	patterns []string
}

// NewSuccessPolicy validates patterns (doublestar glob syntax, matched
// case-insensitively against the whole command) for the given GOOS.
func NewSuccessPolicy(goos string, patterns []string) (*SuccessPolicy, error) {
	ps := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.Join(strings.Fields(p), " "))
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("safety: invalid success pattern %q", p)
		}
		ps = append(ps, p)
	}
	return &SuccessPolicy{goos: goos, patterns: ps}, nil
}

// Whitelisted reports whether command may exit non-zero on success.
func (p *SuccessPolicy) Whitelisted(command string) bool {
	if p == nil || p.goos != "windows" {
		return false
	}
	name := normalize(command)
	for _, pat := range p.patterns {
		if ok, err := doublestar.Match(pat, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Succeeded reports whether exitCode means success for command.
func (p *SuccessPolicy) Succeeded(command string, exitCode int) bool {
	return exitCode == 0 || p.Whitelisted(command)
}

// normalize lower-cases, collapses whitespace and folds '/' into '\' so that
// '*' spans Windows paths written either way.
func normalize(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.ReplaceAll(s, "/", `\`)
}
