// Package introspect gathers the host facts the assistant shares with the
// reasoning service: OS identity, the working directory listing and the
// executables reachable on PATH.
package introspect
