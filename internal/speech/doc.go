// Package speech holds the edges of a turn: where utterances come from
// (Listener), where replies are shown (Console) and how they are voiced
// (Speaker).
package speech
