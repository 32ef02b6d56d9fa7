// Package memory provides the assistant's two kinds of memory.
//
// Persistence model:
//   - Store: long-term facts, notes and preferences in a single JSON document.
//     Every operation re-reads or re-writes the file; nothing is cached, so two
//     processes sharing a file see each other's writes (last writer wins).
//   - Conversation: the current session's turns, bounded and in-memory only.
package memory
