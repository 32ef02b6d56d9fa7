// Package runner drives Marvin's turn loop.
//
// Each utterance is first checked against a fixed, ordered table of local
// commands (exit, memory operations). The first match handles the turn and
// the reasoning service is never consulted. Anything else is resolved into
// an intent.Decision and dispatched: Run goes to the executor, Chat is
// replied verbatim.
//
// Flow:
//
//	listen -> local command? -> resolve -> run | chat -> reply -> listen
//
// Nothing but the exit command, end of input or a cancelled context ends
// the loop; every other failure becomes a reply.
package runner
