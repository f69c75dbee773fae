// Package session implements the session execution engine.
//
// The engine runs one fixed-ratio reinforcement session: activations arrive
// from the input multiplexer (and from the presentation layer for screen
// inputs), are scored by the reward/limit state machine, and are appended to
// the durable event log. Two independent conditions race to end the session:
// the time limit and the reward ceiling. The termination arbiter guarantees
// exactly one terminal transition regardless of which fires first, or both.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// All runtime state mutation happens in a single goroutine for deterministic
// behavior. This ensures:
// - One activation is fully scored before the next is accepted
// - The event log is appended in processing order
// - Simple reasoning about the termination race
//
// Event Processing Flow:
// 1. Activations enqueued to a FIFO queue from any goroutine
// 2. Engine.Run() dequeues events one at a time
// 3. The state machine scores the activation and mutates runtime state
// 4. The click record is appended to the log (in-memory state is applied
//    first; an append failure is logged and surfaced, never rolled back)
// 5. A ceiling crossing or the time-limit timer drives the arbiter to the
//    single end transition, which appends the end record exactly once
//
// Ordering:
// Every appended record is stamped with a monotonic logical sequence number
// from Clock.Next(). Log order, not wall-clock order of in-memory mutation,
// is the authoritative order for reconstruction.
//
// Tie-break:
// When a ceiling-crossing activation and the time limit become due in the
// same instant, the loop drains pending activations before observing the
// timer, so the ceiling path wins. This is a documented implementation
// choice, not a guarantee callers may rely on.
package session
