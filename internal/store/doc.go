// Package store provides SQLite-backed durable storage for session event logs.
//
// The store implements an append-only log with:
//   - Sessions: one row per session, carrying the normalized config
//   - Events: start, click, and end records in receipt order
//
// # Critical Patterns
//
// Idempotent termination:
//   - A partial UNIQUE index on events(session_id) WHERE kind='end'
//     guarantees at most one end event per session
//   - AppendEnd uses ON CONFLICT DO NOTHING and reports whether it inserted
//
// Logical time:
//   - All ordering uses seq INTEGER (logical clock), never timestamps
//   - wall_time is recorded for operators but carries no ordering authority
//
// Deterministic reads:
//   - Event queries order by seq ASC, id ASC so reconstruction is identical
//     across replays
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
