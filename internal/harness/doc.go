// Package harness provides scenario-driven conformance testing for the
// session engine.
//
// The harness runs the real engine against a fresh in-memory event log with
// a deterministic manual timer, then reconstructs the outcome by replaying
// the log. Assertions and golden traces therefore validate what the engine
// actually recorded, never values the harness manufactured itself.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: ceiling_termination
//	description: "Ceiling crossing ends the session"
//	config: |
//	  {"rewardCeiling": 10, "inputs": [ ... ]}
//	steps:
//	  - activate: lever
//	  - activate: lever
//	  - advance_ms: 1000
//	expect:
//	  end_cause: ceiling
//	  balance: 10
//
// The config block is any document the normalizer accepts, legacy formats
// included. Steps either activate an input by ID or advance the session
// clock; the time-limit trigger fires when the advanced total crosses the
// configured limit.
//
// # Determinism
//
// Activations are drained after every step, so a queued ceiling crossing
// always beats a simultaneous time expiry, matching the run loop's ordering
// guarantee. Traces are byte-stable and suitable for golden comparison
// (go test ./internal/harness -update to regenerate).
package harness
