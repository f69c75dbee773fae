package harness

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mweller/operant/internal/config"
	"github.com/mweller/operant/internal/session"
	"github.com/mweller/operant/internal/store"
	"github.com/mweller/operant/internal/testutil"
)

// sessionID is fixed so traces are identical across runs.
const sessionID = "test-session"

// TraceEvent is one replayed log record. Payload is decoded to a plain map
// so golden serialization is independent of the payload struct types.
type TraceEvent struct {
	Kind    string         `json:"kind"`
	Seq     int64          `json:"seq"`
	Payload map[string]any `json:"payload"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation matched.
	Pass bool `json:"pass"`

	// Errors contains expectation mismatches. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Trace is the session's event log in authoritative order.
	Trace []TraceEvent `json:"trace"`

	// Summary is the state reconstructed by replaying the log.
	Summary store.SessionSummary `json:"summary"`
}

// Run executes a scenario against the real engine and a fresh in-memory
// event log, then replays the log to build the result.
//
// The script owns the single-writer goroutine: activations are drained
// after every step, and the time trigger fires only once the advanced clock
// crosses the configured limit. A session the script never terminates is
// left running; expectations can assert on that too.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	cfg := config.Normalize([]byte(scenario.Config))

	ctx := context.Background()
	if err := st.CreateSession(ctx, sessionID, cfg); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	timer := testutil.NewManualTimer()
	eng := session.New(sessionID, cfg, st,
		session.WithTimerFactory(timer.Factory()),
	)
	if err := eng.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	var (
		elapsedMS int64
		limitMS   = int64(cfg.TimeLimitSeconds) * 1000
		expired   bool
	)
	for _, step := range scenario.Steps {
		switch {
		case step.Activate != "":
			eng.EnqueueActivation(step.Activate, activationSource(cfg, step.Activate))
			for eng.Step(ctx) {
			}
		case step.AdvanceMS > 0:
			elapsedMS += int64(step.AdvanceMS)
			if !expired && elapsedMS >= limitMS {
				expired = true
				eng.ExpireTime(ctx)
			}
		}
	}

	result := &Result{Pass: true}

	events, err := st.ReadEvents(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	result.Trace = make([]TraceEvent, 0, len(events))
	for _, ev := range events {
		var payload map[string]any
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", ev.Kind, err)
		}
		result.Trace = append(result.Trace, TraceEvent{
			Kind:    ev.Kind,
			Seq:     ev.Seq,
			Payload: payload,
		})
	}

	result.Summary, err = st.ReplaySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to replay session: %w", err)
	}

	evaluateExpectations(scenario.Expect, result)
	return result, nil
}

// activationSource picks the source tag matching the input's configured
// kind. Unknown IDs default to the screen source; the engine drops them
// either way.
func activationSource(cfg config.SessionConfig, inputID string) session.Source {
	in, ok := cfg.Input(inputID)
	if !ok {
		return session.SourceScreen
	}
	switch in.Kind {
	case config.KindKeyboard:
		return session.SourceKeyboard
	case config.KindDeviceButton, config.KindDeviceAxis:
		return session.SourceDevice
	default:
		return session.SourceScreen
	}
}
