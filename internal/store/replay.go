package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mweller/operant/internal/session"
)

// SessionSummary is the state reconstructed by folding a session's event
// log. The log is the system of record: everything here comes from the
// recorded payloads, never from live engine state.
type SessionSummary struct {
	SessionID        string           `json:"sessionId"`
	Started          bool             `json:"started"`
	Ended            bool             `json:"ended"`
	EndCause         string           `json:"endCause,omitempty"`
	Balance          int64            `json:"balance"`
	CeilingReached   bool             `json:"ceilingReached"`
	TimeExpired      bool             `json:"timeExpired"`
	ActivationCounts map[string]int64 `json:"activationCounts"`
	TotalActivations int64            `json:"totalActivations"`
	ClickCount       int              `json:"clickCount"`
	LastSeq          int64            `json:"lastSeq"`
}

// ReplaySession folds the ordered event log for a session into its final
// state. Click payloads carry full snapshots, so the fold only keeps the
// latest one; the end payload, when present, is authoritative.
func (s *Store) ReplaySession(ctx context.Context, sessionID string) (SessionSummary, error) {
	events, err := s.ReadEvents(ctx, sessionID)
	if err != nil {
		return SessionSummary{}, fmt.Errorf("replay session: %w", err)
	}

	summary := SessionSummary{
		SessionID:        sessionID,
		ActivationCounts: map[string]int64{},
	}

	for _, ev := range events {
		if ev.Seq > summary.LastSeq {
			summary.LastSeq = ev.Seq
		}

		switch ev.Kind {
		case session.KindStart:
			var p session.StartPayload
			if err := json.Unmarshal(ev.Payload, &p); err != nil {
				return SessionSummary{}, fmt.Errorf("replay session: decode start: %w", err)
			}
			summary.Started = true
			summary.Balance = p.Balance
			summary.CeilingReached = p.CeilingReached
			summary.TimeExpired = p.TimeExpired

		case session.KindClick:
			var p session.ClickPayload
			if err := json.Unmarshal(ev.Payload, &p); err != nil {
				return SessionSummary{}, fmt.Errorf("replay session: decode click: %w", err)
			}
			summary.ClickCount++
			summary.Balance = p.Balance
			summary.CeilingReached = p.CeilingReached
			summary.TimeExpired = p.TimeExpired
			summary.TotalActivations = p.TotalActivations
			if p.ActivationCounts != nil {
				summary.ActivationCounts = p.ActivationCounts
			}

		case session.KindEnd:
			var p session.EndPayload
			if err := json.Unmarshal(ev.Payload, &p); err != nil {
				return SessionSummary{}, fmt.Errorf("replay session: decode end: %w", err)
			}
			summary.Ended = true
			summary.Balance = p.Balance
			summary.CeilingReached = p.CeilingReached
			summary.TimeExpired = p.TimeExpired
			if p.ActivationCounts != nil {
				summary.ActivationCounts = p.ActivationCounts
				summary.TotalActivations = 0
				for _, n := range p.ActivationCounts {
					summary.TotalActivations += n
				}
			}
			summary.EndCause = deriveEndCause(p)

		default:
			return SessionSummary{}, fmt.Errorf("replay session: unknown event kind %q", ev.Kind)
		}
	}

	return summary, nil
}

// deriveEndCause recovers which trigger terminated the session from the end
// payload flags. The timer sets timeExpired only when it wins, so with a
// ceiling-ended session that flag stays false even if the clock later runs
// out.
func deriveEndCause(p session.EndPayload) string {
	if p.TimeExpired {
		return string(session.EndByTime)
	}
	if p.CeilingReached {
		return string(session.EndByCeiling)
	}
	return ""
}
