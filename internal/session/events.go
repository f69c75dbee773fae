package session

import (
	"context"
	"time"
)

// Event kinds appended to the durable log.
const (
	KindStart = "start"
	KindClick = "click"
	KindEnd   = "end"
)

// StartPayload is appended once when the session becomes active.
type StartPayload struct {
	Balance        int64 `json:"balance"`
	CeilingReached bool  `json:"ceilingReached"`
	TimeExpired    bool  `json:"timeExpired"`
}

// ClickPayload is appended for every scored activation. Counts are a
// snapshot taken at scoring time so reconstruction does not depend on
// in-memory state.
type ClickPayload struct {
	InputID          string           `json:"inputId"`
	ActivationCounts map[string]int64 `json:"activationCounts"`
	TotalActivations int64            `json:"totalActivations"`
	AmountAwarded    int64            `json:"amountAwarded"`
	Balance          int64            `json:"balance"`
	CeilingReached   bool             `json:"ceilingReached"`
	TimeExpired      bool             `json:"timeExpired"`
}

// EndPayload is appended exactly once, carrying the terminal state.
type EndPayload struct {
	Balance          int64            `json:"balance"`
	CeilingReached   bool             `json:"ceilingReached"`
	TimeExpired      bool             `json:"timeExpired"`
	ActivationCounts map[string]int64 `json:"activationCounts"`
}

// Recorder is the engine's boundary to the durable, ordered event log.
//
// Appends are the only suspension points in the engine; the log writer's
// receipt order (seq) is the authoritative order for reconstruction. The
// engine never reads its displayed state back from the log.
type Recorder interface {
	AppendStart(ctx context.Context, sessionID string, seq int64, p StartPayload) error
	AppendClick(ctx context.Context, sessionID string, seq int64, p ClickPayload) error

	// AppendEnd is idempotent: a second append for the same session must be
	// a no-op reporting inserted=false.
	AppendEnd(ctx context.Context, sessionID string, seq int64, p EndPayload) (inserted bool, err error)

	// MarkEnded flags the session's persisted record as closed with a
	// wall-clock end time. Idempotent.
	MarkEnded(ctx context.Context, sessionID string, at time.Time) error
}
