package session

// Phase is the session lifecycle state. Transitions are strictly
// pending -> active -> ended and never go backward.
type Phase int

const (
	PhasePending Phase = iota
	PhaseActive
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseActive:
		return "active"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// EndCause records which of the two racing conditions ended the session.
type EndCause string

const (
	EndByTime    EndCause = "time"
	EndByCeiling EndCause = "ceiling"
)

// Runtime is the in-memory per-session state.
//
// It is not persisted: the event log is the system of record, and analytics
// reconstructs history from the log alone. Ownership is split per the
// engine's single-writer design: the state machine mutates counters and
// balance, the arbiter owns lifecycle flags, and nothing else writes here.
type Runtime struct {
	Balance          int64
	ActivationCounts map[string]int64
	IntervalCounters map[string]int
	CeilingReached   bool
	TimeExpired      bool
}

// NewRuntime creates runtime state for a freshly normalized configuration.
func NewRuntime(startingBalance int64) *Runtime {
	return &Runtime{
		Balance:          startingBalance,
		ActivationCounts: make(map[string]int64),
		IntervalCounters: make(map[string]int),
	}
}

// TotalActivations sums the per-input activation counts.
func (r *Runtime) TotalActivations() int64 {
	var total int64
	for _, n := range r.ActivationCounts {
		total += n
	}
	return total
}

// CountsSnapshot returns a copy of the per-input activation counts, safe to
// hand to the event log while the originals keep mutating.
func (r *Runtime) CountsSnapshot() map[string]int64 {
	snap := make(map[string]int64, len(r.ActivationCounts))
	for id, n := range r.ActivationCounts {
		snap[id] = n
	}
	return snap
}
