package session

import "sync"

// Arbiter owns the session lifecycle and guarantees exactly one terminal
// transition.
//
// Two independent conditions race to end a session: the time limit and a
// ceiling crossing without continuation. Both funnel through End, which is
// idempotent against either or both firing. A partially applied second
// trigger is suppressed here, so the engine never appends a second end
// record.
type Arbiter struct {
	mu    sync.Mutex
	phase Phase
	cause EndCause
}

// NewArbiter creates an arbiter in the pending phase.
func NewArbiter() *Arbiter {
	return &Arbiter{phase: PhasePending}
}

// Phase returns the current lifecycle phase.
func (a *Arbiter) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// Activate performs the pending->active transition. Returns false if the
// session is not pending (already active or ended).
func (a *Arbiter) Activate() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.phase != PhasePending {
		return false
	}
	a.phase = PhaseActive
	return true
}

// End performs the active->ended transition. Returns true only for the
// first caller; later triggers, whichever path they arrive from, are
// absorbed. Ending a still-pending session is also refused.
func (a *Arbiter) End(cause EndCause) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.phase != PhaseActive {
		return false
	}
	a.phase = PhaseEnded
	a.cause = cause
	return true
}

// Cause returns the recorded end cause, empty while the session is running.
// When both conditions were simultaneous the recorded cause is whichever
// the engine observed first; callers must not assume which.
func (a *Arbiter) Cause() EndCause {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cause
}
