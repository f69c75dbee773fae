// Package testutil provides deterministic helpers for engine tests: a
// manually fired time-limit timer and an in-memory event recorder.
package testutil

import (
	"sync"
	"time"

	"github.com/mweller/operant/internal/session"
)

// ManualTimer implements session.Timer with explicit firing, so tests
// control exactly when the time limit elapses.
type ManualTimer struct {
	mu      sync.Mutex
	ch      chan time.Time
	stopped bool
}

// NewManualTimer creates an unexpired manual timer.
func NewManualTimer() *ManualTimer {
	return &ManualTimer{ch: make(chan time.Time, 1)}
}

// C returns the fire channel.
func (t *ManualTimer) C() <-chan time.Time {
	return t.ch
}

// Stop marks the timer cancelled. Returns true if it had not fired yet.
func (t *ManualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// Fire delivers one tick, as the real timer would on expiry.
// A fire after Stop is delivered anyway: the engine's idempotency guard is
// expected to absorb it, and tests rely on that.
func (t *ManualTimer) Fire() {
	select {
	case t.ch <- time.Now():
	default:
	}
}

// Stopped reports whether the engine cancelled the timer.
func (t *ManualTimer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Factory returns a session.TimerFactory that hands out this timer
// regardless of the requested duration.
func (t *ManualTimer) Factory() session.TimerFactory {
	return func(time.Duration) session.Timer { return t }
}
