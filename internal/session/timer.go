package session

import "time"

// Timer abstracts the time-limit trigger so tests can fire it manually.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// TimerFactory creates the armed time-limit timer. The engine arms it at
// the pending->active transition, not before.
type TimerFactory func(d time.Duration) Timer

type realTimer struct {
	*time.Timer
}

func (t realTimer) C() <-chan time.Time {
	return t.Timer.C
}

func newRealTimer(d time.Duration) Timer {
	return realTimer{time.NewTimer(d)}
}
