package session

import "sync/atomic"

// Clock is the monotonic logical clock that stamps every appended event.
//
// Log ordering always uses these sequence numbers, never wall-clock
// timestamps: in-memory state may race ahead of the durable log, and the
// log's seq order is the authoritative order for reconstruction.
//
// Thread-safety: safe for concurrent use, though the engine's single-writer
// design means only the run loop normally calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first Next() returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a specific sequence number.
// Used when appending to a log that already has events.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
