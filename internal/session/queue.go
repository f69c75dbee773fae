package session

import "sync"

// Source identifies where an activation originated.
type Source string

const (
	SourceScreen   Source = "screen"
	SourceKeyboard Source = "keyboard"
	SourceDevice   Source = "device"
)

// ActivationEvent is one debounced, edge-detected activation, produced by
// the multiplexer (or the presentation layer for screen inputs) and consumed
// exactly once by the state machine.
type ActivationEvent struct {
	InputID string
	Source  Source
}

// eventQueue is a thread-safe FIFO queue of activations.
//
// Input sources enqueue from their own goroutines (key reader, device
// poller) while the engine's run loop dequeues. The queue is unbounded:
// activations are cheap and burst-y, and dropping belongs to the debounce
// layer, not here.
//
// A buffered signal channel of size 1 coalesces wakeups so the run loop can
// select on context cancellation and the time-limit timer at the same time.
type eventQueue struct {
	mu     sync.Mutex
	events []ActivationEvent
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]ActivationEvent, 0, 32),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an activation to the back of the queue.
// Returns false if the queue is closed (session already ended).
func (q *eventQueue) Enqueue(ev ActivationEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, ev)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front activation without blocking.
func (q *eventQueue) TryDequeue() (ActivationEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return ActivationEvent{}, false
	}
	ev := q.events[0]
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return ev, true
}

// Wait returns the signal channel for select-based waiting. The channel is
// closed when the queue closes, so waiters wake immediately afterwards.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending activations.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close marks the queue closed and wakes all waiters. Idempotent.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
