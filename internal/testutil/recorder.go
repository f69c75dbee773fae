package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/mweller/operant/internal/session"
)

// Record is one appended event captured by MemoryRecorder.
type Record struct {
	SessionID string
	Kind      string
	Seq       int64
	Payload   any
}

// MemoryRecorder implements session.Recorder in memory.
//
// It mirrors the durable store's contract: appends are kept in receipt
// order and the end append is idempotent per session. FailAppends, when
// set, makes click/end appends fail without recording, to exercise the
// engine's optimistic-apply behavior.
type MemoryRecorder struct {
	mu          sync.Mutex
	records     []Record
	ended       map[string]time.Time
	FailAppends error
}

// NewMemoryRecorder creates an empty recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{ended: make(map[string]time.Time)}
}

func (r *MemoryRecorder) AppendStart(_ context.Context, sessionID string, seq int64, p session.StartPayload) error {
	return r.append(sessionID, session.KindStart, seq, p)
}

func (r *MemoryRecorder) AppendClick(_ context.Context, sessionID string, seq int64, p session.ClickPayload) error {
	return r.append(sessionID, session.KindClick, seq, p)
}

func (r *MemoryRecorder) AppendEnd(_ context.Context, sessionID string, seq int64, p session.EndPayload) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailAppends != nil {
		return false, r.FailAppends
	}
	for _, rec := range r.records {
		if rec.SessionID == sessionID && rec.Kind == session.KindEnd {
			return false, nil
		}
	}
	r.records = append(r.records, Record{SessionID: sessionID, Kind: session.KindEnd, Seq: seq, Payload: p})
	return true, nil
}

func (r *MemoryRecorder) MarkEnded(_ context.Context, sessionID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ended[sessionID]; !ok {
		r.ended[sessionID] = at
	}
	return nil
}

func (r *MemoryRecorder) append(sessionID, kind string, seq int64, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailAppends != nil && kind != session.KindStart {
		return r.FailAppends
	}
	r.records = append(r.records, Record{SessionID: sessionID, Kind: kind, Seq: seq, Payload: payload})
	return nil
}

// Records returns a copy of all appended events in receipt order.
func (r *MemoryRecorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Kinds returns the kind sequence of all appended events.
func (r *MemoryRecorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]string, len(r.records))
	for i, rec := range r.records {
		kinds[i] = rec.Kind
	}
	return kinds
}

// EndedAt returns the wall-clock end mark for a session, if set.
func (r *MemoryRecorder) EndedAt(sessionID string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.ended[sessionID]
	return at, ok
}
