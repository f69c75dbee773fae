package store

import (
	"context"
	"testing"

	"github.com/mweller/operant/internal/session"
)

func writeTestLog(t *testing.T, s *Store, sessionID string, end *session.EndPayload) {
	t.Helper()
	ctx := context.Background()
	createTestSession(t, s, sessionID)

	if err := s.AppendStart(ctx, sessionID, 1, session.StartPayload{Balance: 0}); err != nil {
		t.Fatalf("AppendStart() failed: %v", err)
	}
	for i := int64(1); i <= 3; i++ {
		if err := s.AppendClick(ctx, sessionID, i+1, testClickPayload("primary", i, i*5)); err != nil {
			t.Fatalf("AppendClick() failed: %v", err)
		}
	}
	if end != nil {
		if _, err := s.AppendEnd(ctx, sessionID, 5, *end); err != nil {
			t.Fatalf("AppendEnd() failed: %v", err)
		}
	}
}

func TestReplaySession_ReconstructsFinalState(t *testing.T) {
	s := createTestStore(t)
	writeTestLog(t, s, "sess-1", &session.EndPayload{
		Balance:          15,
		TimeExpired:      true,
		ActivationCounts: map[string]int64{"primary": 3},
	})

	summary, err := s.ReplaySession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("ReplaySession() failed: %v", err)
	}

	if !summary.Started || !summary.Ended {
		t.Errorf("Started=%v Ended=%v, expected both true", summary.Started, summary.Ended)
	}
	if summary.Balance != 15 {
		t.Errorf("Balance = %d, expected 15", summary.Balance)
	}
	if summary.EndCause != "time" {
		t.Errorf("EndCause = %q, expected time", summary.EndCause)
	}
	if summary.TotalActivations != 3 {
		t.Errorf("TotalActivations = %d, expected 3", summary.TotalActivations)
	}
	if summary.ClickCount != 3 {
		t.Errorf("ClickCount = %d, expected 3", summary.ClickCount)
	}
	if summary.LastSeq != 5 {
		t.Errorf("LastSeq = %d, expected 5", summary.LastSeq)
	}
	if summary.ActivationCounts["primary"] != 3 {
		t.Errorf("ActivationCounts = %v, expected primary:3", summary.ActivationCounts)
	}
}

func TestReplaySession_CeilingCause(t *testing.T) {
	s := createTestStore(t)
	writeTestLog(t, s, "sess-1", &session.EndPayload{
		Balance:        100,
		CeilingReached: true,
		ActivationCounts: map[string]int64{
			"primary": 3,
		},
	})

	summary, err := s.ReplaySession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("ReplaySession() failed: %v", err)
	}
	if summary.EndCause != "ceiling" {
		t.Errorf("EndCause = %q, expected ceiling", summary.EndCause)
	}
	if !summary.CeilingReached {
		t.Error("CeilingReached = false, expected true")
	}
}

// A session that continued past the ceiling and then timed out carries both
// flags; the timer is the cause.
func TestReplaySession_TimeAfterCeiling(t *testing.T) {
	s := createTestStore(t)
	writeTestLog(t, s, "sess-1", &session.EndPayload{
		Balance:        100,
		CeilingReached: true,
		TimeExpired:    true,
	})

	summary, err := s.ReplaySession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("ReplaySession() failed: %v", err)
	}
	if summary.EndCause != "time" {
		t.Errorf("EndCause = %q, expected time", summary.EndCause)
	}
}

func TestReplaySession_RunningSession(t *testing.T) {
	s := createTestStore(t)
	writeTestLog(t, s, "sess-1", nil)

	summary, err := s.ReplaySession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("ReplaySession() failed: %v", err)
	}

	// No end event: state comes from the last click snapshot.
	if !summary.Started {
		t.Error("Started = false, expected true")
	}
	if summary.Ended {
		t.Error("Ended = true, expected false")
	}
	if summary.EndCause != "" {
		t.Errorf("EndCause = %q, expected empty", summary.EndCause)
	}
	if summary.Balance != 15 {
		t.Errorf("Balance = %d, expected 15", summary.Balance)
	}
	if summary.TotalActivations != 3 {
		t.Errorf("TotalActivations = %d, expected 3", summary.TotalActivations)
	}
}

func TestReplaySession_EmptyLog(t *testing.T) {
	s := createTestStore(t)

	summary, err := s.ReplaySession(context.Background(), "missing")
	if err != nil {
		t.Fatalf("ReplaySession() failed: %v", err)
	}
	if summary.Started || summary.Ended {
		t.Errorf("empty log produced Started=%v Ended=%v", summary.Started, summary.Ended)
	}
	if summary.ActivationCounts == nil {
		t.Error("ActivationCounts is nil, expected empty map")
	}
}
