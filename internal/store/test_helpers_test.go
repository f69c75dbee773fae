package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mweller/operant/internal/config"
	"github.com/mweller/operant/internal/session"
)

// createTestStore creates a store backed by a temp-dir database.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession inserts a session row with a minimal config.
func createTestSession(t *testing.T, s *Store, sessionID string) {
	t.Helper()
	cfg := config.SessionConfig{
		TimeLimitSeconds: 60,
		RewardCeiling:    100,
		Inputs: []config.Input{
			{
				ID:     "primary",
				Kind:   config.KindScreen,
				Screen: &config.ScreenParams{Shape: "circle", Color: "#ff0000"},
				Reward: config.RewardParams{Rewarded: true, Amount: 5, Every: 1},
			},
		},
	}
	if err := s.CreateSession(context.Background(), sessionID, cfg); err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
}

func testClickPayload(inputID string, total, balance int64) session.ClickPayload {
	return session.ClickPayload{
		InputID:          inputID,
		ActivationCounts: map[string]int64{inputID: total},
		TotalActivations: total,
		AmountAwarded:    5,
		Balance:          balance,
	}
}
