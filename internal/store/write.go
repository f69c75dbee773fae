package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mweller/operant/internal/config"
	"github.com/mweller/operant/internal/session"
)

// Store satisfies the engine's log boundary.
var _ session.Recorder = (*Store)(nil)

// CreateSession inserts a session row carrying the normalized config.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored.
func (s *Store) CreateSession(ctx context.Context, sessionID string, cfg config.SessionConfig) error {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("create session: marshal config: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, created_at, config)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sessionID,
		time.Now().UTC().Format(time.RFC3339Nano),
		string(cfgJSON),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// AppendStart inserts the session's start event. A session has exactly one
// start (enforced by a partial UNIQUE index), so a second append returns an
// error rather than being absorbed.
func (s *Store) AppendStart(ctx context.Context, sessionID string, seq int64, p session.StartPayload) error {
	if err := s.appendEvent(ctx, sessionID, session.KindStart, seq, p); err != nil {
		return fmt.Errorf("append start: %w", err)
	}
	return nil
}

// AppendClick inserts a click event recording a scored activation.
func (s *Store) AppendClick(ctx context.Context, sessionID string, seq int64, p session.ClickPayload) error {
	if err := s.appendEvent(ctx, sessionID, session.KindClick, seq, p); err != nil {
		return fmt.Errorf("append click: %w", err)
	}
	return nil
}

// AppendEnd inserts the session's end event and reports whether a new row
// was written. ON CONFLICT DO NOTHING against the partial UNIQUE index on
// (session_id) WHERE kind='end' makes the append idempotent: whichever
// trigger appends first wins, and the loser is silently absorbed with
// inserted=false.
func (s *Store) AppendEnd(ctx context.Context, sessionID string, seq int64, p session.EndPayload) (inserted bool, err error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("append end: marshal payload: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO events (session_id, kind, seq, payload, wall_time)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		sessionID,
		session.KindEnd,
		seq,
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("append end: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append end: rows affected: %w", err)
	}

	return affected > 0, nil
}

// MarkEnded records the wall-clock end time on the session row. Idempotent:
// the first recorded time wins and later calls are no-ops.
func (s *Store) MarkEnded(ctx context.Context, sessionID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET ended_at = COALESCE(ended_at, ?)
		WHERE id = ?
	`,
		at.UTC().Format(time.RFC3339Nano),
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("mark ended: %w", err)
	}
	return nil
}

func (s *Store) appendEvent(ctx context.Context, sessionID, kind string, seq int64, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (session_id, kind, seq, payload, wall_time)
		VALUES (?, ?, ?, ?, ?)
	`,
		sessionID,
		kind,
		seq,
		string(data),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}
