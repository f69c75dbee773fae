package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mweller/operant/internal/config"
)

// Event is a raw row from the event log. Payload stays unparsed so callers
// decode only the kinds they care about.
type Event struct {
	ID        int64
	SessionID string
	Kind      string
	Seq       int64
	Payload   json.RawMessage
	WallTime  time.Time
}

// Session is a row from the sessions table.
type Session struct {
	ID        string
	CreatedAt time.Time
	Config    config.SessionConfig
	EndedAt   *time.Time
}

// ReadEvents returns all events for a session in authoritative order:
// seq ASC, then insertion id ASC as the tie-break.
//
// Returns an empty slice (not nil) if no events exist for the session.
func (s *Store) ReadEvents(ctx context.Context, sessionID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, kind, seq, payload, wall_time
		FROM events
		WHERE session_id = ?
		ORDER BY seq ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	if events == nil {
		events = []Event{}
	}

	return events, nil
}

// ReadSession retrieves a single session row by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSession(ctx context.Context, sessionID string) (Session, error) {
	var (
		sess      Session
		createdAt string
		cfgJSON   string
		endedAt   sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, config, ended_at
		FROM sessions
		WHERE id = ?
	`, sessionID).Scan(&sess.ID, &createdAt, &cfgJSON, &endedAt)
	if err != nil {
		return Session{}, err
	}

	sess.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Session{}, fmt.Errorf("parse created_at: %w", err)
	}

	if err := json.Unmarshal([]byte(cfgJSON), &sess.Config); err != nil {
		return Session{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if endedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, endedAt.String)
		if err != nil {
			return Session{}, fmt.Errorf("parse ended_at: %w", err)
		}
		sess.EndedAt = &t
	}

	return sess, nil
}

// ListSessions returns all session rows ordered by creation time, newest
// first. Used by the CLI to enumerate what the log holds.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM sessions ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	sessions := make([]Session, 0, len(ids))
	for _, id := range ids {
		sess, err := s.ReadSession(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("read session %s: %w", id, err)
		}
		sessions = append(sessions, sess)
	}

	return sessions, nil
}

func scanEvent(rows *sql.Rows) (Event, error) {
	var (
		ev       Event
		payload  string
		wallTime string
	)

	if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.Kind, &ev.Seq, &payload, &wallTime); err != nil {
		return Event{}, fmt.Errorf("scan event: %w", err)
	}

	ev.Payload = json.RawMessage(payload)

	t, err := time.Parse(time.RFC3339Nano, wallTime)
	if err != nil {
		return Event{}, fmt.Errorf("parse wall_time: %w", err)
	}
	ev.WallTime = t

	return ev, nil
}
