package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/mweller/operant/internal/session"
)

// EventFilter narrows an event log read. The zero value matches every
// event, making QueryEvents equivalent to ReadEvents.
type EventFilter struct {
	// Kind restricts results to one event kind. Empty means all kinds.
	Kind string

	// MinSeq and MaxSeq bound the logical clock range, inclusive.
	// Zero means unbounded on that side.
	MinSeq int64
	MaxSeq int64
}

// Validate rejects filters that can never match anything.
func (f EventFilter) Validate() error {
	switch f.Kind {
	case "", session.KindStart, session.KindClick, session.KindEnd:
	default:
		return fmt.Errorf("unknown event kind %q", f.Kind)
	}
	if f.MinSeq < 0 || f.MaxSeq < 0 {
		return fmt.Errorf("seq bounds must be non-negative")
	}
	if f.MinSeq > 0 && f.MaxSeq > 0 && f.MinSeq > f.MaxSeq {
		return fmt.Errorf("min seq %d exceeds max seq %d", f.MinSeq, f.MaxSeq)
	}
	return nil
}

// compile builds the WHERE tail and parameter list for the filter. All
// values are parameterized, never interpolated.
func (f EventFilter) compile(sessionID string) (string, []any) {
	clauses := []string{"session_id = ?"}
	params := []any{sessionID}

	if f.Kind != "" {
		clauses = append(clauses, "kind = ?")
		params = append(params, f.Kind)
	}
	if f.MinSeq > 0 {
		clauses = append(clauses, "seq >= ?")
		params = append(params, f.MinSeq)
	}
	if f.MaxSeq > 0 {
		clauses = append(clauses, "seq <= ?")
		params = append(params, f.MaxSeq)
	}

	return strings.Join(clauses, " AND "), params
}

// QueryEvents returns the session's events matching the filter, in the
// same authoritative order as ReadEvents. Every compiled query carries
// ORDER BY seq, id so results are deterministic regardless of filter.
func (s *Store) QueryEvents(ctx context.Context, sessionID string, filter EventFilter) ([]Event, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event filter: %w", err)
	}

	where, params := filter.compile(sessionID)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, kind, seq, payload, wall_time
		FROM events
		WHERE `+where+`
		ORDER BY seq ASC, id ASC
	`, params...)
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
