package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mweller/operant/internal/session"
	"github.com/mweller/operant/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Kind     string // optional - filter to one event kind
	SinceSeq int64  // optional - skip events below this sequence number
}

// TraceEvent is a single entry in the trace timeline.
type TraceEvent struct {
	Seq      int64           `json:"seq"`
	Kind     string          `json:"kind"`
	WallTime string          `json:"wall_time"`
	Payload  json.RawMessage `json:"payload"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	SessionID string       `json:"session_id"`
	Timeline  []TraceEvent `json:"timeline"`
	Stats     TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents int  `json:"total_events"`
	Clicks      int  `json:"clicks"`
	Ended       bool `json:"ended"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <session-id>",
		Short: "Print the ordered event trace for a session",
		Long: `Print a session's event log in authoritative order.

Events are ordered by logical sequence number with insertion order as the
tie-break, exactly as the replay fold consumes them. Wall times are shown
for operators but carry no ordering authority.

Examples:
  operant trace --db ./lab.db 0198c6f2-...
  operant trace --db ./lab.db 0198c6f2-... --kind click
  operant trace --db ./lab.db 0198c6f2-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one event kind (start|click|end)")
	cmd.Flags().Int64Var(&opts.SinceSeq, "since-seq", 0, "skip events with a lower sequence number")

	return cmd
}

func runTrace(opts *TraceOptions, sessionID string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	filter := store.EventFilter{Kind: opts.Kind, MinSeq: opts.SinceSeq}
	events, err := st.QueryEvents(ctx, sessionID, filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	result := TraceResult{
		SessionID: sessionID,
		Timeline:  make([]TraceEvent, 0, len(events)),
	}
	for _, ev := range events {
		result.Timeline = append(result.Timeline, TraceEvent{
			Seq:      ev.Seq,
			Kind:     ev.Kind,
			WallTime: ev.WallTime.Format("15:04:05.000"),
			Payload:  ev.Payload,
		})
		if ev.Kind == session.KindClick {
			result.Stats.Clicks++
		}
		if ev.Kind == session.KindEnd {
			result.Stats.Ended = true
		}
	}
	result.Stats.TotalEvents = len(result.Timeline)

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return formatter.Success(result)
	}

	out := cmd.OutOrStdout()
	if len(result.Timeline) == 0 {
		fmt.Fprintf(out, "No events for session %s.\n", sessionID)
		return nil
	}

	fmt.Fprintf(out, "Trace for session %s (%d event(s)):\n", sessionID, result.Stats.TotalEvents)
	for _, ev := range result.Timeline {
		fmt.Fprintf(out, "  %4d  %-5s  %s  %s\n", ev.Seq, ev.Kind, ev.WallTime, compactJSON(ev.Payload))
	}
	return nil
}

// compactJSON re-encodes a payload without whitespace for one-line display.
func compactJSON(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return string(raw)
	}
	return string(b)
}
