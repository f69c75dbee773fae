package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mweller/operant/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [session-id]",
		Short: "Reconstruct session state from the event log",
		Long: `Reconstruct a session's final state by folding its event log.

The log is the system of record: the summary comes entirely from recorded
events, never from live engine state. With no session ID, all sessions in
the database are listed and summarized.

Examples:
  operant replay --db ./lab.db
  operant replay --db ./lab.db 0198c6f2-...
  operant replay --db ./lab.db 0198c6f2-... --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := ""
			if len(args) > 0 {
				sessionID = args[0]
			}
			return runReplay(opts, sessionID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, sessionID string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var ids []string
	if sessionID != "" {
		ids = []string{sessionID}
	} else {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, s := range sessions {
			ids = append(ids, s.ID)
		}
	}

	if len(ids) == 0 {
		if opts.Format == "json" {
			formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
			return formatter.Success([]store.SessionSummary{})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found in database.")
		return nil
	}

	summaries := make([]store.SessionSummary, 0, len(ids))
	for _, id := range ids {
		summary, err := st.ReplaySession(ctx, id)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", id), err)
		}
		summaries = append(summaries, summary)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		if len(summaries) == 1 && sessionID != "" {
			return formatter.Success(summaries[0])
		}
		return formatter.Success(summaries)
	}

	out := cmd.OutOrStdout()
	for _, s := range summaries {
		status := "running"
		if s.Ended {
			status = fmt.Sprintf("ended (%s)", s.EndCause)
		} else if !s.Started {
			status = "not started"
		}
		fmt.Fprintf(out, "Session %s: %s\n", s.SessionID, status)
		fmt.Fprintf(out, "  balance:     %d\n", s.Balance)
		fmt.Fprintf(out, "  activations: %d over %d click event(s)\n", s.TotalActivations, s.ClickCount)
		if s.CeilingReached {
			fmt.Fprintln(out, "  ceiling reached")
		}
		for _, id := range sortedCountKeys(s.ActivationCounts) {
			fmt.Fprintf(out, "    %-12s %d\n", id, s.ActivationCounts[id])
		}
	}

	return nil
}
