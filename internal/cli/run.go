package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mweller/operant/internal/config"
	"github.com/mweller/operant/internal/input"
	"github.com/mweller/operant/internal/session"
	"github.com/mweller/operant/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database  string
	SessionID string

	// IDGen allows overriding the session ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGen session.IDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <config-file>",
		Short: "Run a session from a config file",
		Long: `Run a behavioral session from a config file.

The config is normalized (legacy formats are migrated, gaps are filled with
defaults), a session row is created in the SQLite event log, and the engine
runs until the time limit or the reward ceiling ends the session.

When stdin is a terminal, keyboard bindings activate their inputs and the
digit keys 1-9 activate the visible screen inputs in config order. Press q
or Ctrl-C to abort.

Example:
  operant run --db ./lab.db session.json
  operant run session.json --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults from settings)")
	cmd.Flags().StringVar(&opts.SessionID, "session-id", "", "session ID (defaults to a new UUID)")

	return cmd
}

func runSession(opts *RunOptions, configPath string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	settings, err := LoadSettings(opts.Settings)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load settings", err)
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read config", err)
	}
	cfg := config.Normalize(raw)
	slog.Info("config normalized",
		"inputs", len(cfg.Inputs),
		"time_limit_s", cfg.TimeLimitSeconds,
		"ceiling", cfg.RewardCeiling)

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = settings.Database
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sessionID := opts.SessionID
	if sessionID == "" {
		idGen := opts.IDGen
		if idGen == nil {
			idGen = session.UUIDv7Generator{}
		}
		sessionID = idGen.Generate()
	}
	if err := st.CreateSession(ctx, sessionID, cfg); err != nil {
		return WrapExitError(ExitCommandError, "failed to create session", err)
	}

	out := cmd.OutOrStdout()
	printer := message.NewPrinter(language.English)

	eng := session.New(sessionID, cfg, st,
		session.WithScoreFeedback(func(inputID string, score session.Score) {
			if !score.Rewarded {
				return
			}
			note := ""
			if score.Sound {
				note = " *ding*"
			}
			fmt.Fprintf(out, "%s +%s -> %s%s\n",
				inputID, formatAmount(printer, score.AmountAwarded),
				formatAmount(printer, score.NewBalance), note)
		}),
		session.WithAppendErrorHandler(func(err error) {
			slog.Error("event append failed", "error", err)
		}),
	)

	mux := input.NewMux(cfg.Inputs, func(inputID string, source session.Source) {
		eng.EnqueueActivation(inputID, source)
	}, input.WithDebounceWindow(settings.Debounce))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if stdin, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(stdin.Fd())) {
		state, err := term.MakeRaw(int(stdin.Fd()))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to set raw mode", err)
		}
		defer term.Restore(int(stdin.Fd()), state)

		go readKeys(ctx, cancel, stdin, mux, eng, cfg)
		fmt.Fprintf(out, "Session %s running. Press q or Ctrl-C to stop.\r\n", sessionID)
	} else {
		fmt.Fprintf(out, "Session %s running (no terminal attached).\n", sessionID)
	}

	if err := eng.Start(ctx); err != nil {
		return WrapExitError(ExitFailure, "failed to start session", err)
	}
	mux.SetEnabled(true)

	if err := eng.Run(ctx); err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return WrapExitError(ExitFailure, "session error", err)
	}

	// The run context may already be cancelled (signal, q); the summary read
	// still has to happen.
	return printSummary(context.Background(), opts, st, sessionID, out, printer)
}

// readKeys feeds raw keyboard input into the multiplexer. Digit keys 1-9
// activate visible screen inputs directly so a bare terminal can drive
// screen-only configs.
func readKeys(ctx context.Context, cancel context.CancelFunc, in io.Reader, mux *input.Mux, eng *session.Engine, cfg config.SessionConfig) {
	var screenInputs []config.Input
	for _, i := range cfg.Inputs {
		if i.Kind == config.KindScreen && i.Interactable() {
			screenInputs = append(screenInputs, i)
		}
	}

	buf := make([]byte, 1)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := in.Read(buf)
		if err != nil || n == 0 {
			return
		}

		b := buf[0]
		switch {
		case b == 0x03 || b == 'q': // Ctrl-C in raw mode, or quit
			cancel()
			return
		case b >= '1' && b <= '9':
			idx := int(b - '1')
			if idx < len(screenInputs) {
				eng.EnqueueActivation(screenInputs[idx].ID, session.SourceScreen)
			}
		default:
			mux.HandleKeyDown(keyCode(b))
		}
	}
}

// keyCode maps a raw stdin byte to the key code namespace configs bind
// against.
func keyCode(b byte) string {
	switch b {
	case ' ':
		return "Space"
	case '\r', '\n':
		return "Enter"
	case '\t':
		return "Tab"
	case 0x1b:
		return "Escape"
	default:
		return string(b)
	}
}

func printSummary(ctx context.Context, opts *RunOptions, st *store.Store, sessionID string, out io.Writer, printer *message.Printer) error {
	summary, err := st.ReplaySession(ctx, sessionID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session log", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: "json", Writer: out}
		return formatter.Success(summary)
	}

	if summary.Ended {
		fmt.Fprintf(out, "\nSession %s ended (%s)\n", sessionID, summary.EndCause)
	} else {
		fmt.Fprintf(out, "\nSession %s aborted before its end event\n", sessionID)
	}
	fmt.Fprintf(out, "  balance:     %s\n", formatAmount(printer, summary.Balance))
	fmt.Fprintf(out, "  activations: %d\n", summary.TotalActivations)
	for _, id := range sortedCountKeys(summary.ActivationCounts) {
		fmt.Fprintf(out, "    %-12s %d\n", id, summary.ActivationCounts[id])
	}
	return nil
}

// formatAmount renders integer minor units as a grouped decimal amount.
func formatAmount(p *message.Printer, minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return p.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
