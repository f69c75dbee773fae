package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mweller/operant/internal/config"
)

// Engine is the single-writer session loop.
//
// It wires the reward/limit state machine, the termination arbiter, and the
// event log together. All runtime mutation happens in the goroutine that
// calls Run (or, for scripted drivers, Step/ExpireTime from one goroutine).
//
// Thread-safety model:
//   - EnqueueActivation(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Runtime()/Cause(): meaningful once Run has returned
type Engine struct {
	sessionID string
	cfg       config.SessionConfig
	rec       Recorder
	clock     *Clock
	queue     *eventQueue
	machine   *Machine
	arbiter   *Arbiter

	timerFactory TimerFactory
	timer        Timer

	// onScore receives every scored activation for presentation feedback
	// (award display, payout sound). Optional.
	onScore func(inputID string, s Score)

	// onAppendError surfaces durable write failures for retry or alerting.
	// In-memory state is never rolled back. Optional.
	onAppendError func(err error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimerFactory overrides the time-limit timer construction (tests).
func WithTimerFactory(f TimerFactory) Option {
	return func(e *Engine) { e.timerFactory = f }
}

// WithClock supplies a pre-positioned logical clock, e.g. when appending to
// a log that already holds events.
func WithClock(c *Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithScoreFeedback registers the presentation callback for scored
// activations.
func WithScoreFeedback(fn func(inputID string, s Score)) Option {
	return func(e *Engine) { e.onScore = fn }
}

// WithAppendErrorHandler registers the callback for surfaced log write
// failures.
func WithAppendErrorHandler(fn func(err error)) Option {
	return func(e *Engine) { e.onAppendError = fn }
}

// New creates an engine for one normalized session configuration.
func New(sessionID string, cfg config.SessionConfig, rec Recorder, opts ...Option) *Engine {
	e := &Engine{
		sessionID:    sessionID,
		cfg:          cfg,
		rec:          rec,
		clock:        NewClock(),
		queue:        newEventQueue(),
		arbiter:      NewArbiter(),
		timerFactory: newRealTimer,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.machine = NewMachine(cfg, NewRuntime(cfg.StartingBalance))
	return e
}

// Start appends the start record and performs the pending->active
// transition, arming the time-limit timer at that instant and not before.
//
// Unlike click appends, a failed start append is fatal: the session never
// becomes active without a durable start record.
func (e *Engine) Start(ctx context.Context) error {
	if e.arbiter.Phase() != PhasePending {
		return fmt.Errorf("start session %s: already %s", e.sessionID, e.arbiter.Phase())
	}

	p := StartPayload{Balance: e.cfg.StartingBalance}
	if err := e.rec.AppendStart(ctx, e.sessionID, e.clock.Next(), p); err != nil {
		return fmt.Errorf("append start for session %s: %w", e.sessionID, err)
	}

	e.arbiter.Activate()
	e.timer = e.timerFactory(time.Duration(e.cfg.TimeLimitSeconds) * time.Second)

	slog.Info("session active",
		"session", e.sessionID,
		"time_limit_s", e.cfg.TimeLimitSeconds,
		"ceiling", e.cfg.RewardCeiling,
		"inputs", len(e.cfg.Inputs),
	)
	return nil
}

// EnqueueActivation submits one activation for processing.
// Returns false once the session has ended.
func (e *Engine) EnqueueActivation(inputID string, source Source) bool {
	return e.queue.Enqueue(ActivationEvent{InputID: inputID, Source: source})
}

// Run drives the session to its end: it drains activations, observes the
// time-limit timer, and returns once the terminal transition is done (nil)
// or the context is cancelled.
//
// Pending activations are always drained before the timer is observed, so a
// ceiling crossing that is already queued wins a same-instant race against
// the time limit.
func (e *Engine) Run(ctx context.Context) error {
	for {
		if e.arbiter.Phase() == PhaseEnded {
			return nil
		}

		ev, ok := e.queue.TryDequeue()
		if ok {
			e.processActivation(ctx, ev)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("session engine stopping: context cancelled", "session", e.sessionID)
			e.queue.Close()
			return ctx.Err()

		case <-e.timerC():
			e.ExpireTime(ctx)

		case <-e.queue.Wait():
			// Signal received or queue closed; loop back to TryDequeue.
		}
	}
}

// Step dequeues and processes one pending activation. It exists for
// scripted drivers (the scenario harness) that own the single-writer
// goroutine themselves instead of calling Run.
func (e *Engine) Step(ctx context.Context) bool {
	ev, ok := e.queue.TryDequeue()
	if !ok {
		return false
	}
	e.processActivation(ctx, ev)
	return true
}

// ExpireTime is the time-limit trigger. The run loop invokes it when the
// armed timer fires; scripted drivers invoke it directly. Idempotent: a
// session already ended by the ceiling path absorbs it without mutation.
func (e *Engine) ExpireTime(ctx context.Context) {
	if !e.arbiter.End(EndByTime) {
		return
	}
	e.machine.Runtime().TimeExpired = true
	slog.Info("time limit reached", "session", e.sessionID)
	e.finish(ctx)
}

func (e *Engine) processActivation(ctx context.Context, ev ActivationEvent) {
	if e.arbiter.Phase() != PhaseActive {
		slog.Debug("activation dropped: session not active",
			"session", e.sessionID,
			"input", ev.InputID,
			"phase", e.arbiter.Phase().String(),
		)
		return
	}

	score, err := e.machine.Score(ev.InputID)
	if err != nil {
		// Unknown input: logged, not fatal. Configurations are allowed to
		// change between load and a stale client's activation.
		slog.Warn("activation dropped", "session", e.sessionID, "input", ev.InputID, "error", err)
		return
	}

	rt := e.machine.Runtime()
	p := ClickPayload{
		InputID:          ev.InputID,
		ActivationCounts: rt.CountsSnapshot(),
		TotalActivations: rt.TotalActivations(),
		AmountAwarded:    score.AmountAwarded,
		Balance:          rt.Balance,
		CeilingReached:   rt.CeilingReached,
		TimeExpired:      rt.TimeExpired,
	}
	if err := e.rec.AppendClick(ctx, e.sessionID, e.clock.Next(), p); err != nil {
		// Optimistically applied: the in-memory effect stands and the
		// session continues locally. The log may lag the UI until retry.
		e.reportAppendFailure("click", err)
	}

	if e.onScore != nil {
		e.onScore(ev.InputID, score)
	}

	if score.CeilingJustReached {
		slog.Info("reward ceiling reached",
			"session", e.sessionID,
			"balance", rt.Balance,
			"continue", e.cfg.ContinueAfterCeiling,
		)
		if !e.cfg.ContinueAfterCeiling && e.arbiter.End(EndByCeiling) {
			e.finish(ctx)
		}
	}
}

// finish runs after the arbiter's single terminal transition: cancels the
// unused trigger path, appends the end record, and closes the queue.
func (e *Engine) finish(ctx context.Context) {
	if e.timer != nil {
		e.timer.Stop()
	}

	rt := e.machine.Runtime()
	p := EndPayload{
		Balance:          rt.Balance,
		CeilingReached:   rt.CeilingReached,
		TimeExpired:      rt.TimeExpired,
		ActivationCounts: rt.CountsSnapshot(),
	}
	inserted, err := e.rec.AppendEnd(ctx, e.sessionID, e.clock.Next(), p)
	if err != nil {
		e.reportAppendFailure("end", err)
	} else if !inserted {
		// The storage layer absorbed a duplicate end. The arbiter guard
		// should make this unreachable; log loudly if it ever happens.
		slog.Error("duplicate end append absorbed by store", "session", e.sessionID)
	}

	if err := e.rec.MarkEnded(ctx, e.sessionID, time.Now()); err != nil {
		e.reportAppendFailure("mark-ended", err)
	}

	e.queue.Close()
	slog.Info("session ended",
		"session", e.sessionID,
		"cause", string(e.arbiter.Cause()),
		"balance", rt.Balance,
		"activations", rt.TotalActivations(),
	)
}

func (e *Engine) reportAppendFailure(kind string, err error) {
	re := &RuntimeError{
		Code:      ErrCodeAppendFailed,
		Message:   fmt.Sprintf("append %s: %v", kind, err),
		SessionID: e.sessionID,
	}
	slog.Error("event log append failed", "session", e.sessionID, "kind", kind, "error", err)
	if e.onAppendError != nil {
		e.onAppendError(re)
	}
}

func (e *Engine) timerC() <-chan time.Time {
	if e.timer == nil {
		return nil
	}
	return e.timer.C()
}

// Phase returns the session's lifecycle phase.
func (e *Engine) Phase() Phase {
	return e.arbiter.Phase()
}

// Cause returns the recorded end cause once the session has ended.
func (e *Engine) Cause() EndCause {
	return e.arbiter.Cause()
}

// Runtime exposes the in-memory state. Read it from the single-writer
// goroutine, or after Run has returned.
func (e *Engine) Runtime() *Runtime {
	return e.machine.Runtime()
}

// Clock returns the engine's logical clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// QueueLen returns the number of pending activations.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}
