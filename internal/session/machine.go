package session

import (
	"github.com/mweller/operant/internal/config"
)

// Score is the result of scoring one activation.
type Score struct {
	// Rewarded is true when this activation completed a fixed-ratio cycle
	// and a non-zero amount was awarded.
	Rewarded bool

	// AmountAwarded is the awarded amount in minor units, after clamping.
	AmountAwarded int64

	// NewBalance is the session balance after applying the award.
	NewBalance int64

	// CeilingJustReached is true exactly once per session: on the
	// activation whose award took the balance to the ceiling.
	CeilingJustReached bool

	// Sound is true when the configured input asks for payout feedback.
	// Audio is the presentation layer's job; the machine only signals it.
	Sound bool
}

// Machine is the reward/limit state machine.
//
// It consumes the canonical configuration and the activation stream and is
// the sole mutator of the runtime's counters and balance. All monetary math
// is integer math in minor units; the clamp is computed before the balance
// mutates, so no transient overshoot is ever visible.
type Machine struct {
	cfg    config.SessionConfig
	rt     *Runtime
	inputs map[string]config.Input
}

// NewMachine initializes per-input counters from the canonical config.
func NewMachine(cfg config.SessionConfig, rt *Runtime) *Machine {
	inputs := make(map[string]config.Input, len(cfg.Inputs))
	for _, in := range cfg.Inputs {
		inputs[in.ID] = in
	}
	return &Machine{cfg: cfg, rt: rt, inputs: inputs}
}

// Score scores one activation.
//
// The activation count increments unconditionally, even for non-rewarded or
// post-ceiling activations, for analytics fidelity. An unknown input ID
// returns a RuntimeError and mutates nothing; the caller drops the
// activation.
func (m *Machine) Score(inputID string) (Score, error) {
	in, ok := m.inputs[inputID]
	if !ok {
		return Score{}, &RuntimeError{
			Code:    ErrCodeUnknownInput,
			Message: "activation for input not in configuration",
			InputID: inputID,
		}
	}

	m.rt.ActivationCounts[inputID]++
	s := Score{NewBalance: m.rt.Balance}

	if !in.Reward.Rewarded || !in.Interactable() {
		return s, nil
	}
	if m.rt.CeilingReached {
		// Post-ceiling activations still count but never pay out further.
		// With ContinueAfterCeiling=false the session has already ended and
		// activations should not reach here at all.
		return s, nil
	}

	m.rt.IntervalCounters[inputID]++
	if m.rt.IntervalCounters[inputID] < in.Reward.Every {
		return s, nil
	}
	m.rt.IntervalCounters[inputID] = 0

	// Clamp before mutating: the balance must never exceed the ceiling.
	award := in.Reward.Amount
	if m.rt.Balance+award >= m.cfg.RewardCeiling {
		award = m.cfg.RewardCeiling - m.rt.Balance
		if award < 0 {
			award = 0
		}
		m.rt.CeilingReached = true
		s.CeilingJustReached = true
	}
	m.rt.Balance += award

	s.Rewarded = award > 0
	s.AmountAwarded = award
	s.NewBalance = m.rt.Balance
	s.Sound = s.Rewarded && in.Reward.Sound
	return s, nil
}

// Runtime exposes the machine's runtime state for the engine and tests.
func (m *Machine) Runtime() *Runtime {
	return m.rt
}
