package input

import (
	"context"
	"time"

	"github.com/mweller/operant/internal/config"
	"github.com/mweller/operant/internal/session"
)

// AxisThreshold is the deflection (fraction of full range) past which an
// axis counts as pressed, in either direction.
const AxisThreshold = 0.5

// DefaultPollInterval approximates one sample per animation frame. Device
// APIs expose only current state, not edges, so polling is the only option.
const DefaultPollInterval = 16 * time.Millisecond

// DeviceState is one polled snapshot of a physical device.
type DeviceState struct {
	Index     int
	Connected bool
	Buttons   []bool
	Axes      []float64
}

// Sampler supplies current device state on demand.
type Sampler interface {
	Sample() []DeviceState
}

// controlKey identifies one logical control. Axes are split into two
// independent logical controls (direction +1 and -1), each with its own
// edge state; buttons use direction 0.
type controlKey struct {
	device    int
	control   int
	direction int
}

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	*time.Ticker
}

func (t realTicker) C() <-chan time.Time {
	return t.Ticker.C
}

// Poller samples device state at a fixed cadence and fires on false->true
// transitions only, so a held button or a stick pinned past threshold fires
// once, not continuously.
type Poller struct {
	mux     *Mux
	sampler Sampler

	controls  map[controlKey]string // logical control -> input ID
	prev      map[controlKey]bool
	connected map[int]bool

	tickerFactory func() ticker
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithPollInterval overrides the sampling cadence.
func WithPollInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.tickerFactory = func() ticker { return realTicker{time.NewTicker(d)} }
	}
}

// NewPoller builds a poller for the session's device-bound inputs.
func NewPoller(mux *Mux, sampler Sampler, inputs []config.Input, opts ...PollerOption) *Poller {
	p := &Poller{
		mux:       mux,
		sampler:   sampler,
		controls:  make(map[controlKey]string),
		prev:      make(map[controlKey]bool),
		connected: make(map[int]bool),
		tickerFactory: func() ticker {
			return realTicker{time.NewTicker(DefaultPollInterval)}
		},
	}
	for _, opt := range opts {
		opt(p)
	}

	for _, in := range inputs {
		if in.Binding == nil {
			continue
		}
		switch in.Kind {
		case config.KindDeviceButton:
			p.controls[controlKey{in.Binding.Device, in.Binding.Control, 0}] = in.ID
		case config.KindDeviceAxis:
			dir := in.Binding.Direction
			if dir == 0 {
				dir = 1
			}
			p.controls[controlKey{in.Binding.Device, in.Binding.Control, dir}] = in.ID
		}
	}
	return p
}

// Run polls until the context is cancelled. The loop is cancellable as a
// unit: when the session ends or input is disabled, cancelling the context
// stops sampling entirely.
func (p *Poller) Run(ctx context.Context) {
	tick := p.tickerFactory()
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C():
			p.Poll()
		}
	}
}

// Poll performs one sampling pass over all mapped controls.
//
// A reconnected (or newly seen) device primes a fresh baseline from its
// current state without firing, so a button held since before the reconnect
// cannot fire spuriously. A disconnected device simply stops producing
// edges; no error is raised.
func (p *Poller) Poll() {
	states := p.sampler.Sample()

	present := make(map[int]DeviceState, len(states))
	for _, st := range states {
		if st.Connected {
			present[st.Index] = st
		}
	}

	for key, inputID := range p.controls {
		st, ok := present[key.device]
		if !ok {
			continue
		}
		cur := controlActive(st, key)

		if !p.connected[key.device] {
			// Fresh baseline after connect: record, never fire.
			p.prev[key] = cur
			continue
		}
		if cur && !p.prev[key] {
			p.mux.Activate(inputID, session.SourceDevice)
		}
		p.prev[key] = cur
	}

	for idx := range p.connected {
		delete(p.connected, idx)
	}
	for idx := range present {
		p.connected[idx] = true
	}
}

func controlActive(st DeviceState, key controlKey) bool {
	if key.direction == 0 {
		return key.control < len(st.Buttons) && st.Buttons[key.control]
	}
	if key.control >= len(st.Axes) {
		return false
	}
	v := st.Axes[key.control]
	if key.direction > 0 {
		return v > AxisThreshold
	}
	return v < -AxisThreshold
}
