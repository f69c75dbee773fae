// Package input multiplexes heterogeneous input sources into one ordered
// activation stream.
//
// Screen inputs are activated directly by the presentation layer calling
// Activate; the multiplexer's job is to make physical sources behave
// identically: key presses are matched against configured bindings, device
// buttons and axes are polled and edge-detected, and every activation from
// any source passes the same per-input debounce before reaching the engine.
package input

import (
	"sync"
	"time"

	"github.com/mweller/operant/internal/config"
	"github.com/mweller/operant/internal/session"
)

// DefaultDebounceWindow is the minimum re-trigger interval per input. It
// absorbs duplicate hardware bounce; activations inside the window are
// dropped, not queued.
const DefaultDebounceWindow = 50 * time.Millisecond

// ActivateFunc receives each debounced, edge-detected activation.
type ActivateFunc func(inputID string, source session.Source)

// Mux is the activation funnel for one session.
//
// Thread-safety: all methods are safe for concurrent use; the key reader,
// the device poller, and the presentation layer may call in from their own
// goroutines.
type Mux struct {
	mu      sync.Mutex
	fire    ActivateFunc
	window  time.Duration
	now     func() time.Time
	last    map[string]time.Time
	keys    map[string]string // raw key code -> input ID
	enabled bool
}

// MuxOption configures a Mux.
type MuxOption func(*Mux)

// WithDebounceWindow overrides the per-input debounce window.
func WithDebounceWindow(d time.Duration) MuxOption {
	return func(m *Mux) { m.window = d }
}

// WithNow overrides the time source (tests).
func WithNow(now func() time.Time) MuxOption {
	return func(m *Mux) { m.now = now }
}

// NewMux builds a multiplexer for the session's inputs. Keyboard bindings
// are indexed by raw key code; device inputs are handled by a Poller built
// from the same input list.
func NewMux(inputs []config.Input, fire ActivateFunc, opts ...MuxOption) *Mux {
	m := &Mux{
		fire:    fire,
		window:  DefaultDebounceWindow,
		now:     time.Now,
		last:    make(map[string]time.Time),
		keys:    make(map[string]string),
		enabled: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, in := range inputs {
		if in.Kind == config.KindKeyboard && in.Binding != nil && in.Binding.Code != "" {
			m.keys[in.Binding.Code] = in.ID
		}
	}
	return m
}

// SetEnabled gates all activation delivery. Disabled during rebinding
// capture, which is mutually exclusive with normal multiplexing.
func (m *Mux) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// Activate submits one raw activation through the debounce gate.
// Returns true if the activation was forwarded downstream.
//
// The presentation layer calls this directly for screen inputs; the
// keyboard matcher and device poller route through it as well, so all
// sources share identical debounce behavior.
func (m *Mux) Activate(inputID string, source session.Source) bool {
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return false
	}
	now := m.now()
	if prev, ok := m.last[inputID]; ok && now.Sub(prev) < m.window {
		m.mu.Unlock()
		return false
	}
	m.last[inputID] = now
	fire := m.fire
	m.mu.Unlock()

	if fire != nil {
		fire(inputID, source)
	}
	return true
}

// HandleKeyDown matches a raw key code against the configured bindings.
// Each matching keydown is one activation; keyup is ignored entirely, so a
// held key's auto-repeat still collapses under the debounce window.
func (m *Mux) HandleKeyDown(code string) bool {
	m.mu.Lock()
	inputID, ok := m.keys[code]
	m.mu.Unlock()

	if !ok {
		return false
	}
	return m.Activate(inputID, session.SourceKeyboard)
}
