package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mweller/operant/internal/config"
	"github.com/mweller/operant/internal/session"
)

// fakeClock provides controllable time for debounce tests.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

type recorder struct {
	fired []string
}

func (r *recorder) fire(inputID string, _ session.Source) {
	r.fired = append(r.fired, inputID)
}

func keyboardInput(id, code string) config.Input {
	return config.Input{
		ID:      id,
		Kind:    config.KindKeyboard,
		Binding: &config.BindingParams{Code: code},
	}
}

// TestMux_Debounce: two activations inside the window collapse to one;
// separated by more than the window, both count.
func TestMux_Debounce(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	m := NewMux(nil, rec.fire, WithNow(clock.now))

	assert.True(t, m.Activate("a", session.SourceScreen))
	clock.advance(10 * time.Millisecond)
	assert.False(t, m.Activate("a", session.SourceScreen), "inside the window: dropped, not queued")

	clock.advance(DefaultDebounceWindow)
	assert.True(t, m.Activate("a", session.SourceScreen))

	assert.Equal(t, []string{"a", "a"}, rec.fired)
}

func TestMux_DebouncePerInput(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	m := NewMux(nil, rec.fire, WithNow(clock.now))

	// The window is per input ID: different inputs do not suppress each
	// other.
	assert.True(t, m.Activate("a", session.SourceScreen))
	assert.True(t, m.Activate("b", session.SourceScreen))
	assert.Equal(t, []string{"a", "b"}, rec.fired)
}

func TestMux_KeyboardMatching(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	inputs := []config.Input{
		keyboardInput("space", "Space"),
		keyboardInput("akey", "KeyA"),
	}
	m := NewMux(inputs, rec.fire, WithNow(clock.now))

	assert.True(t, m.HandleKeyDown("Space"))
	assert.False(t, m.HandleKeyDown("KeyZ"), "unbound codes do not activate")
	clock.advance(time.Second)
	assert.True(t, m.HandleKeyDown("KeyA"))

	assert.Equal(t, []string{"space", "akey"}, rec.fired)
}

// A held key's auto-repeat arrives as repeated keydowns; they collapse
// under the same debounce as everything else.
func TestMux_HeldKeyRepeatDebounces(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	m := NewMux([]config.Input{keyboardInput("space", "Space")}, rec.fire, WithNow(clock.now))

	for i := 0; i < 10; i++ {
		m.HandleKeyDown("Space")
		clock.advance(5 * time.Millisecond)
	}
	require.Len(t, rec.fired, 1)
}

func TestMux_DisabledDropsEverything(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	m := NewMux([]config.Input{keyboardInput("space", "Space")}, rec.fire, WithNow(clock.now))

	m.SetEnabled(false)
	assert.False(t, m.Activate("x", session.SourceScreen))
	assert.False(t, m.HandleKeyDown("Space"))
	assert.Empty(t, rec.fired)

	m.SetEnabled(true)
	assert.True(t, m.HandleKeyDown("Space"))
}

func TestMux_CustomWindow(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	m := NewMux(nil, rec.fire, WithNow(clock.now), WithDebounceWindow(200*time.Millisecond))

	m.Activate("a", session.SourceScreen)
	clock.advance(100 * time.Millisecond)
	assert.False(t, m.Activate("a", session.SourceScreen))
	clock.advance(150 * time.Millisecond)
	assert.True(t, m.Activate("a", session.SourceScreen))
}
