package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mweller/operant/internal/config"
)

func TestCapture_Keyboard(t *testing.T) {
	c := NewCapture()

	res := c.HandleKeyDown("Space")
	assert.Equal(t, config.KindKeyboard, res.Kind)
	assert.Equal(t, "Space", res.Code)
	assert.Equal(t, "Space", res.Label)
}

func TestCapture_DeviceButton(t *testing.T) {
	c := NewCapture()
	states := []DeviceState{{Index: 0, Connected: true, Buttons: []bool{false, false}}}

	// First sight of the device is a baseline; nothing qualifies yet.
	_, ok := c.Poll(states)
	require.False(t, ok)

	states[0].Buttons[1] = true
	res, ok := c.Poll(states)
	require.True(t, ok)
	assert.Equal(t, config.KindDeviceButton, res.Kind)
	assert.Equal(t, "0:1", res.Code)
	assert.Equal(t, "pad 0 button 1", res.Label)
	assert.Equal(t, 0, res.Device)
	assert.Equal(t, 1, res.Control)
}

func TestCapture_DeviceAxis(t *testing.T) {
	c := NewCapture()
	states := []DeviceState{{Index: 1, Connected: true, Axes: []float64{0}}}

	_, ok := c.Poll(states)
	require.False(t, ok)

	states[0].Axes[0] = -0.9
	res, ok := c.Poll(states)
	require.True(t, ok)
	assert.Equal(t, config.KindDeviceAxis, res.Kind)
	assert.Equal(t, "1:0-", res.Code)
	assert.Equal(t, "pad 1 axis 0 -", res.Label)
	assert.Equal(t, -1, res.Direction)
}

// A control already held when capture begins must not qualify; only a
// fresh press does.
func TestCapture_HeldControlDoesNotQualify(t *testing.T) {
	c := NewCapture()
	states := []DeviceState{{Index: 0, Connected: true, Buttons: []bool{true}}}

	_, ok := c.Poll(states)
	require.False(t, ok)
	_, ok = c.Poll(states)
	require.False(t, ok, "held since before capture: never qualifies")

	states[0].Buttons[0] = false
	_, ok = c.Poll(states)
	require.False(t, ok)

	states[0].Buttons[0] = true
	res, ok := c.Poll(states)
	require.True(t, ok)
	assert.Equal(t, "0:0", res.Code)
}
