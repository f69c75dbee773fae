package input

import (
	"fmt"

	"github.com/mweller/operant/internal/config"
)

// CaptureResult describes the first qualifying input observed in capture
// mode: its kind, raw code, and a human-readable label, plus the device
// coordinates for device kinds.
type CaptureResult struct {
	Kind      config.InputKind
	Code      string
	Label     string
	Device    int
	Control   int
	Direction int
}

// Capture is the rebinding capture mode used by configuration authoring.
//
// It listens for the first qualifying input from any source and reports it.
// Capture is mutually exclusive with normal multiplexing: callers disable
// the Mux (SetEnabled(false)) while a Capture is live, so a candidate press
// never leaks into a running session.
//
// Device observation uses the same edge discipline as the Poller: every
// device seen for the first time is baselined before it may fire, so a
// control held before capture started does not qualify.
type Capture struct {
	prev      map[controlKey]bool
	connected map[int]bool
}

// NewCapture creates an idle capture listener.
func NewCapture() *Capture {
	return &Capture{
		prev:      make(map[controlKey]bool),
		connected: make(map[int]bool),
	}
}

// HandleKeyDown reports a key press as the captured binding. Any key
// qualifies.
func (c *Capture) HandleKeyDown(code string) CaptureResult {
	return CaptureResult{
		Kind:  config.KindKeyboard,
		Code:  code,
		Label: code,
	}
}

// Poll samples all connected devices and returns the first control that
// crosses from inactive to active. The second return value is false until
// something qualifies.
func (c *Capture) Poll(states []DeviceState) (CaptureResult, bool) {
	present := make(map[int]DeviceState, len(states))
	for _, st := range states {
		if st.Connected {
			present[st.Index] = st
		}
	}

	var hit *CaptureResult
	for idx, st := range present {
		fresh := !c.connected[idx]
		for control := range st.Buttons {
			key := controlKey{idx, control, 0}
			cur := st.Buttons[control]
			if !fresh && hit == nil && cur && !c.prev[key] {
				hit = &CaptureResult{
					Kind:    config.KindDeviceButton,
					Code:    fmt.Sprintf("%d:%d", idx, control),
					Label:   fmt.Sprintf("pad %d button %d", idx, control),
					Device:  idx,
					Control: control,
				}
			}
			c.prev[key] = cur
		}
		for control := range st.Axes {
			for _, dir := range []int{1, -1} {
				key := controlKey{idx, control, dir}
				cur := controlActive(st, key)
				if !fresh && hit == nil && cur && !c.prev[key] {
					sign := "+"
					if dir < 0 {
						sign = "-"
					}
					hit = &CaptureResult{
						Kind:      config.KindDeviceAxis,
						Code:      fmt.Sprintf("%d:%d%s", idx, control, sign),
						Label:     fmt.Sprintf("pad %d axis %d %s", idx, control, sign),
						Device:    idx,
						Control:   control,
						Direction: dir,
					}
				}
				c.prev[key] = cur
			}
		}
	}

	for idx := range c.connected {
		delete(c.connected, idx)
	}
	for idx := range present {
		c.connected[idx] = true
	}

	if hit == nil {
		return CaptureResult{}, false
	}
	return *hit, true
}
