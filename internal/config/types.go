package config

// InputKind distinguishes the four activation-target variants.
//
// Screen inputs are rendered and activated by the presentation layer.
// Keyboard and device kinds are physical: the input multiplexer translates
// raw key codes and polled device state into activations.
type InputKind string

const (
	KindScreen       InputKind = "screen"
	KindKeyboard     InputKind = "keyboard"
	KindDeviceButton InputKind = "device-button"
	KindDeviceAxis   InputKind = "device-axis"
)

// ShapeHidden marks a screen input that is configured but not interactable.
// A hidden input never produces activations and never pays out, even if its
// reward parameters say otherwise.
const ShapeHidden = "hidden"

// ScreenParams holds presentation attributes. Only meaningful for
// KindScreen inputs.
type ScreenParams struct {
	Shape string `json:"shape,omitempty"`
	Color string `json:"color,omitempty"`
}

// BindingParams holds physical-source attributes. Only meaningful for
// keyboard and device kinds.
//
// Keyboard inputs use Code (the raw key code) and Label. Device inputs use
// Device (device index) and Control (button or axis index); axis inputs
// additionally use Direction (+1 or -1) because each axis is split into two
// independent logical controls.
type BindingParams struct {
	Code      string `json:"code,omitempty"`
	Label     string `json:"label,omitempty"`
	Device    int    `json:"device,omitempty"`
	Control   int    `json:"control,omitempty"`
	Direction int    `json:"direction,omitempty"`
}

// RewardParams is the reward-attribute subset shared by every input kind.
//
// Amount is in integer minor currency units (e.g. cents). Every is the
// number of activations required per payout (a fixed-ratio schedule) and is
// always >= 1 after normalization.
type RewardParams struct {
	Rewarded bool  `json:"rewarded"`
	Amount   int64 `json:"amount"`
	Every    int   `json:"every"`
	Sound    bool  `json:"sound"`
}

// Input is one configured activation target.
//
// The kind-specific payloads are pointers so a marshaled Input only carries
// the section that applies to its kind.
type Input struct {
	ID      string         `json:"id"`
	Name    string         `json:"name,omitempty"`
	Kind    InputKind      `json:"kind"`
	Screen  *ScreenParams  `json:"screen,omitempty"`
	Binding *BindingParams `json:"binding,omitempty"`
	Reward  RewardParams   `json:"reward"`
}

// Interactable reports whether the input can produce activations at all.
// Hidden screen inputs are configured but inert.
func (in Input) Interactable() bool {
	return !(in.Kind == KindScreen && in.Screen != nil && in.Screen.Shape == ShapeHidden)
}

// Physical reports whether the input is fed by the multiplexer rather than
// the presentation layer.
func (in Input) Physical() bool {
	return in.Kind == KindKeyboard || in.Kind == KindDeviceButton || in.Kind == KindDeviceAxis
}

// SessionConfig is the canonical, version-free configuration every engine
// component operates on. Produced exactly once per session by Normalize and
// immutable afterwards.
type SessionConfig struct {
	TimeLimitSeconds     int     `json:"timeLimitSeconds"`
	RewardCeiling        int64   `json:"rewardCeiling"`
	StartingBalance      int64   `json:"startingBalance"`
	ContinueAfterCeiling bool    `json:"continueAfterCeiling"`
	Inputs               []Input `json:"inputs"`
}

// Input returns the configured input with the given ID, if any.
func (c SessionConfig) Input(id string) (Input, bool) {
	for _, in := range c.Inputs {
		if in.ID == id {
			return in, true
		}
	}
	return Input{}, false
}

// PhysicalInputs returns the inputs the multiplexer is responsible for.
func (c SessionConfig) PhysicalInputs() []Input {
	var out []Input
	for _, in := range c.Inputs {
		if in.Physical() {
			out = append(out, in)
		}
	}
	return out
}
