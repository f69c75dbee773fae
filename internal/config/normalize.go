// Package config normalizes stored session configurations.
//
// Configurations arrive as raw JSON in one of two shapes: the current schema
// (an explicit "inputs" array) or the legacy triple-fixed-button schema
// (three hardcoded screen positions plus an optional external-inputs list).
// Normalize is the only code in the repository that understands both; every
// other component consumes the canonical SessionConfig it produces.
//
// Normalization never fails. Missing or malformed fields resolve to
// documented defaults, numeric-looking strings are coerced best-effort, and
// unknown fields are ignored. A structurally empty object yields the
// all-defaults configuration with a single default screen input.
package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Field defaults applied by Normalize.
const (
	// DefaultTimeLimitSeconds is used when the stored time limit is absent
	// or not a positive number.
	DefaultTimeLimitSeconds = 60

	// DefaultRewardCeiling is effectively unlimited: sessions without a
	// configured ceiling end by time limit only.
	DefaultRewardCeiling int64 = math.MaxInt32

	// DefaultEvery is the fixed-ratio schedule used when the configured
	// activations-per-reward is absent or not a positive integer.
	DefaultEvery = 1

	// DefaultShape is the screen shape used when none is configured.
	DefaultShape = "circle"
)

// legacyPositions are the three hardcoded button slots of the legacy schema,
// in declaration order. The legacy "activeButton" marker names one of them.
var legacyPositions = []string{"primary", "secondary", "tertiary"}

// Normalize converts a raw stored configuration object into the canonical
// SessionConfig. The shape is detected by the presence of an "inputs" array;
// anything else is treated as the legacy triple-fixed-button schema.
func Normalize(raw []byte) SessionConfig {
	doc := gjson.ParseBytes(raw)
	if doc.Get("inputs").IsArray() {
		return fromCurrent(doc)
	}
	return fromLegacy(doc)
}

func fromCurrent(doc gjson.Result) SessionConfig {
	cfg := SessionConfig{
		TimeLimitSeconds:     positive(intField(doc, "timeLimitSeconds", DefaultTimeLimitSeconds), DefaultTimeLimitSeconds),
		RewardCeiling:        nonNegative64(int64Field(doc, "rewardCeiling", DefaultRewardCeiling), DefaultRewardCeiling),
		StartingBalance:      nonNegative64(int64Field(doc, "startingBalance", 0), 0),
		ContinueAfterCeiling: boolField(doc, "continueAfterCeiling", false),
	}

	i := 0
	doc.Get("inputs").ForEach(func(_, item gjson.Result) bool {
		cfg.Inputs = append(cfg.Inputs, currentInput(item, i))
		i++
		return true
	})

	if len(cfg.Inputs) == 0 {
		cfg.Inputs = []Input{defaultScreenInput()}
	}
	return cfg
}

func currentInput(item gjson.Result, idx int) Input {
	in := Input{
		ID:     strField(item, "id", fmt.Sprintf("input-%d", idx+1)),
		Name:   strField(item, "name", ""),
		Kind:   inputKind(strField(item, "kind", string(KindScreen))),
		Reward: rewardParams(item.Get("reward")),
	}

	switch in.Kind {
	case KindScreen:
		in.Screen = &ScreenParams{
			Shape: strField(item, "screen.shape", DefaultShape),
			Color: strField(item, "screen.color", ""),
		}
	case KindKeyboard:
		in.Binding = &BindingParams{
			Code:  strField(item, "binding.code", ""),
			Label: strField(item, "binding.label", ""),
		}
	case KindDeviceButton, KindDeviceAxis:
		in.Binding = &BindingParams{
			Code:    strField(item, "binding.code", ""),
			Label:   strField(item, "binding.label", ""),
			Device:  int(nonNegative64(int64Field(item, "binding.device", 0), 0)),
			Control: int(nonNegative64(int64Field(item, "binding.control", 0), 0)),
		}
		if in.Kind == KindDeviceAxis {
			in.Binding.Direction = axisDirection(int(int64Field(item, "binding.direction", 1)))
		}
	}
	return in
}

// fromLegacy synthesizes the canonical shape from the legacy triple
// fixed-button schema. Exactly the position named by "activeButton" becomes
// rewarded (or none, when the marker is absent or a disabled sentinel); the
// other positions get an inert default reward triple so downstream code can
// rely on every input carrying reward fields.
func fromLegacy(doc gjson.Result) SessionConfig {
	cfg := SessionConfig{
		TimeLimitSeconds:     positive(intField(doc, "sessionTime", DefaultTimeLimitSeconds), DefaultTimeLimitSeconds),
		RewardCeiling:        nonNegative64(int64Field(doc, "maxReward", DefaultRewardCeiling), DefaultRewardCeiling),
		StartingBalance:      nonNegative64(int64Field(doc, "startBalance", 0), 0),
		ContinueAfterCeiling: boolField(doc, "continueAfterMax", false),
	}

	active := legacyActivePosition(doc)
	for _, pos := range legacyPositions {
		in := Input{
			ID:   pos,
			Name: pos,
			Kind: KindScreen,
			Screen: &ScreenParams{
				Shape: strField(doc, pos+"Shape", DefaultShape),
				Color: strField(doc, pos+"Color", ""),
			},
			Reward: RewardParams{Every: DefaultEvery},
		}
		if pos == active {
			in.Reward = RewardParams{
				Rewarded: true,
				Amount:   nonNegative64(int64Field(doc, "rewardAmount", 0), 0),
				Every:    positive(intField(doc, "clicksPerReward", DefaultEvery), DefaultEvery),
				Sound:    boolField(doc, "rewardSound", false),
			}
		}
		cfg.Inputs = append(cfg.Inputs, in)
	}

	i := 0
	doc.Get("externalInputs").ForEach(func(_, item gjson.Result) bool {
		cfg.Inputs = append(cfg.Inputs, legacyExternalInput(item, i))
		i++
		return true
	})

	return cfg
}

// legacyActivePosition resolves the legacy "activeButton" marker. Null,
// absence, and the disabled sentinels all mean no rewarded position.
func legacyActivePosition(doc gjson.Result) string {
	v := strings.ToLower(strings.TrimSpace(strField(doc, "activeButton", "")))
	for _, pos := range legacyPositions {
		if v == pos {
			return pos
		}
	}
	return ""
}

func legacyExternalInput(item gjson.Result, idx int) Input {
	kind := legacyExternalKind(strField(item, "type", ""))
	in := Input{
		ID:   strField(item, "id", fmt.Sprintf("ext-%d", idx+1)),
		Name: strField(item, "label", ""),
		Kind: kind,
		Binding: &BindingParams{
			Code:    strField(item, "code", ""),
			Label:   strField(item, "label", ""),
			Device:  int(nonNegative64(int64Field(item, "device", 0), 0)),
			Control: int(nonNegative64(int64Field(item, "control", 0), 0)),
		},
		Reward: RewardParams{
			Rewarded: boolField(item, "active", false),
			Amount:   nonNegative64(int64Field(item, "rewardAmount", 0), 0),
			Every:    positive(intField(item, "clicksPerReward", DefaultEvery), DefaultEvery),
			Sound:    boolField(item, "rewardSound", false),
		},
	}
	if kind == KindDeviceAxis {
		in.Binding.Direction = axisDirection(int(int64Field(item, "direction", 1)))
	}
	return in
}

func legacyExternalKind(t string) InputKind {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "gamepad-button", "button":
		return KindDeviceButton
	case "gamepad-axis", "axis":
		return KindDeviceAxis
	default:
		return KindKeyboard
	}
}

func inputKind(s string) InputKind {
	switch InputKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindKeyboard:
		return KindKeyboard
	case KindDeviceButton:
		return KindDeviceButton
	case KindDeviceAxis:
		return KindDeviceAxis
	default:
		return KindScreen
	}
}

func rewardParams(v gjson.Result) RewardParams {
	return RewardParams{
		Rewarded: boolField(v, "rewarded", false),
		Amount:   nonNegative64(int64Field(v, "amount", 0), 0),
		Every:    positive(intField(v, "every", DefaultEvery), DefaultEvery),
		Sound:    boolField(v, "sound", false),
	}
}

func defaultScreenInput() Input {
	return Input{
		ID:     "primary",
		Name:   "primary",
		Kind:   KindScreen,
		Screen: &ScreenParams{Shape: DefaultShape},
		Reward: RewardParams{Every: DefaultEvery},
	}
}

// axisDirection normalizes an axis direction to +1 or -1.
func axisDirection(d int) int {
	if d < 0 {
		return -1
	}
	return 1
}

// int64Field reads an integer field with best-effort coercion. Numeric
// strings are parsed; parse failure falls back to the default, never to a
// silent zero.
func int64Field(doc gjson.Result, path string, def int64) int64 {
	res := doc.Get(path)
	switch res.Type {
	case gjson.Number:
		return int64(res.Num)
	case gjson.String:
		s := strings.TrimSpace(res.Str)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f)
		}
		return def
	default:
		return def
	}
}

func intField(doc gjson.Result, path string, def int) int {
	return int(int64Field(doc, path, int64(def)))
}

func boolField(doc gjson.Result, path string, def bool) bool {
	res := doc.Get(path)
	switch res.Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.String:
		if b, err := strconv.ParseBool(strings.TrimSpace(res.Str)); err == nil {
			return b
		}
		return def
	default:
		return def
	}
}

func strField(doc gjson.Result, path, def string) string {
	res := doc.Get(path)
	if res.Type == gjson.String {
		return res.Str
	}
	return def
}

func positive(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func nonNegative64(n, def int64) int64 {
	if n < 0 {
		return def
	}
	return n
}
