package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_ValidConfig(t *testing.T) {
	raw := []byte(`{
		"timeLimitSeconds": 120,
		"rewardCeiling": 500,
		"startingBalance": 0,
		"continueAfterCeiling": false,
		"inputs": [
			{
				"id": "lever",
				"kind": "screen",
				"screen": {"shape": "circle", "color": "#ff0000"},
				"reward": {"rewarded": true, "amount": 5, "every": 1, "sound": true}
			},
			{
				"id": "space",
				"kind": "keyboard",
				"binding": {"code": "Space", "label": "Space"},
				"reward": {"rewarded": true, "amount": 2, "every": 3, "sound": false}
			}
		]
	}`)

	errs := Validate(raw)
	assert.Empty(t, errs, "valid config should have no errors")
}

func TestValidate_MalformedJSON(t *testing.T) {
	errs := Validate([]byte(`{not json`))
	require.Len(t, errs, 1)
	assert.Equal(t, ErrMalformedJSON, errs[0].Code)
}

func TestValidate_WrongTypes(t *testing.T) {
	raw := []byte(`{
		"timeLimitSeconds": "sixty",
		"inputs": [{"id": "a", "kind": "screen"}]
	}`)

	errs := Validate(raw)
	require.NotEmpty(t, errs)
	assert.Contains(t, codes(errs), ErrSchemaViolation)
}

func TestValidate_BadKind(t *testing.T) {
	raw := []byte(`{
		"inputs": [{"id": "a", "kind": "telepathy"}]
	}`)

	errs := Validate(raw)
	require.NotEmpty(t, errs)
	assert.Contains(t, codes(errs), ErrSchemaViolation)
}

func TestValidate_NonPositiveLimits(t *testing.T) {
	raw := []byte(`{
		"timeLimitSeconds": 0,
		"rewardCeiling": -5,
		"inputs": [{"id": "a", "kind": "screen"}]
	}`)

	errs := Validate(raw)
	require.NotEmpty(t, errs)
	for _, e := range errs {
		assert.Equal(t, ErrSchemaViolation, e.Code)
	}
}

func TestValidate_EmptyInputs(t *testing.T) {
	errs := Validate([]byte(`{"inputs": []}`))
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNoInputs, errs[0].Code)
	assert.Equal(t, "inputs", errs[0].Field)
}

func TestValidate_DuplicateInputIDs(t *testing.T) {
	raw := []byte(`{
		"inputs": [
			{"id": "a", "kind": "screen"},
			{"id": "a", "kind": "screen"}
		]
	}`)

	errs := Validate(raw)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateInputID, errs[0].Code)
	assert.Equal(t, "inputs[1].id", errs[0].Field)
}

func TestValidate_PhysicalInputWithoutBinding(t *testing.T) {
	raw := []byte(`{
		"inputs": [{"id": "pad", "kind": "device-button"}]
	}`)

	errs := Validate(raw)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrMissingBinding, errs[0].Code)
}

func TestValidate_KeyboardWithoutCode(t *testing.T) {
	raw := []byte(`{
		"inputs": [{"id": "kb", "kind": "keyboard", "binding": {"label": "?"}}]
	}`)

	errs := Validate(raw)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrKeyboardNoCode, errs[0].Code)
}

func TestValidate_UnknownFieldRejected(t *testing.T) {
	raw := []byte(`{
		"inputs": [{"id": "a", "kind": "screen"}],
		"legacyField": true
	}`)

	errs := Validate(raw)
	require.NotEmpty(t, errs)
	assert.Contains(t, codes(errs), ErrSchemaViolation)
}

func TestValidationError_Format(t *testing.T) {
	e := ValidationError{Field: "inputs[0].id", Message: "boom", Code: "E103"}
	assert.Equal(t, "[E103] inputs[0].id: boom", e.Error())

	e = ValidationError{Message: "boom", Code: "E100"}
	assert.Equal(t, "[E100] boom", e.Error())
}
