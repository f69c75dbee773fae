// Package schema validates current-format session configs against an
// embedded CUE schema plus semantic rules CUE cannot express.
//
// Validation is strict where normalization is forgiving: the normalizer
// accepts any bytes and fills gaps with defaults, while Validate reports
// every violation so config authors can fix their files. Only the current
// format is validated; legacy configs go through the normalizer unchecked.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/mweller/operant/internal/config"
)

//go:embed schema.cue
var schemaCUE string

// Validation error codes (E100-E199)
const (
	ErrMalformedJSON   = "E100" // input is not valid JSON
	ErrSchemaViolation = "E101" // structural mismatch against the CUE schema

	ErrNoInputs         = "E102" // inputs array missing or empty
	ErrDuplicateInputID = "E103" // two inputs share an id

	ErrMissingBinding = "E110" // physical input without a binding section
	ErrKeyboardNoCode = "E111" // keyboard input without a key code
)

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Validate checks a current-format config document.
// Returns all errors found (does not fail-fast).
func Validate(raw []byte) []ValidationError {
	expr, err := cuejson.Extract("config.json", raw)
	if err != nil {
		return []ValidationError{{
			Field:   "",
			Message: err.Error(),
			Code:    ErrMalformedJSON,
		}}
	}

	ctx := cuecontext.New()
	schemaVal := ctx.CompileString(schemaCUE)
	def := schemaVal.LookupPath(cue.ParsePath("#Session"))
	doc := ctx.BuildExpr(expr)

	var errs []ValidationError
	if err := def.Unify(doc).Validate(); err != nil {
		errs = append(errs, cueErrors(err)...)
	}

	errs = append(errs, validateSemantics(raw)...)
	return errs
}

// cueErrors flattens a CUE error list into validation errors with field
// paths.
func cueErrors(err error) []ValidationError {
	var out []ValidationError
	for _, e := range errors.Errors(err) {
		out = append(out, ValidationError{
			Field:   strings.Join(e.Path(), "."),
			Message: e.Error(),
			Code:    ErrSchemaViolation,
		})
	}
	return out
}

// validateSemantics checks the cross-field rules the structural schema
// cannot carry: input-set shape and kind-specific required sections.
func validateSemantics(raw []byte) []ValidationError {
	var cfg config.SessionConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		// Structural errors already reported by the CUE pass.
		return nil
	}

	var errs []ValidationError

	if len(cfg.Inputs) == 0 {
		errs = append(errs, ValidationError{
			Field:   "inputs",
			Message: "at least one input is required",
			Code:    ErrNoInputs,
		})
	}

	seen := make(map[string]bool)
	for i, in := range cfg.Inputs {
		if in.ID != "" {
			if seen[in.ID] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("inputs[%d].id", i),
					Message: fmt.Sprintf("duplicate input id: %q", in.ID),
					Code:    ErrDuplicateInputID,
				})
			}
			seen[in.ID] = true
		}

		if in.Physical() && in.Binding == nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("inputs[%d].binding", i),
				Message: fmt.Sprintf("%s input requires a binding section", in.Kind),
				Code:    ErrMissingBinding,
			})
			continue
		}

		if in.Kind == config.KindKeyboard && in.Binding.Code == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("inputs[%d].binding.code", i),
				Message: "keyboard input requires a key code",
				Code:    ErrKeyboardNoCode,
			})
		}
	}

	return errs
}
