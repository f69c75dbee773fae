package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one scripted session run.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is the raw config document, in any format the normalizer
	// accepts (current or legacy).
	Config string `yaml:"config"`

	// Steps is the scripted input sequence.
	Steps []Step `yaml:"steps"`

	// Expect validates the replayed outcome. Optional; golden-only
	// scenarios may omit it.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// Step is one scripted action. Exactly one field should be set.
type Step struct {
	// Activate submits an activation for the named input.
	Activate string `yaml:"activate,omitempty"`

	// AdvanceMS moves the session clock forward. Crossing the configured
	// time limit fires the time trigger.
	AdvanceMS int `yaml:"advance_ms,omitempty"`
}

// ExpectClause specifies the expected terminal state, as reconstructed from
// the event log. Only set fields are checked; Counts is a subset match.
type ExpectClause struct {
	EndCause         string           `yaml:"end_cause,omitempty"`
	Balance          *int64           `yaml:"balance,omitempty"`
	CeilingReached   *bool            `yaml:"ceiling_reached,omitempty"`
	TimeExpired      *bool            `yaml:"time_expired,omitempty"`
	TotalActivations *int64           `yaml:"total_activations,omitempty"`
	Ended            *bool            `yaml:"ended,omitempty"`
	Counts           map[string]int64 `yaml:"counts,omitempty"`
}

// LoadScenario reads and validates a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Config == "" {
		return fmt.Errorf("config is required")
	}
	for i, step := range s.Steps {
		hasActivate := step.Activate != ""
		hasAdvance := step.AdvanceMS != 0
		if hasActivate == hasAdvance {
			return fmt.Errorf("steps[%d]: exactly one of activate or advance_ms is required", i)
		}
		if step.AdvanceMS < 0 {
			return fmt.Errorf("steps[%d]: advance_ms must be positive", i)
		}
	}
	return nil
}
