package harness

import "fmt"

// evaluateExpectations checks the expect clause against the replayed
// summary and records every mismatch (does not fail-fast).
func evaluateExpectations(expect *ExpectClause, result *Result) {
	if expect == nil {
		return
	}
	s := result.Summary

	if expect.EndCause != "" && s.EndCause != expect.EndCause {
		result.addError(fmt.Sprintf("end_cause = %q, expected %q", s.EndCause, expect.EndCause))
	}
	if expect.Balance != nil && s.Balance != *expect.Balance {
		result.addError(fmt.Sprintf("balance = %d, expected %d", s.Balance, *expect.Balance))
	}
	if expect.CeilingReached != nil && s.CeilingReached != *expect.CeilingReached {
		result.addError(fmt.Sprintf("ceiling_reached = %v, expected %v", s.CeilingReached, *expect.CeilingReached))
	}
	if expect.TimeExpired != nil && s.TimeExpired != *expect.TimeExpired {
		result.addError(fmt.Sprintf("time_expired = %v, expected %v", s.TimeExpired, *expect.TimeExpired))
	}
	if expect.TotalActivations != nil && s.TotalActivations != *expect.TotalActivations {
		result.addError(fmt.Sprintf("total_activations = %d, expected %d", s.TotalActivations, *expect.TotalActivations))
	}
	if expect.Ended != nil && s.Ended != *expect.Ended {
		result.addError(fmt.Sprintf("ended = %v, expected %v", s.Ended, *expect.Ended))
	}
	for id, want := range expect.Counts {
		if got := s.ActivationCounts[id]; got != want {
			result.addError(fmt.Sprintf("counts[%s] = %d, expected %d", id, got, want))
		}
	}
}

func (r *Result) addError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}
