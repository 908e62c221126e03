package trigger

import "time"

// Spec is one trigger definition: which variable crossed which threshold,
// in which direction, for how many consecutive days, over which date range.
// The range is inclusive on both ends. Direction may be left empty; see
// ResolveDirection for how it is filled in per variable family.
type Spec struct {
	Variable           VariableFamily
	Source             string
	Threshold          float64
	Direction          Direction
	MinConsecutiveDays int
	StartDate          time.Time
	EndDate            time.Time
}

// Validate checks the spec and resolves its effective direction. It runs
// before any extraction, so a bad spec never costs a grid request.
func (s Spec) Validate() (Direction, error) {
	if s.Source == "" {
		return "", &ValidationError{Reason: "source is required"}
	}
	if s.MinConsecutiveDays < 1 {
		return "", &ValidationError{Reason: "min consecutive days must be at least 1"}
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return "", &ValidationError{Reason: "start and end dates are required"}
	}
	if s.EndDate.Before(s.StartDate) {
		return "", &ValidationError{Reason: "end date is before start date"}
	}
	return ResolveDirection(s.Variable, s.Direction)
}
