package trigger

import "fmt"

// InvalidDirectionError is returned when a caller explicitly requests a
// direction that contradicts a fixed-direction variable family.
type InvalidDirectionError struct {
	Variable  VariableFamily
	Requested Direction
	Fixed     Direction
}

func (e *InvalidDirectionError) Error() string {
	return fmt.Sprintf("variable %s only triggers %s, cannot use direction %s", e.Variable, e.Fixed, e.Requested)
}

// ValidationError is returned for a malformed trigger spec or batch input
// before any extraction work starts.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid trigger request: " + e.Reason
}

// OutOfBoundsError is returned when a point geometry falls outside the
// spatial envelope of the dataset.
type OutOfBoundsError struct {
	Lat float64
	Lon float64
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("point (%f, %f) is outside the dataset envelope", e.Lat, e.Lon)
}

// GeometryNoDataError is returned when a footprint overlaps zero valid grid
// cells for every timestep of the requested range.
type GeometryNoDataError struct {
	Days int
}

func (e *GeometryNoDataError) Error() string {
	return fmt.Sprintf("geometry covers no valid grid cells over all %d requested days", e.Days)
}
