package series

import (
	"errors"
	"time"

	"github.com/climate-guardian/climate-guardian-api/internal/geometry"
	"github.com/climate-guardian/climate-guardian-api/internal/grid"
	"github.com/climate-guardian/climate-guardian-api/internal/trigger"
)

// Provider fetches the raw grid for one calendar day. It returns
// grid.ErrMissingGrid when the archive does not cover the date.
type Provider func(date time.Time) (*grid.Grid, error)

// DateRange expands an inclusive date range into one entry per calendar
// day, normalized to UTC midnight.
func DateRange(start, end time.Time) []time.Time {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Reduce builds the daily scalar series for one footprint. Every requested
// date gets exactly one entry: a missing grid or an empty reduction becomes
// a missing day, never a dropped one. Hard provider failures abort the
// series as a DataAccessError; a polygon footprint that never covers a
// valid cell over the whole range aborts as GeometryNoDataError.
func Reduce(dates []time.Time, provider Provider, plan geometry.ReductionPlan) (trigger.Series, error) {
	out := make(trigger.Series, 0, len(dates))
	noCellDays := 0
	valuedDays := 0

	for _, date := range dates {
		g, err := provider(date)
		if err != nil {
			if errors.Is(err, grid.ErrMissingGrid) {
				out = append(out, trigger.DailyObservation{Date: date, Missing: true})
				continue
			}
			var accessErr *grid.DataAccessError
			if errors.As(err, &accessErr) {
				return nil, err
			}
			return nil, &grid.DataAccessError{Date: date, Err: err}
		}

		reduction, err := plan.Reduce(g)
		if err != nil {
			return nil, err
		}
		if reduction.CellCount == 0 {
			noCellDays++
			out = append(out, trigger.DailyObservation{Date: date, Missing: true})
			continue
		}

		valuedDays++
		out = append(out, trigger.DailyObservation{Date: date, Value: reduction.Value})
	}

	if _, isPolygon := plan.Descriptor().(geometry.Polygon); isPolygon {
		if valuedDays == 0 && noCellDays > 0 {
			return nil, &trigger.GeometryNoDataError{Days: len(dates)}
		}
	}

	return out, nil
}
