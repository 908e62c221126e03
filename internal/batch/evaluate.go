package batch

import (
	"context"
	"time"

	"github.com/climate-guardian/climate-guardian-api/internal/geometry"
	"github.com/climate-guardian/climate-guardian-api/internal/grid"
	"github.com/climate-guardian/climate-guardian-api/internal/series"
	"github.com/climate-guardian/climate-guardian-api/internal/trigger"
)

// Evaluate runs the full trigger pipeline for a single footprint:
// direction policy, reduction plan, daily series, run detection.
func Evaluate(ctx context.Context, spec trigger.Spec, descriptor geometry.Descriptor, extractor grid.Extractor) (*trigger.Result, error) {
	direction, err := spec.Validate()
	if err != nil {
		return nil, err
	}

	plan, err := geometry.BuildReduction(descriptor)
	if err != nil {
		return nil, err
	}

	dates := series.DateRange(spec.StartDate, spec.EndDate)
	provider := func(date time.Time) (*grid.Grid, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return extractor.GetGrid(ctx, string(spec.Variable), spec.Source, date)
	}

	daily, err := series.Reduce(dates, provider, plan)
	if err != nil {
		return nil, err
	}

	result := trigger.Detect(daily, spec.Threshold, direction, spec.MinConsecutiveDays)
	return &result, nil
}
