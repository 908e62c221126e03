package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/climate-guardian/climate-guardian-api/internal/batch"
	"github.com/climate-guardian/climate-guardian-api/internal/cache"
	"github.com/climate-guardian/climate-guardian-api/internal/geometry"
	"github.com/climate-guardian/climate-guardian-api/internal/grid"
	"github.com/climate-guardian/climate-guardian-api/internal/trigger"
)

// Verdicts are cached for a day: archive grids are immutable once
// published, but recent ranges can still be backfilled upstream.
const verdictCacheAge = 24 * time.Hour

// EvaluateLocation answers a single trigger question for one footprint,
// returning either a result or a typed error.
func EvaluateLocation(ctx context.Context, spec trigger.Spec, descriptor geometry.Descriptor, extractor grid.Extractor) (*trigger.Result, error) {
	verdictCache := cache.NewFileCache[trigger.Result]("triggers", verdictCacheAge)
	cacheKey := verdictCache.GenerateKey(
		spec.Variable, spec.Source, spec.Threshold, spec.Direction, spec.MinConsecutiveDays,
		spec.StartDate.Format("2006-01-02"), spec.EndDate.Format("2006-01-02"),
		descriptor.Describe(),
	)
	if cached, ok := verdictCache.Get(cacheKey); ok {
		fmt.Println("Trigger verdict served from cache")
		return &cached, nil
	}

	result, err := batch.Evaluate(ctx, spec, descriptor, extractor)
	if err != nil {
		return nil, err
	}

	if err := verdictCache.Set(cacheKey, *result); err != nil {
		fmt.Printf("Failed to cache trigger verdict: %v\n", err)
	}
	return result, nil
}
