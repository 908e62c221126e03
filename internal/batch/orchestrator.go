package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/climate-guardian/climate-guardian-api/internal/geometry"
	"github.com/climate-guardian/climate-guardian-api/internal/grid"
	"github.com/climate-guardian/climate-guardian-api/internal/trigger"
	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"
)

const defaultWorkers = 8

// Location is one named footprint in a batch request.
type Location struct {
	ID       string
	Geometry geometry.Descriptor
}

// Row is the per-location outcome: either a trigger result or the reason
// the location failed. Rows are independent; one bad location never fails
// its siblings.
type Row struct {
	LocationID  string
	Geometry    geometry.Descriptor
	Result      *trigger.Result
	ErrorReason string
}

// Run evaluates the spec over every location, fanning out across a bounded
// worker pool. Output rows preserve input order regardless of completion
// order. Spec validation and an empty input abort the whole batch; every
// per-location failure is recovered into its row. When the context is
// cancelled, locations that never started are omitted rather than reported
// as errors.
func Run(ctx context.Context, locations []Location, spec trigger.Spec, extractor grid.Extractor, workers int) ([]Row, error) {
	if len(locations) == 0 {
		return nil, &trigger.ValidationError{Reason: "no locations provided"}
	}
	if _, err := spec.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = defaultWorkers
	}

	rows := make([]Row, len(locations))
	completed := make([]bool, len(locations))

	var (
		mu          sync.Mutex
		successes   int
		failures    int
		progressBar = progressbar.Default(int64(len(locations)), "Evaluating triggers")
	)

	wp := workerpool.New(workers)
	for i, location := range locations {
		i, location := i, location
		wp.Submit(func() {
			if ctx.Err() != nil {
				return
			}

			row := Row{LocationID: location.ID, Geometry: location.Geometry}
			result, err := Evaluate(ctx, spec, location.Geometry, extractor)
			if err != nil {
				if ctx.Err() != nil {
					// Abandoned mid-flight: drop the row instead of
					// reporting a cancellation as a location failure.
					return
				}
				row.ErrorReason = err.Error()
			} else {
				row.Result = result
			}

			mu.Lock()
			rows[i] = row
			completed[i] = true
			if row.ErrorReason != "" {
				failures++
			} else {
				successes++
			}
			progressBar.Add(1)
			mu.Unlock()
		})
	}
	wp.StopWait()
	progressBar.Finish()

	out := make([]Row, 0, len(locations))
	for i := range rows {
		if completed[i] {
			out = append(out, rows[i])
		}
	}

	fmt.Printf("Batch finished: %d succeeded, %d failed, %d skipped\n", successes, failures, len(locations)-len(out))
	return out, nil
}
