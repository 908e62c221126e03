package trigger

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dailySeries builds a series starting at start with one value per day.
// NaN marks a missing day.
func dailySeries(start time.Time, values []float64) Series {
	series := make(Series, 0, len(values))
	for i, value := range values {
		obs := DailyObservation{Date: start.AddDate(0, 0, i)}
		if math.IsNaN(value) {
			obs.Missing = true
		} else {
			obs.Value = value
		}
		series = append(series, obs)
	}
	return series
}

func day(start time.Time, offset int) time.Time {
	return start.AddDate(0, 0, offset)
}

func TestDetect(t *testing.T) {
	start := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)
	missing := math.NaN()

	t.Run("precipitation threshold crossings", func(t *testing.T) {
		series := dailySeries(start, []float64{10, 70, 80, 5, 65})
		result := Detect(series, 60.0, DirectionAbove, 1)

		require.True(t, result.Triggered)
		require.Len(t, result.Runs, 2)

		assert.Equal(t, day(start, 1), result.Runs[0].Start)
		assert.Equal(t, day(start, 2), result.Runs[0].End)
		assert.Equal(t, 2, result.Runs[0].LengthDays)
		assert.Equal(t, 80.0, result.Runs[0].PeakValue)

		assert.Equal(t, day(start, 4), result.Runs[1].Start)
		assert.Equal(t, day(start, 4), result.Runs[1].End)
		assert.Equal(t, 1, result.Runs[1].LengthDays)
		assert.Equal(t, 65.0, result.Runs[1].PeakValue)

		assert.Equal(t, 3, result.TotalTriggerDays)
		require.NotNil(t, result.FirstTriggerDate)
		assert.Equal(t, day(start, 1), *result.FirstTriggerDate)
	})

	t.Run("cold event below threshold", func(t *testing.T) {
		series := dailySeries(start, []float64{12, 9, 8, 11})
		result := Detect(series, 10.0, DirectionBelow, 2)

		require.True(t, result.Triggered)
		require.Len(t, result.Runs, 1)
		assert.Equal(t, day(start, 1), result.Runs[0].Start)
		assert.Equal(t, day(start, 2), result.Runs[0].End)
		assert.Equal(t, 2, result.Runs[0].LengthDays)
		// Below triggers report the most extreme (lowest) value as peak.
		assert.Equal(t, 8.0, result.Runs[0].PeakValue)
	})

	t.Run("entirely missing series", func(t *testing.T) {
		series := dailySeries(start, []float64{missing, missing, missing, missing})
		result := Detect(series, 10.0, DirectionAbove, 1)

		assert.False(t, result.Triggered)
		assert.Empty(t, result.Runs)
		assert.Equal(t, 0, result.TotalTriggerDays)
		assert.Nil(t, result.FirstTriggerDate)
		assert.Equal(t, 4, result.Summary.MissingDays)
		assert.True(t, math.IsNaN(result.Summary.Min))
		assert.True(t, math.IsNaN(result.Summary.Max))
		assert.True(t, math.IsNaN(result.Summary.Mean))
	})

	t.Run("threshold boundary is inclusive both directions", func(t *testing.T) {
		series := dailySeries(start, []float64{50})

		above := Detect(series, 50.0, DirectionAbove, 1)
		require.Len(t, above.Runs, 1)
		assert.Equal(t, 1, above.TotalTriggerDays)

		below := Detect(series, 50.0, DirectionBelow, 1)
		require.Len(t, below.Runs, 1)
		assert.Equal(t, 1, below.TotalTriggerDays)
	})

	t.Run("missing day breaks a run", func(t *testing.T) {
		series := dailySeries(start, []float64{70, 70, missing, 70, 70})
		result := Detect(series, 60.0, DirectionAbove, 3)

		assert.False(t, result.Triggered)
		assert.Empty(t, result.Runs)
		assert.Equal(t, 1, result.Summary.MissingDays)
	})

	t.Run("run still open at end of series closes", func(t *testing.T) {
		series := dailySeries(start, []float64{5, 70, 70, 70})
		result := Detect(series, 60.0, DirectionAbove, 3)

		require.Len(t, result.Runs, 1)
		assert.Equal(t, day(start, 1), result.Runs[0].Start)
		assert.Equal(t, day(start, 3), result.Runs[0].End)
		assert.Equal(t, 3, result.Runs[0].LengthDays)
	})

	t.Run("short runs are discarded", func(t *testing.T) {
		series := dailySeries(start, []float64{70, 70, 5, 70, 70, 70})
		result := Detect(series, 60.0, DirectionAbove, 3)

		require.Len(t, result.Runs, 1)
		assert.Equal(t, day(start, 3), result.Runs[0].Start)
		assert.Equal(t, 3, result.TotalTriggerDays)
	})

	t.Run("min one day counts every qualifying group", func(t *testing.T) {
		series := dailySeries(start, []float64{70, 5, 70, 70, missing, 70})
		result := Detect(series, 60.0, DirectionAbove, 1)

		require.Len(t, result.Runs, 3)
		assert.Equal(t, 4, result.TotalTriggerDays)
	})

	t.Run("summary covers valued days", func(t *testing.T) {
		series := dailySeries(start, []float64{10, missing, 30, 20})
		result := Detect(series, 100.0, DirectionAbove, 1)

		assert.Equal(t, 10.0, result.Summary.Min)
		assert.Equal(t, 30.0, result.Summary.Max)
		assert.Equal(t, 20.0, result.Summary.Mean)
		assert.Equal(t, 1, result.Summary.MissingDays)
	})

	t.Run("detection is idempotent", func(t *testing.T) {
		series := dailySeries(start, []float64{10, 70, 80, missing, 65, 61, 2})

		first := Detect(series, 60.0, DirectionAbove, 2)
		second := Detect(series, 60.0, DirectionAbove, 2)
		assert.Equal(t, first, second)
	})

	t.Run("runs are maximal", func(t *testing.T) {
		series := dailySeries(start, []float64{5, 70, 70, 70, 5, 70, 70})
		result := Detect(series, 60.0, DirectionAbove, 2)

		require.Len(t, result.Runs, 2)
		for _, run := range result.Runs {
			assert.GreaterOrEqual(t, run.LengthDays, 2)
			// Each run must be bordered by a non-qualifying day or the
			// series boundary on both sides.
			for i, obs := range series {
				if obs.Date.Equal(run.Start) && i > 0 {
					prev := series[i-1]
					assert.True(t, prev.Missing || prev.Value < 60.0)
				}
				if obs.Date.Equal(run.End) && i < len(series)-1 {
					next := series[i+1]
					assert.True(t, next.Missing || next.Value < 60.0)
				}
			}
		}
	})
}
