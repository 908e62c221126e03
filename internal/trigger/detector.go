package trigger

import (
	"math"
	"time"
)

// ExceedanceRun is a maximal span of consecutive qualifying days.
type ExceedanceRun struct {
	Start      time.Time
	End        time.Time
	LengthDays int
	PeakValue  float64
}

// SeriesSummary describes the reduced series the detector scanned. Min, Max
// and Mean cover valued days only and are NaN for an all-missing series.
type SeriesSummary struct {
	Min         float64
	Max         float64
	Mean        float64
	MissingDays int
}

// Result is the verdict for one location and one trigger spec.
type Result struct {
	Triggered        bool
	Runs             []ExceedanceRun
	TotalTriggerDays int
	FirstTriggerDate *time.Time
	Summary          SeriesSummary
}

func qualifies(value float64, threshold float64, direction Direction) bool {
	if direction == DirectionAbove {
		return value >= threshold
	}
	return value <= threshold
}

// morePeak reports whether candidate is more extreme than current for the
// given direction.
func morePeak(candidate, current float64, direction Direction) bool {
	if direction == DirectionAbove {
		return candidate > current
	}
	return candidate < current
}

// Detect scans a daily series once, left to right, collecting runs of at
// least minConsecutiveDays qualifying days. Both comparisons include the
// threshold itself. Missing days and non-qualifying days both break a run;
// a run still open at the end of the series is closed there. An entirely
// missing series is a valid non-triggering result, not an error.
func Detect(series Series, threshold float64, direction Direction, minConsecutiveDays int) Result {
	var runs []ExceedanceRun

	var runStart time.Time
	var runEnd time.Time
	runLength := 0
	runPeak := 0.0

	closeRun := func() {
		if runLength >= minConsecutiveDays {
			runs = append(runs, ExceedanceRun{
				Start:      runStart,
				End:        runEnd,
				LengthDays: runLength,
				PeakValue:  runPeak,
			})
		}
		runLength = 0
	}

	sum := 0.0
	valued := 0
	summary := SeriesSummary{Min: math.NaN(), Max: math.NaN(), Mean: math.NaN()}

	for _, obs := range series {
		if obs.Missing {
			summary.MissingDays++
			closeRun()
			continue
		}

		valued++
		sum += obs.Value
		if valued == 1 {
			summary.Min, summary.Max = obs.Value, obs.Value
		} else {
			summary.Min = math.Min(summary.Min, obs.Value)
			summary.Max = math.Max(summary.Max, obs.Value)
		}

		if !qualifies(obs.Value, threshold, direction) {
			closeRun()
			continue
		}

		if runLength == 0 {
			runStart = obs.Date
			runPeak = obs.Value
		} else if morePeak(obs.Value, runPeak, direction) {
			runPeak = obs.Value
		}
		runEnd = obs.Date
		runLength++
	}
	closeRun()

	if valued > 0 {
		summary.Mean = sum / float64(valued)
	}

	result := Result{
		Triggered: len(runs) > 0,
		Runs:      runs,
		Summary:   summary,
	}
	for _, run := range runs {
		result.TotalTriggerDays += run.LengthDays
	}
	if len(runs) > 0 {
		first := runs[0].Start
		result.FirstTriggerDate = &first
	}
	return result
}
