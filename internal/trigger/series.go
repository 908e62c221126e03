package trigger

import "time"

// DailyObservation is one calendar day's reduced scalar. Missing days keep
// their slot in the series so run counting stays aligned with the calendar.
type DailyObservation struct {
	Date    time.Time
	Value   float64
	Missing bool
}

// Series is an ordered daily sequence, one entry per calendar day of the
// requested range, chronological, no gaps.
type Series []DailyObservation
