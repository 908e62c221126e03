package grid

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMissingGrid is returned by an Extractor when the upstream archive has
// no grid for the requested date. It degrades the day to missing instead of
// failing the whole series.
var ErrMissingGrid = errors.New("no grid available for requested date")

// DataAccessError signals a hard extraction failure (unreachable service,
// corrupt file), as opposed to a date simply not being covered.
type DataAccessError struct {
	Variable string
	Source   string
	Date     time.Time
	Err      error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access failed for %s/%s on %s: %v", e.Source, e.Variable, e.Date.Format("2006-01-02"), e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// Extractor hands out one timestep's grid for a variable and source.
// Implementations own all file and network access; the engine never does.
type Extractor interface {
	GetGrid(ctx context.Context, variable, source string, date time.Time) (*Grid, error)
}

// Grid is a single timestep's extraction: per-cell values plus the
// geographic coordinates of every cell center, already in WGS84.
// Missing cells are NaN.
type Grid struct {
	Values [][]float64
	Lats   [][]float64
	Lons   [][]float64
}

func (g *Grid) Rows() int {
	return len(g.Values)
}

func (g *Grid) Cols() int {
	if len(g.Values) == 0 {
		return 0
	}
	return len(g.Values[0])
}

// Envelope returns the bounding box of the grid's cell centers.
func (g *Grid) Envelope() (minLat, minLon, maxLat, maxLon float64) {
	minLat, minLon = math.Inf(1), math.Inf(1)
	maxLat, maxLon = math.Inf(-1), math.Inf(-1)
	for y := range g.Lats {
		for x := range g.Lats[y] {
			minLat = math.Min(minLat, g.Lats[y][x])
			maxLat = math.Max(maxLat, g.Lats[y][x])
			minLon = math.Min(minLon, g.Lons[y][x])
			maxLon = math.Max(maxLon, g.Lons[y][x])
		}
	}
	return minLat, minLon, maxLat, maxLon
}

// IsMissing reports whether a cell value represents an absent measurement.
func IsMissing(value float64) bool {
	return math.IsNaN(value)
}
