package geometry

import (
	"math"

	"github.com/climate-guardian/climate-guardian-api/internal/grid"
	"github.com/climate-guardian/climate-guardian-api/internal/trigger"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Reduction is the outcome of collapsing one timestep's grid to a scalar.
// CellCount is the number of valid cells that contributed; zero means the
// timestep is missing for this footprint.
type Reduction struct {
	Value     float64
	CellCount int
}

// ReductionPlan turns a raw grid extraction into one scalar per timestep.
// Plans are stateless and reusable across timesteps; they do no I/O.
type ReductionPlan struct {
	descriptor Descriptor
	reduce     func(g *grid.Grid) (Reduction, error)
}

func (p ReductionPlan) Descriptor() Descriptor {
	return p.descriptor
}

func (p ReductionPlan) Reduce(g *grid.Grid) (Reduction, error) {
	return p.reduce(g)
}

// BuildReduction validates a footprint and returns its reduction plan.
func BuildReduction(descriptor Descriptor) (ReductionPlan, error) {
	switch d := descriptor.(type) {
	case Point:
		return ReductionPlan{descriptor: d, reduce: d.reduce}, nil
	case Buffer:
		if d.RadiusKm <= 0 {
			return ReductionPlan{}, &trigger.ValidationError{Reason: "buffer radius must be positive"}
		}
		return ReductionPlan{descriptor: d, reduce: d.reduce}, nil
	case Polygon:
		if len(d.Ring) < 3 {
			return ReductionPlan{}, &trigger.ValidationError{Reason: "polygon needs at least 3 vertices"}
		}
		switch d.Statistic {
		case StatisticMean, StatisticMin, StatisticMax, StatisticSum:
		default:
			return ReductionPlan{}, &trigger.ValidationError{Reason: "unknown polygon statistic: " + string(d.Statistic)}
		}
		return ReductionPlan{descriptor: d, reduce: d.reduce}, nil
	}
	return ReductionPlan{}, &trigger.ValidationError{Reason: "unknown geometry descriptor"}
}

func (p Point) reduce(g *grid.Grid) (Reduction, error) {
	minLat, minLon, maxLat, maxLon := g.Envelope()
	if p.Lat < minLat || p.Lat > maxLat || p.Lon < minLon || p.Lon > maxLon {
		return Reduction{}, &trigger.OutOfBoundsError{Lat: p.Lat, Lon: p.Lon}
	}

	target := orb.Point{p.Lon, p.Lat}
	best := math.Inf(1)
	value := math.NaN()
	for y := range g.Values {
		for x := range g.Values[y] {
			center := orb.Point{g.Lons[y][x], g.Lats[y][x]}
			d := geo.Distance(target, center)
			if d < best {
				best = d
				value = g.Values[y][x]
			}
		}
	}
	if grid.IsMissing(value) {
		return Reduction{}, nil
	}
	return Reduction{Value: value, CellCount: 1}, nil
}

func (b Buffer) reduce(g *grid.Grid) (Reduction, error) {
	center := orb.Point{b.Lon, b.Lat}
	radiusMeters := b.RadiusKm * 1000

	sum := 0.0
	count := 0
	for y := range g.Values {
		for x := range g.Values[y] {
			if grid.IsMissing(g.Values[y][x]) {
				continue
			}
			cell := orb.Point{g.Lons[y][x], g.Lats[y][x]}
			if geo.Distance(center, cell) <= radiusMeters {
				sum += g.Values[y][x]
				count++
			}
		}
	}
	if count == 0 {
		return Reduction{}, nil
	}
	return Reduction{Value: sum / float64(count), CellCount: count}, nil
}

func (p Polygon) reduce(g *grid.Grid) (Reduction, error) {
	ring := p.closedRing()

	sum, minimum, maximum := 0.0, math.Inf(1), math.Inf(-1)
	count := 0
	for y := range g.Values {
		for x := range g.Values[y] {
			if grid.IsMissing(g.Values[y][x]) {
				continue
			}
			cell := orb.Point{g.Lons[y][x], g.Lats[y][x]}
			if !planar.RingContains(ring, cell) {
				continue
			}
			value := g.Values[y][x]
			sum += value
			minimum = math.Min(minimum, value)
			maximum = math.Max(maximum, value)
			count++
		}
	}
	if count == 0 {
		return Reduction{}, nil
	}

	switch p.Statistic {
	case StatisticMin:
		return Reduction{Value: minimum, CellCount: count}, nil
	case StatisticMax:
		return Reduction{Value: maximum, CellCount: count}, nil
	case StatisticSum:
		return Reduction{Value: sum, CellCount: count}, nil
	default:
		return Reduction{Value: sum / float64(count), CellCount: count}, nil
	}
}
