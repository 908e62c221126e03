package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Statistic selects how polygon footprints collapse their covered cells.
type Statistic string

const (
	StatisticMean Statistic = "mean"
	StatisticMin  Statistic = "min"
	StatisticMax  Statistic = "max"
	StatisticSum  Statistic = "sum"
)

// Descriptor is the spatial footprint a trigger is evaluated over.
type Descriptor interface {
	Describe() string
	// Anchor returns a representative coordinate for the footprint, used
	// for result rows and map output.
	Anchor() (lat, lon float64)
}

// Point samples the nearest grid cell, no interpolation.
type Point struct {
	Lat float64
	Lon float64
}

func (p Point) Describe() string {
	return fmt.Sprintf("point(%f, %f)", p.Lat, p.Lon)
}

func (p Point) Anchor() (float64, float64) {
	return p.Lat, p.Lon
}

// Buffer averages every cell whose center lies within RadiusKm great-circle
// distance of the center coordinate.
type Buffer struct {
	Lat      float64
	Lon      float64
	RadiusKm float64
}

func (b Buffer) Describe() string {
	return fmt.Sprintf("buffer(%f, %f, %.1fkm)", b.Lat, b.Lon, b.RadiusKm)
}

func (b Buffer) Anchor() (float64, float64) {
	return b.Lat, b.Lon
}

// Polygon reduces cells whose centers fall inside the ring with the chosen
// statistic. The ring is (lon, lat) ordered and need not be closed.
type Polygon struct {
	Ring      orb.Ring
	Statistic Statistic
}

func (p Polygon) Describe() string {
	return fmt.Sprintf("polygon(%d vertices, %s)", len(p.Ring), p.Statistic)
}

func (p Polygon) Anchor() (float64, float64) {
	centroid, _ := planar.CentroidArea(p.closedRing())
	return centroid.Y(), centroid.X()
}

func (p Polygon) closedRing() orb.Ring {
	ring := p.Ring
	if len(ring) >= 3 && !ring.Closed() {
		ring = append(orb.Ring{}, ring...)
		ring = append(ring, ring[0])
	}
	return ring
}
