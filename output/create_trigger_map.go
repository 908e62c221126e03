package output

import (
	"fmt"
	"math"
	"os"

	"github.com/climate-guardian/climate-guardian-api/internal/batch"
	"github.com/climate-guardian/climate-guardian-api/internal/geometry"
	"github.com/climate-guardian/climate-guardian-api/internal/properties"
	"github.com/fogleman/gg"
)

const (
	mapSize   = 900
	mapMargin = 60.0
)

// CreateTriggerMap renders the batch verdicts as a PNG: red dots for
// triggered locations, green for quiet ones, gray for failed rows, with
// polygon footprints outlined.
func CreateTriggerMap(rows []batch.Row, outputName string) (string, error) {
	resultDir := fmt.Sprintf("%s/data/result", properties.RootPath())
	if err := os.MkdirAll(resultDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create result folder: %v", err)
	}
	outputPath := fmt.Sprintf("%s/%s.png", resultDir, outputName)

	minLat, minLon := math.Inf(1), math.Inf(1)
	maxLat, maxLon := math.Inf(-1), math.Inf(-1)
	counted := 0
	for _, row := range rows {
		if row.Geometry == nil {
			continue
		}
		lat, lon := row.Geometry.Anchor()
		minLat, maxLat = math.Min(minLat, lat), math.Max(maxLat, lat)
		minLon, maxLon = math.Min(minLon, lon), math.Max(maxLon, lon)
		counted++
	}
	if counted == 0 {
		return "", fmt.Errorf("no locations with geometry to draw")
	}
	if maxLat == minLat {
		minLat, maxLat = minLat-0.5, maxLat+0.5
	}
	if maxLon == minLon {
		minLon, maxLon = minLon-0.5, maxLon+0.5
	}

	project := func(lat, lon float64) (float64, float64) {
		x := mapMargin + (lon-minLon)/(maxLon-minLon)*(mapSize-2*mapMargin)
		y := mapMargin + (maxLat-lat)/(maxLat-minLat)*(mapSize-2*mapMargin)
		return x, y
	}

	dc := gg.NewContext(mapSize, mapSize)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for _, row := range rows {
		polygon, ok := row.Geometry.(geometry.Polygon)
		if !ok {
			continue
		}
		dc.SetRGBA(0.3, 0.3, 0.6, 0.8)
		dc.SetLineWidth(1.5)
		for i, vertex := range polygon.Ring {
			x, y := project(vertex.Y(), vertex.X())
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
		dc.Stroke()
	}

	for _, row := range rows {
		if row.Geometry == nil {
			continue
		}
		lat, lon := row.Geometry.Anchor()
		x, y := project(lat, lon)

		switch {
		case row.ErrorReason != "":
			dc.SetRGB(0.5, 0.5, 0.5)
		case row.Result != nil && row.Result.Triggered:
			dc.SetRGB(0.85, 0.1, 0.1)
		default:
			dc.SetRGB(0.1, 0.65, 0.2)
		}
		dc.DrawCircle(x, y, 6)
		dc.Fill()
	}

	if err := dc.SavePNG(outputPath); err != nil {
		return "", fmt.Errorf("failed to save trigger map: %v", err)
	}

	fmt.Println("Trigger map created successfully at", outputPath)
	return outputPath, nil
}
