package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/climate-guardian/climate-guardian-api/internal/batch"
	"github.com/climate-guardian/climate-guardian-api/internal/properties"
)

// CreateResultGeoJSON writes one point feature per batch row, anchored at
// the footprint's representative coordinate, so verdicts drop straight
// into any GIS viewer.
func CreateResultGeoJSON(rows []batch.Row, outputName string) (string, error) {
	outputPath := fmt.Sprintf("%s/data/result/%s.geojson", properties.RootPath(), outputName)
	features := make([]map[string]interface{}, 0)

	for _, row := range rows {
		props := map[string]interface{}{
			"location_id": row.LocationID,
		}
		if row.ErrorReason != "" {
			props["error"] = row.ErrorReason
		}
		if row.Result != nil {
			props["triggered"] = row.Result.Triggered
			props["total_trigger_days"] = row.Result.TotalTriggerDays
			props["run_count"] = len(row.Result.Runs)
			if row.Result.FirstTriggerDate != nil {
				props["first_trigger_date"] = row.Result.FirstTriggerDate.Format("2006-01-02")
			}
		}

		var lat, lon float64
		if row.Geometry != nil {
			lat, lon = row.Geometry.Anchor()
		}

		feature := map[string]interface{}{
			"type": "Feature",
			"geometry": map[string]interface{}{
				"type":        "Point",
				"coordinates": []float64{lon, lat},
			},
			"properties": props,
		}
		features = append(features, feature)
	}

	geoJSON := map[string]interface{}{
		"type":     "FeatureCollection",
		"features": features,
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("error creating GeoJSON file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(geoJSON); err != nil {
		return "", fmt.Errorf("error encoding GeoJSON: %v", err)
	}

	fmt.Println("GeoJSON file created successfully at", outputPath)
	return outputPath, nil
}
