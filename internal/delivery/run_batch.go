package delivery

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/climate-guardian/climate-guardian-api/internal/batch"
	"github.com/climate-guardian/climate-guardian-api/internal/geometry"
	"github.com/climate-guardian/climate-guardian-api/internal/grid"
	"github.com/climate-guardian/climate-guardian-api/internal/notification"
	"github.com/climate-guardian/climate-guardian-api/internal/properties"
	"github.com/climate-guardian/climate-guardian-api/internal/trigger"
	"github.com/gocarina/gocsv"
)

// LocationRow is one line of the batch input CSV. A row is a point by
// default, a buffer when buffer_km is positive, and a polygon when
// footprint names a GeoJSON file under data/geojsons.
type LocationRow struct {
	LocationID string  `csv:"location_id"`
	Latitude   float64 `csv:"latitude"`
	Longitude  float64 `csv:"longitude"`
	BufferKm   float64 `csv:"buffer_km"`
	Footprint  string  `csv:"footprint"`
	Statistic  string  `csv:"statistic"`
}

// ResultRow is one line of the batch output CSV: the identifying columns
// plus the trigger verdict, with the error column filled for failed rows.
type ResultRow struct {
	LocationID       string `csv:"location_id"`
	Geometry         string `csv:"geometry"`
	Triggered        string `csv:"triggered"`
	TotalTriggerDays int    `csv:"total_trigger_days"`
	FirstTriggerDate string `csv:"first_trigger_date"`
	RunCount         int    `csv:"run_count"`
	SeriesMin        string `csv:"series_min"`
	SeriesMax        string `csv:"series_max"`
	SeriesMean       string `csv:"series_mean"`
	MissingDays      int    `csv:"missing_days"`
	Error            string `csv:"error"`
}

func buildGeometry(row *LocationRow) (geometry.Descriptor, error) {
	if row.Footprint != "" {
		ring, err := LoadFootprint(row.Footprint)
		if err != nil {
			return nil, err
		}
		statistic := geometry.Statistic(row.Statistic)
		if statistic == "" {
			statistic = geometry.StatisticMean
		}
		return geometry.Polygon{Ring: ring, Statistic: statistic}, nil
	}
	if row.BufferKm > 0 {
		return geometry.Buffer{Lat: row.Latitude, Lon: row.Longitude, RadiusKm: row.BufferKm}, nil
	}
	return geometry.Point{Lat: row.Latitude, Lon: row.Longitude}, nil
}

func formatValue(value float64) string {
	if math.IsNaN(value) {
		return ""
	}
	return fmt.Sprintf("%.4f", value)
}

func toResultRow(row batch.Row) ResultRow {
	out := ResultRow{
		LocationID: row.LocationID,
		Error:      row.ErrorReason,
	}
	if row.Geometry != nil {
		out.Geometry = row.Geometry.Describe()
	}
	if row.Result == nil {
		return out
	}

	out.Triggered = fmt.Sprintf("%t", row.Result.Triggered)
	out.TotalTriggerDays = row.Result.TotalTriggerDays
	out.RunCount = len(row.Result.Runs)
	if row.Result.FirstTriggerDate != nil {
		out.FirstTriggerDate = row.Result.FirstTriggerDate.Format("2006-01-02")
	}
	out.SeriesMin = formatValue(row.Result.Summary.Min)
	out.SeriesMax = formatValue(row.Result.Summary.Max)
	out.SeriesMean = formatValue(row.Result.Summary.Mean)
	out.MissingDays = row.Result.Summary.MissingDays
	return out
}

// RunBatch reads a locations CSV from data/batch_input, evaluates the
// trigger spec over every row, and writes the verdict CSV to data/result.
// Rows whose geometry cannot even be built are reported inline alongside
// the evaluation failures; only a bad spec or an empty file fails the run.
func RunBatch(ctx context.Context, inputFileName, outputFileName string, spec trigger.Spec, extractor grid.Extractor) ([]batch.Row, error) {
	inputPath := fmt.Sprintf("%s/data/batch_input/%s", properties.RootPath(), inputFileName)
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch input: %v", err)
	}
	defer file.Close()

	var inputRows []*LocationRow
	if err := gocsv.UnmarshalFile(file, &inputRows); err != nil {
		return nil, fmt.Errorf("failed to parse batch input: %v", err)
	}
	if len(inputRows) == 0 {
		return nil, &trigger.ValidationError{Reason: "batch input has no rows"}
	}

	fmt.Printf("Running %s trigger over %d locations from %s\n", spec.Variable, len(inputRows), inputPath)

	// Rows with unreadable footprints become error rows up front so the
	// remaining locations still run.
	buildErrors := make(map[int]string)
	var locations []batch.Location
	for i, row := range inputRows {
		descriptor, err := buildGeometry(row)
		if err != nil {
			buildErrors[i] = err.Error()
			continue
		}
		locations = append(locations, batch.Location{ID: row.LocationID, Geometry: descriptor})
	}
	if len(locations) == 0 {
		return nil, &trigger.ValidationError{Reason: "no usable locations in batch input"}
	}

	evaluated, err := batch.Run(ctx, locations, spec, extractor, properties.BatchWorkers())
	if err != nil {
		return nil, err
	}

	// Merge evaluated rows back into input order around the build failures.
	rows := make([]batch.Row, 0, len(inputRows))
	next := 0
	for i, row := range inputRows {
		if reason, bad := buildErrors[i]; bad {
			rows = append(rows, batch.Row{LocationID: row.LocationID, ErrorReason: reason})
			continue
		}
		if next < len(evaluated) && evaluated[next].LocationID == row.LocationID {
			rows = append(rows, evaluated[next])
			next++
		}
	}

	outputPath := fmt.Sprintf("%s/data/result/%s", properties.RootPath(), outputFileName)
	if err := os.MkdirAll(fmt.Sprintf("%s/data/result", properties.RootPath()), 0755); err != nil {
		return nil, fmt.Errorf("failed to create result directory: %v", err)
	}
	outputFile, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch output: %v", err)
	}
	defer outputFile.Close()

	resultRows := make([]ResultRow, 0, len(rows))
	var failures []string
	for _, row := range rows {
		resultRows = append(resultRows, toResultRow(row))
		if row.ErrorReason != "" {
			failures = append(failures, fmt.Sprintf("%s: %s", row.LocationID, row.ErrorReason))
		}
	}
	if err := gocsv.MarshalFile(&resultRows, outputFile); err != nil {
		return nil, fmt.Errorf("failed to write batch output: %v", err)
	}

	fmt.Printf("Batch results with %d rows saved to %s\n", len(resultRows), outputPath)
	if len(failures) > 0 {
		notification.SendDiscordWarnNotification(fmt.Sprintf("Trigger batch completed with %d errors.\nErrors: %s", len(failures), strings.Join(failures, "\n")))
	} else {
		notification.SendDiscordSuccessNotification(fmt.Sprintf("Trigger batch completed for %d locations.\nResults: %s", len(resultRows), outputPath))
	}

	return rows, nil
}
