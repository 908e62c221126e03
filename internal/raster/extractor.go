package raster

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/climate-guardian/climate-guardian-api/internal/grid"
	"github.com/climate-guardian/climate-guardian-api/internal/properties"
	"github.com/climate-guardian/climate-guardian-api/internal/utils"
)

var registerDrivers sync.Once

// Extractor implements grid.Extractor on top of a local GeoTIFF store laid
// out as <dir>/<source>/<variable>/<YYYY-MM-DD>.tif, one file per day.
type Extractor struct {
	dir string
}

func NewExtractor(dir string) *Extractor {
	if dir == "" {
		dir = filepath.Join(properties.RootPath(), "data", "rasters")
	}
	registerDrivers.Do(godal.RegisterInternalDrivers)
	return &Extractor{dir: dir}
}

func (e *Extractor) gridPath(variable, source string, date time.Time) string {
	return filepath.Join(e.dir, source, variable, date.Format("2006-01-02")+".tif")
}

// GetGrid reads one day's raster into a grid with WGS84 cell centers. A
// missing file means the date is not covered; a file that fails to open or
// read is a hard data access failure.
func (e *Extractor) GetGrid(ctx context.Context, variable, source string, date time.Time) (*grid.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := e.gridPath(variable, source, date)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, grid.ErrMissingGrid
	}

	var result *grid.Grid
	var readErr error
	utils.ExecuteWithGDALLock(func() {
		result, readErr = readRaster(path)
	})
	if readErr != nil {
		return nil, &grid.DataAccessError{Variable: variable, Source: source, Date: date, Err: readErr}
	}
	return result, nil
}

func readRaster(path string) (*grid.Grid, error) {
	dataset, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster: %v", err)
	}
	defer dataset.Close()

	width := dataset.Structure().SizeX
	height := dataset.Structure().SizeY
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("raster has empty dimensions")
	}

	band := dataset.Bands()[0]
	data := make([]float64, width*height)
	if err := band.Read(0, 0, data, width, height); err != nil {
		return nil, fmt.Errorf("failed to read raster band: %v", err)
	}
	nodata, hasNodata := band.NoData()

	lats, lons, err := cellCenters(dataset, width, height)
	if err != nil {
		return nil, err
	}

	values := make([][]float64, height)
	for y := range values {
		values[y] = make([]float64, width)
		for x := range values[y] {
			value := data[y*width+x]
			if hasNodata && value == nodata {
				value = math.NaN()
			}
			values[y][x] = value
		}
	}

	return &grid.Grid{Values: values, Lats: lats, Lons: lons}, nil
}

// cellCenters converts every pixel center to WGS84 via the dataset's
// geotransform.
func cellCenters(dataset *godal.Dataset, width, height int) ([][]float64, [][]float64, error) {
	geoTransform, err := dataset.GeoTransform()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get GeoTransform: %w", err)
	}

	xs := make([]float64, width*height)
	ys := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			xs[i] = geoTransform[0] + geoTransform[1]*(float64(x)+0.5) + geoTransform[2]*(float64(y)+0.5)
			ys[i] = geoTransform[3] + geoTransform[4]*(float64(x)+0.5) + geoTransform[5]*(float64(y)+0.5)
		}
	}

	srcSR := dataset.SpatialRef()
	defer srcSR.Close()
	dstSR, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create WGS84 spatial ref: %w", err)
	}
	defer dstSR.Close()
	tr, err := godal.NewTransform(srcSR, dstSR)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create transform: %w", err)
	}
	defer tr.Close()
	if err := tr.TransformEx(xs, ys, nil, nil); err != nil {
		return nil, nil, fmt.Errorf("transform error: %w", err)
	}

	lats := make([][]float64, height)
	lons := make([][]float64, height)
	for y := 0; y < height; y++ {
		lats[y] = ys[y*width : (y+1)*width]
		lons[y] = xs[y*width : (y+1)*width]
	}
	return lats, lons, nil
}

// ListAvailableDates returns the covered dates for a source and variable,
// sorted ascending.
func (e *Extractor) ListAvailableDates(variable, source string) ([]time.Time, error) {
	entries, err := os.ReadDir(filepath.Join(e.dir, source, variable))
	if err != nil {
		return nil, err
	}

	var dates []time.Time
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".tif")
		date, err := time.Parse("2006-01-02", name)
		if err != nil {
			continue
		}
		dates = append(dates, date)
	}
	return utils.SortDates(dates, true), nil
}

// ListSources returns the source directories present in the raster store.
func (e *Extractor) ListSources() ([]string, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return nil, err
	}

	var sources []string
	for _, entry := range entries {
		if entry.IsDir() {
			sources = append(sources, entry.Name())
		}
	}
	return sources, nil
}
