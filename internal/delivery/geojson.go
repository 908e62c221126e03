package delivery

import (
	"fmt"
	"os"

	"github.com/climate-guardian/climate-guardian-api/internal/properties"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadFootprint reads a polygon ring from a named GeoJSON file under
// data/geojsons. The first polygon feature wins; multipolygons contribute
// their first outer ring.
func LoadFootprint(name string) (orb.Ring, error) {
	filePath := fmt.Sprintf("%s/data/geojsons/%s.geojson", properties.RootPath(), name)
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read footprint file: %v", err)
	}

	collection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprint geojson: %v", err)
	}

	for _, feature := range collection.Features {
		switch g := feature.Geometry.(type) {
		case orb.Polygon:
			if len(g) > 0 {
				return g[0], nil
			}
		case orb.MultiPolygon:
			if len(g) > 0 && len(g[0]) > 0 {
				return g[0][0], nil
			}
		}
	}

	return nil, fmt.Errorf("no polygon feature found in %s.geojson", name)
}
