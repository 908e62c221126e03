package geometry

import (
	"math"
	"testing"

	"github.com/climate-guardian/climate-guardian-api/internal/grid"
	"github.com/climate-guardian/climate-guardian-api/internal/trigger"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testGrid lays cells on a 1-degree lattice with cell (y, x) centered at
// latitude y, longitude x. Near the equator one degree is ~111km.
func testGrid(values [][]float64) *grid.Grid {
	lats := make([][]float64, len(values))
	lons := make([][]float64, len(values))
	for y := range values {
		lats[y] = make([]float64, len(values[y]))
		lons[y] = make([]float64, len(values[y]))
		for x := range values[y] {
			lats[y][x] = float64(y)
			lons[y][x] = float64(x)
		}
	}
	return &grid.Grid{Values: values, Lats: lats, Lons: lons}
}

func threeByThree() *grid.Grid {
	return testGrid([][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	})
}

func TestPointReduction(t *testing.T) {
	t.Run("samples the nearest cell", func(t *testing.T) {
		plan, err := BuildReduction(Point{Lat: 1.1, Lon: 0.9})
		require.NoError(t, err)

		reduction, err := plan.Reduce(threeByThree())
		require.NoError(t, err)
		assert.Equal(t, 5.0, reduction.Value)
		assert.Equal(t, 1, reduction.CellCount)
	})

	t.Run("outside envelope fails", func(t *testing.T) {
		plan, err := BuildReduction(Point{Lat: 40, Lon: 40})
		require.NoError(t, err)

		_, err = plan.Reduce(threeByThree())
		var boundsErr *trigger.OutOfBoundsError
		require.ErrorAs(t, err, &boundsErr)
		assert.Equal(t, 40.0, boundsErr.Lat)
	})

	t.Run("missing nearest cell yields missing", func(t *testing.T) {
		g := testGrid([][]float64{
			{1, 2, 3},
			{4, math.NaN(), 6},
			{7, 8, 9},
		})
		plan, err := BuildReduction(Point{Lat: 1, Lon: 1})
		require.NoError(t, err)

		reduction, err := plan.Reduce(g)
		require.NoError(t, err)
		assert.Equal(t, 0, reduction.CellCount)
	})
}

func TestBufferReduction(t *testing.T) {
	t.Run("averages cells within the radius", func(t *testing.T) {
		// 120km catches the four orthogonal neighbors (~111km) but not
		// the diagonals (~157km).
		plan, err := BuildReduction(Buffer{Lat: 1, Lon: 1, RadiusKm: 120})
		require.NoError(t, err)

		reduction, err := plan.Reduce(threeByThree())
		require.NoError(t, err)
		assert.Equal(t, 5, reduction.CellCount)
		assert.InDelta(t, (2.0+4.0+5.0+6.0+8.0)/5.0, reduction.Value, 1e-9)
	})

	t.Run("ignores missing cells", func(t *testing.T) {
		g := testGrid([][]float64{
			{1, math.NaN(), 3},
			{4, 5, 6},
			{7, 8, 9},
		})
		plan, err := BuildReduction(Buffer{Lat: 1, Lon: 1, RadiusKm: 120})
		require.NoError(t, err)

		reduction, err := plan.Reduce(g)
		require.NoError(t, err)
		assert.Equal(t, 4, reduction.CellCount)
		assert.InDelta(t, (4.0+5.0+6.0+8.0)/4.0, reduction.Value, 1e-9)
	})

	t.Run("zero cells inside means missing not zero", func(t *testing.T) {
		plan, err := BuildReduction(Buffer{Lat: 50, Lon: 50, RadiusKm: 10})
		require.NoError(t, err)

		reduction, err := plan.Reduce(threeByThree())
		require.NoError(t, err)
		assert.Equal(t, 0, reduction.CellCount)
	})

	t.Run("non-positive radius rejected", func(t *testing.T) {
		_, err := BuildReduction(Buffer{Lat: 1, Lon: 1, RadiusKm: 0})
		var validationErr *trigger.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestPolygonReduction(t *testing.T) {
	// Square around the center cell only, (lon, lat) ordered, not closed.
	centerOnly := orb.Ring{{0.5, 0.5}, {1.5, 0.5}, {1.5, 1.5}, {0.5, 1.5}}
	// Covers the bottom two rows.
	bottomRows := orb.Ring{{-0.5, -0.5}, {2.5, -0.5}, {2.5, 1.5}, {-0.5, 1.5}}

	t.Run("statistics over covered cells", func(t *testing.T) {
		for _, tt := range []struct {
			statistic Statistic
			want      float64
		}{
			{StatisticMean, (1.0 + 2 + 3 + 4 + 5 + 6) / 6},
			{StatisticMin, 1},
			{StatisticMax, 6},
			{StatisticSum, 21},
		} {
			plan, err := BuildReduction(Polygon{Ring: bottomRows, Statistic: tt.statistic})
			require.NoError(t, err)

			reduction, err := plan.Reduce(threeByThree())
			require.NoError(t, err)
			assert.Equal(t, 6, reduction.CellCount)
			assert.InDelta(t, tt.want, reduction.Value, 1e-9, "statistic %s", tt.statistic)
		}
	})

	t.Run("single covered cell", func(t *testing.T) {
		plan, err := BuildReduction(Polygon{Ring: centerOnly, Statistic: StatisticMean})
		require.NoError(t, err)

		reduction, err := plan.Reduce(threeByThree())
		require.NoError(t, err)
		assert.Equal(t, 1, reduction.CellCount)
		assert.Equal(t, 5.0, reduction.Value)
	})

	t.Run("missing cells excluded not invalidating", func(t *testing.T) {
		g := testGrid([][]float64{
			{1, 2, 3},
			{4, math.NaN(), 6},
			{7, 8, 9},
		})
		plan, err := BuildReduction(Polygon{Ring: bottomRows, Statistic: StatisticSum})
		require.NoError(t, err)

		reduction, err := plan.Reduce(g)
		require.NoError(t, err)
		assert.Equal(t, 5, reduction.CellCount)
		assert.InDelta(t, 1.0+2+3+4+6, reduction.Value, 1e-9)
	})

	t.Run("no covered cells means missing", func(t *testing.T) {
		away := orb.Ring{{40, 40}, {41, 40}, {41, 41}, {40, 41}}
		plan, err := BuildReduction(Polygon{Ring: away, Statistic: StatisticMean})
		require.NoError(t, err)

		reduction, err := plan.Reduce(threeByThree())
		require.NoError(t, err)
		assert.Equal(t, 0, reduction.CellCount)
	})

	t.Run("needs at least three vertices", func(t *testing.T) {
		_, err := BuildReduction(Polygon{Ring: orb.Ring{{0, 0}, {1, 1}}, Statistic: StatisticMean})
		var validationErr *trigger.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("unknown statistic rejected", func(t *testing.T) {
		_, err := BuildReduction(Polygon{Ring: centerOnly, Statistic: Statistic("median")})
		var validationErr *trigger.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestDescriptorAnchors(t *testing.T) {
	lat, lon := Point{Lat: 3, Lon: 4}.Anchor()
	assert.Equal(t, 3.0, lat)
	assert.Equal(t, 4.0, lon)

	lat, lon = Buffer{Lat: 1, Lon: 2, RadiusKm: 5}.Anchor()
	assert.Equal(t, 1.0, lat)
	assert.Equal(t, 2.0, lon)

	square := Polygon{Ring: orb.Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}}, Statistic: StatisticMean}
	lat, lon = square.Anchor()
	assert.InDelta(t, 1.0, lat, 1e-9)
	assert.InDelta(t, 1.0, lon, 1e-9)
}
