package archive

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/climate-guardian/climate-guardian-api/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gridDocument = `{
	"latitudes":  [[0, 0], [1, 1]],
	"longitudes": [[0, 1], [0, 1]],
	"values":     [[12.5, null], [3.0, 4.0]]
}`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	t.Setenv("ROOT_PATH", t.TempDir())
	t.Setenv("CLIMATE_ARCHIVE_URL", server.URL)
	return NewClient(), server
}

func TestClientGetGrid(t *testing.T) {
	day := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)

	t.Run("parses grid and marks null cells missing", func(t *testing.T) {
		var gotPath, gotQuery string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			w.Write([]byte(gridDocument))
		}))

		g, err := client.GetGrid(context.Background(), "precipitation", "era5", day)
		require.NoError(t, err)
		assert.Equal(t, "/v1/grids/era5/precipitation", gotPath)
		assert.Equal(t, "date=2023-11-01", gotQuery)

		assert.Equal(t, 12.5, g.Values[0][0])
		assert.True(t, math.IsNaN(g.Values[0][1]))
		assert.Equal(t, 1.0, g.Lats[1][0])
		assert.Equal(t, 1.0, g.Lons[0][1])
	})

	t.Run("serves repeat requests from the cache", func(t *testing.T) {
		var hits atomic.Int64
		client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write([]byte(gridDocument))
		}))

		_, err := client.GetGrid(context.Background(), "precipitation", "era5", day)
		require.NoError(t, err)
		require.Equal(t, int64(1), hits.Load())

		// The archive being unreachable must not matter for a cached grid.
		server.Close()

		g, err := client.GetGrid(context.Background(), "precipitation", "era5", day)
		require.NoError(t, err)
		assert.Equal(t, 12.5, g.Values[0][0])
		assert.Equal(t, int64(1), hits.Load())
	})

	t.Run("404 means the date is not covered", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := client.GetGrid(context.Background(), "precipitation", "era5", day)
		require.ErrorIs(t, err, grid.ErrMissingGrid)
	})

	t.Run("client errors fail without retrying", func(t *testing.T) {
		var hits atomic.Int64
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))

		_, err := client.GetGrid(context.Background(), "precipitation", "era5", day)
		var accessErr *grid.DataAccessError
		require.ErrorAs(t, err, &accessErr)
		assert.Equal(t, "precipitation", accessErr.Variable)
		assert.Equal(t, "era5", accessErr.Source)
		assert.Equal(t, int64(1), hits.Load())
	})

	t.Run("mismatched dimensions are rejected", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"latitudes": [[0]], "longitudes": [[0, 1]], "values": [[1.0]]}`))
		}))

		_, err := client.GetGrid(context.Background(), "precipitation", "era5", day)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mismatched dimensions")
	})
}

func TestClientWarmup(t *testing.T) {
	t.Run("prefetch fills the cache and tolerates gaps", func(t *testing.T) {
		var hits atomic.Int64
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			if r.URL.Query().Get("date") == "2023-11-02" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write([]byte(gridDocument))
		}))

		dates := []time.Time{
			time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, client.Warmup(context.Background(), "precipitation", "era5", dates, 2))
		assert.Equal(t, int64(3), hits.Load())

		_, err := client.GetGrid(context.Background(), "precipitation", "era5", dates[0])
		require.NoError(t, err)
		assert.Equal(t, int64(3), hits.Load())
	})
}
