package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/climate-guardian/climate-guardian-api/internal/cache"
	"github.com/climate-guardian/climate-guardian-api/internal/grid"
	"github.com/climate-guardian/climate-guardian-api/internal/properties"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/errgroup"
)

// gridPayload is the archive service's grid document. Null values mark
// missing cells.
type gridPayload struct {
	Latitudes  [][]float64  `json:"latitudes"`
	Longitudes [][]float64  `json:"longitudes"`
	Values     [][]*float64 `json:"values"`
}

// Client fetches daily grids from the climate archive service. Responses
// are cached on disk because published archive grids never change.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.FileCache[gridPayload]
	retries    int
	retryWait  time.Duration
}

func NewClient() *Client {
	httpClient := http.DefaultClient
	if properties.ArchiveClientID() != "" {
		config := clientcredentials.Config{
			ClientID:     properties.ArchiveClientID(),
			ClientSecret: properties.ArchiveClientSecret(),
			TokenURL:     properties.ArchiveTokenURL(),
		}
		httpClient = config.Client(context.Background())
	}

	return &Client{
		baseURL:    properties.ArchiveBaseURL(),
		httpClient: httpClient,
		cache:      cache.NewFileCache[gridPayload]("archive", 0),
		retries:    5,
		retryWait:  2 * time.Second,
	}
}

// GetGrid implements grid.Extractor. A 404 from the archive means the date
// is not covered; anything else that survives the retry budget is a hard
// data access failure.
func (c *Client) GetGrid(ctx context.Context, variable, source string, date time.Time) (*grid.Grid, error) {
	cacheKey := c.cache.GenerateKey(source, variable, date.Format("2006-01-02"))
	if payload, ok := c.cache.Get(cacheKey); ok {
		return payloadToGrid(payload)
	}

	url := fmt.Sprintf("%s/v1/grids/%s/%s?date=%s", c.baseURL, source, variable, date.Format("2006-01-02"))

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &grid.DataAccessError{Variable: variable, Source: source, Date: date, Err: ctx.Err()}
			case <-time.After(c.retryWait):
			}
		}

		payload, retryable, err := c.fetch(ctx, url)
		if err == nil {
			if cacheErr := c.cache.Set(cacheKey, *payload); cacheErr != nil {
				fmt.Printf("Failed to cache archive grid: %v\n", cacheErr)
			}
			return payloadToGrid(*payload)
		}
		if errors.Is(err, grid.ErrMissingGrid) {
			return nil, grid.ErrMissingGrid
		}
		lastErr = err
		if !retryable {
			break
		}
		fmt.Printf("Failed to retrieve grid: %v. Retrying... (%d/%d)\n", err, attempt+1, c.retries)
	}

	return nil, &grid.DataAccessError{Variable: variable, Source: source, Date: date, Err: lastErr}
}

func (c *Client) fetch(ctx context.Context, url string) (*gridPayload, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, grid.ErrMissingGrid
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("archive returned status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("archive returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	var payload gridPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false, fmt.Errorf("failed to parse archive response: %v", err)
	}
	return &payload, false, nil
}

// Warmup prefetches grids for a date range so a batch run does not pay a
// round trip per location per day. Missing dates are fine; hard failures
// are not.
func (c *Client) Warmup(ctx context.Context, variable, source string, dates []time.Time, parallelism int) error {
	if parallelism <= 0 {
		parallelism = 4
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallelism)
	for _, date := range dates {
		date := date
		group.Go(func() error {
			_, err := c.GetGrid(groupCtx, variable, source, date)
			if errors.Is(err, grid.ErrMissingGrid) {
				return nil
			}
			return err
		})
	}
	return group.Wait()
}

func payloadToGrid(payload gridPayload) (*grid.Grid, error) {
	if len(payload.Values) == 0 || len(payload.Values) != len(payload.Latitudes) || len(payload.Values) != len(payload.Longitudes) {
		return nil, fmt.Errorf("archive grid has mismatched dimensions")
	}

	values := make([][]float64, len(payload.Values))
	for y := range payload.Values {
		if len(payload.Values[y]) != len(payload.Latitudes[y]) || len(payload.Values[y]) != len(payload.Longitudes[y]) {
			return nil, fmt.Errorf("archive grid has mismatched dimensions")
		}
		values[y] = make([]float64, len(payload.Values[y]))
		for x := range payload.Values[y] {
			if payload.Values[y][x] == nil {
				values[y][x] = math.NaN()
				continue
			}
			values[y][x] = *payload.Values[y][x]
		}
	}

	return &grid.Grid{
		Values: values,
		Lats:   payload.Latitudes,
		Lons:   payload.Longitudes,
	}, nil
}
