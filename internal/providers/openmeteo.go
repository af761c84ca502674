package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"surfalert-service/internal/config"
	"surfalert-service/internal/normalize"
)

const openMeteoHourly = "wave_height,wave_direction,wave_period,wind_speed_10m,wind_direction_10m"

// OpenMeteoClient fetches hourly marine data from the Open-Meteo marine API.
type OpenMeteoClient struct {
	baseURL    string
	timezone   string
	location   *time.Location
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewOpenMeteoClient creates a client sharing limiter with the other upstream clients.
func NewOpenMeteoClient(cfg config.Provider, limiter *rate.Limiter) *OpenMeteoClient {
	return &OpenMeteoClient{
		baseURL:    cfg.OpenMeteoURL,
		timezone:   cfg.Timezone,
		location:   loadLocation(cfg.Timezone),
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    limiter,
	}
}

type openMeteoResponse struct {
	Hourly struct {
		Time             []string   `json:"time"`
		WaveHeight       []*float64 `json:"wave_height"`
		WaveDirection    []*float64 `json:"wave_direction"`
		WavePeriod       []*float64 `json:"wave_period"`
		WindSpeed10m     []*float64 `json:"wind_speed_10m"`
		WindDirection10m []*float64 `json:"wind_direction_10m"`
	} `json:"hourly"`
}

// Hourly returns three days of hourly records for the coordinates.
func (c *OpenMeteoClient) Hourly(ctx context.Context, lat, lng float64) ([]normalize.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("open-meteo rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("hourly", openMeteoHourly)
	q.Set("wind_speed_unit", "kn")
	q.Set("timezone", c.timezone)
	q.Set("forecast_days", "3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create open-meteo request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open-meteo data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo API returned status %d", resp.StatusCode)
	}

	var data openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode open-meteo response: %w", err)
	}

	h := data.Hourly
	records := make([]normalize.Record, 0, len(h.Time))
	for i, ts := range h.Time {
		t, err := time.ParseInLocation("2006-01-02T15:04", ts, c.location)
		if err != nil {
			return nil, fmt.Errorf("invalid open-meteo time %q: %w", ts, err)
		}
		records = append(records, normalize.Record{
			Time:             t,
			WaveHeight:       at(h.WaveHeight, i),
			WaveDirection:    at(h.WaveDirection, i),
			WavePeriod:       at(h.WavePeriod, i),
			WindSpeed:        at(h.WindSpeed10m, i),
			WindDirectionDeg: at(h.WindDirection10m, i),
		})
	}
	return records, nil
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func loadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
