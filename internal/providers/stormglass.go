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

const (
	stormglassParams = "waveHeight,wavePeriod,waveDirection,windSpeed,windDirection"
	msToKnots        = 1.943844
)

// StormglassClient fetches hourly marine data from Stormglass. It requires an API key.
type StormglassClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

// NewStormglassClient returns nil when no API key is configured.
func NewStormglassClient(cfg config.Provider, limiter *rate.Limiter) *StormglassClient {
	if cfg.StormglassKey == "" {
		return nil
	}
	return &StormglassClient{
		baseURL:    cfg.StormglassURL,
		apiKey:     cfg.StormglassKey,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    limiter,
		now:        time.Now,
	}
}

// sourced is one Stormglass value keyed by data source.
type sourced struct {
	NOAA *float64 `json:"noaa"`
	SG   *float64 `json:"sg"`
}

// value prefers NOAA and falls back to the Stormglass blend; zero counts as missing.
func (s *sourced) value() *float64 {
	if s == nil {
		return nil
	}
	if s.NOAA != nil && *s.NOAA != 0 {
		return s.NOAA
	}
	if s.SG != nil && *s.SG != 0 {
		return s.SG
	}
	return nil
}

type stormglassResponse struct {
	Hours []struct {
		Time          time.Time `json:"time"`
		WaveHeight    *sourced  `json:"waveHeight"`
		WavePeriod    *sourced  `json:"wavePeriod"`
		WaveDirection *sourced  `json:"waveDirection"`
		WindSpeed     *sourced  `json:"windSpeed"`
		WindDirection *sourced  `json:"windDirection"`
	} `json:"hours"`
}

// Hourly returns three days of hourly records for the coordinates.
func (c *StormglassClient) Hourly(ctx context.Context, lat, lng float64) ([]normalize.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("stormglass rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("params", stormglassParams)
	q.Set("end", c.now().AddDate(0, 0, 3).UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stormglass request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stormglass data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stormglass API returned status %d", resp.StatusCode)
	}

	var data stormglassResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode stormglass response: %w", err)
	}

	records := make([]normalize.Record, 0, len(data.Hours))
	for _, h := range data.Hours {
		var wind *float64
		if v := h.WindSpeed.value(); v != nil {
			wind = normalize.Float(*v * msToKnots)
		}
		records = append(records, normalize.Record{
			Time:             h.Time,
			WaveHeight:       h.WaveHeight.value(),
			WavePeriod:       h.WavePeriod.value(),
			WaveDirection:    h.WaveDirection.value(),
			WindSpeed:        wind,
			WindDirectionDeg: h.WindDirection.value(),
		})
	}
	return records, nil
}
