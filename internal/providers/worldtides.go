package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"surfalert-service/internal/config"
	"surfalert-service/internal/models"
)

const tideWindow = 48 * time.Hour

// WorldTidesClient fetches hourly tide heights from WorldTides.
type WorldTidesClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewWorldTidesClient returns nil when no API key is configured.
func NewWorldTidesClient(cfg config.Provider, limiter *rate.Limiter) *WorldTidesClient {
	if cfg.WorldTidesKey == "" {
		return nil
	}
	return &WorldTidesClient{
		baseURL:    cfg.WorldTidesURL,
		apiKey:     cfg.WorldTidesKey,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    limiter,
	}
}

type worldTidesResponse struct {
	Heights []struct {
		Dt     int64   `json:"dt"`
		Height float64 `json:"height"`
	} `json:"heights"`
}

// Heights returns 48 hourly tide samples starting at start.
func (c *WorldTidesClient) Heights(ctx context.Context, lat, lng float64, start time.Time) ([]models.TidePoint, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("worldtides rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("start", strconv.FormatInt(start.Unix(), 10))
	q.Set("length", strconv.Itoa(int(tideWindow.Seconds())))
	q.Set("step", "3600")
	q.Set("key", c.apiKey)

	// "heights" is a bare flag in the WorldTides query string.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?heights&"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create worldtides request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch worldtides data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("worldtides API returned status %d", resp.StatusCode)
	}

	var data worldTidesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode worldtides response: %w", err)
	}

	points := make([]models.TidePoint, 0, len(data.Heights))
	for _, h := range data.Heights {
		points = append(points, models.TidePoint{Time: time.Unix(h.Dt, 0).UTC(), Height: h.Height})
	}
	return points, nil
}

// SyntheticTides approximates a semi-diurnal tide as 1.5 + 0.7·sin(hour·π/6),
// rounded to 0.1 m, for hourly samples over the tide window.
func SyntheticTides(start time.Time, loc *time.Location) []models.TidePoint {
	n := int(tideWindow / time.Hour)
	points := make([]models.TidePoint, 0, n)
	for i := 0; i < n; i++ {
		t := start.Add(time.Duration(i) * time.Hour).In(loc)
		hours := float64(t.Hour()) + float64(t.Minute())/60
		height := 1.5 + math.Sin(hours*math.Pi/6)*0.7
		points = append(points, models.TidePoint{
			Time:   t,
			Height: math.Round(height*10) / 10,
		})
	}
	return points
}
