// Package providers talks to the upstream marine data and delivery services.
package providers

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"surfalert-service/internal/config"
	"surfalert-service/internal/logging"
	"surfalert-service/internal/models"
	"surfalert-service/internal/normalize"
	"surfalert-service/internal/utils"
)

// maxTideGap is the widest distance between a wave sample and the tide sample attached to it.
const maxTideGap = 90 * time.Minute

// Source yields a spot's hourly conditions starting at the current hour, and its tides.
type Source interface {
	Series(ctx context.Context, spot models.SpotProfile) ([]models.Conditions, error)
	Tides(ctx context.Context, spot models.SpotProfile) ([]models.TidePoint, error)
}

// MarineSource combines wave data from Stormglass or Open-Meteo with WorldTides heights.
type MarineSource struct {
	openMeteo  *OpenMeteoClient
	stormglass *StormglassClient
	tides      *WorldTidesClient
	location   *time.Location
	logger     *logging.Logger
	now        func() time.Time
}

// NewMarineSource wires the upstream clients behind one rate limiter.
func NewMarineSource(cfg config.Provider, logger *logging.Logger) *MarineSource {
	burst := cfg.Concurrency
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(cfg.RatePerSecond)
	if cfg.RatePerSecond <= 0 {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, burst)
	return &MarineSource{
		openMeteo:  NewOpenMeteoClient(cfg, limiter),
		stormglass: NewStormglassClient(cfg, limiter),
		tides:      NewWorldTidesClient(cfg, limiter),
		location:   loadLocation(cfg.Timezone),
		logger:     logger,
		now:        time.Now,
	}
}

// Series implements Source.
func (s *MarineSource) Series(ctx context.Context, spot models.SpotProfile) ([]models.Conditions, error) {
	log := s.logger.WithField("spot", spot.Slug)

	records, err := s.waves(ctx, spot, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUpstreamUnavailable, spot.Slug, err)
	}

	tides, err := s.Tides(ctx, spot)
	if err != nil {
		log.Warnf("Tide data unavailable: %v", err)
	}
	normalize.AttachTides(records, tides, maxTideGap)

	records = fromHour(records, s.now())
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: no samples", models.ErrUpstreamUnavailable, spot.Slug)
	}

	// Samples carry the spot zone whatever their upstream reported.
	series := make([]models.Conditions, len(records))
	for i, rec := range records {
		rec.Time = rec.Time.In(s.location)
		series[i] = normalize.Normalize(rec)
	}
	return series, nil
}

func (s *MarineSource) waves(ctx context.Context, spot models.SpotProfile, log *logging.Logger) ([]normalize.Record, error) {
	if s.stormglass != nil {
		records, err := s.stormglass.Hourly(ctx, spot.Lat, spot.Lng)
		if err == nil && len(records) > 0 {
			return records, nil
		}
		log.Warnf("Stormglass unavailable, falling back to Open-Meteo: %v", err)
	}

	var records []normalize.Record
	err := utils.Retry(ctx, log, 2, 500*time.Millisecond, func() error {
		var err error
		records, err = s.openMeteo.Hourly(ctx, spot.Lat, spot.Lng)
		return err
	})
	return records, err
}

// Tides implements Source. Without a WorldTides key, or when it fails, a
// synthetic tide curve is returned.
func (s *MarineSource) Tides(ctx context.Context, spot models.SpotProfile) ([]models.TidePoint, error) {
	start := s.now().Truncate(time.Hour)
	if s.tides == nil {
		return SyntheticTides(start, s.location), nil
	}
	points, err := s.tides.Heights(ctx, spot.Lat, spot.Lng, start)
	if err != nil || len(points) == 0 {
		s.logger.WithField("spot", spot.Slug).Warnf("WorldTides unavailable, using synthetic tides: %v", err)
		return SyntheticTides(start, s.location), nil
	}
	return points, nil
}

// fromHour drops samples before the hour containing now. It returns nil when
// every sample is older.
func fromHour(records []normalize.Record, now time.Time) []normalize.Record {
	cutoff := now.Truncate(time.Hour)
	for i, rec := range records {
		if !rec.Time.Before(cutoff) {
			return records[i:]
		}
	}
	return nil
}

// ConditionsProvider serves current conditions, forecasts and tides from a Source.
type ConditionsProvider struct {
	src Source
	now func() time.Time
}

// NewConditionsProvider wraps src.
func NewConditionsProvider(src Source) *ConditionsProvider {
	return &ConditionsProvider{src: src, now: time.Now}
}

// series trims samples a cached source may still hold from earlier hours.
func (p *ConditionsProvider) series(ctx context.Context, spot models.SpotProfile) ([]models.Conditions, error) {
	series, err := p.src.Series(ctx, spot)
	if err != nil {
		return nil, err
	}
	cutoff := p.now().Truncate(time.Hour)
	for i, c := range series {
		if !c.Time.Before(cutoff) {
			return series[i:], nil
		}
	}
	return nil, fmt.Errorf("%w: %s: no samples from the current hour", models.ErrUpstreamUnavailable, spot.Slug)
}

// FetchConditions returns the sample for the current hour.
func (p *ConditionsProvider) FetchConditions(ctx context.Context, spot models.SpotProfile) (models.Conditions, error) {
	series, err := p.series(ctx, spot)
	if err != nil {
		return models.Conditions{}, err
	}
	if len(series) == 0 {
		return models.Conditions{}, fmt.Errorf("%w: %s: no samples", models.ErrUpstreamUnavailable, spot.Slug)
	}
	return series[0], nil
}

// FetchForecast returns up to hours samples starting at the current hour.
func (p *ConditionsProvider) FetchForecast(ctx context.Context, spot models.SpotProfile, hours int) ([]models.Conditions, error) {
	series, err := p.series(ctx, spot)
	if err != nil {
		return nil, err
	}
	if hours > 0 && len(series) > hours {
		series = series[:hours]
	}
	return series, nil
}

// FetchTides returns the tide samples for the spot.
func (p *ConditionsProvider) FetchTides(ctx context.Context, spot models.SpotProfile) ([]models.TidePoint, error) {
	return p.src.Tides(ctx, spot)
}
