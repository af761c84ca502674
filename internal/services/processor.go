package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"surfalert-service/internal/analysis"
	"surfalert-service/internal/catalog"
	"surfalert-service/internal/config"
	"surfalert-service/internal/db"
	"surfalert-service/internal/logging"
	"surfalert-service/internal/matcher"
	"surfalert-service/internal/models"
)

// ConditionsProvider serves normalized conditions for a spot.
type ConditionsProvider interface {
	FetchConditions(ctx context.Context, spot models.SpotProfile) (models.Conditions, error)
	FetchForecast(ctx context.Context, spot models.SpotProfile, hours int) ([]models.Conditions, error)
}

// AlertStore is the persistence the processor needs.
type AlertStore interface {
	GetLastNotified(ctx context.Context, email, spotSlug string) (*time.Time, error)
	ClaimNotification(ctx context.Context, email, spotSlug string, at time.Time) (*time.Time, error)
	ReleaseNotification(ctx context.Context, email, spotSlug string, claimedAt time.Time, prev *time.Time) error
	CreateNotification(ctx context.Context, n models.Notification) error
}

// Notifier delivers one message to a subscriber.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// EventSink receives every delivered alert event.
type EventSink interface {
	Publish(event models.AlertEvent)
}

// Processor evaluates preferences against current conditions and notifies matches.
// It holds no state between calls.
type Processor struct {
	catalog       *catalog.Catalog
	provider      ConditionsProvider
	store         AlertStore
	notifier      Notifier
	enricher      analysis.Enricher
	sinks         []EventSink
	logger        *logging.Logger
	concurrency   int
	callTimeout   time.Duration
	forecastHours int
	now           func() time.Time
}

// NewProcessor wires a processor. Concurrency, per-call timeout and forecast
// length come from the provider configuration.
func NewProcessor(cat *catalog.Catalog, provider ConditionsProvider, store AlertStore, notifier Notifier,
	enricher analysis.Enricher, cfg config.Provider, logger *logging.Logger) *Processor {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Processor{
		catalog:       cat,
		provider:      provider,
		store:         store,
		notifier:      notifier,
		enricher:      enricher,
		logger:        logger,
		concurrency:   concurrency,
		callTimeout:   timeout,
		forecastHours: cfg.ForecastHours,
		now:           time.Now,
	}
}

// AddSink registers a sink for delivered events.
func (p *Processor) AddSink(sink EventSink) {
	p.sinks = append(p.sinks, sink)
}

// spotState is the per-spot data shared by the preferences of one spot.
type spotState struct {
	profile    models.SpotProfile
	known      bool
	conditions models.Conditions
	err        error

	forecastOnce sync.Once
	forecast     []models.Conditions
}

// Process evaluates prefs. Conditions are fetched once per distinct spot with
// bounded concurrency; a failure only affects the preferences of that spot.
func (p *Processor) Process(ctx context.Context, prefs []models.AlertPreference) models.CycleSummary {
	summary := models.CycleSummary{StartedAt: p.now()}

	spots := make(map[string]*spotState)
	for _, pref := range prefs {
		if _, ok := spots[pref.SpotSlug]; ok {
			continue
		}
		profile, known := p.catalog.Get(pref.SpotSlug)
		spots[pref.SpotSlug] = &spotState{profile: profile, known: known}
	}

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for slug, st := range spots {
		if !st.known {
			continue
		}
		slug, st := slug, st
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
			defer cancel()
			st.conditions, st.err = p.provider.FetchConditions(callCtx, st.profile)
			if st.err != nil {
				p.logger.WithField("spot", slug).Errorf("Failed to fetch conditions: %v", st.err)
			}
			return nil
		})
	}
	_ = g.Wait()

	results := make([]models.PreferenceResult, len(prefs))
	var eval errgroup.Group
	eval.SetLimit(p.concurrency)
	for i, pref := range prefs {
		i, pref := i, pref
		eval.Go(func() error {
			results[i] = p.evaluate(ctx, pref, spots[pref.SpotSlug])
			return nil
		})
	}
	_ = eval.Wait()

	summary.Results = results
	summary.FinishedAt = p.now()
	return summary
}

func (p *Processor) evaluate(ctx context.Context, pref models.AlertPreference, st *spotState) models.PreferenceResult {
	res := models.PreferenceResult{
		PreferenceID: pref.ID,
		Email:        pref.Email,
		SpotSlug:     pref.SpotSlug,
	}
	log := p.logger.WithFields(map[string]interface{}{
		"preference_id": pref.ID.String(),
		"email":         pref.Email,
		"spot":          pref.SpotSlug,
	})

	if !st.known {
		return failed(res, log, fmt.Errorf("%w: unknown spot %q", models.ErrValidation, pref.SpotSlug))
	}
	if st.err != nil {
		return failed(res, log, st.err)
	}

	ok, check, _ := matcher.Explain(st.conditions, pref)
	if !ok {
		log.Debugf("No match (%s)", check)
		res.Outcome = models.OutcomeNoMatch
		return res
	}

	now := p.now()
	last, err := p.store.GetLastNotified(ctx, pref.Email, pref.SpotSlug)
	if err != nil {
		return failed(res, log, err)
	}
	if last != nil && !last.Before(db.DayStart(now)) {
		log.Debugf("Already notified today at %s", last.Format(time.RFC3339))
		res.Outcome = models.OutcomeThrottled
		return res
	}

	a := p.enricher.Enrich(ctx, st.conditions, st.profile, p.forecastFor(ctx, st))
	subject, body := RenderMessage(st.profile.Name, st.conditions, a.Score)
	event := models.AlertEvent{
		ID:           uuid.New(),
		PreferenceID: pref.ID,
		Email:        pref.Email,
		SpotSlug:     pref.SpotSlug,
		SpotName:     st.profile.Name,
		Conditions:   st.conditions,
		Score:        a.Score,
		Subject:      subject,
		Message:      body,
		CreatedAt:    now,
	}

	prev, err := p.store.ClaimNotification(ctx, pref.Email, pref.SpotSlug, now)
	if errors.Is(err, models.ErrAlreadyNotified) {
		log.Debugf("Notification slot taken by a concurrent run")
		res.Outcome = models.OutcomeThrottled
		return res
	}
	if err != nil {
		return failed(res, log, err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	sendErr := p.notifier.Send(sendCtx, pref.Email, subject, body)
	cancel()

	if logErr := p.store.CreateNotification(ctx, models.NewNotification(event, sendErr)); logErr != nil {
		log.Warnf("Failed to log notification: %v", logErr)
	}

	if sendErr != nil {
		if err := p.store.ReleaseNotification(ctx, pref.Email, pref.SpotSlug, now, prev); err != nil {
			log.Errorf("Failed to release notification slot: %v", err)
		}
		return failed(res, log, fmt.Errorf("%w: notify %s: %v", models.ErrUpstreamUnavailable, pref.Email, sendErr))
	}

	for _, sink := range p.sinks {
		sink.Publish(event)
	}
	log.Infof("Alert sent (score %d)", event.Score)
	res.Outcome = models.OutcomeNotified
	res.Event = &event
	return res
}

// forecastFor fetches the spot forecast once per cycle. A failure yields no forecast.
func (p *Processor) forecastFor(ctx context.Context, st *spotState) []models.Conditions {
	st.forecastOnce.Do(func() {
		callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
		defer cancel()
		f, err := p.provider.FetchForecast(callCtx, st.profile, p.forecastHours)
		if err != nil {
			p.logger.WithField("spot", st.profile.Slug).Warnf("Forecast unavailable: %v", err)
			return
		}
		st.forecast = f
	})
	return st.forecast
}

func failed(res models.PreferenceResult, log *logging.Logger, err error) models.PreferenceResult {
	log.Errorf("Preference failed: %v", err)
	res.Outcome = models.OutcomeFailed
	res.Err = err
	return res
}

// RenderMessage builds the alert email subject and body.
func RenderMessage(spotName string, c models.Conditions, score int) (string, string) {
	subject := fmt.Sprintf("Good conditions at %s!", spotName)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", subject)
	fmt.Fprintf(&b, "Score: %d/100\n", score)
	fmt.Fprintf(&b, "Waves: %.1fm\n", c.WaveHeight)
	fmt.Fprintf(&b, "Wind: %.0fkt %s\n", c.WindSpeed, c.WindDirection)
	fmt.Fprintf(&b, "Tide: %.1fm\n", c.TideHeight)
	switch {
	case score >= 80:
		b.WriteString("\nExcellent conditions! Don't miss this session!")
	case score >= 70:
		b.WriteString("\nVery good conditions for surfing!")
	default:
		b.WriteString("\nGood conditions for a session!")
	}
	return subject, b.String()
}
