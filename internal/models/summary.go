package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Outcome of evaluating one preference in a processing cycle.
type Outcome string

const (
	OutcomeNoMatch   Outcome = "no_match"
	OutcomeNotified  Outcome = "notified"
	OutcomeThrottled Outcome = "throttled"
	OutcomeFailed    Outcome = "failed"
)

// PreferenceResult is the result-or-error for a single preference.
type PreferenceResult struct {
	PreferenceID uuid.UUID   `json:"preference_id"`
	Email        string      `json:"email"`
	SpotSlug     string      `json:"spot_slug"`
	Outcome      Outcome     `json:"outcome"`
	Event        *AlertEvent `json:"event,omitempty"`
	Err          error       `json:"-"`
}

// CycleSummary aggregates the results of one processing cycle.
type CycleSummary struct {
	RequestID  string             `json:"request_id"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Results    []PreferenceResult `json:"results"`
}

// Count returns how many results have the given outcome.
func (s CycleSummary) Count(o Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == o {
			n++
		}
	}
	return n
}

// Events returns the alert events produced in the cycle, in result order.
func (s CycleSummary) Events() []AlertEvent {
	var events []AlertEvent
	for _, r := range s.Results {
		if r.Event != nil {
			events = append(events, *r.Event)
		}
	}
	return events
}

// String renders a short operator-facing report.
func (s CycleSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Surf alert cycle %s\n", s.RequestID)
	fmt.Fprintf(&b, "Evaluated: %d\nNotified: %d\nThrottled: %d\nNo match: %d\nFailed: %d",
		len(s.Results), s.Count(OutcomeNotified), s.Count(OutcomeThrottled),
		s.Count(OutcomeNoMatch), s.Count(OutcomeFailed))
	for _, r := range s.Results {
		if r.Outcome == OutcomeFailed && r.Err != nil {
			fmt.Fprintf(&b, "\n- %s/%s: %v", r.SpotSlug, r.Email, r.Err)
		}
	}
	return b.String()
}
