package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Notification is the delivery log record of an AlertEvent.
type Notification struct {
	ID           uuid.UUID  `json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	PreferenceID uuid.UUID  `json:"preference_id"`
	Email        string     `json:"email"`
	SpotSlug     string     `json:"spot_slug"`
	Score        int        `json:"score"`
	Subject      string     `json:"subject"`
	Body         string     `json:"body"`
	Status       string     `json:"status"`
	LastError    string     `json:"last_error,omitempty"`
	Context      Conditions `json:"context"`
}

// NewNotification builds a log record for an event with the given delivery outcome.
func NewNotification(event AlertEvent, sendErr error) Notification {
	n := Notification{
		ID:           event.ID,
		CreatedAt:    event.CreatedAt,
		PreferenceID: event.PreferenceID,
		Email:        event.Email,
		SpotSlug:     event.SpotSlug,
		Score:        event.Score,
		Subject:      event.Subject,
		Body:         event.Message,
		Status:       StatusSent,
		Context:      event.Conditions,
	}
	if sendErr != nil {
		n.Status = StatusFailed
		n.LastError = sendErr.Error()
		return n
	}
	sent := event.CreatedAt
	n.SentAt = &sent
	return n
}
