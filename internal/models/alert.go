package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertPreference is a subscriber's stored thresholds for one spot.
type AlertPreference struct {
	ID                      uuid.UUID  `json:"id"`
	Email                   string     `json:"email"`
	SpotSlug                string     `json:"spotSlug"`
	MinWaveHeight           float64    `json:"minWaveHeight"`
	MaxWaveHeight           float64    `json:"maxWaveHeight"`
	MaxWindSpeed            float64    `json:"maxWindSpeed"`
	PreferredWindDirections []string   `json:"preferredWindDirections"`
	MinScore                float64    `json:"minScore"`
	Active                  bool       `json:"active"`
	CreatedAt               time.Time  `json:"createdAt"`
	LastNotifiedAt          *time.Time `json:"lastNotifiedAt,omitempty"`
}

// AlertPreferenceCreate is the input structure for creating a preference.
// Numeric fields are pointers so that a missing field is distinguishable from zero.
type AlertPreferenceCreate struct {
	Email                   string   `json:"email" binding:"required"`
	SpotSlug                string   `json:"spotSlug" binding:"required"`
	MinWaveHeight           *float64 `json:"minWaveHeight" binding:"required"`
	MaxWaveHeight           *float64 `json:"maxWaveHeight" binding:"required"`
	MaxWindSpeed            *float64 `json:"maxWindSpeed" binding:"required"`
	PreferredWindDirections []string `json:"preferredWindDirections"`
	MinScore                *float64 `json:"minScore" binding:"required"`
}

// AlertEvent is produced when a preference matches; it is handed to the
// notifier and then discarded.
type AlertEvent struct {
	ID           uuid.UUID  `json:"id"`
	PreferenceID uuid.UUID  `json:"preferenceId"`
	Email        string     `json:"email"`
	SpotSlug     string     `json:"spotSlug"`
	SpotName     string     `json:"spotName"`
	Conditions   Conditions `json:"conditions"`
	Score        int        `json:"score"`
	Subject      string     `json:"subject"`
	Message      string     `json:"message"`
	CreatedAt    time.Time  `json:"createdAt"`
}
