package models

import "time"

// Task reasons.
const (
	ReasonSchedule = "schedule"
	ReasonKafka    = "kafka"
	ReasonManual   = "manual"
)

// Task is a queued request to run an alert processing cycle.
// An empty SpotSlug means every spot.
type Task struct {
	RequestID string    `json:"request_id"`
	SpotSlug  string    `json:"spot_slug,omitempty"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
