package models

import "errors"

var (
	// ErrValidation marks malformed user input. It never reaches the engine.
	ErrValidation = errors.New("validation error")
	// ErrUpstreamUnavailable marks a conditions provider or notifier failure.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrAnalysisDegraded marks a failed remote analysis; callers fall back to the heuristic.
	ErrAnalysisDegraded = errors.New("analysis degraded")
	ErrNotFound         = errors.New("not found")
	// ErrAlreadyNotified is returned when the daily notification slot is taken.
	ErrAlreadyNotified = errors.New("already notified today")
)
