package models

import "time"

// Conditions is a normalized snapshot of marine measurements for a spot.
type Conditions struct {
	Time          time.Time `json:"time"`
	WaveHeight    float64   `json:"waveHeight"`    // m
	WavePeriod    float64   `json:"wavePeriod"`    // s
	WaveDirection float64   `json:"waveDirection"` // degrees 0-359
	WindSpeed     float64   `json:"windSpeed"`     // kt
	WindDirection string    `json:"windDirection"` // 16-point compass code
	TideHeight    float64   `json:"tideHeight"`    // m
	WaterTemp     float64   `json:"waterTemp"`     // °C
	AirTemp       float64   `json:"airTemp"`       // °C
}

// TidePoint is a single tide height sample.
type TidePoint struct {
	Time   time.Time `json:"time"`
	Height float64   `json:"height"`
	Type   string    `json:"type,omitempty"`
}

// ScoreResult holds the total surf score and its four components.
type ScoreResult struct {
	Score      int     `json:"score"`
	Total      float64 `json:"total"`
	WaveHeight float64 `json:"waveHeight"`
	Wind       float64 `json:"wind"`
	Period     float64 `json:"period"`
	Tide       float64 `json:"tide"`
	Rating     string  `json:"rating"`
}

// SkillLevel is the recommended surfer level for the analysed conditions.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// Valid reports whether s is one of the known skill levels.
func (s SkillLevel) Valid() bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

// Analysis sources.
const (
	SourceHeuristic = "heuristic"
	SourceRemote    = "remote"
)

// SurfAnalysis is the qualitative guidance produced for a spot.
type SurfAnalysis struct {
	Recommendation string     `json:"recommendation"`
	Score          int        `json:"score"`
	BestTime       string     `json:"bestTime"`
	Tips           []string   `json:"tips"`
	Warnings       []string   `json:"warnings"`
	SkillLevel     SkillLevel `json:"skillLevel"`
	Equipment      []string   `json:"equipment"`
	Source         string     `json:"source"`
}
