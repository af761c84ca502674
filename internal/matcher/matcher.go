// Package matcher decides whether current conditions satisfy an alert preference.
package matcher

import (
	"surfalert-service/internal/models"
	"surfalert-service/internal/scoring"
)

// Check names a matcher filter.
type Check string

const (
	CheckNone      Check = ""
	CheckWave      Check = "wave_height"
	CheckWind      Check = "wind_speed"
	CheckDirection Check = "wind_direction"
	CheckScore     Check = "score"
)

// Matches reports whether c satisfies every filter of pref.
func Matches(c models.Conditions, pref models.AlertPreference) bool {
	ok, _, _ := Explain(c, pref)
	return ok
}

// Explain evaluates the filters in order wave height, wind speed, wind
// direction, score and stops at the first failure, which it returns.
// The score is computed only when the first three filters pass.
func Explain(c models.Conditions, pref models.AlertPreference) (bool, Check, models.ScoreResult) {
	if c.WaveHeight < pref.MinWaveHeight || c.WaveHeight > pref.MaxWaveHeight {
		return false, CheckWave, models.ScoreResult{}
	}
	if c.WindSpeed > pref.MaxWindSpeed {
		return false, CheckWind, models.ScoreResult{}
	}
	if !containsDirection(pref.PreferredWindDirections, c.WindDirection) {
		return false, CheckDirection, models.ScoreResult{}
	}
	s := scoring.Score(c)
	if s.Total < pref.MinScore {
		return false, CheckScore, s
	}
	return true, CheckNone, s
}

func containsDirection(dirs []string, d string) bool {
	for _, x := range dirs {
		if x == d {
			return true
		}
	}
	return false
}
