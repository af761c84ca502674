// Package scoring maps conditions to a 0-100 surf quality score.
//
// Score is the continuous scorer used for analysis and alert matching.
// CoarseScore is the boolean-threshold scorer used for list display.
// The two disagree near band edges and are kept separate on purpose.
package scoring

import (
	"math"

	"surfalert-service/internal/models"
)

// Component caps.
const (
	MaxWaveHeight = 40.0
	MaxWind       = 30.0
	MaxPeriod     = 20.0
	MaxTide       = 10.0
)

// Rating bands.
const (
	RatingExcellent = "Excellent"
	RatingGood      = "Good"
	RatingFair      = "Fair"
	RatingPoor      = "Poor"
)

// WaveHeightTerm scores wave height in metres. Peak 40 at 1.75 m.
func WaveHeightTerm(h float64) float64 {
	var v float64
	switch {
	case h >= 1.0 && h <= 2.5:
		v = 40 - math.Abs(h-1.75)*10
	case h > 2.5:
		v = math.Max(0, 30-(h-2.5)*5)
	default:
		v = h * 20
	}
	return clamp(v, 0, MaxWaveHeight)
}

// WindTerm scores wind speed in knots; lighter is better.
func WindTerm(w float64) float64 {
	var v float64
	if w <= 15 {
		v = 30 - w
	} else {
		v = math.Max(0, 15-(w-15)*2)
	}
	return clamp(v, 0, MaxWind)
}

// PeriodTerm scores wave period in seconds, flat above 8 s.
func PeriodTerm(p float64) float64 {
	if p >= 8 {
		return MaxPeriod
	}
	return clamp(p*2.5, 0, MaxPeriod)
}

// TideTerm scores tide height in metres, flat up to 1.5 m.
func TideTerm(t float64) float64 {
	if t <= 1.5 {
		return MaxTide
	}
	return clamp(10-(t-1.5)*5, 0, MaxTide)
}

// Score is the continuous scorer.
func Score(c models.Conditions) models.ScoreResult {
	return result(
		WaveHeightTerm(c.WaveHeight),
		WindTerm(c.WindSpeed),
		PeriodTerm(c.WavePeriod),
		TideTerm(c.TideHeight),
	)
}

// CoarseScore grants each component in full when its threshold is met.
func CoarseScore(c models.Conditions) models.ScoreResult {
	var wave, wind, period, tide float64
	if c.WaveHeight >= 1.0 && c.WaveHeight <= 2.5 {
		wave = MaxWaveHeight
	}
	if c.WindSpeed <= 15 {
		wind = MaxWind
	}
	if c.WavePeriod >= 8 {
		period = MaxPeriod
	}
	if c.TideHeight <= 1.5 {
		tide = MaxTide
	}
	return result(wave, wind, period, tide)
}

// Rating returns the band for a total score.
func Rating(total float64) string {
	switch {
	case total >= 80:
		return RatingExcellent
	case total >= 60:
		return RatingGood
	case total >= 40:
		return RatingFair
	default:
		return RatingPoor
	}
}

func result(wave, wind, period, tide float64) models.ScoreResult {
	total := clamp(wave+wind+period+tide, 0, 100)
	return models.ScoreResult{
		Score:      int(math.Round(total)),
		Total:      total,
		WaveHeight: wave,
		Wind:       wind,
		Period:     period,
		Tide:       tide,
		Rating:     Rating(total),
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
