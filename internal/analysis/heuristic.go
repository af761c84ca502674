// Package analysis produces qualitative surf guidance from conditions.
package analysis

import (
	"fmt"
	"strings"

	"surfalert-service/internal/models"
)

// Output list caps.
const (
	MaxTips      = 3
	MaxWarnings  = 2
	MaxEquipment = 3
	// BestTimeWindow is how many forecast samples are considered for the best hour.
	BestTimeWindow = 12
)

// DefaultBestTime is reported when no forecast is available.
const DefaultBestTime = "early morning (6h-9h)"

// Recommendations by final score band.
const (
	RecommendExcellent = "Excellent conditions! Time to catch some waves!"
	RecommendGood      = "Good conditions for surfing. Worth the trip!"
	RecommendFair      = "Fair conditions. You can still have fun."
	RecommendPoor      = "Poor conditions. Better to wait."
)

// Analyze runs the deterministic heuristic. Each factor is evaluated in the
// order wave, wind, period, tide; list truncation drops the items added last.
func Analyze(c models.Conditions, _ models.SpotProfile, forecast []models.Conditions) models.SurfAnalysis {
	var (
		score     int
		tips      []string
		warnings  []string
		equipment []string
	)

	h := c.WaveHeight
	switch {
	case h >= 0.8 && h <= 2.0:
		score += 35
		tips = append(tips, "Wave height is ideal for most surfers")
	case h > 2.0 && h <= 3.0:
		score += 25
		warnings = append(warnings, "Big waves - watch out for the power of the water")
		equipment = append(equipment, "Larger board for extra stability")
	case h < 0.8:
		score += 15
		tips = append(tips, "Small waves - ideal for longboard or SUP")
		equipment = append(equipment, "Longboard or foam board")
	default:
		score += 10
		warnings = append(warnings, "Very big waves - experienced surfers only")
	}

	w := c.WindSpeed
	offshore := IsOffshore(c.WindDirection)
	switch {
	case w <= 10 && offshore:
		score += 30
		tips = append(tips, "Light offshore wind - perfect conditions!")
	case w <= 15 && offshore:
		score += 25
		tips = append(tips, "Moderate offshore wind - good conditions")
	case w > 20:
		score += 5
		warnings = append(warnings, "Strong wind - choppy sea and messy waves")
	default:
		score += 15
	}

	switch p := c.WavePeriod; {
	case p >= 10:
		score += 20
		tips = append(tips, "Long period - more organised and powerful waves")
	case p >= 7:
		score += 15
	default:
		score += 8
		tips = append(tips, "Short period - waves close out more")
	}

	switch t := c.TideHeight; {
	case t <= 1.2:
		score += 10
		tips = append(tips, "Low tide - best for most spots")
	case t <= 1.8:
		score += 7
	default:
		score += 3
		warnings = append(warnings, "High tide - some spots may not work well")
	}

	skill := SkillFor(h, w)
	switch skill {
	case models.SkillBeginner:
		equipment = append(equipment, "Foam board", "Safety leash")
	case models.SkillAdvanced:
		equipment = append(equipment, "Performance board", "Heavy-duty leash")
	default:
		equipment = append(equipment, "Mid-length board", "Standard leash")
	}

	switch {
	case c.WaterTemp < 24:
		equipment = append(equipment, "2mm wetsuit")
	case c.WaterTemp < 26:
		equipment = append(equipment, "Lycra or thin wetsuit")
	}

	score = clampScore(score)
	return models.SurfAnalysis{
		Recommendation: Recommendation(score),
		Score:          score,
		BestTime:       BestTime(forecast),
		Tips:           truncate(tips, MaxTips),
		Warnings:       truncate(warnings, MaxWarnings),
		SkillLevel:     skill,
		Equipment:      truncate(equipment, MaxEquipment),
		Source:         models.SourceHeuristic,
	}
}

// IsOffshore approximates offshore wind for the Ceará coast: any direction code containing E.
func IsOffshore(direction string) bool {
	d := strings.ToUpper(direction)
	return strings.Contains(d, "E") || strings.Contains(d, "NE")
}

// SkillFor returns the recommended level for wave height (m) and wind speed (kt).
func SkillFor(waveHeight, windSpeed float64) models.SkillLevel {
	switch {
	case waveHeight <= 1.2 && windSpeed <= 15:
		return models.SkillBeginner
	case waveHeight > 2.5 || windSpeed > 20:
		return models.SkillAdvanced
	default:
		return models.SkillIntermediate
	}
}

// Recommendation returns the fixed text for a final score.
func Recommendation(score int) string {
	switch {
	case score >= 80:
		return RecommendExcellent
	case score >= 60:
		return RecommendGood
	case score >= 40:
		return RecommendFair
	default:
		return RecommendPoor
	}
}

// HourScore is the simplified three-term score used to pick the best hour. Tide is ignored.
func HourScore(c models.Conditions) int {
	score := 0
	switch h := c.WaveHeight; {
	case h >= 0.8 && h <= 2.0:
		score += 40
	case h > 2.0 && h <= 3.0:
		score += 25
	default:
		score += 10
	}
	switch w := c.WindSpeed; {
	case w <= 10:
		score += 30
	case w <= 15:
		score += 20
	default:
		score += 5
	}
	switch p := c.WavePeriod; {
	case p >= 10:
		score += 20
	case p >= 7:
		score += 15
	default:
		score += 8
	}
	return score
}

// BestTime picks the highest HourScore among the first BestTimeWindow samples,
// earliest on ties, and reports a two-hour window starting at that sample.
func BestTime(forecast []models.Conditions) string {
	if len(forecast) == 0 {
		return DefaultBestTime
	}
	window := forecast
	if len(window) > BestTimeWindow {
		window = window[:BestTimeWindow]
	}
	best := 0
	bestScore := HourScore(window[0])
	for i := 1; i < len(window); i++ {
		if s := HourScore(window[i]); s > bestScore {
			best, bestScore = i, s
		}
	}
	hour := window[best].Time.Hour()
	return fmt.Sprintf("%dh-%dh", hour, (hour+2)%24)
}

func truncate(items []string, max int) []string {
	if items == nil {
		return []string{}
	}
	if len(items) > max {
		return items[:max]
	}
	return items
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
