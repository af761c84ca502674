// Package normalize converts heterogeneous provider records into models.Conditions.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"surfalert-service/internal/models"
)

// Defaults used when a provider omits a field.
const (
	DefaultWaterTemp  = 27.0
	DefaultAirTemp    = 30.0
	DefaultTideHeight = 1.0
)

// CompassPoints are the 16 compass codes in clockwise order starting at north.
var CompassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Record is a raw provider sample. Nil fields are unknown.
type Record struct {
	Time             time.Time
	WaveHeight       *float64
	WavePeriod       *float64
	WaveDirection    *float64
	WindSpeed        *float64
	WindDirectionDeg *float64
	WindDirection    string
	TideHeight       *float64
	WaterTemp        *float64
	AirTemp          *float64
}

// Float returns a pointer to v, for building records.
func Float(v float64) *float64 {
	return &v
}

// DegreesToCompass maps a bearing to the nearest of the 16 compass codes.
func DegreesToCompass(deg float64) string {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return CompassPoints[0]
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	idx := int(math.Round(deg/22.5)) % 16
	return CompassPoints[idx]
}

// IsCompassCode reports whether s is one of the 16 compass codes.
func IsCompassCode(s string) bool {
	for _, p := range CompassPoints {
		if p == s {
			return true
		}
	}
	return false
}

// Direction normalizes a wind direction given as a compass code or as raw degrees.
// It returns "" when the value cannot be interpreted.
func Direction(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if IsCompassCode(s) {
		return s
	}
	if deg, err := strconv.ParseFloat(s, 64); err == nil {
		return DegreesToCompass(deg)
	}
	return ""
}

// Normalize produces canonical conditions from a raw record, clamping
// negative measurements to zero and filling unknown fields with defaults.
func Normalize(rec Record) models.Conditions {
	c := models.Conditions{
		Time:       rec.Time,
		WaveHeight: nonNegative(rec.WaveHeight, 0),
		WavePeriod: nonNegative(rec.WavePeriod, 0),
		WindSpeed:  nonNegative(rec.WindSpeed, 0),
		TideHeight: nonNegative(rec.TideHeight, DefaultTideHeight),
		WaterTemp:  finite(rec.WaterTemp, DefaultWaterTemp),
		AirTemp:    finite(rec.AirTemp, DefaultAirTemp),
	}

	if rec.WaveDirection != nil && isFinite(*rec.WaveDirection) {
		d := math.Mod(*rec.WaveDirection, 360)
		if d < 0 {
			d += 360
		}
		c.WaveDirection = d
	}

	switch {
	case rec.WindDirection != "" && Direction(rec.WindDirection) != "":
		c.WindDirection = Direction(rec.WindDirection)
	case rec.WindDirectionDeg != nil:
		c.WindDirection = DegreesToCompass(*rec.WindDirectionDeg)
	default:
		c.WindDirection = CompassPoints[0]
	}
	return c
}

// DefaultConditions are served for display when every upstream source failed.
func DefaultConditions(at time.Time) models.Conditions {
	return models.Conditions{
		Time:          at,
		WaveHeight:    1.2,
		WavePeriod:    8,
		WaveDirection: 45,
		WindSpeed:     15,
		WindDirection: "NE",
		TideHeight:    DefaultTideHeight,
		WaterTemp:     DefaultWaterTemp,
		AirTemp:       DefaultAirTemp,
	}
}

// AttachTides sets each record's tide height from the tide sample closest in time,
// leaving records without a sample within maxGap untouched.
func AttachTides(records []Record, tides []models.TidePoint, maxGap time.Duration) {
	if len(tides) == 0 {
		return
	}
	for i := range records {
		best := -1
		var bestGap time.Duration
		for j, tp := range tides {
			gap := records[i].Time.Sub(tp.Time)
			if gap < 0 {
				gap = -gap
			}
			if best == -1 || gap < bestGap {
				best, bestGap = j, gap
			}
		}
		if best >= 0 && bestGap <= maxGap {
			records[i].TideHeight = Float(tides[best].Height)
		}
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nonNegative(v *float64, def float64) float64 {
	if v == nil || !isFinite(*v) {
		return def
	}
	if *v < 0 {
		return 0
	}
	return *v
}

func finite(v *float64, def float64) float64 {
	if v == nil || !isFinite(*v) {
		return def
	}
	return *v
}
