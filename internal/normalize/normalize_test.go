package normalize

import (
	"math"
	"testing"
	"time"

	"surfalert-service/internal/models"
)

func TestDegreesToCompass(t *testing.T) {
	tests := []struct {
		deg  float64
		want string
	}{
		{0, "N"},
		{11.2, "N"},
		{11.25, "NNE"},
		{45, "NE"},
		{90, "E"},
		{180, "S"},
		{225, "SW"},
		{348.75, "N"},
		{359, "N"},
		{360, "N"},
		{-45, "NW"},
		{405, "NE"},
		{math.NaN(), "N"},
	}

	for _, tt := range tests {
		if got := DegreesToCompass(tt.deg); got != tt.want {
			t.Errorf("DegreesToCompass(%v) = %s, want %s", tt.deg, got, tt.want)
		}
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"ne", "NE"},
		{" ENE ", "ENE"},
		{"90", "E"},
		{"202.5", "SSW"},
		{"northeast", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Direction(tt.raw); got != tt.want {
			t.Errorf("Direction(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeDefaults(t *testing.T) {
	at := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	c := Normalize(Record{
		Time:             at,
		WaveHeight:       Float(1.4),
		WavePeriod:       Float(9),
		WaveDirection:    Float(-10),
		WindSpeed:        Float(-3),
		WindDirectionDeg: Float(67.5),
	})

	if !c.Time.Equal(at) {
		t.Errorf("Time = %v, want %v", c.Time, at)
	}
	if c.WaveHeight != 1.4 || c.WavePeriod != 9 {
		t.Errorf("wave = %v/%v", c.WaveHeight, c.WavePeriod)
	}
	if c.WaveDirection != 350 {
		t.Errorf("WaveDirection = %v, want 350", c.WaveDirection)
	}
	if c.WindSpeed != 0 {
		t.Errorf("negative wind speed should clamp to 0, got %v", c.WindSpeed)
	}
	if c.WindDirection != "ENE" {
		t.Errorf("WindDirection = %s, want ENE", c.WindDirection)
	}
	if c.TideHeight != DefaultTideHeight {
		t.Errorf("TideHeight = %v, want default %v", c.TideHeight, DefaultTideHeight)
	}
	if c.WaterTemp != DefaultWaterTemp || c.AirTemp != DefaultAirTemp {
		t.Errorf("temps = %v/%v, want defaults", c.WaterTemp, c.AirTemp)
	}
}

func TestNormalizePrefersCompassCode(t *testing.T) {
	c := Normalize(Record{WindDirection: "sw", WindDirectionDeg: Float(45), WaterTemp: Float(23)})
	if c.WindDirection != "SW" {
		t.Errorf("WindDirection = %s, want SW", c.WindDirection)
	}
	if c.WaterTemp != 23 {
		t.Errorf("WaterTemp = %v, want 23", c.WaterTemp)
	}
}

func TestAttachTides(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{
		{Time: base},
		{Time: base.Add(time.Hour)},
		{Time: base.Add(10 * time.Hour)},
	}
	tides := []models.TidePoint{
		{Time: base.Add(10 * time.Minute), Height: 0.8},
		{Time: base.Add(50 * time.Minute), Height: 1.1},
	}

	AttachTides(records, tides, time.Hour)

	if records[0].TideHeight == nil || *records[0].TideHeight != 0.8 {
		t.Errorf("record 0 tide = %v, want 0.8", records[0].TideHeight)
	}
	if records[1].TideHeight == nil || *records[1].TideHeight != 1.1 {
		t.Errorf("record 1 tide = %v, want 1.1", records[1].TideHeight)
	}
	if records[2].TideHeight != nil {
		t.Errorf("record 2 should have no tide, got %v", *records[2].TideHeight)
	}
}
