package scoring

import (
	"math"
	"math/rand"
	"testing"

	"surfalert-service/internal/models"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestScoreScenarios(t *testing.T) {
	tests := []struct {
		name       string
		cond       models.Conditions
		wantScore  int
		wantRating string
		wantParts  [4]float64
	}{
		{
			name:       "perfect",
			cond:       models.Conditions{WaveHeight: 1.75, WindSpeed: 0, WavePeriod: 8, TideHeight: 1.0},
			wantScore:  100,
			wantRating: RatingExcellent,
			wantParts:  [4]float64{40, 30, 20, 10},
		},
		{
			name:       "big blown out",
			cond:       models.Conditions{WaveHeight: 3.5, WindSpeed: 25, WavePeriod: 5, TideHeight: 2.0},
			wantScore:  45,
			wantRating: RatingFair,
			wantParts:  [4]float64{25, 0, 12.5, 7.5},
		},
		{
			name:       "moderate wind",
			cond:       models.Conditions{WaveHeight: 1.75, WindSpeed: 10, WavePeriod: 8, TideHeight: 1.0},
			wantScore:  90,
			wantRating: RatingExcellent,
			wantParts:  [4]float64{40, 20, 20, 10},
		},
		{
			name:       "flat",
			cond:       models.Conditions{WaveHeight: 0, WindSpeed: 40, WavePeriod: 0, TideHeight: 5},
			wantScore:  0,
			wantRating: RatingPoor,
			wantParts:  [4]float64{0, 0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.cond)
			if got.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.Rating != tt.wantRating {
				t.Errorf("Rating = %s, want %s", got.Rating, tt.wantRating)
			}
			parts := [4]float64{got.WaveHeight, got.Wind, got.Period, got.Tide}
			for i := range parts {
				if !near(parts[i], tt.wantParts[i]) {
					t.Errorf("component %d = %v, want %v", i, parts[i], tt.wantParts[i])
				}
			}
		})
	}
}

func TestWaveHeightTermPeaksAtIdeal(t *testing.T) {
	if got := WaveHeightTerm(1.75); got != 40 {
		t.Fatalf("WaveHeightTerm(1.75) = %v, want 40", got)
	}

	prev := WaveHeightTerm(1.75)
	for h := 1.80; h <= 2.5+eps; h += 0.05 {
		v := WaveHeightTerm(h)
		if v >= prev {
			t.Errorf("term not decreasing above peak at h=%.2f: %v >= %v", h, v, prev)
		}
		prev = v
	}

	prev = WaveHeightTerm(1.75)
	for h := 1.70; h >= 1.0-eps; h -= 0.05 {
		v := WaveHeightTerm(h)
		if v >= prev {
			t.Errorf("term not decreasing below peak at h=%.2f: %v >= %v", h, v, prev)
		}
		prev = v
	}
}

func TestTermBoundaries(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) float64
		in   float64
		want float64
	}{
		{"wave band low edge", WaveHeightTerm, 1.0, 32.5},
		{"wave band high edge", WaveHeightTerm, 2.5, 32.5},
		{"wave just above band", WaveHeightTerm, 3.0, 27.5},
		{"wave huge", WaveHeightTerm, 10, 0},
		{"wave small", WaveHeightTerm, 0.5, 10},
		{"wind threshold", WindTerm, 15, 15},
		{"wind above threshold", WindTerm, 16, 13},
		{"wind floor", WindTerm, 30, 0},
		{"period threshold", PeriodTerm, 8, 20},
		{"period ramp", PeriodTerm, 4, 10},
		{"period long", PeriodTerm, 16, 20},
		{"tide threshold", TideTerm, 1.5, 10},
		{"tide above", TideTerm, 2.5, 5},
		{"tide floor", TideTerm, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); !near(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreAlwaysInRange(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		c := models.Conditions{
			WaveHeight: r.Float64() * 12,
			WindSpeed:  r.Float64() * 60,
			WavePeriod: r.Float64() * 25,
			TideHeight: r.Float64() * 6,
		}
		got := Score(c)
		if got.Score < 0 || got.Score > 100 || got.Total < 0 || got.Total > 100 {
			t.Fatalf("score out of range for %+v: %+v", c, got)
		}
		if got.WaveHeight > MaxWaveHeight || got.Wind > MaxWind || got.Period > MaxPeriod || got.Tide > MaxTide {
			t.Fatalf("component above cap for %+v: %+v", c, got)
		}
		if got.WaveHeight < 0 || got.Wind < 0 || got.Period < 0 || got.Tide < 0 {
			t.Fatalf("negative component for %+v: %+v", c, got)
		}
		if !near(got.Total, got.WaveHeight+got.Wind+got.Period+got.Tide) {
			t.Fatalf("total %v is not the sum of components %+v", got.Total, got)
		}
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	c := models.Conditions{WaveHeight: 2.1, WindSpeed: 12.3, WavePeriod: 7.1, TideHeight: 1.9}
	first := Score(c)
	second := Score(c)
	if first != second {
		t.Errorf("Score not deterministic: %+v vs %+v", first, second)
	}
}

func TestCoarseScore(t *testing.T) {
	tests := []struct {
		name       string
		cond       models.Conditions
		wantScore  int
		wantRating string
	}{
		{"all thresholds met", models.Conditions{WaveHeight: 1.0, WindSpeed: 15, WavePeriod: 8, TideHeight: 1.5}, 100, RatingExcellent},
		{"waves too big", models.Conditions{WaveHeight: 2.6, WindSpeed: 5, WavePeriod: 12, TideHeight: 0.5}, 60, RatingGood},
		{"only waves", models.Conditions{WaveHeight: 2.0, WindSpeed: 20, WavePeriod: 6, TideHeight: 2}, 40, RatingFair},
		{"nothing", models.Conditions{WaveHeight: 0.4, WindSpeed: 25, WavePeriod: 5, TideHeight: 2}, 0, RatingPoor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoarseScore(tt.cond)
			if got.Score != tt.wantScore || got.Rating != tt.wantRating {
				t.Errorf("CoarseScore = %d/%s, want %d/%s", got.Score, got.Rating, tt.wantScore, tt.wantRating)
			}
		})
	}
}

func TestScorersDisagreeNearBandEdge(t *testing.T) {
	c := models.Conditions{WaveHeight: 2.5, WindSpeed: 15, WavePeriod: 8, TideHeight: 1.5}
	if CoarseScore(c).Score != 100 {
		t.Errorf("coarse = %d, want 100", CoarseScore(c).Score)
	}
	if Score(c).Score != 78 {
		t.Errorf("continuous = %d, want 78", Score(c).Score)
	}
}

func TestRating(t *testing.T) {
	tests := []struct {
		total float64
		want  string
	}{
		{100, RatingExcellent},
		{80, RatingExcellent},
		{79.9, RatingGood},
		{60, RatingGood},
		{40, RatingFair},
		{39.99, RatingPoor},
		{0, RatingPoor},
	}
	for _, tt := range tests {
		if got := Rating(tt.total); got != tt.want {
			t.Errorf("Rating(%v) = %s, want %s", tt.total, got, tt.want)
		}
	}
}
