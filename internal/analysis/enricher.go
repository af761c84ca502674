package analysis

import (
	"context"

	"surfalert-service/internal/models"
)

// Enricher produces a SurfAnalysis for conditions at a spot.
type Enricher interface {
	Enrich(ctx context.Context, c models.Conditions, spot models.SpotProfile, forecast []models.Conditions) models.SurfAnalysis
}

// HeuristicEnricher always answers with the deterministic heuristic.
type HeuristicEnricher struct{}

// Enrich implements Enricher.
func (HeuristicEnricher) Enrich(_ context.Context, c models.Conditions, spot models.SpotProfile, forecast []models.Conditions) models.SurfAnalysis {
	return Analyze(c, spot, forecast)
}
