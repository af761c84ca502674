package api

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"surfalert-service/internal/catalog"
	"surfalert-service/internal/models"
	"surfalert-service/internal/normalize"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", models.ErrValidation, fmt.Sprintf(format, args...))
}

// buildPreference validates in against the catalog and returns an active preference.
func buildPreference(in models.AlertPreferenceCreate, cat *catalog.Catalog, now time.Time) (models.AlertPreference, error) {
	email := strings.TrimSpace(in.Email)
	if !ValidEmail(email) {
		return models.AlertPreference{}, invalid("invalid email")
	}
	if _, ok := cat.Get(in.SpotSlug); !ok {
		return models.AlertPreference{}, invalid("unknown spot %q", in.SpotSlug)
	}
	if in.MinWaveHeight == nil || in.MaxWaveHeight == nil || in.MaxWindSpeed == nil || in.MinScore == nil {
		return models.AlertPreference{}, invalid("missing required fields")
	}
	if len(in.PreferredWindDirections) == 0 {
		return models.AlertPreference{}, invalid("select at least one wind direction")
	}
	dirs := make([]string, 0, len(in.PreferredWindDirections))
	seen := make(map[string]bool)
	for _, d := range in.PreferredWindDirections {
		if !normalize.IsCompassCode(d) {
			return models.AlertPreference{}, invalid("unknown wind direction %q", d)
		}
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}

	minWave, maxWave := *in.MinWaveHeight, *in.MaxWaveHeight
	if minWave < 0 || *in.MaxWindSpeed < 0 {
		return models.AlertPreference{}, invalid("wave height and wind speed must not be negative")
	}
	if minWave > maxWave {
		return models.AlertPreference{}, invalid("minWaveHeight must not exceed maxWaveHeight")
	}
	if *in.MinScore < 0 || *in.MinScore > 100 {
		return models.AlertPreference{}, invalid("minScore must be between 0 and 100")
	}

	return models.AlertPreference{
		ID:                      uuid.New(),
		Email:                   email,
		SpotSlug:                in.SpotSlug,
		MinWaveHeight:           minWave,
		MaxWaveHeight:           maxWave,
		MaxWindSpeed:            *in.MaxWindSpeed,
		PreferredWindDirections: dirs,
		MinScore:                *in.MinScore,
		Active:                  true,
		CreatedAt:               now.UTC(),
	}, nil
}
