package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"surfalert-service/internal/models"
)

const preferenceColumns = `
	id, email, spot_slug, min_wave_height, max_wave_height, max_wind_speed,
	preferred_wind_directions, min_score, active, created_at, last_notified_at`

// CreatePreference inserts a new alert preference.
func (d *DB) CreatePreference(ctx context.Context, p models.AlertPreference) error {
	query := `
    INSERT INTO alert_preferences (` + preferenceColumns + `)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := d.Pool.Exec(ctx, query,
		p.ID,
		p.Email,
		p.SpotSlug,
		p.MinWaveHeight,
		p.MaxWaveHeight,
		p.MaxWindSpeed,
		p.PreferredWindDirections,
		p.MinScore,
		p.Active,
		p.CreatedAt,
		p.LastNotifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert preference: %w", err)
	}
	return nil
}

// GetPreferenceByID returns models.ErrNotFound when no row matches.
func (d *DB) GetPreferenceByID(ctx context.Context, id uuid.UUID) (models.AlertPreference, error) {
	row := d.Pool.QueryRow(ctx, `SELECT `+preferenceColumns+` FROM alert_preferences WHERE id = $1`, id)
	p, err := scanPreference(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.AlertPreference{}, fmt.Errorf("alert preference %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.AlertPreference{}, fmt.Errorf("failed to get alert preference %s: %w", id, err)
	}
	return p, nil
}

// GetPreferencesByEmail lists a subscriber's preferences, newest first.
func (d *DB) GetPreferencesByEmail(ctx context.Context, email string) ([]models.AlertPreference, error) {
	rows, err := d.Pool.Query(ctx, `
	SELECT `+preferenceColumns+`
	FROM alert_preferences
	WHERE email = $1
	ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get alert preferences for %s: %w", email, err)
	}
	return collectPreferences(rows)
}

// ListActivePreferences returns every active preference.
func (d *DB) ListActivePreferences(ctx context.Context) ([]models.AlertPreference, error) {
	rows, err := d.Pool.Query(ctx, `
	SELECT `+preferenceColumns+`
	FROM alert_preferences
	WHERE active
	ORDER BY spot_slug, created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active alert preferences: %w", err)
	}
	return collectPreferences(rows)
}

// DeactivatePreference turns a preference off without deleting it.
func (d *DB) DeactivatePreference(ctx context.Context, id uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `UPDATE alert_preferences SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate alert preference %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("alert preference %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// DeletePreference removes a preference.
func (d *DB) DeletePreference(ctx context.Context, id uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `DELETE FROM alert_preferences WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert preference %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("alert preference %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// GetLastNotified returns nil when the subscriber was never notified for the spot.
func (d *DB) GetLastNotified(ctx context.Context, email, spotSlug string) (*time.Time, error) {
	var last time.Time
	err := d.Pool.QueryRow(ctx, `
	SELECT last_notified_at FROM alert_throttle
	WHERE email = $1 AND spot_slug = $2`, email, spotSlug).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last notification for %s/%s: %w", email, spotSlug, err)
	}
	return &last, nil
}

// ClaimNotification atomically sets the subscriber's last-notified time for the
// spot to at, provided it is unset or on an earlier UTC day. It returns the
// previous value so a failed delivery can release the claim, or
// models.ErrAlreadyNotified when another run already holds today's slot.
func (d *DB) ClaimNotification(ctx context.Context, email, spotSlug string, at time.Time) (*time.Time, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim: %w", err)
	}
	defer tx.Rollback(ctx)

	var prev *time.Time
	err = tx.QueryRow(ctx, `
	SELECT last_notified_at FROM alert_throttle
	WHERE email = $1 AND spot_slug = $2
	FOR UPDATE`, email, spotSlug).Scan(&prev)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read throttle for %s/%s: %w", email, spotSlug, err)
	}
	if prev != nil && !prev.Before(DayStart(at)) {
		return nil, models.ErrAlreadyNotified
	}

	// A concurrent first insert loses here through the conflict clause.
	var claimed time.Time
	err = tx.QueryRow(ctx, `
	INSERT INTO alert_throttle (email, spot_slug, last_notified_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (email, spot_slug) DO UPDATE
	SET last_notified_at = EXCLUDED.last_notified_at
	WHERE alert_throttle.last_notified_at < $4
	RETURNING last_notified_at`, email, spotSlug, at, DayStart(at)).Scan(&claimed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrAlreadyNotified
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim notification for %s/%s: %w", email, spotSlug, err)
	}

	if _, err := tx.Exec(ctx, `
	UPDATE alert_preferences SET last_notified_at = $3
	WHERE email = $1 AND spot_slug = $2`, email, spotSlug, at); err != nil {
		return nil, fmt.Errorf("failed to stamp alert preferences: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}
	return prev, nil
}

// ReleaseNotification undoes a claim made at claimedAt, restoring prev.
// It is a no-op if the slot has since been claimed again.
func (d *DB) ReleaseNotification(ctx context.Context, email, spotSlug string, claimedAt time.Time, prev *time.Time) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin release: %w", err)
	}
	defer tx.Rollback(ctx)

	if prev == nil {
		_, err = tx.Exec(ctx, `
		DELETE FROM alert_throttle
		WHERE email = $1 AND spot_slug = $2 AND last_notified_at = $3`, email, spotSlug, claimedAt)
	} else {
		_, err = tx.Exec(ctx, `
		UPDATE alert_throttle SET last_notified_at = $4
		WHERE email = $1 AND spot_slug = $2 AND last_notified_at = $3`, email, spotSlug, claimedAt, *prev)
	}
	if err != nil {
		return fmt.Errorf("failed to release notification for %s/%s: %w", email, spotSlug, err)
	}

	if _, err := tx.Exec(ctx, `
	UPDATE alert_preferences SET last_notified_at = $4
	WHERE email = $1 AND spot_slug = $2 AND last_notified_at = $3`, email, spotSlug, claimedAt, prev); err != nil {
		return fmt.Errorf("failed to restore alert preferences: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit release: %w", err)
	}
	return nil
}

// DayStart is midnight UTC of the day containing t.
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func scanPreference(row pgx.Row) (models.AlertPreference, error) {
	var p models.AlertPreference
	var id pgtype.UUID
	err := row.Scan(
		&id, &p.Email, &p.SpotSlug, &p.MinWaveHeight, &p.MaxWaveHeight, &p.MaxWindSpeed,
		&p.PreferredWindDirections, &p.MinScore, &p.Active, &p.CreatedAt, &p.LastNotifiedAt,
	)
	if err != nil {
		return models.AlertPreference{}, err
	}
	p.ID = id.Bytes
	return p, nil
}

func collectPreferences(rows pgx.Rows) ([]models.AlertPreference, error) {
	defer rows.Close()

	prefs := []models.AlertPreference{}
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert preferences: %w", err)
	}
	return prefs, nil
}
