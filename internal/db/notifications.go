package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"surfalert-service/internal/models"
)

// CreateNotification logs a delivery attempt.
func (d *DB) CreateNotification(ctx context.Context, n models.Notification) error {
	conditions, err := json.Marshal(n.Context)
	if err != nil {
		return fmt.Errorf("failed to encode notification context: %w", err)
	}

	query := `
        INSERT INTO notifications (
            id, created_at, sent_at, preference_id, email, spot_slug, score,
            subject, body, status, last_error, context
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = d.Pool.Exec(ctx, query,
		n.ID, n.CreatedAt, n.SentAt, n.PreferenceID, n.Email, n.SpotSlug, n.Score,
		n.Subject, n.Body, n.Status, n.LastError, conditions)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetNotificationsByEmail returns the most recent notifications sent to a subscriber.
func (d *DB) GetNotificationsByEmail(ctx context.Context, email string, limit int) ([]models.Notification, error) {
	rows, err := d.Pool.Query(ctx, `
        SELECT id, created_at, sent_at, preference_id, email, spot_slug, score,
               subject, body, status, last_error, context
        FROM notifications
        WHERE email = $1
        ORDER BY created_at DESC
        LIMIT $2`, email, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications for %s: %w", email, err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var id, prefID pgtype.UUID
		var conditions []byte
		err := rows.Scan(
			&id, &n.CreatedAt, &n.SentAt, &prefID, &n.Email, &n.SpotSlug, &n.Score,
			&n.Subject, &n.Body, &n.Status, &n.LastError, &conditions,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if err := json.Unmarshal(conditions, &n.Context); err != nil {
			return nil, fmt.Errorf("failed to decode notification context: %w", err)
		}
		n.ID = id.Bytes
		n.PreferenceID = prefID.Bytes
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}
