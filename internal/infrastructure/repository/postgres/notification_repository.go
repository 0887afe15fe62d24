package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
)

const defaultNotificationLimit = 50

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Notify(ctx context.Context, n domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	var metadata any
	if n.Metadata != nil {
		data, err := json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metadata = data
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO notifications (id, user_type, user_id, rfp_id, type, title, message, metadata, is_read, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		n.ID, n.UserType, n.UserID, n.RFPID, n.Type, n.Title, n.Message,
		metadata, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByVendor(ctx context.Context, vendorID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_type, user_id, rfp_id, type, title, message, metadata, is_read, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`, vendorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		var rfpID sql.NullString
		var metadataRaw []byte
		err := rows.Scan(&n.ID, &n.UserType, &n.UserID, &rfpID, &n.Type, &n.Title, &n.Message, &metadataRaw, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.RFPID = rfpID.String
		if len(metadataRaw) > 0 {
			if err := json.Unmarshal(metadataRaw, &n.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}
