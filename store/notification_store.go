package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/castworks/designdesk/model"
)

// NotificationStore is the per-user notification feed. Every mutation
// checks ownership: a notification is only visible to, and mutable by,
// its user.
type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db}
}

// insertChunkSize bounds one fanout INSERT so a large user population does
// not turn into a single unbounded write.
const insertChunkSize = 500

// List returns the user's notifications newest first, up to limit,
// optionally restricted to unread ones.
func (s *NotificationStore) List(ctx context.Context, userID string, limit int, unreadOnly bool) ([]model.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, data, read, created_at
		FROM notification
		WHERE user_id = ?`
	args := []any{userID}
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// UnreadCount counts every unread notification of the user, regardless of
// any listing limit.
func (s *NotificationStore) UnreadCount(ctx context.Context, userID string) (count int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM notification
		WHERE user_id = ?
			AND read = 0`,
		userID,
	).Scan(&count)
	return
}

// MarkRead sets the read flag. ErrUnauthorized if the caller does not own
// the notification; the record stays untouched in that case.
func (s *NotificationStore) MarkRead(ctx context.Context, id, userID string) (model.Notification, error) {
	n, err := s.get(ctx, id)
	if err != nil {
		return n, err
	}
	if n.UserID != userID {
		return model.Notification{}, ErrUnauthorized
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE notification
		SET read = 1
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return n, err
	}

	n.Read = true
	return n, nil
}

// Delete hard-deletes a notification after the same ownership check.
func (s *NotificationStore) Delete(ctx context.Context, id, userID string) error {
	n, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrUnauthorized
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM notification
		WHERE id = ?`,
		id,
	)
	return err
}

// CreateBatch persists fanout output in chunked multi-row inserts.
func (s *NotificationStore) CreateBatch(ctx context.Context, notifications []model.Notification) error {
	for len(notifications) > 0 {
		chunk := notifications
		if len(chunk) > insertChunkSize {
			chunk = chunk[:insertChunkSize]
		}
		notifications = notifications[len(chunk):]

		query := `
			INSERT INTO notification (id, user_id, type, title, message, data, read, created_at)
			VALUES ` + strings.TrimSuffix(strings.Repeat("(?, ?, ?, ?, ?, ?, ?, ?),", len(chunk)), ",")

		args := make([]any, 0, len(chunk)*8)
		for _, n := range chunk {
			var dataJson []byte
			if n.Data != nil {
				var err error
				dataJson, err = json.Marshal(n.Data)
				if err != nil {
					return err
				}
			}
			args = append(args, n.ID, n.UserID, n.Type, n.Title, n.Message, string(dataJson), n.Read, n.CreatedAt)
		}

		_, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
	}
	return nil
}

// PurgeExpired removes notifications created before the cutoff, read or
// not. Retention is time-based only.
func (s *NotificationStore) PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM notification
		WHERE created_at < ?`,
		olderThan,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *NotificationStore) get(ctx context.Context, id string) (model.Notification, error) {
	n, err := scanNotification(s.db.QueryRowContext(ctx, `
		SELECT id, user_id, type, title, message, data, read, created_at
		FROM notification
		WHERE id = ?`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return n, ErrNotFound
	}
	return n, err
}

func scanNotification(row interface{ Scan(...any) error }) (n model.Notification, err error) {
	var data string
	err = row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &data, &n.Read, &n.CreatedAt)
	if err != nil {
		return
	}
	if data != "" {
		err = json.Unmarshal([]byte(data), &n.Data)
	}
	return
}
