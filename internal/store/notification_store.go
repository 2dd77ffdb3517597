package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/model"
)

// CreateNotification inserts a notification record. Like activity
// entries, notifications are derived records and emit no further events.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (
			id, recipient_id, notification_type, title, message,
			task_id, is_read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Recipient, n.Type, n.Title, n.Message,
		n.TaskID, boolToInt(n.IsRead), n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// NotificationExists reports whether the recipient already has a
// notification of the given type for the given task. Used by the
// deadline reminder poller to avoid duplicate reminders.
func (s *SQLiteStore) NotificationExists(
	ctx context.Context,
	recipientID, taskID, notificationType string,
) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = ? AND task_id = ? AND notification_type = ?`,
		recipientID, taskID, notificationType)
	if err != nil {
		return false, fmt.Errorf("checking notification existence: %w", err)
	}
	return count > 0, nil
}

// GetNotifications retrieves a recipient's inbox newest-first.
func (s *SQLiteStore) GetNotifications(
	ctx context.Context,
	recipientID string,
	filter NotificationFilter,
) ([]model.Notification, error) {
	query := "SELECT * FROM notifications WHERE recipient_id = ?"
	if filter.UnreadOnly {
		query += " AND is_read = 0"
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var (
			n       model.Notification
			readInt int
		)
		if err := rows.Scan(
			&n.ID, &n.Recipient, &n.Type, &n.Title, &n.Message,
			&n.TaskID, &readInt, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		n.IsRead = readInt != 0
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// UnreadNotificationCount returns the recipient's unread count, shown as
// the inbox badge in the header.
func (s *SQLiteStore) UnreadNotificationCount(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = 0",
		recipientID)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

// MarkNotificationRead marks a single notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification for the
// recipient as read.
func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context, recipientID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE recipient_id = ? AND is_read = 0",
		recipientID)
	if err != nil {
		return fmt.Errorf("marking notifications read for %s: %w", recipientID, err)
	}
	return nil
}
