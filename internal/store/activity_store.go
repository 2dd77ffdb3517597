package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taskhub/internal/model"
)

// CreateActivity appends an activity log entry. Entries are derived
// records: the engine writes them, nothing ever updates or deletes them,
// and their writes emit no further events.
func (s *SQLiteStore) CreateActivity(ctx context.Context, a model.ActivityLog) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, task_id, user_id, activity_type, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.TaskID, a.UserID, a.ActivityType, a.Description, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating activity log entry: %w", err)
	}
	return nil
}

// ActivityForTask retrieves a task's activity entries newest-first, with
// user names resolved where the acting worker still exists.
func (s *SQLiteStore) ActivityForTask(ctx context.Context, taskID string) ([]model.ActivityLog, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT a.id, a.task_id, a.user_id, a.activity_type, a.description, a.created_at,
			COALESCE(w.first_name || ' ' || w.last_name, '') AS user_name
		FROM activity_log a
		LEFT JOIN workers w ON w.id = a.user_id
		WHERE a.task_id = ?
		ORDER BY a.created_at DESC, a.id DESC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("querying activity for task %s: %w", taskID, err)
	}
	defer rows.Close()
	return collectActivity(rows)
}

// RecentActivity retrieves the latest activity entries across all tasks.
func (s *SQLiteStore) RecentActivity(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryxContext(ctx, `
		SELECT a.id, a.task_id, a.user_id, a.activity_type, a.description, a.created_at,
			COALESCE(w.first_name || ' ' || w.last_name, '') AS user_name
		FROM activity_log a
		LEFT JOIN workers w ON w.id = a.user_id
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent activity: %w", err)
	}
	defer rows.Close()
	return collectActivity(rows)
}

// collectActivity scans activity rows that include the joined user name.
func collectActivity(rows *sqlx.Rows) ([]model.ActivityLog, error) {
	var entries []model.ActivityLog
	for rows.Next() {
		var a model.ActivityLog
		if err := rows.Scan(
			&a.ID, &a.TaskID, &a.UserID, &a.ActivityType, &a.Description,
			&a.CreatedAt, &a.UserName,
		); err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}
