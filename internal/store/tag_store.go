package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"taskhub/internal/model"
)

// CreateTag inserts a new tag.
func (s *SQLiteStore) CreateTag(ctx context.Context, tag model.Tag) (*model.Tag, error) {
	if strings.TrimSpace(tag.Name) == "" {
		return nil, fmt.Errorf("tag name must not be empty")
	}
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tags (id, name) VALUES (?, ?)", tag.ID, tag.Name)
	if err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}
	return &tag, nil
}

// DeleteTag removes a tag. CASCADE on task_tags removes associations.
func (s *SQLiteStore) DeleteTag(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting tag %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("tag %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetTags retrieves all tags ordered by name.
func (s *SQLiteStore) GetTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// GetTagsForTask retrieves all tags associated with a task.
func (s *SQLiteStore) GetTagsForTask(ctx context.Context, taskID string) ([]model.Tag, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT t.* FROM tags t
		INNER JOIN task_tags tt ON t.id = tt.tag_id
		WHERE tt.task_id = ?
		ORDER BY t.name`, taskID)
	if err != nil {
		return nil, fmt.Errorf("querying tags for task %s: %w", taskID, err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// SetTaskTags replaces all tag associations for a task. Tag membership
// changes carry no propagation semantics, so no event is emitted.
func (s *SQLiteStore) SetTaskTags(ctx context.Context, taskID string, tagIDs []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Remove existing associations.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM task_tags WHERE task_id = ?", taskID); err != nil {
		return fmt.Errorf("clearing task tags: %w", err)
	}

	// Insert new associations.
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?)",
			taskID, tagID); err != nil {
			return fmt.Errorf("setting tag %s on task %s: %w", tagID, taskID, err)
		}
	}

	return tx.Commit()
}
