package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/events"
	"taskhub/internal/model"
)

// CreateComment inserts a comment and emits comment/created. The parent
// task row and its assignee-id set are read inside the insert's
// transaction so the event carries a snapshot consistent with the write.
func (s *SQLiteStore) CreateComment(ctx context.Context, c model.Comment) (*model.Comment, error) {
	if strings.TrimSpace(c.Content) == "" {
		return nil, fmt.Errorf("comment content must not be empty")
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowxContext(ctx, "SELECT * FROM tasks WHERE id = ?", c.TaskID)
	task, err := scanTaskRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", c.TaskID, ErrNotFound)
		}
		return nil, fmt.Errorf("getting task %s: %w", c.TaskID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO comments (id, task_id, author_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.TaskID, c.AuthorID, c.Content, c.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	var assigneeIDs []string
	if err := tx.SelectContext(ctx, &assigneeIDs,
		"SELECT worker_id FROM task_assignees WHERE task_id = ? ORDER BY worker_id",
		c.TaskID); err != nil {
		return nil, fmt.Errorf("reading assignee snapshot for task %s: %w", c.TaskID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing comment: %w", err)
	}

	if err := s.dispatcher.Emit(ctx, events.Event{
		Entity:      events.EntityComment,
		Kind:        events.EventCreated,
		Task:        &task,
		Comment:     &c,
		AssigneeIDs: assigneeIDs,
	}); err != nil {
		return &c, err
	}
	return &c, nil
}

// GetCommentsForTask retrieves a task's comments newest-first, with
// author names resolved.
func (s *SQLiteStore) GetCommentsForTask(ctx context.Context, taskID string) ([]model.Comment, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT c.id, c.task_id, c.author_id, c.content, c.created_at,
			w.first_name || ' ' || w.last_name AS author_name
		FROM comments c
		INNER JOIN workers w ON w.id = c.author_id
		WHERE c.task_id = ?
		ORDER BY c.created_at DESC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("querying comments for task %s: %w", taskID, err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID, &c.TaskID, &c.AuthorID, &c.Content, &c.CreatedAt,
			&c.AuthorName,
		); err != nil {
			return nil, fmt.Errorf("scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
