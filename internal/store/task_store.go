package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taskhub/internal/events"
	"taskhub/internal/model"
)

// CreateTask validates and inserts a new task, then emits task/created.
// Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateTask(ctx context.Context, t model.Task) (*model.Task, error) {
	if strings.TrimSpace(t.Name) == "" {
		return nil, fmt.Errorf("task name must not be empty")
	}
	if err := model.ValidateDeadline(t.Deadline, time.Now()); err != nil {
		return nil, err
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, name, description, deadline, is_completed, priority,
			task_type_id, project_id, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, t.Deadline.UTC(), boolToInt(t.IsCompleted),
		t.Priority, t.TaskTypeID, t.ProjectID, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	if err := s.dispatcher.Emit(ctx, events.Event{
		Entity: events.EntityTask,
		Kind:   events.EventCreated,
		Task:   &t,
	}); err != nil {
		return &t, err
	}
	return &t, nil
}

// UpdateTask persists a task's mutable fields and emits task/updated with
// the new state. The deadline is not re-validated here: an old task whose
// deadline has since passed must stay editable.
func (s *SQLiteStore) UpdateTask(ctx context.Context, t model.Task) (*model.Task, error) {
	if strings.TrimSpace(t.Name) == "" {
		return nil, fmt.Errorf("task name must not be empty")
	}
	t.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			name = ?, description = ?, deadline = ?, is_completed = ?,
			priority = ?, task_type_id = ?, project_id = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.Description, t.Deadline.UTC(), boolToInt(t.IsCompleted),
		t.Priority, t.TaskTypeID, t.ProjectID, t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating task %s: %w", t.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("task %s: %w", t.ID, ErrNotFound)
	}

	if err := s.dispatcher.Emit(ctx, events.Event{
		Entity: events.EntityTask,
		Kind:   events.EventUpdated,
		Task:   &t,
	}); err != nil {
		return &t, err
	}
	return &t, nil
}

// DeleteTask removes a task. Cascades to assignees, tags, comments,
// activity log entries, and notifications per the schema.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetTaskByID retrieves a single task with its assignees and tags.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM tasks WHERE id = ?", id)
	t, err := scanTaskRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	assignees, err := s.getAssignees(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Assignees = assignees

	tags, err := s.GetTagsForTask(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Tags = tags

	return &t, nil
}

// GetTasks retrieves tasks matching the provided filter options.
func (s *SQLiteStore) GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	var conditions []string
	var args []interface{}

	switch {
	case filter.Status != nil && *filter.Status == "completed":
		conditions = append(conditions, "is_completed = 1")
	case filter.Status != nil && *filter.Status == "incomplete":
		conditions = append(conditions, "is_completed = 0")
	}
	if filter.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, *filter.Priority)
	}
	if filter.ProjectID != nil {
		conditions = append(conditions, "project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.AssigneeID != nil {
		conditions = append(conditions,
			"id IN (SELECT task_id FROM task_assignees WHERE worker_id = ?)")
		args = append(args, *filter.AssigneeID)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "(name LIKE ? OR description LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}

	query := "SELECT * FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	// Determine sort column.
	sortBy := "created_at"
	if filter.SortBy != "" {
		allowedSorts := map[string]bool{
			"name":       true,
			"deadline":   true,
			"priority":   true,
			"created_at": true,
			"updated_at": true,
		}
		if allowedSorts[filter.SortBy] {
			sortBy = filter.SortBy
		}
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tasks {
		assignees, err := s.getAssignees(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Assignees = assignees
	}

	return tasks, nil
}

// AddAssignees adds workers to a task's assignee set and emits
// task/relationship_added carrying the ids actually added plus a snapshot
// of the full post-change assignee set, both read under the same
// transaction as the membership write.
func (s *SQLiteStore) AddAssignees(ctx context.Context, taskID string, workerIDs []string) error {
	if len(workerIDs) == 0 {
		return nil
	}

	task, added, snapshot, err := s.changeAssignees(ctx, taskID, workerIDs, true)
	if err != nil {
		return err
	}
	if len(added) == 0 {
		return nil
	}

	return s.dispatcher.Emit(ctx, events.Event{
		Entity:      events.EntityTask,
		Kind:        events.EventRelationAdded,
		Task:        task,
		Relation:    events.RelationAssignees,
		ChangedIDs:  added,
		AssigneeIDs: snapshot,
	})
}

// RemoveAssignees removes workers from a task's assignee set and emits
// task/relationship_removed with the ids actually removed.
func (s *SQLiteStore) RemoveAssignees(ctx context.Context, taskID string, workerIDs []string) error {
	if len(workerIDs) == 0 {
		return nil
	}

	task, removed, snapshot, err := s.changeAssignees(ctx, taskID, workerIDs, false)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		return nil
	}

	return s.dispatcher.Emit(ctx, events.Event{
		Entity:      events.EntityTask,
		Kind:        events.EventRelationRemoved,
		Task:        task,
		Relation:    events.RelationAssignees,
		ChangedIDs:  removed,
		AssigneeIDs: snapshot,
	})
}

// changeAssignees applies a membership change inside one transaction and
// returns the task, the ids whose membership actually changed, and the
// post-change assignee snapshot.
func (s *SQLiteStore) changeAssignees(
	ctx context.Context,
	taskID string,
	workerIDs []string,
	add bool,
) (*model.Task, []string, []string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowxContext(ctx, "SELECT * FROM tasks WHERE id = ?", taskID)
	task, err := scanTaskRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
		}
		return nil, nil, nil, fmt.Errorf("getting task %s: %w", taskID, err)
	}

	var changed []string
	for _, workerID := range workerIDs {
		var result sql.Result
		if add {
			result, err = tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO task_assignees (task_id, worker_id) VALUES (?, ?)",
				taskID, workerID)
		} else {
			result, err = tx.ExecContext(ctx,
				"DELETE FROM task_assignees WHERE task_id = ? AND worker_id = ?",
				taskID, workerID)
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("changing assignee %s on task %s: %w", workerID, taskID, err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			changed = append(changed, workerID)
		}
	}

	var snapshot []string
	if err := tx.SelectContext(ctx, &snapshot,
		"SELECT worker_id FROM task_assignees WHERE task_id = ? ORDER BY worker_id",
		taskID); err != nil {
		return nil, nil, nil, fmt.Errorf("reading assignee snapshot for task %s: %w", taskID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, nil, fmt.Errorf("committing assignee change: %w", err)
	}
	return &task, changed, snapshot, nil
}

// getAssignees loads the workers assigned to a task.
func (s *SQLiteStore) getAssignees(ctx context.Context, taskID string) ([]model.Worker, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT w.* FROM workers w
		INNER JOIN task_assignees ta ON w.id = ta.worker_id
		WHERE ta.task_id = ?
		ORDER BY w.last_name, w.first_name`, taskID)
	if err != nil {
		return nil, fmt.Errorf("querying assignees for task %s: %w", taskID, err)
	}
	defer rows.Close()

	var workers []model.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// CreateTaskType inserts a new task type.
func (s *SQLiteStore) CreateTaskType(ctx context.Context, tt model.TaskType) (*model.TaskType, error) {
	if strings.TrimSpace(tt.Name) == "" {
		return nil, fmt.Errorf("task type name must not be empty")
	}
	if tt.ID == "" {
		tt.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO task_types (id, name) VALUES (?, ?)", tt.ID, tt.Name)
	if err != nil {
		return nil, fmt.Errorf("creating task type: %w", err)
	}
	return &tt, nil
}

// GetTaskTypes retrieves all task types ordered by name.
func (s *SQLiteStore) GetTaskTypes(ctx context.Context) ([]model.TaskType, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM task_types ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying task types: %w", err)
	}
	defer rows.Close()

	var types []model.TaskType
	for rows.Next() {
		var tt model.TaskType
		if err := rows.Scan(&tt.ID, &tt.Name); err != nil {
			return nil, fmt.Errorf("scanning task type row: %w", err)
		}
		types = append(types, tt)
	}
	return types, rows.Err()
}

// scanTask scans a task row from a sqlx.Rows result set.
func scanTask(rows *sqlx.Rows) (model.Task, error) {
	var (
		t            model.Task
		completedInt int
	)
	err := rows.Scan(
		&t.ID, &t.Name, &t.Description, &t.Deadline, &completedInt,
		&t.Priority, &t.TaskTypeID, &t.ProjectID, &t.CreatedBy,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("scanning task row: %w", err)
	}
	t.IsCompleted = completedInt != 0
	return t, nil
}

// scanTaskRow scans a single task row from a sqlx.Row.
func scanTaskRow(row *sqlx.Row) (model.Task, error) {
	var (
		t            model.Task
		completedInt int
	)
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.Deadline, &completedInt,
		&t.Priority, &t.TaskTypeID, &t.ProjectID, &t.CreatedBy,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return model.Task{}, err
	}
	t.IsCompleted = completedInt != 0
	return t, nil
}
