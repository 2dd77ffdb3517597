package model

import (
	"errors"
	"time"
)

// Task priority levels.
const (
	PriorityUrgent = "Urgent"
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Priorities lists all priority levels from most to least urgent.
var Priorities = []string{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

// ErrDeadlinePast is returned when a task's deadline is before today.
var ErrDeadlinePast = errors.New("deadline cannot be in the past")

// Task is a unit of work tracked by the application.
type Task struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Deadline    time.Time `json:"deadline" db:"deadline"`
	IsCompleted bool      `json:"is_completed" db:"is_completed"`
	Priority    string    `json:"priority" db:"priority"`
	TaskTypeID  *string   `json:"task_type_id,omitempty" db:"task_type_id"`
	ProjectID   *string   `json:"project_id,omitempty" db:"project_id"`
	CreatedBy   *string   `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Assignees and Tags are populated by queries that join the
	// task_assignees / task_tags tables.
	Assignees []Worker `json:"assignees,omitempty" db:"-"`
	Tags      []Tag    `json:"tags,omitempty" db:"-"`
}

// ValidateDeadline checks that the deadline is not before today.
// The comparison is date-granular, matching form-level validation.
func ValidateDeadline(deadline, now time.Time) error {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	dy, dm, dd := deadline.Date()
	due := time.Date(dy, dm, dd, 0, 0, 0, 0, now.Location())
	if due.Before(today) {
		return ErrDeadlinePast
	}
	return nil
}

// IsOverdue reports whether an incomplete task's deadline has passed.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.IsCompleted && ValidateDeadline(t.Deadline, now) != nil
}

// TaskType categorizes tasks (e.g. "Bug", "Feature").
type TaskType struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
