package model

import "time"

// Activity types recorded in the task activity log.
const (
	ActivityCreated    = "created"
	ActivityUpdated    = "updated"
	ActivityCompleted  = "completed"
	ActivityReopened   = "reopened"
	ActivityAssigned   = "assigned"
	ActivityUnassigned = "unassigned"
	ActivityCommented  = "commented"
	ActivityDeleted    = "deleted"
)

// ActivityLog is one append-only entry in a task's history. Rows are
// written exclusively by the derivation rules, never edited or deleted.
// UserID is nil for system-generated entries and rendered as "System".
type ActivityLog struct {
	ID           string    `json:"id" db:"id"`
	TaskID       *string   `json:"task_id,omitempty" db:"task_id"`
	UserID       *string   `json:"user_id,omitempty" db:"user_id"`
	ActivityType string    `json:"activity_type" db:"activity_type"`
	Description  string    `json:"description" db:"description"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// UserName is populated by queries that join workers.
	UserName string `json:"user_name,omitempty" db:"-"`
}

// DisplayUser returns the acting worker's name, or "System" when the
// entry has no user.
func (a ActivityLog) DisplayUser() string {
	if a.UserID == nil || a.UserName == "" {
		return "System"
	}
	return a.UserName
}
