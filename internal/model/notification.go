package model

import "time"

// Notification types.
const (
	NotificationTaskAssigned        = "task_assigned"
	NotificationTaskCompleted       = "task_completed"
	NotificationTaskCommented       = "task_commented"
	NotificationDeadlineApproaching = "deadline_approaching"
	NotificationTaskUpdated         = "task_updated"
)

// Notification is an in-app inbox item surfaced to a single worker.
// Rows are created by the derivation rules (and the deadline reminder
// poller) and only ever mutated by mark-read actions.
type Notification struct {
	ID        string    `json:"id" db:"id"`
	Recipient string    `json:"recipient_id" db:"recipient_id"`
	Type      string    `json:"notification_type" db:"notification_type"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	TaskID    *string   `json:"task_id,omitempty" db:"task_id"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
