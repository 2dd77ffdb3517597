package model

import "time"

// Worker is a registered team member. Workers author tasks and comments,
// receive notifications, and appear in task assignee sets and teams.
type Worker struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	Position  *string   `json:"position_id,omitempty" db:"position_id"`
	IsStaff   bool      `json:"is_staff" db:"is_staff"`
	IsSuper   bool      `json:"is_superuser" db:"is_superuser"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FullName returns the worker's display name.
func (w Worker) FullName() string {
	return w.FirstName + " " + w.LastName
}

// CanManageTask reports whether the worker may edit or delete the task.
// Staff can manage any task; everyone else only their own.
func (w Worker) CanManageTask(t Task) bool {
	if w.IsStaff {
		return true
	}
	return t.CreatedBy != nil && *t.CreatedBy == w.ID
}

// Position is a job title assigned to workers.
type Position struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
