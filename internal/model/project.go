package model

import "time"

// Project is a grouping container for related tasks and teams.
type Project struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Team is a named group of workers, optionally attached to a project.
type Team struct {
	ID        string  `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	ProjectID *string `json:"project_id,omitempty" db:"project_id"`

	// Members is populated by queries that join team_members.
	Members []Worker `json:"members,omitempty" db:"-"`
}
