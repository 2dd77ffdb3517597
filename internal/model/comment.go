package model

import "time"

// Comment is a worker's note on a task. Comments are immutable once posted.
type Comment struct {
	ID        string    `json:"id" db:"id"`
	TaskID    string    `json:"task_id" db:"task_id"`
	AuthorID  string    `json:"author_id" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// AuthorName is populated by queries that join workers.
	AuthorName string `json:"author_name,omitempty" db:"-"`
}
