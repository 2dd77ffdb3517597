package model

// Tag is a cross-cutting label for categorizing tasks.
type Tag struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
