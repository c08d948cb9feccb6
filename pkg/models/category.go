package models

import "time"

// Category is a named topical bucket used both for classification and
// retrieval. Keyword sets grow append-only; categories are never renamed.
type Category struct {
	Name        string    `json:"name" db:"name"`
	Keywords    []string  `json:"keywords,omitempty" db:"keywords"`
	AutoCreated bool      `json:"auto_created" db:"auto_created"`
	PostCount   int       `json:"post_count" db:"post_count"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// CategoryScore is one classifier vote: a category with its confidence.
type CategoryScore struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}
