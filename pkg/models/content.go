package models

import "time"

type Post struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title" validate:"required,min=1,max=255"`
	Body      string    `json:"body" db:"body"`
	Category  string    `json:"category" db:"category"`
	AuthorID  string    `json:"author_id,omitempty" db:"author_id"`
	Tags      []string  `json:"tags,omitempty" db:"tags"`
	Likes     int       `json:"likes" db:"likes"`
	Views     int       `json:"views" db:"views"`
	Embedding []float32 `json:"-" db:"embedding"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type PostIngestionRequest struct {
	ID       string   `json:"id" validate:"required"`
	Title    string   `json:"title" validate:"required,min=1,max=255"`
	Body     string   `json:"body"`
	Category string   `json:"category"`
	AuthorID string   `json:"author_id,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type PostBatchRequest struct {
	Posts []PostIngestionRequest `json:"posts" validate:"required,min=1,max=100"`
}

// CategoryRelevance is one row of the precomputed relevance index: how
// strongly a post belongs to a category according to the classifier vote.
type CategoryRelevance struct {
	PostID           string    `json:"post_id" db:"post_id"`
	Category         string    `json:"category" db:"category"`
	RelevanceScore   float64   `json:"relevance_score" db:"relevance_score"`
	DeclaredCategory string    `json:"declared_category,omitempty" db:"declared_category"`
	OracleDetected   string    `json:"oracle_detected,omitempty" db:"oracle_detected"`
	TrainedAt        time.Time `json:"trained_at" db:"trained_at"`
}
