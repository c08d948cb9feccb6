package models

import "time"

// CandidateItem is the single shape every retriever normalises into before
// fusion. It lives only within one fusion computation and is never
// persisted; the Source tag records which retriever(s) produced it.
type CandidateItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Body     string  `json:"body,omitempty"`
	Score    float64 `json:"score"`
	Source   string  `json:"source"`
}

// RankedItem is a fused candidate with its accumulated match score and
// final position.
type RankedItem struct {
	CandidateItem
	MatchScore    float64 `json:"match_score"`
	CategoryMatch bool    `json:"category_match,omitempty"`
	Rank          int     `json:"rank"`
}

type RecommendationMetadata struct {
	UserID          string             `json:"user_id"`
	Query           string             `json:"query,omitempty"`
	IsNewUser       bool               `json:"is_new_user"`
	UserInterests   map[string]float64 `json:"user_interests"`
	QueryCategories []string           `json:"query_categories"`
	TotalResults    int                `json:"total_results"`
	SearchTimeMs    float64            `json:"search_time_ms"`
	Cached          bool               `json:"cached"`
	Timestamp       time.Time          `json:"timestamp"`
}

type RecommendationResponse struct {
	Results  []RankedItem           `json:"results"`
	Metadata RecommendationMetadata `json:"metadata"`
}

// RecommendationLogEntry is append-only, write-once, analytics only; the
// core never reads it back.
type RecommendationLogEntry struct {
	UserID       string    `json:"user_id" db:"user_id"`
	Query        string    `json:"query,omitempty" db:"query"`
	Categories   []string  `json:"categories" db:"categories"`
	ResultIDs    []string  `json:"result_ids" db:"result_ids"`
	ResultsCount int       `json:"results_count" db:"results_count"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
}

type SearchLogEntry struct {
	UserID     string    `json:"user_id" db:"user_id"`
	Query      string    `json:"query" db:"query"`
	Category   string    `json:"category" db:"category"`
	Confidence float64   `json:"confidence" db:"confidence"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

type SearchResponse struct {
	Query              string          `json:"query"`
	DetectedCategories []CategoryScore `json:"detected_categories"`
	Results            []RankedItem    `json:"results"`
	InterestAdded      bool            `json:"interest_added"`
	TotalResults       int             `json:"total_results"`
	SearchTimeMs       float64         `json:"search_time_ms"`
}
