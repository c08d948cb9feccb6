package models

import "time"

type User struct {
	UserID              string                 `json:"user_id" db:"user_id" validate:"required"`
	Name                string                 `json:"name,omitempty" db:"name"`
	Email               string                 `json:"email,omitempty" db:"email" validate:"omitempty,email"`
	Metadata            map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	OnboardingCompleted bool                   `json:"onboarding_completed" db:"onboarding_completed"`
	CreatedAt           time.Time              `json:"created_at" db:"created_at"`
	LastActive          time.Time              `json:"last_active" db:"last_active"`
}

// InterestEntry is one row of a user's interest profile. Scores are
// non-negative; multiplicative decay shrinks them but never below zero.
type InterestEntry struct {
	Category         string    `json:"category" db:"category"`
	Score            float64   `json:"score" db:"score"`
	InteractionCount int       `json:"interaction_count" db:"interaction_count"`
	LastUpdated      time.Time `json:"last_updated" db:"last_updated"`
}

type CreateUserRequest struct {
	UserID   string                 `json:"user_id" validate:"required"`
	Name     string                 `json:"name,omitempty"`
	Email    string                 `json:"email,omitempty" validate:"omitempty,email"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// OnboardingRequest seeds a profile with exactly three interest categories.
type OnboardingRequest struct {
	UserID    string   `json:"user_id" validate:"required"`
	Interests []string `json:"interests" validate:"required,len=3,dive,required"`
}

type UserStats struct {
	UserID            string          `json:"user_id"`
	Name              string          `json:"name,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	LastActive        time.Time       `json:"last_active"`
	TotalInteractions int             `json:"total_interactions"`
	Views             int             `json:"views"`
	Likes             int             `json:"likes"`
	Interests         []InterestEntry `json:"interests"`
}
