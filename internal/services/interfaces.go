package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/pkg/models"
)

// ErrValidation marks caller-visible invalid input, the only error class
// that surfaces out of the orchestrator.
var ErrValidation = errors.New("validation error")

// ErrNotFound marks a missing entity on lookup paths.
var ErrNotFound = errors.New("not found")

// DB is the slice of pgxpool.Pool the services use; pgxmock satisfies it in
// tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CollaborativeOracle is the external recommender service. All methods must
// tolerate the oracle being absent; Recommend degrades to an empty list.
type CollaborativeOracle interface {
	Recommend(ctx context.Context, userID string, n int) []string
	InsertUser(ctx context.Context, userID string, labels []string) error
	InsertItem(ctx context.Context, itemID string, categories, labels []string, timestamp time.Time) error
	Feedback(ctx context.Context, userID, itemID, feedbackType string) error
}

// ClassifierInterface is what the orchestrator and search service need from
// the category classifier.
type ClassifierInterface interface {
	Classify(ctx context.Context, text string) []models.CategoryScore
	DetectFast(query string) (string, float64)
	EnsureCategory(ctx context.Context, name string) error
}

// InterestStoreInterface maintains per-user interest-score vectors.
type InterestStoreInterface interface {
	Get(ctx context.Context, userID string) ([]models.InterestEntry, error)
	ApplyEvent(ctx context.Context, userID, category, action string) error
	Initialize(ctx context.Context, userID string, categories []string) error
	CountInteractions(ctx context.Context, userID string) (int, error)
	AppendInteraction(ctx context.Context, event *models.InteractionEvent) error
}

// RetrieverInterface bundles the three candidate sources. Every method
// degrades to an empty slice when its backing service is unreachable.
type RetrieverInterface interface {
	Collaborative(ctx context.Context, userID string, limit int) []models.CandidateItem
	ByCategory(ctx context.Context, category string, limit int, minRelevance float64) []models.CandidateItem
	Semantic(ctx context.Context, query string, limit int) []models.CandidateItem
}
