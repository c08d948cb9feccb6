package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/pkg/models"
)

// UserService handles user records and onboarding. Interest mechanics live
// in the interest store; this layer owns the user rows around them.
type UserService struct {
	db        DB
	interests InterestStoreInterface
	logger    *logrus.Logger
}

func NewUserService(db DB, interests InterestStoreInterface, logger *logrus.Logger) *UserService {
	return &UserService{db: db, interests: interests, logger: logger}
}

func (u *UserService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}

	now := time.Now().UTC()
	user := &models.User{
		UserID:     req.UserID,
		Name:       req.Name,
		Email:      req.Email,
		Metadata:   req.Metadata,
		CreatedAt:  now,
		LastActive: now,
	}

	_, err := u.db.Exec(ctx, `
		INSERT INTO users (user_id, name, email, metadata, onboarding_completed, created_at, last_active)
		VALUES ($1, $2, $3, $4, false, $5, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			metadata = EXCLUDED.metadata,
			last_active = EXCLUDED.last_active`,
		user.UserID, user.Name, user.Email, user.Metadata, now)
	if err != nil {
		return nil, fmt.Errorf("failed to store user %s: %w", req.UserID, err)
	}
	return user, nil
}

func (u *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := u.db.QueryRow(ctx, `
		SELECT user_id, COALESCE(name, ''), COALESCE(email, ''), onboarding_completed, created_at, last_active
		FROM users WHERE user_id = $1`, userID).Scan(
		&user.UserID, &user.Name, &user.Email, &user.OnboardingCompleted, &user.CreatedAt, &user.LastActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return &user, nil
}

// Onboard seeds the user's interest profile from exactly three categories.
// Re-onboarding replaces the previous profile entirely.
func (u *UserService) Onboard(ctx context.Context, req *models.OnboardingRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}

	if err := u.interests.Initialize(ctx, req.UserID, req.Interests); err != nil {
		return err
	}

	_, err := u.db.Exec(ctx, `
		UPDATE users SET onboarding_completed = true, last_active = NOW() WHERE user_id = $1`,
		req.UserID)
	if err != nil {
		u.logger.WithError(err).WithField("user_id", req.UserID).Warn("Failed to flag onboarding completion")
	}
	return nil
}

// List returns the most recently created users, newest first.
func (u *UserService) List(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	rows, err := u.db.Query(ctx, `
		SELECT user_id, COALESCE(name, ''), COALESCE(email, ''), onboarding_completed, created_at, last_active
		FROM users ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.UserID, &user.Name, &user.Email, &user.OnboardingCompleted, &user.CreatedAt, &user.LastActive); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Delete removes the user row together with their interest profile and
// interaction history. Missing users are reported as ErrNotFound.
func (u *UserService) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin delete for %s: %w", userID, err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	for _, table := range []string{"user_interests", "interactions", "search_log"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to clear %s for %s: %w", table, userID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete for %s: %w", userID, err)
	}

	u.logger.WithField("user_id", userID).Info("Deleted user and associated data")
	return nil
}

// Interests returns the user's profile ordered by score.
func (u *UserService) Interests(ctx context.Context, userID string) ([]models.InterestEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	return u.interests.Get(ctx, userID)
}

// Stats aggregates a user's activity counters with their interest profile.
func (u *UserService) Stats(ctx context.Context, userID string) (*models.UserStats, error) {
	user, err := u.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &models.UserStats{
		UserID:     user.UserID,
		Name:       user.Name,
		CreatedAt:  user.CreatedAt,
		LastActive: user.LastActive,
	}

	err = u.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE action = 'view'),
		       COUNT(*) FILTER (WHERE action = 'like')
		FROM interactions WHERE user_id = $1`, userID).Scan(
		&stats.TotalInteractions, &stats.Views, &stats.Likes)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate interactions for %s: %w", userID, err)
	}

	stats.Interests, err = u.interests.Get(ctx, userID)
	if err != nil {
		u.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load interests for stats")
		stats.Interests = nil
	}
	return stats, nil
}
