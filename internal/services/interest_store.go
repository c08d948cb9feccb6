package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/pkg/models"
)

// onboardingInterests is the exact number of categories an onboarding
// request must carry.
const onboardingInterests = 3

// actionWeights maps action kinds to interest increments. Higher weight is
// a stronger signal; unknown kinds fall back to the view weight. The
// synthetic "search" action sits between view and like: issuing a search
// grows the profile, but far more weakly than onboarding (10.0).
var actionWeights = map[string]float64{
	"view":    1.0,
	"click":   2.0,
	"like":    3.0,
	"share":   4.0,
	"comment": 5.0,
	"search":  2.0,
}

// ActionWeight returns the interest increment for an action kind.
func ActionWeight(action string) float64 {
	if w, ok := actionWeights[action]; ok {
		return w
	}
	return 1.0
}

// InterestStore keeps each user's category → affinity-score vector in
// PostgreSQL. Every applied event decays all existing scores, then
// increments the target category; both run in a single transaction so
// concurrent events from the same user never lose updates and decay never
// touches the fresh increment.
type InterestStore struct {
	db     DB
	oracle CollaborativeOracle
	cfg    *config.RecommendationConfig
	logger *logrus.Logger
}

func NewInterestStore(db DB, oracle CollaborativeOracle, cfg *config.RecommendationConfig, logger *logrus.Logger) *InterestStore {
	return &InterestStore{
		db:     db,
		oracle: oracle,
		cfg:    cfg,
		logger: logger,
	}
}

// Get returns the user's interest entries sorted by score descending.
func (s *InterestStore) Get(ctx context.Context, userID string) ([]models.InterestEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT category, score, interaction_count, last_updated
		FROM user_interests
		WHERE user_id = $1
		ORDER BY score DESC, category ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user interests: %w", err)
	}
	defer rows.Close()

	var interests []models.InterestEntry
	for rows.Next() {
		var entry models.InterestEntry
		if err := rows.Scan(&entry.Category, &entry.Score, &entry.InteractionCount, &entry.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan interest entry: %w", err)
		}
		interests = append(interests, entry)
	}
	return interests, rows.Err()
}

// ApplyEvent decays every existing score for the user by the decay factor,
// then increments the target category by the action's weight. Order
// matters: decay first, increment second, one transaction, so a single
// event never decays its own contribution and never runs decay twice.
func (s *InterestStore) ApplyEvent(ctx context.Context, userID, category, action string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}

	category = NormalizeCategory(category)
	weight := ActionWeight(action)
	now := time.Now()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin interest update: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE user_interests
		SET score = score * $1, last_updated = $2
		WHERE user_id = $3`,
		s.cfg.DecayFactor, now, userID); err != nil {
		return fmt.Errorf("failed to decay interest scores: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_interests (user_id, category, score, interaction_count, last_updated)
		VALUES ($1, $2, $3, 1, $4)
		ON CONFLICT (user_id, category) DO UPDATE
		SET score = user_interests.score + EXCLUDED.score,
		    interaction_count = user_interests.interaction_count + 1,
		    last_updated = EXCLUDED.last_updated`,
		userID, category, weight, now); err != nil {
		return fmt.Errorf("failed to increment interest score: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit interest update: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"category": category,
		"action":   action,
		"weight":   weight,
	}).Debug("Updated interest score")

	return nil
}

// Initialize seeds a profile at onboarding: exactly three categories, each
// at the fixed initial score. Re-onboarding overwrites any prior profile.
func (s *InterestStore) Initialize(ctx context.Context, userID string, categories []string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if len(categories) != onboardingInterests {
		return fmt.Errorf("%w: onboarding requires exactly %d interest categories, got %d",
			ErrValidation, onboardingInterests, len(categories))
	}

	normalized := make([]string, len(categories))
	for i, category := range categories {
		normalized[i] = NormalizeCategory(category)
		if normalized[i] == "" {
			return fmt.Errorf("%w: interest category must not be empty", ErrValidation)
		}
	}

	now := time.Now()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin onboarding: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO users (user_id, onboarding_completed, created_at, last_active)
		VALUES ($1, true, $2, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET onboarding_completed = true, last_active = EXCLUDED.last_active`,
		userID, now); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM user_interests WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear prior interests: %w", err)
	}

	for _, category := range normalized {
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_interests (user_id, category, score, interaction_count, last_updated)
			VALUES ($1, $2, $3, 0, $4)`,
			userID, category, s.cfg.InitialScore, now); err != nil {
			return fmt.Errorf("failed to seed interest %s: %w", category, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit onboarding: %w", err)
	}

	// Mirror interest labels to the collaborative oracle fire-and-forget.
	if s.oracle != nil {
		go func() {
			oracleCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.oracle.InsertUser(oracleCtx, userID, normalized); err != nil {
				s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to mirror user to collaborative oracle")
			}
		}()
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"interests": normalized,
	}).Info("Initialized user interest profile")

	return nil
}

// CountInteractions is the cold-start/warm discriminator: zero events means
// cold start, anything else means warm.
func (s *InterestStore) CountInteractions(ctx context.Context, userID string) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM interactions WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count interactions: %w", err)
	}
	return count, nil
}

// AppendInteraction writes one immutable interaction event.
func (s *InterestStore) AppendInteraction(ctx context.Context, event *models.InteractionEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if _, err := s.db.Exec(ctx, `
		INSERT INTO interactions (id, user_id, item_id, category, action, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		event.ID, event.UserID, event.ItemID, event.Category, event.Action, event.Timestamp); err != nil {
		return fmt.Errorf("failed to append interaction: %w", err)
	}
	return nil
}
