package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/pkg/models"
)

// searchAction is the synthetic action recorded when a search query grows a
// user's interest profile implicitly.
const searchAction = "search"

// searchHistoryLimit caps the per-user search log; older rows are pruned on
// insert.
const searchHistoryLimit = 50

// nonInterestCategories never enter a user's profile from search queries.
var nonInterestCategories = map[string]struct{}{
	FallbackCategory: {},
	FastPathFallback: {},
	unknownCategory:  {},
}

// SearchService answers queries with category plus semantic fusion and
// grows the user's interest profile from confident category detections.
type SearchService struct {
	db         DB
	classifier ClassifierInterface
	retriever  RetrieverInterface
	interests  InterestStoreInterface
	fuser      *Fuser
	metrics    *Metrics
	cfg        *config.RecommendationConfig
	logger     *logrus.Logger
}

func NewSearchService(
	db DB,
	classifier ClassifierInterface,
	retriever RetrieverInterface,
	interests InterestStoreInterface,
	fuser *Fuser,
	metrics *Metrics,
	cfg *config.RecommendationConfig,
	logger *logrus.Logger,
) *SearchService {
	return &SearchService{
		db:         db,
		classifier: classifier,
		retriever:  retriever,
		interests:  interests,
		fuser:      fuser,
		metrics:    metrics,
		cfg:        cfg,
		logger:     logger,
	}
}

// Search classifies the query, retrieves category and semantic candidates,
// and fuses them. When the detection is confident enough and the category
// is new to the user, the query also becomes a weak interest signal.
func (s *SearchService) Search(ctx context.Context, userID, query string, limit int) (*models.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	if limit <= 0 {
		limit = 10
	}
	started := time.Now()

	category, confidence := s.classifier.DetectFast(query)

	var detected []models.CategoryScore
	var queryCategories []string
	if confidence > 0 {
		detected = append(detected, models.CategoryScore{Category: category, Confidence: confidence})
		queryCategories = append(queryCategories, category)
	}

	var categoryCandidates []models.CandidateItem
	if confidence > 0 {
		categoryCandidates = s.retriever.ByCategory(ctx, category, limit, s.cfg.MinRelevance)
	}
	semanticCandidates := s.retriever.Semantic(ctx, query, limit)

	ranked := s.fuser.Merge(nil, categoryCandidates, semanticCandidates, queryCategories, limit)

	interestAdded := false
	if userID != "" && s.shouldGrowInterest(ctx, userID, category, confidence) {
		if err := s.interests.ApplyEvent(ctx, userID, category, searchAction); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"user_id":  userID,
				"category": category,
			}).Warn("Failed to grow interest from search")
		} else {
			interestAdded = true
		}
	}

	if s.metrics != nil {
		s.metrics.SearchesTotal.Inc()
	}

	if userID != "" {
		go s.appendHistory(userID, query, category, confidence)
	}

	return &models.SearchResponse{
		Query:              query,
		DetectedCategories: detected,
		Results:            ranked,
		InterestAdded:      interestAdded,
		TotalResults:       len(ranked),
		SearchTimeMs:       float64(time.Since(started).Microseconds()) / 1000.0,
	}, nil
}

// shouldGrowInterest gates implicit interest growth: the detection must be
// confident, the category must carry meaning, and the user must not already
// track it.
func (s *SearchService) shouldGrowInterest(ctx context.Context, userID, category string, confidence float64) bool {
	if confidence < s.cfg.SearchMinInterest {
		return false
	}
	if _, ok := nonInterestCategories[category]; ok {
		return false
	}

	entries, err := s.interests.Get(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load interests for search gating")
		return false
	}
	for _, entry := range entries {
		if entry.Category == category {
			return false
		}
	}
	return true
}

// appendHistory records the search and prunes rows beyond the per-user cap.
func (s *SearchService) appendHistory(userID, query, category string, confidence float64) {
	ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
	defer cancel()

	_, err := s.db.Exec(ctx, `
		INSERT INTO search_log (user_id, query, category, confidence, timestamp)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, query, category, confidence, time.Now().UTC())
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to append search log")
		return
	}

	_, err = s.db.Exec(ctx, `
		DELETE FROM search_log
		WHERE user_id = $1 AND id NOT IN (
			SELECT id FROM search_log
			WHERE user_id = $1
			ORDER BY timestamp DESC
			LIMIT $2
		)`, userID, searchHistoryLimit)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to prune search log")
	}
}

// History returns the user's recent searches, newest first.
func (s *SearchService) History(ctx context.Context, userID string, limit int) ([]models.SearchLogEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if limit <= 0 || limit > searchHistoryLimit {
		limit = searchHistoryLimit
	}

	rows, err := s.db.Query(ctx, `
		SELECT user_id, query, category, confidence, timestamp
		FROM search_log
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load search history: %w", err)
	}
	defer rows.Close()

	var entries []models.SearchLogEntry
	for rows.Next() {
		var entry models.SearchLogEntry
		if err := rows.Scan(&entry.UserID, &entry.Query, &entry.Category, &entry.Confidence, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan search history row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
