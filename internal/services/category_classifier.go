package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/ml"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/pkg/models"
)

const (
	// FallbackCategory is returned when no category clears the score floor.
	FallbackCategory = "general"
	// FastPathFallback is the fast-path miss bucket.
	FastPathFallback = "other"

	fallbackConfidence = 0.5
	fastPathMissConf   = 0.3
	fastPathBoost      = 1.2
	oracleTextLimit    = 500
)

// CategoryClassifier maps free text to category labels. The full Classify
// path combines keyword frequency, embedding similarity against category
// prototypes, and an optional LLM oracle vote into one
// weighted score per category. DetectFast is the keyword-only variant used
// on the interactive search path.
type CategoryClassifier struct {
	db       DB
	embedder ml.Embedder
	oracle   OracleDetector
	cfg      *config.RecommendationConfig
	logger   *logrus.Logger

	// fallbacks counts texts that fell through to the fallback category.
	fallbacks prometheus.Counter

	mu         sync.RWMutex
	prototypes map[string][]float32
}

// OracleDetector asks an external text-generation model to pick one
// category. A nil detector or an unrecognised answer contributes nothing.
type OracleDetector interface {
	DetectCategory(ctx context.Context, text string, categories []string) string
}

func NewCategoryClassifier(db DB, embedder ml.Embedder, oracle OracleDetector, cfg *config.RecommendationConfig, logger *logrus.Logger) *CategoryClassifier {
	return &CategoryClassifier{
		db:         db,
		embedder:   embedder,
		oracle:     oracle,
		cfg:        cfg,
		logger:     logger,
		prototypes: make(map[string][]float32),
	}
}

// Classify scores text against every known category and returns the
// qualifying (category, confidence) pairs, highest first. The result is
// never empty: when nothing clears the floor it falls back to the
// "general" bucket at default confidence.
func (c *CategoryClassifier) Classify(ctx context.Context, text string) []models.CategoryScore {
	keywordScores := c.keywordScores(text)
	semanticScores := c.semanticScores(ctx, text)
	oracleCategory := c.oracleCategory(ctx, text)

	var scores []models.CategoryScore
	for category := range categoryKeywords {
		boost := 0.0
		if oracleCategory == category {
			boost = c.cfg.OracleBoost
		}

		final := c.cfg.KeywordVoteWeight*keywordScores[category] +
			c.cfg.SemanticVoteWeight*semanticScores[category] +
			c.cfg.OracleVoteWeight*boost

		if final > c.cfg.ScoreFloor {
			scores = append(scores, models.CategoryScore{
				Category:   category,
				Confidence: clamp01(final),
			})
		}
	}

	if len(scores) == 0 {
		if c.fallbacks != nil {
			c.fallbacks.Inc()
		}
		c.ensureQuiet(ctx, FallbackCategory)
		return []models.CategoryScore{{Category: FallbackCategory, Confidence: fallbackConfidence}}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Confidence != scores[j].Confidence {
			return scores[i].Confidence > scores[j].Confidence
		}
		return scores[i].Category < scores[j].Category
	})

	return scores
}

// DetectFast is the keyword-only classifier for interactive search latency.
// Multi-word keywords weigh by their word count; matching more than one
// keyword boosts confidence by 1.2x, capped at 1.0.
func (c *CategoryClassifier) DetectFast(query string) (string, float64) {
	if strings.TrimSpace(query) == "" {
		return FastPathFallback, 0.0
	}

	queryLower := strings.ToLower(query)
	queryWords := len(strings.Fields(queryLower))

	bestCategory := ""
	bestScore := 0
	bestMatched := 0

	// Iterate in sorted order so ties resolve deterministically.
	for _, category := range sortedCategories() {
		score := 0
		matched := 0
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(queryLower, keyword) {
				score += len(strings.Fields(keyword))
				matched++
			}
		}
		if score > bestScore {
			bestCategory = category
			bestScore = score
			bestMatched = matched
		}
	}

	if bestScore == 0 {
		return FastPathFallback, fastPathMissConf
	}

	confidence := float64(bestScore) / float64(queryWords)
	if confidence > 1.0 {
		confidence = 1.0
	}
	if bestMatched > 1 {
		confidence = clamp01(confidence * fastPathBoost)
	}

	return bestCategory, confidence
}

// keywordScores is match-count over keyword-set-size, clamped to [0,1].
func (c *CategoryClassifier) keywordScores(text string) map[string]float64 {
	textLower := strings.ToLower(text)
	scores := make(map[string]float64, len(categoryKeywords))

	for category, keywords := range categoryKeywords {
		matches := 0
		for _, keyword := range keywords {
			if strings.Contains(textLower, keyword) {
				matches++
			}
		}
		scores[category] = clamp01(float64(matches) / float64(len(keywords)))
	}

	return scores
}

// semanticScores is cosine similarity between the text embedding and each
// category's prototype, floored at zero. No embedder means no signal.
func (c *CategoryClassifier) semanticScores(ctx context.Context, text string) map[string]float64 {
	scores := make(map[string]float64, len(categoryKeywords))
	if c.embedder == nil {
		return scores
	}

	textEmbedding, err := c.embedder.Encode(ctx, text)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to embed text for classification")
		return scores
	}

	for category := range categoryKeywords {
		prototype, err := c.prototypeEmbedding(ctx, category)
		if err != nil {
			continue
		}
		if sim := ml.CosineSimilarity(textEmbedding, prototype); sim > 0 {
			scores[category] = sim
		}
	}

	return scores
}

// prototypeEmbedding encodes the category's joined keyword list once and
// keeps it for the process lifetime (keyword sets only grow on restart).
func (c *CategoryClassifier) prototypeEmbedding(ctx context.Context, category string) ([]float32, error) {
	c.mu.RLock()
	prototype, ok := c.prototypes[category]
	c.mu.RUnlock()
	if ok {
		return prototype, nil
	}

	prototype, err := c.embedder.Encode(ctx, strings.Join(categoryKeywords[category], " "))
	if err != nil {
		return nil, fmt.Errorf("failed to build prototype for %s: %w", category, err)
	}

	c.mu.Lock()
	c.prototypes[category] = prototype
	c.mu.Unlock()

	return prototype, nil
}

// oracleCategory asks the LLM to name a category. Only a case-insensitive
// exact match against the known set counts; anything else is "no answer".
func (c *CategoryClassifier) oracleCategory(ctx context.Context, text string) string {
	if c.oracle == nil {
		return ""
	}

	if len(text) > oracleTextLimit {
		text = text[:oracleTextLimit]
	}

	answer := c.oracle.DetectCategory(ctx, text, sortedCategories())
	normalized := NormalizeCategory(answer)
	if _, known := categoryKeywords[normalized]; known {
		return normalized
	}
	return ""
}

// EnsureCategory registers an unseen category name exactly once. Known
// names are a no-op, so the call is safe on every classification of user
// data.
func (c *CategoryClassifier) EnsureCategory(ctx context.Context, name string) error {
	name = NormalizeCategory(name)
	if name == "" {
		return fmt.Errorf("category name is required")
	}

	tag, err := c.db.Exec(ctx, `
		INSERT INTO categories (name, keywords, auto_created, last_updated)
		VALUES ($1, $2, true, $3)
		ON CONFLICT (name) DO NOTHING`,
		name, []string{}, time.Now())
	if err != nil {
		return fmt.Errorf("failed to register category %s: %w", name, err)
	}

	if tag.RowsAffected() > 0 {
		c.logger.WithField("category", name).Info("Auto-registered new category")
	}
	return nil
}

// AllCategories lists registered categories with their post counts.
func (c *CategoryClassifier) AllCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := c.db.Query(ctx, `
		SELECT name, keywords, auto_created, post_count, last_updated
		FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.Name, &cat.Keywords, &cat.AutoCreated, &cat.PostCount, &cat.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

func (c *CategoryClassifier) ensureQuiet(ctx context.Context, name string) {
	if c.db == nil {
		return
	}
	if err := c.EnsureCategory(ctx, name); err != nil {
		c.logger.WithError(err).WithField("category", name).Warn("Category auto-registration failed")
	}
}

// NormalizeCategory lower-cases, trims and resolves aliases.
func NormalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if canonical, ok := categoryAliases[category]; ok {
		return canonical
	}
	return category
}

func sortedCategories() []string {
	names := make([]string, 0, len(categoryKeywords))
	for name := range categoryKeywords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
