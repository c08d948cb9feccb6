package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/ml"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/pkg/models"
)

// ContentService ingests posts: it embeds the text, runs the full
// classification vote, persists the post and its relevance index rows, and
// mirrors the item to the collaborative oracle.
type ContentService struct {
	db         DB
	embedder   ml.Embedder
	classifier ClassifierInterface
	oracle     CollaborativeOracle
	cfg        *config.RecommendationConfig
	logger     *logrus.Logger
}

func NewContentService(db DB, embedder ml.Embedder, classifier ClassifierInterface, oracle CollaborativeOracle, cfg *config.RecommendationConfig, logger *logrus.Logger) *ContentService {
	return &ContentService{
		db:         db,
		embedder:   embedder,
		classifier: classifier,
		oracle:     oracle,
		cfg:        cfg,
		logger:     logger,
	}
}

// Ingest stores one post. A declared category wins over the classifier for
// the post's own category field; the relevance index always records the
// full classifier vote so retrieval sees every plausible category.
func (c *ContentService) Ingest(ctx context.Context, req *models.PostIngestionRequest) (*models.Post, error) {
	if req.ID == "" || req.Title == "" {
		return nil, fmt.Errorf("%w: id and title are required", ErrValidation)
	}

	text := req.Title
	if req.Body != "" {
		text += " " + req.Body
	}

	embedding, err := c.embedder.Encode(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed post %s: %w", req.ID, err)
	}

	scores := c.classifier.Classify(ctx, text)

	declared := NormalizeCategory(req.Category)
	category := declared
	if category == "" && len(scores) > 0 {
		category = scores[0].Category
	}
	if category == "" {
		category = FallbackCategory
	}
	if err := c.classifier.EnsureCategory(ctx, category); err != nil {
		c.logger.WithError(err).WithField("category", category).Warn("Failed to register post category")
	}

	now := time.Now().UTC()
	post := &models.Post{
		ID:        req.ID,
		Title:     req.Title,
		Body:      req.Body,
		Category:  category,
		AuthorID:  req.AuthorID,
		Tags:      req.Tags,
		Embedding: embedding,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = c.db.Exec(ctx, `
		INSERT INTO posts (id, title, body, category, author_id, tags, embedding, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::vector, $8, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			category = EXCLUDED.category,
			author_id = EXCLUDED.author_id,
			tags = EXCLUDED.tags,
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at`,
		post.ID, post.Title, post.Body, post.Category, post.AuthorID, post.Tags, VectorLiteral(embedding), now)
	if err != nil {
		return nil, fmt.Errorf("failed to store post %s: %w", req.ID, err)
	}

	if err := c.reindex(ctx, post.ID, declared, scores, now); err != nil {
		c.logger.WithError(err).WithField("post_id", post.ID).Warn("Failed to rebuild relevance index for post")
	}

	c.refreshPostCount(ctx, category)

	go c.mirrorItem(post)

	return post, nil
}

// IngestBatch ingests posts one by one, collecting per-post failures
// instead of aborting the batch.
func (c *ContentService) IngestBatch(ctx context.Context, req *models.PostBatchRequest) ([]*models.Post, map[string]string) {
	var stored []*models.Post
	failed := make(map[string]string)

	for i := range req.Posts {
		post, err := c.Ingest(ctx, &req.Posts[i])
		if err != nil {
			failed[req.Posts[i].ID] = err.Error()
			continue
		}
		stored = append(stored, post)
	}
	return stored, failed
}

// Get returns one post without its embedding.
func (c *ContentService) Get(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := c.db.QueryRow(ctx, `
		SELECT id, title, body, category, COALESCE(author_id, ''), COALESCE(tags, '{}'), likes, views, created_at, updated_at
		FROM posts WHERE id = $1`, id).Scan(
		&post.ID, &post.Title, &post.Body, &post.Category, &post.AuthorID,
		&post.Tags, &post.Likes, &post.Views, &post.CreatedAt, &post.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load post %s: %w", id, err)
	}
	return &post, nil
}

// Categories lists every known category with its keyword set and counts.
func (c *ContentService) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := c.db.Query(ctx, `
		SELECT name, COALESCE(keywords, '{}'), auto_created, post_count, last_updated
		FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.Name, &cat.Keywords, &cat.AutoCreated, &cat.PostCount, &cat.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

// reindex replaces the post's relevance rows with the current classifier
// vote plus the declared category at full relevance.
func (c *ContentService) reindex(ctx context.Context, postID, declared string, scores []models.CategoryScore, trainedAt time.Time) error {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM category_scores WHERE post_id = $1`, postID); err != nil {
		return err
	}

	seen := make(map[string]struct{})
	insert := func(category string, relevance float64, oracleDetected string) error {
		if _, ok := seen[category]; ok {
			return nil
		}
		seen[category] = struct{}{}
		_, err := tx.Exec(ctx, `
			INSERT INTO category_scores (post_id, category, relevance_score, declared_category, oracle_detected, trained_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			postID, category, relevance, declared, oracleDetected, trainedAt)
		return err
	}

	if declared != "" {
		if err := insert(declared, 1.0, ""); err != nil {
			return err
		}
	}
	for _, score := range scores {
		if err := insert(score.Category, score.Confidence, ""); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (c *ContentService) refreshPostCount(ctx context.Context, category string) {
	_, err := c.db.Exec(ctx, `
		UPDATE categories
		SET post_count = (SELECT COUNT(*) FROM posts WHERE category = $1), last_updated = NOW()
		WHERE name = $1`, category)
	if err != nil {
		c.logger.WithError(err).WithField("category", category).Warn("Failed to refresh category post count")
	}
}

func (c *ContentService) mirrorItem(post *models.Post) {
	if c.oracle == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
	defer cancel()

	if err := c.oracle.InsertItem(ctx, post.ID, []string{post.Category}, post.Tags, post.CreatedAt); err != nil {
		c.logger.WithError(err).WithField("post_id", post.ID).Warn("Failed to mirror item to oracle")
	}
}
