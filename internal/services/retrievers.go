package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/ml"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/pkg/models"
)

const (
	SourceCollab   = "collab"
	SourceCategory = "category"
	SourceSemantic = "semantic"

	snippetLength = 200
)

// Retriever produces candidate lists from the three signal sources and
// normalises every upstream shape into models.CandidateItem at the
// boundary. All three methods degrade to an empty slice on failure;
// callers treat empty as "no signal", never as an error.
type Retriever struct {
	db       DB
	oracle   CollaborativeOracle
	embedder ml.Embedder
	cfg      *config.RecommendationConfig
	logger   *logrus.Logger
}

func NewRetriever(db DB, oracle CollaborativeOracle, embedder ml.Embedder, cfg *config.RecommendationConfig, logger *logrus.Logger) *Retriever {
	return &Retriever{
		db:       db,
		oracle:   oracle,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

// Collaborative fetches ranked item ids from the external oracle. The
// oracle's order is the rank; the score is 1 - position/limit, so the first
// item scores highest and the decay is deterministic.
func (r *Retriever) Collaborative(ctx context.Context, userID string, limit int) []models.CandidateItem {
	if r.oracle == nil || limit <= 0 {
		return nil
	}

	ids := r.oracle.Recommend(ctx, userID, limit)
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	posts := r.postsByID(ctx, ids)

	items := make([]models.CandidateItem, 0, len(ids))
	for i, id := range ids {
		item := models.CandidateItem{
			ID:     id,
			Score:  1.0 - float64(i)/float64(limit),
			Source: SourceCollab,
		}
		if post, ok := posts[id]; ok {
			item.Title = post.Title
			item.Category = post.Category
			item.Body = snippet(post.Body)
		}
		items = append(items, item)
	}

	r.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"items":   len(items),
	}).Debug("Collaborative retrieval completed")

	return items
}

// ByCategory returns the top posts of a category from the precomputed
// relevance index, relevance descending, ids ascending for determinism.
func (r *Retriever) ByCategory(ctx context.Context, category string, limit int, minRelevance float64) []models.CandidateItem {
	category = NormalizeCategory(category)
	if category == "" || limit <= 0 {
		return nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.title, p.category, LEFT(p.body, $4), cs.relevance_score
		FROM category_scores cs
		JOIN posts p ON p.id = cs.post_id
		WHERE cs.category = $1 AND cs.relevance_score >= $2
		ORDER BY cs.relevance_score DESC, p.id ASC
		LIMIT $3`,
		category, minRelevance, limit, snippetLength)
	if err != nil {
		r.logger.WithError(err).WithField("category", category).Warn("Category retrieval failed")
		return nil
	}
	defer rows.Close()

	var items []models.CandidateItem
	for rows.Next() {
		var item models.CandidateItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Category, &item.Body, &item.Score); err != nil {
			r.logger.WithError(err).Warn("Failed to scan category candidate")
			continue
		}
		item.Source = SourceCategory
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		r.logger.WithError(err).Warn("Category retrieval truncated")
	}

	return items
}

// Semantic returns the nearest posts to the query embedding from the vector
// index, similarity descending.
func (r *Retriever) Semantic(ctx context.Context, query string, limit int) []models.CandidateItem {
	if r.embedder == nil || strings.TrimSpace(query) == "" || limit <= 0 {
		return nil
	}

	embedding, err := r.embedder.Encode(ctx, query)
	if err != nil {
		r.logger.WithError(err).Warn("Failed to embed query for semantic retrieval")
		return nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, title, category, LEFT(body, $3), 1 - (embedding <=> $1::vector) AS similarity
		FROM posts
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1::vector, id ASC
		LIMIT $2`,
		VectorLiteral(embedding), limit, snippetLength)
	if err != nil {
		r.logger.WithError(err).Warn("Semantic retrieval failed")
		return nil
	}
	defer rows.Close()

	var items []models.CandidateItem
	for rows.Next() {
		var item models.CandidateItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Category, &item.Body, &item.Score); err != nil {
			r.logger.WithError(err).Warn("Failed to scan semantic candidate")
			continue
		}
		item.Source = SourceSemantic
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		r.logger.WithError(err).Warn("Semantic retrieval truncated")
	}

	return items
}

// postsByID loads post metadata preserving nothing about order; lookup
// failures leave candidates with bare ids rather than dropping the signal.
func (r *Retriever) postsByID(ctx context.Context, ids []string) map[string]models.Post {
	posts := make(map[string]models.Post, len(ids))

	rows, err := r.db.Query(ctx, `
		SELECT id, title, category, LEFT(body, $2)
		FROM posts WHERE id = ANY($1)`, ids, snippetLength)
	if err != nil {
		r.logger.WithError(err).Warn("Failed to resolve collaborative item metadata")
		return posts
	}
	defer rows.Close()

	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Category, &post.Body); err != nil {
			continue
		}
		posts[post.ID] = post
	}
	return posts
}

func snippet(body string) string {
	if len(body) > snippetLength {
		return body[:snippetLength]
	}
	return body
}

// VectorLiteral renders a float32 slice in pgvector's text input form.
func VectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%g", f)
	}
	b.WriteByte(']')
	return b.String()
}
