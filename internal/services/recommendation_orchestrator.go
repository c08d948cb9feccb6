package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/messaging"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/pkg/models"
)

const (
	backgroundTimeout = 2 * time.Second

	// unknownCategory tags interactions on items whose post record is gone.
	unknownCategory = "unknown"

	defaultCacheTTL = 15 * time.Minute
)

// defaultColdProfile seeds users who reach the recommendation surface with
// no stored interests at all, typically after a partial onboarding failure.
var defaultColdProfile = []string{"technology", "movies", "sports"}

// RecommendationOrchestrator is the entry point for both recommendation
// paths. It decides cold-start versus warm per request from the user's
// interaction count, fans out to the retrievers, fuses, and records the
// outcome asynchronously.
type RecommendationOrchestrator struct {
	db         DB
	interests  InterestStoreInterface
	retriever  RetrieverInterface
	classifier ClassifierInterface
	fuser      *Fuser
	oracle     CollaborativeOracle
	stream     *messaging.InteractionStream
	cache      *redis.Client
	metrics    *Metrics
	cfg        *config.RecommendationConfig
	logger     *logrus.Logger
}

func NewRecommendationOrchestrator(
	db DB,
	interests InterestStoreInterface,
	retriever RetrieverInterface,
	classifier ClassifierInterface,
	fuser *Fuser,
	oracle CollaborativeOracle,
	stream *messaging.InteractionStream,
	cache *redis.Client,
	metrics *Metrics,
	cfg *config.RecommendationConfig,
	logger *logrus.Logger,
) *RecommendationOrchestrator {
	return &RecommendationOrchestrator{
		db:         db,
		interests:  interests,
		retriever:  retriever,
		classifier: classifier,
		fuser:      fuser,
		oracle:     oracle,
		stream:     stream,
		cache:      cache,
		metrics:    metrics,
		cfg:        cfg,
		logger:     logger,
	}
}

// Recommend produces a ranked feed for the user. Users with zero recorded
// interactions get the category-only cold path; everyone else gets the full
// three-source fusion. Signal failures degrade the result, they never fail
// the request.
func (o *RecommendationOrchestrator) Recommend(ctx context.Context, userID, query string, limit int) (*models.RecommendationResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if limit <= 0 {
		limit = 10
	}
	started := time.Now()

	if cached := o.cachedResponse(ctx, userID, query, limit); cached != nil {
		return cached, nil
	}

	interactions, err := o.interests.CountInteractions(ctx, userID)
	if err != nil {
		o.logger.WithError(err).WithField("user_id", userID).Warn("Failed to count interactions, treating user as new")
		interactions = 0
	}
	isNew := interactions == 0

	var queryCategories []string
	if query != "" {
		if category, confidence := o.classifier.DetectFast(query); confidence > 0 {
			queryCategories = append(queryCategories, category)
		}
	}

	interests, err := o.interests.Get(ctx, userID)
	if err != nil {
		o.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load user interests")
		interests = nil
	}

	var ranked []models.RankedItem
	path := "warm"
	if isNew {
		path = "cold"
		ranked = o.coldStart(ctx, userID, interests, queryCategories, limit)
	} else {
		ranked = o.warm(ctx, userID, query, interests, queryCategories, limit)
	}

	elapsed := time.Since(started)
	if o.metrics != nil {
		o.metrics.RecommendationDuration.WithLabelValues(path).Observe(elapsed.Seconds())
	}

	interestMap := make(map[string]float64, len(interests))
	for _, entry := range interests {
		interestMap[entry.Category] = entry.Score
	}

	response := &models.RecommendationResponse{
		Results: ranked,
		Metadata: models.RecommendationMetadata{
			UserID:          userID,
			Query:           query,
			IsNewUser:       isNew,
			UserInterests:   interestMap,
			QueryCategories: queryCategories,
			TotalResults:    len(ranked),
			SearchTimeMs:    float64(elapsed.Microseconds()) / 1000.0,
			Timestamp:       time.Now().UTC(),
		},
	}

	o.cacheResponse(ctx, userID, query, limit, response)
	go o.logRecommendation(userID, query, queryCategories, ranked)

	return response, nil
}

func recommendationCacheKey(userID, query string, limit int) string {
	return fmt.Sprintf("rec:%s:%s:%d", userID, query, limit)
}

func (o *RecommendationOrchestrator) cachedResponse(ctx context.Context, userID, query string, limit int) *models.RecommendationResponse {
	if o.cache == nil {
		return nil
	}

	raw, err := o.cache.Get(ctx, recommendationCacheKey(userID, query, limit)).Result()
	if err != nil {
		return nil
	}

	var response models.RecommendationResponse
	if err := json.Unmarshal([]byte(raw), &response); err != nil {
		o.logger.WithError(err).WithField("user_id", userID).Warn("Discarding unreadable cached recommendations")
		return nil
	}
	response.Metadata.Cached = true
	o.logger.WithField("user_id", userID).Debug("Recommendation cache hit")
	return &response
}

func (o *RecommendationOrchestrator) cacheResponse(ctx context.Context, userID, query string, limit int, response *models.RecommendationResponse) {
	if o.cache == nil {
		return
	}

	data, err := json.Marshal(response)
	if err != nil {
		return
	}

	ttl := o.cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if err := o.cache.Set(ctx, recommendationCacheKey(userID, query, limit), data, ttl).Err(); err != nil {
		o.logger.WithError(err).WithField("user_id", userID).Warn("Failed to cache recommendations")
	}
}

// invalidateCache drops every cached feed for the user; interest updates
// change what the next request should return.
func (o *RecommendationOrchestrator) invalidateCache(ctx context.Context, userID string) {
	if o.cache == nil {
		return
	}

	keys, err := o.cache.Keys(ctx, fmt.Sprintf("rec:%s:*", userID)).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	if err := o.cache.Del(ctx, keys...).Err(); err != nil {
		o.logger.WithError(err).WithField("user_id", userID).Warn("Failed to invalidate recommendation cache")
	}
}

// coldStart serves category-only retrieval: query categories first, then
// the user's stored interests by score, capped at MaxColdCategories. A user
// with no interests at all gets the default profile written back so the
// next request finds a consistent state.
func (o *RecommendationOrchestrator) coldStart(ctx context.Context, userID string, interests []models.InterestEntry, queryCategories []string, limit int) []models.RankedItem {
	if len(interests) == 0 {
		o.logger.WithField("user_id", userID).Info("User has no interest profile, seeding default")
		if err := o.interests.Initialize(ctx, userID, defaultColdProfile); err != nil {
			o.logger.WithError(err).WithField("user_id", userID).Warn("Failed to seed default interest profile")
		}
		for _, category := range defaultColdProfile {
			interests = append(interests, models.InterestEntry{Category: category, Score: o.cfg.InitialScore})
		}
	}

	seen := make(map[string]struct{})
	var categories []string
	add := func(category string) {
		category = NormalizeCategory(category)
		if category == "" {
			return
		}
		if _, ok := seen[category]; ok {
			return
		}
		seen[category] = struct{}{}
		categories = append(categories, category)
	}
	for _, category := range queryCategories {
		add(category)
	}
	for _, entry := range interests {
		add(entry.Category)
	}
	if len(categories) > o.cfg.MaxColdCategories {
		categories = categories[:o.cfg.MaxColdCategories]
	}

	// Fill category by category in priority order, stopping as soon as
	// enough distinct posts are collected.
	collected := make(map[string]struct{})
	var candidates []models.CandidateItem
	for _, category := range categories {
		if len(collected) >= limit {
			break
		}
		for _, item := range o.retriever.ByCategory(ctx, category, limit, o.cfg.MinRelevance) {
			if _, ok := collected[item.ID]; ok {
				continue
			}
			collected[item.ID] = struct{}{}
			candidates = append(candidates, item)
		}
	}

	return o.fuser.Merge(nil, candidates, nil, queryCategories, limit)
}

// warm fans out to all three retrievers concurrently and fuses the results.
// Each source is asked for twice the limit so fusion can dedupe overlapping
// candidates without coming up short.
func (o *RecommendationOrchestrator) warm(ctx context.Context, userID, query string, interests []models.InterestEntry, queryCategories []string, limit int) []models.RankedItem {
	fetch := limit * 2

	categories := queryCategories
	if len(categories) == 0 {
		for _, entry := range interests {
			categories = append(categories, entry.Category)
			if len(categories) >= o.cfg.MaxColdCategories {
				break
			}
		}
	}

	var (
		wg       sync.WaitGroup
		collab   []models.CandidateItem
		category []models.CandidateItem
		semantic []models.CandidateItem
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		started := time.Now()
		collab = o.retriever.Collaborative(ctx, userID, fetch)
		o.observeRetrieval(SourceCollab, started)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		started := time.Now()
		for _, c := range categories {
			category = append(category, o.retriever.ByCategory(ctx, c, fetch, o.cfg.MinRelevance)...)
		}
		o.observeRetrieval(SourceCategory, started)
	}()

	if query != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started := time.Now()
			semantic = o.retriever.Semantic(ctx, query, fetch)
			o.observeRetrieval(SourceSemantic, started)
		}()
	}

	wg.Wait()

	return o.fuser.Merge(collab, category, semantic, queryCategories, limit)
}

// TrackInteraction records one user action: it updates the interest vector
// transactionally, appends the immutable event, and mirrors the event to
// the oracle and the stream without blocking the caller.
func (o *RecommendationOrchestrator) TrackInteraction(ctx context.Context, req *models.TrackInteractionRequest) (*models.InteractionEvent, error) {
	if req.UserID == "" || req.ItemID == "" || req.Action == "" {
		return nil, fmt.Errorf("%w: user_id, item_id and action are required", ErrValidation)
	}

	category := o.itemCategory(ctx, req.ItemID)

	if err := o.interests.ApplyEvent(ctx, req.UserID, category, req.Action); err != nil {
		return nil, fmt.Errorf("failed to apply interaction: %w", err)
	}

	event := &models.InteractionEvent{
		UserID:    req.UserID,
		ItemID:    req.ItemID,
		Category:  category,
		Action:    req.Action,
		Timestamp: time.Now().UTC(),
	}
	if err := o.interests.AppendInteraction(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record interaction: %w", err)
	}

	if o.metrics != nil {
		o.metrics.InteractionsTotal.WithLabelValues(req.Action).Inc()
	}

	go o.mirrorInteraction(event)

	return event, nil
}

func (o *RecommendationOrchestrator) itemCategory(ctx context.Context, itemID string) string {
	var category string
	err := o.db.QueryRow(ctx, `SELECT category FROM posts WHERE id = $1`, itemID).Scan(&category)
	if err != nil || category == "" {
		o.logger.WithField("item_id", itemID).Debug("Item category unresolved, tagging as unknown")
		return unknownCategory
	}
	return NormalizeCategory(category)
}

func (o *RecommendationOrchestrator) mirrorInteraction(event *models.InteractionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
	defer cancel()

	o.invalidateCache(ctx, event.UserID)

	if o.oracle != nil {
		if err := o.oracle.Feedback(ctx, event.UserID, event.ItemID, event.Action); err != nil {
			o.logger.WithError(err).WithField("user_id", event.UserID).Warn("Failed to mirror feedback to oracle")
		}
	}
	if o.stream != nil {
		if err := o.stream.Publish(ctx, event); err != nil {
			o.logger.WithError(err).WithField("user_id", event.UserID).Warn("Failed to publish interaction event")
		}
	}
}

func (o *RecommendationOrchestrator) logRecommendation(userID, query string, categories []string, ranked []models.RankedItem) {
	ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
	defer cancel()

	ids := make([]string, len(ranked))
	for i, item := range ranked {
		ids[i] = item.ID
	}

	_, err := o.db.Exec(ctx, `
		INSERT INTO recommendation_log (user_id, query, categories, result_ids, results_count, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, query, categories, ids, len(ids), time.Now().UTC())
	if err != nil {
		o.logger.WithError(err).WithField("user_id", userID).Warn("Failed to append recommendation log")
	}
}

func (o *RecommendationOrchestrator) observeRetrieval(source string, started time.Time) {
	if o.metrics != nil {
		o.metrics.RetrievalDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	}
}
