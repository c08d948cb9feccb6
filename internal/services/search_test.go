package services

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/pkg/models"
)

func searchConfig() *config.RecommendationConfig {
	return &config.RecommendationConfig{
		CollabWeight:      40.0,
		CategoryWeight:    30.0,
		SemanticWeight:    30.0,
		CategoryBoost:     1.2,
		MinRelevance:      0.5,
		SearchMinInterest: 0.5,
	}
}

func newTestSearchService(t *testing.T, classifier *MockClassifier, retriever *MockRetriever, interests *MockInterestStore) *SearchService {
	t.Helper()

	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)

	cfg := searchConfig()
	return NewSearchService(
		mockDB, classifier, retriever, interests, NewFuser(cfg),
		NewMetrics(prometheus.NewRegistry()), cfg, logrus.New(),
	)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc := newTestSearchService(t, &MockClassifier{}, &MockRetriever{}, &MockInterestStore{})

	_, err := svc.Search(context.Background(), "user-1", "   ", 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearchFusesCategoryAndSemantic(t *testing.T) {
	classifier := &MockClassifier{}
	retriever := &MockRetriever{}
	interests := &MockInterestStore{}
	svc := newTestSearchService(t, classifier, retriever, interests)

	classifier.On("DetectFast", "ipl final").Return("cricket", 1.0)
	retriever.On("ByCategory", mock.Anything, "cricket", 10, 0.5).Return([]models.CandidateItem{
		{ID: "post-1", Category: "cricket", Score: 0.9},
	})
	retriever.On("Semantic", mock.Anything, "ipl final", 10).Return([]models.CandidateItem{
		{ID: "post-1", Category: "cricket", Score: 0.8},
		{ID: "post-2", Category: "sports", Score: 0.6},
	})
	interests.On("Get", mock.Anything, "user-1").Return([]models.InterestEntry{
		{Category: "cricket", Score: 11.0},
	}, nil)

	result, err := svc.Search(context.Background(), "user-1", "ipl final", 10)
	require.NoError(t, err)

	require.Len(t, result.Results, 2)
	assert.Equal(t, "post-1", result.Results[0].ID)
	assert.InDelta(t, (0.9*30.0+0.8*30.0)*1.2, result.Results[0].MatchScore, 1e-9)
	require.Len(t, result.DetectedCategories, 1)
	assert.Equal(t, "cricket", result.DetectedCategories[0].Category)
	// The user already tracks cricket, so no implicit interest is added.
	assert.False(t, result.InterestAdded)
}

func TestSearchGrowsInterestForNewConfidentCategory(t *testing.T) {
	classifier := &MockClassifier{}
	retriever := &MockRetriever{}
	interests := &MockInterestStore{}
	svc := newTestSearchService(t, classifier, retriever, interests)

	classifier.On("DetectFast", "pasta recipe").Return("food", 0.9)
	retriever.On("ByCategory", mock.Anything, "food", 10, 0.5).Return([]models.CandidateItem{})
	retriever.On("Semantic", mock.Anything, "pasta recipe", 10).Return([]models.CandidateItem{})
	interests.On("Get", mock.Anything, "user-1").Return([]models.InterestEntry{
		{Category: "cricket", Score: 11.0},
	}, nil)
	interests.On("ApplyEvent", mock.Anything, "user-1", "food", "search").Return(nil)

	result, err := svc.Search(context.Background(), "user-1", "pasta recipe", 10)
	require.NoError(t, err)

	assert.True(t, result.InterestAdded)
	interests.AssertCalled(t, "ApplyEvent", mock.Anything, "user-1", "food", "search")
}

func TestSearchSkipsInterestBelowConfidenceGate(t *testing.T) {
	classifier := &MockClassifier{}
	retriever := &MockRetriever{}
	interests := &MockInterestStore{}
	svc := newTestSearchService(t, classifier, retriever, interests)

	classifier.On("DetectFast", "something vague").Return("food", 0.4)
	retriever.On("ByCategory", mock.Anything, "food", 10, 0.5).Return([]models.CandidateItem{})
	retriever.On("Semantic", mock.Anything, "something vague", 10).Return([]models.CandidateItem{})

	result, err := svc.Search(context.Background(), "user-1", "something vague", 10)
	require.NoError(t, err)

	assert.False(t, result.InterestAdded)
	interests.AssertNotCalled(t, "ApplyEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchSkipsInterestForFallbackCategories(t *testing.T) {
	classifier := &MockClassifier{}
	retriever := &MockRetriever{}
	interests := &MockInterestStore{}
	svc := newTestSearchService(t, classifier, retriever, interests)

	classifier.On("DetectFast", "mystery words").Return("other", 0.8)
	retriever.On("ByCategory", mock.Anything, "other", 10, 0.5).Return([]models.CandidateItem{})
	retriever.On("Semantic", mock.Anything, "mystery words", 10).Return([]models.CandidateItem{})

	result, err := svc.Search(context.Background(), "user-1", "mystery words", 10)
	require.NoError(t, err)

	assert.False(t, result.InterestAdded)
	interests.AssertNotCalled(t, "ApplyEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchAnonymousUserNeverGrowsInterest(t *testing.T) {
	classifier := &MockClassifier{}
	retriever := &MockRetriever{}
	interests := &MockInterestStore{}
	svc := newTestSearchService(t, classifier, retriever, interests)

	classifier.On("DetectFast", "pasta recipe").Return("food", 1.0)
	retriever.On("ByCategory", mock.Anything, "food", 10, 0.5).Return([]models.CandidateItem{})
	retriever.On("Semantic", mock.Anything, "pasta recipe", 10).Return([]models.CandidateItem{})

	result, err := svc.Search(context.Background(), "", "pasta recipe", 10)
	require.NoError(t, err)

	assert.False(t, result.InterestAdded)
	interests.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}
