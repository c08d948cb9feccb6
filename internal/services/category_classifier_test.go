package services

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/ml"
)

func classifierConfig() *config.RecommendationConfig {
	return &config.RecommendationConfig{
		ScoreFloor:         0.1,
		OracleBoost:        0.3,
		KeywordVoteWeight:  0.3,
		SemanticVoteWeight: 0.4,
		OracleVoteWeight:   0.3,
	}
}

func testEmbedder() *ml.TextEmbeddingService {
	return ml.NewTextEmbeddingService(&config.EmbeddingConfig{Dimensions: 384}, nil, logrus.New())
}

func TestDetectFastKeywordMatch(t *testing.T) {
	c := NewCategoryClassifier(nil, nil, nil, classifierConfig(), logrus.New())

	category, confidence := c.DetectFast("cricket world cup")

	assert.Equal(t, "cricket", category)
	assert.Greater(t, confidence, 0.3)
}

func TestDetectFastSingleKeyword(t *testing.T) {
	c := NewCategoryClassifier(nil, nil, nil, classifierConfig(), logrus.New())

	category, confidence := c.DetectFast("best football skills")

	assert.Equal(t, "football", category)
	assert.InDelta(t, 1.0/3.0, confidence, 1e-9)
}

func TestDetectFastMultiKeywordBoostCapped(t *testing.T) {
	c := NewCategoryClassifier(nil, nil, nil, classifierConfig(), logrus.New())

	// Three cricket keywords in a three-word query saturate confidence.
	category, confidence := c.DetectFast("cricket world cup")

	assert.Equal(t, "cricket", category)
	assert.Equal(t, 1.0, confidence)
}

func TestDetectFastMiss(t *testing.T) {
	c := NewCategoryClassifier(nil, nil, nil, classifierConfig(), logrus.New())

	category, confidence := c.DetectFast("xyzzy plugh quux")

	assert.Equal(t, FastPathFallback, category)
	assert.Equal(t, fastPathMissConf, confidence)
}

func TestDetectFastEmptyQuery(t *testing.T) {
	c := NewCategoryClassifier(nil, nil, nil, classifierConfig(), logrus.New())

	category, confidence := c.DetectFast("   ")

	assert.Equal(t, FastPathFallback, category)
	assert.Equal(t, 0.0, confidence)
}

func TestDetectFastIsDeterministic(t *testing.T) {
	c := NewCategoryClassifier(nil, nil, nil, classifierConfig(), logrus.New())

	first, _ := c.DetectFast("gym workout routine")
	for i := 0; i < 20; i++ {
		category, _ := c.DetectFast("gym workout routine")
		assert.Equal(t, first, category)
	}
}

func TestClassifyRanksDominantCategoryFirst(t *testing.T) {
	c := NewCategoryClassifier(nil, testEmbedder(), nil, classifierConfig(), logrus.New())

	scores := c.Classify(context.Background(), "cricket world cup ipl dhoni kohli batting wicket")

	require.NotEmpty(t, scores)
	assert.Equal(t, "cricket", scores[0].Category)
	assert.Greater(t, scores[0].Confidence, 0.1)

	// Scores come back highest first.
	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i-1].Confidence, scores[i].Confidence)
	}
}

func TestClassifyFallsBackToGeneral(t *testing.T) {
	c := NewCategoryClassifier(nil, nil, nil, classifierConfig(), logrus.New())

	scores := c.Classify(context.Background(), "xyzzy plugh quux")

	require.Len(t, scores, 1)
	assert.Equal(t, FallbackCategory, scores[0].Category)
	assert.Equal(t, fallbackConfidence, scores[0].Confidence)
}

type fixedOracle struct {
	answer string
}

func (o *fixedOracle) DetectCategory(ctx context.Context, text string, categories []string) string {
	return o.answer
}

func TestClassifyIgnoresUnknownOracleAnswer(t *testing.T) {
	c := NewCategoryClassifier(nil, nil, &fixedOracle{answer: "bananaland"}, classifierConfig(), logrus.New())

	scores := c.Classify(context.Background(), "xyzzy plugh quux")

	require.Len(t, scores, 1)
	assert.Equal(t, FallbackCategory, scores[0].Category)
}

func TestClassifyCountsExactOracleAnswer(t *testing.T) {
	c := NewCategoryClassifier(nil, nil, &fixedOracle{answer: "Travel"}, classifierConfig(), logrus.New())

	scores := c.Classify(context.Background(), "xyzzy plugh quux")

	// Oracle vote alone: 0.3 weight * 0.3 boost = 0.09, below the floor,
	// so even an exact answer cannot carry a category on its own.
	require.Len(t, scores, 1)
	assert.Equal(t, FallbackCategory, scores[0].Category)
}

func TestNormalizeCategoryResolvesAliases(t *testing.T) {
	assert.Equal(t, "technology", NormalizeCategory("Coding"))
	assert.Equal(t, "travel", NormalizeCategory(" Trekking "))
	assert.Equal(t, "cricket", NormalizeCategory("cricket"))
	assert.Equal(t, "somethingnew", NormalizeCategory("SomethingNew"))
}
