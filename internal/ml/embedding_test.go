package ml

import (
	"context"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
)

func newTestService() *TextEmbeddingService {
	return NewTextEmbeddingService(&config.EmbeddingConfig{Dimensions: 384}, nil, logrus.New())
}

func TestEncodeIsDeterministic(t *testing.T) {
	svc := newTestService()

	first, err := svc.Encode(context.Background(), "cricket world cup final")
	require.NoError(t, err)
	second, err := svc.Encode(context.Background(), "cricket world cup final")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEncodeProducesUnitVector(t *testing.T) {
	svc := newTestService()

	embedding, err := svc.Encode(context.Background(), "machine learning deployment pipeline")
	require.NoError(t, err)
	require.Len(t, embedding, 384)

	var sum float64
	for _, v := range embedding {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestEncodeRejectsEmptyText(t *testing.T) {
	svc := newTestService()

	_, err := svc.Encode(context.Background(), "   ")
	assert.Error(t, err)
}

func TestSimilarTextsScoreHigherThanUnrelated(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cricket, err := svc.Encode(ctx, "cricket batting bowling wicket innings")
	require.NoError(t, err)
	cricketQuery, err := svc.Encode(ctx, "cricket innings wicket")
	require.NoError(t, err)
	cooking, err := svc.Encode(ctx, "pasta recipe ingredient baking dessert")
	require.NoError(t, err)

	related := CosineSimilarity(cricketQuery, cricket)
	unrelated := CosineSimilarity(cricketQuery, cooking)

	assert.Greater(t, related, unrelated)
	assert.Greater(t, related, 0.5)
}

func TestCosineSimilarityBounds(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0, 0}
	c := []float32{0, 1, 0}

	assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity(a, c), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity(a, []float32{1, 0}))
}

func TestTokenizeNormalizesCaseAndPunctuation(t *testing.T) {
	tokens := Tokenize("Cricket, WORLD cup (final)!")
	assert.Equal(t, []string{"cricket", "world", "cup", "final"}, tokens)

	// Hyphenated terms stay whole so "t-20" style tokens keep their meaning.
	assert.Equal(t, []string{"all-rounder"}, Tokenize("All-Rounder"))
}
