package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/pkg/models"
)

func fusionConfig() *config.RecommendationConfig {
	return &config.RecommendationConfig{
		CollabWeight:   40.0,
		CategoryWeight: 30.0,
		SemanticWeight: 30.0,
		CategoryBoost:  1.2,
	}
}

func TestFuserMergesDuplicatesAcrossSources(t *testing.T) {
	fuser := NewFuser(fusionConfig())

	collab := []models.CandidateItem{
		{ID: "post-1", Category: "cricket", Score: 0.9},
	}
	semantic := []models.CandidateItem{
		{ID: "post-1", Category: "cricket", Score: 0.5},
		{ID: "post-2", Category: "food", Score: 0.8},
	}

	ranked := fuser.Merge(collab, nil, semantic, nil, 10)

	require.Len(t, ranked, 2)
	assert.Equal(t, "post-1", ranked[0].ID)
	assert.InDelta(t, 0.9*40.0+0.5*30.0, ranked[0].MatchScore, 1e-9)
	assert.Equal(t, "collab+semantic", ranked[0].Source)
	assert.Equal(t, "post-2", ranked[1].ID)
	assert.InDelta(t, 0.8*30.0, ranked[1].MatchScore, 1e-9)
}

func TestFuserBoostsQueryCategoryMatches(t *testing.T) {
	fuser := NewFuser(fusionConfig())

	category := []models.CandidateItem{
		{ID: "post-1", Category: "cricket", Score: 0.7},
		{ID: "post-2", Category: "food", Score: 0.7},
	}

	ranked := fuser.Merge(nil, category, nil, []string{"cricket"}, 10)

	require.Len(t, ranked, 2)
	assert.Equal(t, "post-1", ranked[0].ID)
	assert.True(t, ranked[0].CategoryMatch)
	assert.InDelta(t, 0.7*30.0*1.2, ranked[0].MatchScore, 1e-9)
	assert.False(t, ranked[1].CategoryMatch)
	assert.InDelta(t, 0.7*30.0, ranked[1].MatchScore, 1e-9)
}

func TestFuserIsOrderIndependent(t *testing.T) {
	fuser := NewFuser(fusionConfig())

	collab := []models.CandidateItem{
		{ID: "a", Category: "travel", Score: 0.6},
		{ID: "b", Category: "food", Score: 0.4},
	}
	semantic := []models.CandidateItem{
		{ID: "b", Category: "food", Score: 0.9},
		{ID: "c", Category: "travel", Score: 0.3},
	}

	forward := fuser.Merge(collab, nil, semantic, []string{"travel"}, 10)

	reversedCollab := []models.CandidateItem{collab[1], collab[0]}
	reversedSemantic := []models.CandidateItem{semantic[1], semantic[0]}
	backward := fuser.Merge(reversedCollab, nil, reversedSemantic, []string{"travel"}, 10)

	require.Equal(t, len(forward), len(backward))
	for i := range forward {
		assert.Equal(t, forward[i].ID, backward[i].ID)
		assert.InDelta(t, forward[i].MatchScore, backward[i].MatchScore, 1e-9)
	}
}

func TestFuserBreaksTiesByID(t *testing.T) {
	fuser := NewFuser(fusionConfig())

	category := []models.CandidateItem{
		{ID: "zeta", Category: "music", Score: 0.5},
		{ID: "alpha", Category: "music", Score: 0.5},
	}

	ranked := fuser.Merge(nil, category, nil, nil, 10)

	require.Len(t, ranked, 2)
	assert.Equal(t, "alpha", ranked[0].ID)
	assert.Equal(t, "zeta", ranked[1].ID)
}

func TestFuserTruncatesAndRanks(t *testing.T) {
	fuser := NewFuser(fusionConfig())

	var category []models.CandidateItem
	for _, id := range []string{"a", "b", "c", "d"} {
		category = append(category, models.CandidateItem{ID: id, Category: "travel", Score: 0.5})
	}
	category[0].Score = 0.9
	category[1].Score = 0.8

	ranked := fuser.Merge(nil, category, nil, nil, 2)

	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].ID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "b", ranked[1].ID)
	assert.Equal(t, 2, ranked[1].Rank)
}
