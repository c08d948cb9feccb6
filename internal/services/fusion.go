package services

import (
	"sort"
	"strings"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/pkg/models"
)

// Fuser merges the three candidate lists into one weighted ranking.
// Fusion is pure arithmetic over already-normalised candidates, so the
// result depends only on the input sets, never on their arrival order.
type Fuser struct {
	cfg *config.RecommendationConfig
}

func NewFuser(cfg *config.RecommendationConfig) *Fuser {
	return &Fuser{cfg: cfg}
}

// Merge combines collaborative, category and semantic candidates under the
// configured weights, boosts items whose category matches one of the query
// categories, and returns the top limit items ordered by score descending
// with ids ascending as the tie-break.
func (f *Fuser) Merge(collab, category, semantic []models.CandidateItem, queryCategories []string, limit int) []models.RankedItem {
	merged := make(map[string]*models.RankedItem)

	accumulate := func(items []models.CandidateItem, weight float64, source string) {
		for _, item := range items {
			entry, ok := merged[item.ID]
			if !ok {
				entry = &models.RankedItem{CandidateItem: item}
				entry.Score = 0
				entry.Source = ""
				merged[item.ID] = entry
			}
			entry.MatchScore += item.Score * weight
			if entry.Source == "" {
				entry.Source = source
			} else if !strings.Contains(entry.Source, source) {
				entry.Source += "+" + source
			}
			// Later sources may know the category when earlier ones did not.
			if entry.Category == "" && item.Category != "" {
				entry.Category = item.Category
				entry.Title = item.Title
				entry.Body = item.Body
			}
		}
	}

	accumulate(collab, f.cfg.CollabWeight, SourceCollab)
	accumulate(category, f.cfg.CategoryWeight, SourceCategory)
	accumulate(semantic, f.cfg.SemanticWeight, SourceSemantic)

	matchSet := make(map[string]struct{}, len(queryCategories))
	for _, c := range queryCategories {
		matchSet[NormalizeCategory(c)] = struct{}{}
	}

	ranked := make([]models.RankedItem, 0, len(merged))
	for _, entry := range merged {
		if _, ok := matchSet[NormalizeCategory(entry.Category)]; ok && entry.Category != "" {
			entry.MatchScore *= f.cfg.CategoryBoost
			entry.CategoryMatch = true
		}
		ranked = append(ranked, *entry)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].MatchScore != ranked[j].MatchScore {
			return ranked[i].MatchScore > ranked[j].MatchScore
		}
		return ranked[i].ID < ranked[j].ID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
