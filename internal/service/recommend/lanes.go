package recommend

import (
	"context"
	"sort"

	"github.com/kapu/anirec-backend-go/internal/constants"
	"github.com/kapu/anirec-backend-go/internal/domain"
	"go.uber.org/zap"
)

// Every lane absorbs its own upstream failure: a failed fetch logs and yields
// an empty result list, never an error. Partial degradation beats a failed
// request.

// similarityLane scores the popularity pool against the anchor. The pool is
// narrowed to candidates sharing the anchor's primary genre (by catalog genre
// id) before scoring.
func (e *Engine) similarityLane(ctx context.Context, token string, anchor *domain.WatchHistoryEntry, profile *TasteProfile) []*domain.SimilarityResult {
	cfg := constants.RecommendConfig

	pool, err := e.catalog.FetchPopularityRanking(ctx, token, cfg.RankingPoolSize)
	if err != nil {
		e.logger.Warn("Similarity lane fetch failed", zap.Error(err))
		return []*domain.SimilarityResult{}
	}

	anchorGenreID, filterByGenre := GenreID(anchor.PrimaryGenre())
	floor := QualityFloor(anchor.Mean)

	seen := make(map[string]struct{})
	results := make([]*domain.SimilarityResult, 0, cfg.SimilarityCount)

	for _, c := range pool {
		if _, watched := profile.WatchedIDs[c.ID]; watched {
			continue
		}
		if filterByGenre && !hasGenre(c.Genres, anchorGenreID) {
			continue
		}
		if c.Mean < floor {
			continue
		}

		base := NormalizeTitle(c.Title)
		if _, dup := seen[base]; dup {
			continue
		}

		sim := SimilarityScore(anchor, c)
		if sim == 0 {
			continue
		}

		seen[base] = struct{}{}
		results = append(results, &domain.SimilarityResult{
			ID:         c.ID,
			Title:      c.Title,
			Image:      c.ImageURL,
			Score:      c.Mean,
			Popularity: c.Popularity,
			Similarity: sim,
		})
	}

	// Similarity primary, mean rating as tiebreaker.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Score > results[j].Score
	})

	if len(results) > cfg.SimilarityCount {
		results = results[:cfg.SimilarityCount]
	}
	return results
}

// searchLane backs the genre and studio lanes: free-text search on the tag
// name, generic quality gate, per-lane sequel dedup, best-rated first.
func (e *Engine) searchLane(ctx context.Context, token, query string, count int, profile *TasteProfile) []*domain.RecommendedAnime {
	cfg := constants.RecommendConfig

	pool, err := e.catalog.SearchByQuery(ctx, token, query, cfg.SearchPoolSize)
	if err != nil {
		e.logger.Warn("Search lane fetch failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return []*domain.RecommendedAnime{}
	}

	seen := make(map[string]struct{})
	results := make([]*domain.RecommendedAnime, 0, count)

	for _, c := range pool {
		if _, watched := profile.WatchedIDs[c.ID]; watched {
			continue
		}
		if c.Mean < cfg.GenericFloor {
			continue
		}
		if c.Popularity > cfg.MaxPopularityRank {
			continue
		}
		if c.NumListUsers < cfg.MinListUsers {
			continue
		}

		base := NormalizeTitle(c.Title)
		if _, dup := seen[base]; dup {
			continue
		}
		seen[base] = struct{}{}

		results = append(results, &domain.RecommendedAnime{
			ID:         c.ID,
			Title:      c.Title,
			Image:      c.ImageURL,
			Score:      c.Mean,
			Popularity: c.Popularity,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > count {
		results = results[:count]
	}
	return results
}

// hiddenGemsLane searches the user's top two genres for well-rated titles in
// the middle of the popularity curve: not top-tier, not obscure.
func (e *Engine) hiddenGemsLane(ctx context.Context, token string, topGenres []string, profile *TasteProfile) []*domain.RecommendedAnime {
	cfg := constants.RecommendConfig

	if len(topGenres) > 2 {
		topGenres = topGenres[:2]
	}

	seen := make(map[string]struct{})
	results := make([]*domain.RecommendedAnime, 0, cfg.HiddenGemCount)

	for _, genre := range topGenres {
		pool, err := e.catalog.SearchByQuery(ctx, token, genre, cfg.SearchPoolSize)
		if err != nil {
			e.logger.Warn("Hidden gems fetch failed",
				zap.String("genre", genre),
				zap.Error(err),
			)
			continue
		}

		for _, c := range pool {
			if _, watched := profile.WatchedIDs[c.ID]; watched {
				continue
			}
			if !isHiddenGem(c) {
				continue
			}

			base := NormalizeTitle(c.Title)
			if _, dup := seen[base]; dup {
				continue
			}
			seen[base] = struct{}{}

			results = append(results, &domain.RecommendedAnime{
				ID:         c.ID,
				Title:      c.Title,
				Image:      c.ImageURL,
				Score:      c.Mean,
				Popularity: c.Popularity,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > cfg.HiddenGemCount {
		results = results[:cfg.HiddenGemCount]
	}
	return results
}

// isHiddenGem is the gem band: good rating, middling popularity rank, enough
// raters to trust the mean.
func isHiddenGem(c *domain.CandidateAnime) bool {
	cfg := constants.RecommendConfig
	return c.Mean > cfg.GemMinMean &&
		c.Popularity > cfg.GemMinRank &&
		c.Popularity < cfg.GemMaxRank &&
		c.NumListUsers > cfg.GemMinListUsers
}

func hasGenre(genres []string, id int) bool {
	for _, g := range genres {
		if gid, ok := GenreID(g); ok && gid == id {
			return true
		}
	}
	return false
}
