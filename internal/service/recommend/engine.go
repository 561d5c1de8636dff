package recommend

import (
	"context"
	"math/rand"
	"time"

	"github.com/kapu/anirec-backend-go/internal/constants"
	"github.com/kapu/anirec-backend-go/internal/domain"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// CatalogSource is the catalog collaborator the engine pulls history and
// candidate pools from.
type CatalogSource interface {
	FetchWatchHistory(ctx context.Context, token string) ([]*domain.WatchHistoryEntry, error)
	FetchPopularityRanking(ctx context.Context, token string, limit int) ([]*domain.CandidateAnime, error)
	SearchByQuery(ctx context.Context, token, query string, limit int) ([]*domain.CandidateAnime, error)
}

// Engine runs the recommendation pipeline: taste profile, anchor selection,
// four candidate lanes, one bundle. Stateless across invocations; everything
// is rebuilt per call.
type Engine struct {
	catalog CatalogSource
	rng     *rand.Rand
	logger  *zap.Logger
}

// NewEngine creates an engine. rng drives anchor selection and is injectable
// so tests can pin the anchor; pass nil for a time-seeded source.
func NewEngine(catalog CatalogSource, rng *rand.Rand, logger *zap.Logger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		catalog: catalog,
		rng:     rng,
		logger:  logger,
	}
}

// Generate builds the full recommendation bundle for the user behind the
// token. Only the history fetch can fail the request; each lane degrades to
// an empty list on its own upstream failure.
func (e *Engine) Generate(ctx context.Context, token string) (*domain.RecommendationBundle, error) {
	history, err := e.catalog.FetchWatchHistory(ctx, token)
	if err != nil {
		return nil, err
	}

	profile := BuildProfile(history)

	// Anchor selection strictly follows profile completion.
	anchor := profile.PickAnchor(e.rng)
	topGenres := profile.GenreWeights.Top(constants.RecommendConfig.TopGenres)
	topStudios := profile.StudioWeights.Top(constants.RecommendConfig.TopStudios)

	e.logger.Info("Taste profile built",
		zap.Int("history", len(history)),
		zap.Int("high_rated", len(profile.HighRated)),
		zap.Strings("top_genres", topGenres),
		zap.Strings("top_studios", topStudios),
	)

	var (
		similar    []*domain.SimilarityResult
		fromGenre  []*domain.RecommendedAnime
		fromStudio []*domain.RecommendedAnime
		hiddenGems []*domain.RecommendedAnime
	)

	// The lanes share no mutable state, so they run concurrently; each one
	// absorbs its own upstream failure.
	p := pool.New().WithMaxGoroutines(4)

	if anchor != nil {
		p.Go(func() {
			similar = e.similarityLane(ctx, token, anchor, profile)
		})
	}
	if len(topGenres) > 0 {
		p.Go(func() {
			fromGenre = e.searchLane(ctx, token, topGenres[0], constants.RecommendConfig.GenreCount, profile)
		})
		p.Go(func() {
			hiddenGems = e.hiddenGemsLane(ctx, token, topGenres, profile)
		})
	}
	if len(topStudios) > 0 {
		p.Go(func() {
			fromStudio = e.searchLane(ctx, token, topStudios[0], constants.RecommendConfig.StudioCount, profile)
		})
	}

	p.Wait()

	bundle := &domain.RecommendationBundle{
		BecauseYouLiked: []*domain.AnchorSection{},
		HiddenGems:      []*domain.RecommendedAnime{},
	}

	if anchor != nil {
		bundle.BecauseYouLiked = append(bundle.BecauseYouLiked, &domain.AnchorSection{
			Anchor: anchor.Title,
			Anime:  similar,
		})
	}
	if len(topGenres) > 0 {
		bundle.FromGenres = &domain.GenreSection{
			Genre: topGenres[0],
			Anime: fromGenre,
		}
	}
	if len(topStudios) > 0 {
		bundle.FromStudios = &domain.StudioSection{
			Studio: topStudios[0],
			Anime:  fromStudio,
		}
	}
	if hiddenGems != nil {
		bundle.HiddenGems = hiddenGems
	}

	return bundle, nil
}
