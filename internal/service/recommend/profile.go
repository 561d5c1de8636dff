package recommend

import (
	"math/rand"
	"sort"

	"github.com/kapu/anirec-backend-go/internal/constants"
	"github.com/kapu/anirec-backend-go/internal/domain"
)

// WeightTable accumulates per-tag weights while remembering first-seen order,
// so that Top is deterministic: ties rank in history order (the sort is
// stable).
type WeightTable struct {
	weights map[string]int
	order   []string
}

func NewWeightTable() *WeightTable {
	return &WeightTable{weights: make(map[string]int)}
}

func (t *WeightTable) Add(tag string, weight int) {
	if tag == "" {
		return
	}
	if _, ok := t.weights[tag]; !ok {
		t.order = append(t.order, tag)
	}
	t.weights[tag] += weight
}

func (t *WeightTable) Weight(tag string) int {
	return t.weights[tag]
}

func (t *WeightTable) Len() int {
	return len(t.order)
}

// Top returns up to n tags ranked by weight descending.
func (t *WeightTable) Top(n int) []string {
	ranked := make([]string, len(t.order))
	copy(ranked, t.order)

	sort.SliceStable(ranked, func(i, j int) bool {
		return t.weights[ranked[i]] > t.weights[ranked[j]]
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TasteProfile is the per-invocation summary of a user's rated history.
// Rebuilt from scratch on every request; never persisted.
type TasteProfile struct {
	WatchedIDs    map[int]struct{}
	GenreWeights  *WeightTable
	StudioWeights *WeightTable
	ThemeWeights  *WeightTable
	HighRated     []*domain.WatchHistoryEntry
}

// BuildProfile folds the watch history into weighted tag tables. Each tag of
// an entry contributes max(score-5, 0), so scores of 5 and below express no
// preference; entries rated 8+ join the anchor pool.
func BuildProfile(history []*domain.WatchHistoryEntry) *TasteProfile {
	profile := &TasteProfile{
		WatchedIDs:    make(map[int]struct{}, len(history)),
		GenreWeights:  NewWeightTable(),
		StudioWeights: NewWeightTable(),
		ThemeWeights:  NewWeightTable(),
	}

	for _, entry := range history {
		profile.WatchedIDs[entry.ID] = struct{}{}

		weight := 0
		if entry.UserScore > 0 {
			weight = max(entry.UserScore-5, 0)
		}

		for _, g := range entry.Genres {
			profile.GenreWeights.Add(g, weight)
		}
		for _, s := range entry.Studios {
			profile.StudioWeights.Add(s, weight)
		}
		for _, th := range entry.Themes {
			profile.ThemeWeights.Add(th, weight)
		}

		if entry.UserScore >= constants.RecommendConfig.HighRatedThreshold {
			profile.HighRated = append(profile.HighRated, entry)
		}
	}

	return profile
}

// PickAnchor draws one high-rated title uniformly at random. The re-roll on
// every call is the "regenerate recommendations" mechanism. Returns nil when
// the user has no entries rated 8+.
func (p *TasteProfile) PickAnchor(rng *rand.Rand) *domain.WatchHistoryEntry {
	if len(p.HighRated) == 0 {
		return nil
	}
	return p.HighRated[rng.Intn(len(p.HighRated))]
}
