package recommend

import (
	"math"

	"github.com/kapu/anirec-backend-go/internal/constants"
	"github.com/kapu/anirec-backend-go/internal/domain"
)

// Composite weights. Primary-genre identity dominates: users self-report
// taste mainly through the headline genre.
const (
	weightPrimary    = 5.0
	weightCompat     = 2.0
	weightOverlap    = 2.0
	weightThemes     = 1.0
	weightProximity  = 3.0
	weightPopularity = 2.0
)

// QualityFloor is the minimum acceptable mean for a similarity candidate:
// never more than one point below the anchor, and never below the absolute
// floor. Candidates under it are rejected outright.
func QualityFloor(anchorMean float64) float64 {
	return math.Max(constants.RecommendConfig.QualityFloor, anchorMean-1.0)
}

// SimilarityScore computes the composite similarity of a candidate against
// the anchor. A return of exactly 0 means "reject, do not recommend" — a
// candidate is never included with score 0.
func SimilarityScore(anchor *domain.WatchHistoryEntry, candidate *domain.CandidateAnime) float64 {
	if candidate.Mean < QualityFloor(anchor.Mean) {
		return 0
	}

	primary := primaryGenreBonus(anchor.Genres, candidate.Genres)
	compat := compatibilityBonus(anchor.Genres, candidate.Genres)
	overlap := setOverlap(anchor.Genres, candidate.Genres)
	themes := setOverlap(anchor.Themes, candidate.Themes)
	proximity := proximityBonus(anchor.Mean, candidate.Mean)
	popularity := popularityBonus(anchor.Popularity, candidate.NumListUsers)

	return weightPrimary*float64(primary) +
		weightCompat*float64(compat) +
		weightOverlap*float64(overlap) +
		weightThemes*float64(themes) +
		weightProximity*float64(proximity) +
		weightPopularity*float64(popularity)
}

// primaryGenreBonus scores headline-genre agreement. Exact position-0 match
// and match-anywhere are mutually exclusive; the secondary-genre bonus stacks
// on either.
func primaryGenreBonus(anchorGenres, candidateGenres []string) int {
	if len(anchorGenres) == 0 || len(candidateGenres) == 0 {
		return 0
	}

	bonus := 0
	if candidateGenres[0] == anchorGenres[0] {
		bonus = 5
	} else if contains(candidateGenres, anchorGenres[0]) {
		bonus = 3
	}

	if len(anchorGenres) > 1 && contains(firstTwo(candidateGenres), anchorGenres[1]) {
		bonus += 2
	}

	return bonus
}

// compatibilityBonus sums pairwise genre compatibility over the Cartesian
// product of each side's first two genres.
func compatibilityBonus(anchorGenres, candidateGenres []string) int {
	total := 0
	for _, a := range firstTwo(anchorGenres) {
		for _, c := range firstTwo(candidateGenres) {
			total += GenreCompatibility(a, c)
		}
	}
	return total
}

func proximityBonus(anchorMean, candidateMean float64) int {
	diff := math.Abs(anchorMean - candidateMean)
	switch {
	case diff <= 0.5:
		return 3
	case diff <= 1.0:
		return 2
	}
	return 0
}

// popularityBonus rewards candidates whose audience size is comparable to the
// anchor's popularity tier. Thresholds loosen as the anchor's rank rises;
// niche anchors (rank >= 3000) get no bonus and no penalty, so their fans are
// not pushed toward mainstream-only suggestions.
func popularityBonus(anchorRank, candidateListUsers int) int {
	switch {
	case anchorRank < 500:
		if candidateListUsers >= 200000 {
			return 2
		}
	case anchorRank < 1500:
		if candidateListUsers >= 100000 {
			return 2
		}
	case anchorRank < 3000:
		if candidateListUsers >= 50000 {
			return 1
		}
	}
	return 0
}

func setOverlap(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	count := 0
	for _, s := range b {
		if _, ok := set[s]; ok {
			count++
			delete(set, s)
		}
	}
	return count
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func firstTwo(list []string) []string {
	if len(list) > 2 {
		return list[:2]
	}
	return list
}
