package recommend

import (
	"testing"

	"github.com/kapu/anirec-backend-go/internal/domain"
)

func TestQualityFloor(t *testing.T) {
	tests := []struct {
		anchorMean float64
		want       float64
	}{
		{8.7, 7.7},  // one point under the anchor
		{9.5, 8.5},
		{7.0, 7.5},  // absolute floor wins for weaker anchors
		{6.0, 7.5},
	}

	for _, tt := range tests {
		if got := QualityFloor(tt.anchorMean); got != tt.want {
			t.Errorf("QualityFloor(%.1f) = %.1f, want %.1f", tt.anchorMean, got, tt.want)
		}
	}
}

func TestSimilarityScoreRejectsBelowFloor(t *testing.T) {
	anchor := &domain.WatchHistoryEntry{
		Mean:   8.7,
		Genres: []string{"Action", "Adventure"},
	}
	candidate := &domain.CandidateAnime{
		Mean:   7.6, // floor is 7.7
		Genres: []string{"Action", "Adventure"},
	}

	if got := SimilarityScore(anchor, candidate); got != 0 {
		t.Errorf("expected hard rejection (0), got %.1f", got)
	}
}

func TestSimilarityScoreComposite(t *testing.T) {
	anchor := &domain.WatchHistoryEntry{
		Mean:       8.7,
		Popularity: 50,
		Genres:     []string{"Action", "Adventure"},
	}
	candidate := &domain.CandidateAnime{
		Mean:         9.0,
		NumListUsers: 500000,
		Genres:       []string{"Action", "Fantasy"},
	}

	// primary 5*5, compat 2*8, overlap 2*1, themes 0, proximity 3*3, popularity 2*2
	want := 56.0
	if got := SimilarityScore(anchor, candidate); got != want {
		t.Errorf("SimilarityScore = %.1f, want %.1f", got, want)
	}
}

func TestSimilarityScoreThemeOverlap(t *testing.T) {
	anchor := &domain.WatchHistoryEntry{
		Mean:   8.0,
		Genres: []string{"Action"},
		Themes: []string{"Military", "Mecha"},
	}
	base := &domain.CandidateAnime{
		Mean:   8.0,
		Genres: []string{"Action"},
	}
	withThemes := &domain.CandidateAnime{
		Mean:   8.0,
		Genres: []string{"Action"},
		Themes: []string{"Military", "Mecha"},
	}

	diff := SimilarityScore(anchor, withThemes) - SimilarityScore(anchor, base)
	if diff != 2.0 { // two shared themes at weight 1
		t.Errorf("theme overlap contributed %.1f, want 2.0", diff)
	}
}

func TestPrimaryGenreBonus(t *testing.T) {
	tests := []struct {
		name      string
		anchor    []string
		candidate []string
		want      int
	}{
		{"exact headline match", []string{"Action", "Adventure"}, []string{"Action", "Sci-Fi"}, 5},
		{"headline elsewhere", []string{"Action"}, []string{"Fantasy", "Action"}, 3},
		{"secondary stacks on exact", []string{"Action", "Adventure"}, []string{"Action", "Adventure"}, 7},
		{"secondary stacks on elsewhere", []string{"Action", "Adventure"}, []string{"Adventure", "Action"}, 5},
		{"no agreement", []string{"Romance"}, []string{"Horror"}, 0},
		{"secondary beyond first two ignored", []string{"Action", "Adventure"}, []string{"Action", "Sci-Fi", "Adventure"}, 5},
		{"empty anchor", nil, []string{"Action"}, 0},
		{"empty candidate", []string{"Action"}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := primaryGenreBonus(tt.anchor, tt.candidate); got != tt.want {
				t.Errorf("primaryGenreBonus = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProximityBonus(t *testing.T) {
	tests := []struct {
		anchorMean, candidateMean float64
		want                      int
	}{
		{8.7, 9.0, 3},
		{8.7, 8.2, 3},
		{8.7, 7.8, 2},
		{8.7, 9.7, 2},
		{8.7, 7.5, 0},
	}

	for _, tt := range tests {
		if got := proximityBonus(tt.anchorMean, tt.candidateMean); got != tt.want {
			t.Errorf("proximityBonus(%.1f, %.1f) = %d, want %d", tt.anchorMean, tt.candidateMean, got, tt.want)
		}
	}
}

func TestPopularityBonus(t *testing.T) {
	tests := []struct {
		name              string
		anchorRank        int
		candidateListUser int
		want              int
	}{
		{"top anchor, huge audience", 50, 300000, 2},
		{"top anchor, modest audience", 50, 150000, 0},
		{"mid anchor, large audience", 1000, 150000, 2},
		{"mid anchor, small audience", 1000, 80000, 0},
		{"lower anchor, decent audience", 2500, 60000, 1},
		{"niche anchor gets nothing", 4000, 1000000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := popularityBonus(tt.anchorRank, tt.candidateListUser); got != tt.want {
				t.Errorf("popularityBonus(%d, %d) = %d, want %d", tt.anchorRank, tt.candidateListUser, got, tt.want)
			}
		})
	}
}

func TestSetOverlapIgnoresDuplicates(t *testing.T) {
	if got := setOverlap([]string{"A", "B"}, []string{"A", "A", "B"}); got != 2 {
		t.Errorf("setOverlap = %d, want 2", got)
	}
	if got := setOverlap(nil, []string{"A"}); got != 0 {
		t.Errorf("setOverlap with empty side = %d, want 0", got)
	}
}
