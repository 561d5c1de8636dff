package recommend

import (
	"math/rand"
	"testing"

	"github.com/kapu/anirec-backend-go/internal/domain"
)

func TestBuildProfileWeights(t *testing.T) {
	history := []*domain.WatchHistoryEntry{
		{ID: 1, Title: "A", UserScore: 9, Genres: []string{"Action"}, Studios: []string{"Bones"}},
		{ID: 2, Title: "B", UserScore: 7, Genres: []string{"Action", "Drama"}, Studios: []string{"Bones"}},
		{ID: 3, Title: "C", UserScore: 5, Genres: []string{"Comedy"}},
		{ID: 4, Title: "D", UserScore: 0, Genres: []string{"Horror"}},
	}

	profile := BuildProfile(history)

	// 9 contributes 4, 7 contributes 2.
	if got := profile.GenreWeights.Weight("Action"); got != 6 {
		t.Errorf("Action weight = %d, want 6", got)
	}
	if got := profile.GenreWeights.Weight("Drama"); got != 2 {
		t.Errorf("Drama weight = %d, want 2", got)
	}
	// Scores of 5 and below contribute nothing, but the tag is still known.
	if got := profile.GenreWeights.Weight("Comedy"); got != 0 {
		t.Errorf("Comedy weight = %d, want 0", got)
	}
	if got := profile.GenreWeights.Len(); got != 4 {
		t.Errorf("genre table tracks %d tags, want 4", got)
	}
	if got := profile.StudioWeights.Weight("Bones"); got != 6 {
		t.Errorf("Bones weight = %d, want 6", got)
	}
}

func TestBuildProfileWatchedIDs(t *testing.T) {
	history := []*domain.WatchHistoryEntry{
		{ID: 10, UserScore: 8},
		{ID: 20, UserScore: 3},
	}

	profile := BuildProfile(history)

	for _, id := range []int{10, 20} {
		if _, ok := profile.WatchedIDs[id]; !ok {
			t.Errorf("WatchedIDs missing %d", id)
		}
	}
}

func TestBuildProfileHighRatedPool(t *testing.T) {
	history := []*domain.WatchHistoryEntry{
		{ID: 1, UserScore: 9},
		{ID: 2, UserScore: 8},
		{ID: 3, UserScore: 7},
		{ID: 4, UserScore: 0},
	}

	profile := BuildProfile(history)

	if len(profile.HighRated) != 2 {
		t.Fatalf("high-rated pool has %d entries, want 2", len(profile.HighRated))
	}
	for _, entry := range profile.HighRated {
		if entry.UserScore < 8 {
			t.Errorf("entry %d with score %d should not be in the pool", entry.ID, entry.UserScore)
		}
	}
}

func TestWeightTableTopOrdering(t *testing.T) {
	table := NewWeightTable()
	table.Add("Action", 3)
	table.Add("Drama", 5)
	table.Add("Comedy", 3)
	table.Add("Horror", 1)

	got := table.Top(3)
	want := []string{"Drama", "Action", "Comedy"}

	if len(got) != len(want) {
		t.Fatalf("Top(3) returned %d tags, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Top(3)[%d] = %q, want %q (ties keep first-seen order)", i, got[i], want[i])
		}
	}
}

func TestWeightTableTopFewerThanN(t *testing.T) {
	table := NewWeightTable()
	table.Add("Action", 2)

	if got := table.Top(5); len(got) != 1 || got[0] != "Action" {
		t.Errorf("Top(5) = %v, want [Action]", got)
	}
	if got := NewWeightTable().Top(5); len(got) != 0 {
		t.Errorf("Top on empty table = %v, want empty", got)
	}
}

func TestPickAnchor(t *testing.T) {
	empty := BuildProfile(nil)
	if anchor := empty.PickAnchor(rand.New(rand.NewSource(1))); anchor != nil {
		t.Errorf("expected nil anchor for empty history, got %v", anchor)
	}

	history := []*domain.WatchHistoryEntry{
		{ID: 1, UserScore: 9},
		{ID: 2, UserScore: 8},
		{ID: 3, UserScore: 10},
	}
	profile := BuildProfile(history)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		anchor := profile.PickAnchor(rng)
		if anchor == nil {
			t.Fatal("anchor should never be nil with a non-empty pool")
		}
		if anchor.UserScore < 8 {
			t.Errorf("anchor %d has score %d, below the pool threshold", anchor.ID, anchor.UserScore)
		}
	}
}

func TestPickAnchorDeterministicWithSeed(t *testing.T) {
	history := []*domain.WatchHistoryEntry{
		{ID: 1, UserScore: 9},
		{ID: 2, UserScore: 8},
		{ID: 3, UserScore: 10},
	}
	profile := BuildProfile(history)

	first := profile.PickAnchor(rand.New(rand.NewSource(7)))
	second := profile.PickAnchor(rand.New(rand.NewSource(7)))
	if first.ID != second.ID {
		t.Errorf("same seed picked different anchors: %d vs %d", first.ID, second.ID)
	}
}
