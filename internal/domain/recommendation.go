package domain

// SimilarityResult is one entry of the anchor-similarity lane. Score is the
// candidate's community mean rating; Similarity is the composite similarity
// against the anchor and is always > 0 for included entries.
type SimilarityResult struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	Image      string  `json:"image"`
	Score      float64 `json:"score"`
	Popularity int     `json:"popularity"`
	Similarity float64 `json:"similarity"`
}

// RecommendedAnime is one entry of the genre, studio and hidden-gems lanes.
type RecommendedAnime struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	Image      string  `json:"image"`
	Score      float64 `json:"score"`
	Popularity int     `json:"popularity"`
}

// AnchorSection is the "because you liked X" block of the bundle.
type AnchorSection struct {
	Anchor string              `json:"anchor"`
	Anime  []*SimilarityResult `json:"anime"`
}

// GenreSection carries the results of the top-genre search lane.
type GenreSection struct {
	Genre string              `json:"genre"`
	Anime []*RecommendedAnime `json:"anime"`
}

// StudioSection carries the results of the top-studio search lane.
type StudioSection struct {
	Studio string              `json:"studio"`
	Anime  []*RecommendedAnime `json:"anime"`
}

// RecommendationBundle is the full response of one engine invocation.
// Sections are omitted when their lane did not run (no anchor, no top genre,
// no top studio); a lane whose upstream fetch failed yields an empty list.
type RecommendationBundle struct {
	BecauseYouLiked []*AnchorSection    `json:"because_you_liked"`
	FromGenres      *GenreSection       `json:"from_genres,omitempty"`
	FromStudios     *StudioSection      `json:"from_studios,omitempty"`
	HiddenGems      []*RecommendedAnime `json:"hidden_gems"`
}
