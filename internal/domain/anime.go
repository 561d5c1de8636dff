package domain

// WatchHistoryEntry is a single completed anime from the user's MAL list,
// annotated with the metadata the recommendation engine scores against.
// Entries are read-only inputs; the engine never mutates them.
type WatchHistoryEntry struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	ImageURL     string   `json:"image_url,omitempty"`
	UserScore    int      `json:"user_score"` // 0-10, 0 means unrated
	Genres       []string `json:"genres"`     // catalog order, position 0 is the primary genre
	Studios      []string `json:"studios"`
	Themes       []string `json:"themes"`
	Mean         float64  `json:"mean"`
	Popularity   int      `json:"popularity"` // rank, lower is more popular
	NumListUsers int      `json:"num_list_users"`
}

// CandidateAnime is a title returned by catalog search/ranking endpoints,
// considered for recommendation.
type CandidateAnime struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	ImageURL     string   `json:"image_url,omitempty"`
	Mean         float64  `json:"mean"`
	Popularity   int      `json:"popularity"`
	NumListUsers int      `json:"num_list_users"`
	Genres       []string `json:"genres"`
	Themes       []string `json:"themes"`
	Studios      []string `json:"studios"`
}

// PrimaryGenre returns the catalog's first-listed genre, or "" if none.
func (c *CandidateAnime) PrimaryGenre() string {
	if len(c.Genres) == 0 {
		return ""
	}
	return c.Genres[0]
}

// PrimaryGenre returns the catalog's first-listed genre, or "" if none.
func (w *WatchHistoryEntry) PrimaryGenre() string {
	if len(w.Genres) == 0 {
		return ""
	}
	return w.Genres[0]
}
