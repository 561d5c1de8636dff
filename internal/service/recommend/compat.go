package recommend

// genreCompatibility is a hand-curated, directed sparse table of genre pairs
// that reinforce each other (0-3). Lookup is symmetric: A->B falls back to
// B->A, and pairs absent in both directions score 0.
var genreCompatibility = map[string]map[string]int{
	"Action": {
		"Adventure":    3,
		"Fantasy":      2,
		"Sci-Fi":       2,
		"Supernatural": 1,
	},
	"Adventure": {
		"Fantasy": 3,
		"Mystery": 1,
	},
	"Comedy": {
		"Slice of Life": 3,
		"Romance":       2,
		"School":        2,
	},
	"Drama": {
		"Romance":       3,
		"Slice of Life": 2,
		"Mystery":       1,
	},
	"Mystery": {
		"Suspense":     3,
		"Supernatural": 2,
		"Horror":       2,
	},
	"Horror": {
		"Supernatural": 3,
		"Suspense":     2,
	},
	"Romance": {
		"Slice of Life": 2,
		"School":        2,
	},
	"Sports": {
		"Comedy": 2,
		"Drama":  2,
		"School": 1,
	},
	"Sci-Fi": {
		"Mystery":  2,
		"Suspense": 2,
	},
	"Music": {
		"Slice of Life": 3,
		"Drama":         2,
		"Comedy":        2,
		"School":        2,
	},
	"Fantasy": {
		"Supernatural": 2,
	},
}

// GenreCompatibility returns how strongly two genres reinforce each other.
// Unknown genres are not an error, they simply contribute 0.
func GenreCompatibility(a, b string) int {
	if row, ok := genreCompatibility[a]; ok {
		if v, ok := row[b]; ok {
			return v
		}
	}
	if row, ok := genreCompatibility[b]; ok {
		if v, ok := row[a]; ok {
			return v
		}
	}
	return 0
}

// genreIDs maps MAL genre names to their catalog ids, harvested from the
// /anime/ranking endpoint. The similarity lane uses it to filter the
// popularity pool by the anchor's primary genre.
var genreIDs = map[string]int{
	"Action":        1,
	"Adventure":     2,
	"Comedy":        4,
	"Avant Garde":   5,
	"Mystery":       7,
	"Drama":         8,
	"Ecchi":         9,
	"Fantasy":       10,
	"Horror":        14,
	"Music":         19,
	"Romance":       22,
	"School":        23,
	"Sci-Fi":        24,
	"Girls Love":    26,
	"Boys Love":     28,
	"Sports":        30,
	"Slice of Life": 36,
	"Supernatural":  37,
	"Psychological": 40,
	"Suspense":      41,
	"Award Winning": 46,
	"Gourmet":       47,
}

// GenreID resolves a genre name to its MAL id.
func GenreID(name string) (int, bool) {
	id, ok := genreIDs[name]
	return id, ok
}
