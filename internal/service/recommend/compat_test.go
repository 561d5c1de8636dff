package recommend

import "testing"

func TestGenreCompatibility(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"direct lookup", "Action", "Adventure", 3},
		{"reverse lookup falls back", "Adventure", "Action", 3},
		{"weak pair", "Action", "Supernatural", 1},
		{"music reinforces slice of life", "Music", "Slice of Life", 3},
		{"unknown genre scores zero", "Action", "Josei", 0},
		{"both unknown score zero", "Isekai", "Mecha", 0},
		{"same genre not in table", "Action", "Action", 0},
		{"empty strings", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenreCompatibility(tt.a, tt.b); got != tt.want {
				t.Errorf("GenreCompatibility(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestGenreCompatibilitySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Action", "Fantasy"},
		{"Comedy", "Slice of Life"},
		{"Mystery", "Suspense"},
		{"Horror", "Supernatural"},
	}

	for _, pair := range pairs {
		ab := GenreCompatibility(pair[0], pair[1])
		ba := GenreCompatibility(pair[1], pair[0])
		if ab != ba {
			t.Errorf("GenreCompatibility(%q, %q) = %d but reversed = %d", pair[0], pair[1], ab, ba)
		}
	}
}

func TestGenreID(t *testing.T) {
	if id, ok := GenreID("Action"); !ok || id != 1 {
		t.Errorf("GenreID(Action) = (%d, %v), want (1, true)", id, ok)
	}
	if id, ok := GenreID("Slice of Life"); !ok || id != 36 {
		t.Errorf("GenreID(Slice of Life) = (%d, %v), want (36, true)", id, ok)
	}
	if _, ok := GenreID("Not a Genre"); ok {
		t.Error("GenreID should not resolve unknown names")
	}
}
