package recommend

import (
	"regexp"
	"strings"
)

// Sequel/season markers. Everything from the first marker onward is noise for
// series identity ("Bocchi the Rock! 2nd Season" -> "Bocchi the Rock!").
var (
	seasonMarkerPattern   = regexp.MustCompile(`(?i)\b(2nd|3rd|season|part|episode|ova|movie|special|final)\b.*$`)
	romanNumeralPattern   = regexp.MustCompile(`\s+(?i:[IVXLCDM]+)$`)
	trailingNumberPattern = regexp.MustCompile(`\s+\d+$`)
)

// NormalizeTitle reduces a title to its base-series form, used purely as a
// dedup key: two titles with equal base form are treated as the same series
// and only the first-encountered one is kept in a lane.
func NormalizeTitle(title string) string {
	base := seasonMarkerPattern.ReplaceAllString(title, "")
	base = romanNumeralPattern.ReplaceAllString(base, "")
	base = trailingNumberPattern.ReplaceAllString(base, "")

	if idx := strings.IndexAny(base, ":-"); idx >= 0 {
		base = base[:idx]
	}

	return strings.TrimSpace(base)
}
