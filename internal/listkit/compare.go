package listkit

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// StringComparator returns a locale-aware, case-insensitive string
// comparator. Collators keep internal buffers and are not safe for
// concurrent use, so callers build one per pipeline run.
func StringComparator() func(a, b string) int {
	c := collate.New(language.Und, collate.Loose)
	return c.CompareString
}

// dateLayouts covers provider date formats in decreasing precision.
// TMDB/iTunes send "2006-01-02", Open Library often only a year.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
	time.RFC3339,
}

// DateValue resolves a provider date string to a sortable timestamp.
// Missing or unparsable dates resolve to the earliest possible value, so
// they sort last when ordering by recency descending.
func DateValue(s *string) int64 {
	if s == nil || strings.TrimSpace(*s) == "" {
		return math.MinInt64
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(*s)); err == nil {
			return t.Unix()
		}
	}
	return math.MinInt64
}

// CompareDates orders by resolved timestamp, earliest first.
func CompareDates(a, b *string) int {
	av, bv := DateValue(a), DateValue(b)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	}
	return 0
}

// RatingValue ranks a personal rating; "no rating" counts as zero.
// Presentation keeps nil and zero distinguishable, ranking does not.
func RatingValue(r *int) int {
	if r == nil {
		return 0
	}
	return *r
}

// CompareRatings orders by rating ascending with nil ranked as zero.
func CompareRatings(a, b *int) int {
	return RatingValue(a) - RatingValue(b)
}

// Desc inverts a comparator.
func Desc[T any](cmp func(a, b T) int) func(a, b T) int {
	return func(a, b T) int { return -cmp(a, b) }
}
