package closet

import (
	"cmp"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/erazemk/garderoba/internal/model"
)

// UniqueBrands returns the distinct non-empty brands, compared
// case-insensitively and sorted alphabetically. The first spelling seen wins.
func UniqueBrands(items []model.Item) []string {
	seen := make(map[string]bool)
	var brands []string
	for _, item := range items {
		b := strings.TrimSpace(item.Brand)
		if b == "" || seen[strings.ToLower(b)] {
			continue
		}
		seen[strings.ToLower(b)] = true
		brands = append(brands, b)
	}
	slices.SortFunc(brands, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return brands
}

type suggestion struct {
	brand    string
	tier     int
	distance int
}

// SuggestBrands ranks known brands for an autocomplete query. Prefix matches
// come first, then substring matches, then close misspellings ordered by edit
// distance. Within a tier brands are alphabetical.
func SuggestBrands(brands []string, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		if limit > 0 && len(brands) > limit {
			return slices.Clone(brands[:limit])
		}
		return slices.Clone(brands)
	}

	// Allow roughly one typo per three characters. Shorter queries only
	// match literally.
	maxDistance := len(q) / 3

	var found []suggestion
	for _, b := range brands {
		lower := strings.ToLower(b)
		switch {
		case strings.HasPrefix(lower, q):
			found = append(found, suggestion{brand: b, tier: 0})
		case strings.Contains(lower, q):
			found = append(found, suggestion{brand: b, tier: 1})
		case maxDistance > 0:
			d := levenshtein.ComputeDistance(q, lower)
			if d > maxDistance && len(lower) > len(q) {
				// A misspelled start of a long name should still match.
				d = levenshtein.ComputeDistance(q, lower[:len(q)])
			}
			if d <= maxDistance {
				found = append(found, suggestion{brand: b, tier: 2, distance: d})
			}
		}
	}

	slices.SortFunc(found, func(a, b suggestion) int {
		if c := cmp.Compare(a.tier, b.tier); c != 0 {
			return c
		}
		if c := cmp.Compare(a.distance, b.distance); c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(a.brand), strings.ToLower(b.brand))
	})

	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	out := make([]string, 0, len(found))
	for _, s := range found {
		out = append(out, s.brand)
	}
	return out
}
