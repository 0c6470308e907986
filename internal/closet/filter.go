package closet

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/erazemk/garderoba/internal/model"
)

// Apply filters items by the selected values and orders the result. The input
// slice is never modified.
//
// Missing or malformed purchase dates sort as the earliest possible date.
// Unknown filter names impose no constraint and unknown sort options order by
// date, newest first.
func Apply(items []model.Item, filters model.FilterSet, sort model.SortOption) []model.Item {
	out := Filter(items, filters)
	Sort(out, sort)
	return out
}

// Filter returns the items matching every non-empty selection, in input order.
func Filter(items []model.Item, filters model.FilterSet) []model.Item {
	if filters.Empty() {
		return slices.Clone(items)
	}

	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		if matches(item, filters) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item model.Item, filters model.FilterSet) bool {
	for name, selected := range filters {
		if len(selected) == 0 {
			continue
		}
		field, ok := filterField(item, name)
		if !ok {
			continue
		}
		if !slices.ContainsFunc(selected, func(v string) bool {
			return strings.EqualFold(v, field)
		}) {
			return false
		}
	}
	return true
}

func filterField(item model.Item, name string) (string, bool) {
	switch name {
	case model.FilterCategories:
		return item.Category.Group, true
	case model.FilterBrand:
		return item.Brand, true
	case model.FilterSize:
		return item.Size.Group, true
	case model.FilterColor:
		return item.Color, true
	case model.FilterCondition:
		return item.Condition, true
	}
	return "", false
}

// Sort orders items in place. The sort is stable, so items the option
// considers equal keep their relative order.
func Sort(items []model.Item, option model.SortOption) {
	switch option {
	case model.SortDateAsc:
		slices.SortStableFunc(items, func(a, b model.Item) int {
			if c := compareDates(a, b); c != 0 {
				return c
			}
			return strings.Compare(b.Name, a.Name)
		})
	case model.SortCostDesc:
		slices.SortStableFunc(items, func(a, b model.Item) int {
			return b.PurchaseCost.Cmp(a.PurchaseCost)
		})
	case model.SortCostAsc:
		slices.SortStableFunc(items, func(a, b model.Item) int {
			return a.PurchaseCost.Cmp(b.PurchaseCost)
		})
	default:
		slices.SortStableFunc(items, func(a, b model.Item) int {
			if c := compareDates(b, a); c != 0 {
				return c
			}
			return strings.Compare(a.Name, b.Name)
		})
	}
}

func compareDates(a, b model.Item) int {
	return cmp.Compare(sortTime(a).Unix(), sortTime(b).Unix())
}

// sortTime places undated items before every real date.
func sortTime(item model.Item) time.Time {
	t, ok := item.PurchaseTime()
	if !ok {
		return time.Time{}
	}
	return t
}
