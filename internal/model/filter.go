package model

// FilterSet maps a filter category name to the selected values. A missing or
// empty selection imposes no constraint.
type FilterSet map[string][]string

// Filter category names.
const (
	FilterCategories = "Categories"
	FilterBrand      = "Brand"
	FilterSize       = "Size"
	FilterColor      = "Color"
	FilterCondition  = "Condition"
)

// FilterNames lists the recognised filter categories in display order.
var FilterNames = []string{FilterCategories, FilterBrand, FilterSize, FilterColor, FilterCondition}

// Empty reports whether no category has a selection.
func (f FilterSet) Empty() bool {
	for _, values := range f {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// Toggle adds value to the named category, or removes it if already selected.
func (f FilterSet) Toggle(name, value string) {
	current := f[name]
	for i, v := range current {
		if v == value {
			f[name] = append(current[:i:i], current[i+1:]...)
			return
		}
	}
	f[name] = append(current, value)
}

// SortOption orders the displayed closet.
type SortOption string

// Sort options, named as the closet view labels them.
const (
	SortDateDesc = SortOption("date")
	SortDateAsc  = SortOption("reverseDate")
	SortCostDesc = SortOption("mostExpensive")
	SortCostAsc  = SortOption("leastExpensive")
)

// SortOptions lists every sort option in display order.
var SortOptions = []SortOption{SortDateDesc, SortDateAsc, SortCostDesc, SortCostAsc}

// ParseSortOption returns the matching option, falling back to SortDateDesc.
func ParseSortOption(s string) SortOption {
	for _, o := range SortOptions {
		if string(o) == s {
			return o
		}
	}
	return SortDateDesc
}

// Label returns the human-readable name of the sort option.
func (o SortOption) Label() string {
	switch o {
	case SortDateAsc:
		return "oldest"
	case SortCostDesc:
		return "$$$ - $"
	case SortCostAsc:
		return "$ - $$$"
	default:
		return "newest"
	}
}
