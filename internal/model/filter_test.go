package model

import "testing"

func TestFilterSetEmpty(t *testing.T) {
	tests := []struct {
		name    string
		filters FilterSet
		want    bool
	}{
		{"nil", nil, true},
		{"no keys", FilterSet{}, true},
		{"empty selections", FilterSet{FilterCategories: {}, FilterBrand: nil}, true},
		{"one selection", FilterSet{FilterCategories: {}, FilterBrand: {"Nike"}}, false},
	}

	for _, tt := range tests {
		if got := tt.filters.Empty(); got != tt.want {
			t.Errorf("%s: Empty() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFilterSetToggle(t *testing.T) {
	f := FilterSet{}
	f.Toggle(FilterBrand, "Nike")
	f.Toggle(FilterBrand, "Adidas")
	if len(f[FilterBrand]) != 2 {
		t.Fatalf("expected 2 brands, got %v", f[FilterBrand])
	}

	f.Toggle(FilterBrand, "Nike")
	if len(f[FilterBrand]) != 1 || f[FilterBrand][0] != "Adidas" {
		t.Errorf("expected [Adidas] after toggling Nike off, got %v", f[FilterBrand])
	}
}

func TestParseSortOption(t *testing.T) {
	tests := []struct {
		in   string
		want SortOption
	}{
		{"date", SortDateDesc},
		{"reverseDate", SortDateAsc},
		{"mostExpensive", SortCostDesc},
		{"leastExpensive", SortCostAsc},
		{"", SortDateDesc},
		{"bogus", SortDateDesc},
	}

	for _, tt := range tests {
		if got := ParseSortOption(tt.in); got != tt.want {
			t.Errorf("ParseSortOption(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
