package closet

import (
	"testing"
	"time"

	"github.com/erazemk/garderoba/internal/model"
	"github.com/shopspring/decimal"
)

var statsNow = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

func TestTrailingMonthsEmpty(t *testing.T) {
	buckets := TrailingMonths(nil, statsNow, 3)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}

	wantKeys := []string{"2024-01", "2024-02", "2024-03"}
	wantLabels := []string{"january", "february", "march"}
	for i, b := range buckets {
		if b.Key != wantKeys[i] || b.Label != wantLabels[i] {
			t.Errorf("bucket %d: expected %s/%s, got %s/%s", i, wantKeys[i], wantLabels[i], b.Key, b.Label)
		}
		if b.Count != 0 || b.Sum.StringFixed(2) != "0.00" {
			t.Errorf("bucket %d: expected zero, got count %d sum %s", i, b.Count, b.Sum)
		}
	}
}

func TestTrailingMonthsCrossesYear(t *testing.T) {
	buckets := TrailingMonths(nil, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), 4)
	want := []string{"2023-11", "2023-12", "2024-01", "2024-02"}
	for i, b := range buckets {
		if b.Key != want[i] {
			t.Errorf("bucket %d: expected %s, got %s", i, want[i], b.Key)
		}
	}
}

func TestTrailingMonthsRoundsToCents(t *testing.T) {
	items := []model.Item{
		testItem("a", "Tops", "", "2024-03-01", "19.99"),
		testItem("b", "Tops", "", "2024-03-02", "5.005"),
		testItem("c", "Tops", "", "2024-03-03", "0.00"),
		testItem("old", "Tops", "", "2023-12-31", "100"),
		testItem("undated", "Tops", "", "", "100"),
	}

	buckets := TrailingMonths(items, statsNow, 3)
	march := buckets[2]
	if march.Count != 3 {
		t.Errorf("expected 3 items in March, got %d", march.Count)
	}
	if !march.Sum.Equal(decimal.RequireFromString("25.00")) {
		t.Errorf("expected sum 25.00, got %s", march.Sum)
	}
	if buckets[0].Count != 0 || buckets[1].Count != 0 {
		t.Errorf("expected items outside the window to be ignored, got %+v", buckets)
	}
}

func TestYearByMonth(t *testing.T) {
	items := []model.Item{
		testItem("a", "Tops", "", "2024-01-10", "10"),
		testItem("b", "Tops", "", "2024-12-24", "20.50"),
		testItem("c", "Tops", "", "2024-12-25", "1.25"),
		testItem("d", "Tops", "", "2023-12-25", "99"),
	}

	buckets := YearByMonth(items, 2024)
	if len(buckets) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(buckets))
	}
	if buckets[0].Key != "2024-01" || buckets[11].Key != "2024-12" {
		t.Errorf("unexpected keys %s..%s", buckets[0].Key, buckets[11].Key)
	}
	if buckets[0].Count != 1 || !buckets[0].Sum.Equal(decimal.NewFromInt(10)) {
		t.Errorf("January: expected 1 item / 10, got %d / %s", buckets[0].Count, buckets[0].Sum)
	}
	if buckets[11].Count != 2 || buckets[11].Sum.StringFixed(2) != "21.75" {
		t.Errorf("December: expected 2 items / 21.75, got %d / %s", buckets[11].Count, buckets[11].Sum)
	}
}

func TestTopByFieldBrand(t *testing.T) {
	items := []model.Item{
		testItem("1", "Tops", "Nike", "2024-01-01", "1"),
		testItem("2", "Tops", "Adidas", "2024-01-01", "1"),
		testItem("3", "Tops", "Nike", "2024-01-01", "1"),
		testItem("4", "Tops", "", "2024-01-01", "1"),
		testItem("5", "Tops", "Zara", "2024-01-01", "1"),
		testItem("6", "Tops", "", "2024-01-01", "1"),
		testItem("7", "Tops", "COS", "2024-01-01", "1"),
	}

	buckets := TopByField(items, FieldBrand, 3)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	want := []struct {
		key   string
		count int
	}{{"Nike", 2}, {UnknownLabel, 2}, {"Adidas", 1}}
	for i, w := range want {
		if buckets[i].Key != w.key || buckets[i].Count != w.count {
			t.Errorf("bucket %d: expected %s=%d, got %s=%d", i, w.key, w.count, buckets[i].Key, buckets[i].Count)
		}
		if buckets[i].Color != Palette[i] {
			t.Errorf("bucket %d: expected color %s, got %s", i, Palette[i], buckets[i].Color)
		}
	}
}

func TestTopByFieldPaletteCycles(t *testing.T) {
	var items []model.Item
	for _, brand := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		items = append(items, testItem(brand, "Tops", brand, "2024-01-01", "1"))
	}

	buckets := TopByField(items, FieldBrand, 7)
	if len(buckets) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(buckets))
	}
	if buckets[5].Color != Palette[0] || buckets[6].Color != Palette[1] {
		t.Errorf("expected palette to cycle, got %s, %s", buckets[5].Color, buckets[6].Color)
	}
}

func TestTopByFieldCategoryUsesValue(t *testing.T) {
	items := []model.Item{
		{Category: model.Choice{Group: "Tops", Value: "Shirts"}},
		{Category: model.Choice{Group: "Tops", Value: "Shirts"}},
		{Category: model.Choice{Group: "Tops", Value: "Coats"}},
	}

	buckets := TopByField(items, FieldCategory, TopK)
	if len(buckets) != 2 || buckets[0].Key != "Shirts" || buckets[0].Count != 2 {
		t.Errorf("expected Shirts first with 2 items, got %+v", buckets)
	}
}

func TestTopByFieldEmpty(t *testing.T) {
	if got := TopByField(nil, FieldBrand, TopK); len(got) != 0 {
		t.Errorf("expected no buckets, got %+v", got)
	}
	if got := TopByField(closetFixture(), "color", TopK); len(got) != 0 {
		t.Errorf("expected no buckets for unsupported field, got %+v", got)
	}
}

func TestSpendByCategoryGroup(t *testing.T) {
	items := []model.Item{
		testItem("a", "Tops", "", "2024-01-01", "10.10"),
		testItem("b", "tops", "", "2024-01-01", "0.20"),
		testItem("c", "Accessories", "", "2024-01-01", "5"),
		testItem("d", "Mystery", "", "2024-01-01", "1"),
	}

	buckets := SpendByCategoryGroup(items)
	if len(buckets) != 4 {
		t.Fatalf("expected 4 groups, got %d", len(buckets))
	}
	want := map[string]string{"tops": "10.30", "bottoms": "0.00", "accessories": "5.00", "other": "1.00"}
	for _, b := range buckets {
		if b.Sum.StringFixed(2) != want[b.Key] {
			t.Errorf("%s: expected %s, got %s", b.Key, want[b.Key], b.Sum.StringFixed(2))
		}
	}
}

func TestSummarize(t *testing.T) {
	items := closetFixture()
	s := Summarize(items, statsNow, 2024)

	if s.ItemCount != len(items) {
		t.Errorf("expected %d items, got %d", len(items), s.ItemCount)
	}
	if s.TotalSpent.StringFixed(2) != "312.99" {
		t.Errorf("expected total 312.99, got %s", s.TotalSpent)
	}
	if len(s.LastThree) != 3 || len(s.YearByMonth) != 12 {
		t.Errorf("unexpected bucket counts %d/%d", len(s.LastThree), len(s.YearByMonth))
	}
	if len(s.Years) != 3 || s.Years[0] != 2024 || s.Years[2] != 2022 {
		t.Errorf("expected years [2024 2023 2022], got %v", s.Years)
	}
}
