package closet

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/erazemk/garderoba/internal/model"
	"github.com/shopspring/decimal"
)

// Palette is the fixed set of chart colors, reused cyclically.
var Palette = []string{
	"hsl(var(--chart-1))",
	"hsl(var(--chart-2))",
	"hsl(var(--chart-3))",
	"hsl(var(--chart-4))",
	"hsl(var(--chart-5))",
}

// UnknownLabel groups items whose field is empty.
const UnknownLabel = "Unknown"

// Fields accepted by TopByField.
const (
	FieldBrand    = "brand"
	FieldCategory = "category"
)

// TopK is the number of groups shown in the top brand and category charts.
const TopK = 5

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

func monthBucket(year int, month time.Month) model.ChartBucket {
	return model.ChartBucket{
		Key:   monthKey(year, month),
		Label: strings.ToLower(month.String()),
		Sum:   decimal.Zero,
	}
}

// add accumulates one item, rounding the running sum to cents.
func add(b *model.ChartBucket, cost decimal.Decimal) {
	b.Count++
	b.Sum = b.Sum.Add(cost).Round(2)
}

// accumulate adds every dated item into the bucket with the matching month key.
// Items outside the buckets or without a valid date are skipped.
func accumulate(buckets []model.ChartBucket, items []model.Item) {
	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b.Key] = i
	}
	for _, item := range items {
		t, ok := item.PurchaseTime()
		if !ok {
			continue
		}
		if i, ok := index[monthKey(t.Year(), t.Month())]; ok {
			add(&buckets[i], item.PurchaseCost)
		}
	}
}

// TrailingMonths returns n monthly buckets in chronological order, ending with
// the month of now.
func TrailingMonths(items []model.Item, now time.Time, n int) []model.ChartBucket {
	if n <= 0 {
		return []model.ChartBucket{}
	}

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1), 0)
	buckets := make([]model.ChartBucket, 0, n)
	for i := range n {
		m := first.AddDate(0, i, 0)
		buckets = append(buckets, monthBucket(m.Year(), m.Month()))
	}
	accumulate(buckets, items)
	return buckets
}

// YearByMonth returns twelve buckets, January through December of year.
func YearByMonth(items []model.Item, year int) []model.ChartBucket {
	buckets := make([]model.ChartBucket, 0, 12)
	for m := time.January; m <= time.December; m++ {
		buckets = append(buckets, monthBucket(year, m))
	}
	accumulate(buckets, items)
	return buckets
}

// TopByField counts items per brand or category value and returns the k
// largest groups, ties ordered by name. Colors are assigned from Palette.
func TopByField(items []model.Item, field string, k int) []model.ChartBucket {
	groups := make(map[string]*model.ChartBucket)
	for _, item := range items {
		var key string
		switch field {
		case FieldBrand:
			key = strings.TrimSpace(item.Brand)
		case FieldCategory:
			key = strings.TrimSpace(item.Category.Value)
		default:
			return []model.ChartBucket{}
		}
		if key == "" {
			key = UnknownLabel
		}

		b, ok := groups[key]
		if !ok {
			b = &model.ChartBucket{Key: key, Label: key, Sum: decimal.Zero}
			groups[key] = b
		}
		add(b, item.PurchaseCost)
	}

	buckets := make([]model.ChartBucket, 0, len(groups))
	for _, b := range groups {
		buckets = append(buckets, *b)
	}
	slices.SortFunc(buckets, func(a, b model.ChartBucket) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})

	if k >= 0 && len(buckets) > k {
		buckets = buckets[:k]
	}
	for i := range buckets {
		buckets[i].Color = Palette[i%len(Palette)]
	}
	return buckets
}

// SpendByCategoryGroup sums spending per top-level category group of the
// option catalog. Items in groups outside the catalog count towards "Other".
func SpendByCategoryGroup(items []model.Item) []model.ChartBucket {
	groups := model.CategoryGroups()
	buckets := make([]model.ChartBucket, 0, len(groups))
	index := make(map[string]int, len(groups))
	other := -1
	for i, g := range groups {
		buckets = append(buckets, model.ChartBucket{
			Key:   strings.ToLower(g),
			Label: g,
			Sum:   decimal.Zero,
			Color: Palette[i%len(Palette)],
		})
		index[strings.ToLower(g)] = i
		if g == "Other" {
			other = i
		}
	}

	for _, item := range items {
		i, ok := index[strings.ToLower(item.Category.Group)]
		if !ok {
			if other < 0 {
				continue
			}
			i = other
		}
		add(&buckets[i], item.PurchaseCost)
	}
	return buckets
}

// Summary is everything the statistics page shows.
type Summary struct {
	ItemCount     int                 `json:"itemCount"`
	TotalSpent    decimal.Decimal     `json:"totalSpent"`
	Year          int                 `json:"year"`
	Years         []int               `json:"years"`
	LastThree     []model.ChartBucket `json:"lastThreeMonths"`
	YearByMonth   []model.ChartBucket `json:"yearByMonth"`
	TopBrands     []model.ChartBucket `json:"topBrands"`
	TopCategories []model.ChartBucket `json:"topCategories"`
	SpendByGroup  []model.ChartBucket `json:"spendByGroup"`
}

// Summarize builds the statistics summary for year, with trailing windows
// ending at now.
func Summarize(items []model.Item, now time.Time, year int) Summary {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.PurchaseCost).Round(2)
	}

	return Summary{
		ItemCount:     len(items),
		TotalSpent:    total,
		Year:          year,
		Years:         PurchaseYears(items, now),
		LastThree:     TrailingMonths(items, now, 3),
		YearByMonth:   YearByMonth(items, year),
		TopBrands:     TopByField(items, FieldBrand, TopK),
		TopCategories: TopByField(items, FieldCategory, TopK),
		SpendByGroup:  SpendByCategoryGroup(items),
	}
}

// PurchaseYears lists the distinct purchase years, newest first. The year of
// now is always included so the year picker is never empty.
func PurchaseYears(items []model.Item, now time.Time) []int {
	years := []int{now.Year()}
	for _, item := range items {
		if t, ok := item.PurchaseTime(); ok && !slices.Contains(years, t.Year()) {
			years = append(years, t.Year())
		}
	}
	slices.SortFunc(years, func(a, b int) int { return cmp.Compare(b, a) })
	return years
}
