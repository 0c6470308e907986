package web

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/erazemk/garderoba/internal/closet"
	"github.com/erazemk/garderoba/internal/model"
	"github.com/shopspring/decimal"
)

// bar is one row of a server-rendered bar chart.
type bar struct {
	Label string
	Value string
	Pct   float64
	// Color is a palette value such as hsl(var(--chart-1)).
	Color template.CSS
}

// chart is a titled bar chart. Width is relative to the largest value.
type chart struct {
	Title string
	Bars  []bar
	Empty bool
}

// countChart charts item counts.
func countChart(title string, buckets []model.ChartBucket) chart {
	most := 0
	for _, b := range buckets {
		most = max(most, b.Count)
	}
	c := chart{Title: title, Empty: most == 0}
	for _, b := range buckets {
		pct := 0.0
		if most > 0 {
			pct = float64(b.Count) * 100 / float64(most)
		}
		c.Bars = append(c.Bars, bar{Label: b.Label, Value: strconv.Itoa(b.Count), Pct: pct, Color: template.CSS(b.Color)})
	}
	return c
}

// spendChart charts money sums.
func spendChart(title string, buckets []model.ChartBucket) chart {
	most := decimal.Zero
	for _, b := range buckets {
		most = decimal.Max(most, b.Sum)
	}
	c := chart{Title: title, Empty: most.IsZero()}
	for _, b := range buckets {
		pct := 0.0
		if !most.IsZero() {
			pct = b.Sum.Mul(decimal.NewFromInt(100)).Div(most).InexactFloat64()
		}
		c.Bars = append(c.Bars, bar{Label: b.Label, Value: "$" + b.Sum.StringFixed(2), Pct: pct, Color: template.CSS(b.Color)})
	}
	return c
}

// NumbersPage handles GET /numbers: spending and count charts for the
// signed-in user's closet.
func (s *Server) NumbersPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	now := s.now()

	year := now.Year()
	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && y > 0 && y < 10000 {
		year = y
	}

	data := struct {
		PageData
		Summary closet.Summary
		Charts  []chart
	}{PageData: s.page(r, "Numbers")}

	items, err := s.Closet.ListItems(r.Context(), claims.Session())
	if err != nil {
		data.Error = closet.ErrFetchFailed.Error()
		s.Templates.RenderStatus(w, http.StatusServiceUnavailable, "numbers.html", &data)
		return
	}

	sum := closet.Summarize(items, now, year)
	data.Summary = sum
	data.Charts = []chart{
		spendChart("Spent, last three months", sum.LastThree),
		countChart("Items bought, last three months", sum.LastThree),
		spendChart("Spending in "+strconv.Itoa(year), sum.YearByMonth),
		countChart("Top brands", sum.TopBrands),
		countChart("Top categories", sum.TopCategories),
		spendChart("Spending by category", sum.SpendByGroup),
	}
	s.Templates.Render(w, "numbers.html", &data)
}
