package closet

import (
	"github.com/erazemk/garderoba/internal/imaging"
	"github.com/erazemk/garderoba/internal/model"
	"github.com/shopspring/decimal"
)

func testItem(name, group, brand, date, cost string) model.Item {
	return model.Item{
		ID:           name,
		Name:         name,
		Brand:        brand,
		Category:     model.Choice{Group: group},
		Condition:    model.ConditionNew,
		PurchaseCost: decimal.RequireFromString(cost),
		PurchaseDate: date,
		Images:       []string{"https://example.test/" + name},
	}
}

func names(items []model.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

var imagingOptionsForTests = imaging.Options{MaxDimension: 64, Quality: 70}
