package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO calendar date format used for purchase dates.
const DateLayout = "2006-01-02"

// Choice is a two-level option such as {Tops, Jackets} or {Numeric General Sizes, 8}.
type Choice struct {
	Group string `json:"group"`
	Value string `json:"value"`
}

// Item is a single cataloged clothing record owned by one user.
type Item struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	Category     Choice          `json:"category"`
	Size         Choice          `json:"size"`
	Color        string          `json:"color"`
	Condition    string          `json:"condition"`
	PurchaseCost decimal.Decimal `json:"purchaseCost"`
	PurchaseDate string          `json:"purchaseDate"`
	Images       []string        `json:"images"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// PurchaseTime parses the purchase date. The boolean is false for missing or
// malformed dates.
func (i Item) PurchaseTime() (time.Time, bool) {
	t, err := time.Parse(DateLayout, i.PurchaseDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Conditions.
const (
	ConditionNew  = "new"
	ConditionUsed = "used"
)

// Document statuses for the staging/commit create flow.
const (
	ItemStatusPending   = "pending"
	ItemStatusCommitted = "committed"
)
