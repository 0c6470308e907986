package closet

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/erazemk/garderoba/internal/model"
	"github.com/shopspring/decimal"
)

// Stored document versions. Version 1 kept category and size as flat option
// identifiers; version 2 nests them as {group, value}.
const (
	schemaV1      = 1
	schemaV2      = 2
	schemaCurrent = schemaV2
)

// document is the persisted shape of an item at schemaCurrent.
type document struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Brand        string       `json:"brand"`
	Category     model.Choice `json:"category"`
	Size         model.Choice `json:"size"`
	Color        string       `json:"color"`
	Condition    string       `json:"condition"`
	PurchaseCost json.Number  `json:"purchaseCost"`
	PurchaseDate string       `json:"purchaseDate"`
	Images       []string     `json:"images"`
}

func encodeDocument(item model.Item) ([]byte, error) {
	images := item.Images
	if images == nil {
		images = []string{}
	}
	data, err := json.Marshal(document{
		ID:           item.ID,
		Name:         item.Name,
		Brand:        item.Brand,
		Category:     item.Category,
		Size:         item.Size,
		Color:        item.Color,
		Condition:    item.Condition,
		PurchaseCost: json.Number(item.PurchaseCost.StringFixed(2)),
		PurchaseDate: item.PurchaseDate,
		Images:       images,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding item: %w", err)
	}
	return data, nil
}

// decodeDocument reads a stored document of the given schema version. Fields
// with an unexpected type or value fall back to their zero value so one bad
// field never hides the whole item.
func decodeDocument(version int, data []byte) (model.Item, error) {
	if version < schemaV1 || version > schemaCurrent {
		return model.Item{}, fmt.Errorf("unsupported schema version %d", version)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Item{}, fmt.Errorf("decoding item: %w", err)
	}

	item := model.Item{
		ID:           rawString(raw["id"]),
		Name:         rawString(raw["name"]),
		Brand:        rawString(raw["brand"]),
		Color:        rawString(raw["color"]),
		Condition:    rawString(raw["condition"]),
		PurchaseCost: rawCost(raw["purchaseCost"]),
		PurchaseDate: rawString(raw["purchaseDate"]),
		Images:       rawStrings(raw["images"]),
		Category:     rawChoice(raw["category"], model.CategoryOptions),
		Size:         rawChoice(raw["size"], model.SizeOptions),
	}
	return item, nil
}

func rawString(m json.RawMessage) string {
	var s string
	if json.Unmarshal(m, &s) != nil {
		return ""
	}
	return s
}

func rawStrings(m json.RawMessage) []string {
	var list []json.RawMessage
	if json.Unmarshal(m, &list) != nil {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s := rawString(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// rawCost accepts a JSON number or a numeric string. Anything else, including
// negative amounts, reads as zero.
func rawCost(m json.RawMessage) decimal.Decimal {
	text := strings.TrimSpace(string(m))
	if s := rawString(m); s != "" {
		text = s
	}
	d, err := decimal.NewFromString(text)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// rawChoice accepts the nested {group, value} form, or a flat identifier or
// label that is resolved against the option catalog. Unknown flat values keep
// the raw text as the value with no group.
func rawChoice(m json.RawMessage, catalog []model.OptionGroup) model.Choice {
	var nested struct {
		Group json.RawMessage `json:"group"`
		Value json.RawMessage `json:"value"`
	}
	if json.Unmarshal(m, &nested) == nil && (nested.Group != nil || nested.Value != nil) {
		return model.Choice{Group: rawString(nested.Group), Value: rawString(nested.Value)}
	}

	flat := rawString(m)
	if flat == "" {
		return model.Choice{}
	}
	if c, ok := model.LookupChoice(catalog, flat); ok {
		return c
	}
	return model.Choice{Value: flat}
}
