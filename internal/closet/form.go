package closet

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/erazemk/garderoba/internal/imaging"
	"github.com/erazemk/garderoba/internal/model"
	"github.com/shopspring/decimal"
)

// ParseForm maps add-item form values to a new item. Category and size accept
// either a catalog id ("tops_jackets") or a label ("Jackets"). Values that
// cannot be parsed are reported in the field map; the remaining rules are
// checked by NewItem.Validate.
func ParseForm(form map[string][]string) (NewItem, map[string]string) {
	get := func(key string) string {
		if v := form[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	fields := make(map[string]string)
	n := NewItem{
		Name:         get("name"),
		Brand:        get("brand"),
		Color:        get("color"),
		Condition:    strings.ToLower(get("condition")),
		PurchaseDate: get("purchaseDate"),
	}

	if raw := get("category"); raw != "" {
		c, ok := model.LookupChoice(model.CategoryOptions, raw)
		if !ok {
			fields["category"] = "unknown category"
		}
		n.Category = c
	}
	if raw := get("size"); raw != "" {
		c, ok := model.LookupChoice(model.SizeOptions, raw)
		if !ok {
			fields["size"] = "unknown size"
		}
		n.Size = c
	}
	if raw := strings.TrimPrefix(get("purchaseCost"), "$"); raw != "" {
		cost, err := decimal.NewFromString(raw)
		if err != nil {
			fields["purchaseCost"] = "must be a number"
		}
		n.PurchaseCost = cost
	}
	return n, fields
}

// ReadUploads reads multipart photo files into memory. Files over the upload
// limit are truncated just past it so the imaging step rejects them.
func ReadUploads(files []*multipart.FileHeader) ([]Upload, error) {
	uploads := make([]Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, imaging.MaxUploadBytes+1))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", fh.Filename, err)
		}
		uploads = append(uploads, Upload{Filename: fh.Filename, Data: data})
	}
	return uploads, nil
}
