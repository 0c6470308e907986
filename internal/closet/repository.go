// Package closet holds the wardrobe domain: the item repository, the
// filter and sort engine, chart aggregation and brand lookups.
package closet

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/garderoba/internal/blob"
	"github.com/erazemk/garderoba/internal/imaging"
	"github.com/erazemk/garderoba/internal/model"
	"github.com/erazemk/garderoba/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	// uploadConcurrency bounds parallel photo processing and uploads per item.
	uploadConcurrency = 4
	// MaxPhotos caps the photos attached to one item.
	MaxPhotos = 8
)

// ObjectStore stores item photos.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, mime string) error
	Delete(ctx context.Context, key string) error
}

// Repository reads and writes closet items. Documents live in SQLite and
// photos in the object store.
type Repository struct {
	DB        *sql.DB
	Objects   ObjectStore
	PublicURL string
	Imaging   imaging.Options
}

// NewItem is the user-supplied part of an item.
type NewItem struct {
	Name         string
	Brand        string
	Category     model.Choice
	Size         model.Choice
	Color        string
	Condition    string
	PurchaseCost decimal.Decimal
	PurchaseDate string
}

// Upload is one photo as received from the client.
type Upload struct {
	Filename string
	Data     []byte
}

// Validate checks the item against the catalog rules. photos is the number of
// attached photos.
func (n NewItem) Validate(photos int) error {
	fields := make(map[string]string)
	if strings.TrimSpace(n.Name) == "" {
		fields["name"] = "required"
	}
	if n.Category.Group == "" {
		fields["category"] = "required"
	}
	if !model.ValidCondition(n.Condition) {
		fields["condition"] = "must be new or used"
	}
	if n.PurchaseCost.IsNegative() {
		fields["purchaseCost"] = "must not be negative"
	}
	if _, err := time.Parse(model.DateLayout, n.PurchaseDate); err != nil {
		fields["purchaseDate"] = "must be a date (YYYY-MM-DD)"
	}
	switch {
	case photos == 0:
		fields["images"] = "at least one photo is required"
	case photos > MaxPhotos:
		fields["images"] = fmt.Sprintf("at most %d photos", MaxPhotos)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// URL returns the public address of an object key.
func (r *Repository) URL(key string) string {
	return strings.TrimRight(r.PublicURL, "/") + "/blobs/" + key
}

// ListItems returns the committed items of the session's user in creation
// order. Read failures are logged and wrapped in ErrFetchFailed.
func (r *Repository) ListItems(ctx context.Context, s model.Session) ([]model.Item, error) {
	docs, err := store.ListItemDocuments(ctx, r.DB, s.UserID)
	if err != nil {
		slog.Error("failed to list items", "user", s.Username, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	items := make([]model.Item, 0, len(docs))
	for _, d := range docs {
		item, err := fromDocument(d)
		if err != nil {
			slog.Warn("skipping unreadable item", "item", d.ID, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// GetItem returns one committed item of the session's user.
func (r *Repository) GetItem(ctx context.Context, s model.Session, id string) (*model.Item, error) {
	d, err := store.GetItemDocument(ctx, r.DB, s.UserID, id)
	if err != nil {
		slog.Error("failed to get item", "user", s.Username, "item", id, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if d == nil {
		return nil, ErrNotFound
	}
	item, err := fromDocument(*d)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return &item, nil
}

// Brands returns the distinct brands in the session user's closet.
func (r *Repository) Brands(ctx context.Context, s model.Session) ([]string, error) {
	items, err := r.ListItems(ctx, s)
	if err != nil {
		return nil, err
	}
	return UniqueBrands(items), nil
}

func fromDocument(d store.ItemDocument) (model.Item, error) {
	item, err := decodeDocument(d.SchemaVersion, d.Doc)
	if err != nil {
		return model.Item{}, err
	}
	// The row id is authoritative; the embedded id is a copy for exports.
	item.ID = d.ID
	item.CreatedAt = d.CreatedAt
	return item, nil
}

// CreateItem validates and stores a new item with its photos.
//
// The document is first staged as pending, then photos are uploaded in
// parallel, then the document is committed with the photo URLs and its own id.
// If any step after staging fails, uploaded photos and the staged document are
// removed on a best-effort basis; PurgePending collects whatever is left.
func (r *Repository) CreateItem(ctx context.Context, s model.Session, n NewItem, uploads []Upload) (*model.Item, error) {
	n.Name = strings.TrimSpace(n.Name)
	n.Brand = strings.TrimSpace(n.Brand)
	n.Color = strings.TrimSpace(n.Color)
	n.PurchaseCost = n.PurchaseCost.Round(2)
	if err := n.Validate(len(uploads)); err != nil {
		return nil, err
	}

	photos, err := r.processPhotos(ctx, uploads)
	if err != nil {
		return nil, err
	}

	item := model.Item{
		Name:         n.Name,
		Brand:        n.Brand,
		Category:     n.Category,
		Size:         n.Size,
		Color:        n.Color,
		Condition:    n.Condition,
		PurchaseCost: n.PurchaseCost,
		PurchaseDate: n.PurchaseDate,
	}

	id := uuid.NewString()
	keys := make([]string, len(photos))
	for i := range photos {
		keys[i] = blob.ItemImageKey(s.UserID, uuid.NewString())
	}

	staged, err := encodeDocument(item)
	if err != nil {
		return nil, err
	}
	err = store.InsertPendingItem(ctx, r.DB, store.ItemDocument{
		ID:            id,
		UserID:        s.UserID,
		SchemaVersion: schemaCurrent,
		Doc:           staged,
		BlobKeys:      keys,
	})
	if err != nil {
		return nil, fmt.Errorf("staging item: %w", err)
	}

	uploaded, err := r.upload(ctx, keys, photos)
	if err != nil {
		r.compensate(ctx, id, uploaded)
		return nil, fmt.Errorf("uploading photos: %w", err)
	}

	item.ID = id
	item.Images = make([]string, len(keys))
	for i, k := range keys {
		item.Images[i] = r.URL(k)
	}

	doc, err := encodeDocument(item)
	if err == nil {
		err = store.CommitItem(ctx, r.DB, s.UserID, id, doc)
	}
	if err != nil {
		r.compensate(ctx, id, keys)
		return nil, fmt.Errorf("committing item: %w", err)
	}

	item.CreatedAt = time.Now().UTC()
	slog.Info("item created", "user", s.Username, "item", id, "photos", len(keys))
	return &item, nil
}

func (r *Repository) processPhotos(ctx context.Context, uploads []Upload) ([]*imaging.Photo, error) {
	photos := make([]*imaging.Photo, len(uploads))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, u := range uploads {
		g.Go(func() error {
			p, err := imaging.Process(bytes.NewReader(u.Data), r.Imaging)
			if err != nil {
				name := u.Filename
				if name == "" {
					name = fmt.Sprintf("photo %d", i+1)
				}
				return &ValidationError{Fields: map[string]string{"images": name + ": " + err.Error()}}
			}
			photos[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return photos, nil
}

// upload stores photos[i] under keys[i] and returns the keys that were written,
// including on failure.
func (r *Repository) upload(ctx context.Context, keys []string, photos []*imaging.Photo) ([]string, error) {
	var (
		mu   sync.Mutex
		done []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, p := range photos {
		g.Go(func() error {
			if err := r.Objects.Put(gctx, keys[i], p.Data, p.MIME); err != nil {
				return err
			}
			mu.Lock()
			done = append(done, keys[i])
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return done, err
}

// compensate undoes a failed create. It outlives the request context so a
// cancelled request still cleans up after itself.
func (r *Repository) compensate(ctx context.Context, id string, keys []string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	for _, k := range keys {
		if err := r.Objects.Delete(ctx, k); err != nil {
			slog.Warn("failed to remove orphaned photo", "key", k, "error", err)
		}
	}
	if err := store.DeletePendingItem(ctx, r.DB, id); err != nil {
		slog.Warn("failed to remove staged item", "item", id, "error", err)
	}
}

// PurgePending removes items that were staged before the cutoff but never
// committed, together with any photos they uploaded.
func (r *Repository) PurgePending(ctx context.Context, before time.Time) (int, error) {
	docs, err := store.ListPendingItems(ctx, r.DB, before)
	if err != nil {
		return 0, err
	}

	purged := 0
	var errs []error
	for _, d := range docs {
		for _, k := range d.BlobKeys {
			if err := r.Objects.Delete(ctx, k); err != nil {
				errs = append(errs, err)
			}
		}
		if err := store.DeletePendingItem(ctx, r.DB, d.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		purged++
	}
	if len(errs) > 0 {
		return purged, fmt.Errorf("purging pending items: %w", errors.Join(errs...))
	}
	return purged, nil
}
