package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/garderoba/internal/closet"
	"github.com/erazemk/garderoba/internal/imaging"
	"github.com/erazemk/garderoba/internal/model"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// maxUploadForm caps a whole add-item request.
	maxUploadForm = closet.MaxPhotos*imaging.MaxUploadBytes + 1<<20
	// defaultBrandLimit is the number of suggestions returned without ?limit.
	defaultBrandLimit = 10
)

// ItemsHandler handles closet endpoints.
type ItemsHandler struct {
	Closet  *closet.Repository
	Loaders *LoaderCache
	Now     func() time.Time
}

// LoaderCache keeps one collection loader per user and view, so a newer list
// request for the same view supersedes an older one still in flight.
type LoaderCache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *closet.Loader]
}

// NewLoaderCache creates a cache holding at most size loaders.
func NewLoaderCache(size int) (*LoaderCache, error) {
	cache, err := lru.New[string, *closet.Loader](size)
	if err != nil {
		return nil, fmt.Errorf("creating loader cache: %w", err)
	}
	return &LoaderCache{cache: cache}, nil
}

// get returns the loader for a user's view, creating it on first use.
func (c *LoaderCache) get(userID int64, view string) *closet.Loader {
	key := fmt.Sprintf("%d/%s", userID, view)

	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.cache.Get(key); ok {
		return l
	}
	l := &closet.Loader{}
	c.cache.Add(key, l)
	return l
}

type itemsResponse struct {
	Items   []model.Item     `json:"items"`
	Total   int              `json:"total"`
	Filters model.FilterSet  `json:"filters"`
	Sort    model.SortOption `json:"sort"`
	Brands  []string         `json:"brands"`
}

// parseFilters reads one repeated query parameter per filter category.
// Parameter names match case-insensitively.
func parseFilters(q map[string][]string) model.FilterSet {
	filters := model.FilterSet{}
	for key, values := range q {
		for _, name := range model.FilterNames {
			if !strings.EqualFold(key, name) {
				continue
			}
			for _, v := range values {
				if v = strings.TrimSpace(v); v != "" {
					filters[name] = append(filters[name], v)
				}
			}
		}
	}
	return filters
}

// load fetches the user's items, through the view's loader when the client
// names one.
func (h *ItemsHandler) load(r *http.Request, s model.Session) ([]model.Item, error) {
	fetch := func(ctx context.Context) ([]model.Item, error) {
		return h.Closet.ListItems(ctx, s)
	}
	view := r.URL.Query().Get("view")
	if view == "" || h.Loaders == nil {
		return fetch(r.Context())
	}
	return h.Loaders.get(s.UserID, view).Load(r.Context(), fetch)
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	s := GetClaims(r.Context()).Session()

	items, err := h.load(r, s)
	if err != nil {
		if !closetError(w, err) {
			jsonError(w, http.StatusInternalServerError, "failed to list items")
		}
		return
	}

	filters := parseFilters(r.URL.Query())
	sort := model.ParseSortOption(r.URL.Query().Get("sort"))
	shown := closet.Apply(items, filters, sort)

	jsonResponse(w, http.StatusOK, itemsResponse{
		Items:   shown,
		Total:   len(items),
		Filters: filters,
		Sort:    sort,
		Brands:  closet.UniqueBrands(items),
	})
}

// Create handles POST /api/items. The body is multipart: one form field per
// item attribute and one or more files under "images".
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := GetClaims(r.Context()).Session()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadForm)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	item, fields := closet.ParseForm(r.MultipartForm.Value)
	files := r.MultipartForm.File["images"]
	if len(files) > closet.MaxPhotos {
		fields["images"] = fmt.Sprintf("at most %d photos", closet.MaxPhotos)
	}
	if len(fields) > 0 {
		jsonResponse(w, http.StatusBadRequest, validationResponse{Error: "invalid item", Fields: fields})
		return
	}

	uploads, err := closet.ReadUploads(files)
	if err != nil {
		slog.Error("failed to read upload", "user", s.Username, "error", err)
		jsonError(w, http.StatusBadRequest, "invalid upload")
		return
	}

	created, err := h.Closet.CreateItem(r.Context(), s, item, uploads)
	if err != nil {
		if !closetError(w, err) {
			jsonError(w, http.StatusInternalServerError, "failed to save item")
		}
		return
	}

	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := GetClaims(r.Context()).Session()

	item, err := h.Closet.GetItem(r.Context(), s, r.PathValue("id"))
	if err != nil {
		if !closetError(w, err) {
			jsonError(w, http.StatusInternalServerError, "failed to get item")
		}
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Brands handles GET /api/brands?q=&limit=. Without a query it returns every
// brand in the closet.
func (h *ItemsHandler) Brands(w http.ResponseWriter, r *http.Request) {
	s := GetClaims(r.Context()).Session()

	brands, err := h.Closet.Brands(r.Context(), s)
	if err != nil {
		if !closetError(w, err) {
			jsonError(w, http.StatusInternalServerError, "failed to list brands")
		}
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		jsonResponse(w, http.StatusOK, brands)
		return
	}

	limit := defaultBrandLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	jsonResponse(w, http.StatusOK, closet.SuggestBrands(brands, q, limit))
}

// Stats handles GET /api/stats?year=. The year defaults to the current one.
func (h *ItemsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s := GetClaims(r.Context()).Session()
	now := h.now()

	year := now.Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1 || y > 9999 {
			jsonError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}

	items, err := h.Closet.ListItems(r.Context(), s)
	if err != nil {
		if !closetError(w, err) {
			jsonError(w, http.StatusInternalServerError, "failed to load statistics")
		}
		return
	}
	jsonResponse(w, http.StatusOK, closet.Summarize(items, now, year))
}

type optionsResponse struct {
	Categories []model.OptionGroup `json:"categories"`
	Sizes      []model.OptionGroup `json:"sizes"`
	Conditions []model.Option      `json:"conditions"`
	Sorts      []sortChoice        `json:"sorts"`
	Filters    []string            `json:"filters"`
}

type sortChoice struct {
	Value model.SortOption `json:"value"`
	Label string           `json:"label"`
}

// Options handles GET /api/options: the catalogs behind the add-item form and
// the closet filters.
func (h *ItemsHandler) Options(w http.ResponseWriter, r *http.Request) {
	sorts := make([]sortChoice, 0, len(model.SortOptions))
	for _, o := range model.SortOptions {
		sorts = append(sorts, sortChoice{Value: o, Label: o.Label()})
	}
	jsonResponse(w, http.StatusOK, optionsResponse{
		Categories: model.CategoryOptions,
		Sizes:      model.SizeOptions,
		Conditions: model.ConditionOptions,
		Sorts:      sorts,
		Filters:    model.FilterNames,
	})
}

func (h *ItemsHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
