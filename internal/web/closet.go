package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/erazemk/garderoba/internal/closet"
	"github.com/erazemk/garderoba/internal/imaging"
	"github.com/erazemk/garderoba/internal/model"
)

// maxUploadForm caps an add-item submission.
const maxUploadForm = closet.MaxPhotos*imaging.MaxUploadBytes + 1<<20

// filterGroup is one filter category with its selectable values.
type filterGroup struct {
	Name   string
	Values []filterValue
}

type filterValue struct {
	Value    string
	Selected bool
	// Toggle is the query string that flips this value.
	Toggle string
}

// filterGroups lists the filter choices shown above the closet: category
// groups from the catalog plus every brand in the closet.
func filterGroups(q url.Values, filters model.FilterSet, brands []string) []filterGroup {
	toggle := func(name, value string) string {
		next := make(url.Values, len(q))
		for k, v := range q {
			next[k] = append([]string(nil), v...)
		}
		f := model.FilterSet{name: next[name]}
		f.Toggle(name, value)
		next[name] = f[name]
		return next.Encode()
	}

	group := func(name string, values []string) filterGroup {
		g := filterGroup{Name: name}
		for _, v := range values {
			g.Values = append(g.Values, filterValue{
				Value:    v,
				Selected: contains(filters[name], v),
				Toggle:   toggle(name, v),
			})
		}
		return g
	}

	groups := []filterGroup{group(model.FilterCategories, model.CategoryGroups())}
	if len(brands) > 0 {
		groups = append(groups, group(model.FilterBrand, brands))
	}
	return groups
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

type sortLink struct {
	Value    model.SortOption
	Label    string
	Selected bool
}

// ClosetPage handles GET /. Filters and sort live in the query string so a
// view can be bookmarked.
func (s *Server) ClosetPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	q := r.URL.Query()

	filters := model.FilterSet{}
	for _, name := range model.FilterNames {
		if v := q[name]; len(v) > 0 {
			filters[name] = v
		}
	}
	sort := model.ParseSortOption(q.Get("sort"))

	data := struct {
		PageData
		Items     []model.Item
		Total     int
		Filters   model.FilterSet
		Groups    []filterGroup
		Sorts     []sortLink
		Sort      model.SortOption
		Filtered  bool
		LoadError bool
	}{
		PageData: s.page(r, "Closet"),
		Filters:  filters,
		Sort:     sort,
		Filtered: !filters.Empty(),
	}
	for _, o := range model.SortOptions {
		data.Sorts = append(data.Sorts, sortLink{Value: o, Label: o.Label(), Selected: o == sort})
	}

	items, err := s.Closet.ListItems(r.Context(), claims.Session())
	if err != nil {
		// The repository already logged the cause.
		data.LoadError = true
		data.Error = closet.ErrFetchFailed.Error()
		data.Groups = filterGroups(q, filters, nil)
		s.Templates.RenderStatus(w, http.StatusServiceUnavailable, "closet.html", &data)
		return
	}

	data.Items = closet.Apply(items, filters, sort)
	data.Total = len(items)
	data.Groups = filterGroups(q, filters, closet.UniqueBrands(items))
	s.Templates.Render(w, "closet.html", &data)
}

type itemFormData struct {
	PageData
	Categories []model.OptionGroup
	Sizes      []model.OptionGroup
	Conditions []model.Option
	Form       map[string]string
	Fields     map[string]string
	MaxPhotos  int
}

func (s *Server) itemForm(r *http.Request) *itemFormData {
	return &itemFormData{
		PageData:   s.page(r, "Add item"),
		Categories: model.CategoryOptions,
		Sizes:      model.SizeOptions,
		Conditions: model.ConditionOptions,
		Form:       map[string]string{"purchaseDate": s.now().Format(model.DateLayout), "condition": model.ConditionNew},
		Fields:     map[string]string{},
		MaxPhotos:  closet.MaxPhotos,
	}
}

// ItemNewPage handles GET /items/new.
func (s *Server) ItemNewPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "item_new.html", s.itemForm(r))
}

// ItemCreateSubmit handles POST /items/new. On failure the form is shown
// again with the entered values.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	data := s.itemForm(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadForm)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		data.Error = "The upload was too large or malformed."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "item_new.html", data)
		return
	}
	defer r.MultipartForm.RemoveAll()

	for k, v := range r.MultipartForm.Value {
		if len(v) > 0 {
			data.Form[k] = v[0]
		}
	}

	item, fields := closet.ParseForm(r.MultipartForm.Value)
	files := r.MultipartForm.File["images"]
	if len(files) > data.MaxPhotos {
		fields["images"] = "too many photos"
	}
	if len(fields) > 0 {
		data.Fields = fields
		data.Error = "Please fix the highlighted fields."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "item_new.html", data)
		return
	}

	uploads, err := closet.ReadUploads(files)
	if err != nil {
		slog.Error("failed to read upload", "user", claims.Username, "error", err)
		data.Error = "Could not read the photos."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "item_new.html", data)
		return
	}

	created, err := s.Closet.CreateItem(r.Context(), claims.Session(), item, uploads)
	if err != nil {
		var verr *closet.ValidationError
		if errors.As(err, &verr) {
			data.Fields = verr.Fields
			data.Error = "Please fix the highlighted fields."
			s.Templates.RenderStatus(w, http.StatusBadRequest, "item_new.html", data)
			return
		}
		data.Error = "Could not save the item. Try again."
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "item_new.html", data)
		return
	}

	http.Redirect(w, r, "/items/"+created.ID, http.StatusSeeOther)
}

// ItemDetailPage handles GET /items/{id}.
func (s *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	item, err := s.Closet.GetItem(r.Context(), claims.Session(), r.PathValue("id"))
	if errors.Is(err, closet.ErrNotFound) {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, closet.ErrFetchFailed.Error(), http.StatusServiceUnavailable)
		return
	}

	s.Templates.Render(w, "item_detail.html", &struct {
		PageData
		Item *model.Item
	}{
		PageData: s.page(r, item.Name),
		Item:     item,
	})
}
