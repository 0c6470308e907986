package api

import (
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/erazemk/garderoba/internal/canvas"
	"github.com/erazemk/garderoba/internal/closet"
	"github.com/erazemk/garderoba/internal/model"
)

const (
	// maxBoardImages caps the closet photos placed on one board.
	maxBoardImages = 30
	// maxViewportSide bounds the viewport a client may ask for.
	maxViewportSide = 8192
	// maxEventsPerRequest bounds one batch of pointer events.
	maxEventsPerRequest = 512
)

// Board sources.
const (
	sourceDemo   = "demo"
	sourceCloset = "closet"
)

// CanvasHandler handles playground boards. Demo boards are public; closet
// boards belong to the signed-in user.
type CanvasHandler struct {
	Sessions *canvas.Sessions
	Closet   *closet.Repository
	NewRand  func() *rand.Rand
}

type createCanvasRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Source string  `json:"source"`
}

type eventsRequest struct {
	Events []canvas.Event `json:"events"`
}

type canvasResponse struct {
	ID    string       `json:"id"`
	State canvas.State `json:"state"`
}

// Create handles POST /api/canvas.
func (h *CanvasHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCanvasRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Width <= 0 || req.Height <= 0 || req.Width > maxViewportSide || req.Height > maxViewportSide {
		jsonError(w, http.StatusBadRequest, "invalid viewport")
		return
	}

	v := canvas.Viewport{Width: req.Width, Height: req.Height}
	rng := h.newRand()

	var (
		board *canvas.Canvas
		owner int64
	)
	switch req.Source {
	case "", sourceDemo:
		board = canvas.New(v, rng)
	case sourceCloset:
		claims := GetClaims(r.Context())
		if claims == nil {
			jsonError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		items, err := h.Closet.ListItems(r.Context(), claims.Session())
		if err != nil {
			if !closetError(w, err) {
				jsonError(w, http.StatusInternalServerError, "failed to load closet")
			}
			return
		}
		board = canvas.NewWithImages(v, rng, boardPhotos(items, maxBoardImages))
		owner = claims.UserID
	default:
		jsonError(w, http.StatusBadRequest, "unknown source")
		return
	}

	sess := h.Sessions.Add(owner, board)
	slog.Debug("canvas created", "id", sess.ID, "source", req.Source, "owner", owner)
	jsonResponse(w, http.StatusCreated, canvasResponse{ID: sess.ID, State: sess.State()})
}

// boardPhotos lists every photo of every item in closet order, at most limit.
func boardPhotos(items []model.Item, limit int) []string {
	var photos []string
	for _, item := range items {
		for _, src := range item.Images {
			if len(photos) == limit {
				return photos
			}
			photos = append(photos, src)
		}
	}
	return photos
}

// session resolves the board named in the path, writing a 404 when it is
// gone or belongs to someone else.
func (h *CanvasHandler) session(w http.ResponseWriter, r *http.Request) (*canvas.Session, bool) {
	var user int64
	if claims := GetClaims(r.Context()); claims != nil {
		user = claims.UserID
	}
	sess, ok := h.Sessions.Get(r.PathValue("id"), user)
	if !ok {
		jsonError(w, http.StatusNotFound, "canvas not found")
	}
	return sess, ok
}

// Get handles GET /api/canvas/{id}.
func (h *CanvasHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, canvasResponse{ID: sess.ID, State: sess.State()})
}

// Events handles POST /api/canvas/{id}/events. Events apply in order; an
// unknown event type stops the batch.
func (h *CanvasHandler) Events(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req eventsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Events) > maxEventsPerRequest {
		jsonError(w, http.StatusBadRequest, "too many events")
		return
	}

	state, err := sess.Do(func(c *canvas.Canvas) error {
		for _, e := range req.Events {
			if err := c.Dispatch(e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, canvasResponse{ID: sess.ID, State: state})
}

// Front handles POST /api/canvas/{id}/tokens/{token}/front.
func (h *CanvasHandler) Front(w http.ResponseWriter, r *http.Request) {
	h.restack(w, r, (*canvas.Canvas).BringToFront)
}

// Back handles POST /api/canvas/{id}/tokens/{token}/back.
func (h *CanvasHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.restack(w, r, (*canvas.Canvas).SendToBack)
}

func (h *CanvasHandler) restack(w http.ResponseWriter, r *http.Request, move func(*canvas.Canvas, int) bool) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(r.PathValue("token"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid token id")
		return
	}

	found := true
	state, _ := sess.Do(func(c *canvas.Canvas) error {
		found = move(c, id)
		return nil
	})
	if !found {
		jsonError(w, http.StatusNotFound, "token not found")
		return
	}
	jsonResponse(w, http.StatusOK, canvasResponse{ID: sess.ID, State: state})
}

func (h *CanvasHandler) newRand() *rand.Rand {
	if h.NewRand != nil {
		return h.NewRand()
	}
	return canvas.NewRand()
}
