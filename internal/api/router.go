package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/garderoba/internal/canvas"
	"github.com/erazemk/garderoba/internal/closet"
	"github.com/erazemk/garderoba/internal/model"
)

// Deps are the services behind the API.
type Deps struct {
	DB        *sql.DB
	JWTSecret string
	Closet    *closet.Repository
	Objects   BlobReader
	Sessions  *canvas.Sessions
	Loaders   *LoaderCache
	Now       func() time.Time
}

// NewRouter creates the API router with all endpoints registered, including
// the public photo route under /blobs/.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: d.DB, JWTSecret: d.JWTSecret}
	usersHandler := &UsersHandler{DB: d.DB}
	itemsHandler := &ItemsHandler{Closet: d.Closet, Loaders: d.Loaders, Now: d.Now}
	canvasHandler := &CanvasHandler{Sessions: d.Sessions, Closet: d.Closet}
	blobsHandler := &BlobsHandler{Objects: d.Objects}

	authMW := AuthMiddleware(d.JWTSecret, d.DB)
	optionalAuth := OptionalAuthMiddleware(d.JWTSecret, d.DB)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/options", itemsHandler.Options)
	mux.HandleFunc("GET /blobs/{key...}", blobsHandler.Get)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Closet, always scoped to the signed-in user.
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("GET /api/brands", authMW(http.HandlerFunc(itemsHandler.Brands)))
	mux.Handle("GET /api/stats", authMW(http.HandlerFunc(itemsHandler.Stats)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Playground: demo boards are public, closet boards need a session.
	mux.Handle("POST /api/canvas", optionalAuth(http.HandlerFunc(canvasHandler.Create)))
	mux.Handle("GET /api/canvas/{id}", optionalAuth(http.HandlerFunc(canvasHandler.Get)))
	mux.Handle("POST /api/canvas/{id}/events", optionalAuth(http.HandlerFunc(canvasHandler.Events)))
	mux.Handle("POST /api/canvas/{id}/tokens/{token}/front", optionalAuth(http.HandlerFunc(canvasHandler.Front)))
	mux.Handle("POST /api/canvas/{id}/tokens/{token}/back", optionalAuth(http.HandlerFunc(canvasHandler.Back)))

	return mux
}
