package web

import (
	"net/http"

	webembed "github.com/erazemk/garderoba/web"
)

// NewRouter creates the web page router with all page routes registered.
// The server's Templates are loaded here.
func NewRouter(s *Server) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	s.Templates = templates

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(s.JWTSecret, s.DB)
	optionalAuth := OptionalCookieAuthMiddleware(s.JWTSecret, s.DB)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("GET /signup", s.SignupPage)
	mux.HandleFunc("POST /signup", s.SignupSubmit)
	mux.Handle("POST /logout", optionalAuth(http.HandlerFunc(s.Logout)))
	mux.Handle("GET /playground", optionalAuth(http.HandlerFunc(s.PlaygroundPage)))

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.ClosetPage)))
	mux.Handle("GET /items/new", cookieAuth(http.HandlerFunc(s.ItemNewPage)))
	mux.Handle("POST /items/new", cookieAuth(http.HandlerFunc(s.ItemCreateSubmit)))
	mux.Handle("GET /items/{id}", cookieAuth(http.HandlerFunc(s.ItemDetailPage)))
	mux.Handle("GET /numbers", cookieAuth(http.HandlerFunc(s.NumbersPage)))

	mux.Handle("GET /users", cookieAuth(http.HandlerFunc(s.UsersPage)))
	mux.Handle("POST /users", cookieAuth(http.HandlerFunc(s.UserCreateSubmit)))
	mux.Handle("POST /users/{id}/password", cookieAuth(http.HandlerFunc(s.UserResetPasswordSubmit)))
	mux.Handle("POST /users/{id}/delete", cookieAuth(http.HandlerFunc(s.UserDeleteSubmit)))

	mux.Handle("GET /settings", cookieAuth(http.HandlerFunc(s.SettingsPage)))
	mux.Handle("POST /settings", cookieAuth(http.HandlerFunc(s.SettingsSubmit)))

	return mux, nil
}
