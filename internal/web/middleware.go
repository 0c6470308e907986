package web

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/garderoba/internal/auth"
)

type webContextKey string

const (
	webClaimsKey webContextKey = "webclaims"
	webTokenKey  webContextKey = "webtoken"
)

// cookieName is the cookie holding the session token.
const cookieName = "token"

// cookieClaims authenticates the session cookie. A request without one yields
// nil claims. A cookie that no longer authenticates is cleared.
func cookieClaims(w http.ResponseWriter, r *http.Request, secret string, db *sql.DB) (*auth.Claims, string) {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil, ""
	}

	claims, err := auth.Authenticate(r.Context(), db, secret, cookie.Value)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrRevoked) {
			slog.Error("failed to authenticate session cookie", "error", err)
		}
		clearAuthCookie(w)
		return nil, ""
	}
	return claims, cookie.Value
}

func withClaims(r *http.Request, claims *auth.Claims, token string) *http.Request {
	ctx := context.WithValue(r.Context(), webClaimsKey, claims)
	ctx = context.WithValue(ctx, webTokenKey, token)
	return r.WithContext(ctx)
}

// CookieAuthMiddleware requires a valid, unrevoked session cookie and adds
// its claims to the context. Anonymous visitors are sent to the login page.
func CookieAuthMiddleware(secret string, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, token := cookieClaims(w, r, secret, db)
			if claims == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, withClaims(r, claims, token))
		})
	}
}

// OptionalCookieAuthMiddleware adds claims when the visitor is signed in and
// lets everyone else through.
func OptionalCookieAuthMiddleware(secret string, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, token := cookieClaims(w, r, secret, db); claims != nil {
				r = withClaims(r, claims, token)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clearAuthCookie clears the authentication cookie with consistent attributes.
func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetWebClaims retrieves the JWT claims from web context.
func GetWebClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(webClaimsKey).(*auth.Claims)
	return claims
}

// GetWebToken retrieves the raw JWT token from web context.
func GetWebToken(ctx context.Context) string {
	token, _ := ctx.Value(webTokenKey).(string)
	return token
}
