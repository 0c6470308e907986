package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/garderoba/internal/auth"
	"github.com/erazemk/garderoba/internal/model"
	"github.com/erazemk/garderoba/internal/store"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: "Log in"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Log in",
			Error: "Enter your username and password.",
		})
		return
	}

	user, err := store.GetUserByUsername(r.Context(), s.DB, username)
	if err != nil || user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		if err != nil {
			slog.Error("failed to look up user", "error", err)
		}
		slog.Warn("login failed", "username", username, "remote", r.RemoteAddr)
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Log in",
			Error: "Wrong username or password.",
		})
		return
	}

	if !s.startSession(w, user) {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Log in",
			Error: "Could not log you in. Try again.",
		})
		return
	}

	slog.Info("user logged in", "user", user.Username, "role", user.Role)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// SignupPage handles GET /signup.
func (s *Server) SignupPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "signup.html", &PageData{Title: "Join"})
}

// SignupSubmit handles POST /signup.
func (s *Server) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	fail := func(msg string) {
		s.Templates.RenderStatus(w, http.StatusBadRequest, "signup.html", &PageData{Title: "Join", Error: msg})
	}

	if err := model.ValidateUsername(username); err != nil {
		fail("Username must be 3-32 letters, digits, dots, dashes or underscores.")
		return
	}
	if err := model.ValidatePassword(password); err != nil {
		fail("Password must be at least 8 characters.")
		return
	}
	if password != r.FormValue("confirm_password") {
		fail("Passwords do not match.")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fail("Could not create your account. Try again.")
		return
	}

	user, err := store.CreateUser(r.Context(), s.DB, username, hash, model.RoleUser)
	if errors.Is(err, store.ErrUsernameTaken) {
		fail("That username is taken.")
		return
	}
	if err != nil {
		slog.Error("failed to create user", "error", err)
		fail("Could not create your account. Try again.")
		return
	}

	if !s.startSession(w, user) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	slog.Info("user signed up", "user", user.Username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// startSession issues a token for user and sets it as the session cookie.
func (s *Server) startSession(w http.ResponseWriter, user *model.User) bool {
	token, err := auth.GenerateToken(s.JWTSecret, user)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		return false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.SecureCookie,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})
	return true
}

// Logout handles POST /logout. The token is revoked so a copied cookie stops
// working too.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if claims := GetWebClaims(r.Context()); claims != nil {
		if err := auth.Revoke(r.Context(), s.DB, claims); err != nil {
			slog.Error("failed to revoke token", "error", err)
		} else {
			slog.Info("user logged out", "user", claims.Username)
		}
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// SettingsPage handles GET /settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	data := s.page(r, "Settings")
	s.Templates.Render(w, "settings.html", &data)
}

// SettingsSubmit handles POST /settings (change own password).
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	data := s.page(r, "Settings")

	render := func(errMsg, success string) {
		data.Error, data.Success = errMsg, success
		s.Templates.Render(w, "settings.html", &data)
	}

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")

	if currentPassword == "" || newPassword == "" {
		render("Enter your current and new password.", "")
		return
	}
	if err := model.ValidatePassword(newPassword); err != nil {
		render("The new password must be at least 8 characters.", "")
		return
	}

	user, err := store.GetUser(r.Context(), s.DB, claims.UserID)
	if err != nil || user == nil {
		render("Could not load your account.", "")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, currentPassword) {
		render("Your current password is wrong.", "")
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		render("Could not save the password.", "")
		return
	}
	if err := store.UpdateUserPassword(r.Context(), s.DB, claims.UserID, hash); err != nil {
		slog.Error("failed to update password", "error", err)
		render("Could not save the password.", "")
		return
	}

	slog.Info("user changed own password", "user", claims.Username)
	render("", "Password changed.")
}
