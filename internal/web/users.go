package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/garderoba/internal/auth"
	"github.com/erazemk/garderoba/internal/model"
	"github.com/erazemk/garderoba/internal/store"
)

// requireAdmin writes 403 for non-admins and reports whether to continue.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims := GetWebClaims(r.Context())
	if claims == nil || !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// UsersPage handles GET /users (admin only).
func (s *Server) UsersPage(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	s.renderUsers(w, r, "", "")
}

func (s *Server) renderUsers(w http.ResponseWriter, r *http.Request, errMsg, success string) {
	users, err := store.ListMembers(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list users", "error", err)
	}

	data := struct {
		PageData
		Users []model.Member
	}{
		PageData: s.page(r, "Members"),
		Users:    users,
	}
	data.Error, data.Success = errMsg, success
	s.Templates.Render(w, "users.html", &data)
}

// UserCreateSubmit handles POST /users (admin only).
func (s *Server) UserCreateSubmit(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	claims := GetWebClaims(r.Context())

	username := r.FormValue("username")
	password := r.FormValue("password")
	role := r.FormValue("role")
	if role != model.RoleAdmin {
		role = model.RoleUser
	}

	if err := model.ValidateUsername(username); err != nil {
		s.renderUsers(w, r, err.Error(), "")
		return
	}
	if err := model.ValidatePassword(password); err != nil {
		s.renderUsers(w, r, err.Error(), "")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	_, err = store.CreateUser(r.Context(), s.DB, username, hash, role)
	if errors.Is(err, store.ErrUsernameTaken) {
		s.renderUsers(w, r, "That username is taken.", "")
		return
	}
	if err != nil {
		slog.Error("failed to create user", "error", err)
		s.renderUsers(w, r, "Could not create the member.", "")
		return
	}

	slog.Info("user created", "user", claims.Username, "new_user", username, "role", role)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// UserResetPasswordSubmit handles POST /users/{id}/password (admin only).
func (s *Server) UserResetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	newPassword := r.FormValue("new_password")
	if err := model.ValidatePassword(newPassword); err != nil {
		s.renderUsers(w, r, err.Error(), "")
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	if err := store.UpdateUserPassword(r.Context(), s.DB, id, hash); err != nil {
		slog.Error("failed to reset password", "error", err)
		s.renderUsers(w, r, "Could not reset the password.", "")
		return
	}
	slog.Info("user password reset", "user", GetWebClaims(r.Context()).Username, "target_user_id", id)
	s.renderUsers(w, r, "", "Password reset.")
}

// UserDeleteSubmit handles POST /users/{id}/delete (admin only).
func (s *Server) UserDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	claims := GetWebClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id == claims.UserID {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	if err := store.DeleteUser(r.Context(), s.DB, id); err != nil {
		slog.Error("failed to delete user", "error", err)
		s.renderUsers(w, r, "Could not delete the member.", "")
		return
	}
	slog.Info("user deleted", "user", claims.Username, "deleted_user_id", id)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}
