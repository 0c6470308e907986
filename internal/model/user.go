package model

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// User represents an account owning a closet.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Member is a user as listed to administrators.
type Member struct {
	User
	ItemCount int `json:"item_count"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin: 2,
		RoleUser:  1,
	}
	return levels[role] >= levels[minimum] && levels[minimum] > 0
}

// ValidatePassword checks the password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{2,31}$`)

// ValidateUsername checks the username policy: 3 to 32 letters, digits, dots,
// dashes or underscores, starting with a letter or digit.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return errors.New("username must be 3-32 letters, digits, '.', '-' or '_'")
	}
	return nil
}

// Session identifies the authenticated user for the duration of a request.
// Handlers resolve it once and pass it explicitly to the closet layer.
type Session struct {
	UserID   int64
	Username string
	Role     string
}
