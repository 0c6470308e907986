package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/garderoba/internal/store"
)

// ErrRevoked is returned for tokens that were logged out.
var ErrRevoked = errors.New("token revoked")

// Authenticate validates a token and checks it has not been revoked and its
// user still exists.
func Authenticate(ctx context.Context, db *sql.DB, secret, token string) (*Claims, error) {
	claims, err := ValidateToken(secret, token)
	if err != nil {
		return nil, err
	}
	revoked, err := store.IsTokenRevoked(ctx, db, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("checking token revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevoked
	}

	user, err := store.GetUser(ctx, db, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading token user: %w", err)
	}
	if user == nil || user.DeletedAt != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Revoke invalidates the token the claims came from until it would have
// expired anyway.
func Revoke(ctx context.Context, db *sql.DB, claims *Claims) error {
	return store.RevokeToken(ctx, db, claims.ID, claims.Expiry())
}
