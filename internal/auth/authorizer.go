package auth

import (
	"context"
	"errors"
)

// ActorInfo describes the authenticated user behind a request.
type ActorInfo struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// ErrUnauthenticated is returned when a token is missing or invalid.
var ErrUnauthenticated = errors.New("unauthenticated")

// Authorizer validates bearer tokens.
type Authorizer interface {
	// Authorize validates the token and resolves the acting user.
	// Returns ErrUnauthenticated (possibly wrapped) on failure.
	Authorize(ctx context.Context, token string) (*ActorInfo, error)
}
