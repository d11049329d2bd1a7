// Package identity defines the outbound port for the external identity
// provider and the session type handed explicitly to everything that
// acts on behalf of a user. There is no ambient current-user: callers
// always receive the session from the request that authenticated it.
package identity

import (
	"context"
	"errors"

	"spendwise/internal/core"
)

// Session is an authenticated user plus the bearer token that proves it.
type Session struct {
	Token   string
	Profile core.UserProfile
}

// UserID is a convenience accessor for the owning user id.
func (s Session) UserID() string { return s.Profile.UID }

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountExists      = errors.New("an account with this email already exists")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Provider is the capability surface consumed from the identity service.
// Failures carry a core.AuthError and are surfaced to the user verbatim.
type Provider interface {
	// SignUp creates the account and sets the display name.
	SignUp(ctx context.Context, email, password, displayName string) (Session, error)

	// SignIn authenticates by email and password.
	SignIn(ctx context.Context, email, password string) (Session, error)

	// SignOut invalidates the session token.
	SignOut(ctx context.Context, token string) error

	// Authenticate resolves a bearer token to the profile it belongs to.
	Authenticate(ctx context.Context, token string) (core.UserProfile, error)
}
