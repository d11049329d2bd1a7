// Package supabase adapts the hosted auth service (gotrue) to the
// identity.Provider port.
package supabase

import (
	"context"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"spendwise/internal/core"
	"spendwise/internal/identity"
)

type Provider struct {
	client gotrue.Client
}

// New builds a provider for the given project. The API key is the
// public anon key; per-user calls attach the user's own access token.
func New(projectReference, apiKey string) *Provider {
	return &Provider{client: gotrue.New(projectReference, apiKey)}
}

// NewWithClient is used by tests and by callers that configure a custom
// auth URL.
func NewWithClient(client gotrue.Client) *Provider {
	return &Provider{client: client}
}

// SignUp creates the account with the display name in the user
// metadata, then signs in to open a session.
func (p *Provider) SignUp(ctx context.Context, email, password, displayName string) (identity.Session, error) {
	_, err := p.client.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
		Data: map[string]interface{}{
			"display_name": displayName,
		},
	})
	if err != nil {
		return identity.Session{}, &core.AuthError{Op: "sign up", Err: err}
	}
	return p.SignIn(ctx, email, password)
}

func (p *Provider) SignIn(_ context.Context, email, password string) (identity.Session, error) {
	resp, err := p.client.SignInWithEmailPassword(email, password)
	if err != nil {
		return identity.Session{}, &core.AuthError{Op: "sign in", Err: err}
	}
	return identity.Session{
		Token:   resp.AccessToken,
		Profile: profileFromUser(resp.User),
	}, nil
}

func (p *Provider) SignOut(_ context.Context, token string) error {
	if err := p.client.WithToken(token).Logout(); err != nil {
		return &core.AuthError{Op: "sign out", Err: err}
	}
	return nil
}

func (p *Provider) Authenticate(_ context.Context, token string) (core.UserProfile, error) {
	resp, err := p.client.WithToken(token).GetUser()
	if err != nil {
		return core.UserProfile{}, &core.AuthError{Op: "authenticate", Err: err}
	}
	return profileFromUser(resp.User), nil
}

func profileFromUser(u types.User) core.UserProfile {
	profile := core.UserProfile{
		UID:   u.ID.String(),
		Email: u.Email,
	}
	if name, ok := u.UserMetadata["display_name"].(string); ok {
		profile.DisplayName = name
	}
	return profile
}
