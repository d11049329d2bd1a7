package services

import (
	"context"
	"log/slog"
	"strings"

	"spendwise/internal/core"
	"spendwise/internal/identity"
	"spendwise/internal/log"
	"spendwise/internal/store"
)

// AccountService fronts the identity provider and keeps the profile
// record in the store. The provider owns credentials and tokens; the
// store owns the profile fields a user can edit afterwards.
type AccountService struct {
	provider identity.Provider
	store    store.Store
}

func NewAccountService(provider identity.Provider, st store.Store) *AccountService {
	return &AccountService{provider: provider, store: st}
}

func (s *AccountService) SignUp(ctx context.Context, email, password, displayName string) (identity.Session, error) {
	sess, err := s.provider.SignUp(ctx, email, password, displayName)
	if err != nil {
		return identity.Session{}, err
	}
	// Best effort: the account exists either way, and Authenticate
	// falls back to the provider's profile.
	if err := s.store.PutProfile(ctx, sess.Profile); err != nil {
		slog.ErrorContext(ctx, "Failed to persist profile", log.NewFields().
			WithComponent(log.ComponentIdentity).
			WithOperation(log.OpSignUp).
			WithUser(sess.UserID()).
			WithError(err).
			ToSlice()...)
	}
	return sess, nil
}

func (s *AccountService) SignIn(ctx context.Context, email, password string) (identity.Session, error) {
	sess, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return identity.Session{}, err
	}
	sess.Profile = s.enrich(ctx, sess.Profile)
	return sess, nil
}

func (s *AccountService) SignOut(ctx context.Context, token string) error {
	return s.provider.SignOut(ctx, token)
}

// Authenticate resolves a bearer token, preferring the stored profile
// so edits made through UpdateProfile are visible everywhere.
func (s *AccountService) Authenticate(ctx context.Context, token string) (core.UserProfile, error) {
	profile, err := s.provider.Authenticate(ctx, token)
	if err != nil {
		return core.UserProfile{}, err
	}
	return s.enrich(ctx, profile), nil
}

// UpdateProfile sets the user's display name.
func (s *AccountService) UpdateProfile(ctx context.Context, sess identity.Session, displayName string) (core.UserProfile, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return core.UserProfile{}, core.NewValidationError("displayName", core.ErrEmptyDisplayName)
	}

	profile := sess.Profile
	profile.DisplayName = displayName
	if err := s.store.PutProfile(ctx, profile); err != nil {
		return core.UserProfile{}, err
	}

	slog.InfoContext(ctx, "Profile updated", "user_id", profile.UID)
	return profile, nil
}

func (s *AccountService) enrich(ctx context.Context, profile core.UserProfile) core.UserProfile {
	stored, ok, err := s.store.GetProfile(ctx, profile.UID)
	if err != nil || !ok {
		return profile
	}
	if stored.DisplayName != "" {
		profile.DisplayName = stored.DisplayName
	}
	return profile
}
