package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"spendwise/internal/core"
)

type account struct {
	uid          string
	email        string
	displayName  string
	passwordHash []byte
}

// MemoryProvider is an in-process identity provider for development and
// tests. Passwords are bcrypt-hashed; tokens are random and live until
// sign-out or process exit.
type MemoryProvider struct {
	mu       sync.Mutex
	byEmail  map[string]*account
	sessions map[string]string // token -> uid
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		byEmail:  make(map[string]*account),
		sessions: make(map[string]string),
	}
}

func (p *MemoryProvider) SignUp(_ context.Context, email, password, displayName string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Session{}, &core.AuthError{Op: "sign up", Err: core.ErrEmptyEmail}
	}
	if password == "" {
		return Session{}, &core.AuthError{Op: "sign up", Err: core.ErrEmptyPassword}
	}
	if len(password) < 6 {
		return Session{}, &core.AuthError{Op: "sign up", Err: ErrWeakPassword}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, &core.AuthError{Op: "sign up", Err: err}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.byEmail[email]; exists {
		return Session{}, &core.AuthError{Op: "sign up", Err: ErrAccountExists}
	}
	acct := &account{
		uid:          uuid.New().String(),
		email:        email,
		displayName:  displayName,
		passwordHash: hash,
	}
	p.byEmail[email] = acct
	return p.openSessionLocked(acct), nil
}

func (p *MemoryProvider) SignIn(_ context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.byEmail[email]
	if !ok {
		return Session{}, &core.AuthError{Op: "sign in", Err: ErrInvalidCredentials}
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return Session{}, &core.AuthError{Op: "sign in", Err: ErrInvalidCredentials}
	}
	return p.openSessionLocked(acct), nil
}

func (p *MemoryProvider) SignOut(_ context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, token)
	return nil
}

func (p *MemoryProvider) Authenticate(_ context.Context, token string) (core.UserProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	uid, ok := p.sessions[token]
	if !ok {
		return core.UserProfile{}, &core.AuthError{Op: "authenticate", Err: ErrInvalidToken}
	}
	for _, acct := range p.byEmail {
		if acct.uid == uid {
			return profileOf(acct), nil
		}
	}
	return core.UserProfile{}, &core.AuthError{Op: "authenticate", Err: ErrInvalidToken}
}

func (p *MemoryProvider) openSessionLocked(acct *account) Session {
	token := uuid.New().String()
	p.sessions[token] = acct.uid
	return Session{Token: token, Profile: profileOf(acct)}
}

func profileOf(acct *account) core.UserProfile {
	return core.UserProfile{
		UID:         acct.uid,
		Email:       acct.email,
		DisplayName: acct.displayName,
	}
}
