package http

import (
	"context"
	"net/http"
	"strings"

	"spendwise/internal/identity"
)

type sessionContextKey struct{}

// withAuth resolves the bearer token to a session and rejects the
// request when it cannot. Handlers behind it always receive a session.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorPayload{Error: "missing bearer token"})
			return
		}

		profile, err := s.accounts.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, r, err)
			return
		}

		sess := identity.Session{Token: token, Profile: profile}
		ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
		next(w, r.WithContext(ctx))
	}
}

func sessionFromContext(ctx context.Context) (identity.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(identity.Session)
	return sess, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	// EventSource cannot set headers, so the stream endpoint accepts
	// the token as a query parameter.
	return r.URL.Query().Get("token")
}
