package http

import (
	"net/http"
	"strings"

	"spendwise/internal/core"
	"spendwise/internal/log"
)

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateCredentials(req); err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := s.accounts.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).Info("Account created", log.FieldUserID, sess.UserID())
	writeJSON(w, http.StatusCreated, sessionPayload{
		Token:   sess.Token,
		Profile: toProfilePayload(sess.Profile),
	})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateCredentials(req); err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := s.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionPayload{
		Token:   sess.Token,
		Profile: toProfilePayload(sess.Profile),
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: "not signed in"})
		return
	}
	if err := s.accounts.SignOut(r.Context(), sess.Token); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: "not signed in"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, toProfilePayload(sess.Profile))
	case http.MethodPut:
		var req updateProfileRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		profile, err := s.accounts.UpdateProfile(r.Context(), sess, req.DisplayName)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toProfilePayload(profile))
	default:
		w.Header().Set("Allow", "GET, PUT")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func validateCredentials(req credentialsRequest) error {
	if strings.TrimSpace(req.Email) == "" {
		return core.NewValidationError("email", core.ErrEmptyEmail)
	}
	if req.Password == "" {
		return core.NewValidationError("password", core.ErrEmptyPassword)
	}
	return nil
}
