package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"spendwise/internal/core"
	"spendwise/internal/identity"
	"spendwise/internal/log"
	"spendwise/internal/middleware/trace"
)

type errorPayload struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to HTTP status codes. Validation
// and auth failures travel to the client verbatim; store failures are
// logged and masked.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidationError(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorPayload{Error: err.Error()})
	case errors.Is(err, identity.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: identity.ErrInvalidToken.Error()})
	case errors.Is(err, identity.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: identity.ErrInvalidCredentials.Error()})
	case errors.Is(err, identity.ErrAccountExists):
		writeJSON(w, http.StatusConflict, errorPayload{Error: identity.ErrAccountExists.Error()})
	case errors.Is(err, identity.ErrWeakPassword):
		writeJSON(w, http.StatusUnprocessableEntity, errorPayload{Error: identity.ErrWeakPassword.Error()})
	case core.IsAuthError(err):
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: err.Error()})
	case core.IsStoreError(err):
		// The client sees a generic message; the request id ties the
		// response back to the logged cause.
		log.FromContext(r.Context()).Error("Store operation failed",
			"error", err, "path", r.URL.Path,
			log.FieldRequestID, trace.GetRequestID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorPayload{Error: "storage unavailable"})
	default:
		log.FromContext(r.Context()).Error("Unhandled error",
			"error", err, "path", r.URL.Path,
			log.FieldRequestID, trace.GetRequestID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorPayload{Error: "internal error"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return core.NewValidationError("body", err)
	}
	return nil
}
