package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"spendwise/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: "not signed in"})
		return
	}

	dashboard, err := s.dashboards.Overview(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardPayload(dashboard))
}

// handleDashboardChart serves the category breakdown pie as PNG.
// Renders are cached per user and dashboard version, so repeated loads
// of an unchanged dashboard cost one render.
func (s *Server) handleDashboardChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: "not signed in"})
		return
	}

	dashboard, err := s.dashboards.Overview(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}

	png, cached := s.chartCache.Get(sess.UserID(), dashboard.Version)
	if !cached {
		png, err = s.charts.CategoryPie(dashboard.Summary)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if png != nil {
			s.chartCache.Put(sess.UserID(), dashboard.Version, png)
		}
	}
	if png == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=60")
	_, _ = w.Write(png)
}

// handleDashboardStream pushes dashboard updates over server-sent
// events until the client disconnects. Every event carries the full
// dashboard; versions only move forward.
func (s *Server) handleDashboardStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: "not signed in"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorPayload{Error: "streaming unsupported"})
		return
	}

	updates, err := s.dashboards.Watch(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger := log.FromContext(r.Context())
	logger.Info("Dashboard stream opened",
		log.FieldOperation, log.OpSubscribe, log.FieldUserID, sess.UserID())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case dashboard, open := <-updates:
			if !open {
				logger.Info("Dashboard stream closed", log.FieldUserID, sess.UserID())
				return
			}
			body, err := json.Marshal(toDashboardPayload(dashboard))
			if err != nil {
				logger.Error("Dashboard encode failed", "error", err)
				return
			}
			fmt.Fprintf(w, "id: %d\nevent: dashboard\ndata: %s\n\n", dashboard.Version, body)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
