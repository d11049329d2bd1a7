package http

import (
	"net/http"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/log"
)

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		s.handleSetBudget(w, r)
	case http.MethodGet:
		s.handleGetBudget(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: "not signed in"})
		return
	}

	var req budgetPayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	cents, err := core.CentsFromFloat(req.Amount)
	if err != nil {
		writeError(w, r, core.NewValidationError("amount", err))
		return
	}

	budget, err := s.budgets.Set(r.Context(), sess, core.Money{Cents: cents}, core.Period(req.Period))
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).Info("Budget saved",
		log.FieldUserID, sess.UserID(),
		log.FieldAmountCents, budget.Amount.Cents,
		log.FieldPeriod, string(budget.Period))

	writeJSON(w, http.StatusOK, budgetPayload{
		Amount: budget.Amount.Dollars(),
		Period: string(budget.Period),
	})
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: "not signed in"})
		return
	}

	overview, err := s.budgets.Overview(r.Context(), sess, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetOverviewPayload(overview))
}
