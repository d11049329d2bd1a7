package http

import (
	"net/http"

	"spendwise/internal/core"
	"spendwise/internal/log"
)

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	case http.MethodGet:
		s.handleListExpenses(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: "not signed in"})
		return
	}

	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := expenseFromRequest(req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.expenses.Create(r.Context(), sess, expense)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).Info("Expense recorded",
		log.FieldUserID, sess.UserID(),
		log.FieldExpenseID, created.ID,
		log.FieldCategory, created.Category,
		log.FieldAmountCents, created.Amount.Cents)

	writeJSON(w, http.StatusCreated, toExpensePayload(created))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: "not signed in"})
		return
	}

	expenses, err := s.expenses.List(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpensePayloads(expenses))
}

// handleCategories lists the suggested categories with their stable
// display colors. Expenses may still use any free-form category.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	categories := make([]categoryPayload, len(core.SuggestedCategories))
	for i, name := range core.SuggestedCategories {
		categories[i] = categoryPayload{Name: name, Color: core.CategoryColor(name)}
	}
	writeJSON(w, http.StatusOK, categories)
}
