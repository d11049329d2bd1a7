package http

import (
	"encoding/json"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/services"
)

// Wire types. Amounts travel as decimal dollars, dates as Unix epoch
// milliseconds.

type expensePayload struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Date        int64   `json:"date"`
}

type createExpenseRequest struct {
	Amount      json.RawMessage `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        *int64          `json:"date,omitempty"`
}

type budgetPayload struct {
	Amount float64 `json:"amount"`
	Period string  `json:"period"`
}

type budgetOverviewPayload struct {
	HasBudget   bool    `json:"hasBudget"`
	Limit       float64 `json:"limit"`
	Spent       float64 `json:"spent"`
	Remaining   float64 `json:"remaining"`
	Utilization float64 `json:"utilization"`
}

type summaryPayload struct {
	Total      float64            `json:"total"`
	ByCategory map[string]float64 `json:"byCategory"`
	Colors     map[string]string  `json:"colors"`
}

type dashboardPayload struct {
	Version  uint64                `json:"version"`
	Expenses []expensePayload      `json:"expenses"`
	Summary  summaryPayload        `json:"summary"`
	Budget   budgetOverviewPayload `json:"budget"`
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName"`
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

type sessionPayload struct {
	Token   string         `json:"token"`
	Profile profilePayload `json:"profile"`
}

type profilePayload struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

type categoryPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func toExpensePayload(e core.Expense) expensePayload {
	return expensePayload{
		ID:          e.ID,
		Amount:      e.Amount.Dollars(),
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date.UnixMilli(),
	}
}

func toExpensePayloads(expenses []core.Expense) []expensePayload {
	out := make([]expensePayload, len(expenses))
	for i, e := range expenses {
		out[i] = toExpensePayload(e)
	}
	return out
}

func toSummaryPayload(s core.Summary) summaryPayload {
	byCategory := make(map[string]float64, len(s.ByCategory))
	colors := make(map[string]string, len(s.ByCategory))
	for name, amount := range s.ByCategory {
		byCategory[name] = amount.Dollars()
		colors[name] = core.CategoryColor(name)
	}
	return summaryPayload{
		Total:      s.Total.Dollars(),
		ByCategory: byCategory,
		Colors:     colors,
	}
}

func toBudgetOverviewPayload(o services.BudgetOverview) budgetOverviewPayload {
	return budgetOverviewPayload{
		HasBudget:   o.HasBudget,
		Limit:       o.Limit.Dollars(),
		Spent:       o.Spent.Dollars(),
		Remaining:   o.Remaining.Dollars(),
		Utilization: o.Utilization,
	}
}

func toDashboardPayload(d services.Dashboard) dashboardPayload {
	return dashboardPayload{
		Version:  d.Version,
		Expenses: toExpensePayloads(d.Expenses),
		Summary:  toSummaryPayload(d.Summary),
		Budget:   toBudgetOverviewPayload(d.Budget),
	}
}

func toProfilePayload(p core.UserProfile) profilePayload {
	return profilePayload{UID: p.UID, Email: p.Email, DisplayName: p.DisplayName}
}

// amountToCents converts the wire amount to cents. Clients send the
// entry form's value either as a JSON number or as its raw text, so
// both are accepted. A missing or zero amount is rejected here, before
// any store call.
func amountToCents(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 {
		return 0, core.NewValidationError("amount", core.ErrInvalidAmount)
	}
	var (
		cents int64
		err   error
	)
	if raw[0] == '"' {
		var s string
		if jsonErr := json.Unmarshal(raw, &s); jsonErr != nil {
			return 0, core.NewValidationError("amount", core.ErrInvalidAmount)
		}
		cents, err = core.ParseDecimalToCents(s)
	} else {
		var v float64
		if jsonErr := json.Unmarshal(raw, &v); jsonErr != nil {
			return 0, core.NewValidationError("amount", core.ErrInvalidAmount)
		}
		cents, err = core.CentsFromFloat(v)
	}
	if err != nil {
		return 0, core.NewValidationError("amount", err)
	}
	if cents == 0 {
		return 0, core.NewValidationError("amount", core.ErrInvalidAmount)
	}
	return cents, nil
}

func expenseFromRequest(req createExpenseRequest) (core.Expense, error) {
	cents, err := amountToCents(req.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		Amount:      core.Money{Cents: cents},
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Date != nil {
		e.Date = time.UnixMilli(*req.Date)
	}
	return e, nil
}
