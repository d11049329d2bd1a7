package core

import "time"

// Status describes how a spending total relates to a budget limit.
type Status struct {
	Remaining   Money
	Utilization float64
}

// BudgetStatus computes the remaining budget and utilization ratio.
// Remaining may go negative when spending exceeds the limit. A zero (or
// unset) limit yields utilization 0 rather than dividing by zero.
func BudgetStatus(limit, spent Money) Status {
	st := Status{Remaining: Money{Cents: limit.Cents - spent.Cents}}
	if limit.Cents > 0 {
		st.Utilization = float64(spent.Cents) / float64(limit.Cents)
	}
	return st
}

// MonthStart returns the first instant of now's month in now's location:
// day 1, 00:00:00.000. The current-month spending window is
// [MonthStart(now), +inf).
func MonthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}
