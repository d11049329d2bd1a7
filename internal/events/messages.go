package events

import (
	"encoding/json"
	"errors"
	"time"
)

// Kinds of change events carried on the bus.
const (
	KindExpenseCreated = "expense_created"
	KindBudgetUpdated  = "budget_updated"
)

// ChangeEvent announces that a user's data changed. It carries only
// identifiers; consumers reload the current state from the store, so a
// late or re-delivered event cannot roll a subscriber backwards.
type ChangeEvent struct {
	Kind      string    `json:"kind"`
	UserID    string    `json:"user_id"`
	RecordID  string    `json:"record_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseCreated builds the event for a newly recorded expense.
func NewExpenseCreated(userID, expenseID string) *ChangeEvent {
	return &ChangeEvent{
		Kind:      KindExpenseCreated,
		UserID:    userID,
		RecordID:  expenseID,
		Timestamp: time.Now(),
	}
}

// NewBudgetUpdated builds the event for a budget upsert.
func NewBudgetUpdated(userID string) *ChangeEvent {
	return &ChangeEvent{
		Kind:      KindBudgetUpdated,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON decodes an event, rejecting payloads without a
// kind or owner.
func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Kind == "" || e.UserID == "" {
		return nil, errors.New("change event missing kind or user id")
	}
	return &e, nil
}
