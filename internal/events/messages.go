package events

import (
	"encoding/json"
	"time"

	"orcamento/internal/core"
)

// ExpenseCreatedMessage is published after the budget API accepted an expense.
type ExpenseCreatedMessage struct {
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
	DueDay      int        `json:"dueDay"`
	Paid        bool       `json:"paid"`
	Remaining   core.Money `json:"remaining"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewExpenseCreatedMessage builds the message for an accepted expense.
func NewExpenseCreatedMessage(e core.NewExpense, at time.Time) *ExpenseCreatedMessage {
	return &ExpenseCreatedMessage{
		Description: e.Description,
		Amount:      e.Amount,
		DueDay:      e.DueDay,
		Paid:        e.Paid,
		Remaining:   e.Remaining,
		CreatedAt:   at.UTC(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExpenseCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseCreatedMessageFromJSON decodes a message body.
func ExpenseCreatedMessageFromJSON(data []byte) (*ExpenseCreatedMessage, error) {
	var msg ExpenseCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
