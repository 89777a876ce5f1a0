package core

import (
	"time"
)

type (
	// Money is an amount in centavos.
	Money struct {
		Cents int64
	}

	// Summary holds the aggregate totals for the budgeting period.
	Summary struct {
		TotalPlanned   Money `json:"totalPlanned"`
		TotalPaid      Money `json:"totalPaid"`
		TotalRemaining Money `json:"totalRemaining"`
	}

	// Expense is a single budget line as returned by the finance API.
	Expense struct {
		Paid        bool   `json:"paid"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		DueDay      int    `json:"dueDay"`
		Remaining   Money  `json:"remaining"`
	}

	// Dashboard is the payload of GET /api/finance/summary.
	Dashboard struct {
		Summary  Summary   `json:"summary"`
		Expenses []Expense `json:"expenses"`
	}

	// NewExpense is the validated payload sent to POST /api/finance/expenses.
	NewExpense struct {
		Paid        bool   `json:"paid"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		DueDay      int    `json:"dueDay"`
		Remaining   Money  `json:"remaining"`
	}

	// Goal is a static suggestion card. Goals are generated on every render.
	Goal struct {
		Title       string
		Description string
	}

	// Outcome classifies a submission that reached the finance API.
	Outcome string

	// Submission records one attempt to create an expense.
	Submission struct {
		ID        int64
		Expense   NewExpense
		Outcome   Outcome
		Message   string
		CreatedAt time.Time
	}
)

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
	// OutcomeInvalid never leaves the process: the form failed local validation.
	OutcomeInvalid Outcome = "invalid"
)
