package core

import (
	"math"
	"strconv"
	"strings"
)

// Form field names, shared by the HTML form, the CLI flags and validation errors.
const (
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldDueDay      = "dueDay"
	FieldPaid        = "paid"
	FieldRemaining   = "remaining"
)

// Validation messages shown to the user.
const (
	MsgDescriptionRequired = "Informe uma descrição para a despesa."
	MsgInvalidAmount       = "Informe um valor válido maior que zero."
	MsgInvalidDueDay       = "O dia de vencimento deve estar entre 1 e 31."
	MsgInvalidRemaining    = "Informe um valor restante válido."
)

// ValidationError reports the first form field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ExpenseForm carries the raw values typed into the expense form.
type ExpenseForm struct {
	Description string
	Amount      string
	DueDay      string
	Paid        bool
	Remaining   string
}

// Validate checks the form in field order and returns the payload to submit.
// The first failing rule wins; errors are never accumulated.
func (f ExpenseForm) Validate() (NewExpense, error) {
	description := strings.TrimSpace(f.Description)
	if description == "" {
		return NewExpense{}, &ValidationError{Field: FieldDescription, Message: MsgDescriptionRequired}
	}

	amount, err := ParseDecimal(f.Amount)
	if err != nil || amount <= 0 {
		return NewExpense{}, &ValidationError{Field: FieldAmount, Message: MsgInvalidAmount}
	}

	dueDay, ok := parseDueDay(f.DueDay)
	if !ok {
		return NewExpense{}, &ValidationError{Field: FieldDueDay, Message: MsgInvalidDueDay}
	}

	var remaining float64
	if !f.Paid {
		remaining, err = ParseDecimal(f.Remaining)
		if err != nil || remaining < 0 {
			return NewExpense{}, &ValidationError{Field: FieldRemaining, Message: MsgInvalidRemaining}
		}
	}

	return NewExpense{
		Paid:        f.Paid,
		Description: description,
		Amount:      FromFloat(amount),
		DueDay:      dueDay,
		Remaining:   FromFloat(remaining),
	}, nil
}

// parseDueDay accepts integral numbers in [1, 31]; "7" and " 7.0 " are both day 7.
func parseDueDay(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < 1 || f > 31 {
		return 0, false
	}
	return int(f), true
}
