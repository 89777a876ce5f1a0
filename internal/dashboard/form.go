package dashboard

import (
	"strings"

	"orcamento/internal/core"
)

// FormState mirrors the expense form fields. Transitions return a new value.
type FormState struct {
	Description       string
	Amount            string
	DueDay            string
	Paid              bool
	Remaining         string
	RemainingDisabled bool
}

// NewForm returns an empty, unpaid form.
func NewForm() FormState { return FormState{} }

// FormFromValues reads a submitted form. get is usually url.Values.Get.
func FormFromValues(get func(string) string) FormState {
	paid := checked(get(core.FieldPaid))
	return FormState{
		Description:       get(core.FieldDescription),
		Amount:            get(core.FieldAmount),
		DueDay:            get(core.FieldDueDay),
		Paid:              paid,
		Remaining:         get(core.FieldRemaining),
		RemainingDisabled: paid,
	}
}

func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// TogglePaid applies the paid checkbox. A paid expense has nothing left to
// pay, so remaining becomes "0.00" and is locked. Unchecking unlocks it and,
// when it is empty, fills it from the amount.
func (f FormState) TogglePaid(paid bool) FormState {
	f.Paid = paid
	if paid {
		f.Remaining = "0.00"
		f.RemainingDisabled = true
		return f
	}
	f.RemainingDisabled = false
	if f.Remaining == "" {
		if v, ok := nonNegative(f.Amount); ok {
			f.Remaining = v
		}
	}
	return f
}

// InputAmount records a new amount. While unpaid, remaining follows it.
// Remaining never flows back into the amount.
func (f FormState) InputAmount(amount string) FormState {
	f.Amount = amount
	if f.Paid {
		return f
	}
	if v, ok := nonNegative(amount); ok {
		f.Remaining = v
	}
	return f
}

// Reset clears every field.
func (f FormState) Reset() FormState { return NewForm() }

// Expense returns the raw values for validation.
func (f FormState) Expense() core.ExpenseForm {
	return core.ExpenseForm{
		Description: f.Description,
		Amount:      f.Amount,
		DueDay:      f.DueDay,
		Paid:        f.Paid,
		Remaining:   f.Remaining,
	}
}

func nonNegative(s string) (string, bool) {
	v, err := core.ParseDecimal(s)
	if err != nil || v < 0 {
		return "", false
	}
	return core.FormatFixed2(core.FromFloat(v)), true
}
