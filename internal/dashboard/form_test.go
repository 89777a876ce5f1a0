package dashboard

import (
	"net/url"
	"testing"
)

func TestTogglePaid(t *testing.T) {
	f := NewForm().InputAmount("150,5")

	paid := f.TogglePaid(true)
	if paid.Remaining != "0.00" || !paid.RemainingDisabled || !paid.Paid {
		t.Fatalf("paid form = %+v", paid)
	}

	unpaid := paid.TogglePaid(false)
	if unpaid.RemainingDisabled || unpaid.Paid {
		t.Fatalf("unpaid form = %+v", unpaid)
	}
	// a non-empty remaining is left alone
	if unpaid.Remaining != "0.00" {
		t.Fatalf("remaining = %q, want 0.00", unpaid.Remaining)
	}

	cleared := paid
	cleared.Remaining = ""
	if got := cleared.TogglePaid(false).Remaining; got != "150.50" {
		t.Fatalf("empty remaining should follow amount, got %q", got)
	}

	noAmount := FormState{Amount: "abc", Paid: true, RemainingDisabled: true}
	if got := noAmount.TogglePaid(false).Remaining; got != "" {
		t.Fatalf("invalid amount must not fill remaining, got %q", got)
	}
}

func TestInputAmountOneWay(t *testing.T) {
	tests := []struct {
		name      string
		start     FormState
		amount    string
		remaining string
	}{
		{"copies amount", FormState{}, "150,5", "150.50"},
		{"overwrites typed remaining", FormState{Remaining: "10.00"}, "20", "20.00"},
		{"zero is allowed", FormState{Remaining: "3"}, "0", "0.00"},
		{"negative keeps remaining", FormState{Remaining: "3"}, "-1", "3"},
		{"garbage keeps remaining", FormState{Remaining: "3"}, "x", "3"},
		{"empty keeps remaining", FormState{Remaining: "3"}, "", "3"},
		{"out of range keeps remaining", FormState{Remaining: "3"}, "1e20", "3"},
		{"paid ignores amount", FormState{Paid: true, Remaining: "0.00", RemainingDisabled: true}, "99", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.start.InputAmount(tt.amount)
			if got.Amount != tt.amount {
				t.Errorf("Amount = %q, want %q", got.Amount, tt.amount)
			}
			if got.Remaining != tt.remaining {
				t.Errorf("Remaining = %q, want %q", got.Remaining, tt.remaining)
			}
		})
	}

	// editing remaining never touches amount
	f := NewForm().InputAmount("100")
	f.Remaining = "40"
	if f.Amount != "100" {
		t.Fatalf("amount changed to %q", f.Amount)
	}
}

func TestReset(t *testing.T) {
	f := FormState{Description: "Luz", Amount: "1", DueDay: "2", Paid: true, Remaining: "0.00", RemainingDisabled: true}
	if got := f.Reset(); got != (FormState{}) {
		t.Fatalf("Reset() = %+v", got)
	}
}

func TestFormFromValues(t *testing.T) {
	v := url.Values{
		"description": {" Luz "},
		"amount":      {"150,5"},
		"dueDay":      {"10"},
		"paid":        {"on"},
		"remaining":   {"0.00"},
	}
	f := FormFromValues(v.Get)
	if !f.Paid || !f.RemainingDisabled || f.Description != " Luz " || f.Remaining != "0.00" {
		t.Fatalf("unexpected form: %+v", f)
	}

	exp, err := f.Expense().Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if exp.Description != "Luz" || exp.Amount.Cents != 15050 || exp.Remaining.Cents != 0 {
		t.Fatalf("unexpected payload: %+v", exp)
	}

	if FormFromValues(url.Values{"paid": {"off"}}.Get).Paid {
		t.Fatal("paid=off must be unpaid")
	}
}
