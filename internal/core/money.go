// Package core provides the budget domain types and the formatting, parsing and
// validation rules shared by the web dashboard and the CLI.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidNumber is returned when a user supplied number cannot be parsed.
var ErrInvalidNumber = errors.New("invalid number")

// MaxAmount is the largest magnitude, in reais, a Money value may hold.
// Anything above it is rejected before conversion to centavos.
const MaxAmount = 1e13

// nbsp separates the currency symbol from the amount, as Intl does for pt-BR.
const nbsp = "\u00a0"

// ParseDecimal parses a user typed decimal number.
//
// All whitespace is removed and the first comma is read as the decimal
// separator, so "150,5", " 150.5 " and "1 50,5" are equivalent. Empty input,
// garbage, non-finite values and magnitudes above MaxAmount are rejected with
// ErrInvalidNumber.
//
// Examples:
//
//	ParseDecimal("12,34")   -> 12.34, nil
//	ParseDecimal(" 12.34 ") -> 12.34, nil
//	ParseDecimal("")        -> 0, ErrInvalidNumber
func ParseDecimal(s string) (float64, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, ErrInvalidNumber
	}
	s = strings.Replace(s, ",", ".", 1)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	if !inRange(f) {
		return 0, ErrInvalidNumber
	}
	return f, nil
}

func inRange(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && math.Abs(f) <= MaxAmount
}

// FromFloat rounds a decimal value to the nearest centavo. Values outside
// ±MaxAmount saturate at the bound and NaN maps to zero; ParseDecimal
// rejects both before they get here.
func FromFloat(f float64) Money {
	switch {
	case math.IsNaN(f):
		return Money{}
	case f > MaxAmount:
		f = MaxAmount
	case f < -MaxAmount:
		f = -MaxAmount
	}
	return Money{Cents: int64(math.Round(f * 100))}
}

// Float returns the value in reais. Use Cents for arithmetic.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// FormatFixed2 renders the amount with a dot and exactly two decimals ("150.50"),
// the representation used inside form fields.
func FormatFixed2(m Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + twoDigits(cents%100)
}

// FormatBRL formats the amount as Brazilian currency, e.g. "R$ 1.234,56".
func FormatBRL(m Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + "R$" + nbsp + groupThousands(cents/100) + "," + twoDigits(cents%100)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(FormatFixed2(m)), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string or null.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		m.Cents = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.New("money: " + strconv.Quote(s) + " is not a number")
	}
	if !inRange(f) {
		return errors.New("money: " + strconv.Quote(s) + " is out of range")
	}
	*m = FromFloat(f)
	return nil
}
