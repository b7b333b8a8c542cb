// Package types provides the numeric value types shared by the domain.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity is a stock or item quantity. Fractional values are allowed (e.g. 0.5 kg).
type Quantity = decimal.Decimal

const (
	// MoneyPlaces is the number of decimal places kept for currency amounts.
	MoneyPlaces int32 = 2
	// QuantityPlaces is the number of decimal places kept for stock and item quantities.
	QuantityPlaces int32 = 3
)

// FitsPlaces reports whether d has no significant digits past places.
func FitsPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// IsMoneyPrecise reports whether m is representable in whole cents.
func IsMoneyPrecise(m Money) bool { return FitsPlaces(m, MoneyPlaces) }

// IsQuantityPrecise reports whether q fits the stored quantity precision.
func IsQuantityPrecise(q Quantity) bool { return FitsPlaces(q, QuantityPlaces) }

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	return decimal.RequireFromString(s)
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundMoney rounds half away from zero to currency precision.
func RoundMoney(m Money) Money {
	return m.Round(MoneyPlaces)
}

// LineTotal returns quantity × unit price rounded to currency precision.
func LineTotal(qty Quantity, unitPrice Money) Money {
	return RoundMoney(qty.Mul(unitPrice))
}

// SumMoney adds amounts and rounds the result.
func SumMoney(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return RoundMoney(total)
}
