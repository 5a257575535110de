// Package core provides money parsing and handling utilities.
//
// This file contains the Money type used for every amount in the ledger.
// Amounts are exact decimals; rounding happens only when rendering.
package core

import (
	"github.com/shopspring/decimal"
)

// Money is a non-negative decimal amount in pesos.
type Money struct {
	decimal.Decimal
}

// Zero is the additive identity used to start sums.
var Zero = Money{Decimal: decimal.Zero}

// NewMoney builds a Money from a float, for tests and literals.
func NewMoney(v float64) Money {
	return Money{Decimal: decimal.NewFromFloat(v)}
}

// ParseMoney reads a stored amount. It accepts anything decimal can parse,
// including values written by older revisions such as "250.0".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Decimal: d}, nil
}

// Validate enforces the strictly-positive policy.
func (m Money) Validate() error {
	if !m.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

func (m Money) Sub(o Money) Money {
	return Money{Decimal: m.Decimal.Sub(o.Decimal)}
}

func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}

// Float64 returns the value as a float for tolerance comparisons.
func (m Money) Float64() float64 {
	f, _ := m.Decimal.Float64()
	return f
}

// Display renders the amount with exactly two fractional digits.
func (m Money) Display() string {
	return m.Decimal.StringFixed(2)
}

// Storage renders the amount with '.' as separator and no fixed precision.
func (m Money) Storage() string {
	return m.Decimal.String()
}

// Sum adds up the given amounts without intermediate rounding.
func Sum(amounts ...Money) Money {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
