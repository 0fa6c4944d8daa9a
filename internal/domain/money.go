package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// MoneyScale is the number of fractional digits prices and totals are stored with.
const MoneyScale = 2

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, unit currency.Unit) Money {
	return Money{Amount: amount, Currency: unit}
}

func ZeroMoney(unit currency.Unit) Money {
	return Money{Amount: decimal.Zero, Currency: unit}
}

// Mul multiplies the amount by an integer quantity without rounding.
func (m Money) Mul(quantity int) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt(int64(quantity))),
		Currency: m.Currency,
	}
}

func (m Money) Add(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, fmt.Errorf("%s and %s: %w", m.Currency, other.Currency, ErrCurrencyMismatch)
	}

	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

func (m Money) SameCurrency(other Money) bool {
	return m.Currency.String() == other.Currency.String()
}

// Equal compares amounts numerically, so 50 and 50.00 are equal.
func (m Money) Equal(other Money) bool {
	return m.SameCurrency(other) && m.Amount.Equal(other.Amount)
}

func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// HasValidScale reports whether the amount fits into MoneyScale fractional digits.
func (m Money) HasValidScale() bool {
	return m.Amount.Equal(m.Amount.Round(MoneyScale))
}

func (m Money) String() string {
	return m.Amount.StringFixed(MoneyScale) + " " + m.Currency.String()
}
