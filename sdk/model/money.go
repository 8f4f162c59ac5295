package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MinorUnits converts an amount into minor units: amount*100 truncated
// toward zero. The input is not modified.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Truncate(0).IntPart()
}

// Money is an amount in minor units together with its ISO 4217 currency.
type Money struct {
	CentAmount   int64  `json:"centAmount"`
	CurrencyCode string `json:"currencyCode" validate:"required,len=3,uppercase"`
}

// NewMoney converts a decimal amount into Money. Fractions of a cent are
// truncated.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{CentAmount: MinorUnits(amount), CurrencyCode: currency}
}

// Amount returns the value in major units.
func (m Money) Amount() decimal.Decimal {
	return decimal.New(m.CentAmount, -2)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount().StringFixed(2), m.CurrencyCode)
}
