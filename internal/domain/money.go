package domain

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the fixed-point precision of every stored amount.
const CurrencyPlaces = 2

// RoundCurrency rounds half away from zero to CurrencyPlaces.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// ValidateAmount checks an operation amount: strictly positive, at most two decimals.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Validationf("amount must be positive")
	}
	if !amount.Equal(RoundCurrency(amount)) {
		return Validationf("amount must have at most %d decimal places", CurrencyPlaces)
	}
	return nil
}

// ValidateBalance checks a stored balance: non-negative, at most two decimals.
func ValidateBalance(balance decimal.Decimal) error {
	if balance.IsNegative() {
		return Validationf("market value cannot be negative")
	}
	if !balance.Equal(RoundCurrency(balance)) {
		return Validationf("market value must have at most %d decimal places", CurrencyPlaces)
	}
	return nil
}

// FormatMoney renders amount with the symbol and grouping of currency,
// e.g. 10570 in USD as "$10,570.00". Unknown codes fall back to the plain amount.
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		return amount.StringFixed(CurrencyPlaces) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
