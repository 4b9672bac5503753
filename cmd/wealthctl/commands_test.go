package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

func TestFormatTotals(t *testing.T) {
	totals := map[domain.AccountType]decimal.Decimal{
		domain.AccountTypeStock: decimal.RequireFromString("10570"),
		domain.AccountTypeCash:  decimal.RequireFromString("500.5"),
	}

	got := formatTotals(totals, decimal.RequireFromString("11070.5"), "USD")

	want := "CashAccount   $500.50\n" +
		"StockAccount  $10,570.00\n" +
		"Total         $11,070.50\n"
	assert.Equal(t, want, got)
}

func TestFormatTotals_Empty(t *testing.T) {
	assert.Equal(t, "Total  $0.00\n", formatTotals(nil, decimal.Zero, "USD"))
}
