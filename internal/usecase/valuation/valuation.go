// Package valuation computes stock account values and refreshes them from market data.
package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// Value computes price * shares * rate rounded to currency precision.
// Rounding happens here, before any comparison, so float noise upstream
// never produces micro-delta ledger entries.
func Value(price decimal.Decimal, shares int64, rate decimal.Decimal) decimal.Decimal {
	return domain.RoundCurrency(price.Mul(decimal.NewFromInt(shares)).Mul(rate))
}

// Revalue moves account to newValue and returns the ledger entry for the change.
// It returns nil and leaves the account untouched when the rounded value is unchanged.
func Revalue(account *domain.Account, newValue decimal.Decimal, reason domain.Reason, note string, now time.Time) *domain.Transaction {
	newValue = domain.RoundCurrency(newValue)
	if newValue.Equal(account.MarketValue) {
		return nil
	}

	previous := account.MarketValue
	account.MarketValue = newValue
	account.UpdatedAt = now
	return domain.NewTransaction(account, previous, reason, note, now)
}

// Quote fetches a fresh price and exchange rate and values shares of symbol
func Quote(ctx context.Context, md domain.MarketData, symbol string, shares int64) (decimal.Decimal, error) {
	rate, err := md.ExchangeRate(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	price, err := md.StockPrice(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return Value(price, shares, rate), nil
}

// stockPosition returns the symbol and shares of a stock account
func stockPosition(account *domain.Account) (string, int64, error) {
	if !account.IsStock() || account.StockSymbol == nil || account.Shares == nil {
		return "", 0, fmt.Errorf("account %s is not a valuable stock account", account.ID)
	}
	return *account.StockSymbol, *account.Shares, nil
}
