package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// MarketData fetches quotes from external services. Implementations return
// errors wrapping ErrMarketDataUnavailable when a value cannot be obtained.
type MarketData interface {
	// StockPrice returns the latest price of symbol in the base currency
	StockPrice(ctx context.Context, symbol string) (decimal.Decimal, error)

	// ExchangeRate returns the base-to-local currency conversion rate
	ExchangeRate(ctx context.Context) (decimal.Decimal, error)
}

// LedgerPublisher notifies downstream consumers about committed ledger entries
type LedgerPublisher interface {
	PublishLedgerEntries(ctx context.Context, entries []*Transaction) error
}

// NopPublisher drops every entry
type NopPublisher struct{}

// PublishLedgerEntries implements LedgerPublisher
func (NopPublisher) PublishLedgerEntries(context.Context, []*Transaction) error { return nil }
