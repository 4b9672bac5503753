package marketdata

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

const exchangeRateKey = "\x00rate"

// Coalescing shares one upstream request among concurrent identical calls,
// e.g. several accounts being created for the same symbol at once.
// Nothing is cached once the request returns.
//
// The shared request does not inherit any caller's cancellation; it is bounded
// by the wrapped client's own timeout. Each caller stops waiting when its own
// context ends.
type Coalescing struct {
	next  domain.MarketData
	group singleflight.Group
}

// NewCoalescing wraps next
func NewCoalescing(next domain.MarketData) *Coalescing {
	return &Coalescing{next: next}
}

// StockPrice implements domain.MarketData
func (c *Coalescing) StockPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	return c.do(ctx, key, func(ctx context.Context) (decimal.Decimal, error) {
		return c.next.StockPrice(ctx, key)
	})
}

// ExchangeRate implements domain.MarketData
func (c *Coalescing) ExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	return c.do(ctx, exchangeRateKey, c.next.ExchangeRate)
}

func (c *Coalescing) do(ctx context.Context, key string, fetch func(context.Context) (decimal.Decimal, error)) (decimal.Decimal, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return fetch(shared)
	})

	select {
	case <-ctx.Done():
		return decimal.Zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return decimal.Zero, res.Err
		}
		return res.Val.(decimal.Decimal), nil
	}
}
