package valuation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/log"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/notify"
)

const defaultConcurrency = 4

// RefreshScope selects the stock accounts of one refresh pass.
// A nil UserID means every user.
type RefreshScope struct {
	UserID *uuid.UUID
}

// AllUsers scopes a refresh to every stock account in the system
func AllUsers() RefreshScope {
	return RefreshScope{}
}

// ForUser scopes a refresh to the stock accounts owned by userID
func ForUser(userID uuid.UUID) RefreshScope {
	return RefreshScope{UserID: &userID}
}

// RefreshResult summarizes one refresh pass
type RefreshResult struct {
	Scanned int // stock accounts in scope
	Updated int // accounts whose value changed
	Skipped int // accounts without a price or deleted mid-pass
	Entries []*domain.Transaction
}

// RefreshService revalues stock accounts from market data
type RefreshService struct {
	UnitOfWork  domain.UnitOfWork
	MarketData  domain.MarketData
	Publisher   domain.LedgerPublisher
	Logger      *log.Logger
	Concurrency int
	Now         func() time.Time
}

// NewRefreshService creates a new RefreshService instance
func NewRefreshService(
	uow domain.UnitOfWork,
	marketData domain.MarketData,
	publisher domain.LedgerPublisher,
	logger *log.Logger,
	concurrency int,
) *RefreshService {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	if publisher == nil {
		publisher = domain.NopPublisher{}
	}
	return &RefreshService{
		UnitOfWork:  uow,
		MarketData:  marketData,
		Publisher:   publisher,
		Logger:      logger.WithComponent("refresh"),
		Concurrency: concurrency,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

// RefreshDaily is the scheduled pass over every user's stock accounts
func (s *RefreshService) RefreshDaily(ctx context.Context) (*RefreshResult, error) {
	return s.RefreshAccounts(ctx, AllUsers(), domain.ReasonDailyRefresh)
}

// RefreshAll is the administrative on-demand pass over every user's stock accounts
func (s *RefreshService) RefreshAll(ctx context.Context) (*RefreshResult, error) {
	return s.RefreshAccounts(ctx, AllUsers(), domain.ReasonManualRefresh)
}

// RefreshUser is the per-user on-demand pass over the caller's own stock accounts
func (s *RefreshService) RefreshUser(ctx context.Context, userID uuid.UUID) (*RefreshResult, error) {
	return s.RefreshAccounts(ctx, ForUser(userID), domain.ReasonManualRefresh)
}

// RefreshAccounts revalues every stock account in scope
// Logic:
//  1. List stock accounts in scope (nothing to do returns without any fetch)
//  2. Fetch the exchange rate once for the whole pass; failure aborts the pass
//  3. Fetch each distinct symbol once, concurrently; failed symbols are skipped
//  4. Apply every changed value and its ledger entry in one transaction,
//     re-reading each account under lock
//  5. Publish the committed entries
func (s *RefreshService) RefreshAccounts(ctx context.Context, scope RefreshScope, reason domain.Reason) (*RefreshResult, error) {
	if reason != domain.ReasonDailyRefresh && reason != domain.ReasonManualRefresh {
		return nil, domain.Validationf("refresh reason must be %s or %s", domain.ReasonDailyRefresh, domain.ReasonManualRefresh)
	}

	// 1. List stock accounts
	accounts, err := s.UnitOfWork.Accounts().ListStock(ctx, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock accounts: %w", err)
	}
	result := &RefreshResult{Scanned: len(accounts)}
	if len(accounts) == 0 {
		return result, nil
	}

	// 2. One exchange rate for the whole pass
	rate, err := s.MarketData.ExchangeRate(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh aborted: %w", err)
	}

	// 3. Prices per symbol
	prices := s.fetchPrices(ctx, accounts)

	// 4. Apply in one transaction
	now := s.Now()
	var entries []*domain.Transaction
	skipped := 0
	err = s.UnitOfWork.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		entries = entries[:0]
		skipped = 0
		for _, account := range accounts {
			price, ok := prices[symbolKey(account)]
			if !ok {
				skipped++
				continue
			}

			locked, err := repos.Accounts().GetForUpdate(ctx, account.ID)
			if errors.Is(err, domain.ErrNotFound) {
				// deleted since it was listed
				skipped++
				continue
			}
			if err != nil {
				return err
			}
			_, shares, err := stockPosition(locked)
			if err != nil {
				skipped++
				continue
			}

			entry := Revalue(locked, Value(price, shares, rate), reason, "", now)
			if entry == nil {
				continue
			}
			if err := repos.Accounts().Update(ctx, locked); err != nil {
				return err
			}
			if err := repos.Transactions().Append(ctx, entry); err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply refresh: %w", err)
	}

	result.Updated = len(entries)
	result.Skipped = skipped
	result.Entries = entries

	s.Logger.InfoContext(ctx, "Refresh pass complete",
		"reason", reason,
		"scanned", result.Scanned,
		"updated", result.Updated,
		"skipped", result.Skipped)

	// 5. Publish
	notify.Publish(ctx, s.Publisher, s.Logger, entries...)

	return result, nil
}

// fetchPrices fetches the price of every distinct symbol among accounts.
// Symbols that fail are logged and left out of the returned map.
func (s *RefreshService) fetchPrices(ctx context.Context, accounts []*domain.Account) map[string]decimal.Decimal {
	symbols := make([]string, 0)
	seen := make(map[string]bool)
	for _, account := range accounts {
		key := symbolKey(account)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		symbols = append(symbols, key)
	}

	results := make([]*decimal.Decimal, len(symbols))
	var g errgroup.Group
	g.SetLimit(s.Concurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			price, err := s.MarketData.StockPrice(ctx, symbol)
			if err != nil {
				s.Logger.WarnContext(ctx, "Skipping symbol, price unavailable", "symbol", symbol, "error", err)
				return nil
			}
			results[i] = &price
			return nil
		})
	}
	_ = g.Wait() // workers never fail the group

	prices := make(map[string]decimal.Decimal, len(symbols))
	for i, symbol := range symbols {
		if results[i] != nil {
			prices[symbol] = *results[i]
		}
	}
	return prices
}

func symbolKey(account *domain.Account) string {
	if account.StockSymbol == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(*account.StockSymbol))
}
