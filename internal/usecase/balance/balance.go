// Package balance holds the locked read-modify-write step shared by the
// operations that move money in, out of, or between accounts.
package balance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// LockOwned locks the account for the rest of the transaction.
// Accounts owned by someone else are reported as ErrNotFound.
func LockOwned(ctx context.Context, repos domain.Repositories, id, callerUserID uuid.UUID) (*domain.Account, error) {
	account, err := repos.Accounts().GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if !account.OwnedBy(callerUserID) {
		return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	return account, nil
}

// Apply adds delta to a locked account, saves it and appends the ledger entry.
// A result below zero returns ErrInsufficientFunds and writes nothing.
func Apply(ctx context.Context, repos domain.Repositories, account *domain.Account, delta decimal.Decimal, reason domain.Reason, note string, now time.Time) (*domain.Transaction, error) {
	previous := account.MarketValue
	next := previous.Add(delta)
	if next.IsNegative() {
		return nil, fmt.Errorf("account %s holds %s: %w", account.ID, previous.StringFixed(domain.CurrencyPlaces), domain.ErrInsufficientFunds)
	}

	account.MarketValue = next
	account.UpdatedAt = now
	entry := domain.NewTransaction(account, previous, reason, note, now)

	if err := repos.Accounts().Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	if err := repos.Transactions().Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
