// Package account implements the account lifecycle: create, read, edit and delete.
package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/log"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/balance"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/notify"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/valuation"
)

// CreateAccountInput represents the input for creating an account
type CreateAccountInput struct {
	Type        domain.AccountType
	Details     string
	StockSymbol *string
	Shares      *int64
	MarketValue *decimal.Decimal // ignored for stock accounts, defaults to 0 otherwise
	OwnerUserID uuid.UUID
}

// UpdateAccountInput represents a direct edit of shares or market value
type UpdateAccountInput struct {
	ID           uuid.UUID
	Shares       *int64           // stock accounts only
	MarketValue  *decimal.Decimal // non-stock accounts only
	CallerUserID uuid.UUID
}

// AccountService handles account lifecycle operations
type AccountService struct {
	UnitOfWork domain.UnitOfWork
	MarketData domain.MarketData
	Publisher  domain.LedgerPublisher
	Logger     *log.Logger
	Now        func() time.Time
}

// NewAccountService creates a new AccountService instance
func NewAccountService(uow domain.UnitOfWork, marketData domain.MarketData, publisher domain.LedgerPublisher, logger *log.Logger) *AccountService {
	if publisher == nil {
		publisher = domain.NopPublisher{}
	}
	return &AccountService{
		UnitOfWork: uow,
		MarketData: marketData,
		Publisher:  publisher,
		Logger:     logger.WithComponent("account"),
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a new account and ledgers its initial value
// Logic:
//  1. Build and validate the account
//  2. Stock accounts are valued from a fresh quote; other types use the supplied value
//  3. Insert the account and its creation entry in one transaction
func (s *AccountService) Create(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if input.OwnerUserID == uuid.Nil {
		return nil, domain.Validationf("owner is required")
	}

	now := s.Now()
	account := &domain.Account{
		ID:          uuid.New(),
		Type:        domain.AccountType(strings.TrimSpace(string(input.Type))),
		Details:     strings.TrimSpace(input.Details),
		OwnerUserID: input.OwnerUserID,
		MarketValue: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if account.IsStock() {
		if input.StockSymbol != nil {
			symbol := strings.ToUpper(strings.TrimSpace(*input.StockSymbol))
			account.StockSymbol = &symbol
		}
		if input.Shares != nil {
			shares := *input.Shares
			account.Shares = &shares
		}
	} else {
		if input.StockSymbol != nil || input.Shares != nil {
			return nil, domain.Validationf("only stock accounts may carry a stock symbol or shares")
		}
		if input.MarketValue != nil {
			account.MarketValue = *input.MarketValue
		}
	}

	// 1. Validate before any network call
	if err := account.Validate(); err != nil {
		return nil, err
	}

	// 2. Initial value
	if account.IsStock() {
		value, err := valuation.Quote(ctx, s.MarketData, *account.StockSymbol, *account.Shares)
		if err != nil {
			return nil, fmt.Errorf("failed to value stock account: %w", err)
		}
		account.MarketValue = value
	}

	// 3. Insert with creation entry
	entry := domain.NewTransaction(account, decimal.Zero, domain.ReasonCreation, "", now)
	err := s.UnitOfWork.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if err := repos.Accounts().Create(ctx, account); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		return repos.Transactions().Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "Account created", "account_id", account.ID, "type", account.Type)
	notify.Publish(ctx, s.Publisher, s.Logger, entry)
	return account, nil
}

// Get returns the account when callerUserID owns it.
// Unknown ids and other users' accounts both return ErrNotFound.
func (s *AccountService) Get(ctx context.Context, id, callerUserID uuid.UUID) (*domain.Account, error) {
	account, err := s.UnitOfWork.Accounts().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !account.OwnedBy(callerUserID) {
		return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	return account, nil
}

// List returns the caller's accounts, oldest first
func (s *AccountService) List(ctx context.Context, callerUserID uuid.UUID) ([]*domain.Account, error) {
	return s.UnitOfWork.Accounts().ListByOwner(ctx, callerUserID)
}

// Update edits shares (stock) or market value (other types). Both are optional:
// a stock account without shares is requoted at its current count, any other
// account without a market value keeps it.
// Logic:
//  1. Check the input matches the account kind
//  2. Stock accounts: quote with the resulting share count before locking
//  3. In one transaction: lock, persist the edit, ledger an update entry if the value moved
func (s *AccountService) Update(ctx context.Context, input UpdateAccountInput) (*domain.Account, error) {
	current, err := s.Get(ctx, input.ID, input.CallerUserID)
	if err != nil {
		return nil, err
	}

	// 1. Field/kind combination
	if current.IsStock() {
		if input.MarketValue != nil {
			return nil, domain.Validationf("market value of a stock account is computed, edit shares instead")
		}
		if input.Shares != nil && *input.Shares < 0 {
			return nil, domain.Validationf("shares cannot be negative")
		}
	} else {
		if input.Shares != nil {
			return nil, domain.Validationf("only stock accounts have shares")
		}
		if input.MarketValue != nil {
			if err := domain.ValidateBalance(*input.MarketValue); err != nil {
				return nil, err
			}
		}
	}

	// 2. Fresh valuation
	var newValue *decimal.Decimal
	shares := current.Shares
	if input.Shares != nil {
		shares = input.Shares
	}
	if current.IsStock() {
		quoted, err := valuation.Quote(ctx, s.MarketData, *current.StockSymbol, *shares)
		if err != nil {
			return nil, fmt.Errorf("failed to value stock account: %w", err)
		}
		newValue = &quoted
	} else {
		newValue = input.MarketValue
	}

	// 3. Apply
	now := s.Now()
	var updated *domain.Account
	var entry *domain.Transaction
	err = s.UnitOfWork.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		locked, err := balance.LockOwned(ctx, repos, input.ID, input.CallerUserID)
		if err != nil {
			return err
		}
		if locked.IsStock() {
			count := *shares
			locked.Shares = &count
		}
		target := locked.MarketValue
		if newValue != nil {
			target = *newValue
		}
		locked.UpdatedAt = now
		entry = valuation.Revalue(locked, target, domain.ReasonUpdate, "", now)

		if err := repos.Accounts().Update(ctx, locked); err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		if entry != nil {
			if err := repos.Transactions().Append(ctx, entry); err != nil {
				return err
			}
		}
		updated = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if entry != nil {
		notify.Publish(ctx, s.Publisher, s.Logger, entry)
	}
	return updated, nil
}

// Delete ledgers the balance going to zero, then removes the account.
// The deletion entry outlives the account.
func (s *AccountService) Delete(ctx context.Context, id, callerUserID uuid.UUID) error {
	now := s.Now()
	var entry *domain.Transaction
	err := s.UnitOfWork.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		locked, err := balance.LockOwned(ctx, repos, id, callerUserID)
		if err != nil {
			return err
		}

		previous := locked.MarketValue
		locked.MarketValue = decimal.Zero
		entry = domain.NewTransaction(locked, previous, domain.ReasonDeletion, "", now)

		if err := repos.Transactions().Append(ctx, entry); err != nil {
			return err
		}
		if err := repos.Accounts().Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Logger.InfoContext(ctx, "Account deleted", "account_id", id, "previous_balance", entry.PreviousBalance)
	notify.Publish(ctx, s.Publisher, s.Logger, entry)
	return nil
}
