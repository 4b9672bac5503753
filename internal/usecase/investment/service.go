package investment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// AccountReader is the part of domain.AccountRepository the service needs
type AccountReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

// LedgerReader is the part of domain.TransactionRepository the service needs
type LedgerReader interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error)
}

// ProfitResult splits an account's value into what was put in and what the market added
type ProfitResult struct {
	MarketValue decimal.Decimal
	BookValue   decimal.Decimal
	Profit      decimal.Decimal
}

// InvestmentService handles investment-related read operations
type InvestmentService struct {
	AccountRepo     AccountReader
	TransactionRepo LedgerReader
}

// NewInvestmentService creates a new InvestmentService instance
func NewInvestmentService(accountRepo AccountReader, transactionRepo LedgerReader) *InvestmentService {
	return &InvestmentService{
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
	}
}

// CalculateProfit calculates the profit/loss of an account from its ledger
// Logic: Profit = sum of daily-refresh and manual-refresh changes
// MarketValue = account.market_value
// BookValue = MarketValue - Profit (creation, edits, transfers, income, expense)
func (s *InvestmentService) CalculateProfit(ctx context.Context, accountID, callerUserID uuid.UUID) (*ProfitResult, error) {
	account, err := s.AccountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.OwnedBy(callerUserID) {
		return nil, fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
	}

	entries, err := s.TransactionRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to read account ledger: %w", err)
	}

	profit := decimal.Zero
	for _, entry := range entries {
		if entry.Reason == domain.ReasonDailyRefresh || entry.Reason == domain.ReasonManualRefresh {
			profit = profit.Add(entry.Change)
		}
	}

	return &ProfitResult{
		MarketValue: account.MarketValue,
		BookValue:   account.MarketValue.Sub(profit),
		Profit:      profit,
	}, nil
}
