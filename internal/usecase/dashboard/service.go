package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// NetWorthResult represents the caller's net worth split by account kind
type NetWorthResult struct {
	Total  decimal.Decimal
	Cash   decimal.Decimal // CashAccount
	Stocks decimal.Decimal // StockAccount
	Other  decimal.Decimal // every other account type
}

// DashboardService handles read-only dashboard queries
type DashboardService struct {
	AccountRepo     domain.AccountRepository
	TransactionRepo domain.TransactionRepository
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(accountRepo domain.AccountRepository, transactionRepo domain.TransactionRepository) *DashboardService {
	return &DashboardService{
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
	}
}

// ListTransactions returns the caller's ledger entries with start <= timestamp < end,
// newest first. Entries of deleted accounts carry domain.DeletedAccountLabel.
func (s *DashboardService) ListTransactions(ctx context.Context, callerUserID uuid.UUID, start, end time.Time) ([]*domain.LedgerLine, error) {
	if end.Before(start) {
		return nil, domain.Validationf("start date must not be after end date")
	}
	lines, err := s.TransactionRepo.ListByUser(ctx, callerUserID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return lines, nil
}

// GetTypeTotals sums the caller's market value per account type
func (s *DashboardService) GetTypeTotals(ctx context.Context, callerUserID uuid.UUID) (map[domain.AccountType]decimal.Decimal, error) {
	totals, err := s.AccountRepo.SumByType(ctx, callerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum accounts by type: %w", err)
	}
	return totals, nil
}

// GetNetWorth calculates the caller's total net worth
// Logic:
//   - Cash: sum of CashAccount values
//   - Stocks: sum of StockAccount values (as of the last refresh)
//   - Other: every remaining type
//   - Total: Cash + Stocks + Other
func (s *DashboardService) GetNetWorth(ctx context.Context, callerUserID uuid.UUID) (*NetWorthResult, error) {
	totals, err := s.GetTypeTotals(ctx, callerUserID)
	if err != nil {
		return nil, err
	}

	result := &NetWorthResult{Total: decimal.Zero, Cash: decimal.Zero, Stocks: decimal.Zero, Other: decimal.Zero}
	for accountType, sum := range totals {
		switch accountType {
		case domain.AccountTypeCash:
			result.Cash = result.Cash.Add(sum)
		case domain.AccountTypeStock:
			result.Stocks = result.Stocks.Add(sum)
		default:
			result.Other = result.Other.Add(sum)
		}
		result.Total = result.Total.Add(sum)
	}
	return result, nil
}
