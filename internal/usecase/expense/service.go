package expense

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/log"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/balance"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/notify"
)

const maxReasonLength = 255

// RecordExpenseInput represents the input for recording an expense
type RecordExpenseInput struct {
	AccountID    uuid.UUID
	Amount       decimal.Decimal
	Reason       string
	CallerUserID uuid.UUID
}

// ExpenseService records money leaving the tracked system
type ExpenseService struct {
	UnitOfWork domain.UnitOfWork
	Publisher  domain.LedgerPublisher
	Logger     *log.Logger
	Now        func() time.Time
}

// NewExpenseService creates a new ExpenseService instance
func NewExpenseService(uow domain.UnitOfWork, publisher domain.LedgerPublisher, logger *log.Logger) *ExpenseService {
	if publisher == nil {
		publisher = domain.NopPublisher{}
	}
	return &ExpenseService{
		UnitOfWork: uow,
		Publisher:  publisher,
		Logger:     logger.WithComponent("expense"),
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// RecordExpense subtracts amount from the account
// Logic:
//  1. Validate amount and reason
//  2. Lock the caller's account; amount > balance fails with ErrInsufficientFunds
//     and leaves both balance and ledger untouched
//  3. Write one expense entry and publish after commit
func (s *ExpenseService) RecordExpense(ctx context.Context, input RecordExpenseInput) (*domain.Transaction, error) {
	// 1. Validate
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	note := strings.TrimSpace(input.Reason)
	if len([]rune(note)) > maxReasonLength {
		return nil, domain.Validationf("reason must be at most %d characters", maxReasonLength)
	}

	// 2 + 3. Debit
	now := s.Now()
	var entry *domain.Transaction
	err := s.UnitOfWork.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		account, err := balance.LockOwned(ctx, repos, input.AccountID, input.CallerUserID)
		if err != nil {
			return err
		}
		entry, err = balance.Apply(ctx, repos, account, input.Amount.Neg(), domain.ReasonExpense, note, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	notify.Publish(ctx, s.Publisher, s.Logger, entry)
	return entry, nil
}
