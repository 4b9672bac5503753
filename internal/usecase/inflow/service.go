package inflow

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

// RecordIncomeInput represents the input for recording income
type RecordIncomeInput struct {
	AccountID    uuid.UUID
	Amount       decimal.Decimal
	Reason       string // free text, e.g. "salary"
	CallerUserID uuid.UUID
}

// InflowService records money entering the tracked system
type InflowService struct {
	UnitOfWork domain.UnitOfWork
	Publisher  domain.LedgerPublisher
	Logger     *log.Logger
	Now        func() time.Time
}

// NewInflowService creates a new InflowService instance
func NewInflowService(uow domain.UnitOfWork, publisher domain.LedgerPublisher, logger *log.Logger) *InflowService {
	if publisher == nil {
		publisher = domain.NopPublisher{}
	}
	return &InflowService{
		UnitOfWork: uow,
		Publisher:  publisher,
		Logger:     logger.WithComponent("inflow"),
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// RecordIncome adds amount to the account and ledgers it as income
// Logic:
//  1. Validate amount (> 0, cents) and reason length
//  2. Lock the caller's account and credit it with one income entry
//  3. Publish after commit
func (s *InflowService) RecordIncome(ctx context.Context, input RecordIncomeInput) (*domain.Transaction, error) {
	// 1. Validate
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	note := strings.TrimSpace(input.Reason)
	if len([]rune(note)) > maxReasonLength {
		return nil, domain.Validationf("reason must be at most %d characters", maxReasonLength)
	}

	// 2. Credit
	now := s.Now()
	var entry *domain.Transaction
	err := s.UnitOfWork.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		account, err := balance.LockOwned(ctx, repos, input.AccountID, input.CallerUserID)
		if err != nil {
			return err
		}
		entry, err = balance.Apply(ctx, repos, account, input.Amount, domain.ReasonIncome, note, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 3. Publish
	notify.Publish(ctx, s.Publisher, s.Logger, entry)
	return entry, nil
}
