package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/log"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/balance"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/notify"
)

// TransferInput represents the input for moving money between two accounts
type TransferInput struct {
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	CallerUserID  uuid.UUID
}

// TransferService moves value between two accounts of the same user
type TransferService struct {
	UnitOfWork domain.UnitOfWork
	Publisher  domain.LedgerPublisher
	Logger     *log.Logger
	Now        func() time.Time
}

// NewTransferService creates a new TransferService instance
func NewTransferService(uow domain.UnitOfWork, publisher domain.LedgerPublisher, logger *log.Logger) *TransferService {
	if publisher == nil {
		publisher = domain.NopPublisher{}
	}
	return &TransferService{
		UnitOfWork: uow,
		Publisher:  publisher,
		Logger:     logger.WithComponent("transfer"),
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// Transfer debits one account and credits another
// Logic:
//  1. Validate amount and distinct accounts
//  2. Lock both accounts in id order so opposite transfers cannot deadlock
//  3. Check funds on the locked pre-update balance
//  4. Write transfer-out and transfer-in entries; their changes sum to zero
//
// Returns the two entries, source first.
func (s *TransferService) Transfer(ctx context.Context, input TransferInput) ([]*domain.Transaction, error) {
	// 1. Validate
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.Validationf("cannot transfer to the same account")
	}

	now := s.Now()
	var out, in *domain.Transaction
	err := s.UnitOfWork.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		// 2. Lock in deterministic order
		first, second := input.FromAccountID, input.ToAccountID
		if second.String() < first.String() {
			first, second = second, first
		}
		locked := make(map[uuid.UUID]*domain.Account, 2)
		for _, id := range []uuid.UUID{first, second} {
			account, err := balance.LockOwned(ctx, repos, id, input.CallerUserID)
			if err != nil {
				return err
			}
			locked[id] = account
		}

		// 3 + 4. Debit fails with ErrInsufficientFunds before anything is written
		var err error
		out, err = balance.Apply(ctx, repos, locked[input.FromAccountID], input.Amount.Neg(), domain.ReasonTransferOut, "", now)
		if err != nil {
			return err
		}
		in, err = balance.Apply(ctx, repos, locked[input.ToAccountID], input.Amount, domain.ReasonTransferIn, "", now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "Transfer complete",
		"from", input.FromAccountID,
		"to", input.ToAccountID,
		"amount", input.Amount.StringFixed(domain.CurrencyPlaces))
	notify.Publish(ctx, s.Publisher, s.Logger, out, in)
	return []*domain.Transaction{out, in}, nil
}
