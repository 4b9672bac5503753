// Package snapshot records the monthly total of every account of every user.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/log"
)

// SnapshotService handles monthly snapshot operations
type SnapshotService struct {
	UnitOfWork domain.UnitOfWork
	Logger     *log.Logger
	Now        func() time.Time
}

// NewSnapshotService creates a new SnapshotService instance
func NewSnapshotService(uow domain.UnitOfWork, logger *log.Logger) *SnapshotService {
	return &SnapshotService{
		UnitOfWork: uow,
		Logger:     logger.WithComponent("snapshot"),
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// SnapshotMonthlyTotal sums every account of every user into the row for the
// month of now. Running it again in the same month replaces that row's total.
func (s *SnapshotService) SnapshotMonthlyTotal(ctx context.Context, now time.Time) (*domain.MonthlySnapshot, error) {
	var snap *domain.MonthlySnapshot
	err := s.UnitOfWork.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		total, err := repos.Accounts().SumAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to sum accounts: %w", err)
		}
		snap, err = s.upsert(ctx, repos, now, total)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "Monthly snapshot recorded",
		"month", snap.Month.Format("2006-01"),
		"total", snap.TotalMarketValue.StringFixed(domain.CurrencyPlaces))
	return snap, nil
}

// RecordSnapshot stores a manually supplied total for month
func (s *SnapshotService) RecordSnapshot(ctx context.Context, month time.Time, total decimal.Decimal) (*domain.MonthlySnapshot, error) {
	if err := domain.ValidateBalance(total); err != nil {
		return nil, err
	}
	if month.IsZero() {
		return nil, domain.Validationf("month is required")
	}

	var snap *domain.MonthlySnapshot
	err := s.UnitOfWork.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) (err error) {
		snap, err = s.upsert(ctx, repos, month, total)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListSnapshots returns every snapshot, oldest month first
func (s *SnapshotService) ListSnapshots(ctx context.Context) ([]*domain.MonthlySnapshot, error) {
	snaps, err := s.UnitOfWork.Snapshots().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snaps, nil
}

func (s *SnapshotService) upsert(ctx context.Context, repos domain.Repositories, month time.Time, total decimal.Decimal) (*domain.MonthlySnapshot, error) {
	now := s.Now()
	snap := &domain.MonthlySnapshot{
		ID:               uuid.New(),
		Month:            domain.FirstOfMonth(month),
		TotalMarketValue: domain.RoundCurrency(total),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := repos.Snapshots().Upsert(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}
	return snap, nil
}
