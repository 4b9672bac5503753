package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// snapshotRepository implements domain.SnapshotRepository
type snapshotRepository struct {
	q querier
}

// NewSnapshotRepository creates a new snapshot repository outside any transaction
func NewSnapshotRepository(db *DB) domain.SnapshotRepository {
	return &snapshotRepository{q: db}
}

// Upsert stores the snapshot; an existing row for the month keeps its id and
// created_at and takes the new total
func (r *snapshotRepository) Upsert(ctx context.Context, snapshot *domain.MonthlySnapshot) error {
	query := `
		INSERT INTO monthly_snapshots (id, month, total_market_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (month) DO UPDATE
		SET total_market_value = EXCLUDED.total_market_value, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	snapshot.Month = domain.FirstOfMonth(snapshot.Month)
	err := r.q.QueryRowContext(ctx, query,
		snapshot.ID,
		snapshot.Month,
		snapshot.TotalMarketValue.StringFixed(domain.CurrencyPlaces),
		snapshot.CreatedAt,
		snapshot.UpdatedAt,
	).Scan(&snapshot.ID, &snapshot.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert monthly snapshot: %w", err)
	}
	return nil
}

// List retrieves every snapshot, oldest month first
func (r *snapshotRepository) List(ctx context.Context) ([]*domain.MonthlySnapshot, error) {
	query := `
		SELECT id, month, total_market_value, created_at, updated_at
		FROM monthly_snapshots
		ORDER BY month
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]*domain.MonthlySnapshot, 0)
	for rows.Next() {
		var snap domain.MonthlySnapshot
		var totalStr string
		if err := rows.Scan(&snap.ID, &snap.Month, &totalStr, &snap.CreatedAt, &snap.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan monthly snapshot: %w", err)
		}

		// Parse total_market_value (NUMERIC)
		total, err := decimal.NewFromString(totalStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse total_market_value: %w", err)
		}
		snap.TotalMarketValue = total
		snap.Month = snap.Month.UTC()
		snapshots = append(snapshots, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly snapshots: %w", err)
	}
	return snapshots, nil
}
