package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository.
// The ledger table has no UPDATE or DELETE path.
type transactionRepository struct {
	q querier
}

// NewTransactionRepository creates a new transaction repository outside any transaction
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{q: db}
}

// Append stores a new ledger entry
func (r *transactionRepository) Append(ctx context.Context, tx *domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	query := `
		INSERT INTO transactions (id, account_id, user_id, change, previous_balance, new_balance, reason, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		tx.ID,
		tx.AccountID,
		tx.UserID,
		tx.Change.StringFixed(domain.CurrencyPlaces),
		tx.PreviousBalance.StringFixed(domain.CurrencyPlaces),
		tx.NewBalance.StringFixed(domain.CurrencyPlaces),
		string(tx.Reason),
		tx.Note,
		tx.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// ListByUser retrieves the user's entries in [from, to), newest first.
// Entries whose account is gone are labelled domain.DeletedAccountLabel.
func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.LedgerLine, error) {
	query := `
		SELECT t.id, t.account_id, COALESCE(a.details, $4), t.change, t.previous_balance, t.new_balance,
		       t.reason, t.note, t.created_at
		FROM transactions t
		LEFT JOIN accounts a ON a.id = t.account_id
		WHERE t.user_id = $1 AND t.created_at >= $2 AND t.created_at < $3
		ORDER BY t.created_at DESC, t.seq DESC
	`

	rows, err := r.q.QueryContext(ctx, query, userID, from, to, domain.DeletedAccountLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	lines := make([]*domain.LedgerLine, 0)
	for rows.Next() {
		var line domain.LedgerLine
		var reason string
		var amounts [3]string
		if err := rows.Scan(
			&line.TransactionID,
			&line.AccountID,
			&line.AccountDetails,
			&amounts[0],
			&amounts[1],
			&amounts[2],
			&reason,
			&line.Note,
			&line.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		line.Reason = domain.Reason(reason)
		if line.Change, line.PreviousBalance, line.NewBalance, err = parseAmounts(amounts); err != nil {
			return nil, err
		}
		lines = append(lines, &line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return lines, nil
}

// ListByAccount retrieves every entry of an account, oldest first
func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT id, account_id, user_id, change, previous_balance, new_balance, reason, note, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY seq
	`

	rows, err := r.q.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account transactions: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.Transaction, 0)
	for rows.Next() {
		var tx domain.Transaction
		var reason string
		var amounts [3]string
		if err := rows.Scan(
			&tx.ID,
			&tx.AccountID,
			&tx.UserID,
			&amounts[0],
			&amounts[1],
			&amounts[2],
			&reason,
			&tx.Note,
			&tx.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Reason = domain.Reason(reason)
		if tx.Change, tx.PreviousBalance, tx.NewBalance, err = parseAmounts(amounts); err != nil {
			return nil, err
		}
		entries = append(entries, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return entries, nil
}

// parseAmounts parses change, previous_balance and new_balance (NUMERIC)
func parseAmounts(raw [3]string) (change, previous, next decimal.Decimal, err error) {
	var parsed [3]decimal.Decimal
	for i, s := range raw {
		if parsed[i], err = decimal.NewFromString(s); err != nil {
			return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("failed to parse amount %q: %w", s, err)
		}
	}
	return parsed[0], parsed[1], parsed[2], nil
}
