package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

const accountColumns = `id, type, details, stock_symbol, shares, market_value, owner_user_id, created_at, updated_at`

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	q querier
}

// NewAccountRepository creates a new account repository outside any transaction
func NewAccountRepository(db *DB) domain.AccountRepository {
	return &accountRepository{q: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var account domain.Account
	var accountType string
	var symbol sql.NullString
	var shares sql.NullInt64
	var valueStr string

	err := row.Scan(
		&account.ID,
		&accountType,
		&account.Details,
		&symbol,
		&shares,
		&valueStr,
		&account.OwnerUserID,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	account.Type = domain.AccountType(accountType)

	if symbol.Valid {
		account.StockSymbol = &symbol.String
	}
	if shares.Valid {
		account.Shares = &shares.Int64
	}

	// Parse market_value (NUMERIC)
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse market_value: %w", err)
	}
	account.MarketValue = value

	return &account, nil
}

// GetByID retrieves an account by its ID
func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

// GetForUpdate retrieves an account and locks its row until the transaction ends
func (r *accountRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
}

func (r *accountRepository) get(ctx context.Context, query string, id uuid.UUID) (*domain.Account, error) {
	account, err := scanAccount(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}
	return account, nil
}

// ListByOwner retrieves the owner's accounts, oldest first
func (r *accountRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_user_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, userID)
}

// ListStock retrieves stock accounts, optionally of one owner
func (r *accountRepository) ListStock(ctx context.Context, ownerID *uuid.UUID) ([]*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE type = $1 AND ($2::uuid IS NULL OR owner_user_id = $2)
		ORDER BY created_at, id
	`
	var owner any
	if ownerID != nil {
		owner = *ownerID
	}
	return r.list(ctx, query, string(domain.AccountTypeStock), owner)
}

func (r *accountRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Account, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// Create creates a new account
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var symbol, shares any
	if account.StockSymbol != nil {
		symbol = *account.StockSymbol
	}
	if account.Shares != nil {
		shares = *account.Shares
	}

	_, err := r.q.ExecContext(ctx, query,
		account.ID,
		string(account.Type),
		account.Details,
		symbol,
		shares,
		account.MarketValue.StringFixed(domain.CurrencyPlaces),
		account.OwnerUserID,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %s: %w", account.ID, domain.ErrConflict)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// Update persists shares, market value and updated_at
func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET shares = $2, market_value = $3, updated_at = $4
		WHERE id = $1
	`

	var shares any
	if account.Shares != nil {
		shares = *account.Shares
	}

	result, err := r.q.ExecContext(ctx, query,
		account.ID,
		shares,
		account.MarketValue.StringFixed(domain.CurrencyPlaces),
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return expectOneRow(result, account.ID)
}

// Delete removes the account row; its ledger entries stay
func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return expectOneRow(result, id)
}

// SumAll returns the total market value of every account
func (r *accountRepository) SumAll(ctx context.Context) (decimal.Decimal, error) {
	var totalStr string
	err := r.q.QueryRowContext(ctx, `SELECT COALESCE(SUM(market_value), 0)::text FROM accounts`).Scan(&totalStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum accounts: %w", err)
	}
	return decimal.NewFromString(totalStr)
}

// SumByType returns the owner's market value grouped by type
func (r *accountRepository) SumByType(ctx context.Context, ownerID uuid.UUID) (map[domain.AccountType]decimal.Decimal, error) {
	query := `
		SELECT type, SUM(market_value)::text
		FROM accounts
		WHERE owner_user_id = $1
		GROUP BY type
	`

	rows, err := r.q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum accounts by type: %w", err)
	}
	defer rows.Close()

	totals := make(map[domain.AccountType]decimal.Decimal)
	for rows.Next() {
		var accountType, sumStr string
		if err := rows.Scan(&accountType, &sumStr); err != nil {
			return nil, fmt.Errorf("failed to scan type total: %w", err)
		}
		sum, err := decimal.NewFromString(sumStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse type total: %w", err)
		}
		totals[domain.AccountType(accountType)] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating type totals: %w", err)
	}
	return totals, nil
}

func expectOneRow(result sql.Result, id uuid.UUID) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
