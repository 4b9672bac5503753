package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account persistence operations
type AccountRepository interface {
	// GetByID retrieves an account by its ID
	// Returns an error wrapping ErrNotFound if it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetForUpdate retrieves an account and locks it until the surrounding
	// transaction ends. Only meaningful inside UnitOfWork.WithinTx.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)

	// ListByOwner retrieves every account owned by userID, oldest first
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]*Account, error)

	// ListStock retrieves stock accounts, scoped to ownerID when it is not nil
	ListStock(ctx context.Context, ownerID *uuid.UUID) ([]*Account, error)

	Create(ctx context.Context, account *Account) error

	// Update persists shares, market value and updated_at
	Update(ctx context.Context, account *Account) error

	Delete(ctx context.Context, id uuid.UUID) error

	// SumAll returns the total market value of every account of every user
	SumAll(ctx context.Context) (decimal.Decimal, error)

	// SumByType returns the owner's market value grouped by account type
	SumByType(ctx context.Context, ownerID uuid.UUID) (map[AccountType]decimal.Decimal, error)
}

// TransactionRepository defines the interface for ledger persistence operations.
// The ledger is append-only: there is no update or delete.
type TransactionRepository interface {
	// Append stores a new ledger entry
	Append(ctx context.Context, tx *Transaction) error

	// ListByUser retrieves the user's entries with from <= timestamp < to, newest first
	ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*LedgerLine, error)

	// ListByAccount retrieves every entry of an account, oldest first
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Transaction, error)
}

// SnapshotRepository defines the interface for monthly snapshot persistence operations
type SnapshotRepository interface {
	// Upsert stores the snapshot, replacing any existing row for the same month
	Upsert(ctx context.Context, snapshot *MonthlySnapshot) error

	// List retrieves every snapshot ordered by month ascending
	List(ctx context.Context) ([]*MonthlySnapshot, error)
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	// Create stores a new user; a taken username returns an error wrapping ErrConflict
	Create(ctx context.Context, user *User) error

	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	GetByUsername(ctx context.Context, username string) (*User, error)
}

// Repositories groups the repositories that share one storage session
type Repositories interface {
	Accounts() AccountRepository
	Transactions() TransactionRepository
	Snapshots() SnapshotRepository
	Users() UserRepository
}

// UnitOfWork is the transaction boundary of the core.
// The embedded Repositories read outside any transaction.
type UnitOfWork interface {
	Repositories

	// WithinTx runs fn in a single storage transaction. A nil return commits;
	// an error or panic rolls back everything fn wrote.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
