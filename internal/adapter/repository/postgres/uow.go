package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// Store implements domain.UnitOfWork on Postgres
type Store struct {
	db *DB
}

// NewStore creates a new Postgres unit of work
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// repositories binds every repository to one querier
type repositories struct {
	q querier
}

func (r repositories) Accounts() domain.AccountRepository         { return &accountRepository{q: r.q} }
func (r repositories) Transactions() domain.TransactionRepository { return &transactionRepository{q: r.q} }
func (r repositories) Snapshots() domain.SnapshotRepository       { return &snapshotRepository{q: r.q} }
func (r repositories) Users() domain.UserRepository               { return &userRepository{q: r.q} }

func (s *Store) Accounts() domain.AccountRepository         { return NewAccountRepository(s.db) }
func (s *Store) Transactions() domain.TransactionRepository { return NewTransactionRepository(s.db) }
func (s *Store) Snapshots() domain.SnapshotRepository       { return NewSnapshotRepository(s.db) }
func (s *Store) Users() domain.UserRepository               { return NewUserRepository(s.db) }

// WithinTx runs fn in one database transaction.
// Row locks taken with GetForUpdate are held until it returns.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) (err error) {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = dbTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = dbTx.Rollback()
		}
	}()

	if err = fn(ctx, repositories{q: dbTx}); err != nil {
		return err
	}

	if err = dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
