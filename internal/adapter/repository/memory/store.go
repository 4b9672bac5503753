// Package memory is an in-process implementation of domain.UnitOfWork used for
// local development and tests.
//
// Transactions are serialized by a single mutex and work on a private copy of
// the state, which replaces the committed state only when the callback returns
// nil. That gives the same all-or-nothing behaviour as the Postgres adapter and
// makes GetForUpdate trivially safe.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

type state struct {
	accounts  map[uuid.UUID]domain.Account
	ledger    []domain.Transaction
	snapshots map[time.Time]domain.MonthlySnapshot
	users     map[uuid.UUID]domain.User
}

func newState() *state {
	return &state{
		accounts:  make(map[uuid.UUID]domain.Account),
		snapshots: make(map[time.Time]domain.MonthlySnapshot),
		users:     make(map[uuid.UUID]domain.User),
	}
}

func (s *state) clone() *state {
	c := &state{
		accounts:  make(map[uuid.UUID]domain.Account, len(s.accounts)),
		ledger:    make([]domain.Transaction, len(s.ledger)),
		snapshots: make(map[time.Time]domain.MonthlySnapshot, len(s.snapshots)),
		users:     make(map[uuid.UUID]domain.User, len(s.users)),
	}
	for k, v := range s.accounts {
		c.accounts[k] = cloneAccount(v)
	}
	copy(c.ledger, s.ledger)
	for k, v := range s.snapshots {
		c.snapshots[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

func cloneAccount(a domain.Account) domain.Account {
	if a.StockSymbol != nil {
		symbol := *a.StockSymbol
		a.StockSymbol = &symbol
	}
	if a.Shares != nil {
		shares := *a.Shares
		a.Shares = &shares
	}
	return a
}

// Store implements domain.UnitOfWork in memory
type Store struct {
	txMu      sync.Mutex   // serializes WithinTx
	mu        sync.RWMutex // guards committed
	committed *state
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{committed: newState()}
}

// WithinTx implements domain.UnitOfWork
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	s.mu.RLock()
	working := s.committed.clone()
	s.mu.RUnlock()

	// a panic or error simply drops the working copy
	if err := fn(ctx, &session{st: working}); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = working
	s.mu.Unlock()
	return nil
}

// Accounts implements domain.Repositories outside any transaction
func (s *Store) Accounts() domain.AccountRepository {
	return &readOnly{store: s}
}

// Transactions implements domain.Repositories outside any transaction
func (s *Store) Transactions() domain.TransactionRepository {
	return &readOnly{store: s}
}

// Snapshots implements domain.Repositories outside any transaction
func (s *Store) Snapshots() domain.SnapshotRepository {
	return &readOnly{store: s}
}

// Users implements domain.Repositories outside any transaction
func (s *Store) Users() domain.UserRepository {
	return &userReads{store: s}
}

// autoCommit runs a single write as its own transaction
func (s *Store) autoCommit(ctx context.Context, fn func(sess *session) error) error {
	return s.WithinTx(ctx, func(_ context.Context, repos domain.Repositories) error {
		return fn(repos.(*session))
	})
}

// view runs fn against the committed state under a read lock
func (s *Store) view(fn func(sess *session) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&session{st: s.committed})
}

// readOnly routes repository calls to the committed state. Writes are
// wrapped in their own transaction, like statements in autocommit mode.
type readOnly struct {
	store *Store
}

func (r *readOnly) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var out *domain.Account
	err := r.store.view(func(sess *session) (err error) {
		out, err = sess.GetByID(ctx, id)
		return err
	})
	return out, err
}

func (r *readOnly) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.GetByID(ctx, id)
}

func (r *readOnly) ListByOwner(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	var out []*domain.Account
	err := r.store.view(func(sess *session) (err error) {
		out, err = sess.ListByOwner(ctx, userID)
		return err
	})
	return out, err
}

func (r *readOnly) ListStock(ctx context.Context, ownerID *uuid.UUID) ([]*domain.Account, error) {
	var out []*domain.Account
	err := r.store.view(func(sess *session) (err error) {
		out, err = sess.ListStock(ctx, ownerID)
		return err
	})
	return out, err
}

func (r *readOnly) Create(ctx context.Context, account *domain.Account) error {
	return r.store.autoCommit(ctx, func(sess *session) error { return sess.Create(ctx, account) })
}

func (r *readOnly) Update(ctx context.Context, account *domain.Account) error {
	return r.store.autoCommit(ctx, func(sess *session) error { return sess.Update(ctx, account) })
}

func (r *readOnly) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.autoCommit(ctx, func(sess *session) error { return sess.Delete(ctx, id) })
}

func (r *readOnly) SumAll(ctx context.Context) (decimal.Decimal, error) {
	var out decimal.Decimal
	err := r.store.view(func(sess *session) (err error) {
		out, err = sess.SumAll(ctx)
		return err
	})
	return out, err
}

func (r *readOnly) SumByType(ctx context.Context, ownerID uuid.UUID) (map[domain.AccountType]decimal.Decimal, error) {
	var out map[domain.AccountType]decimal.Decimal
	err := r.store.view(func(sess *session) (err error) {
		out, err = sess.SumByType(ctx, ownerID)
		return err
	})
	return out, err
}

func (r *readOnly) Append(ctx context.Context, tx *domain.Transaction) error {
	return r.store.autoCommit(ctx, func(sess *session) error { return sess.Append(ctx, tx) })
}

func (r *readOnly) ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.LedgerLine, error) {
	var out []*domain.LedgerLine
	err := r.store.view(func(sess *session) (err error) {
		out, err = sess.ListByUser(ctx, userID, from, to)
		return err
	})
	return out, err
}

func (r *readOnly) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	err := r.store.view(func(sess *session) (err error) {
		out, err = sess.ListByAccount(ctx, accountID)
		return err
	})
	return out, err
}

func (r *readOnly) Upsert(ctx context.Context, snapshot *domain.MonthlySnapshot) error {
	return r.store.autoCommit(ctx, func(sess *session) error { return sess.Upsert(ctx, snapshot) })
}

func (r *readOnly) List(ctx context.Context) ([]*domain.MonthlySnapshot, error) {
	var out []*domain.MonthlySnapshot
	err := r.store.view(func(sess *session) (err error) {
		out, err = sess.List(ctx)
		return err
	})
	return out, err
}

// userReads is the UserRepository counterpart of readOnly
type userReads struct {
	store *Store
}

func (r *userReads) Create(ctx context.Context, user *domain.User) error {
	return r.store.autoCommit(ctx, func(sess *session) error { return sess.Users().Create(ctx, user) })
}

func (r *userReads) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var out *domain.User
	err := r.store.view(func(sess *session) (err error) {
		out, err = sess.Users().GetByID(ctx, id)
		return err
	})
	return out, err
}

func (r *userReads) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var out *domain.User
	err := r.store.view(func(sess *session) (err error) {
		out, err = sess.Users().GetByUsername(ctx, username)
		return err
	})
	return out, err
}

// session is a repository set bound to one working state
type session struct {
	st *state
}

func (s *session) Accounts() domain.AccountRepository         { return s }
func (s *session) Transactions() domain.TransactionRepository { return s }
func (s *session) Snapshots() domain.SnapshotRepository       { return s }
func (s *session) Users() domain.UserRepository               { return &userSession{st: s.st} }

// GetByID retrieves an account by its ID
func (s *session) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	a, ok := s.st.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	out := cloneAccount(a)
	return &out, nil
}

// GetForUpdate retrieves an account; the transaction mutex is the lock
func (s *session) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.GetByID(ctx, id)
}

func (s *session) ListByOwner(_ context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	return s.filterAccounts(func(a *domain.Account) bool { return a.OwnedBy(userID) }), nil
}

func (s *session) ListStock(_ context.Context, ownerID *uuid.UUID) ([]*domain.Account, error) {
	return s.filterAccounts(func(a *domain.Account) bool {
		return a.IsStock() && (ownerID == nil || a.OwnedBy(*ownerID))
	}), nil
}

func (s *session) filterAccounts(keep func(*domain.Account) bool) []*domain.Account {
	out := make([]*domain.Account, 0)
	for _, a := range s.st.accounts {
		if keep(&a) {
			c := cloneAccount(a)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *session) Create(_ context.Context, account *domain.Account) error {
	if _, exists := s.st.accounts[account.ID]; exists {
		return fmt.Errorf("account %s: %w", account.ID, domain.ErrConflict)
	}
	s.st.accounts[account.ID] = cloneAccount(*account)
	return nil
}

func (s *session) Update(_ context.Context, account *domain.Account) error {
	current, ok := s.st.accounts[account.ID]
	if !ok {
		return fmt.Errorf("account %s: %w", account.ID, domain.ErrNotFound)
	}
	current.Shares = account.Shares
	current.MarketValue = account.MarketValue
	current.UpdatedAt = account.UpdatedAt
	s.st.accounts[account.ID] = cloneAccount(current)
	return nil
}

func (s *session) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.st.accounts[id]; !ok {
		return fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	delete(s.st.accounts, id)
	return nil
}

func (s *session) SumAll(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, a := range s.st.accounts {
		total = total.Add(a.MarketValue)
	}
	return total, nil
}

func (s *session) SumByType(_ context.Context, ownerID uuid.UUID) (map[domain.AccountType]decimal.Decimal, error) {
	totals := make(map[domain.AccountType]decimal.Decimal)
	for _, a := range s.st.accounts {
		if a.OwnedBy(ownerID) {
			totals[a.Type] = totals[a.Type].Add(a.MarketValue)
		}
	}
	return totals, nil
}

// Append stores a new ledger entry
func (s *session) Append(_ context.Context, tx *domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	s.st.ledger = append(s.st.ledger, *tx)
	return nil
}

func (s *session) ListByUser(_ context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.LedgerLine, error) {
	out := make([]*domain.LedgerLine, 0)
	// walk backwards so equal timestamps come out latest-written first
	for i := len(s.st.ledger) - 1; i >= 0; i-- {
		tx := s.st.ledger[i]
		if tx.UserID != userID || tx.Timestamp.Before(from) || !tx.Timestamp.Before(to) {
			continue
		}
		details := domain.DeletedAccountLabel
		if a, ok := s.st.accounts[tx.AccountID]; ok {
			details = a.Details
		}
		out = append(out, &domain.LedgerLine{
			TransactionID:   tx.ID,
			AccountID:       tx.AccountID,
			AccountDetails:  details,
			Change:          tx.Change,
			PreviousBalance: tx.PreviousBalance,
			NewBalance:      tx.NewBalance,
			Reason:          tx.Reason,
			Note:            tx.Note,
			Timestamp:       tx.Timestamp,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *session) ListByAccount(_ context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	out := make([]*domain.Transaction, 0)
	for i := range s.st.ledger {
		if s.st.ledger[i].AccountID == accountID {
			tx := s.st.ledger[i]
			out = append(out, &tx)
		}
	}
	return out, nil
}

// Upsert stores the snapshot keyed by month
func (s *session) Upsert(_ context.Context, snapshot *domain.MonthlySnapshot) error {
	month := domain.FirstOfMonth(snapshot.Month)
	if existing, ok := s.st.snapshots[month]; ok {
		snapshot.ID = existing.ID
		snapshot.CreatedAt = existing.CreatedAt
	}
	snapshot.Month = month
	s.st.snapshots[month] = *snapshot
	return nil
}

func (s *session) List(_ context.Context) ([]*domain.MonthlySnapshot, error) {
	out := make([]*domain.MonthlySnapshot, 0, len(s.st.snapshots))
	for _, snap := range s.st.snapshots {
		snap := snap
		out = append(out, &snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out, nil
}

// userSession implements domain.UserRepository on a working state
type userSession struct {
	st *state
}

func (u *userSession) Create(_ context.Context, user *domain.User) error {
	for _, existing := range u.st.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return fmt.Errorf("username %q: %w", user.Username, domain.ErrConflict)
		}
	}
	u.st.users[user.ID] = *user
	return nil
}

func (u *userSession) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := u.st.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return &user, nil
}

func (u *userSession) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range u.st.users {
		if strings.EqualFold(user.Username, username) {
			user := user
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
}
