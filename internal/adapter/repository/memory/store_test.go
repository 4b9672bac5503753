package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cashAccount(owner uuid.UUID, details string, value int64) *domain.Account {
	return &domain.Account{
		ID:          uuid.New(),
		Type:        domain.AccountTypeCash,
		Details:     details,
		MarketValue: decimal.NewFromInt(value),
		OwnerUserID: owner,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	account := cashAccount(uuid.New(), "Wallet", 100)
	require.NoError(t, store.Accounts().Create(ctx, account))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		locked, err := repos.Accounts().GetForUpdate(ctx, account.ID)
		require.NoError(t, err)
		locked.MarketValue = decimal.Zero
		require.NoError(t, repos.Accounts().Update(ctx, locked))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	got, err := store.Accounts().GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(got.MarketValue))
}

func TestWithinTx_Commits(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	account := cashAccount(uuid.New(), "Wallet", 100)

	err := store.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if err := repos.Accounts().Create(ctx, account); err != nil {
			return err
		}
		return repos.Transactions().Append(ctx, domain.NewTransaction(account, decimal.Zero, domain.ReasonCreation, "", time.Now()))
	})

	require.NoError(t, err)
	entries, err := store.Transactions().ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAppend_RejectsInconsistentEntry(t *testing.T) {
	store := NewStore()
	err := store.Transactions().Append(context.Background(), &domain.Transaction{
		ID:              uuid.New(),
		AccountID:       uuid.New(),
		Change:          decimal.NewFromInt(5),
		PreviousBalance: decimal.NewFromInt(1),
		NewBalance:      decimal.NewFromInt(7),
		Reason:          domain.ReasonIncome,
	})
	assert.Error(t, err)
}

func TestListByUser_DeletedAccountLabelAndOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	owner := uuid.New()
	account := cashAccount(owner, "Wallet", 10)
	require.NoError(t, store.Accounts().Create(ctx, account))

	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Transactions().Append(ctx, domain.NewTransaction(account, decimal.Zero, domain.ReasonCreation, "", base)))
	previous := account.MarketValue
	account.MarketValue = decimal.Zero
	require.NoError(t, store.Transactions().Append(ctx, domain.NewTransaction(account, previous, domain.ReasonDeletion, "", base.Add(time.Hour))))
	require.NoError(t, store.Accounts().Delete(ctx, account.ID))

	lines, err := store.Transactions().ListByUser(ctx, owner, base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, domain.ReasonDeletion, lines[0].Reason)
	assert.Equal(t, domain.ReasonCreation, lines[1].Reason)
	assert.Equal(t, domain.DeletedAccountLabel, lines[0].AccountDetails)

	// end is exclusive
	lines, err = store.Transactions().ListByUser(ctx, owner, base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	others, err := store.Transactions().ListByUser(ctx, uuid.New(), base, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestSnapshots_UpsertPerMonth(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	first := &domain.MonthlySnapshot{ID: uuid.New(), Month: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), TotalMarketValue: decimal.NewFromInt(5)}
	require.NoError(t, store.Snapshots().Upsert(ctx, first))
	again := &domain.MonthlySnapshot{ID: uuid.New(), Month: time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), TotalMarketValue: decimal.NewFromInt(9)}
	require.NoError(t, store.Snapshots().Upsert(ctx, again))
	earlier := &domain.MonthlySnapshot{ID: uuid.New(), Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), TotalMarketValue: decimal.NewFromInt(1)}
	require.NoError(t, store.Snapshots().Upsert(ctx, earlier))

	list, err := store.Snapshots().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, earlier.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.True(t, decimal.NewFromInt(9).Equal(list[1].TotalMarketValue))
}

func TestUsers_UniqueUsername(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Users().Create(ctx, &domain.User{ID: uuid.New(), Username: "alice"}))
	err := store.Users().Create(ctx, &domain.User{ID: uuid.New(), Username: "Alice"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := store.Users().GetByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = store.Users().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSums(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	alice, bob := uuid.New(), uuid.New()
	require.NoError(t, store.Accounts().Create(ctx, cashAccount(alice, "Wallet", 10)))
	require.NoError(t, store.Accounts().Create(ctx, cashAccount(alice, "Bank", 15)))
	require.NoError(t, store.Accounts().Create(ctx, cashAccount(bob, "Bank", 100)))

	total, err := store.Accounts().SumAll(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(125).Equal(total))

	byType, err := store.Accounts().SumByType(ctx, alice)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(25).Equal(byType[domain.AccountTypeCash]))
}
