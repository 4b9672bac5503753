package account

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/adapter/repository/memory"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMarketData is a mock implementation of domain.MarketData for testing
type MockMarketData struct {
	mock.Mock
}

func (m *MockMarketData) StockPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMarketData) ExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
func strPtr(s string) *string      { return &s }
func intPtr(i int64) *int64         { return &i }
func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newService(md domain.MarketData) (*AccountService, *memory.Store) {
	store := memory.NewStore()
	return NewAccountService(store, md, nil, log.Discard()), store
}

func TestCreate_StockAccountScenario(t *testing.T) {
	ctx := context.Background()
	md := new(MockMarketData)
	md.On("ExchangeRate", mock.Anything).Return(dec("7.0"), nil)
	md.On("StockPrice", mock.Anything, "AAPL").Return(dec("150"), nil)
	svc, store := newService(md)
	owner := uuid.New()

	account, err := svc.Create(ctx, CreateAccountInput{
		Type:        domain.AccountTypeStock,
		Details:     "Brokerage",
		StockSymbol: strPtr("aapl"),
		Shares:      intPtr(10),
		OwnerUserID: owner,
	})

	require.NoError(t, err)
	assert.Equal(t, "AAPL", *account.StockSymbol)
	assert.Equal(t, "10500.00", account.MarketValue.StringFixed(2))

	entries, err := store.Transactions().ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ReasonCreation, entries[0].Reason)
	assert.True(t, entries[0].PreviousBalance.IsZero())
	assert.True(t, dec("10500").Equal(entries[0].Change))
	md.AssertExpectations(t)
}

func TestCreate_CashAccount(t *testing.T) {
	ctx := context.Background()
	md := new(MockMarketData)
	svc, store := newService(md)

	account, err := svc.Create(ctx, CreateAccountInput{
		Type:        domain.AccountTypeCash,
		Details:     "Wallet",
		MarketValue: decPtr("250.50"),
		OwnerUserID: uuid.New(),
	})

	require.NoError(t, err)
	assert.True(t, dec("250.50").Equal(account.MarketValue))
	entries, err := store.Transactions().ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, dec("250.50").Equal(entries[0].NewBalance))
	md.AssertNotCalled(t, "ExchangeRate", mock.Anything)
}

func TestCreate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input CreateAccountInput
	}{
		{
			name:  "Stock account without symbol",
			input: CreateAccountInput{Type: domain.AccountTypeStock, Details: "Brokerage", Shares: intPtr(1)},
		},
		{
			name:  "Stock account without shares",
			input: CreateAccountInput{Type: domain.AccountTypeStock, Details: "Brokerage", StockSymbol: strPtr("AAPL")},
		},
		{
			name:  "Cash account with shares",
			input: CreateAccountInput{Type: domain.AccountTypeCash, Details: "Wallet", Shares: intPtr(1)},
		},
		{
			name:  "Missing details",
			input: CreateAccountInput{Type: domain.AccountTypeCash},
		},
		{
			name:  "Negative value",
			input: CreateAccountInput{Type: domain.AccountTypeCash, Details: "Wallet", MarketValue: decPtr("-1")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := new(MockMarketData)
			svc, _ := newService(md)
			tt.input.OwnerUserID = uuid.New()

			_, err := svc.Create(context.Background(), tt.input)

			assert.ErrorIs(t, err, domain.ErrValidation)
			md.AssertNotCalled(t, "ExchangeRate", mock.Anything)
		})
	}
}

func TestCreate_MarketDataUnavailable(t *testing.T) {
	ctx := context.Background()
	md := new(MockMarketData)
	md.On("ExchangeRate", mock.Anything).Return(dec("7"), nil)
	md.On("StockPrice", mock.Anything, "NOPE").Return(decimal.Zero, domain.ErrMarketDataUnavailable)
	svc, store := newService(md)
	owner := uuid.New()

	_, err := svc.Create(ctx, CreateAccountInput{
		Type:        domain.AccountTypeStock,
		Details:     "Brokerage",
		StockSymbol: strPtr("NOPE"),
		Shares:      intPtr(1),
		OwnerUserID: owner,
	})

	assert.ErrorIs(t, err, domain.ErrMarketDataUnavailable)
	accounts, err := store.Accounts().ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestGet_AuthorizationIsolation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(new(MockMarketData))
	alice, bob := uuid.New(), uuid.New()

	account, err := svc.Create(ctx, CreateAccountInput{Type: domain.AccountTypeCash, Details: "Bob's", OwnerUserID: bob})
	require.NoError(t, err)

	_, err = svc.Get(ctx, account.ID, alice)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, uuid.New(), alice)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := svc.Get(ctx, account.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	err = svc.Delete(ctx, account.ID, alice)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_StockSharesRevalues(t *testing.T) {
	ctx := context.Background()
	md := new(MockMarketData)
	md.On("ExchangeRate", mock.Anything).Return(dec("7"), nil)
	md.On("StockPrice", mock.Anything, "AAPL").Return(dec("150"), nil)
	svc, store := newService(md)
	owner := uuid.New()

	account, err := svc.Create(ctx, CreateAccountInput{
		Type: domain.AccountTypeStock, Details: "Brokerage",
		StockSymbol: strPtr("AAPL"), Shares: intPtr(10), OwnerUserID: owner,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, UpdateAccountInput{ID: account.ID, Shares: intPtr(12), CallerUserID: owner})

	require.NoError(t, err)
	assert.Equal(t, int64(12), *updated.Shares)
	assert.True(t, dec("12600").Equal(updated.MarketValue))

	entries, err := store.Transactions().ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ReasonUpdate, entries[1].Reason)
	assert.True(t, dec("2100").Equal(entries[1].Change))
}

func TestUpdate_UnchangedValueWritesNoEntry(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(new(MockMarketData))
	owner := uuid.New()

	account, err := svc.Create(ctx, CreateAccountInput{
		Type: domain.AccountTypeCash, Details: "Wallet", MarketValue: decPtr("10"), OwnerUserID: owner,
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, UpdateAccountInput{ID: account.ID, MarketValue: decPtr("10.00"), CallerUserID: owner})
	require.NoError(t, err)

	entries, err := store.Transactions().ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpdate_StockWithoutSharesRequotes(t *testing.T) {
	ctx := context.Background()
	md := new(MockMarketData)
	md.On("ExchangeRate", mock.Anything).Return(dec("7"), nil)
	md.On("StockPrice", mock.Anything, "AAPL").Return(dec("150"), nil).Once()
	md.On("StockPrice", mock.Anything, "AAPL").Return(dec("151"), nil)
	svc, store := newService(md)
	owner := uuid.New()

	account, err := svc.Create(ctx, CreateAccountInput{
		Type: domain.AccountTypeStock, Details: "Brokerage",
		StockSymbol: strPtr("AAPL"), Shares: intPtr(10), OwnerUserID: owner,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, UpdateAccountInput{ID: account.ID, CallerUserID: owner})

	require.NoError(t, err)
	assert.Equal(t, int64(10), *updated.Shares)
	assert.True(t, dec("10570").Equal(updated.MarketValue))

	entries, err := store.Transactions().ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ReasonUpdate, entries[1].Reason)
	assert.True(t, dec("10500").Equal(entries[1].PreviousBalance))
	assert.True(t, dec("70").Equal(entries[1].Change))
	md.AssertExpectations(t)
}

func TestUpdate_CashWithoutMarketValueKeepsValue(t *testing.T) {
	ctx := context.Background()
	md := new(MockMarketData)
	svc, store := newService(md)
	owner := uuid.New()

	account, err := svc.Create(ctx, CreateAccountInput{
		Type: domain.AccountTypeCash, Details: "Wallet", MarketValue: decPtr("42.10"), OwnerUserID: owner,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, UpdateAccountInput{ID: account.ID, CallerUserID: owner})

	require.NoError(t, err)
	assert.True(t, dec("42.10").Equal(updated.MarketValue))
	entries, err := store.Transactions().ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	md.AssertNotCalled(t, "ExchangeRate", mock.Anything)
}

func TestUpdate_KindMismatch(t *testing.T) {
	ctx := context.Background()
	md := new(MockMarketData)
	md.On("ExchangeRate", mock.Anything).Return(dec("1"), nil)
	md.On("StockPrice", mock.Anything, "AAPL").Return(dec("1"), nil)
	svc, _ := newService(md)
	owner := uuid.New()

	cash, err := svc.Create(ctx, CreateAccountInput{Type: domain.AccountTypeCash, Details: "Wallet", OwnerUserID: owner})
	require.NoError(t, err)
	stock, err := svc.Create(ctx, CreateAccountInput{
		Type: domain.AccountTypeStock, Details: "Brokerage",
		StockSymbol: strPtr("AAPL"), Shares: intPtr(1), OwnerUserID: owner,
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, UpdateAccountInput{ID: cash.ID, Shares: intPtr(3), CallerUserID: owner})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Update(ctx, UpdateAccountInput{ID: stock.ID, MarketValue: decPtr("3"), CallerUserID: owner})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDelete_LedgerSurvives(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(new(MockMarketData))
	owner := uuid.New()

	account, err := svc.Create(ctx, CreateAccountInput{
		Type: domain.AccountTypeCash, Details: "Savings", MarketValue: decPtr("500"), OwnerUserID: owner,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, account.ID, owner))

	_, err = svc.Get(ctx, account.ID, owner)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	entries, err := store.Transactions().ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	deletion := entries[1]
	assert.Equal(t, domain.ReasonDeletion, deletion.Reason)
	assert.True(t, dec("500").Equal(deletion.PreviousBalance))
	assert.True(t, deletion.NewBalance.IsZero())
	assert.True(t, dec("-500").Equal(deletion.Change))
}
