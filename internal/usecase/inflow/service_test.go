package inflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/adapter/repository/memory"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLedgerPublisher is a mock implementation of LedgerPublisher for testing
type MockLedgerPublisher struct {
	mock.Mock
}

func (m *MockLedgerPublisher) PublishLedgerEntries(ctx context.Context, entries []*domain.Transaction) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func seedAccount(t *testing.T, store *memory.Store, owner uuid.UUID) *domain.Account {
	t.Helper()
	account := &domain.Account{
		ID:          uuid.New(),
		Type:        domain.AccountTypeCash,
		Details:     "Checking",
		MarketValue: decimal.NewFromInt(100),
		OwnerUserID: owner,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, store.Accounts().Create(context.Background(), account))
	return account
}

func TestRecordIncome_StandardFlow(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	owner := uuid.New()
	account := seedAccount(t, store, owner)

	publisher := new(MockLedgerPublisher)
	publisher.On("PublishLedgerEntries", mock.Anything, mock.MatchedBy(func(entries []*domain.Transaction) bool {
		return len(entries) == 1 && entries[0].Reason == domain.ReasonIncome
	})).Return(nil)

	service := NewInflowService(store, publisher, log.Discard())

	entry, err := service.RecordIncome(ctx, RecordIncomeInput{
		AccountID:    account.ID,
		Amount:       decimal.RequireFromString("2500.00"),
		Reason:       "  salary ",
		CallerUserID: owner,
	})

	require.NoError(t, err)
	assert.Equal(t, "salary", entry.Note)
	assert.True(t, decimal.NewFromInt(2500).Equal(entry.Change))
	assert.True(t, decimal.NewFromInt(2600).Equal(entry.NewBalance))
	assert.NoError(t, entry.Validate())

	got, err := store.Accounts().GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2600).Equal(got.MarketValue))
	publisher.AssertExpectations(t)
}

func TestRecordIncome_PublishFailureIsNotAnError(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	owner := uuid.New()
	account := seedAccount(t, store, owner)

	publisher := new(MockLedgerPublisher)
	publisher.On("PublishLedgerEntries", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	_, err := NewInflowService(store, publisher, log.Discard()).RecordIncome(ctx, RecordIncomeInput{
		AccountID:    account.ID,
		Amount:       decimal.NewFromInt(1),
		CallerUserID: owner,
	})

	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestRecordIncome_Errors(t *testing.T) {
	owner := uuid.New()
	tests := []struct {
		name    string
		amount  string
		reason  string
		caller  uuid.UUID
		unknown bool
		wantErr error
	}{
		{name: "Zero amount", amount: "0", caller: owner, wantErr: domain.ErrValidation},
		{name: "Negative amount", amount: "-10", caller: owner, wantErr: domain.ErrValidation},
		{name: "Too many decimals", amount: "0.005", caller: owner, wantErr: domain.ErrValidation},
		{name: "Overlong reason", amount: "1", reason: strings.Repeat("r", 256), caller: owner, wantErr: domain.ErrValidation},
		{name: "Other user's account", amount: "1", caller: uuid.New(), wantErr: domain.ErrNotFound},
		{name: "Unknown account", amount: "1", caller: owner, unknown: true, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.NewStore()
			account := seedAccount(t, store, owner)
			id := account.ID
			if tt.unknown {
				id = uuid.New()
			}
			publisher := new(MockLedgerPublisher)

			_, err := NewInflowService(store, publisher, log.Discard()).RecordIncome(ctx, RecordIncomeInput{
				AccountID:    id,
				Amount:       decimal.RequireFromString(tt.amount),
				Reason:       tt.reason,
				CallerUserID: tt.caller,
			})

			assert.ErrorIs(t, err, tt.wantErr)
			publisher.AssertNotCalled(t, "PublishLedgerEntries", mock.Anything, mock.Anything)
			entries, err := store.Transactions().ListByAccount(ctx, account.ID)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}
