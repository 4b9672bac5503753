package amqp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockChannel is a mock implementation of channel for testing
type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	return m.Called(name, kind, durable).Error(0)
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	return m.Called(exchange, key, msg).Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

func sampleEntry() *domain.Transaction {
	return &domain.Transaction{
		ID:              uuid.New(),
		AccountID:       uuid.New(),
		UserID:          uuid.New(),
		Change:          decimal.RequireFromString("70"),
		PreviousBalance: decimal.RequireFromString("10500"),
		NewBalance:      decimal.RequireFromString("10570"),
		Reason:          domain.ReasonDailyRefresh,
		Timestamp:       time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestLedgerEventMessage(t *testing.T) {
	entry := sampleEntry()
	msg := NewLedgerEventMessage(entry)

	assert.Equal(t, "70.00", msg.Change)
	assert.Equal(t, "10570.00", msg.NewBalance)
	assert.Equal(t, "daily-refresh", msg.Reason)

	body, err := msg.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"previous_balance":"10500.00"`)
	assert.NotContains(t, string(body), `"note"`)
}

func TestPublishLedgerEntries(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", "wealthtrack", "direct", true).Return(nil)
	entry := sampleEntry()
	ch.On("PublishWithContext", "wealthtrack", "ledger.entry", mock.MatchedBy(func(msg amqp091.Publishing) bool {
		decoded, err := LedgerEventMessageFromJSON(msg.Body)
		return err == nil &&
			msg.DeliveryMode == amqp091.Persistent &&
			msg.MessageId == entry.ID.String() &&
			decoded.TransactionID == entry.ID.String()
	})).Return(nil)

	p, err := newPublisher(ch, "wealthtrack", "ledger.entry", log.Discard())
	require.NoError(t, err)

	require.NoError(t, p.PublishLedgerEntries(context.Background(), []*domain.Transaction{entry}))
	ch.AssertExpectations(t)
}

func TestPublishLedgerEntries_StopsOnFailure(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("channel closed")).Once()

	p, err := newPublisher(ch, "wealthtrack", "ledger.entry", log.Discard())
	require.NoError(t, err)

	err = p.PublishLedgerEntries(context.Background(), []*domain.Transaction{sampleEntry(), sampleEntry()})

	assert.Error(t, err)
	ch.AssertNumberOfCalls(t, "PublishWithContext", 1)
}

func TestNewPublisher_DeclareFailure(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access refused"))

	_, err := newPublisher(ch, "wealthtrack", "ledger.entry", log.Discard())

	assert.Error(t, err)
}
