package amqp

import (
	"encoding/json"
	"time"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// LedgerEventMessage is the wire form of one committed ledger entry.
// Amounts are decimal strings with two places.
type LedgerEventMessage struct {
	TransactionID   string    `json:"transaction_id"`
	AccountID       string    `json:"account_id"`
	UserID          string    `json:"user_id"`
	Change          string    `json:"change"`
	PreviousBalance string    `json:"previous_balance"`
	NewBalance      string    `json:"new_balance"`
	Reason          string    `json:"reason"`
	Note            string    `json:"note,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewLedgerEventMessage converts a ledger entry to its message
func NewLedgerEventMessage(tx *domain.Transaction) *LedgerEventMessage {
	return &LedgerEventMessage{
		TransactionID:   tx.ID.String(),
		AccountID:       tx.AccountID.String(),
		UserID:          tx.UserID.String(),
		Change:          tx.Change.StringFixed(domain.CurrencyPlaces),
		PreviousBalance: tx.PreviousBalance.StringFixed(domain.CurrencyPlaces),
		NewBalance:      tx.NewBalance.StringFixed(domain.CurrencyPlaces),
		Reason:          string(tx.Reason),
		Note:            tx.Note,
		Timestamp:       tx.Timestamp.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
