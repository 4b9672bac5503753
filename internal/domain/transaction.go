package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reason tags why a ledger entry was written
type Reason string

const (
	ReasonCreation      Reason = "creation"
	ReasonUpdate        Reason = "update"
	ReasonDeletion      Reason = "deletion"
	ReasonDailyRefresh  Reason = "daily-refresh"
	ReasonManualRefresh Reason = "manual-refresh"
	ReasonTransferOut   Reason = "transfer-out"
	ReasonTransferIn    Reason = "transfer-in"
	ReasonIncome        Reason = "income"
	ReasonExpense       Reason = "expense"
)

// Valid reports whether r is one of the known reason tags
func (r Reason) Valid() bool {
	switch r {
	case ReasonCreation, ReasonUpdate, ReasonDeletion,
		ReasonDailyRefresh, ReasonManualRefresh,
		ReasonTransferOut, ReasonTransferIn,
		ReasonIncome, ReasonExpense:
		return true
	}
	return false
}

// DeletedAccountLabel is shown for ledger entries whose account no longer exists.
const DeletedAccountLabel = "Account deleted"

// Transaction is an immutable ledger entry recording one balance change.
// AccountID is not a foreign key: the account may be deleted later.
type Transaction struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	UserID          uuid.UUID // owner at write time
	Change          decimal.Decimal
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	Reason          Reason
	Note            string // free-text reason supplied with income and expense
	Timestamp       time.Time
}

// NewTransaction builds the ledger entry moving account from previous to its current MarketValue.
func NewTransaction(account *Account, previous decimal.Decimal, reason Reason, note string, now time.Time) *Transaction {
	return &Transaction{
		ID:              uuid.New(),
		AccountID:       account.ID,
		UserID:          account.OwnerUserID,
		Change:          account.MarketValue.Sub(previous),
		PreviousBalance: previous,
		NewBalance:      account.MarketValue,
		Reason:          reason,
		Note:            note,
		Timestamp:       now,
	}
}

// Validate ensures the entry adheres to domain rules
// CRITICAL: NewBalance must equal PreviousBalance + Change exactly
func (t *Transaction) Validate() error {
	if t.AccountID == uuid.Nil {
		return errors.New("transaction must reference an account")
	}
	if !t.Reason.Valid() {
		return errors.New("transaction reason " + string(t.Reason) + " is invalid")
	}
	if !t.PreviousBalance.Add(t.Change).Equal(t.NewBalance) {
		return errors.New("new balance must equal previous balance plus change")
	}
	return nil
}

// LedgerLine is the read model returned when listing a user's ledger.
type LedgerLine struct {
	TransactionID   uuid.UUID
	AccountID       uuid.UUID
	AccountDetails  string // DeletedAccountLabel when the account is gone
	Change          decimal.Decimal
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	Reason          Reason
	Note            string
	Timestamp       time.Time
}
