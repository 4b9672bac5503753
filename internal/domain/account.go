package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType is an open-ended label; only stock accounts get special treatment.
type AccountType string

const (
	AccountTypeCash  AccountType = "CashAccount"
	AccountTypeStock AccountType = "StockAccount"
)

const (
	maxDetailsLength     = 100
	maxStockSymbolLength = 10
)

// Account represents an account entity in the domain layer
type Account struct {
	ID          uuid.UUID
	Type        AccountType
	Details     string
	StockSymbol *string // NOT NULL iff Type is StockAccount
	Shares      *int64  // NOT NULL iff Type is StockAccount
	MarketValue decimal.Decimal
	OwnerUserID uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsStock reports whether the account is valued from market data
func (a *Account) IsStock() bool {
	return a.Type == AccountTypeStock
}

// OwnedBy reports whether userID owns the account
func (a *Account) OwnedBy(userID uuid.UUID) bool {
	return a.OwnerUserID == userID
}

// Validate ensures the account adheres to domain rules
func (a *Account) Validate() error {
	if a.Type == "" {
		return Validationf("account type cannot be empty")
	}
	if a.Details == "" {
		return Validationf("account details cannot be empty")
	}
	if len([]rune(a.Details)) > maxDetailsLength {
		return Validationf("account details must be at most %d characters", maxDetailsLength)
	}

	if a.IsStock() {
		if a.StockSymbol == nil || *a.StockSymbol == "" {
			return Validationf("stock account must have a stock symbol")
		}
		if len(*a.StockSymbol) > maxStockSymbolLength {
			return Validationf("stock symbol must be at most %d characters", maxStockSymbolLength)
		}
		if a.Shares == nil {
			return Validationf("stock account must have a share count")
		}
		if *a.Shares < 0 {
			return Validationf("shares cannot be negative")
		}
	} else {
		if a.StockSymbol != nil || a.Shares != nil {
			return Validationf("only stock accounts may carry a stock symbol or shares")
		}
	}

	if err := ValidateBalance(a.MarketValue); err != nil {
		return err
	}

	return nil
}
