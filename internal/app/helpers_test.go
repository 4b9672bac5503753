package app

import (
	"github.com/google/uuid"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/account"
)

func accountInput(owner uuid.UUID, symbol string, shares int64) account.CreateAccountInput {
	return account.CreateAccountInput{
		Type:        domain.AccountTypeStock,
		Details:     "Brokerage",
		StockSymbol: &symbol,
		Shares:      &shares,
		OwnerUserID: owner,
	}
}
