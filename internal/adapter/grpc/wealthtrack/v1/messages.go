package wealthtrackv1

// Amounts travel as decimal strings with two places.

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserId string `json:"user_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserId string `json:"user_id"`
}

type Account struct {
	Id          string     `json:"id"`
	Type        string     `json:"type"`
	Details     string     `json:"details"`
	StockSymbol string     `json:"stock_symbol,omitempty"`
	Shares      *int64     `json:"shares,omitempty"`
	MarketValue string     `json:"market_value"`
	OwnerUserId string     `json:"owner_user_id"`
	CreatedAt   *Timestamp `json:"created_at"`
	UpdatedAt   *Timestamp `json:"updated_at"`
}

type CreateAccountRequest struct {
	Type        string `json:"type"`
	Details     string `json:"details"`
	StockSymbol string `json:"stock_symbol,omitempty"`
	Shares      *int64 `json:"shares,omitempty"`
	// MarketValue is ignored for stock accounts; empty means zero
	MarketValue string `json:"market_value,omitempty"`
}

type GetAccountRequest struct {
	AccountId string `json:"account_id"`
}

type ListAccountsRequest struct{}

type ListAccountsResponse struct {
	Accounts []*Account `json:"accounts"`
}

type UpdateAccountRequest struct {
	AccountId   string `json:"account_id"`
	Shares      *int64 `json:"shares,omitempty"`
	MarketValue string `json:"market_value,omitempty"`
}

type AccountResponse struct {
	Account *Account `json:"account"`
}

type DeleteAccountRequest struct {
	AccountId string `json:"account_id"`
}

// Ack acknowledges an operation without a payload
type Ack struct{}

type RefreshAccountsRequest struct{}

type RefreshAccountsResponse struct {
	Scanned int32 `json:"scanned"`
	Updated int32 `json:"updated"`
	Skipped int32 `json:"skipped"`
}

type Transaction struct {
	Id              string     `json:"id"`
	AccountId       string     `json:"account_id"`
	Change          string     `json:"change"`
	PreviousBalance string     `json:"previous_balance"`
	NewBalance      string     `json:"new_balance"`
	Reason          string     `json:"reason"`
	Note            string     `json:"note,omitempty"`
	Timestamp       *Timestamp `json:"timestamp"`
}

type TransferRequest struct {
	FromAccountId string `json:"from_account_id"`
	ToAccountId   string `json:"to_account_id"`
	Amount        string `json:"amount"`
}

type TransferResponse struct {
	Transactions []*Transaction `json:"transactions"`
}

type RecordIncomeRequest struct {
	AccountId string `json:"account_id"`
	Amount    string `json:"amount"`
	Reason    string `json:"reason"`
}

type RecordExpenseRequest struct {
	AccountId string `json:"account_id"`
	Amount    string `json:"amount"`
	Reason    string `json:"reason"`
}

type TransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

// ListTransactionsRequest takes inclusive YYYY-MM-DD dates
type ListTransactionsRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type LedgerLine struct {
	TransactionId   string     `json:"transaction_id"`
	AccountId       string     `json:"account_id"`
	AccountDetails  string     `json:"account_details"`
	Change          string     `json:"change"`
	PreviousBalance string     `json:"previous_balance"`
	NewBalance      string     `json:"new_balance"`
	Reason          string     `json:"reason"`
	Note            string     `json:"note,omitempty"`
	Timestamp       *Timestamp `json:"timestamp"`
}

type ListTransactionsResponse struct {
	Transactions []*LedgerLine `json:"transactions"`
}

type GetInvestmentProfitRequest struct {
	AccountId string `json:"account_id"`
}

type GetInvestmentProfitResponse struct {
	MarketValue string `json:"market_value"`
	BookValue   string `json:"book_value"`
	Profit      string `json:"profit"`
}

type GetTypeTotalsRequest struct{}

type GetTypeTotalsResponse struct {
	Totals map[string]string `json:"totals"`
}

type GetNetWorthRequest struct{}

type GetNetWorthResponse struct {
	Total  string `json:"total"`
	Cash   string `json:"cash"`
	Stocks string `json:"stocks"`
	Other  string `json:"other"`
}

type Snapshot struct {
	Id               string     `json:"id"`
	Month            string     `json:"month"` // YYYY-MM
	TotalMarketValue string     `json:"total_market_value"`
	UpdatedAt        *Timestamp `json:"updated_at"`
}

type ListSnapshotsRequest struct{}

type ListSnapshotsResponse struct {
	Snapshots []*Snapshot `json:"snapshots"`
}

type RecordSnapshotRequest struct {
	Month            string `json:"month"` // YYYY-MM
	TotalMarketValue string `json:"total_market_value"`
}

type SnapshotMonthlyTotalRequest struct{}

type SnapshotResponse struct {
	Snapshot *Snapshot `json:"snapshot"`
}
