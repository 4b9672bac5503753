package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	wealthtrackv1 "github.com/simaogato/wealthtrack-backend/internal/adapter/grpc/wealthtrack/v1"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/account"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/dashboard"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/expense"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/inflow"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/investment"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/snapshot"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/transfer"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/user"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/valuation"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// Services groups the use cases behind the gRPC API
type Services struct {
	Users      *user.UserService
	Accounts   *account.AccountService
	Refresh    *valuation.RefreshService
	Transfers  *transfer.TransferService
	Inflows    *inflow.InflowService
	Expenses   *expense.ExpenseService
	Dashboard  *dashboard.DashboardService
	Investment *investment.InvestmentService
	Snapshots  *snapshot.SnapshotService
}

// Server implements the WealthTrackService gRPC server
type Server struct {
	wealthtrackv1.UnimplementedWealthTrackServiceServer

	Services
}

// NewServer creates a new gRPC server instance
func NewServer(services Services) *Server {
	return &Server{Services: services}
}

// Register handles the Register RPC
func (s *Server) Register(ctx context.Context, req *wealthtrackv1.RegisterRequest) (*wealthtrackv1.RegisterResponse, error) {
	u, err := s.Users.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, mapError(err)
	}
	return &wealthtrackv1.RegisterResponse{UserId: u.ID.String()}, nil
}

// Login handles the Login RPC
func (s *Server) Login(ctx context.Context, req *wealthtrackv1.LoginRequest) (*wealthtrackv1.LoginResponse, error) {
	token, u, err := s.Users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, mapError(err)
	}
	return &wealthtrackv1.LoginResponse{Token: token, UserId: u.ID.String()}, nil
}

// CreateAccount handles the CreateAccount RPC
func (s *Server) CreateAccount(ctx context.Context, req *wealthtrackv1.CreateAccountRequest) (*wealthtrackv1.AccountResponse, error) {
	callerID, err := callerUserID(ctx)
	if err != nil {
		return nil, err
	}

	input := account.CreateAccountInput{
		Type:        domain.AccountType(req.Type),
		Details:     req.Details,
		Shares:      req.Shares,
		OwnerUserID: callerID,
	}
	if req.StockSymbol != "" {
		symbol := req.StockSymbol
		input.StockSymbol = &symbol
	}
	if req.MarketValue != "" {
		value, err := parseAmount("market_value", req.MarketValue)
		if err != nil {
			return nil, err
		}
		input.MarketValue = &value
	}

	created, err := s.Accounts.Create(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return &wealthtrackv1.AccountResponse{Account: domainAccountToProto(created)}, nil
}

// GetAccount handles the GetAccount RPC
func (s *Server) GetAccount(ctx context.Context, req *wealthtrackv1.GetAccountRequest) (*wealthtrackv1.AccountResponse, error) {
	callerID, err := callerUserID(ctx)
	if err != nil {
		return nil, err
	}
	accountID, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}

	found, err := s.Accounts.Get(ctx, accountID, callerID)
	if err != nil {
		return nil, mapError(err)
	}
	return &wealthtrackv1.AccountResponse{Account: domainAccountToProto(found)}, nil
}

// ListAccounts handles the ListAccounts RPC
func (s *Server) ListAccounts(ctx context.Context, _ *wealthtrackv1.ListAccountsRequest) (*wealthtrackv1.ListAccountsResponse, error) {
	callerID, err := callerUserID(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := s.Accounts.List(ctx, callerID)
	if err != nil {
		return nil, mapError(err)
	}

	protoAccounts := make([]*wealthtrackv1.Account, 0, len(accounts))
	for _, a := range accounts {
		protoAccounts = append(protoAccounts, domainAccountToProto(a))
	}
	return &wealthtrackv1.ListAccountsResponse{Accounts: protoAccounts}, nil
}

// UpdateAccount handles the UpdateAccount RPC
func (s *Server) UpdateAccount(ctx context.Context, req *wealthtrackv1.UpdateAccountRequest) (*wealthtrackv1.AccountResponse, error) {
	callerID, err := callerUserID(ctx)
	if err != nil {
		return nil, err
	}
	accountID, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}

	input := account.UpdateAccountInput{
		ID:           accountID,
		Shares:       req.Shares,
		CallerUserID: callerID,
	}
	if req.MarketValue != "" {
		value, err := parseAmount("market_value", req.MarketValue)
		if err != nil {
			return nil, err
		}
		input.MarketValue = &value
	}

	updated, err := s.Accounts.Update(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return &wealthtrackv1.AccountResponse{Account: domainAccountToProto(updated)}, nil
}

// DeleteAccount handles the DeleteAccount RPC
func (s *Server) DeleteAccount(ctx context.Context, req *wealthtrackv1.DeleteAccountRequest) (*wealthtrackv1.Ack, error) {
	callerID, err := callerUserID(ctx)
	if err != nil {
		return nil, err
	}
	accountID, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}

	if err := s.Accounts.Delete(ctx, accountID, callerID); err != nil {
		return nil, mapError(err)
	}
	return &wealthtrackv1.Ack{}, nil
}

// RefreshAccounts handles the per-user RefreshAccounts RPC
func (s *Server) RefreshAccounts(ctx context.Context, _ *wealthtrackv1.RefreshAccountsRequest) (*wealthtrackv1.RefreshAccountsResponse, error) {
	callerID, err := callerUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.Refresh.RefreshUser(ctx, callerID)
	if err != nil {
		return nil, mapError(err)
	}
	return refreshResultToProto(result), nil
}

// RefreshAllAccounts handles the administrative RefreshAllAccounts RPC
func (s *Server) RefreshAllAccounts(ctx context.Context, _ *wealthtrackv1.RefreshAccountsRequest) (*wealthtrackv1.RefreshAccountsResponse, error) {
	if err := requireTrusted(ctx); err != nil {
		return nil, err
	}

	result, err := s.Refresh.RefreshAll(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return refreshResultToProto(result), nil
}

// Transfer handles the Transfer RPC
func (s *Server) Transfer(ctx context.Context, req *wealthtrackv1.TransferRequest) (*wealthtrackv1.TransferResponse, error) {
	callerID, err := callerUserID(ctx)
	if err != nil {
		return nil, err
	}
	fromID, err := parseID("from_account_id", req.FromAccountId)
	if err != nil {
		return nil, err
	}
	toID, err := parseID("to_account_id", req.ToAccountId)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	entries, err := s.Transfers.Transfer(ctx, transfer.TransferInput{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        amount,
		CallerUserID:  callerID,
	})
	if err != nil {
		return nil, mapError(err)
	}

	protoEntries := make([]*wealthtrackv1.Transaction, 0, len(entries))
	for _, entry := range entries {
		protoEntries = append(protoEntries, domainTransactionToProto(entry))
	}
	return &wealthtrackv1.TransferResponse{Transactions: protoEntries}, nil
}

// RecordIncome handles the RecordIncome RPC
func (s *Server) RecordIncome(ctx context.Context, req *wealthtrackv1.RecordIncomeRequest) (*wealthtrackv1.TransactionResponse, error) {
	callerID, err := callerUserID(ctx)
	if err != nil {
		return nil, err
	}
	accountID, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	entry, err := s.Inflows.RecordIncome(ctx, inflow.RecordIncomeInput{
		AccountID:    accountID,
		Amount:       amount,
		Reason:       req.Reason,
		CallerUserID: callerID,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &wealthtrackv1.TransactionResponse{Transaction: domainTransactionToProto(entry)}, nil
}

// RecordExpense handles the RecordExpense RPC
func (s *Server) RecordExpense(ctx context.Context, req *wealthtrackv1.RecordExpenseRequest) (*wealthtrackv1.TransactionResponse, error) {
	callerID, err := callerUserID(ctx)
	if err != nil {
		return nil, err
	}
	accountID, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	entry, err := s.Expenses.RecordExpense(ctx, expense.RecordExpenseInput{
		AccountID:    accountID,
		Amount:       amount,
		Reason:       req.Reason,
		CallerUserID: callerID,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &wealthtrackv1.TransactionResponse{Transaction: domainTransactionToProto(entry)}, nil
}

// ListTransactions handles the ListTransactions RPC.
// Both dates are inclusive; the end date runs until the following midnight UTC.
func (s *Server) ListTransactions(ctx context.Context, req *wealthtrackv1.ListTransactionsRequest) (*wealthtrackv1.ListTransactionsResponse, error) {
	callerID, err := callerUserID(ctx)
	if err != nil {
		return nil, err
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid start_date format: %v", err)
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid end_date format: %v", err)
	}
	if end.Before(start) {
		return nil, status.Errorf(codes.InvalidArgument, "start_date must not be after end_date")
	}

	lines, err := s.Dashboard.ListTransactions(ctx, callerID, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, mapError(err)
	}

	protoLines := make([]*wealthtrackv1.LedgerLine, 0, len(lines))
	for _, line := range lines {
		protoLines = append(protoLines, &wealthtrackv1.LedgerLine{
			TransactionId:   line.TransactionID.String(),
			AccountId:       line.AccountID.String(),
			AccountDetails:  line.AccountDetails,
			Change:          formatAmount(line.Change),
			PreviousBalance: formatAmount(line.PreviousBalance),
			NewBalance:      formatAmount(line.NewBalance),
			Reason:          string(line.Reason),
			Note:            line.Note,
			Timestamp:       wealthtrackv1.NewTimestamp(line.Timestamp),
		})
	}
	return &wealthtrackv1.ListTransactionsResponse{Transactions: protoLines}, nil
}

// GetInvestmentProfit handles the GetInvestmentProfit RPC
func (s *Server) GetInvestmentProfit(ctx context.Context, req *wealthtrackv1.GetInvestmentProfitRequest) (*wealthtrackv1.GetInvestmentProfitResponse, error) {
	callerID, err := callerUserID(ctx)
	if err != nil {
		return nil, err
	}
	accountID, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}

	result, err := s.Investment.CalculateProfit(ctx, accountID, callerID)
	if err != nil {
		return nil, mapError(err)
	}

	return &wealthtrackv1.GetInvestmentProfitResponse{
		MarketValue: formatAmount(result.MarketValue),
		BookValue:   formatAmount(result.BookValue),
		Profit:      formatAmount(result.Profit),
	}, nil
}

// GetTypeTotals handles the GetTypeTotals RPC
func (s *Server) GetTypeTotals(ctx context.Context, _ *wealthtrackv1.GetTypeTotalsRequest) (*wealthtrackv1.GetTypeTotalsResponse, error) {
	callerID, err := callerUserID(ctx)
	if err != nil {
		return nil, err
	}

	totals, err := s.Dashboard.GetTypeTotals(ctx, callerID)
	if err != nil {
		return nil, mapError(err)
	}

	// Always initialize the map (even if empty) to ensure it's never nil
	protoTotals := make(map[string]string, len(totals))
	for accountType, sum := range totals {
		protoTotals[string(accountType)] = formatAmount(sum)
	}
	return &wealthtrackv1.GetTypeTotalsResponse{Totals: protoTotals}, nil
}

// GetNetWorth handles the GetNetWorth RPC
func (s *Server) GetNetWorth(ctx context.Context, _ *wealthtrackv1.GetNetWorthRequest) (*wealthtrackv1.GetNetWorthResponse, error) {
	callerID, err := callerUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.Dashboard.GetNetWorth(ctx, callerID)
	if err != nil {
		return nil, mapError(err)
	}

	return &wealthtrackv1.GetNetWorthResponse{
		Total:  formatAmount(result.Total),
		Cash:   formatAmount(result.Cash),
		Stocks: formatAmount(result.Stocks),
		Other:  formatAmount(result.Other),
	}, nil
}

// ListSnapshots handles the administrative ListSnapshots RPC
func (s *Server) ListSnapshots(ctx context.Context, _ *wealthtrackv1.ListSnapshotsRequest) (*wealthtrackv1.ListSnapshotsResponse, error) {
	if err := requireTrusted(ctx); err != nil {
		return nil, err
	}

	snapshots, err := s.Snapshots.ListSnapshots(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	protoSnapshots := make([]*wealthtrackv1.Snapshot, 0, len(snapshots))
	for _, snap := range snapshots {
		protoSnapshots = append(protoSnapshots, domainSnapshotToProto(snap))
	}
	return &wealthtrackv1.ListSnapshotsResponse{Snapshots: protoSnapshots}, nil
}

// RecordSnapshot handles the administrative RecordSnapshot RPC
func (s *Server) RecordSnapshot(ctx context.Context, req *wealthtrackv1.RecordSnapshotRequest) (*wealthtrackv1.SnapshotResponse, error) {
	if err := requireTrusted(ctx); err != nil {
		return nil, err
	}
	month, err := time.Parse(monthLayout, req.Month)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid month format: %v", err)
	}
	total, err := parseAmount("total_market_value", req.TotalMarketValue)
	if err != nil {
		return nil, err
	}

	snap, err := s.Snapshots.RecordSnapshot(ctx, month, total)
	if err != nil {
		return nil, mapError(err)
	}
	return &wealthtrackv1.SnapshotResponse{Snapshot: domainSnapshotToProto(snap)}, nil
}

// SnapshotMonthlyTotal handles the administrative SnapshotMonthlyTotal RPC
func (s *Server) SnapshotMonthlyTotal(ctx context.Context, _ *wealthtrackv1.SnapshotMonthlyTotalRequest) (*wealthtrackv1.SnapshotResponse, error) {
	if err := requireTrusted(ctx); err != nil {
		return nil, err
	}

	snap, err := s.Snapshots.SnapshotMonthlyTotal(ctx, s.Snapshots.Now())
	if err != nil {
		return nil, mapError(err)
	}
	return &wealthtrackv1.SnapshotResponse{Snapshot: domainSnapshotToProto(snap)}, nil
}

// callerUserID returns the user the request acts for
func callerUserID(ctx context.Context) (uuid.UUID, error) {
	p, ok := domain.PrincipalFrom(ctx)
	if !ok || !p.HasUser() {
		return uuid.Nil, status.Error(codes.Unauthenticated, "no user bound to request")
	}
	return p.UserID, nil
}

// requireTrusted rejects callers that are not an internal origin
func requireTrusted(ctx context.Context) error {
	p, ok := domain.PrincipalFrom(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "no principal bound to request")
	}
	if !p.Trusted {
		return status.Error(codes.PermissionDenied, "administrative operation")
	}
	return nil
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", field, err)
	}
	return id, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", field, err)
	}
	return amount, nil
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(domain.CurrencyPlaces)
}

// domainAccountToProto converts a domain Account to a proto Account message
func domainAccountToProto(a *domain.Account) *wealthtrackv1.Account {
	protoAccount := &wealthtrackv1.Account{
		Id:          a.ID.String(),
		Type:        string(a.Type),
		Details:     a.Details,
		MarketValue: formatAmount(a.MarketValue),
		OwnerUserId: a.OwnerUserID.String(),
		CreatedAt:   wealthtrackv1.NewTimestamp(a.CreatedAt),
		UpdatedAt:   wealthtrackv1.NewTimestamp(a.UpdatedAt),
	}

	// Stock fields only exist on stock accounts
	if a.StockSymbol != nil {
		protoAccount.StockSymbol = *a.StockSymbol
	}
	if a.Shares != nil {
		shares := *a.Shares
		protoAccount.Shares = &shares
	}

	return protoAccount
}

func domainTransactionToProto(tx *domain.Transaction) *wealthtrackv1.Transaction {
	return &wealthtrackv1.Transaction{
		Id:              tx.ID.String(),
		AccountId:       tx.AccountID.String(),
		Change:          formatAmount(tx.Change),
		PreviousBalance: formatAmount(tx.PreviousBalance),
		NewBalance:      formatAmount(tx.NewBalance),
		Reason:          string(tx.Reason),
		Note:            tx.Note,
		Timestamp:       wealthtrackv1.NewTimestamp(tx.Timestamp),
	}
}

func domainSnapshotToProto(snap *domain.MonthlySnapshot) *wealthtrackv1.Snapshot {
	return &wealthtrackv1.Snapshot{
		Id:               snap.ID.String(),
		Month:            snap.Month.Format(monthLayout),
		TotalMarketValue: formatAmount(snap.TotalMarketValue),
		UpdatedAt:        wealthtrackv1.NewTimestamp(snap.UpdatedAt),
	}
}

func refreshResultToProto(result *valuation.RefreshResult) *wealthtrackv1.RefreshAccountsResponse {
	return &wealthtrackv1.RefreshAccountsResponse{
		Scanned: int32(result.Scanned),
		Updated: int32(result.Updated),
		Skipped: int32(result.Skipped),
	}
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	errorMsg := err.Error()
	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, errorMsg)
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, errorMsg)
	case errors.Is(err, domain.ErrInsufficientFunds):
		return status.Error(codes.FailedPrecondition, errorMsg)
	case errors.Is(err, domain.ErrMarketDataUnavailable):
		return status.Error(codes.Unavailable, errorMsg)
	case errors.Is(err, domain.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, errorMsg)
	case errors.Is(err, domain.ErrConflict):
		return status.Error(codes.AlreadyExists, errorMsg)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, errorMsg)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Error(codes.Internal, errorMsg)
}
