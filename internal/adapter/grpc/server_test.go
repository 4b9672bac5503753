package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	wealthtrackv1 "github.com/simaogato/wealthtrack-backend/internal/adapter/grpc/wealthtrack/v1"
	"github.com/simaogato/wealthtrack-backend/internal/adapter/repository/memory"
	"github.com/simaogato/wealthtrack-backend/internal/auth"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/log"
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

const testAPIToken = "admin-token"

type fixedMarketData struct {
	price decimal.Decimal
	rate  decimal.Decimal
}

func (f fixedMarketData) StockPrice(context.Context, string) (decimal.Decimal, error) {
	return f.price, nil
}

func (f fixedMarketData) ExchangeRate(context.Context) (decimal.Decimal, error) {
	return f.rate, nil
}

// startServer serves the full API over an in-memory listener
func startServer(t *testing.T) *wealthtrackv1.WealthTrackServiceClient {
	t.Helper()

	store := memory.NewStore()
	logger := log.Discard()
	md := fixedMarketData{price: decimal.RequireFromString("150"), rate: decimal.RequireFromString("7")}
	tokens, err := auth.NewTokens("0123456789abcdef-test", time.Hour)
	require.NoError(t, err)

	srv := NewServer(Services{
		Users:      user.NewUserService(store.Users(), tokens, user.PasswordHasher{Hash: auth.HashPassword, Check: auth.CheckPassword}),
		Accounts:   account.NewAccountService(store, md, nil, logger),
		Refresh:    valuation.NewRefreshService(store, md, nil, logger, 2),
		Transfers:  transfer.NewTransferService(store, nil, logger),
		Inflows:    inflow.NewInflowService(store, nil, logger),
		Expenses:   expense.NewExpenseService(store, nil, logger),
		Dashboard:  dashboard.NewDashboardService(store.Accounts(), store.Transactions()),
		Investment: investment.NewInvestmentService(store.Accounts(), store.Transactions()),
		Snapshots:  snapshot.NewSnapshotService(store, logger),
	})

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(AuthInterceptor(AuthConfig{
		APIToken:      testAPIToken,
		Tokens:        tokens,
		TrustedUserID: uuid.New(),
	})))
	wealthtrackv1.RegisterWealthTrackServiceServer(grpcServer, srv)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return wealthtrackv1.NewWealthTrackServiceClient(conn)
}

func authed(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", token)
}

func login(t *testing.T, client *wealthtrackv1.WealthTrackServiceClient, username string) context.Context {
	t.Helper()
	_, err := client.Register(context.Background(), &wealthtrackv1.RegisterRequest{Username: username, Password: "password123"})
	require.NoError(t, err)
	resp, err := client.Login(context.Background(), &wealthtrackv1.LoginRequest{Username: username, Password: "password123"})
	require.NoError(t, err)
	return authed("Bearer " + resp.Token)
}

func requireCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "error should be a gRPC status")
	assert.Equal(t, code, st.Code(), st.Message())
}

func TestServer_AccountLifecycle(t *testing.T) {
	client := startServer(t)
	alice := login(t, client, "alice")
	bob := login(t, client, "bob")

	shares := int64(10)
	stock, err := client.CreateAccount(alice, &wealthtrackv1.CreateAccountRequest{
		Type:        string(domain.AccountTypeStock),
		Details:     "Brokerage",
		StockSymbol: "aapl",
		Shares:      &shares,
	})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", stock.Account.StockSymbol)
	assert.Equal(t, "10500.00", stock.Account.MarketValue)

	cash, err := client.CreateAccount(alice, &wealthtrackv1.CreateAccountRequest{
		Type:        string(domain.AccountTypeCash),
		Details:     "Wallet",
		MarketValue: "500",
	})
	require.NoError(t, err)
	assert.Equal(t, "500.00", cash.Account.MarketValue)

	// Other users cannot see the account
	_, err = client.GetAccount(bob, &wealthtrackv1.GetAccountRequest{AccountId: cash.Account.Id})
	requireCode(t, err, codes.NotFound)

	_, err = client.RecordExpense(alice, &wealthtrackv1.RecordExpenseRequest{AccountId: cash.Account.Id, Amount: "600", Reason: "rent"})
	requireCode(t, err, codes.FailedPrecondition)

	income, err := client.RecordIncome(alice, &wealthtrackv1.RecordIncomeRequest{AccountId: cash.Account.Id, Amount: "100.50", Reason: "salary"})
	require.NoError(t, err)
	assert.Equal(t, "600.50", income.Transaction.NewBalance)
	assert.Equal(t, "salary", income.Transaction.Note)

	_, err = client.RecordIncome(alice, &wealthtrackv1.RecordIncomeRequest{AccountId: cash.Account.Id, Amount: "abc"})
	requireCode(t, err, codes.InvalidArgument)

	profit, err := client.GetInvestmentProfit(alice, &wealthtrackv1.GetInvestmentProfitRequest{AccountId: stock.Account.Id})
	require.NoError(t, err)
	assert.Equal(t, "0.00", profit.Profit)
	assert.Equal(t, "10500.00", profit.BookValue)

	totals, err := client.GetTypeTotals(alice, &wealthtrackv1.GetTypeTotalsRequest{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"StockAccount": "10500.00", "CashAccount": "600.50"}, totals.Totals)

	worth, err := client.GetNetWorth(alice, &wealthtrackv1.GetNetWorthRequest{})
	require.NoError(t, err)
	assert.Equal(t, "11100.50", worth.Total)

	_, err = client.DeleteAccount(alice, &wealthtrackv1.DeleteAccountRequest{AccountId: cash.Account.Id})
	require.NoError(t, err)

	today := time.Now().UTC()
	ledger, err := client.ListTransactions(alice, &wealthtrackv1.ListTransactionsRequest{
		StartDate: today.AddDate(0, 0, -1).Format(dateLayout),
		EndDate:   today.AddDate(0, 0, 1).Format(dateLayout),
	})
	require.NoError(t, err)
	require.Len(t, ledger.Transactions, 4)
	assert.Equal(t, string(domain.ReasonDeletion), ledger.Transactions[0].Reason)
	assert.Equal(t, domain.DeletedAccountLabel, ledger.Transactions[0].AccountDetails)
	assert.Equal(t, "-600.50", ledger.Transactions[0].Change)

	empty, err := client.ListTransactions(bob, &wealthtrackv1.ListTransactionsRequest{
		StartDate: today.AddDate(0, 0, -1).Format(dateLayout),
		EndDate:   today.AddDate(0, 0, 1).Format(dateLayout),
	})
	require.NoError(t, err)
	assert.Empty(t, empty.Transactions)
}

func TestServer_Transfer(t *testing.T) {
	client := startServer(t)
	alice := login(t, client, "alice")

	from, err := client.CreateAccount(alice, &wealthtrackv1.CreateAccountRequest{Type: "CashAccount", Details: "Checking", MarketValue: "100"})
	require.NoError(t, err)
	to, err := client.CreateAccount(alice, &wealthtrackv1.CreateAccountRequest{Type: "CashAccount", Details: "Savings"})
	require.NoError(t, err)

	resp, err := client.Transfer(alice, &wealthtrackv1.TransferRequest{
		FromAccountId: from.Account.Id,
		ToAccountId:   to.Account.Id,
		Amount:        "40",
	})
	require.NoError(t, err)
	require.Len(t, resp.Transactions, 2)
	assert.Equal(t, "-40.00", resp.Transactions[0].Change)
	assert.Equal(t, "40.00", resp.Transactions[1].Change)

	_, err = client.Transfer(alice, &wealthtrackv1.TransferRequest{
		FromAccountId: from.Account.Id,
		ToAccountId:   from.Account.Id,
		Amount:        "1",
	})
	requireCode(t, err, codes.InvalidArgument)
}

func TestServer_AdministrativeRPCs(t *testing.T) {
	client := startServer(t)
	alice := login(t, client, "alice")
	admin := authed(testAPIToken)

	_, err := client.RefreshAllAccounts(alice, &wealthtrackv1.RefreshAccountsRequest{})
	requireCode(t, err, codes.PermissionDenied)
	_, err = client.SnapshotMonthlyTotal(alice, &wealthtrackv1.SnapshotMonthlyTotalRequest{})
	requireCode(t, err, codes.PermissionDenied)

	_, err = client.CreateAccount(alice, &wealthtrackv1.CreateAccountRequest{Type: "CashAccount", Details: "Wallet", MarketValue: "250"})
	require.NoError(t, err)

	refreshed, err := client.RefreshAllAccounts(admin, &wealthtrackv1.RefreshAccountsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int32(0), refreshed.Scanned)

	snap, err := client.SnapshotMonthlyTotal(admin, &wealthtrackv1.SnapshotMonthlyTotalRequest{})
	require.NoError(t, err)
	assert.Equal(t, "250.00", snap.Snapshot.TotalMarketValue)
	assert.Equal(t, time.Now().UTC().Format(monthLayout), snap.Snapshot.Month)

	recorded, err := client.RecordSnapshot(admin, &wealthtrackv1.RecordSnapshotRequest{Month: "2024-01", TotalMarketValue: "99.99"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01", recorded.Snapshot.Month)

	list, err := client.ListSnapshots(admin, &wealthtrackv1.ListSnapshotsRequest{})
	require.NoError(t, err)
	require.Len(t, list.Snapshots, 2)
	assert.Equal(t, "2024-01", list.Snapshots[0].Month)

	_, err = client.ListAccounts(context.Background(), &wealthtrackv1.ListAccountsRequest{})
	requireCode(t, err, codes.Unauthenticated)
}

func TestServer_DuplicateRegistration(t *testing.T) {
	client := startServer(t)
	login(t, client, "alice")

	_, err := client.Register(context.Background(), &wealthtrackv1.RegisterRequest{Username: "ALICE", Password: "password123"})
	requireCode(t, err, codes.AlreadyExists)

	_, err = client.Login(context.Background(), &wealthtrackv1.LoginRequest{Username: "alice", Password: "wrong-password"})
	requireCode(t, err, codes.Unauthenticated)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{domain.Validationf("bad"), codes.InvalidArgument},
		{fmt.Errorf("account: %w", domain.ErrNotFound), codes.NotFound},
		{fmt.Errorf("debit: %w", domain.ErrInsufficientFunds), codes.FailedPrecondition},
		{fmt.Errorf("quote: %w", domain.ErrMarketDataUnavailable), codes.Unavailable},
		{domain.ErrUnauthorized, codes.Unauthenticated},
		{domain.ErrConflict, codes.AlreadyExists},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("boom"), codes.Internal},
		{status.Error(codes.PermissionDenied, "no"), codes.PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			st, ok := status.FromError(mapError(tt.err))
			require.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
		})
	}
	assert.NoError(t, mapError(nil))
}
