package wealthtrackv1

import (
	"context"

	"google.golang.org/grpc"
)

// WealthTrackServiceClient is the typed client of WealthTrackService
type WealthTrackServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewWealthTrackServiceClient creates a client over cc
func NewWealthTrackServiceClient(cc grpc.ClientConnInterface) *WealthTrackServiceClient {
	return &WealthTrackServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append(CallOptions(), opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *WealthTrackServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, "Register", in, opts)
}

func (c *WealthTrackServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, "Login", in, opts)
}

func (c *WealthTrackServiceClient) CreateAccount(ctx context.Context, in *CreateAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[AccountResponse](ctx, c.cc, "CreateAccount", in, opts)
}

func (c *WealthTrackServiceClient) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[AccountResponse](ctx, c.cc, "GetAccount", in, opts)
}

func (c *WealthTrackServiceClient) ListAccounts(ctx context.Context, in *ListAccountsRequest, opts ...grpc.CallOption) (*ListAccountsResponse, error) {
	return invoke[ListAccountsResponse](ctx, c.cc, "ListAccounts", in, opts)
}

func (c *WealthTrackServiceClient) UpdateAccount(ctx context.Context, in *UpdateAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[AccountResponse](ctx, c.cc, "UpdateAccount", in, opts)
}

func (c *WealthTrackServiceClient) DeleteAccount(ctx context.Context, in *DeleteAccountRequest, opts ...grpc.CallOption) (*Ack, error) {
	return invoke[Ack](ctx, c.cc, "DeleteAccount", in, opts)
}

func (c *WealthTrackServiceClient) RefreshAccounts(ctx context.Context, in *RefreshAccountsRequest, opts ...grpc.CallOption) (*RefreshAccountsResponse, error) {
	return invoke[RefreshAccountsResponse](ctx, c.cc, "RefreshAccounts", in, opts)
}

func (c *WealthTrackServiceClient) RefreshAllAccounts(ctx context.Context, in *RefreshAccountsRequest, opts ...grpc.CallOption) (*RefreshAccountsResponse, error) {
	return invoke[RefreshAccountsResponse](ctx, c.cc, "RefreshAllAccounts", in, opts)
}

func (c *WealthTrackServiceClient) Transfer(ctx context.Context, in *TransferRequest, opts ...grpc.CallOption) (*TransferResponse, error) {
	return invoke[TransferResponse](ctx, c.cc, "Transfer", in, opts)
}

func (c *WealthTrackServiceClient) RecordIncome(ctx context.Context, in *RecordIncomeRequest, opts ...grpc.CallOption) (*TransactionResponse, error) {
	return invoke[TransactionResponse](ctx, c.cc, "RecordIncome", in, opts)
}

func (c *WealthTrackServiceClient) RecordExpense(ctx context.Context, in *RecordExpenseRequest, opts ...grpc.CallOption) (*TransactionResponse, error) {
	return invoke[TransactionResponse](ctx, c.cc, "RecordExpense", in, opts)
}

func (c *WealthTrackServiceClient) ListTransactions(ctx context.Context, in *ListTransactionsRequest, opts ...grpc.CallOption) (*ListTransactionsResponse, error) {
	return invoke[ListTransactionsResponse](ctx, c.cc, "ListTransactions", in, opts)
}

func (c *WealthTrackServiceClient) GetInvestmentProfit(ctx context.Context, in *GetInvestmentProfitRequest, opts ...grpc.CallOption) (*GetInvestmentProfitResponse, error) {
	return invoke[GetInvestmentProfitResponse](ctx, c.cc, "GetInvestmentProfit", in, opts)
}

func (c *WealthTrackServiceClient) GetTypeTotals(ctx context.Context, in *GetTypeTotalsRequest, opts ...grpc.CallOption) (*GetTypeTotalsResponse, error) {
	return invoke[GetTypeTotalsResponse](ctx, c.cc, "GetTypeTotals", in, opts)
}

func (c *WealthTrackServiceClient) GetNetWorth(ctx context.Context, in *GetNetWorthRequest, opts ...grpc.CallOption) (*GetNetWorthResponse, error) {
	return invoke[GetNetWorthResponse](ctx, c.cc, "GetNetWorth", in, opts)
}

func (c *WealthTrackServiceClient) ListSnapshots(ctx context.Context, in *ListSnapshotsRequest, opts ...grpc.CallOption) (*ListSnapshotsResponse, error) {
	return invoke[ListSnapshotsResponse](ctx, c.cc, "ListSnapshots", in, opts)
}

func (c *WealthTrackServiceClient) RecordSnapshot(ctx context.Context, in *RecordSnapshotRequest, opts ...grpc.CallOption) (*SnapshotResponse, error) {
	return invoke[SnapshotResponse](ctx, c.cc, "RecordSnapshot", in, opts)
}

func (c *WealthTrackServiceClient) SnapshotMonthlyTotal(ctx context.Context, in *SnapshotMonthlyTotalRequest, opts ...grpc.CallOption) (*SnapshotResponse, error) {
	return invoke[SnapshotResponse](ctx, c.cc, "SnapshotMonthlyTotal", in, opts)
}
