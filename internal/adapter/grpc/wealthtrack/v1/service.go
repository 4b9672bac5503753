package wealthtrackv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "wealthtrack.v1.WealthTrackService"

// FullMethod returns the /service/method path of an RPC
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// WealthTrackServiceServer is the server API for WealthTrackService
type WealthTrackServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	CreateAccount(context.Context, *CreateAccountRequest) (*AccountResponse, error)
	GetAccount(context.Context, *GetAccountRequest) (*AccountResponse, error)
	ListAccounts(context.Context, *ListAccountsRequest) (*ListAccountsResponse, error)
	UpdateAccount(context.Context, *UpdateAccountRequest) (*AccountResponse, error)
	DeleteAccount(context.Context, *DeleteAccountRequest) (*Ack, error)
	RefreshAccounts(context.Context, *RefreshAccountsRequest) (*RefreshAccountsResponse, error)
	RefreshAllAccounts(context.Context, *RefreshAccountsRequest) (*RefreshAccountsResponse, error)
	Transfer(context.Context, *TransferRequest) (*TransferResponse, error)
	RecordIncome(context.Context, *RecordIncomeRequest) (*TransactionResponse, error)
	RecordExpense(context.Context, *RecordExpenseRequest) (*TransactionResponse, error)
	ListTransactions(context.Context, *ListTransactionsRequest) (*ListTransactionsResponse, error)
	GetInvestmentProfit(context.Context, *GetInvestmentProfitRequest) (*GetInvestmentProfitResponse, error)
	GetTypeTotals(context.Context, *GetTypeTotalsRequest) (*GetTypeTotalsResponse, error)
	GetNetWorth(context.Context, *GetNetWorthRequest) (*GetNetWorthResponse, error)
	ListSnapshots(context.Context, *ListSnapshotsRequest) (*ListSnapshotsResponse, error)
	RecordSnapshot(context.Context, *RecordSnapshotRequest) (*SnapshotResponse, error)
	SnapshotMonthlyTotal(context.Context, *SnapshotMonthlyTotalRequest) (*SnapshotResponse, error)
}

// UnimplementedWealthTrackServiceServer answers every RPC with codes.Unimplemented.
// Embed it to stay source compatible when RPCs are added.
type UnimplementedWealthTrackServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedWealthTrackServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedWealthTrackServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedWealthTrackServiceServer) CreateAccount(context.Context, *CreateAccountRequest) (*AccountResponse, error) {
	return nil, unimplemented("CreateAccount")
}
func (UnimplementedWealthTrackServiceServer) GetAccount(context.Context, *GetAccountRequest) (*AccountResponse, error) {
	return nil, unimplemented("GetAccount")
}
func (UnimplementedWealthTrackServiceServer) ListAccounts(context.Context, *ListAccountsRequest) (*ListAccountsResponse, error) {
	return nil, unimplemented("ListAccounts")
}
func (UnimplementedWealthTrackServiceServer) UpdateAccount(context.Context, *UpdateAccountRequest) (*AccountResponse, error) {
	return nil, unimplemented("UpdateAccount")
}
func (UnimplementedWealthTrackServiceServer) DeleteAccount(context.Context, *DeleteAccountRequest) (*Ack, error) {
	return nil, unimplemented("DeleteAccount")
}
func (UnimplementedWealthTrackServiceServer) RefreshAccounts(context.Context, *RefreshAccountsRequest) (*RefreshAccountsResponse, error) {
	return nil, unimplemented("RefreshAccounts")
}
func (UnimplementedWealthTrackServiceServer) RefreshAllAccounts(context.Context, *RefreshAccountsRequest) (*RefreshAccountsResponse, error) {
	return nil, unimplemented("RefreshAllAccounts")
}
func (UnimplementedWealthTrackServiceServer) Transfer(context.Context, *TransferRequest) (*TransferResponse, error) {
	return nil, unimplemented("Transfer")
}
func (UnimplementedWealthTrackServiceServer) RecordIncome(context.Context, *RecordIncomeRequest) (*TransactionResponse, error) {
	return nil, unimplemented("RecordIncome")
}
func (UnimplementedWealthTrackServiceServer) RecordExpense(context.Context, *RecordExpenseRequest) (*TransactionResponse, error) {
	return nil, unimplemented("RecordExpense")
}
func (UnimplementedWealthTrackServiceServer) ListTransactions(context.Context, *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	return nil, unimplemented("ListTransactions")
}
func (UnimplementedWealthTrackServiceServer) GetInvestmentProfit(context.Context, *GetInvestmentProfitRequest) (*GetInvestmentProfitResponse, error) {
	return nil, unimplemented("GetInvestmentProfit")
}
func (UnimplementedWealthTrackServiceServer) GetTypeTotals(context.Context, *GetTypeTotalsRequest) (*GetTypeTotalsResponse, error) {
	return nil, unimplemented("GetTypeTotals")
}
func (UnimplementedWealthTrackServiceServer) GetNetWorth(context.Context, *GetNetWorthRequest) (*GetNetWorthResponse, error) {
	return nil, unimplemented("GetNetWorth")
}
func (UnimplementedWealthTrackServiceServer) ListSnapshots(context.Context, *ListSnapshotsRequest) (*ListSnapshotsResponse, error) {
	return nil, unimplemented("ListSnapshots")
}
func (UnimplementedWealthTrackServiceServer) RecordSnapshot(context.Context, *RecordSnapshotRequest) (*SnapshotResponse, error) {
	return nil, unimplemented("RecordSnapshot")
}
func (UnimplementedWealthTrackServiceServer) SnapshotMonthlyTotal(context.Context, *SnapshotMonthlyTotalRequest) (*SnapshotResponse, error) {
	return nil, unimplemented("SnapshotMonthlyTotal")
}

// RegisterWealthTrackServiceServer registers srv on s
func RegisterWealthTrackServiceServer(s grpc.ServiceRegistrar, srv WealthTrackServiceServer) {
	s.RegisterService(&WealthTrackService_ServiceDesc, srv)
}

// unaryHandler adapts a typed server method to a grpc.MethodHandler
func unaryHandler[Req any, Resp any](method string, call func(WealthTrackServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(WealthTrackServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(WealthTrackServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func method[Req any, Resp any](name string, call func(WealthTrackServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{MethodName: name, Handler: unaryHandler(name, call)}
}

// WealthTrackService_ServiceDesc is the grpc.ServiceDesc for WealthTrackService
var WealthTrackService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WealthTrackServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method("Register", WealthTrackServiceServer.Register),
		method("Login", WealthTrackServiceServer.Login),
		method("CreateAccount", WealthTrackServiceServer.CreateAccount),
		method("GetAccount", WealthTrackServiceServer.GetAccount),
		method("ListAccounts", WealthTrackServiceServer.ListAccounts),
		method("UpdateAccount", WealthTrackServiceServer.UpdateAccount),
		method("DeleteAccount", WealthTrackServiceServer.DeleteAccount),
		method("RefreshAccounts", WealthTrackServiceServer.RefreshAccounts),
		method("RefreshAllAccounts", WealthTrackServiceServer.RefreshAllAccounts),
		method("Transfer", WealthTrackServiceServer.Transfer),
		method("RecordIncome", WealthTrackServiceServer.RecordIncome),
		method("RecordExpense", WealthTrackServiceServer.RecordExpense),
		method("ListTransactions", WealthTrackServiceServer.ListTransactions),
		method("GetInvestmentProfit", WealthTrackServiceServer.GetInvestmentProfit),
		method("GetTypeTotals", WealthTrackServiceServer.GetTypeTotals),
		method("GetNetWorth", WealthTrackServiceServer.GetNetWorth),
		method("ListSnapshots", WealthTrackServiceServer.ListSnapshots),
		method("RecordSnapshot", WealthTrackServiceServer.RecordSnapshot),
		method("SnapshotMonthlyTotal", WealthTrackServiceServer.SnapshotMonthlyTotal),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wealthtrack/v1/wealthtrack.json",
}
