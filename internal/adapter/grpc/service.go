package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "savings.v1.SavingsService"

// SavingsServiceServer is the server API for the savings service
type SavingsServiceServer interface {
	OpenAccount(context.Context, *OpenAccountRequest) (*OpenAccountResponse, error)
	Deposit(context.Context, *DepositRequest) (*DepositResponse, error)
	Withdraw(context.Context, *WithdrawRequest) (*WithdrawResponse, error)
	GetMainBalance(context.Context, *GetMainBalanceRequest) (*GetMainBalanceResponse, error)
	ListTransactions(context.Context, *ListTransactionsRequest) (*ListTransactionsResponse, error)
	ListSchemes(context.Context, *ListSchemesRequest) (*ListSchemesResponse, error)
	GetScheme(context.Context, *GetSchemeRequest) (*SchemeResponse, error)
	CreateScheme(context.Context, *CreateSchemeRequest) (*SchemeResponse, error)
	UpdateScheme(context.Context, *UpdateSchemeRequest) (*SchemeResponse, error)
	DeleteScheme(context.Context, *DeleteSchemeRequest) (*DeleteSchemeResponse, error)
	UpsertRule(context.Context, *UpsertRuleRequest) (*UpsertRuleResponse, error)
	ListRules(context.Context, *ListRulesRequest) (*ListRulesResponse, error)
	DeleteRule(context.Context, *DeleteRuleRequest) (*DeleteRuleResponse, error)
}

// unary adapts a typed server method to a grpc.MethodDesc, running the
// server interceptor chain the same way generated code does.
func unary[Req, Resp any](name string, call func(SavingsServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SavingsServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SavingsServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// SavingsServiceDesc describes the savings service for grpc.ServiceRegistrar
var SavingsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SavingsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("OpenAccount", SavingsServiceServer.OpenAccount),
		unary("Deposit", SavingsServiceServer.Deposit),
		unary("Withdraw", SavingsServiceServer.Withdraw),
		unary("GetMainBalance", SavingsServiceServer.GetMainBalance),
		unary("ListTransactions", SavingsServiceServer.ListTransactions),
		unary("ListSchemes", SavingsServiceServer.ListSchemes),
		unary("GetScheme", SavingsServiceServer.GetScheme),
		unary("CreateScheme", SavingsServiceServer.CreateScheme),
		unary("UpdateScheme", SavingsServiceServer.UpdateScheme),
		unary("DeleteScheme", SavingsServiceServer.DeleteScheme),
		unary("UpsertRule", SavingsServiceServer.UpsertRule),
		unary("ListRules", SavingsServiceServer.ListRules),
		unary("DeleteRule", SavingsServiceServer.DeleteRule),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "savings/v1/savings.json",
}

// RegisterSavingsServiceServer registers srv on s
func RegisterSavingsServiceServer(s grpc.ServiceRegistrar, srv SavingsServiceServer) {
	s.RegisterService(&SavingsServiceDesc, srv)
}

// SavingsServiceClient is a client for the savings service.
// Every call is sent with the JSON content-subtype.
type SavingsServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSavingsServiceClient creates a new client on cc
func NewSavingsServiceClient(cc grpc.ClientConnInterface) *SavingsServiceClient {
	return &SavingsServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *SavingsServiceClient, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SavingsServiceClient) OpenAccount(ctx context.Context, in *OpenAccountRequest, opts ...grpc.CallOption) (*OpenAccountResponse, error) {
	return invoke[OpenAccountResponse](ctx, c, "OpenAccount", in, opts)
}

func (c *SavingsServiceClient) Deposit(ctx context.Context, in *DepositRequest, opts ...grpc.CallOption) (*DepositResponse, error) {
	return invoke[DepositResponse](ctx, c, "Deposit", in, opts)
}

func (c *SavingsServiceClient) Withdraw(ctx context.Context, in *WithdrawRequest, opts ...grpc.CallOption) (*WithdrawResponse, error) {
	return invoke[WithdrawResponse](ctx, c, "Withdraw", in, opts)
}

func (c *SavingsServiceClient) GetMainBalance(ctx context.Context, in *GetMainBalanceRequest, opts ...grpc.CallOption) (*GetMainBalanceResponse, error) {
	return invoke[GetMainBalanceResponse](ctx, c, "GetMainBalance", in, opts)
}

func (c *SavingsServiceClient) ListTransactions(ctx context.Context, in *ListTransactionsRequest, opts ...grpc.CallOption) (*ListTransactionsResponse, error) {
	return invoke[ListTransactionsResponse](ctx, c, "ListTransactions", in, opts)
}

func (c *SavingsServiceClient) ListSchemes(ctx context.Context, in *ListSchemesRequest, opts ...grpc.CallOption) (*ListSchemesResponse, error) {
	return invoke[ListSchemesResponse](ctx, c, "ListSchemes", in, opts)
}

func (c *SavingsServiceClient) GetScheme(ctx context.Context, in *GetSchemeRequest, opts ...grpc.CallOption) (*SchemeResponse, error) {
	return invoke[SchemeResponse](ctx, c, "GetScheme", in, opts)
}

func (c *SavingsServiceClient) CreateScheme(ctx context.Context, in *CreateSchemeRequest, opts ...grpc.CallOption) (*SchemeResponse, error) {
	return invoke[SchemeResponse](ctx, c, "CreateScheme", in, opts)
}

func (c *SavingsServiceClient) UpdateScheme(ctx context.Context, in *UpdateSchemeRequest, opts ...grpc.CallOption) (*SchemeResponse, error) {
	return invoke[SchemeResponse](ctx, c, "UpdateScheme", in, opts)
}

func (c *SavingsServiceClient) DeleteScheme(ctx context.Context, in *DeleteSchemeRequest, opts ...grpc.CallOption) (*DeleteSchemeResponse, error) {
	return invoke[DeleteSchemeResponse](ctx, c, "DeleteScheme", in, opts)
}

func (c *SavingsServiceClient) UpsertRule(ctx context.Context, in *UpsertRuleRequest, opts ...grpc.CallOption) (*UpsertRuleResponse, error) {
	return invoke[UpsertRuleResponse](ctx, c, "UpsertRule", in, opts)
}

func (c *SavingsServiceClient) ListRules(ctx context.Context, in *ListRulesRequest, opts ...grpc.CallOption) (*ListRulesResponse, error) {
	return invoke[ListRulesResponse](ctx, c, "ListRules", in, opts)
}

func (c *SavingsServiceClient) DeleteRule(ctx context.Context, in *DeleteRuleRequest, opts ...grpc.CallOption) (*DeleteRuleResponse, error) {
	return invoke[DeleteRuleResponse](ctx, c, "DeleteRule", in, opts)
}
