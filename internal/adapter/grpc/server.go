package grpc

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/simaogato/savings-splitter/internal/auth"
	"github.com/simaogato/savings-splitter/internal/domain"
	"github.com/simaogato/savings-splitter/internal/usecase/account"
	"github.com/simaogato/savings-splitter/internal/usecase/dashboard"
	"github.com/simaogato/savings-splitter/internal/usecase/funds"
	"github.com/simaogato/savings-splitter/internal/usecase/rules"
	"github.com/simaogato/savings-splitter/internal/usecase/scheme"
)

// Server implements the SavingsService gRPC server
type Server struct {
	AccountService   *account.AccountService
	FundsService     *funds.FundsService
	SchemeService    *scheme.SchemeService
	RuleService      *rules.RuleService
	DashboardService *dashboard.DashboardService

	validate *validator.Validate
}

var _ SavingsServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(
	accountService *account.AccountService,
	fundsService *funds.FundsService,
	schemeService *scheme.SchemeService,
	ruleService *rules.RuleService,
	dashboardService *dashboard.DashboardService,
) *Server {
	return &Server{
		AccountService:   accountService,
		FundsService:     fundsService,
		SchemeService:    schemeService,
		RuleService:      ruleService,
		DashboardService: dashboardService,
		validate:         newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names so messages match what the client sent
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates req against its struct tags and returns InvalidArgument on failure
func (s *Server) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
		}
	}
	return status.Error(codes.InvalidArgument, "invalid request: "+strings.Join(msgs, "; "))
}

func userID(ctx context.Context) (uuid.UUID, error) {
	id, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, status.Error(codes.Unauthenticated, "missing user identity")
	}
	return id, nil
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", field, err)
	}
	return amount, nil
}

func parseOptionalAmount(field string, s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	amount, err := parseAmount(field, *s)
	if err != nil {
		return nil, err
	}
	return &amount, nil
}

func parseID(field, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", field, err)
	}
	return id, nil
}

// OpenAccount handles the OpenAccount RPC
func (s *Server) OpenAccount(ctx context.Context, req *OpenAccountRequest) (*OpenAccountResponse, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}

	acc, created, err := s.AccountService.OpenAccount(ctx, uid)
	if err != nil {
		return nil, mapError(err)
	}

	return &OpenAccountResponse{
		Account: &Account{
			ID:        acc.ID.String(),
			Balance:   money(acc.Balance),
			CreatedAt: timestamppb.New(acc.CreatedAt),
		},
		Created: created,
	}, nil
}

// Deposit handles the Deposit RPC
func (s *Server) Deposit(ctx context.Context, req *DepositRequest) (*DepositResponse, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	result, err := s.FundsService.Deposit(ctx, uid, amount)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &DepositResponse{
		MainBalance:    money(result.MainBalance),
		Splits:         make([]*SplitLeg, 0, len(result.Splits)),
		Unallocated:    money(result.Unallocated),
		TransactionIDs: make([]string, 0, len(result.TransactionIDs)),
	}
	for _, leg := range result.Splits {
		resp.Splits = append(resp.Splits, &SplitLeg{
			SchemeID:      leg.SchemeID.String(),
			SchemeName:    leg.SchemeName,
			SplitType:     string(leg.Type),
			Value:         leg.Value.String(),
			Amount:        money(leg.Amount),
			TransactionID: leg.TransactionID.String(),
		})
	}
	for _, id := range result.TransactionIDs {
		resp.TransactionIDs = append(resp.TransactionIDs, id.String())
	}
	return resp, nil
}

// Withdraw handles the Withdraw RPC
func (s *Server) Withdraw(ctx context.Context, req *WithdrawRequest) (*WithdrawResponse, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	schemeID, err := parseID("schemeId", req.SchemeID)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	result, err := s.FundsService.Withdraw(ctx, uid, schemeID, amount)
	if err != nil {
		return nil, mapError(err)
	}

	return &WithdrawResponse{
		MainBalance:   money(result.MainBalance),
		SchemeBalance: money(result.SchemeBalance),
		TransactionID: result.TransactionID.String(),
	}, nil
}

// GetMainBalance handles the GetMainBalance RPC
func (s *Server) GetMainBalance(ctx context.Context, req *GetMainBalanceRequest) (*GetMainBalanceResponse, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.DashboardService.GetMainBalance(ctx, uid)
	if err != nil {
		return nil, mapError(err)
	}

	return &GetMainBalanceResponse{
		MainBalance:  money(result.Main),
		SchemesTotal: money(result.Schemes),
	}, nil
}

// ListTransactions handles the ListTransactions RPC
func (s *Server) ListTransactions(ctx context.Context, req *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}

	page, err := s.DashboardService.ListTransactions(ctx, uid, req.Limit, req.Offset)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListTransactionsResponse{
		Transactions: make([]*Transaction, 0, len(page.Transactions)),
		Total:        page.Total,
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
	for _, view := range page.Transactions {
		resp.Transactions = append(resp.Transactions, toTransaction(view))
	}
	return resp, nil
}

// ListSchemes handles the ListSchemes RPC
func (s *Server) ListSchemes(ctx context.Context, req *ListSchemesRequest) (*ListSchemesResponse, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}

	schemes, err := s.DashboardService.ListSchemes(ctx, uid)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListSchemesResponse{Schemes: make([]*Scheme, 0, len(schemes))}
	for _, sb := range schemes {
		resp.Schemes = append(resp.Schemes, toScheme(sb))
	}
	return resp, nil
}

// GetScheme handles the GetScheme RPC
func (s *Server) GetScheme(ctx context.Context, req *GetSchemeRequest) (*SchemeResponse, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	schemeID, err := parseID("schemeId", req.SchemeID)
	if err != nil {
		return nil, err
	}

	sb, err := s.SchemeService.GetScheme(ctx, uid, schemeID)
	if err != nil {
		return nil, mapError(err)
	}
	return &SchemeResponse{Scheme: toScheme(*sb)}, nil
}

// CreateScheme handles the CreateScheme RPC
func (s *Server) CreateScheme(ctx context.Context, req *CreateSchemeRequest) (*SchemeResponse, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}

	input := scheme.CreateSchemeInput{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.TargetAmount != "" {
		target, err := parseAmount("targetAmount", req.TargetAmount)
		if err != nil {
			return nil, err
		}
		input.TargetAmount = target
	}

	sb, err := s.SchemeService.CreateScheme(ctx, uid, input)
	if err != nil {
		return nil, mapError(err)
	}
	return &SchemeResponse{Scheme: toScheme(*sb)}, nil
}

// UpdateScheme handles the UpdateScheme RPC
func (s *Server) UpdateScheme(ctx context.Context, req *UpdateSchemeRequest) (*SchemeResponse, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	schemeID, err := parseID("schemeId", req.SchemeID)
	if err != nil {
		return nil, err
	}
	target, err := parseOptionalAmount("targetAmount", req.TargetAmount)
	if err != nil {
		return nil, err
	}

	sb, err := s.SchemeService.UpdateScheme(ctx, uid, schemeID, scheme.UpdateSchemeInput{
		Name:         req.Name,
		Description:  req.Description,
		TargetAmount: target,
		IsActive:     req.IsActive,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &SchemeResponse{Scheme: toScheme(*sb)}, nil
}

// DeleteScheme handles the DeleteScheme RPC
func (s *Server) DeleteScheme(ctx context.Context, req *DeleteSchemeRequest) (*DeleteSchemeResponse, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	schemeID, err := parseID("schemeId", req.SchemeID)
	if err != nil {
		return nil, err
	}

	if err := s.SchemeService.DeleteScheme(ctx, uid, schemeID); err != nil {
		return nil, mapError(err)
	}
	return &DeleteSchemeResponse{}, nil
}

// UpsertRule handles the UpsertRule RPC
func (s *Server) UpsertRule(ctx context.Context, req *UpsertRuleRequest) (*UpsertRuleResponse, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	schemeID, err := parseID("schemeId", req.SchemeID)
	if err != nil {
		return nil, err
	}
	value, err := parseOptionalAmount("value", req.Value)
	if err != nil {
		return nil, err
	}
	percentage, err := parseOptionalAmount("percentage", req.Percentage)
	if err != nil {
		return nil, err
	}

	rule, created, err := s.RuleService.CreateOrUpdateRule(ctx, uid, rules.RuleInput{
		SchemeID:   schemeID,
		SplitType:  req.SplitType,
		Value:      value,
		Percentage: percentage,
		IsActive:   req.IsActive,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &UpsertRuleResponse{Rule: toRule(*rule, ""), Created: created}, nil
}

// ListRules handles the ListRules RPC
func (s *Server) ListRules(ctx context.Context, req *ListRulesRequest) (*ListRulesResponse, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.RuleService.ListRules(ctx, uid)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListRulesResponse{
		Rules:            make([]*Rule, 0, len(list.Rules)),
		ActivePercentage: list.ActivePercentage.String(),
	}
	for _, view := range list.Rules {
		resp.Rules = append(resp.Rules, toRule(view.Rule, view.SchemeName))
	}
	return resp, nil
}

// DeleteRule handles the DeleteRule RPC
func (s *Server) DeleteRule(ctx context.Context, req *DeleteRuleRequest) (*DeleteRuleResponse, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	ruleID, err := parseID("ruleId", req.RuleID)
	if err != nil {
		return nil, err
	}

	if err := s.RuleService.DeleteRule(ctx, uid, ruleID); err != nil {
		return nil, mapError(err)
	}
	return &DeleteRuleResponse{}, nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// toScheme converts a scheme and its live balance to the wire message
func toScheme(sb domain.SchemeBalance) *Scheme {
	msg := &Scheme{
		ID:           sb.Scheme.ID.String(),
		Name:         sb.Scheme.Name,
		Description:  sb.Scheme.Description,
		TargetAmount: money(sb.Scheme.TargetAmount),
		Balance:      money(sb.Balance()),
		Progress:     sb.Progress().StringFixed(2),
		IsActive:     sb.Scheme.IsActive,
		CreatedAt:    timestamppb.New(sb.Scheme.CreatedAt),
	}
	if sb.SubAccount != nil {
		msg.SubAccountID = sb.SubAccount.ID.String()
	}
	return msg
}

func toRule(rule domain.SplitRule, schemeName string) *Rule {
	return &Rule{
		ID:         rule.ID.String(),
		SchemeID:   rule.SchemeID.String(),
		SchemeName: schemeName,
		SplitType:  string(rule.Type),
		Value:      rule.Value.String(),
		IsActive:   rule.IsActive,
		CreatedAt:  timestamppb.New(rule.CreatedAt),
		UpdatedAt:  timestamppb.New(rule.UpdatedAt),
	}
}

func toTransaction(view domain.TransactionView) *Transaction {
	msg := &Transaction{
		ID:          view.ID.String(),
		Type:        string(view.Type),
		Amount:      money(view.Amount),
		SchemeName:  view.SchemeName,
		Description: view.Description,
		Date:        timestamppb.New(view.Date),
	}
	if view.SchemeID != nil {
		msg.SchemeID = view.SchemeID.String()
	}
	return msg
}
