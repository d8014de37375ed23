package grpc

import "google.golang.org/protobuf/types/known/timestamppb"

// Amounts travel as decimal strings with two places, ids as canonical uuid strings.

type Account struct {
	ID        string                 `json:"id"`
	Balance   string                 `json:"balance"`
	CreatedAt *timestamppb.Timestamp `json:"createdAt,omitempty"`
}

type Scheme struct {
	ID           string                 `json:"id"`
	SubAccountID string                 `json:"subAccountId,omitempty"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description,omitempty"`
	TargetAmount string                 `json:"targetAmount"`
	Balance      string                 `json:"balance"`
	Progress     string                 `json:"progress"`
	IsActive     bool                   `json:"isActive"`
	CreatedAt    *timestamppb.Timestamp `json:"createdAt,omitempty"`
}

type Rule struct {
	ID         string                 `json:"id"`
	SchemeID   string                 `json:"schemeId"`
	SchemeName string                 `json:"schemeName,omitempty"`
	SplitType  string                 `json:"splitType"`
	Value      string                 `json:"value"`
	IsActive   bool                   `json:"isActive"`
	CreatedAt  *timestamppb.Timestamp `json:"createdAt,omitempty"`
	UpdatedAt  *timestamppb.Timestamp `json:"updatedAt,omitempty"`
}

type Transaction struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Amount      string                 `json:"amount"`
	SchemeID    string                 `json:"schemeId,omitempty"`
	SchemeName  string                 `json:"schemeName,omitempty"`
	Description string                 `json:"description"`
	Date        *timestamppb.Timestamp `json:"date"`
}

type SplitLeg struct {
	SchemeID      string `json:"schemeId"`
	SchemeName    string `json:"schemeName"`
	SplitType     string `json:"splitType"`
	Value         string `json:"value"`
	Amount        string `json:"amount"`
	TransactionID string `json:"transactionId"`
}

type OpenAccountRequest struct{}

type OpenAccountResponse struct {
	Account *Account `json:"account"`
	Created bool     `json:"created"`
}

type DepositRequest struct {
	Amount string `json:"amount" validate:"required,numeric"`
}

type DepositResponse struct {
	MainBalance    string      `json:"mainBalance"`
	Splits         []*SplitLeg `json:"splits"`
	Unallocated    string      `json:"unallocated"`
	TransactionIDs []string    `json:"transactionIds"`
}

type WithdrawRequest struct {
	SchemeID string `json:"schemeId" validate:"required,uuid"`
	Amount   string `json:"amount" validate:"required,numeric"`
}

type WithdrawResponse struct {
	MainBalance   string `json:"mainBalance"`
	SchemeBalance string `json:"schemeBalance"`
	TransactionID string `json:"transactionId"`
}

type GetMainBalanceRequest struct{}

type GetMainBalanceResponse struct {
	MainBalance  string `json:"mainBalance"`
	SchemesTotal string `json:"schemesTotal"`
}

type ListTransactionsRequest struct {
	Limit  int `json:"limit,omitempty" validate:"gte=0"`
	Offset int `json:"offset,omitempty" validate:"gte=0"`
}

type ListTransactionsResponse struct {
	Transactions []*Transaction `json:"transactions"`
	Total        int            `json:"total"`
	Limit        int            `json:"limit"`
	Offset       int            `json:"offset"`
}

type ListSchemesRequest struct{}

type ListSchemesResponse struct {
	Schemes []*Scheme `json:"schemes"`
}

type GetSchemeRequest struct {
	SchemeID string `json:"schemeId" validate:"required,uuid"`
}

type CreateSchemeRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Description  string `json:"description,omitempty" validate:"max=500"`
	TargetAmount string `json:"targetAmount,omitempty" validate:"omitempty,numeric"`
}

// UpdateSchemeRequest changes only the fields that are set
type UpdateSchemeRequest struct {
	SchemeID     string  `json:"schemeId" validate:"required,uuid"`
	Name         *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=500"`
	TargetAmount *string `json:"targetAmount,omitempty" validate:"omitempty,numeric"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

type SchemeResponse struct {
	Scheme *Scheme `json:"scheme"`
}

type DeleteSchemeRequest struct {
	SchemeID string `json:"schemeId" validate:"required,uuid"`
}

type DeleteSchemeResponse struct{}

// UpsertRuleRequest accepts the legacy percentage field next to splitType/value
type UpsertRuleRequest struct {
	SchemeID   string  `json:"schemeId" validate:"required,uuid"`
	SplitType  string  `json:"splitType,omitempty"`
	Value      *string `json:"value,omitempty" validate:"omitempty,numeric"`
	Percentage *string `json:"percentage,omitempty" validate:"omitempty,numeric"`
	IsActive   *bool   `json:"isActive,omitempty"`
}

type UpsertRuleResponse struct {
	Rule    *Rule `json:"rule"`
	Created bool  `json:"created"`
}

type ListRulesRequest struct{}

type ListRulesResponse struct {
	Rules            []*Rule `json:"rules"`
	ActivePercentage string  `json:"activePercentage"`
}

type DeleteRuleRequest struct {
	RuleID string `json:"ruleId" validate:"required,uuid"`
}

type DeleteRuleResponse struct{}
