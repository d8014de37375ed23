package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/simaogato/savings-splitter/internal/domain"
)

var errReadOnly = errors.New("write attempted in a read-only view")

// partition holds every record of one user
type partition struct {
	account      *domain.Account
	schemes      []*domain.SavingsScheme // creation order
	subAccounts  map[uuid.UUID]*domain.SubAccount
	rules        []*domain.SplitRule   // insertion order
	transactions []*domain.Transaction // append order
}

func newPartition() *partition {
	return &partition{subAccounts: make(map[uuid.UUID]*domain.SubAccount)}
}

func (p *partition) clone() *partition {
	c := newPartition()
	if p.account != nil {
		a := *p.account
		c.account = &a
	}
	c.schemes = make([]*domain.SavingsScheme, 0, len(p.schemes))
	for _, s := range p.schemes {
		cp := *s
		c.schemes = append(c.schemes, &cp)
	}
	for k, sa := range p.subAccounts {
		cp := *sa
		c.subAccounts[k] = &cp
	}
	c.rules = make([]*domain.SplitRule, 0, len(p.rules))
	for _, r := range p.rules {
		cp := *r
		c.rules = append(c.rules, &cp)
	}
	// Ledger rows are immutable, sharing them is safe
	c.transactions = append(make([]*domain.Transaction, 0, len(p.transactions)+4), p.transactions...)
	return c
}

// repositories binds the five repositories to one partition
type repositories struct {
	userID   uuid.UUID
	p        *partition
	readOnly bool
}

func (r *repositories) Accounts() domain.AccountRepository         { return accountRepository{r} }
func (r *repositories) Schemes() domain.SchemeRepository           { return schemeRepository{r} }
func (r *repositories) SubAccounts() domain.SubAccountRepository   { return subAccountRepository{r} }
func (r *repositories) SplitRules() domain.SplitRuleRepository     { return splitRuleRepository{r} }
func (r *repositories) Transactions() domain.TransactionRepository { return transactionRepository{r} }

// owns reports whether userID is the partition owner
func (r *repositories) owns(userID uuid.UUID) bool {
	return userID == r.userID
}

// writable checks that the caller may write records of userID
func (r *repositories) writable(userID uuid.UUID) error {
	if r.readOnly {
		return errReadOnly
	}
	if !r.owns(userID) {
		return errors.New("record belongs to a different user than the unit of work")
	}
	return nil
}

// accountRepository implements domain.AccountRepository
type accountRepository struct{ r *repositories }

func (a accountRepository) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Account, error) {
	if !a.r.owns(userID) || a.r.p.account == nil {
		return nil, domain.NotFoundf("main account not found for user %s", userID)
	}
	cp := *a.r.p.account
	return &cp, nil
}

func (a accountRepository) Create(_ context.Context, account *domain.Account) error {
	if err := a.r.writable(account.UserID); err != nil {
		return err
	}
	if a.r.p.account != nil {
		return domain.Validationf("main account already exists for user %s", account.UserID)
	}
	cp := *account
	a.r.p.account = &cp
	return nil
}

func (a accountRepository) UpdateBalance(_ context.Context, account *domain.Account) error {
	if err := a.r.writable(account.UserID); err != nil {
		return err
	}
	if a.r.p.account == nil || a.r.p.account.ID != account.ID {
		return domain.NotFoundf("main account %s not found", account.ID)
	}
	a.r.p.account.Balance = account.Balance
	a.r.p.account.UpdatedAt = account.UpdatedAt
	return nil
}

// schemeRepository implements domain.SchemeRepository
type schemeRepository struct{ r *repositories }

func (s schemeRepository) GetByID(_ context.Context, userID, schemeID uuid.UUID) (*domain.SavingsScheme, error) {
	if s.r.owns(userID) {
		for _, sc := range s.r.p.schemes {
			if sc.ID == schemeID {
				cp := *sc
				return &cp, nil
			}
		}
	}
	return nil, domain.NotFoundf("scheme %s not found", schemeID)
}

func (s schemeRepository) GetByName(_ context.Context, userID uuid.UUID, name string) (*domain.SavingsScheme, error) {
	if s.r.owns(userID) {
		for _, sc := range s.r.p.schemes {
			if strings.EqualFold(sc.Name, name) {
				cp := *sc
				return &cp, nil
			}
		}
	}
	return nil, domain.NotFoundf("scheme %q not found", name)
}

func (s schemeRepository) List(_ context.Context, userID uuid.UUID) ([]*domain.SavingsScheme, error) {
	out := make([]*domain.SavingsScheme, 0)
	if !s.r.owns(userID) {
		return out, nil
	}
	for _, sc := range s.r.p.schemes {
		cp := *sc
		out = append(out, &cp)
	}
	return out, nil
}

func (s schemeRepository) Create(ctx context.Context, scheme *domain.SavingsScheme) error {
	if err := s.r.writable(scheme.UserID); err != nil {
		return err
	}
	if _, err := s.GetByName(ctx, scheme.UserID, scheme.Name); err == nil {
		return domain.Validationf("you already have a scheme named %q", scheme.Name)
	}
	cp := *scheme
	s.r.p.schemes = append(s.r.p.schemes, &cp)
	return nil
}

func (s schemeRepository) Update(_ context.Context, scheme *domain.SavingsScheme) error {
	if err := s.r.writable(scheme.UserID); err != nil {
		return err
	}
	idx := -1
	for i, sc := range s.r.p.schemes {
		if sc.ID == scheme.ID {
			idx = i
		} else if strings.EqualFold(sc.Name, scheme.Name) {
			return domain.Validationf("you already have a scheme named %q", scheme.Name)
		}
	}
	if idx < 0 {
		return domain.NotFoundf("scheme %s not found", scheme.ID)
	}
	cp := *scheme
	s.r.p.schemes[idx] = &cp
	return nil
}

func (s schemeRepository) Delete(_ context.Context, userID, schemeID uuid.UUID) error {
	if err := s.r.writable(userID); err != nil {
		return err
	}
	for i, sc := range s.r.p.schemes {
		if sc.ID == schemeID {
			s.r.p.schemes = append(s.r.p.schemes[:i], s.r.p.schemes[i+1:]...)
			return nil
		}
	}
	return domain.NotFoundf("scheme %s not found", schemeID)
}

// subAccountRepository implements domain.SubAccountRepository
type subAccountRepository struct{ r *repositories }

func (s subAccountRepository) GetBySchemeID(_ context.Context, userID, schemeID uuid.UUID) (*domain.SubAccount, error) {
	if s.r.owns(userID) {
		if sa, ok := s.r.p.subAccounts[schemeID]; ok {
			cp := *sa
			return &cp, nil
		}
	}
	return nil, domain.NotFoundf("sub-account not found for scheme %s", schemeID)
}

func (s subAccountRepository) List(_ context.Context, userID uuid.UUID) ([]*domain.SubAccount, error) {
	out := make([]*domain.SubAccount, 0, len(s.r.p.subAccounts))
	if !s.r.owns(userID) {
		return out, nil
	}
	for _, sa := range s.r.p.subAccounts {
		cp := *sa
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s subAccountRepository) Create(_ context.Context, subAccount *domain.SubAccount) error {
	if err := s.r.writable(subAccount.UserID); err != nil {
		return err
	}
	if _, exists := s.r.p.subAccounts[subAccount.SchemeID]; exists {
		return domain.Validationf("scheme %s already has a sub-account", subAccount.SchemeID)
	}
	cp := *subAccount
	s.r.p.subAccounts[subAccount.SchemeID] = &cp
	return nil
}

func (s subAccountRepository) Update(_ context.Context, subAccount *domain.SubAccount) error {
	if err := s.r.writable(subAccount.UserID); err != nil {
		return err
	}
	current, ok := s.r.p.subAccounts[subAccount.SchemeID]
	if !ok || current.ID != subAccount.ID {
		return domain.NotFoundf("sub-account %s not found", subAccount.ID)
	}
	current.Name = subAccount.Name
	current.Balance = subAccount.Balance
	current.UpdatedAt = subAccount.UpdatedAt
	return nil
}

func (s subAccountRepository) DeleteBySchemeID(_ context.Context, userID, schemeID uuid.UUID) error {
	if err := s.r.writable(userID); err != nil {
		return err
	}
	delete(s.r.p.subAccounts, schemeID)
	return nil
}

// splitRuleRepository implements domain.SplitRuleRepository
type splitRuleRepository struct{ r *repositories }

func (s splitRuleRepository) find(match func(*domain.SplitRule) bool) (int, *domain.SplitRule) {
	for i, rule := range s.r.p.rules {
		if match(rule) {
			return i, rule
		}
	}
	return -1, nil
}

func (s splitRuleRepository) GetByID(_ context.Context, userID, ruleID uuid.UUID) (*domain.SplitRule, error) {
	if s.r.owns(userID) {
		if _, rule := s.find(func(r *domain.SplitRule) bool { return r.ID == ruleID }); rule != nil {
			cp := *rule
			return &cp, nil
		}
	}
	return nil, domain.NotFoundf("split rule %s not found", ruleID)
}

func (s splitRuleRepository) GetBySchemeID(_ context.Context, userID, schemeID uuid.UUID) (*domain.SplitRule, error) {
	if s.r.owns(userID) {
		if _, rule := s.find(func(r *domain.SplitRule) bool { return r.SchemeID == schemeID }); rule != nil {
			cp := *rule
			return &cp, nil
		}
	}
	return nil, domain.NotFoundf("split rule not found for scheme %s", schemeID)
}

func (s splitRuleRepository) List(_ context.Context, userID uuid.UUID, activeOnly bool) ([]*domain.SplitRule, error) {
	out := make([]*domain.SplitRule, 0, len(s.r.p.rules))
	if !s.r.owns(userID) {
		return out, nil
	}
	for _, rule := range s.r.p.rules {
		if activeOnly && !rule.IsActive {
			continue
		}
		cp := *rule
		out = append(out, &cp)
	}
	return out, nil
}

func (s splitRuleRepository) Create(_ context.Context, rule *domain.SplitRule) error {
	if err := s.r.writable(rule.UserID); err != nil {
		return err
	}
	if _, existing := s.find(func(r *domain.SplitRule) bool { return r.SchemeID == rule.SchemeID }); existing != nil {
		return domain.Validationf("a splitting rule for scheme %s already exists", rule.SchemeID)
	}
	cp := *rule
	s.r.p.rules = append(s.r.p.rules, &cp)
	return nil
}

func (s splitRuleRepository) Update(_ context.Context, rule *domain.SplitRule) error {
	if err := s.r.writable(rule.UserID); err != nil {
		return err
	}
	i, _ := s.find(func(r *domain.SplitRule) bool { return r.ID == rule.ID })
	if i < 0 {
		return domain.NotFoundf("split rule %s not found", rule.ID)
	}
	cp := *rule
	s.r.p.rules[i] = &cp
	return nil
}

func (s splitRuleRepository) Delete(_ context.Context, userID, ruleID uuid.UUID) error {
	if err := s.r.writable(userID); err != nil {
		return err
	}
	i, _ := s.find(func(r *domain.SplitRule) bool { return r.ID == ruleID })
	if i < 0 {
		return domain.NotFoundf("split rule %s not found", ruleID)
	}
	s.r.p.rules = append(s.r.p.rules[:i], s.r.p.rules[i+1:]...)
	return nil
}

func (s splitRuleRepository) DeleteBySchemeID(_ context.Context, userID, schemeID uuid.UUID) error {
	if err := s.r.writable(userID); err != nil {
		return err
	}
	if i, _ := s.find(func(r *domain.SplitRule) bool { return r.SchemeID == schemeID }); i >= 0 {
		s.r.p.rules = append(s.r.p.rules[:i], s.r.p.rules[i+1:]...)
	}
	return nil
}

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct{ r *repositories }

func (t transactionRepository) Create(_ context.Context, tx *domain.Transaction) error {
	if err := t.r.writable(tx.UserID); err != nil {
		return err
	}
	cp := *tx
	t.r.p.transactions = append(t.r.p.transactions, &cp)
	return nil
}

func (t transactionRepository) List(_ context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	if !t.r.owns(userID) {
		return []*domain.Transaction{}, nil
	}

	// Newest first: reverse append order, then a stable sort on date
	rows := make([]*domain.Transaction, 0, len(t.r.p.transactions))
	for i := len(t.r.p.transactions) - 1; i >= 0; i-- {
		rows = append(rows, t.r.p.transactions[i])
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })

	if offset >= len(rows) {
		return []*domain.Transaction{}, nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	out := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (t transactionRepository) Count(_ context.Context, userID uuid.UUID) (int, error) {
	if !t.r.owns(userID) {
		return 0, nil
	}
	return len(t.r.p.transactions), nil
}

func (t transactionRepository) DeleteBySchemeID(_ context.Context, userID, schemeID uuid.UUID) error {
	if err := t.r.writable(userID); err != nil {
		return err
	}
	kept := t.r.p.transactions[:0:0]
	for _, row := range t.r.p.transactions {
		if row.SchemeID != nil && *row.SchemeID == schemeID {
			continue
		}
		kept = append(kept, row)
	}
	t.r.p.transactions = kept
	return nil
}
