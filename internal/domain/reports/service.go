package reports

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"sitebook/internal/core/security"
	"sitebook/internal/core/types"
)

// Payment modes counted as bank money in the accounts overview.
var bankModes = []string{"bank", "bank_transfer", "online", "upi", "check"}

// Service provides report generation operations.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// GetAccounts builds the accounts overview: capital raised, money spent, the
// bank and cash split of every movement, and the bank balances.
func (s *Service) GetAccounts(ctx context.Context, filter AccountsFilter) (*Accounts, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("startDate must be before endDate")
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	entries, err := s.repo.AccountEntries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get account entries: %w", err)
	}
	banks, err := s.repo.BankBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("get bank balances: %w", err)
	}

	if filter.ManagerID != nil {
		entries = slices.DeleteFunc(entries, func(e AccountEntry) bool {
			return e.RefModel == "Expense" && (e.AddedBy == nil || *e.AddedBy != *filter.ManagerID)
		})
	}
	slices.SortStableFunc(entries, func(a, b AccountEntry) int {
		return b.Date.Compare(a.Date)
	})

	out := &Accounts{
		Capital:               types.Zero(),
		TotalExpenses:         types.Zero(),
		TotalBankTransactions: types.Zero(),
		TotalCashTransactions: types.Zero(),
		TotalBankBalance:      types.Zero(),
		Banks:                 banks,
		Transactions:          entries,
	}
	for _, e := range entries {
		if e.Category == "capital" && e.Type == "credit" {
			out.Capital = out.Capital.Add(e.Amount)
		}
		if e.Type == "debit" {
			out.TotalExpenses = out.TotalExpenses.Add(e.Amount)
		}
		mode := strings.ToLower(e.PaymentMode)
		switch {
		case mode == "" || mode == "cash":
			out.TotalCashTransactions = out.TotalCashTransactions.Add(e.Amount)
		case slices.Contains(bankModes, mode):
			out.TotalBankTransactions = out.TotalBankTransactions.Add(e.Amount)
		}
	}
	for _, b := range banks {
		out.TotalBankBalance = out.TotalBankBalance.Add(b.Balance)
	}
	return out, nil
}

// GetStockBalance reports on-hand stock per project and material. Site
// managers only see their own sites.
func (s *Service) GetStockBalance(ctx context.Context, filter StockBalanceFilter) (*StockBalance, error) {
	scope := security.GetScope(ctx)
	filter.ProjectIDs = scope.FilterProjects(filter.ProjectIDs)
	if scope.Restricted() && len(filter.ProjectIDs) == 0 {
		return &StockBalance{AsOf: s.now(), Items: []StockBalanceItem{}, TotalValue: types.Zero()}, nil
	}

	items, err := s.repo.StockBalance(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock balance report: %w", err)
	}

	total := types.Zero()
	for _, item := range items {
		total = total.Add(item.TotalValue)
	}
	return &StockBalance{
		AsOf:       s.now(),
		Items:      items,
		TotalItems: len(items),
		TotalValue: total,
	}, nil
}
