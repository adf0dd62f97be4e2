package accounts

import (
	"context"
	"fmt"

	"sitebook/internal/core/id"
	"sitebook/internal/core/tx"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
)

// Summary totals the entries of one log.
type Summary struct {
	TotalCredit types.Money `json:"totalCredit"`
	TotalDebit  types.Money `json:"totalDebit"`
	Net         types.Money `json:"net"`
}

func summarize[E any](entries []E, fn func(E) (EntryType, types.Money)) Summary {
	s := Summary{TotalCredit: types.Zero(), TotalDebit: types.Zero()}
	for _, e := range entries {
		typ, amount := fn(e)
		if typ == Credit {
			s.TotalCredit = s.TotalCredit.Add(amount)
		} else {
			s.TotalDebit = s.TotalDebit.Add(amount)
		}
	}
	s.Net = s.TotalCredit.Sub(s.TotalDebit)
	return s
}

// BankStatement is a bank account with its full log.
type BankStatement struct {
	Bank    *BankAccount `json:"bank"`
	Entries []*BankEntry `json:"transactions"`
	Summary Summary      `json:"summary"`
}

// BankService manages bank accounts.
type BankService struct {
	*domain.CatalogService[*BankAccount]
	entries domain.Repository[*BankEntry]
}

// NewBankService creates a bank account service.
func NewBankService(repos Repositories, txManager tx.Manager) *BankService {
	return &BankService{
		CatalogService: domain.NewCatalogService[*BankAccount](repos.Banks, txManager, "bank account"),
		entries:        repos.BankEntries,
	}
}

// Statement returns the account, its entries (oldest first) and their totals.
func (s *BankService) Statement(ctx context.Context, bankID id.ID) (*BankStatement, error) {
	bank, err := s.GetByID(ctx, bankID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.FindAll(ctx, map[string]any{"bank_id": bankID})
	if err != nil {
		return nil, fmt.Errorf("load bank entries: %w", err)
	}
	return &BankStatement{
		Bank:    bank,
		Entries: entries,
		Summary: summarize(entries, func(e *BankEntry) (EntryType, types.Money) { return e.Type, e.Amount }),
	}, nil
}

// CreditorDetail is a creditor with its full log.
type CreditorDetail struct {
	Creditor *Creditor        `json:"creditor"`
	Entries  []*CreditorEntry `json:"transactions"`
	Summary  Summary          `json:"summary"`
}

// CreditorService manages creditors.
type CreditorService struct {
	*domain.CatalogService[*Creditor]
	entries domain.Repository[*CreditorEntry]
}

// NewCreditorService creates a creditor service.
func NewCreditorService(repos Repositories, txManager tx.Manager) *CreditorService {
	return &CreditorService{
		CatalogService: domain.NewCatalogService[*Creditor](repos.Creditors, txManager, "creditor"),
		entries:        repos.CreditorEntries,
	}
}

// Detail returns the creditor with its entries (oldest first).
func (s *CreditorService) Detail(ctx context.Context, creditorID id.ID) (*CreditorDetail, error) {
	c, err := s.GetByID(ctx, creditorID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.FindAll(ctx, map[string]any{"creditor_id": creditorID})
	if err != nil {
		return nil, fmt.Errorf("load creditor entries: %w", err)
	}
	return &CreditorDetail{
		Creditor: c,
		Entries:  entries,
		Summary:  summarize(entries, func(e *CreditorEntry) (EntryType, types.Money) { return e.Type, e.Amount }),
	}, nil
}
