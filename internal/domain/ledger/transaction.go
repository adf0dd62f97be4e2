package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
	"sitebook/internal/domain/accounts"
	"sitebook/internal/domain/audit"
	"sitebook/pkg/logger"
)

// TransactionInput describes a manual ledger entry.
type TransactionInput struct {
	Type        accounts.EntryType
	Amount      types.Money
	Category    string
	Mode        PaymentMode
	BankID      *id.ID
	CreditorID  *id.ID
	ProjectID   *id.ID
	Date        time.Time
	Description string
}

// AddCapital records money put into the company; with a bank it is credited there.
func (s *Service) AddCapital(ctx context.Context, amount types.Money, bankID, projectID *id.ID, mode PaymentMode, description string, date time.Time) (*Transaction, error) {
	if description == "" {
		description = "Capital addition"
	}
	return s.AddTransaction(ctx, TransactionInput{
		Type:        accounts.Credit,
		Amount:      amount,
		Category:    CategoryCapital,
		Mode:        mode.orDefault(ModeBank),
		BankID:      bankID,
		ProjectID:   projectID,
		Date:        date,
		Description: description,
	})
}

// AddTransaction records a manual entry. A bank is credited or debited by type.
// For a creditor, credit means we borrowed (what we owe grows) and debit means we repaid.
func (s *Service) AddTransaction(ctx context.Context, in TransactionInput) (*Transaction, error) {
	if in.Type == "" {
		in.Type = accounts.Debit
	}
	if !in.Type.Valid() {
		return nil, apperror.NewValidation("type must be credit or debit").WithDetail("type", string(in.Type))
	}
	if err := requirePositive(in.Amount, "amount"); err != nil {
		return nil, err
	}
	if in.Category == "" {
		in.Category = CategoryOther
	}
	in.Mode = in.Mode.orDefault(ModeCash)
	if err := in.Mode.validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Description) == "" {
		in.Description = "Transaction"
	}

	var t *Transaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		t = s.newTransaction(ctx, in)
		if err := s.repos.Transactions.Create(ctx, t); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		if err := s.fund(ctx, in.BankID, in.CreditorID, accounts.Posting{
			Type:        in.Type,
			Amount:      in.Amount,
			Date:        t.TxnDate,
			Description: in.Description,
			RefID:       t.ID,
			RefModel:    accounts.RefTransaction,
		}); err != nil {
			return err
		}
		return s.audit.Record(ctx, "transaction", t.ID, audit.ActionCreate, t)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transaction recorded", "transaction_id", t.ID, "type", t.Type, "category", t.Category, "amount", t.Amount.String())
	return t, nil
}

func (s *Service) newTransaction(ctx context.Context, in TransactionInput) *Transaction {
	return &Transaction{
		Base:        entity.NewBase(),
		Type:        in.Type,
		Amount:      in.Amount,
		Category:    in.Category,
		TxnDate:     s.dateOr(in.Date),
		PaymentMode: in.Mode,
		Description: in.Description,
		BankID:      in.BankID,
		CreditorID:  in.CreditorID,
		ProjectID:   in.ProjectID,
		CreatedBy:   actor(ctx),
	}
}

// AllocateFunds moves cash from the company (optionally a bank) into a site manager's wallet.
func (s *Service) AllocateFunds(ctx context.Context, managerID id.ID, amount types.Money, bankID *id.ID, mode PaymentMode, description string) (*Transaction, error) {
	if err := requirePositive(amount, "amount"); err != nil {
		return nil, err
	}
	mode = mode.orDefault(ModeBank)
	if err := mode.validate(); err != nil {
		return nil, err
	}

	var t *Transaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		manager, err := s.users.CreditWallet(ctx, managerID, amount)
		if err != nil {
			return err
		}
		if description == "" {
			description = "Wallet allocation to " + manager.Name
		}

		t = s.newTransaction(ctx, TransactionInput{
			Type:        accounts.Debit,
			Amount:      amount,
			Category:    CategoryWalletAllocation,
			Mode:        mode,
			BankID:      bankID,
			Description: description,
		})
		t.RelatedUserID = id.Ptr(manager.ID)
		if err := s.repos.Transactions.Create(ctx, t); err != nil {
			return fmt.Errorf("create allocation: %w", err)
		}
		if err := s.fund(ctx, bankID, nil, accounts.Posting{
			Type:        accounts.Debit,
			Amount:      amount,
			Date:        t.TxnDate,
			Description: description,
			RefID:       t.ID,
			RefModel:    accounts.RefTransaction,
		}); err != nil {
			return err
		}
		return s.audit.Record(ctx, "transaction", t.ID, audit.ActionCreate, t)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "funds allocated", "manager_id", managerID, "amount", amount.String())
	return t, nil
}

// BankTransfer is the pair of rows written by TransferBankToBank.
type BankTransfer struct {
	Debit  *Transaction `json:"debit"`
	Credit *Transaction `json:"credit"`
}

// TransferBankToBank moves money between two company accounts. Both balances,
// both logs and both ledger rows change in one transaction; the rows share a
// transfer group so that deleting either leg reverses both.
func (s *Service) TransferBankToBank(ctx context.Context, sourceID, destID id.ID, amount types.Money, date time.Time, description string) (*BankTransfer, error) {
	if err := requirePositive(amount, "amount"); err != nil {
		return nil, err
	}
	if sourceID == destID {
		return nil, apperror.NewValidation("source and destination banks cannot be the same")
	}

	var out *BankTransfer
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		banks, err := s.book.LockBanks(ctx, sourceID, destID)
		if err != nil {
			return err
		}
		source, dest := banks[sourceID], banks[destID]
		group := id.New()
		when := s.dateOr(date)

		debit := s.newTransaction(ctx, TransactionInput{
			Type:        accounts.Debit,
			Amount:      amount,
			Category:    CategoryBankTransfer,
			Mode:        ModeBank,
			BankID:      id.Ptr(sourceID),
			Date:        when,
			Description: fmt.Sprintf("Transfer to %s - %s", dest.BankName, description),
		})
		credit := s.newTransaction(ctx, TransactionInput{
			Type:        accounts.Credit,
			Amount:      amount,
			Category:    CategoryBankTransfer,
			Mode:        ModeBank,
			BankID:      id.Ptr(destID),
			Date:        when,
			Description: fmt.Sprintf("Transfer from %s - %s", source.BankName, description),
		})
		for _, t := range []*Transaction{debit, credit} {
			t.TransferGroup = id.Ptr(group)
			if err := s.repos.Transactions.Create(ctx, t); err != nil {
				return fmt.Errorf("create transfer leg: %w", err)
			}
			if _, err := s.book.PostBank(ctx, *t.BankID, accounts.Posting{
				Type:        t.Type,
				Amount:      amount,
				Date:        when,
				Description: t.Description,
				RefID:       t.ID,
				RefModel:    accounts.RefTransaction,
			}); err != nil {
				return err
			}
		}

		out = &BankTransfer{Debit: debit, Credit: credit}
		return s.audit.Record(ctx, "bank_transfer", group, audit.ActionCreate, out)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "bank transfer recorded", "source", sourceID, "dest", destID, "amount", amount.String())
	return out, nil
}

// DeleteTransaction reverses a transaction's bank and creditor legs and removes it.
// A bank transfer leg takes its sibling with it; a wallet allocation is taken
// back from the manager's wallet.
func (s *Service) DeleteTransaction(ctx context.Context, transactionID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := s.repos.Transactions.GetForUpdate(ctx, transactionID)
		if err != nil {
			return notFoundAs(err, "transaction", transactionID)
		}

		legs := []*Transaction{t}
		if t.TransferGroup != nil {
			legs, err = s.repos.Transactions.FindAll(ctx, map[string]any{"transfer_group": *t.TransferGroup})
			if err != nil {
				return fmt.Errorf("load transfer legs: %w", err)
			}
		}

		for _, leg := range legs {
			if err := s.reverseTransaction(ctx, leg); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) reverseTransaction(ctx context.Context, t *Transaction) error {
	if t.BankID != nil {
		if _, err := s.book.PostBank(ctx, *t.BankID, accounts.Posting{
			Type:        t.Type.Opposite(),
			Amount:      t.Amount,
			Date:        s.now(),
			Description: "Reversal of transaction: " + t.Description,
			RefID:       t.ID,
			RefModel:    accounts.RefTransaction,
		}); err != nil {
			return err
		}
	}
	if _, err := s.book.ReverseCreditor(ctx, t.ID, accounts.RefTransaction); err != nil {
		return err
	}
	if t.Category == CategoryWalletAllocation && t.RelatedUserID != nil {
		if _, err := s.users.DebitWallet(ctx, *t.RelatedUserID, t.Amount); err != nil {
			return err
		}
	}
	if err := s.repos.Transactions.Delete(ctx, t.ID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return s.audit.Record(ctx, "transaction", t.ID, audit.ActionReverse, t)
}

// ListTransactions lists ledger rows, newest first by default.
func (s *Service) ListTransactions(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Transaction], error) {
	return s.repos.Transactions.List(ctx, filter)
}
