package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/numerator"
	"sitebook/internal/core/security"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
	"sitebook/internal/domain/accounts"
	"sitebook/internal/domain/audit"
	"sitebook/pkg/logger"
)

// VoucherPrefix starts generated expense voucher numbers.
const VoucherPrefix = "EXP"

// ExpenseInput describes money spent on a project.
type ExpenseInput struct {
	ProjectID     id.ID
	Name          string
	Amount        types.Money
	VoucherNumber string
	Category      string
	Mode          PaymentMode
	BankID        *id.ID
	CreditorID    *id.ID
	MachineID     *id.ID
	Date          time.Time
	Remarks       string
}

func (in *ExpenseInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperror.NewValidation("expense name is required").WithDetail("field", "name")
	}
	if err := requirePositive(in.Amount, "amount"); err != nil {
		return err
	}
	if in.BankID != nil && in.CreditorID != nil {
		return apperror.NewValidation("an expense is funded either by a bank or by a creditor, not both")
	}
	if in.Category == "" {
		in.Category = ExpenseMaterial
	}
	if !validExpenseCategory(in.Category) {
		return apperror.NewValidation("invalid expense category").WithDetail("category", in.Category)
	}
	in.Mode = in.Mode.orDefault(ModeCash)
	return in.Mode.validate()
}

// RecordExpense books an expense against a project: the project's expenses
// grow by amount and the optional bank or creditor is debited.
func (s *Service) RecordExpense(ctx context.Context, in ExpenseInput) (*Expense, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	return s.recordExpense(ctx, in, nil)
}

func (s *Service) recordExpense(ctx context.Context, in ExpenseInput, walletUser *id.ID) (*Expense, error) {
	var e *Expense
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := security.GetScope(ctx).RequireProject(in.ProjectID); err != nil {
			return err
		}
		if _, err := s.projects.AddExpenses(ctx, in.ProjectID, in.Amount); err != nil {
			return err
		}

		date := s.dateOr(in.Date)
		if in.VoucherNumber == "" && s.vouchers != nil {
			voucher, err := s.vouchers.GetNextNumber(ctx, numerator.DefaultConfig(VoucherPrefix), nil, date)
			if err != nil {
				return fmt.Errorf("number expense: %w", err)
			}
			in.VoucherNumber = voucher
		}

		e = &Expense{
			Base:          entity.NewBase(),
			ProjectID:     in.ProjectID,
			Name:          in.Name,
			Amount:        in.Amount,
			VoucherNumber: in.VoucherNumber,
			Category:      in.Category,
			PaymentMode:   in.Mode,
			BankID:        in.BankID,
			CreditorID:    in.CreditorID,
			MachineID:     in.MachineID,
			WalletUserID:  walletUser,
			ExpenseDate:   date,
			Remarks:       in.Remarks,
			AddedBy:       actor(ctx),
		}
		if err := s.repos.Expenses.Create(ctx, e); err != nil {
			return fmt.Errorf("create expense: %w", err)
		}

		voucher := in.VoucherNumber
		if voucher == "" {
			voucher = "N/A"
		}
		if err := s.fund(ctx, in.BankID, in.CreditorID, accounts.Posting{
			Type:        accounts.Debit,
			Amount:      in.Amount,
			Date:        e.ExpenseDate,
			Description: fmt.Sprintf("Expense: %s (Voucher: %s)", in.Name, voucher),
			RefID:       e.ID,
			RefModel:    accounts.RefExpense,
		}); err != nil {
			return err
		}
		return s.audit.Record(ctx, "expense", e.ID, audit.ActionCreate, e)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "expense recorded", "expense_id", e.ID, "project_id", e.ProjectID, "amount", e.Amount.String())
	return e, nil
}

// DeleteExpense reverses an expense: project expenses shrink, the bank is
// credited back, the creditor leg is removed and a wallet-funded expense refunds the wallet.
func (s *Service) DeleteExpense(ctx context.Context, expenseID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		e, err := s.repos.Expenses.GetForUpdate(ctx, expenseID)
		if err != nil {
			return notFoundAs(err, "expense", expenseID)
		}
		if err := security.GetScope(ctx).RequireProject(e.ProjectID); err != nil {
			return err
		}
		if _, err := s.projects.AddExpenses(ctx, e.ProjectID, e.Amount.Neg()); err != nil {
			return err
		}
		if err := s.unfund(ctx, e.BankID, e.ID, accounts.RefExpense, e.Amount, fmt.Sprintf("Reversal of expense: %s (Deleted)", e.Name)); err != nil {
			return err
		}
		if err := s.refundWallet(ctx, e.WalletUserID, e.Amount); err != nil {
			return err
		}
		if err := s.repos.Expenses.Delete(ctx, e.ID); err != nil {
			return fmt.Errorf("delete expense: %w", err)
		}
		return s.audit.Record(ctx, "expense", e.ID, audit.ActionReverse, e)
	})
}

// ListExpenses lists expenses; site managers only see their assigned projects.
func (s *Service) ListExpenses(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Expense], error) {
	scope := security.GetScope(ctx)
	if scope.Restricted() {
		requested := []id.ID{}
		if v, ok := filter.Where["project_id"].(id.ID); ok {
			requested = append(requested, v)
		}
		filter = filter.Eq("project_id", scope.FilterProjects(requested))
	}
	return s.repos.Expenses.List(ctx, filter)
}
