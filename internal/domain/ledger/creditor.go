package ledger

import (
	"context"
	"fmt"
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

// CreditorPaymentInput describes a repayment to a creditor.
type CreditorPaymentInput struct {
	CreditorID       id.ID
	SourceCreditorID *id.ID
	Amount           types.Money
	Mode             PaymentMode
	BankID           *id.ID
	Date             time.Time
	Remarks          string
}

func (in CreditorPaymentInput) validate() error {
	if err := requirePositive(in.Amount, "amount"); err != nil {
		return err
	}
	if in.SourceCreditorID != nil {
		if *in.SourceCreditorID == in.CreditorID {
			return apperror.NewValidation("source and target creditor cannot be the same")
		}
		if in.BankID != nil {
			return apperror.NewValidation("a creditor-funded payment cannot also use a bank")
		}
	}
	return in.Mode.orDefault(ModeCash).validate()
}

// RecordCreditorPayment repays a creditor. With a source creditor the money is
// borrowed from it: the source's balance grows and the target's shrinks.
// Otherwise the target's balance shrinks and an optional bank is debited.
func (s *Service) RecordCreditorPayment(ctx context.Context, in CreditorPaymentInput) (*CreditorPayment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var p *CreditorPayment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		target, err := s.book.RequireCreditor(ctx, in.CreditorID)
		if err != nil {
			return err
		}

		p = &CreditorPayment{
			Base:             entity.NewBase(),
			CreditorID:       target.ID,
			SourceCreditorID: in.SourceCreditorID,
			Amount:           in.Amount,
			PaymentMode:      in.Mode.orDefault(ModeCash),
			BankID:           in.BankID,
			PaymentDate:      s.dateOr(in.Date),
			Remarks:          in.Remarks,
			RecordedBy:       actor(ctx),
		}

		if in.SourceCreditorID != nil {
			return s.payFromCreditor(ctx, p, target)
		}
		return s.payCreditor(ctx, p, target)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "creditor payment recorded", "payment_id", p.ID, "creditor_id", p.CreditorID, "amount", p.Amount.String())
	return p, nil
}

func (s *Service) payFromCreditor(ctx context.Context, p *CreditorPayment, target *accounts.Creditor) error {
	source, err := s.book.RequireCreditor(ctx, *p.SourceCreditorID)
	if err != nil {
		return err
	}
	p.PaymentMode = ModeCreditor
	p.Remarks = fmt.Sprintf("Transfer from %s: %s", source.Name, p.Remarks)
	if err := s.repos.CreditorPayments.Create(ctx, p); err != nil {
		return fmt.Errorf("create creditor payment: %w", err)
	}

	if _, err := s.book.PostCreditor(ctx, source.ID, accounts.Posting{
		Type:        accounts.Credit,
		Amount:      p.Amount,
		Date:        p.PaymentDate,
		Description: "used for paying " + target.Name,
		RefID:       p.ID,
		RefModel:    accounts.RefCreditorPayment,
	}); err != nil {
		return err
	}
	if _, err := s.book.PostCreditor(ctx, target.ID, accounts.Posting{
		Type:        accounts.Debit,
		Amount:      p.Amount,
		Date:        p.PaymentDate,
		Description: "Payment recd from " + source.Name,
		RefID:       p.ID,
		RefModel:    accounts.RefCreditorPayment,
	}); err != nil {
		return err
	}
	return s.audit.Record(ctx, "creditor_payment", p.ID, audit.ActionCreate, p)
}

func (s *Service) payCreditor(ctx context.Context, p *CreditorPayment, target *accounts.Creditor) error {
	if err := s.repos.CreditorPayments.Create(ctx, p); err != nil {
		return fmt.Errorf("create creditor payment: %w", err)
	}

	if _, err := s.book.PostCreditor(ctx, target.ID, accounts.Posting{
		Type:        accounts.Debit,
		Amount:      p.Amount,
		Date:        p.PaymentDate,
		Description: "Payment Recd: " + p.Remarks,
		RefID:       p.ID,
		RefModel:    accounts.RefCreditorPayment,
	}); err != nil {
		return err
	}
	if p.BankID != nil {
		if _, err := s.book.PostBank(ctx, *p.BankID, accounts.Posting{
			Type:        accounts.Debit,
			Amount:      p.Amount,
			Date:        p.PaymentDate,
			Description: "Payment to Creditor: " + target.Name,
			RefID:       p.ID,
			RefModel:    accounts.RefCreditorPayment,
		}); err != nil {
			return err
		}
	}
	return s.audit.Record(ctx, "creditor_payment", p.ID, audit.ActionCreate, p)
}

// DeleteCreditorPayment undoes every creditor entry of the payment and credits
// the bank back when one was used.
func (s *Service) DeleteCreditorPayment(ctx context.Context, paymentID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repos.CreditorPayments.GetForUpdate(ctx, paymentID)
		if err != nil {
			return notFoundAs(err, "creditor payment", paymentID)
		}
		if err := s.unfund(ctx, p.BankID, p.ID, accounts.RefCreditorPayment, p.Amount, "Reversal of creditor payment (Deleted)"); err != nil {
			return err
		}
		if err := s.repos.CreditorPayments.Delete(ctx, p.ID); err != nil {
			return fmt.Errorf("delete creditor payment: %w", err)
		}
		return s.audit.Record(ctx, "creditor_payment", p.ID, audit.ActionReverse, p)
	})
}

// ListCreditorPayments lists creditor repayments.
func (s *Service) ListCreditorPayments(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*CreditorPayment], error) {
	return s.repos.CreditorPayments.List(ctx, filter)
}
