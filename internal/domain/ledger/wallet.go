package ledger

import (
	"context"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/id"
	"sitebook/internal/domain/user"
)

// Site managers spend from their own wallet. Each operation below debits the
// wallet first, so an underfunded wallet fails before anything else is written;
// the row remembers the wallet so that deleting it refunds the manager.

// Wallet returns the signed-in manager's wallet holder.
func (s *Service) Wallet(ctx context.Context) (*user.User, error) {
	self, err := s.self(ctx)
	if err != nil {
		return nil, err
	}
	return s.users.GetManager(ctx, self)
}

// AddSiteExpense books a cash expense on an assigned project, paid from the wallet.
func (s *Service) AddSiteExpense(ctx context.Context, in ExpenseInput) (*Expense, error) {
	in.Mode = ModeCash
	in.BankID, in.CreditorID = nil, nil
	if err := in.normalize(); err != nil {
		return nil, err
	}
	self, err := s.self(ctx)
	if err != nil {
		return nil, err
	}

	var e *Expense
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.users.DebitWallet(ctx, self, in.Amount); err != nil {
			return err
		}
		out, err := s.recordExpense(ctx, in, id.Ptr(self))
		e = out
		return err
	})
	return e, err
}

// PaySiteVendor pays a vendor from the wallet.
func (s *Service) PaySiteVendor(ctx context.Context, in PaymentInput) (*VendorPayment, error) {
	in.Mode = in.Mode.orDefault(ModeCash)
	in.BankID, in.CreditorID = nil, nil
	if err := in.validate(); err != nil {
		return nil, err
	}
	self, err := s.self(ctx)
	if err != nil {
		return nil, err
	}

	var p *VendorPayment
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.users.DebitWallet(ctx, self, in.Amount); err != nil {
			return err
		}
		out, err := s.recordVendorPayment(ctx, in, id.Ptr(self))
		p = out
		return err
	})
	return p, err
}

// PaySiteContractor pays a contractor from the wallet.
func (s *Service) PaySiteContractor(ctx context.Context, in PaymentInput) (*ContractorPayment, error) {
	in.Mode = in.Mode.orDefault(ModeCash)
	in.BankID, in.CreditorID = nil, nil
	if err := in.validate(); err != nil {
		return nil, err
	}
	self, err := s.self(ctx)
	if err != nil {
		return nil, err
	}

	var p *ContractorPayment
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.users.DebitWallet(ctx, self, in.Amount); err != nil {
			return err
		}
		out, err := s.recordContractorPayment(ctx, in, id.Ptr(self))
		p = out
		return err
	})
	return p, err
}

func (s *Service) self(ctx context.Context) (id.ID, error) {
	self := actor(ctx)
	if self == nil {
		return id.ID{}, apperror.NewUnauthorized("authentication required")
	}
	return *self, nil
}
