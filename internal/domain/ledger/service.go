package ledger

import (
	"context"
	"fmt"
	"time"

	"sitebook/internal/core/apperror"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/numerator"
	"sitebook/internal/core/security"
	"sitebook/internal/core/tx"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
	"sitebook/internal/domain/accounts"
	"sitebook/internal/domain/audit"
	"sitebook/internal/domain/party"
	"sitebook/internal/domain/project"
	"sitebook/internal/domain/user"
	"sitebook/pkg/logger"
)

// Repositories groups the ledger tables.
type Repositories struct {
	Transactions       domain.Repository[*Transaction]
	Expenses           domain.Repository[*Expense]
	VendorPayments     domain.Repository[*VendorPayment]
	ContractorPayments domain.Repository[*ContractorPayment]
	CreditorPayments   domain.Repository[*CreditorPayment]
}

// Deps holds the collaborators of the ledger service.
type Deps struct {
	TxManager   tx.Manager
	Repos       Repositories
	Book        *accounts.Book
	Projects    *project.Service
	Vendors     *party.VendorService
	Contractors *party.ContractorService
	Users       *user.Service
	Audit       audit.Recorder
	Clock       func() time.Time

	// Vouchers numbers expenses recorded without a voucher; nil leaves them blank.
	Vouchers numerator.Generator
}

// Service is the ledger engine.
type Service struct {
	txManager   tx.Manager
	repos       Repositories
	book        *accounts.Book
	projects    *project.Service
	vendors     *party.VendorService
	contractors *party.ContractorService
	users       *user.Service
	audit       audit.Recorder
	now         func() time.Time
	vouchers    numerator.Generator
}

// NewService creates the ledger service.
func NewService(d Deps) *Service {
	rec := d.Audit
	if rec == nil {
		rec = audit.Nop{}
	}
	clock := d.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		txManager:   d.TxManager,
		repos:       d.Repos,
		book:        d.Book,
		projects:    d.Projects,
		vendors:     d.Vendors,
		contractors: d.Contractors,
		users:       d.Users,
		audit:       rec,
		now:         clock,
		vouchers:    d.Vouchers,
	}
}

// PaymentInput describes a payment to a vendor or contractor.
type PaymentInput struct {
	PartyID    id.ID
	Amount     types.Money
	Advance    types.Money
	Deduction  types.Money
	Mode       PaymentMode
	BankID     *id.ID
	CreditorID *id.ID
	ProjectID  *id.ID
	Date       time.Time
	Remarks    string

	// Contractor only.
	MachineRent  types.Money
	RentDeducted types.Money
}

func (in PaymentInput) validate() error {
	if err := requirePositive(in.Amount, "amount"); err != nil {
		return err
	}
	if in.BankID != nil && in.CreditorID != nil {
		return apperror.NewValidation("a payment is funded either by a bank or by a creditor, not both")
	}
	extras := []struct {
		field string
		value types.Money
	}{
		{"advance", in.Advance},
		{"deduction", in.Deduction},
		{"machineRent", in.MachineRent},
		{"rentDeducted", in.RentDeducted},
	}
	for _, e := range extras {
		if e.value.IsNegative() {
			return apperror.NewValidation(e.field+" cannot be negative").WithDetail("field", e.field)
		}
	}
	return in.Mode.orDefault(ModeCash).validate()
}

// RecordVendorPayment pays a vendor: pending is drained first and any excess
// becomes advance; an optional bank or creditor is debited.
func (s *Service) RecordVendorPayment(ctx context.Context, in PaymentInput) (*VendorPayment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.recordVendorPayment(ctx, in, nil)
}

func (s *Service) recordVendorPayment(ctx context.Context, in PaymentInput, walletUser *id.ID) (*VendorPayment, error) {
	var p *VendorPayment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.requireProject(ctx, in.ProjectID); err != nil {
			return err
		}
		vendor, err := s.vendors.ApplyPayment(ctx, in.PartyID, in.Amount)
		if err != nil {
			return err
		}

		p = &VendorPayment{
			Base:         entity.NewBase(),
			VendorID:     vendor.ID,
			ProjectID:    in.ProjectID,
			Amount:       in.Amount,
			Advance:      orZero(in.Advance),
			Deduction:    orZero(in.Deduction),
			PaymentMode:  in.Mode.orDefault(ModeCash),
			BankID:       in.BankID,
			CreditorID:   in.CreditorID,
			WalletUserID: walletUser,
			PaymentDate:  s.dateOr(in.Date),
			Remarks:      in.Remarks,
			RecordedBy:   actor(ctx),
		}
		if err := s.repos.VendorPayments.Create(ctx, p); err != nil {
			return fmt.Errorf("create vendor payment: %w", err)
		}

		if err := s.fund(ctx, in.BankID, in.CreditorID, accounts.Posting{
			Type:        accounts.Debit,
			Amount:      in.Amount,
			Date:        p.PaymentDate,
			Description: "Payment to vendor: " + vendor.Name,
			RefID:       p.ID,
			RefModel:    accounts.RefVendorPayment,
		}); err != nil {
			return err
		}
		return s.audit.Record(ctx, "vendor_payment", p.ID, audit.ActionCreate, p)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "vendor payment recorded", "payment_id", p.ID, "vendor_id", p.VendorID, "amount", p.Amount.String())
	return p, nil
}

// DeleteVendorPayment reverses a vendor payment: advance is consumed first, the
// rest returns to pending; the bank is credited back, the creditor leg removed
// and a wallet-funded payment refunds the wallet.
func (s *Service) DeleteVendorPayment(ctx context.Context, paymentID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repos.VendorPayments.GetForUpdate(ctx, paymentID)
		if err != nil {
			return notFoundAs(err, "vendor payment", paymentID)
		}
		if err := s.requireProject(ctx, p.ProjectID); err != nil {
			return err
		}
		if _, err := s.vendors.ReversePayment(ctx, p.VendorID, p.Amount); err != nil {
			return err
		}
		if err := s.unfund(ctx, p.BankID, p.ID, accounts.RefVendorPayment, p.Amount, "Reversal of vendor payment (Deleted)"); err != nil {
			return err
		}
		if err := s.refundWallet(ctx, p.WalletUserID, p.Amount); err != nil {
			return err
		}
		if err := s.repos.VendorPayments.Delete(ctx, p.ID); err != nil {
			return fmt.Errorf("delete vendor payment: %w", err)
		}
		return s.audit.Record(ctx, "vendor_payment", p.ID, audit.ActionReverse, p)
	})
}

// RecordContractorPayment pays a contractor with the same pending/advance rule as vendors.
func (s *Service) RecordContractorPayment(ctx context.Context, in PaymentInput) (*ContractorPayment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.recordContractorPayment(ctx, in, nil)
}

func (s *Service) recordContractorPayment(ctx context.Context, in PaymentInput, walletUser *id.ID) (*ContractorPayment, error) {
	var p *ContractorPayment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.requireProject(ctx, in.ProjectID); err != nil {
			return err
		}
		contractor, err := s.contractors.ApplyPayment(ctx, in.PartyID, in.Amount)
		if err != nil {
			return err
		}

		p = &ContractorPayment{
			Base:           entity.NewBase(),
			ContractorID:   contractor.ID,
			ContractorName: contractor.Name,
			ProjectID:      in.ProjectID,
			Amount:         in.Amount,
			Advance:        orZero(in.Advance),
			Deduction:      orZero(in.Deduction),
			MachineRent:    orZero(in.MachineRent),
			RentDeducted:   orZero(in.RentDeducted),
			PaymentMode:    in.Mode.orDefault(ModeCash),
			BankID:         in.BankID,
			CreditorID:     in.CreditorID,
			WalletUserID:   walletUser,
			PaymentDate:    s.dateOr(in.Date),
			Remarks:        in.Remarks,
			PaidBy:         actor(ctx),
		}
		if err := s.repos.ContractorPayments.Create(ctx, p); err != nil {
			return fmt.Errorf("create contractor payment: %w", err)
		}

		if err := s.fund(ctx, in.BankID, in.CreditorID, accounts.Posting{
			Type:        accounts.Debit,
			Amount:      in.Amount,
			Date:        p.PaymentDate,
			Description: "Payment to contractor: " + contractor.Name,
			RefID:       p.ID,
			RefModel:    accounts.RefContractorPayment,
		}); err != nil {
			return err
		}
		return s.audit.Record(ctx, "contractor_payment", p.ID, audit.ActionCreate, p)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "contractor payment recorded", "payment_id", p.ID, "contractor_id", p.ContractorID, "amount", p.Amount.String())
	return p, nil
}

// DeleteContractorPayment reverses a contractor payment (see DeleteVendorPayment).
func (s *Service) DeleteContractorPayment(ctx context.Context, paymentID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repos.ContractorPayments.GetForUpdate(ctx, paymentID)
		if err != nil {
			return notFoundAs(err, "contractor payment", paymentID)
		}
		if err := s.requireProject(ctx, p.ProjectID); err != nil {
			return err
		}
		if _, err := s.contractors.ReversePayment(ctx, p.ContractorID, p.Amount); err != nil {
			return err
		}
		if err := s.unfund(ctx, p.BankID, p.ID, accounts.RefContractorPayment, p.Amount, "Reversal of contractor payment (Deleted)"); err != nil {
			return err
		}
		if err := s.refundWallet(ctx, p.WalletUserID, p.Amount); err != nil {
			return err
		}
		if err := s.repos.ContractorPayments.Delete(ctx, p.ID); err != nil {
			return fmt.Errorf("delete contractor payment: %w", err)
		}
		return s.audit.Record(ctx, "contractor_payment", p.ID, audit.ActionReverse, p)
	})
}

// ListVendorPayments lists vendor payments; site managers see the ones they made.
func (s *Service) ListVendorPayments(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*VendorPayment], error) {
	return s.repos.VendorPayments.List(ctx, scopeToWallet(ctx, filter))
}

// ListContractorPayments lists contractor payments; site managers see the ones they made.
func (s *Service) ListContractorPayments(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*ContractorPayment], error) {
	return s.repos.ContractorPayments.List(ctx, scopeToWallet(ctx, filter))
}

// --- shared legs ---

// fund applies the bank or creditor side of an outgoing payment.
func (s *Service) fund(ctx context.Context, bankID, creditorID *id.ID, p accounts.Posting) error {
	if bankID != nil {
		if _, err := s.book.PostBank(ctx, *bankID, p); err != nil {
			return err
		}
	}
	if creditorID != nil {
		if _, err := s.book.PostCreditor(ctx, *creditorID, p); err != nil {
			return err
		}
	}
	return nil
}

// unfund credits the bank back with a reversal entry and removes the creditor leg.
func (s *Service) unfund(ctx context.Context, bankID *id.ID, refID id.ID, refModel string, amount types.Money, description string) error {
	if bankID != nil {
		if _, err := s.book.PostBank(ctx, *bankID, accounts.Posting{
			Type:        accounts.Credit,
			Amount:      amount,
			Date:        s.now(),
			Description: description,
			RefID:       refID,
			RefModel:    refModel,
		}); err != nil {
			return err
		}
	}
	if _, err := s.book.ReverseCreditor(ctx, refID, refModel); err != nil {
		return err
	}
	return nil
}

func (s *Service) refundWallet(ctx context.Context, walletUser *id.ID, amount types.Money) error {
	if walletUser == nil {
		return nil
	}
	_, err := s.users.CreditWallet(ctx, *walletUser, amount)
	return err
}

func (s *Service) requireProject(ctx context.Context, projectID *id.ID) error {
	if projectID == nil {
		return nil
	}
	return security.GetScope(ctx).RequireProject(*projectID)
}

func (s *Service) dateOr(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

// --- helpers ---

func requirePositive(amount types.Money, field string) error {
	if !amount.IsPositive() {
		return apperror.NewValidation(field+" must be greater than 0").WithDetail("field", field)
	}
	return nil
}

func orZero(m types.Money) types.Money {
	if m.IsZero() {
		return types.Zero()
	}
	return m
}

func actor(ctx context.Context) *id.ID {
	v, err := id.Parse(appctx.GetUserID(ctx))
	if err != nil {
		return nil
	}
	return id.Ptr(v)
}

func notFoundAs(err error, name string, entityID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(name, entityID.String())
	}
	return err
}

// scopeToWallet restricts site managers to rows paid from their own wallet.
func scopeToWallet(ctx context.Context, filter domain.ListFilter) domain.ListFilter {
	scope := security.GetScope(ctx)
	if !scope.Restricted() {
		return filter
	}
	self, err := id.Parse(scope.UserID)
	if err != nil {
		return filter.Eq("wallet_user_id", []id.ID{})
	}
	return filter.Eq("wallet_user_id", self)
}
