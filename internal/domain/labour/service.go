package labour

import (
	"context"
	"fmt"

	"sitebook/internal/core/apperror"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/security"
	"sitebook/internal/core/tx"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
	"sitebook/internal/domain/audit"
	"sitebook/internal/domain/ledger"
	"sitebook/internal/domain/user"
	"sitebook/pkg/logger"
)

// Service manages labourers and wage payouts.
type Service struct {
	*domain.CatalogService[*Labour]
	repo      domain.Repository[*Labour]
	payments  domain.Repository[*Payment]
	users     *user.Service
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates the labour service.
func NewService(repo domain.Repository[*Labour], payments domain.Repository[*Payment], users *user.Service, txManager tx.Manager, rec audit.Recorder) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{
		CatalogService: domain.NewCatalogService[*Labour](repo, txManager, "labour"),
		repo:           repo,
		payments:       payments,
		users:          users,
		txManager:      txManager,
		audit:          rec,
	}
}

// Enroll creates a labourer. Site managers may only enroll on their own sites.
func (s *Service) Enroll(ctx context.Context, l *Labour) error {
	scope := security.GetScope(ctx)
	if scope.Restricted() {
		if l.AssignedSite == nil {
			return apperror.NewValidation("assigned site is required").WithDetail("field", "assignedSite")
		}
		if err := scope.RequireProject(*l.AssignedSite); err != nil {
			return err
		}
	}
	if self, err := id.Parse(appctx.GetUserID(ctx)); err == nil {
		l.EnrolledBy = id.Ptr(self)
	}
	return s.Create(ctx, l)
}

// ListScoped lists labourers; site managers see the ones on their sites.
func (s *Service) ListScoped(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Labour], error) {
	scope := security.GetScope(ctx)
	if scope.Restricted() {
		filter = filter.Eq("assigned_site", scope.AllowedSites)
	}
	return s.repo.List(ctx, filter)
}

// PayInput describes a wage payout.
type PayInput struct {
	LabourID  id.ID
	Amount    types.Money
	Deduction types.Money
	Advance   types.Money
	Mode      string
	Remarks   string
}

// PayLabour records a payout by the signed-in user. Cash payouts with a
// positive final amount are taken from the payer's wallet; the labourer's
// pending payout drops by the gross amount.
func (s *Service) PayLabour(ctx context.Context, in PayInput) (*Payment, error) {
	if !in.Amount.IsPositive() && !in.Advance.IsPositive() {
		return nil, apperror.NewValidation("Amount or Advance must be greater than 0")
	}
	if in.Amount.IsNegative() || in.Deduction.IsNegative() || in.Advance.IsNegative() {
		return nil, apperror.NewValidation("amounts cannot be negative")
	}
	mode, err := ledger.ParseMode(in.Mode, ledger.ModeCash)
	if err != nil {
		return nil, err
	}
	payer, err := id.Parse(appctx.GetUserID(ctx))
	if err != nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}

	var p *Payment
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		l, err := s.GetForUpdate(ctx, in.LabourID)
		if err != nil {
			return err
		}
		if l.AssignedSite != nil {
			if err := security.GetScope(ctx).RequireProject(*l.AssignedSite); err != nil {
				return err
			}
		}

		p = &Payment{
			Base:        entity.NewBase(),
			LabourID:    l.ID,
			UserID:      payer,
			Amount:      in.Amount,
			Deduction:   in.Deduction,
			Advance:     in.Advance,
			FinalAmount: in.Amount.Sub(in.Deduction).Sub(in.Advance),
			PaymentMode: string(mode),
			Remarks:     in.Remarks,
		}
		if p.FromWallet() {
			if _, err := s.users.DebitWallet(ctx, payer, p.FinalAmount); err != nil {
				return err
			}
		}
		if err := s.payments.Create(ctx, p); err != nil {
			return fmt.Errorf("create labour payment: %w", err)
		}

		l.Settle(in.Amount)
		l.Touch()
		if err := s.repo.Update(ctx, l); err != nil {
			return fmt.Errorf("update pending payout: %w", err)
		}
		return s.audit.Record(ctx, "labour_payment", p.ID, audit.ActionCreate, p)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "labour paid", "labour_id", p.LabourID, "final_amount", p.FinalAmount.String(), "mode", p.PaymentMode)
	return p, nil
}

// ListPayments lists payouts; site managers see the ones they made.
func (s *Service) ListPayments(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Payment], error) {
	scope := security.GetScope(ctx)
	if scope.Restricted() {
		self, err := id.Parse(scope.UserID)
		if err != nil {
			return domain.ListResult[*Payment]{}, apperror.NewUnauthorized("authentication required")
		}
		filter = filter.Eq("user_id", self)
	}
	return s.payments.List(ctx, filter)
}

// Reassign moves a labourer to another site.
func (s *Service) Reassign(ctx context.Context, labourID, to id.ID) (*Labour, error) {
	return s.Update(ctx, labourID, func(l *Labour) error {
		l.AssignedSite = id.Ptr(to)
		l.Touch()
		return nil
	})
}
