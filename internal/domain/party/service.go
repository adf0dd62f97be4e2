package party

import (
	"context"
	"fmt"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/id"
	"sitebook/internal/core/security"
	"sitebook/internal/core/tx"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
)

// Payable is a party whose balance follows the pending/advance rule.
type Payable interface {
	domain.CatalogEntity
	Balance() Balance
	SetBalance(Balance)
	Touch()
}

// Ledger adjusts the balance of one kind of party under a row lock.
// It is embedded in VendorService and ContractorService.
type Ledger[T Payable] struct {
	*domain.CatalogService[T]
	repo      domain.Repository[T]
	txManager tx.Manager
}

func newLedger[T Payable](repo domain.Repository[T], txManager tx.Manager, name string) Ledger[T] {
	catalog := domain.NewCatalogService[T](repo, txManager, name)
	catalog.Hooks().On(domain.BeforeDelete, func(_ context.Context, p T) error {
		b := p.Balance()
		if b.Pending.IsZero() && b.Advance.IsZero() {
			return nil
		}
		return apperror.NewConflict(fmt.Sprintf("%s has an open balance", name)).
			WithDetail("pendingAmount", b.Pending).
			WithDetail("advancePayment", b.Advance)
	})
	return Ledger[T]{
		CatalogService: catalog,
		repo:           repo,
		txManager:      txManager,
	}
}

// ApplyPayment locks the party and applies a payment of amount.
func (l Ledger[T]) ApplyPayment(ctx context.Context, partyID id.ID, amount types.Money) (T, error) {
	return l.adjust(ctx, partyID, func(b Balance) (Balance, error) { return b.ApplyPayment(amount) })
}

// ReversePayment locks the party and undoes a payment of amount.
func (l Ledger[T]) ReversePayment(ctx context.Context, partyID id.ID, amount types.Money) (T, error) {
	return l.adjust(ctx, partyID, func(b Balance) (Balance, error) { return b.ReversePayment(amount) })
}

func (l Ledger[T]) adjust(ctx context.Context, partyID id.ID, fn func(Balance) (Balance, error)) (T, error) {
	var out T
	err := l.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := l.GetForUpdate(ctx, partyID)
		if err != nil {
			return err
		}
		next, err := fn(p.Balance())
		if err != nil {
			return err
		}
		p.SetBalance(next)
		p.Touch()
		if err := l.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		out = p
		return nil
	})
	return out, err
}

// VendorService manages vendors.
type VendorService struct {
	Ledger[*Vendor]
}

// NewVendorService creates a vendor service.
func NewVendorService(repo domain.Repository[*Vendor], txManager tx.Manager) *VendorService {
	return &VendorService{Ledger: newLedger[*Vendor](repo, txManager, "vendor")}
}

// RecordSupply books delivered goods against a vendor (see Vendor.RecordSupply).
func (s *VendorService) RecordSupply(ctx context.Context, vendorID id.ID, total types.Money, material string, onCredit bool) (*Vendor, error) {
	var out *Vendor
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		v, err := s.GetForUpdate(ctx, vendorID)
		if err != nil {
			return err
		}
		v.RecordSupply(total, material, onCredit)
		v.Touch()
		if err := s.repo.Update(ctx, v); err != nil {
			return fmt.Errorf("update vendor supply: %w", err)
		}
		out = v
		return nil
	})
	return out, err
}

// ContractorService manages contractors.
type ContractorService struct {
	Ledger[*Contractor]
}

// NewContractorService creates a contractor service.
func NewContractorService(repo domain.Repository[*Contractor], txManager tx.Manager) *ContractorService {
	return &ContractorService{Ledger: newLedger[*Contractor](repo, txManager, "contractor")}
}

// ListScoped lists contractors; site managers only see contractors working on their sites.
func (s *ContractorService) ListScoped(ctx context.Context, filter domain.ListFilter) ([]*Contractor, error) {
	all, err := s.repo.FindAll(ctx, filter.Where)
	if err != nil {
		return nil, err
	}
	scope := security.GetScope(ctx)
	if !scope.Restricted() {
		return all, nil
	}
	out := make([]*Contractor, 0, len(all))
	for _, c := range all {
		for _, p := range c.AssignedProjects {
			if scope.CanAccessProject(p) {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

// OnProjects returns contractors assigned to any of projectIDs.
func (s *ContractorService) OnProjects(ctx context.Context, projectIDs []id.ID) ([]*Contractor, error) {
	all, err := s.repo.FindAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	var out []*Contractor
	for _, c := range all {
		for _, p := range projectIDs {
			if c.WorksOn(p) {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

var (
	_ Payable = (*Vendor)(nil)
	_ Payable = (*Contractor)(nil)
)
