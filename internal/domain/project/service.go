package project

import (
	"context"
	"fmt"

	"sitebook/internal/core/id"
	"sitebook/internal/core/security"
	"sitebook/internal/core/tx"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
)

// Repository is the persistence contract for projects.
type Repository = domain.Repository[*Project]

// Service provides project CRUD and the expense counter used by ledger operations.
type Service struct {
	*domain.CatalogService[*Project]
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new project service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService[*Project](repo, txManager, "project"),
		repo:           repo,
		txManager:      txManager,
	}
}

// AddExpenses changes the running expenses of a project by delta (negative on reversal).
// It must run inside the caller's transaction.
func (s *Service) AddExpenses(ctx context.Context, projectID id.ID, delta types.Money) (*Project, error) {
	var p *Project
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.CatalogService.GetForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		p.Expenses = p.Expenses.Add(delta)
		p.Touch()
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update project expenses: %w", err)
		}
		return nil
	})
	return p, err
}

// ListScoped lists projects visible to the caller: site managers only see their assigned sites.
func (s *Service) ListScoped(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Project], error) {
	scope := security.GetScope(ctx)
	if scope.Restricted() {
		filter = filter.Eq("id", scope.AllowedSites)
	}
	return s.repo.List(ctx, filter)
}

// GetScoped returns a project the caller may see; site managers get 403 for
// projects outside their assigned sites.
func (s *Service) GetScoped(ctx context.Context, projectID id.ID) (*Project, error) {
	if err := security.GetScope(ctx).RequireProject(projectID); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, projectID)
}
