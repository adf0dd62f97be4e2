package inventory

import (
	"context"
	"fmt"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/security"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
	"sitebook/internal/domain/audit"
)

// Consumables exposes CRUD over consumable goods.
func (s *Service) Consumables() *domain.CatalogService[*Consumable] {
	return s.consumables
}

// Assets exposes CRUD over the asset table of the given kind.
func (s *Service) Assets(kind AssetKind) (*domain.CatalogService[*Asset], error) {
	switch kind {
	case KindLabEquipment:
		return s.labAssets, nil
	case KindEquipment:
		return s.assets, nil
	}
	return nil, apperror.NewValidation("unknown equipment kind").WithDetail("kind", string(kind))
}

// AddConsumable creates a consumable on a project within the caller's scope.
func (s *Service) AddConsumable(ctx context.Context, c *Consumable) error {
	if err := security.GetScope(ctx).RequireProject(c.ProjectID); err != nil {
		return err
	}
	if id.IsNil(c.ID) {
		c.Base = entity.NewBase()
	}
	return s.consumables.Create(ctx, c)
}

// ConsumeGoods uses quantity of a consumable; it cannot go below zero.
func (s *Service) ConsumeGoods(ctx context.Context, consumableID id.ID, quantity types.Quantity) (*Consumable, error) {
	if !quantity.IsPositive() {
		return nil, apperror.NewValidation("quantity must be greater than 0").WithDetail("field", "quantity")
	}

	var out *Consumable
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.consumables.GetForUpdate(ctx, consumableID)
		if err != nil {
			return err
		}
		if err := security.GetScope(ctx).RequireProject(c.ProjectID); err != nil {
			return err
		}
		if c.Quantity.LessThan(quantity) {
			return apperror.NewInsufficientStock(c.Name, quantity.String(), c.Quantity.String())
		}
		c.Quantity = c.Quantity.Sub(quantity)
		c.Touch()
		if err := s.repos.Consumables.Update(ctx, c); err != nil {
			return fmt.Errorf("consume goods: %w", err)
		}
		out = c
		return s.audit.Record(ctx, "consumable", c.ID, audit.ActionUpdate, map[string]any{"consumed": quantity, "remaining": c.Quantity})
	})
	return out, err
}

// MoveConsumable takes quantity off a consumable (never below zero) and merges
// it into the same-named item on the destination project, creating it when
// missing. It returns nil when the source item does not exist.
func (s *Service) MoveConsumable(ctx context.Context, consumableID, to id.ID, quantity types.Quantity) (*Consumable, error) {
	var dest *Consumable
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		src, err := s.consumables.GetForUpdate(ctx, consumableID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil
			}
			return err
		}
		src.Quantity = types.MaxZero(src.Quantity.Sub(quantity))
		src.Touch()
		if err := s.repos.Consumables.Update(ctx, src); err != nil {
			return fmt.Errorf("deduct consumable: %w", err)
		}

		matches, err := s.repos.Consumables.FindAll(ctx, map[string]any{"project_id": to, "name": src.Name})
		if err != nil {
			return fmt.Errorf("find destination consumable: %w", err)
		}
		if len(matches) > 0 {
			dest, err = s.consumables.GetForUpdate(ctx, matches[0].ID)
			if err != nil {
				return err
			}
			dest.Quantity = dest.Quantity.Add(quantity)
			dest.Touch()
			if err := s.repos.Consumables.Update(ctx, dest); err != nil {
				return fmt.Errorf("merge consumable: %w", err)
			}
			return nil
		}

		dest = &Consumable{
			Base:          entity.NewBase(),
			ProjectID:     to,
			Name:          src.Name,
			Category:      src.Category,
			Quantity:      quantity,
			Unit:          src.Unit,
			MinStockLevel: src.MinStockLevel,
			ExpiryDate:    src.ExpiryDate,
			Remarks:       "Transferred from " + src.ProjectID.String(),
		}
		if err := s.repos.Consumables.Create(ctx, dest); err != nil {
			return fmt.Errorf("create consumable: %w", err)
		}
		return nil
	})
	return dest, err
}

// MoveAsset reassigns a piece of equipment to another project and marks it active.
func (s *Service) MoveAsset(ctx context.Context, kind AssetKind, assetID, to id.ID) (*Asset, error) {
	catalog, err := s.Assets(kind)
	if err != nil {
		return nil, err
	}
	return catalog.Update(ctx, assetID, func(a *Asset) error {
		a.ProjectID = to
		a.Status = AssetActive
		a.Touch()
		return nil
	})
}

// ListConsumables lists consumables; site managers see their sites only.
func (s *Service) ListConsumables(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Consumable], error) {
	return s.consumables.List(ctx, scopeToProjects(ctx, filter))
}

// ListAssets lists equipment of a kind; site managers see their sites only.
func (s *Service) ListAssets(ctx context.Context, kind AssetKind, filter domain.ListFilter) (domain.ListResult[*Asset], error) {
	catalog, err := s.Assets(kind)
	if err != nil {
		return domain.ListResult[*Asset]{}, err
	}
	return catalog.List(ctx, scopeToProjects(ctx, filter))
}
