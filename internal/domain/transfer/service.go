package transfer

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"sitebook/internal/core/apperror"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/security"
	"sitebook/internal/core/tx"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
	"sitebook/internal/domain/audit"
	"sitebook/internal/domain/inventory"
	"sitebook/internal/domain/labour"
	"sitebook/internal/domain/notification"
	"sitebook/internal/domain/project"
	"sitebook/internal/domain/rental"
	"sitebook/pkg/logger"
)

// LabourMover reassigns labourers.
type LabourMover interface {
	Reassign(ctx context.Context, labourID, to id.ID) (*labour.Labour, error)
}

// MachineMover relocates machines.
type MachineMover interface {
	Relocate(ctx context.Context, machineID, to id.ID) (*rental.Machine, error)
}

// InventoryMover moves stock, consumables and equipment.
type InventoryMover interface {
	MoveStock(ctx context.Context, from, to id.ID, material string, quantity types.Quantity) (*inventory.Stock, error)
	MoveConsumable(ctx context.Context, consumableID, to id.ID, quantity types.Quantity) (*inventory.Consumable, error)
	MoveAsset(ctx context.Context, kind inventory.AssetKind, assetID, to id.ID) (*inventory.Asset, error)
}

// Notifier tells admins about site activity.
type Notifier interface {
	NotifyAdmins(ctx context.Context, msg notification.Message) (int, error)
}

// Movers are the services that own the transferable entities.
type Movers struct {
	Labour    LabourMover
	Machines  MachineMover
	Inventory InventoryMover
}

// Service creates and lists transfers.
type Service struct {
	repo      domain.Repository[*Transfer]
	movers    Movers
	projects  *project.Service
	notifier  Notifier
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates the transfer service. notifier may be nil.
func NewService(repo domain.Repository[*Transfer], movers Movers, projects *project.Service, notifier Notifier, txManager tx.Manager, rec audit.Recorder) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		movers:    movers,
		projects:  projects,
		notifier:  notifier,
		txManager: txManager,
		audit:     rec,
	}
}

// Request asks to move an item between projects. A zero quantity means 1.
type Request struct {
	Item        Item
	FromProject id.ID
	ToProject   id.ID
	Quantity    types.Quantity
	Remarks     string
}

// Create records the transfer as approved and executes it. Site managers may
// only move items off their own sites, and their requests notify every admin.
func (s *Service) Create(ctx context.Context, req Request) (*Transfer, error) {
	if req.Item == nil {
		return nil, apperror.NewValidation("Item is required")
	}
	t := &Transfer{
		Base:        entity.NewBase(),
		Kind:        req.Item.Kind(),
		FromProject: req.FromProject,
		ToProject:   req.ToProject,
		Quantity:    req.Quantity,
		Remarks:     strings.TrimSpace(req.Remarks),
		Status:      StatusApproved,
	}
	if t.Quantity.IsZero() {
		t.Quantity = decimal.NewFromInt(1)
	}
	if err := t.Validate(ctx); err != nil {
		return nil, err
	}

	scope := security.GetScope(ctx)
	if err := scope.RequireProject(t.FromProject); err != nil {
		return nil, err
	}
	if self, err := id.Parse(appctx.GetUserID(ctx)); err == nil {
		t.RequestedBy = id.Ptr(self)
	}

	var from, to *project.Project
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		if from, err = s.projects.GetByID(ctx, t.FromProject); err != nil {
			return err
		}
		if to, err = s.projects.GetByID(ctx, t.ToProject); err != nil {
			return err
		}
		if err := req.Item.apply(ctx, s.movers, t); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, t); err != nil {
			return fmt.Errorf("create transfer: %w", err)
		}
		return s.audit.Record(ctx, "transfer", t.ID, audit.ActionCreate, t)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transfer executed", "transfer_id", t.ID, "type", string(t.Kind), "from", t.FromProject, "to", t.ToProject)

	if scope.Restricted() {
		s.notifyAdmins(ctx, t, from.Name, to.Name)
	}
	return t, nil
}

// notifyAdmins is best effort: the transfer already happened.
func (s *Service) notifyAdmins(ctx context.Context, t *Transfer, fromName, toName string) {
	if s.notifier == nil {
		return
	}
	label := t.ItemLabel
	if label == "" {
		label = "Item"
	}
	_, err := s.notifier.NotifyAdmins(ctx, notification.Message{
		Title:        "New Transfer Request",
		Body:         fmt.Sprintf("Transfer of %s %s from %s to %s requested.", t.Quantity.String(), label, fromName, toName),
		Kind:         notification.KindInfo,
		Link:         "/admin/transfer",
		RelatedID:    id.Ptr(t.ID),
		RelatedModel: "Transfer",
	})
	if err != nil {
		logger.Warn(ctx, "transfer notification failed", "transfer_id", t.ID, "error", err)
	}
}

// List lists transfers; site managers see the ones leaving or reaching their sites.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Transfer], error) {
	scope := security.GetScope(ctx)
	if !scope.Restricted() {
		return s.repo.List(ctx, filter)
	}

	// A row matches when either end is on an allowed site, so the two
	// directions are fetched separately and merged.
	out, err := s.repo.List(ctx, filter.Eq("from_project", scope.AllowedSites))
	if err != nil {
		return out, err
	}
	incoming, err := s.repo.List(ctx, filter.Eq("to_project", scope.AllowedSites))
	if err != nil {
		return out, err
	}
	seen := make(map[id.ID]bool, len(out.Items))
	for _, t := range out.Items {
		seen[t.ID] = true
	}
	for _, t := range incoming.Items {
		if !seen[t.ID] {
			out.Items = append(out.Items, t)
			out.TotalCount++
		}
	}
	return out, nil
}
