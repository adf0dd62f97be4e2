package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sitebook/internal/core/apperror"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/security"
	"sitebook/internal/core/tx"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
	"sitebook/internal/domain/audit"
	"sitebook/internal/domain/party"
	"sitebook/internal/domain/project"
	"sitebook/internal/domain/user"
	"sitebook/pkg/logger"
)

// Repositories groups the inventory tables.
type Repositories struct {
	Stocks       domain.Repository[*Stock]
	StockOuts    domain.Repository[*StockOut]
	Consumables  domain.Repository[*Consumable]
	LabEquipment domain.Repository[*Asset]
	Equipment    domain.Repository[*Asset]
}

// Deps holds the collaborators of the inventory service.
type Deps struct {
	TxManager tx.Manager
	Repos     Repositories
	Projects  *project.Service
	Vendors   *party.VendorService
	Users     *user.Service
	Audit     audit.Recorder
	Clock     func() time.Time
}

// Service moves material in and out of sites.
type Service struct {
	txManager tx.Manager
	repos     Repositories
	projects  *project.Service
	vendors   *party.VendorService
	users     *user.Service
	audit     audit.Recorder
	now       func() time.Time

	consumables *domain.CatalogService[*Consumable]
	labAssets   *domain.CatalogService[*Asset]
	assets      *domain.CatalogService[*Asset]
}

// NewService creates the inventory service.
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
		projects:    d.Projects,
		vendors:     d.Vendors,
		users:       d.Users,
		audit:       rec,
		now:         clock,
		consumables: domain.NewCatalogService[*Consumable](d.Repos.Consumables, d.TxManager, "consumable"),
		labAssets:   domain.NewCatalogService[*Asset](d.Repos.LabEquipment, d.TxManager, "lab equipment"),
		assets:      domain.NewCatalogService[*Asset](d.Repos.Equipment, d.TxManager, "equipment"),
	}
}

// StockInput describes a delivery of material.
type StockInput struct {
	ProjectID     id.ID
	VendorID      id.ID
	MaterialName  string
	Unit          string
	Quantity      types.Quantity
	UnitPrice     types.Money
	Remarks       string
	PaymentStatus string
}

func (in StockInput) lot(addedBy *id.ID, status string) (*Stock, error) {
	if !in.Quantity.IsPositive() {
		return nil, apperror.NewValidation("quantity must be greater than 0").WithDetail("field", "quantity")
	}
	s := &Stock{
		Base:          entity.NewBase(),
		ProjectID:     in.ProjectID,
		VendorID:      in.VendorID,
		MaterialName:  strings.TrimSpace(in.MaterialName),
		Unit:          in.Unit,
		Quantity:      in.Quantity,
		Consumed:      types.Zero(),
		UnitPrice:     in.UnitPrice,
		Remarks:       in.Remarks,
		AddedBy:       addedBy,
		PaymentStatus: status,
	}
	if s.Unit == "" {
		s.Unit = "kg"
	}
	s.Recompute()
	return s, s.Validate(context.Background())
}

// CreateStock books a lot supplied on credit: the vendor's totalSupplied and
// pendingAmount grow by the lot value.
func (s *Service) CreateStock(ctx context.Context, in StockInput) (*Stock, error) {
	lot, err := in.lot(actor(ctx), PaymentCredit)
	if err != nil {
		return nil, err
	}
	if err := s.receive(ctx, lot, nil); err != nil {
		return nil, err
	}
	return lot, nil
}

// AddStockIn books a lot delivered to a manager's site. A paid lot is taken
// from the manager's wallet and leaves vendor pending untouched; a credit lot
// raises what the company owes the vendor.
func (s *Service) AddStockIn(ctx context.Context, in StockInput) (*Stock, error) {
	status := strings.ToLower(strings.TrimSpace(in.PaymentStatus))
	if status == "" {
		status = PaymentCredit
	}
	self := actor(ctx)
	if self == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	lot, err := in.lot(self, status)
	if err != nil {
		return nil, err
	}
	if err := security.GetScope(ctx).RequireProject(lot.ProjectID); err != nil {
		return nil, err
	}

	var payer *id.ID
	if status == PaymentPaid {
		payer = self
	}
	if err := s.receive(ctx, lot, payer); err != nil {
		return nil, err
	}
	return lot, nil
}

func (s *Service) receive(ctx context.Context, lot *Stock, payer *id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.projects.GetByID(ctx, lot.ProjectID); err != nil {
			return err
		}
		if payer != nil && lot.TotalPrice.IsPositive() {
			if _, err := s.users.DebitWallet(ctx, *payer, lot.TotalPrice); err != nil {
				return err
			}
		}
		if _, err := s.vendors.RecordSupply(ctx, lot.VendorID, lot.TotalPrice, lot.MaterialName, lot.PaymentStatus == PaymentCredit); err != nil {
			return err
		}
		if err := s.repos.Stocks.Create(ctx, lot); err != nil {
			return fmt.Errorf("create stock: %w", err)
		}
		return s.audit.Record(ctx, "stock", lot.ID, audit.ActionCreate, lot)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock received", "stock_id", lot.ID, "material", lot.MaterialName, "quantity", lot.Quantity.String(), "status", lot.PaymentStatus)
	return nil
}

// UpdateStock changes a lot's quantity, price or remarks and recomputes its value.
func (s *Service) UpdateStock(ctx context.Context, stockID id.ID, quantity *types.Quantity, unitPrice *types.Money, remarks *string) (*Stock, error) {
	var out *Stock
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		lot, err := s.lockLot(ctx, stockID)
		if err != nil {
			return err
		}
		if quantity != nil {
			lot.Quantity = *quantity
		}
		if unitPrice != nil {
			lot.UnitPrice = *unitPrice
		}
		if remarks != nil {
			lot.Remarks = *remarks
		}
		lot.Recompute()
		if err := lot.Validate(ctx); err != nil {
			return err
		}
		lot.Touch()
		if err := s.repos.Stocks.Update(ctx, lot); err != nil {
			return fmt.Errorf("update stock: %w", err)
		}
		out = lot
		return s.audit.Record(ctx, "stock", lot.ID, audit.ActionUpdate, lot)
	})
	return out, err
}

// StockOutInput describes material used on a site.
type StockOutInput struct {
	ProjectID    id.ID
	MaterialName string
	Quantity     types.Quantity
	Unit         string
	UsedFor      string
	Date         time.Time
	Remarks      string
}

// RecordStockOut deducts used material from the oldest single lot of the
// project that can cover the whole quantity. Lots are never split.
func (s *Service) RecordStockOut(ctx context.Context, in StockOutInput) (*StockOut, error) {
	if !in.Quantity.IsPositive() {
		return nil, apperror.NewValidation("Quantity must be greater than 0").WithDetail("field", "quantity")
	}
	in.MaterialName = strings.TrimSpace(in.MaterialName)
	if in.MaterialName == "" {
		return nil, apperror.NewValidation("material name is required").WithDetail("field", "materialName")
	}
	if err := security.GetScope(ctx).RequireProject(in.ProjectID); err != nil {
		return nil, err
	}

	var out *StockOut
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		lot, err := s.pickLot(ctx, in.ProjectID, in.MaterialName, in.Quantity)
		if err != nil {
			return err
		}
		lot.Quantity = lot.Quantity.Sub(in.Quantity)
		lot.Consumed = lot.Consumed.Add(in.Quantity)
		lot.Touch()
		if err := s.repos.Stocks.Update(ctx, lot); err != nil {
			return fmt.Errorf("deduct stock: %w", err)
		}

		unit := in.Unit
		if unit == "" {
			unit = lot.Unit
		}
		out = &StockOut{
			Base:         entity.NewBase(),
			ProjectID:    in.ProjectID,
			StockID:      lot.ID,
			MaterialName: in.MaterialName,
			Quantity:     in.Quantity,
			Unit:         unit,
			UsedFor:      in.UsedFor,
			OutDate:      s.dateOr(in.Date),
			Remarks:      in.Remarks,
			RecordedBy:   actor(ctx),
		}
		if err := s.repos.StockOuts.Create(ctx, out); err != nil {
			return fmt.Errorf("create stock out: %w", err)
		}
		return s.audit.Record(ctx, "stock_out", out.ID, audit.ActionCreate, out)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock out recorded", "material", out.MaterialName, "quantity", out.Quantity.String(), "stock_id", out.StockID)
	return out, nil
}

// pickLot returns, locked, the oldest lot with at least qty of the material.
func (s *Service) pickLot(ctx context.Context, projectID id.ID, material string, qty types.Quantity) (*Stock, error) {
	lots, err := s.repos.Stocks.FindAll(ctx, map[string]any{"project_id": projectID, "material_name": material})
	if err != nil {
		return nil, fmt.Errorf("find stock lots: %w", err)
	}

	largest := types.Zero()
	for _, lot := range lots {
		if lot.Quantity.GreaterThan(largest) {
			largest = lot.Quantity
		}
		if lot.Quantity.LessThan(qty) {
			continue
		}
		locked, err := s.lockLot(ctx, lot.ID)
		if err != nil {
			return nil, err
		}
		// re-check under the lock; another stock-out may have drained it
		if locked.Quantity.GreaterThanOrEqual(qty) {
			return locked, nil
		}
	}
	return nil, apperror.NewInsufficientStock(material, qty.String(), largest.String())
}

func (s *Service) lockLot(ctx context.Context, stockID id.ID) (*Stock, error) {
	lot, err := s.repos.Stocks.GetForUpdate(ctx, stockID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("stock", stockID.String())
		}
		return nil, err
	}
	return lot, nil
}

// MoveStock takes quantity of a material off the source project's oldest lot
// (never below zero) and merges it into the destination lot with the same
// vendor and unit price, creating that lot when missing. It returns the
// destination lot, or nil when the source has no lot of the material.
func (s *Service) MoveStock(ctx context.Context, from, to id.ID, material string, quantity types.Quantity) (*Stock, error) {
	var dest *Stock
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		lots, err := s.repos.Stocks.FindAll(ctx, map[string]any{"project_id": from, "material_name": material})
		if err != nil {
			return fmt.Errorf("find source lot: %w", err)
		}
		if len(lots) == 0 {
			return nil
		}
		src, err := s.lockLot(ctx, lots[0].ID)
		if err != nil {
			return err
		}
		src.Quantity = types.MaxZero(src.Quantity.Sub(quantity))
		src.Touch()
		if err := s.repos.Stocks.Update(ctx, src); err != nil {
			return fmt.Errorf("deduct source lot: %w", err)
		}

		matches, err := s.repos.Stocks.FindAll(ctx, map[string]any{
			"project_id":    to,
			"material_name": src.MaterialName,
			"vendor_id":     src.VendorID,
			"unit_price":    src.UnitPrice,
		})
		if err != nil {
			return fmt.Errorf("find destination lot: %w", err)
		}
		if len(matches) > 0 {
			dest, err = s.lockLot(ctx, matches[0].ID)
			if err != nil {
				return err
			}
			dest.Quantity = dest.Quantity.Add(quantity)
			dest.Recompute()
			dest.Touch()
			if err := s.repos.Stocks.Update(ctx, dest); err != nil {
				return fmt.Errorf("merge destination lot: %w", err)
			}
			return nil
		}

		dest = &Stock{
			Base:          entity.NewBase(),
			ProjectID:     to,
			VendorID:      src.VendorID,
			MaterialName:  src.MaterialName,
			Unit:          src.Unit,
			Quantity:      quantity,
			Consumed:      types.Zero(),
			UnitPrice:     src.UnitPrice,
			AddedBy:       actor(ctx),
			Remarks:       "Transferred from " + from.String(),
			PaymentStatus: src.PaymentStatus,
		}
		dest.Recompute()
		if err := s.repos.Stocks.Create(ctx, dest); err != nil {
			return fmt.Errorf("create destination lot: %w", err)
		}
		return nil
	})
	return dest, err
}

// ListStocks lists lots; site managers see their sites only.
func (s *Service) ListStocks(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Stock], error) {
	return s.repos.Stocks.List(ctx, scopeToProjects(ctx, filter))
}

// ListStockOuts lists stock usage; site managers see their sites only.
func (s *Service) ListStockOuts(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*StockOut], error) {
	return s.repos.StockOuts.List(ctx, scopeToProjects(ctx, filter))
}

func (s *Service) dateOr(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

func actor(ctx context.Context) *id.ID {
	v, err := id.Parse(appctx.GetUserID(ctx))
	if err != nil {
		return nil
	}
	return id.Ptr(v)
}

// scopeToProjects narrows a restricted caller to the projects they manage,
// honouring an explicit project filter when it is inside the scope.
func scopeToProjects(ctx context.Context, filter domain.ListFilter) domain.ListFilter {
	scope := security.GetScope(ctx)
	if !scope.Restricted() {
		return filter
	}
	var requested []id.ID
	switch v := filter.Where["project_id"].(type) {
	case id.ID:
		requested = []id.ID{v}
	case []id.ID:
		requested = v
	}
	return filter.Eq("project_id", scope.FilterProjects(requested))
}
