// Package transfer moves labour, machines, equipment, stock and consumables
// between projects. Every transfer is approved on creation and executed in the
// same transaction that records it.
package transfer

import (
	"context"
	"strings"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
	"sitebook/internal/domain/inventory"
)

// Kind is the transferred entity type.
type Kind string

const (
	KindLabour       Kind = "labour"
	KindMachine      Kind = "machine"
	KindLabEquipment Kind = "lab-equipment"
	KindEquipment    Kind = "equipment"
	KindStock        Kind = "stock"
	KindConsumable   Kind = "consumable-goods"
)

// Status of a transfer row. Only approved is produced today.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// Transfer is the persisted record of an executed move.
type Transfer struct {
	entity.Base

	Kind         Kind           `db:"type" json:"type"`
	FromProject  id.ID          `db:"from_project" json:"fromProject"`
	ToProject    id.ID          `db:"to_project" json:"toProject"`
	LabourID     *id.ID         `db:"labour_id" json:"labourId,omitempty"`
	ItemID       *id.ID         `db:"item_id" json:"itemId,omitempty"`
	MaterialName string         `db:"material_name" json:"materialName,omitempty"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`
	Remarks      string         `db:"remarks" json:"remarks,omitempty"`
	Status       Status         `db:"status" json:"status"`
	RequestedBy  *id.ID         `db:"requested_by" json:"requestedBy,omitempty"`

	// ItemLabel names the moved item for messages; it is not stored.
	ItemLabel string `db:"-" json:"itemLabel,omitempty"`
}

// Validate implements entity.Validatable.
func (t *Transfer) Validate(_ context.Context) error {
	if id.IsNil(t.FromProject) || id.IsNil(t.ToProject) {
		return apperror.NewValidation("Please provide all required fields")
	}
	if t.FromProject == t.ToProject {
		return apperror.NewValidation("source and destination projects must differ")
	}
	if !t.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be greater than 0").WithDetail("field", "quantity")
	}
	return nil
}

// Item is one transferable thing. Each variant moves itself and fills the
// columns of the transfer row that describe it.
type Item interface {
	Kind() Kind
	apply(ctx context.Context, m Movers, t *Transfer) error
}

// LabourTransfer moves a labourer to the destination site.
type LabourTransfer struct {
	LabourID id.ID
}

// MachineTransfer relocates a machine; it becomes available and loses its contractor.
type MachineTransfer struct {
	MachineID id.ID
}

// LabEquipmentTransfer relocates lab equipment and marks it active.
type LabEquipmentTransfer struct {
	AssetID id.ID
}

// EquipmentTransfer relocates general equipment and marks it active.
type EquipmentTransfer struct {
	AssetID id.ID
}

// StockTransfer moves a quantity of a material from the source project's oldest lot.
type StockTransfer struct {
	MaterialName string
}

// ConsumableTransfer moves a quantity of a consumable item.
type ConsumableTransfer struct {
	ConsumableID id.ID
}

func (LabourTransfer) Kind() Kind       { return KindLabour }
func (MachineTransfer) Kind() Kind      { return KindMachine }
func (LabEquipmentTransfer) Kind() Kind { return KindLabEquipment }
func (EquipmentTransfer) Kind() Kind    { return KindEquipment }
func (StockTransfer) Kind() Kind        { return KindStock }
func (ConsumableTransfer) Kind() Kind   { return KindConsumable }

// NewItem builds the variant for a client-supplied type and item reference.
// Stock is referenced by material name, everything else by id.
func NewItem(kind Kind, ref string) (Item, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		if kind == KindLabour {
			return nil, apperror.NewValidation("Labour is required")
		}
		return nil, apperror.NewValidation("Item is required")
	}
	if kind == KindStock {
		return StockTransfer{MaterialName: ref}, nil
	}

	itemID, err := id.Parse(ref)
	if err != nil {
		return nil, apperror.NewValidation("invalid item id").WithDetail("itemId", ref)
	}
	switch kind {
	case KindLabour:
		return LabourTransfer{LabourID: itemID}, nil
	case KindMachine:
		return MachineTransfer{MachineID: itemID}, nil
	case KindLabEquipment:
		return LabEquipmentTransfer{AssetID: itemID}, nil
	case KindEquipment:
		return EquipmentTransfer{AssetID: itemID}, nil
	case KindConsumable:
		return ConsumableTransfer{ConsumableID: itemID}, nil
	}
	return nil, apperror.NewValidation("invalid transfer type").WithDetail("type", string(kind))
}

func (it LabourTransfer) apply(ctx context.Context, m Movers, t *Transfer) error {
	l, err := m.Labour.Reassign(ctx, it.LabourID, t.ToProject)
	if err != nil {
		return err
	}
	t.LabourID = id.Ptr(it.LabourID)
	t.ItemLabel = l.Name
	return nil
}

func (it MachineTransfer) apply(ctx context.Context, m Movers, t *Transfer) error {
	mc, err := m.Machines.Relocate(ctx, it.MachineID, t.ToProject)
	if err != nil {
		return err
	}
	t.ItemID = id.Ptr(it.MachineID)
	t.ItemLabel = mc.Label()
	return nil
}

func (it LabEquipmentTransfer) apply(ctx context.Context, m Movers, t *Transfer) error {
	return moveAsset(ctx, m, inventory.KindLabEquipment, it.AssetID, t)
}

func (it EquipmentTransfer) apply(ctx context.Context, m Movers, t *Transfer) error {
	return moveAsset(ctx, m, inventory.KindEquipment, it.AssetID, t)
}

func moveAsset(ctx context.Context, m Movers, kind inventory.AssetKind, assetID id.ID, t *Transfer) error {
	a, err := m.Inventory.MoveAsset(ctx, kind, assetID, t.ToProject)
	if err != nil {
		return err
	}
	t.ItemID = id.Ptr(assetID)
	t.ItemLabel = a.Name
	return nil
}

func (it StockTransfer) apply(ctx context.Context, m Movers, t *Transfer) error {
	dest, err := m.Inventory.MoveStock(ctx, t.FromProject, t.ToProject, it.MaterialName, t.Quantity)
	if err != nil {
		return err
	}
	if dest == nil {
		return apperror.NewNotFound("stock", it.MaterialName)
	}
	t.MaterialName = dest.MaterialName
	t.ItemLabel = dest.MaterialName
	return nil
}

func (it ConsumableTransfer) apply(ctx context.Context, m Movers, t *Transfer) error {
	dest, err := m.Inventory.MoveConsumable(ctx, it.ConsumableID, t.ToProject, t.Quantity)
	if err != nil {
		return err
	}
	if dest == nil {
		return apperror.NewNotFound("consumable", it.ConsumableID.String())
	}
	t.ItemID = id.Ptr(it.ConsumableID)
	t.MaterialName = dest.Name
	t.ItemLabel = dest.Name
	return nil
}

var (
	_ Item = LabourTransfer{}
	_ Item = MachineTransfer{}
	_ Item = LabEquipmentTransfer{}
	_ Item = EquipmentTransfer{}
	_ Item = StockTransfer{}
	_ Item = ConsumableTransfer{}
)
