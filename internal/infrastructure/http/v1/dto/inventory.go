package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
	"sitebook/internal/domain/inventory"
	"sitebook/internal/domain/transfer"
)

// StockRequest records a delivered lot.
type StockRequest struct {
	ProjectID     id.ID          `json:"projectId" binding:"required"`
	VendorID      id.ID          `json:"vendorId" binding:"required"`
	MaterialName  string         `json:"materialName" binding:"required,max=200"`
	Unit          string         `json:"unit" binding:"required,max=20"`
	Quantity      types.Quantity `json:"quantity"`
	UnitPrice     types.Money    `json:"unitPrice"`
	Remarks       string         `json:"remarks" binding:"max=1000"`
	PaymentStatus string         `json:"paymentStatus" binding:"omitempty,oneof=credit paid"`
}

// ToInput maps the request to the inventory input.
func (r StockRequest) ToInput() inventory.StockInput {
	return inventory.StockInput{
		ProjectID:     r.ProjectID,
		VendorID:      r.VendorID,
		MaterialName:  r.MaterialName,
		Unit:          r.Unit,
		Quantity:      r.Quantity,
		UnitPrice:     r.UnitPrice,
		Remarks:       r.Remarks,
		PaymentStatus: r.PaymentStatus,
	}
}

// StockUpdateRequest corrects a lot.
type StockUpdateRequest struct {
	Quantity  *types.Quantity `json:"quantity"`
	UnitPrice *types.Money    `json:"unitPrice"`
	Remarks   *string         `json:"remarks" binding:"omitempty,max=1000"`
}

// StockOutRequest consumes material from the oldest lot that covers it.
type StockOutRequest struct {
	ProjectID    id.ID          `json:"projectId" binding:"required"`
	MaterialName string         `json:"materialName" binding:"required,max=200"`
	Quantity     types.Quantity `json:"quantity"`
	Unit         string         `json:"unit" binding:"max=20"`
	UsedFor      string         `json:"usedFor" binding:"max=500"`
	Date         *Date          `json:"date"`
	Remarks      string         `json:"remarks" binding:"max=1000"`
}

// ToInput maps the request to the inventory input.
func (r StockOutRequest) ToInput() inventory.StockOutInput {
	return inventory.StockOutInput{
		ProjectID:    r.ProjectID,
		MaterialName: r.MaterialName,
		Quantity:     r.Quantity,
		Unit:         r.Unit,
		UsedFor:      r.UsedFor,
		Date:         r.Date.TimeOrZero(),
		Remarks:      r.Remarks,
	}
}

// ConsumableRequest creates or replaces a consumable goods record.
type ConsumableRequest struct {
	ProjectID     id.ID          `json:"projectId" binding:"required"`
	Name          string         `json:"name" binding:"required,max=200"`
	Category      string         `json:"category" binding:"max=100"`
	Quantity      types.Quantity `json:"quantity"`
	Unit          string         `json:"unit" binding:"required,max=20"`
	MinStockLevel types.Quantity `json:"minStockLevel"`
	ExpiryDate    *Date          `json:"expiryDate"`
	Remarks       string         `json:"remarks" binding:"max=1000"`
}

// ToEntity builds a new consumable.
func (r ConsumableRequest) ToEntity() *inventory.Consumable {
	c := &inventory.Consumable{Base: entity.NewBase()}
	_ = r.Apply(c)
	return c
}

// Apply copies the request onto c.
func (r ConsumableRequest) Apply(c *inventory.Consumable) error {
	c.ProjectID = r.ProjectID
	c.Name = strings.TrimSpace(r.Name)
	c.Category = strings.TrimSpace(r.Category)
	c.Quantity = r.Quantity
	c.Unit = strings.TrimSpace(r.Unit)
	c.MinStockLevel = r.MinStockLevel
	c.ExpiryDate = r.ExpiryDate.TimePtr()
	c.Remarks = r.Remarks
	return nil
}

// ConsumeRequest takes a quantity of consumable goods.
type ConsumeRequest struct {
	Quantity types.Quantity `json:"quantity"`
}

// AssetRequest creates or replaces lab equipment or general equipment.
type AssetRequest struct {
	ProjectID    id.ID          `json:"projectId" binding:"required"`
	Name         string         `json:"name" binding:"required,max=200"`
	Category     string         `json:"category" binding:"max=100"`
	Quantity     types.Quantity `json:"quantity"`
	Status       string         `json:"status" binding:"omitempty,oneof=active maintenance damaged"`
	SerialNumber string         `json:"serialNumber" binding:"max=100"`
	PurchaseDate *Date          `json:"purchaseDate"`
	Remarks      string         `json:"remarks" binding:"max=1000"`
}

// ToEntity builds a new asset.
func (r AssetRequest) ToEntity() *inventory.Asset {
	a := &inventory.Asset{Base: entity.NewBase()}
	_ = r.Apply(a)
	return a
}

// Apply copies the request onto a.
func (r AssetRequest) Apply(a *inventory.Asset) error {
	a.ProjectID = r.ProjectID
	a.Name = strings.TrimSpace(r.Name)
	a.Category = strings.TrimSpace(r.Category)
	a.Quantity = r.Quantity
	if a.Quantity.IsZero() {
		a.Quantity = decimal.NewFromInt(1)
	}
	a.Status = r.Status
	if a.Status == "" {
		a.Status = inventory.AssetActive
	}
	a.SerialNumber = strings.TrimSpace(r.SerialNumber)
	a.PurchaseDate = r.PurchaseDate.TimePtr()
	a.Remarks = r.Remarks
	return nil
}

// TransferRequest moves an item between projects. Stock is referenced by
// materialName, every other type by itemId (labourId for labour).
type TransferRequest struct {
	Type         string         `json:"type" binding:"required,oneof=labour machine lab-equipment equipment stock consumable-goods"`
	FromProject  id.ID          `json:"fromProject" binding:"required"`
	ToProject    id.ID          `json:"toProject" binding:"required"`
	LabourID     string         `json:"labourId"`
	ItemID       string         `json:"itemId"`
	MaterialName string         `json:"materialName"`
	Quantity     types.Quantity `json:"quantity"`
	Remarks      string         `json:"remarks" binding:"max=1000"`
}

// ToRequest resolves the item variant.
func (r TransferRequest) ToRequest() (transfer.Request, error) {
	kind := transfer.Kind(r.Type)
	ref := r.ItemID
	switch kind {
	case transfer.KindLabour:
		if r.LabourID != "" {
			ref = r.LabourID
		}
	case transfer.KindStock:
		if r.MaterialName != "" {
			ref = r.MaterialName
		}
	}
	item, err := transfer.NewItem(kind, ref)
	if err != nil {
		return transfer.Request{}, err
	}
	return transfer.Request{
		Item:        item,
		FromProject: r.FromProject,
		ToProject:   r.ToProject,
		Quantity:    r.Quantity,
		Remarks:     r.Remarks,
	}, nil
}
