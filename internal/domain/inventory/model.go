// Package inventory keeps the material lots, consumables and small assets held
// on each site. Quantities are running balances changed only by stock-in,
// stock-out, consumption and transfers.
package inventory

import (
	"context"
	"slices"
	"strings"
	"time"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
)

// Units a stock lot may be measured in.
var Units = []string{"kg", "ltr", "bags", "pcs", "meter", "box", "ton", "ft", "piece", "bundle"}

// Payment status of a stock lot.
const (
	PaymentCredit = "credit"
	PaymentPaid   = "paid"
)

// Stock is one delivered lot of a material on a project.
type Stock struct {
	entity.Base

	ProjectID     id.ID          `db:"project_id" json:"projectId"`
	VendorID      id.ID          `db:"vendor_id" json:"vendorId"`
	MaterialName  string         `db:"material_name" json:"materialName"`
	Unit          string         `db:"unit" json:"unit"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	Consumed      types.Quantity `db:"consumed" json:"consumed"`
	UnitPrice     types.Money    `db:"unit_price" json:"unitPrice"`
	TotalPrice    types.Money    `db:"total_price" json:"totalPrice"`
	Remarks       string         `db:"remarks" json:"remarks,omitempty"`
	AddedBy       *id.ID         `db:"added_by" json:"addedBy,omitempty"`
	PaymentStatus string         `db:"payment_status" json:"paymentStatus"`
}

// Recompute sets TotalPrice = Quantity × UnitPrice.
func (s *Stock) Recompute() {
	s.TotalPrice = s.Quantity.Mul(s.UnitPrice)
}

// Validate implements entity.Validatable.
func (s *Stock) Validate(_ context.Context) error {
	if strings.TrimSpace(s.MaterialName) == "" {
		return apperror.NewValidation("material name is required").WithDetail("field", "materialName")
	}
	if !slices.Contains(Units, s.Unit) {
		return apperror.NewValidation("invalid unit").WithDetail("unit", s.Unit)
	}
	if s.Quantity.IsNegative() {
		return apperror.NewValidation("quantity cannot be negative").WithDetail("field", "quantity")
	}
	if s.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").WithDetail("field", "unitPrice")
	}
	if s.PaymentStatus != PaymentCredit && s.PaymentStatus != PaymentPaid {
		return apperror.NewValidation("payment status must be credit or paid").WithDetail("paymentStatus", s.PaymentStatus)
	}
	return nil
}

// StockOut records material used on site.
type StockOut struct {
	entity.Base

	ProjectID    id.ID          `db:"project_id" json:"projectId"`
	StockID      id.ID          `db:"stock_id" json:"stockId"`
	MaterialName string         `db:"material_name" json:"materialName"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`
	Unit         string         `db:"unit" json:"unit"`
	UsedFor      string         `db:"used_for" json:"usedFor"`
	OutDate      time.Time      `db:"out_date" json:"date"`
	Remarks      string         `db:"remarks" json:"remarks,omitempty"`
	RecordedBy   *id.ID         `db:"recorded_by" json:"recordedBy,omitempty"`
}

// Consumable is a site-held quantity of a consumable item (gloves, diesel, ...).
type Consumable struct {
	entity.Base

	ProjectID     id.ID          `db:"project_id" json:"projectId"`
	Name          string         `db:"name" json:"name"`
	Category      string         `db:"category" json:"category,omitempty"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	Unit          string         `db:"unit" json:"unit"`
	MinStockLevel types.Quantity `db:"min_stock_level" json:"minStockLevel"`
	ExpiryDate    *time.Time     `db:"expiry_date" json:"expiryDate,omitempty"`
	Remarks       string         `db:"remarks" json:"remarks,omitempty"`
}

// Validate implements entity.Validatable.
func (c *Consumable) Validate(_ context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("item name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(c.Unit) == "" {
		return apperror.NewValidation("unit is required").WithDetail("field", "unit")
	}
	if c.Quantity.IsNegative() || c.MinStockLevel.IsNegative() {
		return apperror.NewValidation("quantity cannot be negative").WithDetail("field", "quantity")
	}
	return nil
}

// Low reports whether the quantity is at or below the minimum level.
func (c *Consumable) Low() bool {
	return c.MinStockLevel.IsPositive() && c.Quantity.LessThanOrEqual(c.MinStockLevel)
}

// AssetKind tells lab equipment from general equipment; each kind has its own table.
type AssetKind string

const (
	KindLabEquipment AssetKind = "lab-equipment"
	KindEquipment    AssetKind = "equipment"
)

// Asset statuses.
const (
	AssetActive      = "active"
	AssetMaintenance = "maintenance"
	AssetDamaged     = "damaged"
)

// Asset is a piece of lab or general equipment kept on a project.
type Asset struct {
	entity.Base

	ProjectID    id.ID          `db:"project_id" json:"projectId"`
	Name         string         `db:"name" json:"name"`
	Category     string         `db:"category" json:"category,omitempty"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`
	Status       string         `db:"status" json:"status"`
	SerialNumber string         `db:"serial_number" json:"serialNumber,omitempty"`
	PurchaseDate *time.Time     `db:"purchase_date" json:"purchaseDate,omitempty"`
	Remarks      string         `db:"remarks" json:"remarks,omitempty"`
}

// Validate implements entity.Validatable.
func (a *Asset) Validate(_ context.Context) error {
	if strings.TrimSpace(a.Name) == "" {
		return apperror.NewValidation("equipment name is required").WithDetail("field", "name")
	}
	switch a.Status {
	case AssetActive, AssetMaintenance, AssetDamaged:
	default:
		return apperror.NewValidation("invalid equipment status").WithDetail("status", a.Status)
	}
	if a.Quantity.IsNegative() {
		return apperror.NewValidation("quantity cannot be negative").WithDetail("field", "quantity")
	}
	return nil
}
