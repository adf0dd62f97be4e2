package party

import (
	"context"
	"slices"
	"strings"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
)

// Vendor supplies materials, usually on credit.
type Vendor struct {
	entity.Base

	Name              string      `db:"name" json:"name"`
	Contact           string      `db:"contact" json:"contact"`
	Email             string      `db:"email" json:"email,omitempty"`
	Address           string      `db:"address" json:"address,omitempty"`
	MaterialsSupplied []string    `db:"materials_supplied" json:"materialsSupplied"`
	TotalSupplied     types.Money `db:"total_supplied" json:"totalSupplied"`
	PendingAmount     types.Money `db:"pending_amount" json:"pendingAmount"`
	AdvancePayment    types.Money `db:"advance_payment" json:"advancePayment"`
}

// NewVendor creates a vendor with zero balances.
func NewVendor(name, contact string) *Vendor {
	return &Vendor{
		Base:              entity.NewBase(),
		Name:              strings.TrimSpace(name),
		Contact:           strings.TrimSpace(contact),
		MaterialsSupplied: []string{},
		TotalSupplied:     types.Zero(),
		PendingAmount:     types.Zero(),
		AdvancePayment:    types.Zero(),
	}
}

// Validate implements entity.Validatable.
func (v *Vendor) Validate(_ context.Context) error {
	if strings.TrimSpace(v.Name) == "" {
		return apperror.NewValidation("vendor name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(v.Contact) == "" {
		return apperror.NewValidation("contact is required").WithDetail("field", "contact")
	}
	return validateBalance(v.Balance())
}

// Balance returns the pending/advance pair.
func (v *Vendor) Balance() Balance {
	return Balance{Pending: v.PendingAmount, Advance: v.AdvancePayment}
}

// SetBalance stores the pending/advance pair.
func (v *Vendor) SetBalance(b Balance) {
	v.PendingAmount = b.Pending
	v.AdvancePayment = b.Advance
}

// RecordSupply adds delivered goods to the totals; onCredit also makes them payable.
func (v *Vendor) RecordSupply(total types.Money, material string, onCredit bool) {
	v.TotalSupplied = v.TotalSupplied.Add(total)
	if onCredit {
		v.SetBalance(v.Balance().AddDue(total))
	}
	if material != "" && !slices.Contains(v.MaterialsSupplied, material) {
		v.MaterialsSupplied = append(v.MaterialsSupplied, material)
	}
}

// ContractorStatus is the engagement state of a contractor.
type ContractorStatus string

const (
	ContractorPending  ContractorStatus = "pending"
	ContractorActive   ContractorStatus = "active"
	ContractorComplete ContractorStatus = "complete"
	ContractorInactive ContractorStatus = "inactive"
)

// Contractor does work on one or more projects.
type Contractor struct {
	entity.Base

	Name             string           `db:"name" json:"name"`
	Mobile           string           `db:"mobile" json:"mobile"`
	Address          string           `db:"address" json:"address"`
	DistanceValue    types.Money      `db:"distance_value" json:"distanceValue"`
	DistanceUnit     string           `db:"distance_unit" json:"distanceUnit"`
	ExpensePerUnit   types.Money      `db:"expense_per_unit" json:"expensePerUnit"`
	AssignedProjects []id.ID          `db:"assigned_projects" json:"assignedProjects"`
	Status           ContractorStatus `db:"status" json:"status"`
	PendingAmount    types.Money      `db:"pending_amount" json:"pendingAmount"`
	AdvancePayment   types.Money      `db:"advance_payment" json:"advancePayment"`
}

// NewContractor creates a pending contractor with zero balances.
func NewContractor(name, mobile, address string) *Contractor {
	return &Contractor{
		Base:             entity.NewBase(),
		Name:             strings.TrimSpace(name),
		Mobile:           strings.TrimSpace(mobile),
		Address:          strings.TrimSpace(address),
		DistanceValue:    types.Zero(),
		DistanceUnit:     "km",
		ExpensePerUnit:   types.Zero(),
		AssignedProjects: []id.ID{},
		Status:           ContractorPending,
		PendingAmount:    types.Zero(),
		AdvancePayment:   types.Zero(),
	}
}

// Validate implements entity.Validatable.
func (c *Contractor) Validate(_ context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("contractor name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(c.Mobile) == "" {
		return apperror.NewValidation("mobile is required").WithDetail("field", "mobile")
	}
	switch c.Status {
	case ContractorPending, ContractorActive, ContractorComplete, ContractorInactive:
	default:
		return apperror.NewValidation("invalid contractor status").WithDetail("value", string(c.Status))
	}
	switch c.DistanceUnit {
	case "km", "m":
	default:
		return apperror.NewValidation("distance unit must be km or m").WithDetail("field", "distanceUnit")
	}
	return validateBalance(c.Balance())
}

// Balance returns the pending/advance pair.
func (c *Contractor) Balance() Balance {
	return Balance{Pending: c.PendingAmount, Advance: c.AdvancePayment}
}

// SetBalance stores the pending/advance pair.
func (c *Contractor) SetBalance(b Balance) {
	c.PendingAmount = b.Pending
	c.AdvancePayment = b.Advance
}

// WorksOn reports whether the contractor is assigned to projectID.
func (c *Contractor) WorksOn(projectID id.ID) bool {
	return slices.Contains(c.AssignedProjects, projectID)
}

// PrimaryProject returns the first assigned project, if any.
func (c *Contractor) PrimaryProject() (id.ID, bool) {
	if len(c.AssignedProjects) == 0 {
		return id.ID{}, false
	}
	return c.AssignedProjects[0], true
}

func validateBalance(b Balance) error {
	if b.Pending.IsNegative() || b.Advance.IsNegative() {
		return apperror.NewValidation("pending and advance amounts cannot be negative")
	}
	return nil
}
