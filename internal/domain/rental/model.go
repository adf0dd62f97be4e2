// Package rental tracks machines and bills rented equipment by the time it was
// in use, net of the intervals its rent was paused.
package rental

import (
	"context"
	"math"
	"strings"
	"time"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
)

// Status is the machine state: available → in-use → returned | maintenance.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusInUse       Status = "in-use"
	StatusMaintenance Status = "maintenance"
	StatusReturned    Status = "returned"
)

// Ownership tells company machines from rented ones.
type Ownership string

const (
	OwnershipOwn    Ownership = "own"
	OwnershipRented Ownership = "rented"
)

// RentalType is the billing unit.
type RentalType string

const (
	PerDay  RentalType = "perDay"
	PerHour RentalType = "perHour"
)

// Machine categories.
const (
	CategoryBig         = "big"
	CategoryLab         = "lab"
	CategoryConsumables = "consumables"
	CategoryEquipment   = "equipment"
)

// Assignment targets.
const (
	AssignedToProject    = "Project"
	AssignedToContractor = "Contractor"
)

// PauseInterval is a closed interval during which rent was not charged.
type PauseInterval struct {
	PausedAt      time.Time `json:"pausedAt"`
	ResumedAt     time.Time `json:"resumedAt"`
	DurationHours float64   `json:"duration"`
}

// Assignment is one entry of the append-only assignment log.
type Assignment struct {
	AssignedTo      *id.ID       `json:"assignedTo,omitempty"`
	AssignedModel   string       `json:"assignedModel"`
	AssignedAt      time.Time    `json:"assignedAt"`
	ReturnedAt      *time.Time   `json:"returnedAt,omitempty"`
	InitialStatus   Status       `json:"initialStatus"`
	ReturnStatus    Status       `json:"returnStatus,omitempty"`
	RentType        RentalType   `json:"rentType"`
	Rate            types.Money  `json:"rate"`
	TotalRent       *types.Money `json:"totalRent,omitempty"`
	DurationMinutes int64        `json:"durationMinutes"`
}

// Machine is a piece of plant, owned or rented, assigned to a project or a contractor.
type Machine struct {
	entity.Base

	Name                 string          `db:"name" json:"name"`
	Model                string          `db:"model" json:"model,omitempty"`
	PlateNumber          string          `db:"plate_number" json:"plateNumber,omitempty"`
	Category             string          `db:"category" json:"category"`
	Quantity             int             `db:"quantity" json:"quantity"`
	Status               Status          `db:"status" json:"status"`
	Ownership            Ownership       `db:"ownership_type" json:"ownershipType"`
	VendorName           string          `db:"vendor_name" json:"vendorName,omitempty"`
	MachineCategory      string          `db:"machine_category" json:"machineCategory,omitempty"`
	PerDayExpense        types.Money     `db:"per_day_expense" json:"perDayExpense"`
	ProjectID            *id.ID          `db:"project_id" json:"projectId,omitempty"`
	AssignedAsRental     bool            `db:"assigned_as_rental" json:"assignedAsRental"`
	AssignedRentalPerDay types.Money     `db:"assigned_rental_per_day" json:"assignedRentalPerDay"`
	RentalType           RentalType      `db:"rental_type" json:"rentalType"`
	AssignedAt           *time.Time      `db:"assigned_at" json:"assignedAt,omitempty"`
	AssignedToContractor *id.ID          `db:"assigned_to_contractor" json:"assignedToContractor,omitempty"`
	ReturnedAt           *time.Time      `db:"returned_at" json:"returnedAt,omitempty"`
	TotalRentPaid        types.Money     `db:"total_rent_paid" json:"totalRentPaid"`
	IsRentPaused         bool            `db:"is_rent_paused" json:"isRentPaused"`
	RentPausedAt         *time.Time      `db:"rent_paused_at" json:"rentPausedAt,omitempty"`
	PauseHistory         []PauseInterval `db:"rent_paused_history" json:"rentPausedHistory"`
	AssignmentHistory    []Assignment    `db:"assignment_history" json:"assignmentHistory"`
}

// NewMachine creates an available machine.
func NewMachine(name, category string, ownership Ownership) *Machine {
	return &Machine{
		Base:                 entity.NewBase(),
		Name:                 strings.TrimSpace(name),
		Category:             category,
		Quantity:             1,
		Status:               StatusAvailable,
		Ownership:            ownership,
		PerDayExpense:        types.Zero(),
		AssignedRentalPerDay: types.Zero(),
		RentalType:           PerDay,
		TotalRentPaid:        types.Zero(),
		PauseHistory:         []PauseInterval{},
		AssignmentHistory:    []Assignment{},
	}
}

// Validate implements entity.Validatable.
func (m *Machine) Validate(_ context.Context) error {
	if strings.TrimSpace(m.Name) == "" {
		return apperror.NewValidation("machine name is required").WithDetail("field", "name")
	}
	switch m.Category {
	case CategoryBig, CategoryLab, CategoryConsumables, CategoryEquipment:
	default:
		return apperror.NewValidation("invalid machine category").WithDetail("category", m.Category)
	}
	switch m.Status {
	case StatusAvailable, StatusInUse, StatusMaintenance, StatusReturned:
	default:
		return apperror.NewValidation("invalid machine status").WithDetail("status", string(m.Status))
	}
	if m.Ownership != OwnershipOwn && m.Ownership != OwnershipRented {
		return apperror.NewValidation("ownership must be own or rented").WithDetail("ownershipType", string(m.Ownership))
	}
	if m.RentalType != PerDay && m.RentalType != PerHour {
		return apperror.NewValidation("rental type must be perDay or perHour").WithDetail("rentalType", string(m.RentalType))
	}
	if m.PerDayExpense.IsNegative() || m.AssignedRentalPerDay.IsNegative() {
		return apperror.NewValidation("rates cannot be negative")
	}
	return nil
}

// Rate is the billing rate per rental unit.
func (m *Machine) Rate() types.Money {
	if m.AssignedAsRental {
		return m.AssignedRentalPerDay
	}
	return m.PerDayExpense
}

// Label is the machine name with its plate number when known.
func (m *Machine) Label() string {
	if m.PlateNumber == "" {
		return m.Name
	}
	return m.Name + " [" + m.PlateNumber + "]"
}

// start is when billing began: the assignment time, else creation.
func (m *Machine) start() time.Time {
	if m.AssignedAt != nil {
		return *m.AssignedAt
	}
	return m.CreatedAt
}

// beginAssignment appends the log entry for an available → in-use transition.
// Pauses belong to one rental, so the pause state starts empty.
func (m *Machine) beginAssignment(now time.Time) {
	if m.AssignedAt == nil {
		m.AssignedAt = &now
	}
	m.IsRentPaused = false
	m.RentPausedAt = nil
	m.PauseHistory = []PauseInterval{}
	entry := Assignment{
		AssignedTo:    m.ProjectID,
		AssignedModel: AssignedToProject,
		AssignedAt:    *m.AssignedAt,
		InitialStatus: StatusInUse,
		RentType:      m.RentalType,
		Rate:          m.Rate(),
	}
	if m.AssignedToContractor != nil {
		entry.AssignedTo = m.AssignedToContractor
		entry.AssignedModel = AssignedToContractor
	}
	m.AssignmentHistory = append(m.AssignmentHistory, entry)
}

// togglePause pauses a running rent or resumes a paused one. It reports whether
// the machine is paused afterwards.
func (m *Machine) togglePause(now time.Time) (bool, error) {
	if m.Status != StatusInUse {
		return false, apperror.NewInvalidState("Machine is not currently in use")
	}
	if !m.IsRentPaused {
		m.IsRentPaused = true
		m.RentPausedAt = &now
		return true, nil
	}
	m.closePause(now)
	return false, nil
}

func (m *Machine) closePause(now time.Time) {
	if !m.IsRentPaused {
		return
	}
	pausedAt := now
	if m.RentPausedAt != nil {
		pausedAt = *m.RentPausedAt
	}
	m.PauseHistory = append(m.PauseHistory, PauseInterval{
		PausedAt:      pausedAt,
		ResumedAt:     now,
		DurationHours: now.Sub(pausedAt).Hours(),
	})
	m.IsRentPaused = false
	m.RentPausedAt = nil
}

// Estimate is the live rent calculation of a machine.
type Estimate struct {
	StartDate     time.Time   `json:"startDate"`
	EndDate       time.Time   `json:"endDate"`
	IsReturned    bool        `json:"isReturned"`
	TotalHours    float64     `json:"totalDurationHours"`
	PausedHours   float64     `json:"totalPausedHours"`
	BillableHours float64     `json:"billableHours"`
	BillableDays  float64     `json:"billableDays"`
	Rate          types.Money `json:"rate"`
	Type          RentalType  `json:"type"`
	Units         int64       `json:"units"`
	EstimatedRent types.Money `json:"estimatedTotalRent"`

	billable time.Duration
}

// BillableMinutes is the billable time in started minutes.
func (e Estimate) BillableMinutes() int64 {
	return int64(math.Ceil(e.billable.Minutes()))
}

// Estimate prices the machine's use up to now, or up to its return.
func (m *Machine) Estimate(now time.Time) Estimate {
	start := m.start()
	end := now
	if m.ReturnedAt != nil {
		end = *m.ReturnedAt
	}
	var open *time.Time
	if m.IsRentPaused {
		open = m.RentPausedAt
	}

	total := end.Sub(start)
	billable := BillableDuration(start, end, m.PauseHistory, open)
	rent, units := ComputeRent(m.RentalType, m.Rate(), billable)
	return Estimate{
		StartDate:     start,
		EndDate:       end,
		IsReturned:    m.ReturnedAt != nil,
		TotalHours:    total.Hours(),
		PausedHours:   (total - billable).Hours(),
		BillableHours: billable.Hours(),
		BillableDays:  billable.Hours() / 24,
		Rate:          m.Rate(),
		Type:          m.RentalType,
		Units:         units,
		EstimatedRent: rent,
		billable:      billable,
	}
}
