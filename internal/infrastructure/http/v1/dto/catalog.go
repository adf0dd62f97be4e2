package dto

import (
	"strings"

	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
	"sitebook/internal/domain/accounts"
	"sitebook/internal/domain/labour"
	"sitebook/internal/domain/party"
	"sitebook/internal/domain/project"
	"sitebook/internal/domain/rental"
)

// ProjectRequest creates or updates a project.
type ProjectRequest struct {
	Name            string       `json:"name" binding:"required,max=200"`
	Location        string       `json:"location" binding:"required,max=300"`
	StartDate       Date         `json:"startDate"`
	EndDate         Date         `json:"endDate"`
	Status          string       `json:"status" binding:"omitempty,oneof=running active pending completed"`
	AssignedManager *id.ID       `json:"assignedManager"`
	Budget          types.Money  `json:"budget"`
	Description     string       `json:"description" binding:"max=2000"`
	DistanceValue   *types.Money `json:"roadDistanceValue"`
	DistanceUnit    string       `json:"roadDistanceUnit" binding:"omitempty,max=10"`
}

// ToEntity builds a new project.
func (r ProjectRequest) ToEntity() *project.Project {
	p := project.NewProject(r.Name, r.Location, r.StartDate.Time, r.EndDate.Time)
	_ = r.Apply(p)
	return p
}

// Apply copies the request onto p. The expense counter is never taken from a client.
func (r ProjectRequest) Apply(p *project.Project) error {
	p.Name = strings.TrimSpace(r.Name)
	p.Location = strings.TrimSpace(r.Location)
	if !r.StartDate.IsZero() {
		p.StartDate = r.StartDate.Time
	}
	if !r.EndDate.IsZero() {
		p.EndDate = r.EndDate.Time
	}
	if r.Status != "" {
		p.Status = project.Status(r.Status)
	}
	p.AssignedManager = r.AssignedManager
	p.Budget = r.Budget
	p.Description = r.Description
	if r.DistanceValue != nil {
		p.DistanceValue = *r.DistanceValue
	}
	if r.DistanceUnit != "" {
		p.DistanceUnit = r.DistanceUnit
	}
	p.Touch()
	return nil
}

// VendorRequest creates or updates a vendor's profile.
type VendorRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Contact string `json:"contact" binding:"required,max=50"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address" binding:"max=500"`
}

// ToEntity builds a new vendor.
func (r VendorRequest) ToEntity() *party.Vendor {
	v := party.NewVendor(r.Name, r.Contact)
	_ = r.Apply(v)
	return v
}

// Apply copies the profile onto v; balances are left alone.
func (r VendorRequest) Apply(v *party.Vendor) error {
	v.Name = strings.TrimSpace(r.Name)
	v.Contact = strings.TrimSpace(r.Contact)
	v.Email = strings.TrimSpace(r.Email)
	v.Address = strings.TrimSpace(r.Address)
	v.Touch()
	return nil
}

// ContractorRequest creates or updates a contractor's profile.
type ContractorRequest struct {
	Name             string       `json:"name" binding:"required,max=200"`
	Mobile           string       `json:"mobile" binding:"required,max=20"`
	Address          string       `json:"address" binding:"max=500"`
	DistanceValue    *types.Money `json:"distanceValue"`
	DistanceUnit     string       `json:"distanceUnit" binding:"omitempty,max=10"`
	ExpensePerUnit   *types.Money `json:"expensePerUnit"`
	AssignedProjects []id.ID      `json:"assignedProjects"`
	Status           string       `json:"status" binding:"omitempty,oneof=pending active complete inactive"`
}

// ToEntity builds a new contractor.
func (r ContractorRequest) ToEntity() *party.Contractor {
	c := party.NewContractor(r.Name, r.Mobile, r.Address)
	_ = r.Apply(c)
	return c
}

// Apply copies the profile onto c; balances are left alone.
func (r ContractorRequest) Apply(c *party.Contractor) error {
	c.Name = strings.TrimSpace(r.Name)
	c.Mobile = strings.TrimSpace(r.Mobile)
	c.Address = strings.TrimSpace(r.Address)
	if r.DistanceValue != nil {
		c.DistanceValue = *r.DistanceValue
	}
	if r.DistanceUnit != "" {
		c.DistanceUnit = r.DistanceUnit
	}
	if r.ExpensePerUnit != nil {
		c.ExpensePerUnit = *r.ExpensePerUnit
	}
	if r.AssignedProjects != nil {
		c.AssignedProjects = r.AssignedProjects
	}
	if r.Status != "" {
		c.Status = party.ContractorStatus(r.Status)
	}
	c.Touch()
	return nil
}

// BankAccountRequest creates or updates a bank account.
type BankAccountRequest struct {
	HolderName     string      `json:"holderName" binding:"required,max=200"`
	BankName       string      `json:"bankName" binding:"required,max=200"`
	Branch         string      `json:"branch" binding:"max=200"`
	AccountNumber  string      `json:"accountNumber" binding:"required,max=50"`
	IFSCCode       string      `json:"ifscCode" binding:"max=20"`
	OpeningBalance types.Money `json:"openingBalance"`
}

// ToEntity builds a new account whose balance starts at the opening balance.
func (r BankAccountRequest) ToEntity() *accounts.BankAccount {
	return accounts.NewBankAccount(r.HolderName, r.BankName, r.Branch, r.AccountNumber, r.IFSCCode, r.OpeningBalance)
}

// Apply copies the descriptive fields onto b. Balances only move through ledger entries.
func (r BankAccountRequest) Apply(b *accounts.BankAccount) error {
	b.HolderName = strings.TrimSpace(r.HolderName)
	b.BankName = strings.TrimSpace(r.BankName)
	b.Branch = strings.TrimSpace(r.Branch)
	b.AccountNumber = strings.TrimSpace(r.AccountNumber)
	b.IFSCCode = strings.ToUpper(strings.TrimSpace(r.IFSCCode))
	b.Touch()
	return nil
}

// CreditorRequest creates or updates a creditor.
type CreditorRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Mobile  string `json:"mobile" binding:"required,max=20"`
	Address string `json:"address" binding:"max=500"`
}

// ToEntity builds a new creditor with a zero balance.
func (r CreditorRequest) ToEntity() *accounts.Creditor {
	return accounts.NewCreditor(r.Name, r.Mobile, r.Address)
}

// Apply copies the profile onto c.
func (r CreditorRequest) Apply(c *accounts.Creditor) error {
	c.Name = strings.TrimSpace(r.Name)
	c.Mobile = strings.TrimSpace(r.Mobile)
	c.Address = strings.TrimSpace(r.Address)
	c.Touch()
	return nil
}

// LabourRequest enrolls or updates a labourer.
type LabourRequest struct {
	Name         string      `json:"name" binding:"required,max=200"`
	Phone        string      `json:"phone" binding:"max=20"`
	Designation  string      `json:"designation" binding:"max=100"`
	DailyWage    types.Money `json:"dailyWage"`
	AssignedSite *id.ID      `json:"assignedSite"`
	ContractorID *id.ID      `json:"contractorId"`
	Active       *bool       `json:"active"`
}

// ToEntity builds a new labourer.
func (r LabourRequest) ToEntity() *labour.Labour {
	l := labour.NewLabour(r.Name, r.Phone, r.Designation, r.DailyWage)
	_ = r.Apply(l)
	return l
}

// Apply copies the request onto l. The pending payout is managed by wage payments.
func (r LabourRequest) Apply(l *labour.Labour) error {
	l.Name = strings.TrimSpace(r.Name)
	l.Phone = strings.TrimSpace(r.Phone)
	l.Designation = strings.TrimSpace(r.Designation)
	l.DailyWage = r.DailyWage
	l.AssignedSite = r.AssignedSite
	l.ContractorID = r.ContractorID
	if r.Active != nil {
		l.Active = *r.Active
	}
	l.Touch()
	return nil
}

// LabourPaymentRequest pays wages to a labourer.
type LabourPaymentRequest struct {
	LabourID    id.ID       `json:"labourId" binding:"required"`
	Amount      types.Money `json:"amount"`
	Deduction   types.Money `json:"deduction"`
	Advance     types.Money `json:"advance"`
	PaymentMode string      `json:"paymentMode" binding:"omitempty,max=30"`
	Remarks     string      `json:"remarks" binding:"max=1000"`
}

// ToInput maps the request to the labour input.
func (r LabourPaymentRequest) ToInput() labour.PayInput {
	return labour.PayInput{
		LabourID:  r.LabourID,
		Amount:    r.Amount,
		Deduction: r.Deduction,
		Advance:   r.Advance,
		Mode:      r.PaymentMode,
		Remarks:   r.Remarks,
	}
}

// MachineRequest registers or edits a machine. Setting status to in-use on an
// available machine starts an assignment.
type MachineRequest struct {
	Name                 string       `json:"name" binding:"required,max=200"`
	Model                string       `json:"model" binding:"max=100"`
	PlateNumber          string       `json:"plateNumber" binding:"max=50"`
	Category             string       `json:"category" binding:"omitempty,oneof=big lab consumables equipment"`
	Quantity             int          `json:"quantity" binding:"omitempty,min=1"`
	Status               string       `json:"status" binding:"omitempty,oneof=available in-use maintenance returned"`
	OwnershipType        string       `json:"ownershipType" binding:"omitempty,oneof=own rented"`
	VendorName           string       `json:"vendorName" binding:"max=200"`
	MachineCategory      string       `json:"machineCategory" binding:"max=100"`
	PerDayExpense        *types.Money `json:"perDayExpense"`
	ProjectID            *id.ID       `json:"projectId"`
	AssignedAsRental     *bool        `json:"assignedAsRental"`
	AssignedRentalPerDay *types.Money `json:"assignedRentalPerDay"`
	RentalType           string       `json:"rentalType" binding:"omitempty,oneof=perDay perHour"`
	AssignedAt           *Date        `json:"assignedAt"`
	AssignedToContractor *id.ID       `json:"assignedToContractor"`
}

// ToEntity builds a new machine.
func (r MachineRequest) ToEntity() *rental.Machine {
	category := r.Category
	if category == "" {
		category = rental.CategoryBig
	}
	ownership := rental.Ownership(r.OwnershipType)
	if ownership == "" {
		ownership = rental.OwnershipOwn
	}
	m := rental.NewMachine(r.Name, category, ownership)
	_ = r.Apply(m)
	return m
}

// Apply copies the set fields onto m. Rent history is never taken from a client.
func (r MachineRequest) Apply(m *rental.Machine) error {
	m.Name = strings.TrimSpace(r.Name)
	m.Model = strings.TrimSpace(r.Model)
	m.PlateNumber = strings.TrimSpace(r.PlateNumber)
	if r.Category != "" {
		m.Category = r.Category
	}
	if r.Quantity > 0 {
		m.Quantity = r.Quantity
	}
	if r.Status != "" {
		m.Status = rental.Status(r.Status)
	}
	if r.OwnershipType != "" {
		m.Ownership = rental.Ownership(r.OwnershipType)
	}
	m.VendorName = strings.TrimSpace(r.VendorName)
	m.MachineCategory = strings.TrimSpace(r.MachineCategory)
	if r.PerDayExpense != nil {
		m.PerDayExpense = *r.PerDayExpense
	}
	if r.ProjectID != nil {
		m.ProjectID = r.ProjectID
	}
	if r.AssignedAsRental != nil {
		m.AssignedAsRental = *r.AssignedAsRental
	}
	if r.AssignedRentalPerDay != nil {
		m.AssignedRentalPerDay = *r.AssignedRentalPerDay
	}
	if r.RentalType != "" {
		m.RentalType = rental.RentalType(r.RentalType)
	}
	if r.AssignedAt != nil {
		m.AssignedAt = r.AssignedAt.TimePtr()
	}
	if r.AssignedToContractor != nil {
		m.AssignedToContractor = r.AssignedToContractor
	}
	return nil
}

// AssignMachineRequest puts an available machine to work.
type AssignMachineRequest struct {
	ProjectID    *id.ID      `json:"projectId"`
	ContractorID *id.ID      `json:"contractorId"`
	RentalType   string      `json:"rentalType" binding:"omitempty,oneof=perDay perHour"`
	Rate         types.Money `json:"rate"`
	AssignedAt   *Date       `json:"assignedAt"`
}

// ToInput maps the request to the rental input.
func (r AssignMachineRequest) ToInput() rental.AssignInput {
	return rental.AssignInput{
		ProjectID:    r.ProjectID,
		ContractorID: r.ContractorID,
		RentalType:   rental.RentalType(r.RentalType),
		Rate:         r.Rate,
		AssignedAt:   r.AssignedAt.TimePtr(),
	}
}
