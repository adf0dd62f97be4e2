// Package labour provides site labourers and their wage payments.
package labour

import (
	"context"
	"strings"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
)

// Labour is a worker enrolled on a site. PendingPayout is owed wages.
type Labour struct {
	entity.Base

	Name          string      `db:"name" json:"name"`
	Phone         string      `db:"phone" json:"phone"`
	DailyWage     types.Money `db:"daily_wage" json:"dailyWage"`
	Designation   string      `db:"designation" json:"designation"`
	AssignedSite  *id.ID      `db:"assigned_site" json:"assignedSite,omitempty"`
	EnrolledBy    *id.ID      `db:"enrolled_by" json:"enrolledBy,omitempty"`
	ContractorID  *id.ID      `db:"contractor_id" json:"contractorId,omitempty"`
	Active        bool        `db:"active" json:"active"`
	PendingPayout types.Money `db:"pending_payout" json:"pendingPayout"`
}

// NewLabour creates an active labourer.
func NewLabour(name, phone, designation string, dailyWage types.Money) *Labour {
	return &Labour{
		Base:          entity.NewBase(),
		Name:          strings.TrimSpace(name),
		Phone:         strings.TrimSpace(phone),
		Designation:   strings.TrimSpace(designation),
		DailyWage:     dailyWage,
		Active:        true,
		PendingPayout: types.Zero(),
	}
}

// Validate implements entity.Validatable.
func (l *Labour) Validate(_ context.Context) error {
	required := []struct{ field, value string }{
		{"name", l.Name},
		{"phone", l.Phone},
		{"designation", l.Designation},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperror.NewValidation(r.field+" is required").WithDetail("field", r.field)
		}
	}
	if l.DailyWage.IsNegative() {
		return apperror.NewValidation("daily wage cannot be negative").WithDetail("field", "dailyWage")
	}
	if l.PendingPayout.IsNegative() {
		return apperror.NewValidation("pending payout cannot be negative")
	}
	return nil
}

// Settle clears amount from the pending payout, never below zero.
func (l *Labour) Settle(amount types.Money) {
	l.PendingPayout = types.MaxZero(l.PendingPayout.Sub(amount))
}

// Payment is a wage payout made by a site manager.
// FinalAmount = Amount - Deduction - Advance and is what left the wallet for cash payouts.
type Payment struct {
	entity.Base

	LabourID    id.ID       `db:"labour_id" json:"labourId"`
	UserID      id.ID       `db:"user_id" json:"userId"`
	Amount      types.Money `db:"amount" json:"amount"`
	Deduction   types.Money `db:"deduction" json:"deduction"`
	Advance     types.Money `db:"advance" json:"advance"`
	FinalAmount types.Money `db:"final_amount" json:"finalAmount"`
	PaymentMode string      `db:"payment_mode" json:"paymentMode"`
	Remarks     string      `db:"remarks" json:"remarks,omitempty"`
}

// FromWallet reports whether the payout is taken from the payer's wallet.
func (p *Payment) FromWallet() bool {
	return p.PaymentMode == "cash" && p.FinalAmount.IsPositive()
}
