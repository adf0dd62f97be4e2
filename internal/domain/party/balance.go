// Package party provides vendors and contractors and the pending/advance balance rule
// that every payment against them follows.
package party

import (
	"sitebook/internal/core/apperror"
	"sitebook/internal/core/types"
)

// Balance is what we owe a party (Pending) and what the party owes back (Advance).
// Both are never negative.
type Balance struct {
	Pending types.Money `json:"pendingAmount"`
	Advance types.Money `json:"advancePayment"`
}

// ApplyPayment drains Pending first; anything beyond it becomes Advance.
func (b Balance) ApplyPayment(amount types.Money) (Balance, error) {
	if !amount.IsPositive() {
		return b, apperror.NewValidation("payment amount must be positive").WithDetail("amount", amount.String())
	}
	overflow := types.MaxZero(amount.Sub(b.Pending))
	return Balance{
		Pending: types.MaxZero(b.Pending.Sub(amount)),
		Advance: b.Advance.Add(overflow),
	}, nil
}

// ReversePayment undoes a payment: it consumes Advance first and returns the rest to Pending.
func (b Balance) ReversePayment(amount types.Money) (Balance, error) {
	if !amount.IsPositive() {
		return b, apperror.NewValidation("payment amount must be positive").WithDetail("amount", amount.String())
	}
	fromAdvance := types.Min(b.Advance, amount)
	return Balance{
		Pending: b.Pending.Add(amount.Sub(fromAdvance)),
		Advance: b.Advance.Sub(fromAdvance),
	}, nil
}

// AddDue records goods or work delivered on credit.
func (b Balance) AddDue(amount types.Money) Balance {
	if !amount.IsPositive() {
		return b
	}
	return Balance{Pending: b.Pending.Add(amount), Advance: b.Advance}
}
