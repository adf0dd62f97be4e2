package rental

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"sitebook/internal/core/types"
)

// BillableDuration is the time between start and end minus the part of every
// pause that falls inside [start, end], never negative. openSince is a pause
// that has not been resumed yet.
func BillableDuration(start, end time.Time, pauses []PauseInterval, openSince *time.Time) time.Duration {
	if !end.After(start) {
		return 0
	}
	total := end.Sub(start)
	for _, p := range pauses {
		total -= overlap(start, end, p.PausedAt, p.ResumedAt)
	}
	if openSince != nil {
		total -= overlap(start, end, *openSince, end)
	}
	if total < 0 {
		return 0
	}
	return total
}

// overlap is the length of [from, to] clipped to [start, end].
func overlap(start, end, from, to time.Time) time.Duration {
	if from.Before(start) {
		from = start
	}
	if to.After(end) {
		to = end
	}
	if !to.After(from) {
		return 0
	}
	return to.Sub(from)
}

// ComputeRent prices a billable duration. Per-hour rent is charged by the
// started minute, per-day rent by the started day; the result is rounded to
// two decimals. units is the number of minutes or days charged.
func ComputeRent(rentalType RentalType, rate types.Money, billable time.Duration) (rent types.Money, units int64) {
	if billable <= 0 || !rate.IsPositive() {
		return types.Zero(), unitsOf(rentalType, billable)
	}
	units = unitsOf(rentalType, billable)
	switch rentalType {
	case PerHour:
		rent = rate.Mul(decimal.NewFromInt(units)).Div(decimal.NewFromInt(60))
	default:
		rent = rate.Mul(decimal.NewFromInt(units))
	}
	return types.Round2(rent), units
}

func unitsOf(rentalType RentalType, billable time.Duration) int64 {
	if billable <= 0 {
		return 0
	}
	if rentalType == PerHour {
		return int64(math.Ceil(billable.Minutes()))
	}
	return int64(math.Ceil(billable.Hours() / 24))
}
