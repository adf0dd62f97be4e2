package rental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sitebook/internal/core/types"
)

var t0 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func TestBillableDuration(t *testing.T) {
	openAt := t0.Add(9 * time.Hour)

	tests := []struct {
		name   string
		end    time.Time
		pauses []PauseInterval
		open   *time.Time
		want   time.Duration
	}{
		{"no pauses", t0.Add(10 * time.Hour), nil, nil, 10 * time.Hour},
		{"one closed pause", t0.Add(10 * time.Hour), []PauseInterval{{PausedAt: t0.Add(time.Hour), ResumedAt: t0.Add(3 * time.Hour)}}, nil, 8 * time.Hour},
		{"open pause", t0.Add(10 * time.Hour), nil, &openAt, 9 * time.Hour},
		{"closed and open", t0.Add(10 * time.Hour), []PauseInterval{{PausedAt: t0.Add(time.Hour), ResumedAt: t0.Add(2 * time.Hour)}}, &openAt, 8 * time.Hour},
		{"pause before start ignored", t0.Add(time.Hour), []PauseInterval{{PausedAt: t0.Add(-5 * time.Hour), ResumedAt: t0}}, nil, time.Hour},
		{"pause straddling start clipped", t0.Add(4 * time.Hour), []PauseInterval{{PausedAt: t0.Add(-2 * time.Hour), ResumedAt: t0.Add(time.Hour)}}, nil, 3 * time.Hour},
		{"pause past end clipped", t0.Add(4 * time.Hour), []PauseInterval{{PausedAt: t0.Add(3 * time.Hour), ResumedAt: t0.Add(6 * time.Hour)}}, nil, 3 * time.Hour},
		{"open pause from before start", t0.Add(2 * time.Hour), nil, timePtr(t0.Add(-time.Hour)), 0},
		{"end before start", t0.Add(-time.Hour), nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BillableDuration(t0, tt.end, tt.pauses, tt.open))
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestComputeRent(t *testing.T) {
	tests := []struct {
		name      string
		rentType  RentalType
		rate      string
		billable  time.Duration
		wantRent  string
		wantUnits int64
	}{
		{"per hour paused scenario", PerHour, "450", 8 * time.Hour, "3600", 480},
		{"per hour partial minute rounds up", PerHour, "60", 90*time.Second + time.Millisecond, "2", 2},
		{"per hour thirds", PerHour, "100", 10 * time.Minute, "16.67", 10},
		{"per day exact", PerDay, "2500", 48 * time.Hour, "5000", 2},
		{"per day started day", PerDay, "2500", 49 * time.Hour, "7500", 3},
		{"per day one minute", PerDay, "2500", time.Minute, "2500", 1},
		{"zero duration", PerDay, "2500", 0, "0", 0},
		{"zero rate", PerHour, "0", time.Hour, "0", 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rent, units := ComputeRent(tt.rentType, types.MustMoney(tt.rate), tt.billable)
			assert.True(t, rent.Equal(types.MustMoney(tt.wantRent)), "rent %s", rent)
			assert.Equal(t, tt.wantUnits, units)
		})
	}
}

func TestPauseScenario(t *testing.T) {
	m := &Machine{
		Ownership:            OwnershipRented,
		Status:               StatusInUse,
		RentalType:           PerHour,
		AssignedAt:           &t0,
		AssignedAsRental:     true,
		AssignedRentalPerDay: types.MustMoney("300"),
		PauseHistory: []PauseInterval{
			{PausedAt: t0.Add(4 * time.Hour), ResumedAt: t0.Add(6 * time.Hour)},
		},
	}

	est := m.Estimate(t0.Add(10 * time.Hour))
	assert.InDelta(t, 8.0, est.BillableHours, 1e-9)
	assert.InDelta(t, 2.0, est.PausedHours, 1e-9)
	assert.True(t, est.EstimatedRent.Equal(types.MustMoney("2400")), est.EstimatedRent.String())
}
