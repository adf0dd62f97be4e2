// Package project provides construction projects (sites) and their running expense counter.
package project

import (
	"context"
	"strings"
	"time"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
)

// Status is the lifecycle state of a project.
type Status string

const (
	StatusRunning   Status = "running"
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Project is a construction site. Expenses is a running total owned by the
// ledger: only expense, rental and wallet operations change it.
type Project struct {
	entity.Base

	Name            string      `db:"name" json:"name"`
	Location        string      `db:"location" json:"location"`
	StartDate       time.Time   `db:"start_date" json:"startDate"`
	EndDate         time.Time   `db:"end_date" json:"endDate"`
	Status          Status      `db:"status" json:"status"`
	AssignedManager *id.ID      `db:"assigned_manager" json:"assignedManager,omitempty"`
	Budget          types.Money `db:"budget" json:"budget"`
	Expenses        types.Money `db:"expenses" json:"expenses"`
	Description     string      `db:"description" json:"description,omitempty"`
	DistanceValue   types.Money `db:"distance_value" json:"roadDistanceValue"`
	DistanceUnit    string      `db:"distance_unit" json:"roadDistanceUnit"`
}

// NewProject creates a running project with a zero expense counter.
func NewProject(name, location string, start, end time.Time) *Project {
	return &Project{
		Base:          entity.NewBase(),
		Name:          strings.TrimSpace(name),
		Location:      strings.TrimSpace(location),
		StartDate:     start,
		EndDate:       end,
		Status:        StatusRunning,
		Budget:        types.Zero(),
		Expenses:      types.Zero(),
		DistanceValue: types.Zero(),
		DistanceUnit:  "km",
	}
}

// Validate implements entity.Validatable.
func (p *Project) Validate(_ context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("project name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(p.Location) == "" {
		return apperror.NewValidation("location is required").WithDetail("field", "location")
	}
	if !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate) {
		return apperror.NewValidation("end date is before start date").WithDetail("field", "endDate")
	}
	switch p.Status {
	case StatusRunning, StatusActive, StatusPending, StatusCompleted:
	default:
		return apperror.NewValidation("invalid project status").WithDetail("value", string(p.Status))
	}
	switch p.DistanceUnit {
	case "km", "m":
	default:
		return apperror.NewValidation("distance unit must be km or m").WithDetail("field", "roadDistanceUnit")
	}
	if p.Budget.IsNegative() {
		return apperror.NewValidation("budget cannot be negative").WithDetail("field", "budget")
	}
	return nil
}
