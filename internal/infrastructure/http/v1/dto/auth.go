package dto

import (
	"strings"

	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
	"sitebook/internal/domain/user"
)

// LoginRequest represents login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateManagerRequest registers a site manager.
type CreateManagerRequest struct {
	Name          string      `json:"name" binding:"required,max=200"`
	Email         string      `json:"email" binding:"required,email"`
	Password      string      `json:"password" binding:"required,min=6"`
	Phone         string      `json:"phone" binding:"max=20"`
	Salary        types.Money `json:"salary"`
	AssignedSites []id.ID     `json:"assignedSites"`
}

// ToInput maps the request to the service input.
func (r CreateManagerRequest) ToInput(role string) user.CreateInput {
	return user.CreateInput{
		Name:          strings.TrimSpace(r.Name),
		Email:         r.Email,
		Password:      r.Password,
		Role:          role,
		Phone:         strings.TrimSpace(r.Phone),
		Salary:        r.Salary,
		AssignedSites: r.AssignedSites,
	}
}

// UpdateManagerRequest changes profile fields of a site manager.
type UpdateManagerRequest struct {
	Name     *string      `json:"name" binding:"omitempty,max=200"`
	Phone    *string      `json:"phone" binding:"omitempty,max=20"`
	Salary   *types.Money `json:"salary"`
	Active   *bool        `json:"active"`
	Password *string      `json:"password" binding:"omitempty,min=6"`
}

// Apply copies the set fields onto u.
func (r UpdateManagerRequest) Apply(u *user.User) error {
	if r.Name != nil {
		u.Name = strings.TrimSpace(*r.Name)
	}
	if r.Phone != nil {
		u.Phone = strings.TrimSpace(*r.Phone)
	}
	if r.Salary != nil {
		u.Salary = *r.Salary
	}
	if r.Active != nil {
		u.IsActive = *r.Active
	}
	if r.Password != nil {
		if err := u.SetPassword(*r.Password); err != nil {
			return err
		}
	}
	u.Touch()
	return nil
}

// AssignSitesRequest replaces the sites of a manager.
type AssignSitesRequest struct {
	Sites []id.ID `json:"assignedSites"`
}
