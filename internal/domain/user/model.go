// Package user provides admins and site managers, their site assignments and the
// site manager's cash wallet.
package user

import (
	"context"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sitebook/internal/core/apperror"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// User is an admin or a site manager.
type User struct {
	entity.Base

	Name                string      `db:"name" json:"name"`
	Email               string      `db:"email" json:"email"`
	PasswordHash        string      `db:"password_hash" json:"-"`
	Role                string      `db:"role" json:"role"`
	Phone               string      `db:"phone" json:"phone,omitempty"`
	Salary              types.Money `db:"salary" json:"salary"`
	WalletBalance       types.Money `db:"wallet_balance" json:"walletBalance"`
	DateOfJoining       time.Time   `db:"date_of_joining" json:"dateOfJoining"`
	AssignedSites       []id.ID     `db:"assigned_sites" json:"assignedSites"`
	IsActive            bool        `db:"is_active" json:"active"`
	LastLoginAt         *time.Time  `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int         `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time  `db:"locked_until" json:"-"`
}

// NewUser creates an active user with an empty wallet.
func NewUser(name, email, role string) *User {
	return &User{
		Base:          entity.NewBase(),
		Name:          strings.TrimSpace(name),
		Email:         NormalizeEmail(email),
		Role:          role,
		Salary:        types.Zero(),
		WalletBalance: types.Zero(),
		DateOfJoining: time.Now().UTC(),
		AssignedSites: []id.ID{},
		IsActive:      true,
	}
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate implements entity.Validatable.
func (u *User) Validate(_ context.Context) error {
	if strings.TrimSpace(u.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return apperror.NewValidation("invalid email").WithDetail("field", "email")
	}
	if u.Role != appctx.RoleAdmin && u.Role != appctx.RoleSiteManager {
		return apperror.NewValidation("role must be admin or sitemanager").WithDetail("field", "role")
	}
	if u.PasswordHash == "" {
		return apperror.NewValidation("password is required").WithDetail("field", "password")
	}
	if u.WalletBalance.IsNegative() {
		return apperror.NewValidation("wallet balance cannot be negative")
	}
	return nil
}

// SetPassword hashes and stores a new password.
func (u *User) SetPassword(plain string) error {
	if len(plain) < MinPasswordLength {
		return apperror.NewValidation(fmt.Sprintf("password must be at least %d characters", MinPasswordLength)).
			WithDetail("field", "password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// IsSiteManager reports whether the user has the site manager role.
func (u *User) IsSiteManager() bool {
	return u.Role == appctx.RoleSiteManager
}

// ManagesSite reports whether projectID is among the assigned sites.
func (u *User) ManagesSite(projectID id.ID) bool {
	return slices.Contains(u.AssignedSites, projectID)
}

// IsLocked returns true if the account is temporarily locked.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// CanLogin checks if the user may sign in.
func (u *User) CanLogin(now time.Time) error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	if u.IsLocked(now) {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments the failure counter and locks after maxAttempts.
func (u *User) RecordFailedLogin(now time.Time, maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		until := now.Add(lockDuration)
		u.LockedUntil = &until
	}
}

// RecordSuccessfulLogin resets the failure counter.
func (u *User) RecordSuccessfulLogin(now time.Time) {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
}
