package user

import (
	"context"
	"fmt"

	"sitebook/internal/core/apperror"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/id"
	"sitebook/internal/core/tx"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
	"sitebook/pkg/logger"
)

// Repository is the persistence contract for users.
type Repository = domain.Repository[*User]

// CreateInput holds the fields of a new user.
type CreateInput struct {
	Name          string
	Email         string
	Password      string
	Role          string
	Phone         string
	Salary        types.Money
	AssignedSites []id.ID
}

// Service manages users and site manager wallets.
type Service struct {
	*domain.CatalogService[*User]
	repo      Repository
	txManager tx.Manager
}

// NewService creates a user service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService[*User](repo, txManager, "user"),
		repo:           repo,
		txManager:      txManager,
	}
}

// Register creates a user after checking that the email is free.
func (s *Service) Register(ctx context.Context, in CreateInput) (*User, error) {
	role := in.Role
	if role == "" {
		role = appctx.RoleSiteManager
	}
	u := NewUser(in.Name, in.Email, role)
	u.Phone = in.Phone
	if !in.Salary.IsZero() {
		u.Salary = in.Salary
	}
	if in.AssignedSites != nil {
		u.AssignedSites = in.AssignedSites
	}
	if err := u.SetPassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.FindByEmail(ctx, u.Email); err == nil {
		return nil, apperror.NewDuplicate("user", "email", u.Email)
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	if err := s.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// FindByEmail looks a user up by (normalized) email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	users, err := s.repo.FindAll(ctx, map[string]any{"email": NormalizeEmail(email)})
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, apperror.NewNotFound("user", email)
	}
	return users[0], nil
}

// GetManager returns the user when it exists and is a site manager.
func (s *Service) GetManager(ctx context.Context, userID id.ID) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil || !u.IsSiteManager() {
		if err == nil || apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("site manager", userID.String())
		}
		return nil, err
	}
	return u, nil
}

// ListManagers returns every site manager.
func (s *Service) ListManagers(ctx context.Context) ([]*User, error) {
	return s.repo.FindAll(ctx, map[string]any{"role": appctx.RoleSiteManager})
}

// Admins returns every active admin.
func (s *Service) Admins(ctx context.Context) ([]*User, error) {
	return s.repo.FindAll(ctx, map[string]any{"role": appctx.RoleAdmin, "is_active": true})
}

// AssignSites replaces the project set a site manager may access.
func (s *Service) AssignSites(ctx context.Context, userID id.ID, sites []id.ID) (*User, error) {
	return s.Update(ctx, userID, func(u *User) error {
		if !u.IsSiteManager() {
			return apperror.NewValidation("only site managers can be assigned to sites")
		}
		u.AssignedSites = sites
		u.Touch()
		return nil
	})
}

// ChangePassword sets a new password.
func (s *Service) ChangePassword(ctx context.Context, userID id.ID, plain string) error {
	_, err := s.Update(ctx, userID, func(u *User) error {
		u.Touch()
		return u.SetPassword(plain)
	})
	return err
}

// CreditWallet adds amount to a site manager's wallet.
func (s *Service) CreditWallet(ctx context.Context, userID id.ID, amount types.Money) (*User, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewValidation("amount must be positive")
	}
	var out *User
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		u, err := s.repo.GetForUpdate(ctx, userID)
		if err != nil || !u.IsSiteManager() {
			if err == nil || apperror.IsNotFound(err) {
				return apperror.NewNotFound("site manager", userID.String())
			}
			return err
		}
		u.WalletBalance = u.WalletBalance.Add(amount)
		u.Touch()
		if err := s.repo.Update(ctx, u); err != nil {
			return fmt.Errorf("credit wallet: %w", err)
		}
		out = u
		return nil
	})
	return out, err
}

// DebitWallet takes amount from a wallet; it fails with InsufficientBalance
// before any write when the wallet cannot cover it.
func (s *Service) DebitWallet(ctx context.Context, userID id.ID, amount types.Money) (*User, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewValidation("amount must be positive")
	}
	var out *User
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		u, err := s.repo.GetForUpdate(ctx, userID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("user", userID.String())
			}
			return err
		}
		if u.WalletBalance.LessThan(amount) {
			return apperror.NewInsufficientBalance("wallet", amount.String(), u.WalletBalance.String())
		}
		u.WalletBalance = u.WalletBalance.Sub(amount)
		u.Touch()
		if err := s.repo.Update(ctx, u); err != nil {
			return fmt.Errorf("debit wallet: %w", err)
		}
		out = u
		return nil
	})
	if err == nil {
		logger.Debug(ctx, "wallet debited", "user", userID, "amount", amount.String())
	}
	return out, err
}
