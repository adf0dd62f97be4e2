package auth

import (
	"context"
	"time"

	"sitebook/internal/core/apperror"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/id"
	"sitebook/internal/domain/user"
	"sitebook/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts int
	LockDuration     time.Duration
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// UserStore is the subset of the user service that login needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, userID id.ID) (*user.User, error)
	Update(ctx context.Context, userID id.ID, mutate func(*user.User) error) (*user.User, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *user.User `json:"user"`
}

// Service provides authentication logic.
type Service struct {
	users      UserStore
	jwtService *JWTService
	config     ServiceConfig
	now        func() time.Time
}

// NewService creates a new auth service.
func NewService(users UserStore, jwtService *JWTService, config ServiceConfig) *Service {
	return &Service{
		users:      users,
		jwtService: jwtService,
		config:     config,
		now:        time.Now,
	}
}

// Login checks the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	now := s.now()

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}
	if err := u.CanLogin(now); err != nil {
		return nil, err
	}

	if !u.CheckPassword(password) {
		if _, err := s.users.Update(ctx, u.ID, func(u *user.User) error {
			u.RecordFailedLogin(now, s.config.MaxLoginAttempts, s.config.LockDuration)
			return nil
		}); err != nil {
			logger.Warn(ctx, "failed to record login failure", "user_id", u.ID, "error", err)
		}
		return nil, apperror.NewUnauthorized("invalid email or password")
	}

	u, err = s.users.Update(ctx, u.ID, func(u *user.User) error {
		u.RecordSuccessfulLogin(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(UserContextOf(u))
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "user logged in", "user_id", u.ID, "role", u.Role)
	return &Session{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// Me returns the authenticated user.
func (s *Service) Me(ctx context.Context) (*user.User, error) {
	userID, err := id.Parse(appctx.GetUserID(ctx))
	if err != nil {
		return nil, apperror.NewUnauthorized("not authenticated")
	}
	return s.users.GetByID(ctx, userID)
}

// UserContextOf converts a stored user into request identity.
func UserContextOf(u *user.User) appctx.UserContext {
	return appctx.UserContext{
		UserID:        u.ID.String(),
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		AssignedSites: id.Strings(u.AssignedSites),
	}
}
