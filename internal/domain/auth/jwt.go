// Package auth provides login and access token handling.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "sitebook/internal/core/context"
)

// ErrUnknownRole is returned for a well-signed token whose role is neither
// admin nor sitemanager.
var ErrUnknownRole = errors.New("token carries an unknown role")

// JWTConfig configures access tokens.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
	// Leeway tolerates clock skew between replicas.
	Leeway time.Duration
}

// DefaultJWTConfig issues week-long tokens.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "sitebook",
		AccessTokenTTL: 7 * 24 * time.Hour,
		Leeway:         30 * time.Second,
	}
}

// Claims is the token payload. Sites lists the projects a site manager may access.
type Claims struct {
	jwt.RegisteredClaims
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  string   `json:"role"`
	Sites []string `json:"sites,omitempty"`
}

// JWTService signs and verifies HS256 access tokens.
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config, now: time.Now}
}

// GenerateAccessToken signs a token for u and returns its expiry.
func (s *JWTService) GenerateAccessToken(u appctx.UserContext) (string, time.Time, error) {
	issued := s.now()
	expiresAt := issued.Add(s.config.AccessTokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   u.UserID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		Sites: u.AssignedSites,
	})

	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken verifies signature, issuer, expiry and role.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return []byte(s.config.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.config.Leeway),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	switch claims.Role {
	case appctx.RoleAdmin, appctx.RoleSiteManager:
	default:
		return nil, ErrUnknownRole
	}

	return &appctx.UserContext{
		UserID:        claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		Role:          claims.Role,
		AssignedSites: claims.Sites,
	}, nil
}
