package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebook/internal/core/apperror"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/id"
	"sitebook/internal/domain/user"
	"sitebook/internal/infrastructure/storage/memory"
)

func setup(t *testing.T) (*Service, *user.Service, *JWTService) {
	t.Helper()
	store := memory.NewStore[*user.User]("users")
	txm := memory.NewTxManager()
	txm.Track(store)
	users := user.NewService(store, txm)
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	cfg := ServiceConfig{MaxLoginAttempts: 2, LockDuration: time.Minute}
	return NewService(users, jwtSvc, cfg), users, jwtSvc
}

func TestLogin_IssuesTokenWithSites(t *testing.T) {
	svc, users, jwtSvc := setup(t)
	ctx := context.Background()
	site := id.New()
	_, err := users.Register(ctx, user.CreateInput{
		Name: "Manager", Email: "m@example.com", Password: "secret123",
		Role: appctx.RoleSiteManager, AssignedSites: []id.ID{site},
	})
	require.NoError(t, err)

	session, err := svc.Login(ctx, "M@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.NotNil(t, session.User.LastLoginAt)

	uc, err := jwtSvc.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, appctx.RoleSiteManager, uc.Role)
	assert.Equal(t, []string{site.String()}, uc.AssignedSites)

	me, err := svc.Me(appctx.WithUser(ctx, uc))
	require.NoError(t, err)
	assert.Equal(t, "m@example.com", me.Email)
}

func TestLogin_Failures(t *testing.T) {
	svc, users, _ := setup(t)
	ctx := context.Background()
	_, err := users.Register(ctx, user.CreateInput{Name: "A", Email: "a@example.com", Password: "secret123", Role: appctx.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "nobody@example.com", "x")
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	for i := 0; i < 2; i++ {
		_, err = svc.Login(ctx, "a@example.com", "wrong-pass")
		assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	}

	_, err = svc.Login(ctx, "a@example.com", "secret123")
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "account must be locked")
}

func TestValidateToken_Rejects(t *testing.T) {
	jwtSvc := NewJWTService(DefaultJWTConfig("one"))
	other := NewJWTService(DefaultJWTConfig("two"))

	token, _, err := jwtSvc.GenerateAccessToken(appctx.UserContext{UserID: "u1", Role: appctx.RoleAdmin})
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)

	expired := NewJWTService(JWTConfig{Secret: "one", Issuer: "sitebook", AccessTokenTTL: -time.Minute})
	stale, _, err := expired.GenerateAccessToken(appctx.UserContext{UserID: "u1"})
	require.NoError(t, err)
	_, err = jwtSvc.ValidateToken(stale)
	assert.Error(t, err)
}

func TestValidateToken_UnknownRole(t *testing.T) {
	jwtSvc := NewJWTService(DefaultJWTConfig("one"))
	token, _, err := jwtSvc.GenerateAccessToken(appctx.UserContext{UserID: "u1", Role: "auditor"})
	require.NoError(t, err)

	_, err = jwtSvc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestValidateToken_Leeway(t *testing.T) {
	issued := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	jwtSvc := NewJWTService(JWTConfig{Secret: "one", Issuer: "sitebook", AccessTokenTTL: time.Hour, Leeway: time.Minute})
	jwtSvc.now = func() time.Time { return issued }

	token, _, err := jwtSvc.GenerateAccessToken(appctx.UserContext{UserID: "u1", Role: appctx.RoleSiteManager, AssignedSites: []string{"p1"}})
	require.NoError(t, err)

	jwtSvc.now = func() time.Time { return issued.Add(time.Hour + 30*time.Second) }
	uc, err := jwtSvc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", uc.UserID)
	assert.Equal(t, []string{"p1"}, uc.AssignedSites)

	jwtSvc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = jwtSvc.ValidateToken(token)
	assert.Error(t, err)
}
