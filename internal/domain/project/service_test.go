package project

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebook/internal/core/apperror"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/id"
	"sitebook/internal/infrastructure/storage/memory"
)

func TestGetScoped(t *testing.T) {
	svc := NewService(memory.NewStore[*Project]("projects"), memory.NewTxManager())
	admin := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: id.New().String(), Role: appctx.RoleAdmin})

	mine := NewProject("Tower A", "Pune", time.Now(), time.Time{})
	other := NewProject("Tower B", "Nashik", time.Now(), time.Time{})
	require.NoError(t, svc.Create(admin, mine))
	require.NoError(t, svc.Create(admin, other))

	manager := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:        id.New().String(),
		Role:          appctx.RoleSiteManager,
		AssignedSites: []string{mine.ID.String()},
	})

	got, err := svc.GetScoped(manager, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tower A", got.Name)

	_, err = svc.GetScoped(manager, other.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	got, err = svc.GetScoped(admin, other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.ID)

	_, err = svc.GetScoped(admin, id.New())
	assert.True(t, apperror.IsNotFound(err))
}
