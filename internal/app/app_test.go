package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
	"sitebook/internal/domain/auth"
	"sitebook/internal/domain/inventory"
	"sitebook/internal/domain/party"
	"sitebook/internal/domain/project"
	"sitebook/internal/domain/transfer"
	"sitebook/internal/domain/user"
)

func TestNew_WiresTransferNotifications(t *testing.T) {
	repos, txm := NewMemoryRepos()
	svc := New(repos, txm, Options{JWT: auth.DefaultJWTConfig("test-secret")})
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: id.New().String(), Role: appctx.RoleAdmin})

	admin, err := svc.Users.Register(ctx, user.CreateInput{
		Name: "Owner", Email: "owner@example.com", Password: "secret123", Role: appctx.RoleAdmin,
	})
	require.NoError(t, err)

	siteA := project.NewProject("Site A", "Pune", time.Now(), time.Now())
	siteB := project.NewProject("Site B", "Nashik", time.Now(), time.Now())
	require.NoError(t, svc.Projects.Create(ctx, siteA))
	require.NoError(t, svc.Projects.Create(ctx, siteB))

	manager := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:        id.New().String(),
		Role:          appctx.RoleSiteManager,
		AssignedSites: []string{siteA.ID.String()},
	})

	_, err = svc.Inventory.CreateStock(ctx, inventory.StockInput{
		ProjectID:    siteA.ID,
		VendorID:     mustVendor(t, svc, ctx),
		MaterialName: "Cement",
		Unit:         "bags",
		Quantity:     types.MustMoney("10"),
		UnitPrice:    types.MustMoney("400"),
	})
	require.NoError(t, err)

	item, err := transfer.NewItem(transfer.KindStock, "Cement")
	require.NoError(t, err)
	_, err = svc.Transfers.Create(manager, transfer.Request{
		Item:        item,
		FromProject: siteA.ID,
		ToProject:   siteB.ID,
		Quantity:    types.MustMoney("4"),
	})
	require.NoError(t, err)

	adminCtx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: admin.ID.String(), Role: appctx.RoleAdmin})
	inbox, err := svc.Notifications.List(adminCtx)
	require.NoError(t, err)
	assert.Equal(t, 1, inbox.UnreadCount)
	assert.Nil(t, svc.Reports)
}

func mustVendor(t *testing.T, svc *Services, ctx context.Context) id.ID {
	t.Helper()
	v := party.NewVendor("Acme Cement", "9800000000")
	require.NoError(t, svc.Vendors.Create(ctx, v))
	return v.ID
}
