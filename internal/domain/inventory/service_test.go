package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebook/internal/core/apperror"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
	"sitebook/internal/domain/party"
	"sitebook/internal/domain/project"
	"sitebook/internal/domain/user"
	"sitebook/internal/infrastructure/storage/memory"
)

type fixture struct {
	svc   *Service
	admin context.Context

	stocks      *memory.Store[*Stock]
	stockOuts   *memory.Store[*StockOut]
	consumables *memory.Store[*Consumable]
	equipment   *memory.Store[*Asset]
	projects    *memory.Store[*project.Project]
	vendors     *memory.Store[*party.Vendor]
	users       *memory.Store[*user.User]

	siteA, siteB *project.Project
	vendor       *party.Vendor
}

func q(s string) types.Quantity { return types.MustMoney(s) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		admin:       appctx.WithUser(context.Background(), &appctx.UserContext{UserID: id.New().String(), Role: appctx.RoleAdmin}),
		stocks:      memory.NewStore[*Stock]("stocks"),
		stockOuts:   memory.NewStore[*StockOut]("stock_outs"),
		consumables: memory.NewStore[*Consumable]("consumable_goods"),
		equipment:   memory.NewStore[*Asset]("equipment"),
		projects:    memory.NewStore[*project.Project]("projects"),
		vendors:     memory.NewStore[*party.Vendor]("vendors"),
		users:       memory.NewStore[*user.User]("users"),
	}
	labEquipment := memory.NewStore[*Asset]("lab_equipment")
	txm := memory.NewTxManager()
	txm.Track(f.stocks, f.stockOuts, f.consumables, f.equipment, labEquipment, f.projects, f.vendors, f.users)

	f.svc = NewService(Deps{
		TxManager: txm,
		Repos: Repositories{
			Stocks:       f.stocks,
			StockOuts:    f.stockOuts,
			Consumables:  f.consumables,
			LabEquipment: labEquipment,
			Equipment:    f.equipment,
		},
		Projects: project.NewService(f.projects, txm),
		Vendors:  party.NewVendorService(f.vendors, txm),
		Users:    user.NewService(f.users, txm),
	})

	ctx := context.Background()
	f.siteA = project.NewProject("Site A", "Pune", time.Now(), time.Now())
	f.siteB = project.NewProject("Site B", "Nashik", time.Now(), time.Now())
	require.NoError(t, f.projects.Create(ctx, f.siteA))
	require.NoError(t, f.projects.Create(ctx, f.siteB))
	f.vendor = party.NewVendor("Cement Co", "9000000001")
	require.NoError(t, f.vendors.Create(ctx, f.vendor))
	return f
}

func (f *fixture) manager(t *testing.T, wallet string, sites ...id.ID) (*user.User, context.Context) {
	t.Helper()
	u := user.NewUser("Manager", id.New().String()[:8]+"@site.test", appctx.RoleSiteManager)
	u.WalletBalance = types.MustMoney(wallet)
	u.AssignedSites = sites
	require.NoError(t, f.users.Create(context.Background(), u))
	return u, appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:        u.ID.String(),
		Role:          appctx.RoleSiteManager,
		AssignedSites: id.Strings(sites),
	})
}

func (f *fixture) lot(t *testing.T, projectID id.ID, material, qty string) *Stock {
	t.Helper()
	s, err := f.svc.CreateStock(f.admin, StockInput{
		ProjectID:    projectID,
		VendorID:     f.vendor.ID,
		MaterialName: material,
		Unit:         "bags",
		Quantity:     q(qty),
		UnitPrice:    types.MustMoney("10"),
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) vendorState(t *testing.T) *party.Vendor {
	t.Helper()
	v, err := f.vendors.GetByID(context.Background(), f.vendor.ID)
	require.NoError(t, err)
	return v
}

func TestCreateStock_RaisesVendorPending(t *testing.T) {
	f := newFixture(t)
	s := f.lot(t, f.siteA.ID, "Cement", "50")

	assert.True(t, s.TotalPrice.Equal(types.MustMoney("500")))
	assert.Equal(t, PaymentCredit, s.PaymentStatus)
	v := f.vendorState(t)
	assert.True(t, v.TotalSupplied.Equal(types.MustMoney("500")))
	assert.True(t, v.PendingAmount.Equal(types.MustMoney("500")))
	assert.Contains(t, v.MaterialsSupplied, "Cement")
}

func TestCreateStock_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateStock(f.admin, StockInput{ProjectID: f.siteA.ID, VendorID: f.vendor.ID, MaterialName: "Cement", Unit: "barrels", Quantity: q("1")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.svc.CreateStock(f.admin, StockInput{ProjectID: f.siteA.ID, VendorID: id.New(), MaterialName: "Cement", Quantity: q("1"), UnitPrice: types.MustMoney("1")})
	assert.True(t, apperror.IsNotFound(err))
	assert.Zero(t, f.stocks.Len())
}

func TestAddStockIn_PaidUsesWallet(t *testing.T) {
	f := newFixture(t)
	mgr, ctx := f.manager(t, "1000", f.siteA.ID)

	s, err := f.svc.AddStockIn(ctx, StockInput{
		ProjectID: f.siteA.ID, VendorID: f.vendor.ID, MaterialName: "Sand", Unit: "ton",
		Quantity: q("4"), UnitPrice: types.MustMoney("150"), PaymentStatus: " Paid ",
	})
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, s.PaymentStatus)
	assert.Equal(t, mgr.ID, *s.AddedBy)

	u, _ := f.users.GetByID(context.Background(), mgr.ID)
	assert.True(t, u.WalletBalance.Equal(types.MustMoney("400")))
	v := f.vendorState(t)
	assert.True(t, v.TotalSupplied.Equal(types.MustMoney("600")))
	assert.True(t, v.PendingAmount.IsZero())
}

func TestAddStockIn_Failures(t *testing.T) {
	f := newFixture(t)
	mgr, ctx := f.manager(t, "100", f.siteA.ID)

	_, err := f.svc.AddStockIn(ctx, StockInput{
		ProjectID: f.siteA.ID, VendorID: f.vendor.ID, MaterialName: "Sand", Unit: "ton",
		Quantity: q("4"), UnitPrice: types.MustMoney("150"), PaymentStatus: "paid",
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientBalance))

	_, err = f.svc.AddStockIn(ctx, StockInput{
		ProjectID: f.siteB.ID, VendorID: f.vendor.ID, MaterialName: "Sand", Unit: "ton",
		Quantity: q("1"), UnitPrice: types.MustMoney("1"),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	u, _ := f.users.GetByID(context.Background(), mgr.ID)
	assert.True(t, u.WalletBalance.Equal(types.MustMoney("100")))
	assert.Zero(t, f.stocks.Len())
	assert.True(t, f.vendorState(t).TotalSupplied.IsZero())
}

func TestRecordStockOut_SingleLotFIFO(t *testing.T) {
	f := newFixture(t)
	first := f.lot(t, f.siteA.ID, "Cement", "50")
	second := f.lot(t, f.siteA.ID, "Cement", "30")

	_, err := f.svc.RecordStockOut(f.admin, StockOutInput{ProjectID: f.siteA.ID, MaterialName: "Cement", Quantity: q("60"), UsedFor: "Block A"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, "50", appErr.Details["available"])
	assert.Zero(t, f.stockOuts.Len())

	out, err := f.svc.RecordStockOut(f.admin, StockOutInput{ProjectID: f.siteA.ID, MaterialName: "Cement", Quantity: q("40"), UsedFor: "Block A"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, out.StockID)
	assert.Equal(t, "bags", out.Unit)

	out, err = f.svc.RecordStockOut(f.admin, StockOutInput{ProjectID: f.siteA.ID, MaterialName: "Cement", Quantity: q("20"), UsedFor: "Block B"})
	require.NoError(t, err)
	assert.Equal(t, second.ID, out.StockID, "the older lot only has 10 left")

	gotFirst, _ := f.stocks.GetByID(context.Background(), first.ID)
	gotSecond, _ := f.stocks.GetByID(context.Background(), second.ID)
	assert.True(t, gotFirst.Quantity.Equal(q("10")))
	assert.True(t, gotFirst.Consumed.Equal(q("40")))
	assert.True(t, gotSecond.Quantity.Equal(q("10")))
}

func TestRecordStockOut_Rejections(t *testing.T) {
	f := newFixture(t)
	f.lot(t, f.siteA.ID, "Cement", "50")
	_, ctx := f.manager(t, "0", f.siteB.ID)

	_, err := f.svc.RecordStockOut(f.admin, StockOutInput{ProjectID: f.siteA.ID, MaterialName: "Cement", Quantity: q("0")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.svc.RecordStockOut(f.admin, StockOutInput{ProjectID: f.siteA.ID, MaterialName: "Steel", Quantity: q("1")})
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	_, err = f.svc.RecordStockOut(ctx, StockOutInput{ProjectID: f.siteA.ID, MaterialName: "Cement", Quantity: q("1")})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}

func TestMoveStock_ConservesQuantity(t *testing.T) {
	f := newFixture(t)
	src := f.lot(t, f.siteA.ID, "Cement", "50")

	dest, err := f.svc.MoveStock(f.admin, f.siteA.ID, f.siteB.ID, "Cement", q("20"))
	require.NoError(t, err)
	require.NotNil(t, dest)
	assert.True(t, dest.TotalPrice.Equal(types.MustMoney("200")))

	again, err := f.svc.MoveStock(f.admin, f.siteA.ID, f.siteB.ID, "Cement", q("5"))
	require.NoError(t, err)
	assert.Equal(t, dest.ID, again.ID, "merged into the same destination lot")
	assert.True(t, again.Quantity.Equal(q("25")))
	assert.True(t, again.TotalPrice.Equal(types.MustMoney("250")))

	gotSrc, _ := f.stocks.GetByID(context.Background(), src.ID)
	assert.True(t, gotSrc.Quantity.Add(again.Quantity).Equal(q("50")))

	missing, err := f.svc.MoveStock(f.admin, f.siteA.ID, f.siteB.ID, "Steel", q("5"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMoveStock_SourceFloorsAtZero(t *testing.T) {
	f := newFixture(t)
	src := f.lot(t, f.siteA.ID, "Cement", "10")

	_, err := f.svc.MoveStock(f.admin, f.siteA.ID, f.siteB.ID, "Cement", q("15"))
	require.NoError(t, err)
	gotSrc, _ := f.stocks.GetByID(context.Background(), src.ID)
	assert.True(t, gotSrc.Quantity.IsZero())
}

func TestConsumeGoods(t *testing.T) {
	f := newFixture(t)
	c := &Consumable{ProjectID: f.siteA.ID, Name: "Gloves", Unit: "pcs", Quantity: q("10"), MinStockLevel: q("2")}
	require.NoError(t, f.svc.AddConsumable(f.admin, c))

	got, err := f.svc.ConsumeGoods(f.admin, c.ID, q("8"))
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(q("2")))
	assert.True(t, got.Low())

	_, err = f.svc.ConsumeGoods(f.admin, c.ID, q("3"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	moved, err := f.svc.MoveConsumable(f.admin, c.ID, f.siteB.ID, q("5"))
	require.NoError(t, err)
	assert.True(t, moved.Quantity.Equal(q("5")))
	src, _ := f.consumables.GetByID(context.Background(), c.ID)
	assert.True(t, src.Quantity.IsZero())
}

func TestMoveAsset(t *testing.T) {
	f := newFixture(t)
	a := &Asset{Base: entity.NewBase(), ProjectID: f.siteA.ID, Name: "Mixer", Quantity: q("1"), Status: AssetMaintenance}
	require.NoError(t, f.equipment.Create(context.Background(), a))

	moved, err := f.svc.MoveAsset(f.admin, KindEquipment, a.ID, f.siteB.ID)
	require.NoError(t, err)
	assert.Equal(t, f.siteB.ID, moved.ProjectID)
	assert.Equal(t, AssetActive, moved.Status)

	_, err = f.svc.MoveAsset(f.admin, "crane", a.ID, f.siteB.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestListStocks_Scoped(t *testing.T) {
	f := newFixture(t)
	f.lot(t, f.siteA.ID, "Cement", "5")
	f.lot(t, f.siteB.ID, "Cement", "5")
	_, ctx := f.manager(t, "0", f.siteA.ID)

	mine, err := f.svc.ListStocks(ctx, domain.DefaultListFilter())
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, f.siteA.ID, mine.Items[0].ProjectID)

	foreign, err := f.svc.ListStocks(ctx, domain.DefaultListFilter().Eq("project_id", f.siteB.ID))
	require.NoError(t, err)
	assert.Empty(t, foreign.Items)

	all, err := f.svc.ListStocks(f.admin, domain.DefaultListFilter())
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
}
