package rental

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebook/internal/core/apperror"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
	"sitebook/internal/domain/ledger"
	"sitebook/internal/domain/party"
	"sitebook/internal/infrastructure/storage/memory"
)

type bookerStub struct {
	booked []ledger.ExpenseInput
}

func (b *bookerStub) RecordExpense(_ context.Context, in ledger.ExpenseInput) (*ledger.Expense, error) {
	b.booked = append(b.booked, in)
	return &ledger.Expense{Base: entity.NewBase(), ProjectID: in.ProjectID, Name: in.Name, Amount: in.Amount, Category: in.Category}, nil
}

type rentalFixture struct {
	admin       context.Context
	now         time.Time
	svc         *Service
	machines    *memory.Store[*Machine]
	contractors *memory.Store[*party.Contractor]
	booker      *bookerStub
}

func newRentalFixture(t *testing.T) *rentalFixture {
	t.Helper()
	f := &rentalFixture{
		admin:       appctx.WithUser(context.Background(), &appctx.UserContext{UserID: id.New().String(), Role: appctx.RoleAdmin}),
		now:         t0,
		machines:    memory.NewStore[*Machine]("machines"),
		contractors: memory.NewStore[*party.Contractor]("contractors"),
		booker:      &bookerStub{},
	}
	txm := memory.NewTxManager()
	txm.Track(f.machines, f.contractors)
	f.svc = NewService(f.machines, txm, party.NewContractorService(f.contractors, txm), f.booker, nil,
		func() time.Time { return f.now })
	return f
}

func (f *rentalFixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *rentalFixture) rented(t *testing.T, plate string) *Machine {
	t.Helper()
	m := NewMachine("Excavator", CategoryBig, OwnershipRented)
	m.PlateNumber = plate
	require.NoError(t, f.svc.Create(f.admin, m))
	return m
}

func (f *rentalFixture) contractor(t *testing.T, projects ...id.ID) *party.Contractor {
	t.Helper()
	c := party.NewContractor("Earthworks", "9000000003", "Pune")
	c.AssignedProjects = projects
	require.NoError(t, f.contractors.Create(context.Background(), c))
	return c
}

func managerCtx(sites ...id.ID) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:        id.New().String(),
		Role:          appctx.RoleSiteManager,
		AssignedSites: id.Strings(sites),
	})
}

func TestAssign_StartsAssignment(t *testing.T) {
	f := newRentalFixture(t)
	projectID := id.New()
	m := f.rented(t, "MH12")

	got, err := f.svc.Assign(f.admin, m.ID, AssignInput{ProjectID: &projectID, RentalType: PerHour, Rate: types.MustMoney("300")})
	require.NoError(t, err)

	assert.Equal(t, StatusInUse, got.Status)
	require.NotNil(t, got.AssignedAt)
	assert.Equal(t, t0, *got.AssignedAt)
	require.Len(t, got.AssignmentHistory, 1)
	entry := got.AssignmentHistory[0]
	assert.Equal(t, AssignedToProject, entry.AssignedModel)
	assert.Equal(t, projectID, *entry.AssignedTo)
	assert.True(t, entry.Rate.Equal(types.MustMoney("300")))

	_, err = f.svc.Assign(f.admin, m.ID, AssignInput{ProjectID: &projectID})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
}

func TestReturn_BillsNetOfPauses(t *testing.T) {
	f := newRentalFixture(t)
	projectID := id.New()
	m := f.rented(t, "MH12")
	_, err := f.svc.Assign(f.admin, m.ID, AssignInput{ProjectID: &projectID, RentalType: PerHour, Rate: types.MustMoney("300")})
	require.NoError(t, err)

	f.advance(4 * time.Hour)
	paused, err := f.svc.TogglePause(f.admin, m.ID)
	require.NoError(t, err)
	assert.True(t, paused.IsRentPaused)

	f.advance(2 * time.Hour)
	resumed, err := f.svc.TogglePause(f.admin, m.ID)
	require.NoError(t, err)
	assert.False(t, resumed.IsRentPaused)
	require.Len(t, resumed.PauseHistory, 1)
	assert.InDelta(t, 2.0, resumed.PauseHistory[0].DurationHours, 1e-9)

	f.advance(4 * time.Hour)
	details, err := f.svc.Details(f.admin, m.ID)
	require.NoError(t, err)
	assert.True(t, details.Estimate.EstimatedRent.Equal(types.MustMoney("2400")))

	res, err := f.svc.Return(f.admin, m.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusReturned, res.Machine.Status)
	assert.True(t, res.Machine.TotalRentPaid.Equal(types.MustMoney("2400")), res.Machine.TotalRentPaid.String())
	assert.Equal(t, int64(480), res.Estimate.Units)

	last := res.Machine.AssignmentHistory[len(res.Machine.AssignmentHistory)-1]
	assert.Equal(t, StatusReturned, last.ReturnStatus)
	assert.Equal(t, int64(480), last.DurationMinutes)
	require.NotNil(t, last.TotalRent)

	require.Len(t, f.booker.booked, 1)
	booked := f.booker.booked[0]
	assert.Equal(t, projectID, booked.ProjectID)
	assert.Equal(t, ledger.ExpenseMachineRental, booked.Category)
	assert.Equal(t, "Rental return: Excavator [MH12]", booked.Name)
	assert.Equal(t, m.ID, *booked.MachineID)
	assert.True(t, strings.HasPrefix(booked.Remarks, "480 mins @ 300/hr"), booked.Remarks)
	require.NotNil(t, res.Expense)
}

func TestReturn_ClosesOpenPause(t *testing.T) {
	f := newRentalFixture(t)
	projectID := id.New()
	m := f.rented(t, "")
	_, err := f.svc.Assign(f.admin, m.ID, AssignInput{ProjectID: &projectID, RentalType: PerDay, Rate: types.MustMoney("1000")})
	require.NoError(t, err)

	f.advance(30 * time.Hour)
	_, err = f.svc.TogglePause(f.admin, m.ID)
	require.NoError(t, err)
	f.advance(48 * time.Hour)

	res, err := f.svc.Return(f.admin, m.ID)
	require.NoError(t, err)
	assert.False(t, res.Machine.IsRentPaused)
	require.Len(t, res.Machine.PauseHistory, 1)
	// 30 billable hours round up to two days.
	assert.Equal(t, int64(2), res.Estimate.Units)
	assert.True(t, res.Machine.TotalRentPaid.Equal(types.MustMoney("2000")))
}

func TestReturn_ContractorProject(t *testing.T) {
	f := newRentalFixture(t)
	site := id.New()
	c := f.contractor(t, site)
	m := f.rented(t, "")
	_, err := f.svc.Assign(f.admin, m.ID, AssignInput{ContractorID: &c.ID, RentalType: PerHour, Rate: types.MustMoney("60")})
	require.NoError(t, err)

	f.advance(90 * time.Minute)
	_, err = f.svc.Return(f.admin, m.ID)
	require.NoError(t, err)

	require.Len(t, f.booker.booked, 1)
	assert.Equal(t, site, f.booker.booked[0].ProjectID)
	assert.True(t, f.booker.booked[0].Amount.Equal(types.MustMoney("90")))
}

func TestReturn_NoProjectSkipsExpense(t *testing.T) {
	f := newRentalFixture(t)
	c := f.contractor(t)
	m := f.rented(t, "")
	_, err := f.svc.Assign(f.admin, m.ID, AssignInput{ContractorID: &c.ID, RentalType: PerHour, Rate: types.MustMoney("60")})
	require.NoError(t, err)
	f.advance(time.Hour)

	res, err := f.svc.Return(f.admin, m.ID)
	require.NoError(t, err)
	assert.Nil(t, res.Expense)
	assert.Empty(t, f.booker.booked)
	assert.Equal(t, StatusReturned, res.Machine.Status)
}

func TestReturn_Rejections(t *testing.T) {
	f := newRentalFixture(t)

	own := NewMachine("Mixer", CategoryEquipment, OwnershipOwn)
	own.Status = StatusInUse
	require.NoError(t, f.svc.Create(f.admin, own))
	_, err := f.svc.Return(f.admin, own.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Only rented equipment can be returned", appErr.Message)

	idle := f.rented(t, "")
	_, err = f.svc.Return(f.admin, idle.ID)
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidState, appErr.Code)
	assert.Equal(t, "Machine is not currently in use", appErr.Message)

	_, err = f.svc.TogglePause(f.admin, idle.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))

	_, err = f.svc.Return(f.admin, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestSiteMachines_Scope(t *testing.T) {
	f := newRentalFixture(t)
	p1, p2 := id.New(), id.New()
	c := f.contractor(t, p1)

	onSite := f.rented(t, "A")
	_, err := f.svc.Assign(f.admin, onSite.ID, AssignInput{ProjectID: &p1})
	require.NoError(t, err)

	withContractor := f.rented(t, "B")
	_, err = f.svc.Assign(f.admin, withContractor.ID, AssignInput{ContractorID: &c.ID})
	require.NoError(t, err)

	elsewhere := f.rented(t, "C")
	_, err = f.svc.Assign(f.admin, elsewhere.ID, AssignInput{ProjectID: &p2})
	require.NoError(t, err)

	gone := f.rented(t, "D")
	_, err = f.svc.Assign(f.admin, gone.ID, AssignInput{ProjectID: &p1})
	require.NoError(t, err)
	_, err = f.svc.Return(f.admin, gone.ID)
	require.NoError(t, err)

	mgr := managerCtx(p1)
	got, err := f.svc.SiteMachines(mgr, nil)
	require.NoError(t, err)
	ids := make([]id.ID, 0, len(got))
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []id.ID{onSite.ID, withContractor.ID}, ids)

	all, err := f.svc.SiteMachines(f.admin, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	foreign, err := f.svc.SiteMachines(mgr, &p2)
	require.NoError(t, err)
	assert.Empty(t, foreign)

	_, err = f.svc.Details(mgr, elsewhere.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
	_, err = f.svc.Details(mgr, withContractor.ID)
	assert.NoError(t, err)
}

func TestRelocate(t *testing.T) {
	f := newRentalFixture(t)
	from, to := id.New(), id.New()
	c := f.contractor(t, from)
	m := f.rented(t, "")
	_, err := f.svc.Assign(f.admin, m.ID, AssignInput{ProjectID: &from, ContractorID: &c.ID})
	require.NoError(t, err)

	got, err := f.svc.Relocate(f.admin, m.ID, to)
	require.NoError(t, err)
	assert.Equal(t, to, *got.ProjectID)
	assert.Equal(t, StatusAvailable, got.Status)
	assert.Nil(t, got.AssignedToContractor)
}

func TestReassign_StartsWithoutPreviousPauses(t *testing.T) {
	f := newRentalFixture(t)
	first, second := id.New(), id.New()
	m := f.rented(t, "MH14")

	_, err := f.svc.Assign(f.admin, m.ID, AssignInput{ProjectID: &first, RentalType: PerHour, Rate: types.MustMoney("60")})
	require.NoError(t, err)
	f.advance(time.Hour)
	_, err = f.svc.TogglePause(f.admin, m.ID)
	require.NoError(t, err)

	relocated, err := f.svc.Relocate(f.admin, m.ID, second)
	require.NoError(t, err)
	assert.False(t, relocated.IsRentPaused)

	f.advance(30 * time.Minute)
	reassigned, err := f.svc.Assign(f.admin, m.ID, AssignInput{ProjectID: &second, RentalType: PerHour, Rate: types.MustMoney("60")})
	require.NoError(t, err)
	assert.False(t, reassigned.IsRentPaused)
	assert.Nil(t, reassigned.RentPausedAt)
	assert.Empty(t, reassigned.PauseHistory)

	f.advance(10*time.Hour + 7*time.Minute)
	res, err := f.svc.Return(f.admin, m.ID)
	require.NoError(t, err)

	assert.True(t, res.Estimate.EstimatedRent.Equal(types.MustMoney("607")), res.Estimate.EstimatedRent.String())
	assert.Equal(t, int64(607), res.Estimate.Units)
	last := res.Machine.AssignmentHistory[len(res.Machine.AssignmentHistory)-1]
	assert.Equal(t, int64(607), last.DurationMinutes)
	require.Len(t, f.booker.booked, 1)
	assert.Equal(t, second, f.booker.booked[0].ProjectID)
}
