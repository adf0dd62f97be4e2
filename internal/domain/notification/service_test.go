package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebook/internal/core/apperror"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/id"
	"sitebook/internal/domain/user"
	"sitebook/internal/infrastructure/storage/memory"
)

func setup(t *testing.T) (*Service, *memory.Store[*Notification], []*user.User) {
	t.Helper()
	users := memory.NewStore[*user.User]("users")
	notes := memory.NewStore[*Notification]("notifications")
	txm := memory.NewTxManager()
	txm.Track(users, notes)

	var admins []*user.User
	for _, email := range []string{"a@site.test", "b@site.test"} {
		u := user.NewUser("Admin", email, appctx.RoleAdmin)
		require.NoError(t, users.Create(context.Background(), u))
		admins = append(admins, u)
	}
	mgr := user.NewUser("Manager", "m@site.test", appctx.RoleSiteManager)
	require.NoError(t, users.Create(context.Background(), mgr))

	return NewService(notes, user.NewService(users, txm), txm), notes, admins
}

func as(u *user.User) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{UserID: u.ID.String(), Role: u.Role})
}

func TestNotifyAdmins(t *testing.T) {
	svc, notes, admins := setup(t)
	related := id.New()

	n, err := svc.NotifyAdmins(context.Background(), Message{
		Title:        "New Transfer Request",
		Body:         "Transfer of 10 Cement from A to B requested.",
		Link:         "/admin/transfer",
		RelatedID:    &related,
		RelatedModel: "Transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Equal(t, 2, notes.Len())
	for _, row := range notes.Rows() {
		assert.Equal(t, KindInfo, row.Kind)
		assert.False(t, row.Read)
	}

	inbox, err := svc.List(as(admins[0]))
	require.NoError(t, err)
	require.Len(t, inbox.Items, 1)
	assert.Equal(t, admins[0].ID, inbox.Items[0].Recipient)
	assert.Equal(t, 1, inbox.UnreadCount)
}

func TestMarkRead(t *testing.T) {
	svc, notes, admins := setup(t)
	for range 3 {
		_, err := svc.NotifyAdmins(context.Background(), Message{Title: "t", Body: "b"})
		require.NoError(t, err)
	}

	var first *Notification
	for _, row := range notes.Rows() {
		if row.Recipient == admins[0].ID {
			first = row
			break
		}
	}
	require.NotNil(t, first)

	// Another user's notification is left alone.
	require.NoError(t, svc.MarkRead(as(admins[1]), first.ID))
	inbox, err := svc.List(as(admins[0]))
	require.NoError(t, err)
	assert.Equal(t, 3, inbox.UnreadCount)

	require.NoError(t, svc.MarkRead(as(admins[0]), first.ID))
	inbox, err = svc.List(as(admins[0]))
	require.NoError(t, err)
	assert.Equal(t, 2, inbox.UnreadCount)

	marked, err := svc.MarkAllRead(as(admins[0]))
	require.NoError(t, err)
	assert.Equal(t, 2, marked)

	inbox, err = svc.List(as(admins[1]))
	require.NoError(t, err)
	assert.Equal(t, 3, inbox.UnreadCount)
}

func TestList_RequiresUser(t *testing.T) {
	svc, _, _ := setup(t)
	_, err := svc.List(context.Background())
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}
