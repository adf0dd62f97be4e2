package notification

import (
	"context"
	"fmt"

	"sitebook/internal/core/apperror"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/tx"
	"sitebook/internal/domain"
	"sitebook/internal/domain/user"
	"sitebook/pkg/logger"
)

// ListLimit caps how many notifications a user sees at once.
const ListLimit = 50

// Message is the content of a broadcast.
type Message struct {
	Title        string
	Body         string
	Kind         Kind
	Link         string
	RelatedID    *id.ID
	RelatedModel string
}

// Service stores and reads notifications.
type Service struct {
	repo      domain.Repository[*Notification]
	users     *user.Service
	txManager tx.Manager
}

// NewService creates the notification service.
func NewService(repo domain.Repository[*Notification], users *user.Service, txManager tx.Manager) *Service {
	return &Service{repo: repo, users: users, txManager: txManager}
}

// NotifyAdmins sends msg to every admin and returns how many were created.
func (s *Service) NotifyAdmins(ctx context.Context, msg Message) (int, error) {
	admins, err := s.users.Admins(ctx)
	if err != nil {
		return 0, err
	}
	if msg.Kind == "" {
		msg.Kind = KindInfo
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, a := range admins {
			n := &Notification{
				Base:         entity.NewBase(),
				Recipient:    a.ID,
				Title:        msg.Title,
				Message:      msg.Body,
				Kind:         msg.Kind,
				Link:         msg.Link,
				RelatedID:    msg.RelatedID,
				RelatedModel: msg.RelatedModel,
			}
			if err := n.Validate(ctx); err != nil {
				return err
			}
			if err := s.repo.Create(ctx, n); err != nil {
				return fmt.Errorf("create notification: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Debug(ctx, "admins notified", "title", msg.Title, "count", len(admins))
	return len(admins), nil
}

// Inbox is the signed-in user's latest notifications.
type Inbox struct {
	Items       []*Notification `json:"items"`
	UnreadCount int             `json:"unreadCount"`
}

// List returns the caller's newest notifications and the unread count.
func (s *Service) List(ctx context.Context) (*Inbox, error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	filter := domain.DefaultListFilter().Eq("recipient", self)
	filter.Limit = ListLimit
	page, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	unread, err := s.repo.FindAll(ctx, map[string]any{"recipient": self, "read": false})
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	return &Inbox{Items: page.Items, UnreadCount: len(unread)}, nil
}

// MarkRead marks one of the caller's notifications as read.
// Unknown ids and other users' notifications are ignored.
func (s *Service) MarkRead(ctx context.Context, notificationID id.ID) error {
	self, err := caller(ctx)
	if err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := s.repo.GetForUpdate(ctx, notificationID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil
			}
			return err
		}
		if n.Recipient != self || n.Read {
			return nil
		}
		n.Read = true
		n.Touch()
		return s.repo.Update(ctx, n)
	})
}

// MarkAllRead marks every unread notification of the caller as read.
func (s *Service) MarkAllRead(ctx context.Context) (int, error) {
	self, err := caller(ctx)
	if err != nil {
		return 0, err
	}
	var marked int
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		unread, err := s.repo.FindAll(ctx, map[string]any{"recipient": self, "read": false})
		if err != nil {
			return err
		}
		for _, n := range unread {
			n.Read = true
			n.Touch()
			if err := s.repo.Update(ctx, n); err != nil {
				return fmt.Errorf("mark read: %w", err)
			}
		}
		marked = len(unread)
		return nil
	})
	return marked, err
}

func caller(ctx context.Context) (id.ID, error) {
	self, err := id.Parse(appctx.GetUserID(ctx))
	if err != nil {
		return id.ID{}, apperror.NewUnauthorized("authentication required")
	}
	return self, nil
}
