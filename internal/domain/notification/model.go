// Package notification delivers in-app messages to users.
package notification

import (
	"context"
	"strings"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
)

// Kind is the notification severity shown in the client.
type Kind string

const (
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindGeneral Kind = "general"
	KindUrgent  Kind = "urgent"
)

// Notification is a message addressed to one user.
type Notification struct {
	entity.Base

	Recipient    id.ID  `db:"recipient" json:"recipient"`
	Title        string `db:"title" json:"title"`
	Message      string `db:"message" json:"message"`
	Kind         Kind   `db:"kind" json:"type"`
	Link         string `db:"link" json:"link,omitempty"`
	Read         bool   `db:"read" json:"read"`
	RelatedID    *id.ID `db:"related_id" json:"relatedId,omitempty"`
	RelatedModel string `db:"related_model" json:"relatedModel,omitempty"`
}

// Validate implements entity.Validatable.
func (n *Notification) Validate(_ context.Context) error {
	if id.IsNil(n.Recipient) {
		return apperror.NewValidation("recipient is required")
	}
	if strings.TrimSpace(n.Title) == "" || strings.TrimSpace(n.Message) == "" {
		return apperror.NewValidation("title and message are required")
	}
	switch n.Kind {
	case KindInfo, KindWarning, KindSuccess, KindError, KindGeneral, KindUrgent:
		return nil
	}
	return apperror.NewValidation("invalid notification type").WithDetail("type", string(n.Kind))
}
