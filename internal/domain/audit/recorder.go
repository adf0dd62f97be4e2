// Package audit defines how domain services leave an audit trail of ledger mutations.
package audit

import (
	"context"

	"sitebook/internal/core/id"
)

// Action names recorded in the audit log.
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionReverse = "reverse"
	ActionReturn  = "return"
	ActionPause   = "pause"
	ActionResume  = "resume"
)

// Recorder persists audit entries. Calls made inside a transaction are
// committed or rolled back together with the audited change.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action string, payload any) error
}

// Nop discards every entry.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, string, id.ID, string, any) error { return nil }
