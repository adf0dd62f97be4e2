package memory

import (
	"context"
	"sync"

	"sitebook/internal/core/tx"
)

type snapshotter interface {
	snapshot() func()
}

// TxManager emulates transactions over a set of stores: on error every
// registered store is restored to its state at the start of the outermost call.
type TxManager struct {
	mu     sync.Mutex
	stores []snapshotter
}

var _ tx.Manager = (*TxManager)(nil)

// NewTxManager creates a manager; register stores with Track.
func NewTxManager() *TxManager {
	return &TxManager{}
}

// Track registers stores whose state must roll back together.
func (m *TxManager) Track(stores ...snapshotter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores = append(m.stores, stores...)
}

type activeKey struct{}

// RunInTransaction implements tx.Manager.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(activeKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	restores := make([]func(), 0, len(m.stores))
	for _, s := range m.stores {
		restores = append(restores, s.snapshot())
	}
	m.mu.Unlock()

	if err := fn(context.WithValue(ctx, activeKey{}, true)); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}
