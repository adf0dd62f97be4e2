package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
	"sitebook/internal/domain/accounts"
	"sitebook/pkg/logger"
)

type fakeReconciler struct {
	calls int
	fix   bool
}

func (r *fakeReconciler) Run(_ context.Context, fix bool) ([]accounts.Drift, error) {
	r.calls++
	r.fix = fix
	return []accounts.Drift{{Kind: "bank", ID: id.New(), Stored: types.MustMoney("10"), Computed: types.MustMoney("0")}}, nil
}

type fakeCleaner struct {
	calls int
}

func (c *fakeCleaner) CleanupExpired(context.Context) (int64, error) {
	c.calls++
	return 3, nil
}

type fakeLocker struct {
	err      error
	released int
}

func (l *fakeLocker) Obtain(context.Context, string, time.Duration) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

func TestTick_RunsJobsUnderLock(t *testing.T) {
	rec, clean, lock := &fakeReconciler{}, &fakeCleaner{}, &fakeLocker{}
	w := NewWorker(Config{Reconciler: rec, Idempotency: clean, Locker: lock, Fix: true}, logger.NewNop())

	w.Tick(context.Background())

	assert.Equal(t, 1, rec.calls)
	assert.True(t, rec.fix)
	assert.Equal(t, 1, clean.calls)
	assert.Equal(t, 1, lock.released)
}

func TestTick_SkipsWhenLockHeld(t *testing.T) {
	rec, clean := &fakeReconciler{}, &fakeCleaner{}
	w := NewWorker(Config{Reconciler: rec, Idempotency: clean, Locker: &fakeLocker{err: ErrLocked}}, logger.NewNop())

	w.Tick(context.Background())

	assert.Zero(t, rec.calls)
	assert.Zero(t, clean.calls)
}

func TestTick_RunsWhenLockBackendFails(t *testing.T) {
	rec := &fakeReconciler{}
	w := NewWorker(Config{Reconciler: rec, Locker: &fakeLocker{err: errors.New("redis down")}}, logger.NewNop())

	w.Tick(context.Background())

	assert.Equal(t, 1, rec.calls)
}
