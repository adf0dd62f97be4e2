package main

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"

	appctx "sitebook/internal/core/context"
	"sitebook/internal/domain/accounts"
	"sitebook/pkg/logger"
)

const lockKey = "lock:sitebook:worker"

// ErrLocked is returned by a Locker when another worker holds the lock.
var ErrLocked = errors.New("lock held by another worker")

// Locker serializes job runs across worker replicas.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

type redisLocker struct {
	client *redislock.Client
}

func (l redisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, err
	}
	return lock.Release, nil
}

// Reconciler compares stored balances with their entries.
type Reconciler interface {
	Run(ctx context.Context, fix bool) ([]accounts.Drift, error)
}

// IdempotencyCleaner purges expired idempotency keys.
type IdempotencyCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Config wires the worker's jobs.
type Config struct {
	Reconciler  Reconciler
	Idempotency IdempotencyCleaner
	// Locker is optional; without it every replica runs every tick.
	Locker   Locker
	Interval time.Duration
	Fix      bool
}

// Worker runs the periodic maintenance jobs.
type Worker struct {
	cfg Config
	log *logger.Logger
}

// NewWorker creates a worker. A non-positive interval means hourly.
func NewWorker(cfg Config, log *logger.Logger) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Worker{cfg: cfg, log: log.WithComponent("worker")}
}

// Run executes the jobs once immediately and then on every tick until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs every job once, under the distributed lock when one is configured.
func (w *Worker) Tick(ctx context.Context) {
	ctx = appctx.StartBackground(ctx)
	log := w.log.WithContext(ctx)

	if w.cfg.Locker != nil {
		release, err := w.cfg.Locker.Obtain(ctx, lockKey, w.cfg.Interval)
		if errors.Is(err, ErrLocked) {
			log.Debugw("another worker holds the lock; skipping tick")
			return
		}
		if err != nil {
			log.Warnw("error obtaining lock; running without it", "error", err)
		} else {
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					log.Warnw("failed to release lock", "error", err)
				}
			}()
		}
	}

	w.reconcile(ctx, log)
	w.cleanupIdempotency(ctx, log)
}

func (w *Worker) reconcile(ctx context.Context, log *logger.Logger) {
	if w.cfg.Reconciler == nil {
		return
	}
	drifts, err := w.cfg.Reconciler.Run(ctx, w.cfg.Fix)
	if err != nil {
		log.Errorw("reconciliation failed", "error", err)
		return
	}
	for _, d := range drifts {
		log.Warnw("balance drift",
			"kind", d.Kind,
			"id", d.ID,
			"name", d.Name,
			"stored", d.Stored,
			"computed", d.Computed,
			"fixed", w.cfg.Fix,
		)
	}
	log.Infow("reconciliation finished", "drifts", len(drifts))
}

func (w *Worker) cleanupIdempotency(ctx context.Context, log *logger.Logger) {
	if w.cfg.Idempotency == nil {
		return
	}
	n, err := w.cfg.Idempotency.CleanupExpired(ctx)
	if err != nil {
		log.Errorw("idempotency cleanup failed", "error", err)
		return
	}
	if n > 0 {
		log.Infow("cleaned up idempotency keys", "count", n)
	}
}
