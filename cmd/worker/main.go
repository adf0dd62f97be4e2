// Package main is the entry point for the sitebook background worker.
// It periodically reconciles stored bank and creditor balances against their
// entries and purges expired idempotency keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"sitebook/internal/config"
	"sitebook/internal/domain/accounts"
	"sitebook/internal/infrastructure/storage/postgres"
	"sitebook/internal/infrastructure/storage/postgres/repo"
	"sitebook/pkg/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.LogDev,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	if err := cfg.RequireDatabase(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting sitebook worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	repos := repo.NewSet(txm).AccountRepos()

	var locker Locker
	if cfg.RedisAddress != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warnw("redis unavailable; running without distributed lock", "error", err)
		} else {
			locker = redisLocker{client: redislock.New(rdb)}
			log.Infow("connected to redis", "addr", cfg.RedisAddress)
		}
	}

	worker := NewWorker(Config{
		Reconciler:  accounts.NewReconciler(repos, txm),
		Idempotency: postgres.NewIdempotencyStore(txm, cfg.IdempotencyTTL),
		Locker:      locker,
		Interval:    cfg.ReconcileInterval,
		Fix:         cfg.ReconcileFix,
	}, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}
