package boot

import (
	"context"
	"errors"
	"time"

	"eventreg/src/config"
	"eventreg/src/db"
	"eventreg/src/lib"
	"eventreg/src/services"

	"github.com/rs/zerolog"
)

const reconcileJobName = "reconcile-payments"

// InitStorage opens the configured backend and brings its schema up to date.
func InitStorage(ctx context.Context, cfg *config.Config, log *zerolog.Logger) (db.StorageAdapter, error) {
	store, err := db.NewStorageAdapter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if m, ok := store.(db.Migrator); ok {
		if err := m.Migrate(ctx); err != nil {
			return nil, err
		}
	}
	log.Info().Str("storage_mode", cfg.StorageMode).Msg("storage ready")
	return store, nil
}

// InitEventLedger returns the Redis backed ledger when REDIS_URL is set and
// reachable, and a pass-through ledger otherwise.
func InitEventLedger(ctx context.Context, log *zerolog.Logger) services.EventLedger {
	rdb, err := lib.GetRedisClient()
	if errors.Is(err, lib.ErrRedisNotConfigured) {
		log.Info().Msg("REDIS_URL not set, webhook de-duplication disabled")
		return services.NopEventLedger{}
	}
	if err != nil {
		log.Warn().Err(err).Msg("invalid REDIS_URL, webhook de-duplication disabled")
		return services.NopEventLedger{}
	}
	if err := lib.PingRedis(ctx, rdb); err != nil {
		log.Warn().Err(err).Msg("redis unreachable at startup, claims will be retried per event")
	}
	return services.NewRedisEventLedger(rdb)
}

// InitScheduler runs the reconciler every interval. A non-positive interval
// disables it.
func InitScheduler(reconciler *services.Reconciler, interval time.Duration, log *zerolog.Logger) error {
	if interval <= 0 {
		log.Info().Msg("payment reconciliation disabled")
		return nil
	}
	timeout := interval / 2
	if timeout > 5*time.Minute {
		timeout = 5 * time.Minute
	}
	id, err := lib.CreateCronJob(reconcileJobName, interval, reconciler.Task(timeout))
	if err != nil {
		return err
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		return err
	}
	sched.Start()
	log.Info().Str("job_id", id).Dur("interval", interval).Msg("payment reconciliation scheduled")
	return nil
}

func StopScheduler(log *zerolog.Logger) {
	if err := lib.StopScheduler(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown")
	}
}
