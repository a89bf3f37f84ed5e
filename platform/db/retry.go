package db

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	startupAttempts  = 5
	startupBaseDelay = 2 * time.Second
)

// Retry calls fn up to attempts times with quadratic backoff
// (base, 4*base, 9*base, ...). It stops early when ctx is done.
func Retry(ctx context.Context, log *logger.Logger, name string, attempts int, base time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", lastErr)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*attempt) * base):
		}
	}
	return fmt.Errorf("%s: %w", name, lastErr)
}

// Connect opens the pool, retrying while the database comes up.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := Retry(ctx, log, "database connection", startupAttempts, startupBaseDelay, func() error {
		p, err := NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	})
	return pool, err
}

// MigrateWithRetry applies the embedded migrations, retrying transient failures.
func MigrateWithRetry(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger, migrations fs.FS) error {
	return Retry(ctx, log, "database migrations", startupAttempts, startupBaseDelay, func() error {
		return RunMigrations(ctx, pool, migrations)
	})
}
