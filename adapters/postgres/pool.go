// Package postgres reads reference data from PostgreSQL through pgx.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"remit-pricing/internal/errors"
	"remit-pricing/internal/logging"
)

// PoolConfig tunes the connection pool
type PoolConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// ConnectAttempts is the number of tries before giving up
	ConnectAttempts int

	// RetryDelay is the first backoff, doubled after each failure
	RetryDelay time.Duration
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.MaxConns <= 0 {
		c.MaxConns = 20
	}
	if c.MinConns <= 0 {
		c.MinConns = 2
	}
	if c.MaxConnLifetime <= 0 {
		c.MaxConnLifetime = time.Hour
	}
	if c.MaxConnIdleTime <= 0 {
		c.MaxConnIdleTime = 5 * time.Minute
	}
	if c.ConnectAttempts <= 0 {
		c.ConnectAttempts = 5
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	return c
}

// Connect opens a pool and pings it, retrying with exponential backoff
func Connect(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	cfg = cfg.withDefaults()
	log := logging.Named("postgres")

	if cfg.URL == "" {
		return nil, errors.Config("postgres url is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "failed to parse postgres url", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	delay := cfg.RetryDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.ConnectAttempts; attempt++ {
		log.Info("connecting to database", zap.Int("attempt", attempt), zap.Int("max_attempts", cfg.ConnectAttempts))

		pool, err := open(ctx, poolCfg)
		if err == nil {
			log.Info("database connected")
			return pool, nil
		}
		lastErr = err
		log.Warn("database connection failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt == cfg.ConnectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Cancelled("database connect", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return nil, errors.Storage("failed to connect to database", lastErr).
		WithContext("attempts", cfg.ConnectAttempts)
}

func open(ctx context.Context, cfg *pgxpool.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
