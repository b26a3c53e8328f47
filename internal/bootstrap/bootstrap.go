// Package bootstrap wires the store, cache and engine from configuration.
// Both binaries start through here.
package bootstrap

import (
	"context"

	"go.uber.org/zap"

	"remit-pricing/adapters/cache"
	"remit-pricing/adapters/storage"
	"remit-pricing/core/engine"
	"remit-pricing/internal/config"
	"remit-pricing/internal/errors"
	"remit-pricing/internal/logging"
)

// App holds the wired components
type App struct {
	Config *config.Config
	Store  storage.Store
	Engine *engine.Engine
}

// New opens the configured store, wraps it with the cache when enabled and
// builds the engine.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logging.Named("bootstrap")

	store, err := storage.StoreFactory(ctx, storage.Options{
		Backend:     storage.Backend(cfg.Storage.Backend),
		SeedFile:    cfg.Storage.SeedFile,
		DatabaseURL: cfg.Storage.DatabaseURL,
		MaxConns:    cfg.Storage.MaxConns,
	})
	if err != nil {
		return nil, err
	}
	log.Info("storage opened",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("seed_file", cfg.Storage.SeedFile),
	)

	if cfg.Cache.Enabled {
		cs, err := openCache(ctx, cfg.Cache)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		store = cache.NewRepository(store, cs, cfg.Cache.TTL())
		log.Info("reference data cache enabled",
			zap.String("backend", cfg.Cache.Backend),
			zap.Duration("ttl", cfg.Cache.TTL()),
		)
	}

	ec := engine.DefaultConfig()
	ec.ResolveTimeout = cfg.Engine.ResolveTimeout()

	return &App{
		Config: cfg,
		Store:  store,
		Engine: engine.New(store, ec),
	}, nil
}

// Close releases the store
func (a *App) Close() error {
	return a.Store.Close()
}

func openCache(ctx context.Context, cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case "memory":
		return cache.NewMemoryStore(cache.Policy{
			TTL:        cfg.TTL(),
			MaxEntries: cfg.MaxEntries,
		}), nil
	case "redis":
		rs, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   "remit",
		})
		if err != nil {
			return nil, errors.Wrap(errors.TypeConfig, "failed to open redis cache", err)
		}
		return rs, nil
	default:
		return nil, errors.Newf(errors.TypeConfig, "unknown cache backend %q", cfg.Backend)
	}
}
