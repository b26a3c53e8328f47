package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"remit-pricing/adapters/storage"
	"remit-pricing/core/ports"
	"remit-pricing/core/types"
	"remit-pricing/internal/logging"
	"remit-pricing/internal/metrics"
)

// Repository decorates a storage.Store with a read-through cache. Cache
// failures degrade to a direct read and are never returned to the caller.
type Repository struct {
	inner  storage.Store
	cache  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewRepository wraps inner. ttl <= 0 defers to the store's own default.
func NewRepository(inner storage.Store, cache Store, ttl time.Duration) *Repository {
	return &Repository{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logging.Named("cache"),
	}
}

// PricingsKey is the cache key of the pricings of a (service, corridor) pair
func PricingsKey(serviceID types.ServiceID, corridorID types.CorridorID) string {
	return fmt.Sprintf("pricing:%s:pricings:%s:%s", KeyVersion, serviceID, corridorID)
}

// TaxRulesKey is the cache key of the tax rules of a (corridor, service) pair
func TaxRulesKey(corridorID types.CorridorID, serviceID types.ServiceID) string {
	return fmt.Sprintf("pricing:%s:taxrules:%s:%s", KeyVersion, corridorID, serviceID)
}

// TaxKey is the cache key of one tax definition
func TaxKey(taxID types.TaxID) string {
	return fmt.Sprintf("pricing:%s:tax:%s", KeyVersion, taxID)
}

// GetActiveContracts implements ports.ContractReader. Not cached.
func (r *Repository) GetActiveContracts(ctx context.Context, partnerID types.PartnerID, at time.Time) ([]types.Contract, error) {
	return r.inner.GetActiveContracts(ctx, partnerID, at)
}

// GetEnabledPricings implements ports.PricingReader
func (r *Repository) GetEnabledPricings(ctx context.Context, serviceID types.ServiceID, corridorID types.CorridorID) ([]types.Pricing, error) {
	var out []types.Pricing
	err := r.readThrough(ctx, "pricings", PricingsKey(serviceID, corridorID), &out, func() (interface{}, error) {
		rows, err := r.inner.GetEnabledPricings(ctx, serviceID, corridorID)
		out = rows
		return rows, err
	})
	return out, err
}

// GetEnabledTaxRules implements ports.TaxRuleReader
func (r *Repository) GetEnabledTaxRules(ctx context.Context, corridorID types.CorridorID, serviceID types.ServiceID) ([]types.TaxRuleDetail, error) {
	var out []types.TaxRuleDetail
	err := r.readThrough(ctx, "tax_rules", TaxRulesKey(corridorID, serviceID), &out, func() (interface{}, error) {
		rows, err := r.inner.GetEnabledTaxRules(ctx, corridorID, serviceID)
		out = rows
		return rows, err
	})
	return out, err
}

// GetTax implements ports.TaxReader. Missing taxes are not cached.
func (r *Repository) GetTax(ctx context.Context, taxID types.TaxID) (*types.Tax, error) {
	var out *types.Tax
	err := r.readThrough(ctx, "tax", TaxKey(taxID), &out, func() (interface{}, error) {
		t, err := r.inner.GetTax(ctx, taxID)
		out = t
		return t, err
	})
	return out, err
}

// Snapshot implements ports.SnapshotReader. Always read fresh.
func (r *Repository) Snapshot(ctx context.Context) (*ports.Snapshot, error) {
	return r.inner.Snapshot(ctx)
}

// Ping implements storage.Store
func (r *Repository) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close closes the cache and the inner store
func (r *Repository) Close() error {
	if err := r.cache.Close(); err != nil {
		r.logger.Warn("cache close failed", zap.Error(err))
	}
	return r.inner.Close()
}

// Invalidate drops the cached entries of a (service, corridor) pair. Tax
// definitions expire on their own TTL.
func (r *Repository) Invalidate(ctx context.Context, serviceID types.ServiceID, corridorID types.CorridorID) error {
	return r.cache.Delete(ctx, PricingsKey(serviceID, corridorID), TaxRulesKey(corridorID, serviceID))
}

// readThrough decodes a hit into dst. On a miss it calls load, which fills
// dst itself, and stores the loaded value.
func (r *Repository) readThrough(ctx context.Context, entity, key string, dst interface{}, load func() (interface{}, error)) error {
	data, hit, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		if err := json.Unmarshal(data, dst); err == nil {
			metrics.CacheHit(entity)
			return nil
		}
		r.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	}
	metrics.CacheMiss(entity)

	v, err := load()
	if err != nil {
		return err
	}

	data, err = json.Marshal(v)
	if err != nil {
		r.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}
