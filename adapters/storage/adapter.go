// Package storage provides the reference-data stores the engine reads from.
// Supports two backends: an in-memory store loaded from seed files, and
// PostgreSQL.
package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"remit-pricing/adapters/postgres"
	"remit-pricing/core/ports"
	"remit-pricing/core/types"
	"remit-pricing/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
)

// Store is the storage interface
type Store interface {
	ports.Repository
	ports.SnapshotReader

	// Ping checks the backend is reachable
	Ping(ctx context.Context) error

	// Close releases backend resources
	Close() error
}

type pairKey struct {
	service  types.ServiceID
	corridor types.CorridorID
}

// MemoryStore is an in-memory storage backend. It is replaced wholesale by
// Load and never mutated row by row.
type MemoryStore struct {
	mu sync.RWMutex

	snapshot  ports.Snapshot
	contracts map[types.PartnerID][]types.Contract
	pricings  map[pairKey][]types.Pricing
	taxRules  map[pairKey][]types.TaxRuleDetail
	taxes     map[types.TaxID]types.Tax
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.Load(&ports.Snapshot{})
	return s
}

// NewMemoryStoreFromFile creates a memory store from a seed file
func NewMemoryStoreFromFile(path string) (*MemoryStore, error) {
	snap, err := LoadSeedFile(path)
	if err != nil {
		return nil, err
	}
	s := NewMemoryStore()
	s.Load(snap)
	return s, nil
}

// Load replaces the store contents with snap
func (s *MemoryStore) Load(snap *ports.Snapshot) {
	contracts := make(map[types.PartnerID][]types.Contract)
	for _, c := range snap.Contracts {
		contracts[c.PartnerID] = append(contracts[c.PartnerID], c)
	}

	pricings := make(map[pairKey][]types.Pricing)
	for _, p := range snap.Pricings {
		if !p.Enabled {
			continue
		}
		k := pairKey{p.ServiceID, p.CorridorID}
		pricings[k] = append(pricings[k], p)
	}

	taxRules := make(map[pairKey][]types.TaxRuleDetail)
	for _, r := range snap.TaxRuleDetails {
		if !r.Enabled {
			continue
		}
		k := pairKey{r.ServiceID, r.CorridorID}
		taxRules[k] = append(taxRules[k], r)
	}

	taxes := make(map[types.TaxID]types.Tax, len(snap.Taxes))
	for _, t := range snap.Taxes {
		taxes[t.ID] = t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = copySnapshot(snap)
	s.contracts = contracts
	s.pricings = pricings
	s.taxRules = taxRules
	s.taxes = taxes
}

// GetActiveContracts implements ports.ContractReader
func (s *MemoryStore) GetActiveContracts(ctx context.Context, partnerID types.PartnerID, at time.Time) ([]types.Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.Contract
	for _, c := range s.contracts[partnerID] {
		if c.ActiveAt(at) {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetEnabledPricings implements ports.PricingReader
func (s *MemoryStore) GetEnabledPricings(ctx context.Context, serviceID types.ServiceID, corridorID types.CorridorID) ([]types.Pricing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.pricings[pairKey{serviceID, corridorID}]
	return append([]types.Pricing(nil), rows...), nil
}

// GetEnabledTaxRules implements ports.TaxRuleReader
func (s *MemoryStore) GetEnabledTaxRules(ctx context.Context, corridorID types.CorridorID, serviceID types.ServiceID) ([]types.TaxRuleDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.taxRules[pairKey{serviceID, corridorID}]
	return append([]types.TaxRuleDetail(nil), rows...), nil
}

// GetTax implements ports.TaxReader
func (s *MemoryStore) GetTax(ctx context.Context, taxID types.TaxID) (*types.Tax, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.taxes[taxID]
	if !ok {
		return nil, errors.NotFound("tax", taxID.String())
	}
	return &t, nil
}

// Snapshot implements ports.SnapshotReader
func (s *MemoryStore) Snapshot(ctx context.Context) (*ports.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := copySnapshot(&s.snapshot)
	return &snap, nil
}

// Ping implements Store
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close implements Store
func (s *MemoryStore) Close() error {
	return nil
}

func copySnapshot(snap *ports.Snapshot) ports.Snapshot {
	out := ports.Snapshot{
		Contracts:      append([]types.Contract(nil), snap.Contracts...),
		Pricings:       append([]types.Pricing(nil), snap.Pricings...),
		Taxes:          append([]types.Tax(nil), snap.Taxes...),
		TaxRuleDetails: append([]types.TaxRuleDetail(nil), snap.TaxRuleDetails...),
	}
	sort.SliceStable(out.Contracts, func(i, j int) bool { return out.Contracts[i].Code < out.Contracts[j].Code })
	sort.SliceStable(out.Pricings, func(i, j int) bool { return out.Pricings[i].Code < out.Pricings[j].Code })
	sort.SliceStable(out.Taxes, func(i, j int) bool { return out.Taxes[i].Code < out.Taxes[j].Code })
	return out
}

// Options configures StoreFactory
type Options struct {
	Backend     Backend
	SeedFile    string
	DatabaseURL string
	MaxConns    int32
}

// StoreFactory creates a store for the configured backend
func StoreFactory(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory, "":
		if opts.SeedFile == "" {
			return NewMemoryStore(), nil
		}
		return NewMemoryStoreFromFile(opts.SeedFile)
	case BackendPostgres:
		pool, err := postgres.Connect(ctx, postgres.PoolConfig{
			URL:      opts.DatabaseURL,
			MaxConns: opts.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		return postgres.NewRepository(pool), nil
	default:
		return nil, errors.Newf(errors.TypeConfig, "unsupported storage backend: %s", opts.Backend)
	}
}
