// Package bootstrap - Wiring tests
package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"remit-pricing/adapters/cache"
	"remit-pricing/core/types"
	"remit-pricing/internal/config"
	"remit-pricing/internal/errors"
)

var seed = filepath.Join("..", "..", "adapters", "storage", "testdata", "refdata.hcl")

func quote() types.ResolveRequest {
	return types.ResolveRequest{
		PartnerID:      types.PartnerID{UUID: uuid.MustParse("11111111-1111-1111-1111-111111111111")},
		ServiceID:      types.ServiceID{UUID: uuid.MustParse("22222222-2222-2222-2222-222222222222")},
		CorridorID:     types.CorridorID{UUID: uuid.MustParse("33333333-3333-3333-3333-333333333333")},
		Channel:        types.ChannelOnline,
		Amount:         decimal.NewFromInt(100),
		EvaluationTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

// TestNewMemory wires the seeded memory backend
func TestNewMemory(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.SeedFile = seed

	app, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Expected app, got error: %v", err)
	}
	defer app.Close()

	res, err := app.Engine.Resolve(context.Background(), quote())
	if err != nil {
		t.Fatalf("Expected quote, got error: %v", err)
	}
	if res.Total.StringFixed(2) != "5.25" {
		t.Errorf("Expected 5.25, got %s", res.Total.StringFixed(2))
	}
}

// TestNewWithMemoryCache proves the cache decorator is installed
func TestNewWithMemoryCache(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.SeedFile = seed
	cfg.Cache.Enabled = true

	app, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Expected app, got error: %v", err)
	}
	defer app.Close()

	if _, ok := app.Store.(*cache.Repository); !ok {
		t.Fatalf("Expected *cache.Repository, got %T", app.Store)
	}
	for i := 0; i < 2; i++ {
		if _, err := app.Engine.Resolve(context.Background(), quote()); err != nil {
			t.Fatalf("Expected quote through cache, got error: %v", err)
		}
	}
}

// TestNewRejectsBadConfig proves validation runs before anything opens
func TestNewRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "postgres"

	if _, err := New(context.Background(), cfg); !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("Expected CONFIG_ERROR, got %v", err)
	}

	cfg = config.Default()
	cfg.Storage.SeedFile = filepath.Join(t.TempDir(), "missing.hcl")
	if _, err := New(context.Background(), cfg); !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("Expected CONFIG_ERROR for missing seed, got %v", err)
	}
}
