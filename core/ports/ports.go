// Package ports declares the read-only repository interfaces the engine
// consumes. Persistence adapters implement them; the engine never writes.
package ports

import (
	"context"
	"time"

	"remit-pricing/core/types"
)

// ContractReader reads partner contracts
type ContractReader interface {
	// GetActiveContracts returns the enabled contracts of partnerID whose
	// validity window contains at. More than one result is a data error the
	// caller surfaces.
	GetActiveContracts(ctx context.Context, partnerID types.PartnerID, at time.Time) ([]types.Contract, error)
}

// PricingReader reads pricing rules
type PricingReader interface {
	// GetEnabledPricings returns every enabled pricing for the pair
	GetEnabledPricings(ctx context.Context, serviceID types.ServiceID, corridorID types.CorridorID) ([]types.Pricing, error)
}

// TaxRuleReader reads tax rule details
type TaxRuleReader interface {
	// GetEnabledTaxRules returns the enabled tax rule details for the pair
	GetEnabledTaxRules(ctx context.Context, corridorID types.CorridorID, serviceID types.ServiceID) ([]types.TaxRuleDetail, error)
}

// TaxReader reads tax definitions
type TaxReader interface {
	// GetTax returns the tax, or an error of type NOT_FOUND
	GetTax(ctx context.Context, taxID types.TaxID) (*types.Tax, error)
}

// Repository is the full read surface of the engine
type Repository interface {
	ContractReader
	PricingReader
	TaxRuleReader
	TaxReader
}

// Snapshot is a complete copy of the reference data, used by validation
// and listing tools.
type Snapshot struct {
	Contracts      []types.Contract      `json:"contracts"`
	Pricings       []types.Pricing       `json:"pricings"`
	Taxes          []types.Tax           `json:"taxes"`
	TaxRuleDetails []types.TaxRuleDetail `json:"tax_rule_details"`
}

// SnapshotReader exports every row, enabled or not
type SnapshotReader interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}
