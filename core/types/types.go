// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions and
// small value helpers.
package types

import (
	"fmt"

	"github.com/google/uuid"
)

// Identity value objects. Each wraps a uuid.UUID in its own struct so a
// CorridorID can never be passed where a ServiceID is expected. The embedded
// UUID promotes String, MarshalText and UnmarshalText.

// PartnerID identifies a partner
type PartnerID struct{ uuid.UUID }

// ContractID identifies a contract
type ContractID struct{ uuid.UUID }

// ServiceID identifies a remittance service
type ServiceID struct{ uuid.UUID }

// CorridorID identifies a corridor
type CorridorID struct{ uuid.UUID }

// AffiliateID identifies a partner affiliate
type AffiliateID struct{ uuid.UUID }

// PricingID identifies a pricing rule
type PricingID struct{ uuid.UUID }

// TaxID identifies a tax definition
type TaxID struct{ uuid.UUID }

// TaxRuleDetailID identifies a tax rule detail row
type TaxRuleDetailID struct{ uuid.UUID }

// IsZero reports whether the id is unset
func (id PartnerID) IsZero() bool { return id.UUID == uuid.Nil }

// IsZero reports whether the id is unset
func (id ServiceID) IsZero() bool { return id.UUID == uuid.Nil }

// IsZero reports whether the id is unset
func (id CorridorID) IsZero() bool { return id.UUID == uuid.Nil }

// IsZero reports whether the id is unset
func (id AffiliateID) IsZero() bool { return id.UUID == uuid.Nil }

func parse(kind, s string) (uuid.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", kind, s, err)
	}
	return u, nil
}

// ParsePartnerID parses a partner id
func ParsePartnerID(s string) (PartnerID, error) {
	u, err := parse("partner", s)
	return PartnerID{u}, err
}

// ParseContractID parses a contract id
func ParseContractID(s string) (ContractID, error) {
	u, err := parse("contract", s)
	return ContractID{u}, err
}

// ParseServiceID parses a service id
func ParseServiceID(s string) (ServiceID, error) {
	u, err := parse("service", s)
	return ServiceID{u}, err
}

// ParseCorridorID parses a corridor id
func ParseCorridorID(s string) (CorridorID, error) {
	u, err := parse("corridor", s)
	return CorridorID{u}, err
}

// ParseAffiliateID parses an affiliate id
func ParseAffiliateID(s string) (AffiliateID, error) {
	u, err := parse("affiliate", s)
	return AffiliateID{u}, err
}

// ParsePricingID parses a pricing id
func ParsePricingID(s string) (PricingID, error) {
	u, err := parse("pricing", s)
	return PricingID{u}, err
}

// ParseTaxID parses a tax id
func ParseTaxID(s string) (TaxID, error) {
	u, err := parse("tax", s)
	return TaxID{u}, err
}

// ParseTaxRuleDetailID parses a tax rule detail id
func ParseTaxRuleDetailID(s string) (TaxRuleDetailID, error) {
	u, err := parse("tax rule detail", s)
	return TaxRuleDetailID{u}, err
}

// Channel is the transaction origination medium used as a pricing dimension
type Channel string

const (
	ChannelBranch Channel = "Branch"
	ChannelMobile Channel = "Mobile"
	ChannelOnline Channel = "Online"
)

// String returns the string representation
func (c Channel) String() string {
	return string(c)
}
