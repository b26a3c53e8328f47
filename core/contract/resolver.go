// Package contract resolves the single active contract of a partner.
package contract

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"remit-pricing/core/ports"
	"remit-pricing/core/types"
	"remit-pricing/internal/errors"
	"remit-pricing/internal/logging"
)

// Resolver finds the one contract a partner is trading under
type Resolver struct {
	contracts ports.ContractReader
	now       func() time.Time
}

// NewResolver creates a resolver reading from contracts. now may be nil,
// in which case time.Now is used.
func NewResolver(contracts ports.ContractReader, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{contracts: contracts, now: now}
}

// Resolve returns the contract of partnerID active at `at`. A zero `at`
// means now. Zero matches is NO_ACTIVE_CONTRACT, more than one is
// AMBIGUOUS_CONTRACT.
func (r *Resolver) Resolve(ctx context.Context, partnerID types.PartnerID, at time.Time) (*types.Contract, error) {
	if at.IsZero() {
		at = r.now()
	}

	if err := errors.CheckContext(ctx, "contract lookup"); err != nil {
		return nil, err
	}

	rows, err := r.contracts.GetActiveContracts(ctx, partnerID, at)
	if err != nil {
		return nil, errors.FromRead("contract lookup", err).
			WithContext("partner_id", partnerID.String())
	}

	// The reader is trusted to filter, but the window is re-checked so a
	// sloppy adapter can never widen it.
	var active []types.Contract
	for _, c := range rows {
		if c.PartnerID == partnerID && c.ActiveAt(at) {
			active = append(active, c)
		}
	}

	switch len(active) {
	case 0:
		return nil, errors.New(errors.TypeNoActiveContract, "partner has no active contract").
			WithContext("partner_id", partnerID.String()).
			WithContext("at", at.UTC().Format(time.RFC3339))
	case 1:
		c := active[0]
		return &c, nil
	default:
		codes := make([]string, 0, len(active))
		ids := make([]string, 0, len(active))
		for _, c := range active {
			codes = append(codes, c.Code)
			ids = append(ids, c.ID.String())
		}
		sort.Strings(codes)
		sort.Strings(ids)

		logging.Named("contract").Warn("ambiguous active contracts",
			zap.String("partner_id", partnerID.String()),
			zap.Strings("contracts", codes),
			zap.Strings("contract_ids", ids),
			zap.Time("at", at),
		)
		return nil, errors.Newf(errors.TypeAmbiguousContract, "%d contracts active for partner", len(active)).
			WithContext("partner_id", partnerID.String()).
			WithContext("at", at.UTC().Format(time.RFC3339)).
			WithContext("contracts", codes).
			WithContext("contract_ids", ids)
	}
}
