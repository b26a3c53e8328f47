// Package tax selects the taxes that apply to a (corridor, service) pair.
package tax

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"remit-pricing/core/ports"
	"remit-pricing/core/types"
	"remit-pricing/internal/errors"
	"remit-pricing/internal/logging"
)

// Reader is the read surface the selector needs
type Reader interface {
	ports.TaxRuleReader
	ports.TaxReader
}

// Selector resolves tax rule details into applied taxes
type Selector struct {
	repo   Reader
	logger *zap.Logger
}

// NewSelector creates a selector
func NewSelector(repo Reader) *Selector {
	return &Selector{
		repo:   repo,
		logger: logging.Named("tax"),
	}
}

// Select returns the applicable taxes ordered by tax code, then tax id
func (s *Selector) Select(ctx context.Context, serviceID types.ServiceID, corridorID types.CorridorID) ([]types.AppliedTax, error) {
	fields := map[string]interface{}{
		"service_id":  serviceID.String(),
		"corridor_id": corridorID.String(),
	}

	if err := errors.CheckContext(ctx, "tax rule lookup"); err != nil {
		return nil, err
	}

	rules, err := s.repo.GetEnabledTaxRules(ctx, corridorID, serviceID)
	if err != nil {
		return nil, errors.FromRead("tax rule lookup", err).WithFields(fields)
	}

	seen := make(map[types.TaxID]types.TaxRuleDetailID, len(rules))
	applied := make([]types.AppliedTax, 0, len(rules))

	for _, rule := range rules {
		if !rule.Enabled || rule.CorridorID != corridorID || rule.ServiceID != serviceID {
			continue
		}
		if first, dup := seen[rule.TaxID]; dup {
			s.logger.Warn("duplicate enabled tax rule ignored",
				zap.String("tax_id", rule.TaxID.String()),
				zap.String("kept", first.String()),
				zap.String("ignored", rule.ID.String()),
			)
			continue
		}
		seen[rule.TaxID] = rule.ID

		if err := errors.CheckContext(ctx, "tax lookup"); err != nil {
			return nil, err
		}

		tax, err := s.repo.GetTax(ctx, rule.TaxID)
		if err != nil {
			if errors.IsType(err, errors.TypeNotFound) {
				return nil, taxNotFound(rule, "tax referenced by rule does not exist", err).WithFields(fields)
			}
			return nil, errors.FromRead("tax lookup", err).
				WithFields(fields).
				WithContext("tax_id", rule.TaxID.String())
		}
		if tax == nil {
			return nil, taxNotFound(rule, "tax referenced by rule does not exist", nil).WithFields(fields)
		}
		if !tax.Enabled {
			return nil, taxNotFound(rule, "tax referenced by rule is disabled", nil).
				WithFields(fields).
				WithContext("tax_code", tax.Code)
		}

		applied = append(applied, types.AppliedTax{Rule: rule, Tax: *tax})
	}

	sort.SliceStable(applied, func(i, j int) bool {
		a, b := applied[i].Tax, applied[j].Tax
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.ID.String() < b.ID.String()
	})

	s.logger.Debug("taxes selected", zap.Int("count", len(applied)))
	return applied, nil
}

func taxNotFound(rule types.TaxRuleDetail, message string, cause error) *errors.Error {
	return errors.Wrap(errors.TypeTaxNotFound, message, cause).
		WithContext("tax_id", rule.TaxID.String()).
		WithContext("tax_rule_id", rule.ID.String())
}
