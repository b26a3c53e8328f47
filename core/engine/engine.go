// Package engine provides the fee resolution engine.
// CLI and HTTP are thin wrappers around this engine.
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"remit-pricing/core/contract"
	"remit-pricing/core/fee"
	"remit-pricing/core/ports"
	"remit-pricing/core/pricing"
	"remit-pricing/core/tax"
	"remit-pricing/core/types"
	"remit-pricing/internal/errors"
	"remit-pricing/internal/logging"
	"remit-pricing/internal/metrics"
)

// Config configures the engine
type Config struct {
	// ResolveTimeout bounds a single resolution (0 = no engine deadline)
	ResolveTimeout time.Duration

	// Now supplies the evaluation time when a request carries none
	Now func() time.Time
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		ResolveTimeout: 5 * time.Second,
		Now:            time.Now,
	}
}

// Engine resolves the contract, pricing and taxes of a transaction and
// composes its fee. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	contracts *contract.Resolver
	pricings  *pricing.Matcher
	taxes     *tax.Selector

	config Config
	logger *zap.Logger
}

// New creates an engine over a read-only repository
func New(repo ports.Repository, config Config) *Engine {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Engine{
		contracts: contract.NewResolver(repo, config.Now),
		pricings:  pricing.NewMatcher(repo),
		taxes:     tax.NewSelector(repo),
		config:    config,
		logger:    logging.Named("engine"),
	}
}

// Resolve prices a transaction
func (e *Engine) Resolve(ctx context.Context, req types.ResolveRequest) (*types.ResolveResult, error) {
	start := time.Now()

	result, err := e.resolve(ctx, req)

	outcome := metrics.OutcomeOK
	if err != nil {
		enrich(err, req)
		outcome = metrics.Outcome(string(errors.TypeOf(err)))
		e.logger.Debug("resolution failed", append(requestFields(req), zap.Error(err))...)
	}
	metrics.ObserveResolution(outcome, time.Since(start))

	return result, err
}

func (e *Engine) resolve(ctx context.Context, req types.ResolveRequest) (*types.ResolveResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	if e.config.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.ResolveTimeout)
		defer cancel()
	}

	at := req.EvaluationTime
	if at.IsZero() {
		at = e.config.Now()
	}

	// Contract gate: no active contract, no price.
	c, err := e.contracts.Resolve(ctx, req.PartnerID, at)
	if err != nil {
		return nil, err
	}

	p, err := e.pricings.Match(ctx, pricing.MatchRequest{
		ServiceID:   req.ServiceID,
		CorridorID:  req.CorridorID,
		AffiliateID: req.AffiliateID,
		Channel:     req.Channel,
		Amount:      req.Amount,
	})
	if err != nil {
		return nil, err
	}

	applied, err := e.taxes.Select(ctx, req.ServiceID, req.CorridorID)
	if err != nil {
		return nil, err
	}

	breakdown, err := fee.Compose(p, applied, req.Amount)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("resolution complete",
		append(requestFields(req),
			zap.String("contract", c.Code),
			zap.String("pricing", p.Code),
			zap.Int("taxes", len(breakdown.Taxes)),
			zap.String("total", breakdown.Total.StringFixed(types.MoneyPlaces)),
		)...,
	)

	return &types.ResolveResult{
		Contract:    *c,
		Pricing:     *p,
		Taxes:       breakdown.Taxes,
		BaseFee:     breakdown.BaseFee,
		Total:       breakdown.Total,
		EvaluatedAt: at,
	}, nil
}

// Validate checks the request shape before any read happens
func Validate(req types.ResolveRequest) error {
	switch {
	case req.PartnerID.IsZero():
		return errors.Input("partner_id is required")
	case req.ServiceID.IsZero():
		return errors.Input("service_id is required")
	case req.CorridorID.IsZero():
		return errors.Input("corridor_id is required")
	case req.Channel == "":
		return errors.Input("channel is required")
	case req.AffiliateID != nil && req.AffiliateID.IsZero():
		return errors.Input("affiliate_id must not be the nil uuid")
	}
	if !req.Amount.IsPositive() {
		return errors.InvalidAmount(req.Amount.String()).
			WithContext("partner_id", req.PartnerID.String()).
			WithContext("channel", req.Channel.String())
	}
	return nil
}

// enrich adds the request context to a typed error without overwriting
// keys a component already set.
func enrich(err error, req types.ResolveRequest) {
	var e *errors.Error
	if !errors.As(err, &e) {
		return
	}
	set := func(k string, v interface{}) {
		if _, ok := e.Context[k]; !ok {
			e.WithContext(k, v)
		}
	}
	set("partner_id", req.PartnerID.String())
	set("service_id", req.ServiceID.String())
	set("corridor_id", req.CorridorID.String())
	set("channel", req.Channel.String())
	set("amount", req.Amount.String())
	if req.AffiliateID != nil {
		set("affiliate_id", req.AffiliateID.String())
	}
}

func requestFields(req types.ResolveRequest) []zap.Field {
	fields := []zap.Field{
		zap.String("partner_id", req.PartnerID.String()),
		zap.String("service_id", req.ServiceID.String()),
		zap.String("corridor_id", req.CorridorID.String()),
		zap.String("channel", req.Channel.String()),
		zap.String("amount", req.Amount.String()),
	}
	if req.AffiliateID != nil {
		fields = append(fields, zap.String("affiliate_id", req.AffiliateID.String()))
	}
	return fields
}
