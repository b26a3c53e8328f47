package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"remit-pricing/core/ports"
	"remit-pricing/core/types"
	"remit-pricing/internal/errors"
)

// Numeric columns are selected as text and parsed with decimal so no
// precision is lost between the database and the engine.
const (
	selectContracts = `
		SELECT id, partner_id, code, start_date, end_date, enabled
		FROM contracts
		WHERE deleted_at IS NULL`

	selectPricings = `
		SELECT id, code, channel, minimum_amount::text, maximum_amount::text,
		       fixed_amount::text, rate::text, service_id, corridor_id, affiliate_id, enabled
		FROM pricings
		WHERE deleted_at IS NULL`

	selectTaxes = `
		SELECT id, code, rate::text, fixed_amount::text, applied_on, enabled
		FROM taxes
		WHERE deleted_at IS NULL`

	selectTaxRules = `
		SELECT id, tax_id, corridor_id, service_id, enabled
		FROM tax_rule_details
		WHERE deleted_at IS NULL`
)

// Repository implements the read ports over PostgreSQL
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a repository over an open pool
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetActiveContracts implements ports.ContractReader
func (r *Repository) GetActiveContracts(ctx context.Context, partnerID types.PartnerID, at time.Time) ([]types.Contract, error) {
	rows, err := r.db.Query(ctx, selectContracts+`
		  AND partner_id = $1 AND enabled
		  AND start_date <= $2 AND end_date > $2`,
		partnerID.UUID, at)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanContract)
}

// GetEnabledPricings implements ports.PricingReader
func (r *Repository) GetEnabledPricings(ctx context.Context, serviceID types.ServiceID, corridorID types.CorridorID) ([]types.Pricing, error) {
	rows, err := r.db.Query(ctx, selectPricings+`
		  AND service_id = $1 AND corridor_id = $2 AND enabled`,
		serviceID.UUID, corridorID.UUID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPricing)
}

// GetEnabledTaxRules implements ports.TaxRuleReader
func (r *Repository) GetEnabledTaxRules(ctx context.Context, corridorID types.CorridorID, serviceID types.ServiceID) ([]types.TaxRuleDetail, error) {
	rows, err := r.db.Query(ctx, selectTaxRules+`
		  AND corridor_id = $1 AND service_id = $2 AND enabled`,
		corridorID.UUID, serviceID.UUID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTaxRule)
}

// GetTax implements ports.TaxReader
func (r *Repository) GetTax(ctx context.Context, taxID types.TaxID) (*types.Tax, error) {
	rows, err := r.db.Query(ctx, selectTaxes+` AND id = $1`, taxID.UUID)
	if err != nil {
		return nil, err
	}
	taxes, err := collect(rows, scanTax)
	if err != nil {
		return nil, err
	}
	if len(taxes) == 0 {
		return nil, errors.NotFound("tax", taxID.String())
	}
	return &taxes[0], nil
}

// Snapshot implements ports.SnapshotReader. All four reads share one
// repeatable-read transaction so the snapshot is consistent.
func (r *Repository) Snapshot(ctx context.Context) (*ports.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	snap := &ports.Snapshot{}

	rows, err := tx.Query(ctx, selectContracts+` ORDER BY code`)
	if err != nil {
		return nil, err
	}
	if snap.Contracts, err = collect(rows, scanContract); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, selectPricings+` ORDER BY code`)
	if err != nil {
		return nil, err
	}
	if snap.Pricings, err = collect(rows, scanPricing); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, selectTaxes+` ORDER BY code`)
	if err != nil {
		return nil, err
	}
	if snap.Taxes, err = collect(rows, scanTax); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, selectTaxRules+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	if snap.TaxRuleDetails, err = collect(rows, scanTaxRule); err != nil {
		return nil, err
	}

	return snap, tx.Commit(ctx)
}

// Ping checks the database is reachable
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Close closes the pool
func (r *Repository) Close() error {
	r.db.Close()
	return nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanContract(rows pgx.Rows) (types.Contract, error) {
	var c types.Contract
	err := rows.Scan(&c.ID.UUID, &c.PartnerID.UUID, &c.Code, &c.StartDate, &c.EndDate, &c.Enabled)
	return c, err
}

func scanPricing(rows pgx.Rows) (types.Pricing, error) {
	var (
		p                types.Pricing
		channel          string
		minimum, maximum string
		fixed, rate      *string
		affiliate        uuid.NullUUID
	)
	err := rows.Scan(&p.ID.UUID, &p.Code, &channel, &minimum, &maximum,
		&fixed, &rate, &p.ServiceID.UUID, &p.CorridorID.UUID, &affiliate, &p.Enabled)
	if err != nil {
		return p, err
	}

	p.Channel = types.Channel(channel)
	if affiliate.Valid {
		p.AffiliateID = &types.AffiliateID{UUID: affiliate.UUID}
	}
	if p.MinimumAmount, err = decimal.NewFromString(minimum); err != nil {
		return p, fmt.Errorf("pricing %s minimum_amount: %w", p.Code, err)
	}
	if p.MaximumAmount, err = decimal.NewFromString(maximum); err != nil {
		return p, fmt.Errorf("pricing %s maximum_amount: %w", p.Code, err)
	}
	if p.FixedAmount, err = nullableDecimal(fixed); err != nil {
		return p, fmt.Errorf("pricing %s fixed_amount: %w", p.Code, err)
	}
	if p.Rate, err = nullableDecimal(rate); err != nil {
		return p, fmt.Errorf("pricing %s rate: %w", p.Code, err)
	}
	return p, nil
}

func scanTax(rows pgx.Rows) (types.Tax, error) {
	var (
		t           types.Tax
		rate, fixed *string
		appliedOn   string
	)
	if err := rows.Scan(&t.ID.UUID, &t.Code, &rate, &fixed, &appliedOn, &t.Enabled); err != nil {
		return t, err
	}

	a, err := types.ParseAppliedOn(appliedOn)
	if err != nil {
		return t, fmt.Errorf("tax %s: %w", t.Code, err)
	}
	t.AppliedOn = a

	// Taxes store zero rather than null, but tolerate null columns.
	if d, err := nullableDecimal(rate); err != nil {
		return t, fmt.Errorf("tax %s rate: %w", t.Code, err)
	} else if d != nil {
		t.Rate = *d
	}
	if d, err := nullableDecimal(fixed); err != nil {
		return t, fmt.Errorf("tax %s fixed_amount: %w", t.Code, err)
	} else if d != nil {
		t.FixedAmount = *d
	}
	return t, nil
}

func scanTaxRule(rows pgx.Rows) (types.TaxRuleDetail, error) {
	var d types.TaxRuleDetail
	err := rows.Scan(&d.ID.UUID, &d.TaxID.UUID, &d.CorridorID.UUID, &d.ServiceID.UUID, &d.Enabled)
	return d, err
}

func nullableDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
