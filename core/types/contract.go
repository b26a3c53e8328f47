// Package types - Contract types
package types

import "time"

// Contract binds a partner to the network for a validity window
type Contract struct {
	ID        ContractID `json:"id"`
	PartnerID PartnerID  `json:"partner_id"`
	Code      string     `json:"code"`

	// StartDate is inclusive
	StartDate time.Time `json:"start_date"`

	// EndDate is exclusive
	EndDate time.Time `json:"end_date"`

	Enabled bool `json:"enabled"`
}

// ActiveAt reports whether the contract is enabled and its window contains t
func (c *Contract) ActiveAt(t time.Time) bool {
	return c.Enabled && !t.Before(c.StartDate) && t.Before(c.EndDate)
}

// Overlaps reports whether the validity windows of c and o intersect
func (c *Contract) Overlaps(o *Contract) bool {
	return c.StartDate.Before(o.EndDate) && o.StartDate.Before(c.EndDate)
}
