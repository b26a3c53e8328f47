// Package contract - Contract resolution tests
package contract

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"remit-pricing/core/types"
	"remit-pricing/internal/errors"
)

var partner = types.PartnerID{UUID: uuid.MustParse("00000000-0000-0000-0000-0000000000a1")}

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func contract(code, start, end string) types.Contract {
	return types.Contract{
		ID:        types.ContractID{UUID: uuid.New()},
		PartnerID: partner,
		Code:      code,
		StartDate: date(start),
		EndDate:   date(end),
		Enabled:   true,
	}
}

// stubReader returns every row unfiltered so the resolver's own window check
// is exercised.
type stubReader struct {
	rows  []types.Contract
	err   error
	calls int
	at    time.Time
}

func (s *stubReader) GetActiveContracts(_ context.Context, _ types.PartnerID, at time.Time) ([]types.Contract, error) {
	s.calls++
	s.at = at
	return s.rows, s.err
}

// TestResolveSingle covers the one active contract case
func TestResolveSingle(t *testing.T) {
	r := NewResolver(&stubReader{rows: []types.Contract{
		contract("C-2024", "2024-01-01", "2025-01-01"),
		contract("C-2025", "2025-01-01", "2026-01-01"),
	}}, nil)

	got, err := r.Resolve(context.Background(), partner, date("2025-06-01"))
	if err != nil {
		t.Fatalf("Expected contract, got error: %v", err)
	}
	if got.Code != "C-2025" {
		t.Errorf("Expected C-2025, got %s", got.Code)
	}
}

// TestResolveWindowBounds proves start is inclusive and end exclusive
func TestResolveWindowBounds(t *testing.T) {
	rows := []types.Contract{contract("C", "2025-01-01", "2026-01-01")}

	tests := []struct {
		at    time.Time
		found bool
	}{
		{date("2025-01-01"), true},
		{date("2025-12-31"), true},
		{date("2026-01-01").Add(-time.Nanosecond), true},
		{date("2026-01-01"), false},
		{date("2024-12-31"), false},
	}

	for _, tt := range tests {
		t.Run(tt.at.Format(time.RFC3339Nano), func(t *testing.T) {
			_, err := NewResolver(&stubReader{rows: rows}, nil).Resolve(context.Background(), partner, tt.at)
			if tt.found && err != nil {
				t.Errorf("Expected contract, got %v", err)
			}
			if !tt.found && !errors.IsType(err, errors.TypeNoActiveContract) {
				t.Errorf("Expected NO_ACTIVE_CONTRACT, got %v", err)
			}
		})
	}
}

// TestResolveNone covers a partner without any contract
func TestResolveNone(t *testing.T) {
	_, err := NewResolver(&stubReader{}, nil).Resolve(context.Background(), partner, date("2025-06-01"))
	if !errors.IsType(err, errors.TypeNoActiveContract) {
		t.Fatalf("Expected NO_ACTIVE_CONTRACT, got %v", err)
	}

	var e *errors.Error
	errors.As(err, &e)
	if e.Context["partner_id"] != partner.String() {
		t.Errorf("Expected partner_id in context, got %v", e.Context)
	}
}

// TestResolveDisabledIgnored proves disabled contracts never resolve
func TestResolveDisabledIgnored(t *testing.T) {
	c := contract("C", "2025-01-01", "2026-01-01")
	c.Enabled = false

	_, err := NewResolver(&stubReader{rows: []types.Contract{c}}, nil).Resolve(context.Background(), partner, date("2025-06-01"))
	if !errors.IsType(err, errors.TypeNoActiveContract) {
		t.Errorf("Expected NO_ACTIVE_CONTRACT, got %v", err)
	}
}

// TestResolveOtherPartnerIgnored proves rows for another partner are dropped
func TestResolveOtherPartnerIgnored(t *testing.T) {
	c := contract("C", "2025-01-01", "2026-01-01")
	c.PartnerID = types.PartnerID{UUID: uuid.New()}

	_, err := NewResolver(&stubReader{rows: []types.Contract{c}}, nil).Resolve(context.Background(), partner, date("2025-06-01"))
	if !errors.IsType(err, errors.TypeNoActiveContract) {
		t.Errorf("Expected NO_ACTIVE_CONTRACT, got %v", err)
	}
}

// TestResolveAmbiguous proves overlapping active contracts are rejected
func TestResolveAmbiguous(t *testing.T) {
	b := contract("C-B", "2025-01-01", "2026-01-01")
	b.ID = types.ContractID{UUID: uuid.MustParse("00000000-0000-0000-0000-0000000000c2")}
	a := contract("C-A", "2025-03-01", "2025-09-01")
	a.ID = types.ContractID{UUID: uuid.MustParse("00000000-0000-0000-0000-0000000000c1")}
	r := NewResolver(&stubReader{rows: []types.Contract{b, a}}, nil)

	_, err := r.Resolve(context.Background(), partner, date("2025-06-01"))
	if !errors.IsType(err, errors.TypeAmbiguousContract) {
		t.Fatalf("Expected AMBIGUOUS_CONTRACT, got %v", err)
	}

	var e *errors.Error
	errors.As(err, &e)
	want := []string{"C-A", "C-B"}
	if !reflect.DeepEqual(e.Context["contracts"], want) {
		t.Errorf("Expected %v, got %v", want, e.Context["contracts"])
	}
	wantIDs := []string{a.ID.String(), b.ID.String()}
	if !reflect.DeepEqual(e.Context["contract_ids"], wantIDs) {
		t.Errorf("Expected %v, got %v", wantIDs, e.Context["contract_ids"])
	}
}

// TestResolveDefaultsToNow proves a zero time uses the injected clock
func TestResolveDefaultsToNow(t *testing.T) {
	now := date("2025-06-01")
	stub := &stubReader{rows: []types.Contract{contract("C", "2025-01-01", "2026-01-01")}}

	if _, err := NewResolver(stub, func() time.Time { return now }).Resolve(context.Background(), partner, time.Time{}); err != nil {
		t.Fatalf("Expected contract, got %v", err)
	}
	if !stub.at.Equal(now) {
		t.Errorf("Expected reader called at %s, got %s", now, stub.at)
	}
}

// TestResolveReadErrors covers cancellation and storage failures
func TestResolveReadErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &stubReader{}
	_, err := NewResolver(stub, nil).Resolve(ctx, partner, date("2025-06-01"))
	if !errors.IsType(err, errors.TypeCancelled) {
		t.Errorf("Expected CANCELLED, got %v", err)
	}
	if stub.calls != 0 {
		t.Errorf("Expected no reads, got %d", stub.calls)
	}

	_, err = NewResolver(&stubReader{err: stderrors.New("boom")}, nil).Resolve(context.Background(), partner, date("2025-06-01"))
	if !errors.IsType(err, errors.TypeStorage) {
		t.Errorf("Expected STORAGE_ERROR, got %v", err)
	}
}
