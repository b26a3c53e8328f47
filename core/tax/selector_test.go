// Package tax - Tax selection tests
package tax

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"remit-pricing/core/types"
	"remit-pricing/internal/errors"
)

var (
	service  = types.ServiceID{UUID: uuid.MustParse("00000000-0000-0000-0000-00000000a001")}
	corridor = types.CorridorID{UUID: uuid.MustParse("00000000-0000-0000-0000-00000000b001")}
)

type stubRepo struct {
	rules    []types.TaxRuleDetail
	taxes    map[types.TaxID]types.Tax
	rulesErr error
	taxErr   error
	lookups  int
}

func (s *stubRepo) GetEnabledTaxRules(context.Context, types.CorridorID, types.ServiceID) ([]types.TaxRuleDetail, error) {
	return s.rules, s.rulesErr
}

func (s *stubRepo) GetTax(_ context.Context, id types.TaxID) (*types.Tax, error) {
	s.lookups++
	if s.taxErr != nil {
		return nil, s.taxErr
	}
	t, ok := s.taxes[id]
	if !ok {
		return nil, errors.NotFound("tax", id.String())
	}
	return &t, nil
}

func (s *stubRepo) add(code, id string, enabled bool) types.TaxID {
	tid := types.TaxID{UUID: uuid.MustParse(id)}
	if s.taxes == nil {
		s.taxes = make(map[types.TaxID]types.Tax)
	}
	s.taxes[tid] = types.Tax{
		ID:          tid,
		Code:        code,
		Rate:        decimal.RequireFromString("0.05"),
		FixedAmount: decimal.Zero,
		AppliedOn:   types.OnFee,
		Enabled:     enabled,
	}
	return tid
}

func (s *stubRepo) rule(tid types.TaxID) {
	s.rules = append(s.rules, types.TaxRuleDetail{
		ID:         types.TaxRuleDetailID{UUID: uuid.New()},
		TaxID:      tid,
		CorridorID: corridor,
		ServiceID:  service,
		Enabled:    true,
	})
}

// TestSelectOrdersByCode proves output order is by code then id
func TestSelectOrdersByCode(t *testing.T) {
	repo := &stubRepo{}
	repo.rule(repo.add("VAT", "00000000-0000-0000-0000-000000000003", true))
	repo.rule(repo.add("LEVY", "00000000-0000-0000-0000-000000000002", true))
	repo.rule(repo.add("LEVY", "00000000-0000-0000-0000-000000000001", true))

	got, err := NewSelector(repo).Select(context.Background(), service, corridor)
	if err != nil {
		t.Fatalf("Expected taxes, got error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 taxes, got %d", len(got))
	}

	want := []string{
		"LEVY/00000000-0000-0000-0000-000000000001",
		"LEVY/00000000-0000-0000-0000-000000000002",
		"VAT/00000000-0000-0000-0000-000000000003",
	}
	for i, a := range got {
		if key := a.Tax.Code + "/" + a.Tax.ID.String(); key != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], key)
		}
	}
}

// TestSelectNoRules proves an empty rule set yields no taxes
func TestSelectNoRules(t *testing.T) {
	got, err := NewSelector(&stubRepo{}).Select(context.Background(), service, corridor)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no taxes, got %d", len(got))
	}
}

// TestSelectCollapsesDuplicates proves a tax applies once per transaction
func TestSelectCollapsesDuplicates(t *testing.T) {
	repo := &stubRepo{}
	vat := repo.add("VAT", "00000000-0000-0000-0000-000000000001", true)
	repo.rule(vat)
	repo.rule(vat)

	got, err := NewSelector(repo).Select(context.Background(), service, corridor)
	if err != nil {
		t.Fatalf("Expected taxes, got error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected 1 tax, got %d", len(got))
	}
	if got[0].Rule.ID != repo.rules[0].ID {
		t.Errorf("Expected first rule kept, got %s", got[0].Rule.ID)
	}
	if repo.lookups != 1 {
		t.Errorf("Expected 1 tax lookup, got %d", repo.lookups)
	}
}

// TestSelectSkipsForeignRules proves disabled and foreign rules are dropped
func TestSelectSkipsForeignRules(t *testing.T) {
	repo := &stubRepo{}
	repo.rule(repo.add("VAT", "00000000-0000-0000-0000-000000000001", true))
	repo.rule(repo.add("OFF", "00000000-0000-0000-0000-000000000002", true))
	repo.rules[1].Enabled = false
	repo.rule(repo.add("AWAY", "00000000-0000-0000-0000-000000000003", true))
	repo.rules[2].CorridorID = types.CorridorID{UUID: uuid.New()}

	got, err := NewSelector(repo).Select(context.Background(), service, corridor)
	if err != nil {
		t.Fatalf("Expected taxes, got error: %v", err)
	}
	if len(got) != 1 || got[0].Tax.Code != "VAT" {
		t.Errorf("Expected only VAT, got %v", got)
	}
}

// TestSelectTaxNotFound covers missing and disabled tax references
func TestSelectTaxNotFound(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		repo := &stubRepo{}
		repo.rule(types.TaxID{UUID: uuid.New()})

		_, err := NewSelector(repo).Select(context.Background(), service, corridor)
		if !errors.IsType(err, errors.TypeTaxNotFound) {
			t.Errorf("Expected TAX_NOT_FOUND, got %v", err)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		repo := &stubRepo{}
		repo.rule(repo.add("VAT", "00000000-0000-0000-0000-000000000001", false))

		_, err := NewSelector(repo).Select(context.Background(), service, corridor)
		if !errors.IsType(err, errors.TypeTaxNotFound) {
			t.Fatalf("Expected TAX_NOT_FOUND, got %v", err)
		}
		var e *errors.Error
		errors.As(err, &e)
		if e.Context["tax_code"] != "VAT" {
			t.Errorf("Expected tax_code VAT, got %v", e.Context["tax_code"])
		}
	})
}

// TestSelectReadErrors covers storage and cancellation failures
func TestSelectReadErrors(t *testing.T) {
	_, err := NewSelector(&stubRepo{rulesErr: stderrors.New("boom")}).Select(context.Background(), service, corridor)
	if !errors.IsType(err, errors.TypeStorage) {
		t.Errorf("Expected STORAGE_ERROR, got %v", err)
	}

	repo := &stubRepo{taxErr: context.Canceled}
	repo.rule(types.TaxID{UUID: uuid.New()})
	_, err = NewSelector(repo).Select(context.Background(), service, corridor)
	if !errors.IsType(err, errors.TypeCancelled) {
		t.Errorf("Expected CANCELLED, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewSelector(&stubRepo{}).Select(ctx, service, corridor)
	if !errors.IsType(err, errors.TypeCancelled) {
		t.Errorf("Expected CANCELLED, got %v", err)
	}
}
