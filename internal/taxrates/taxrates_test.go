package taxrates

import (
	"testing"

	"dreistrom/internal/errors"
)

func TestForYear(t *testing.T) {
	t.Run("maintained_years", func(t *testing.T) {
		for _, year := range []int{2024, 2025} {
			p, err := ForYear(year)
			if err != nil {
				t.Fatalf("year %d: %v", year, err)
			}
			if p.Year != year {
				t.Errorf("expected year %d, got %d", year, p.Year)
			}
			if !p.Grundfreibetrag.IsPositive() {
				t.Errorf("year %d: Grundfreibetrag must be positive", year)
			}
		}
	})

	t.Run("future_year_uses_latest_table", func(t *testing.T) {
		p, err := ForYear(2030)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Year != 2025 {
			t.Errorf("expected the 2025 table, got %d", p.Year)
		}
	})

	t.Run("year_before_earliest_table", func(t *testing.T) {
		_, err := ForYear(2023)
		if err == nil {
			t.Fatal("expected an error for 2023")
		}
		appErr, ok := err.(*errors.AppError)
		if !ok {
			t.Fatalf("expected AppError, got %T", err)
		}
		if appErr.Code != "RATES_UNAVAILABLE" {
			t.Errorf("expected RATES_UNAVAILABLE, got %s", appErr.Code)
		}
	})
}

func TestParamsDiffer(t *testing.T) {
	p2024, _ := ForYear(2024)
	p2025, _ := ForYear(2025)

	if p2024.Grundfreibetrag.Equal(p2025.Grundfreibetrag) {
		t.Error("the Grundfreibetrag is adjusted every year")
	}
	if !p2024.KleinunternehmerLimitCurrent.Equal(p2025.KleinunternehmerLimitCurrent) {
		t.Error("the §19 limit is shared across the maintained years")
	}
}
