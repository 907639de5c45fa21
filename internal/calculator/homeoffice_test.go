package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestHomeOffice(t *testing.T) {
	p := p2025(t)

	t.Run("pauschale_only", func(t *testing.T) {
		res := HomeOffice(p, 100, decimal.Zero, decimal.Zero, decimal.Zero)
		if !res.PauschaleAmount.Equal(d("600")) {
			t.Errorf("expected 100 * 6 = 600, got %s", res.PauschaleAmount)
		}
		if !res.ArbeitszimmerAmount.IsZero() {
			t.Errorf("no dwelling area means no Arbeitszimmer, got %s", res.ArbeitszimmerAmount)
		}
		if res.Recommended != "PAUSCHALE" {
			t.Errorf("expected PAUSCHALE, got %s", res.Recommended)
		}
	})

	t.Run("days_capped", func(t *testing.T) {
		res := HomeOffice(p, 250, decimal.Zero, decimal.Zero, decimal.Zero)
		if res.EligibleDays != 210 {
			t.Errorf("expected eligible days capped at 210, got %d", res.EligibleDays)
		}
		if res.DaysWorkedFromHome != 250 {
			t.Errorf("reported days should stay uncapped, got %d", res.DaysWorkedFromHome)
		}
		if !res.PauschaleAmount.Equal(d("1260")) {
			t.Errorf("expected the 1260 cap, got %s", res.PauschaleAmount)
		}
	})

	t.Run("arbeitszimmer_share", func(t *testing.T) {
		// 15 of 60 sqm at 12000 annual costs: 3000 deduction beats 600.
		res := HomeOffice(p, 100, d("15"), d("60"), d("12000"))
		if !res.ArbeitszimmerAmount.Equal(d("3000")) {
			t.Errorf("expected 3000, got %s", res.ArbeitszimmerAmount)
		}
		if res.Recommended != "ARBEITSZIMMER" {
			t.Errorf("expected ARBEITSZIMMER, got %s", res.Recommended)
		}
	})

	t.Run("tie_prefers_pauschale", func(t *testing.T) {
		// 600 vs 600: the simpler method wins.
		res := HomeOffice(p, 100, d("6"), d("120"), d("12000"))
		if !res.ArbeitszimmerAmount.Equal(d("600")) {
			t.Errorf("expected 600, got %s", res.ArbeitszimmerAmount)
		}
		if res.Recommended != "PAUSCHALE" {
			t.Errorf("expected PAUSCHALE on a tie, got %s", res.Recommended)
		}
	})

	t.Run("negative_days", func(t *testing.T) {
		res := HomeOffice(p, -5, decimal.Zero, decimal.Zero, decimal.Zero)
		if res.EligibleDays != 0 || !res.PauschaleAmount.IsZero() {
			t.Errorf("expected zero deduction for negative days, got %+v", res)
		}
	})
}
