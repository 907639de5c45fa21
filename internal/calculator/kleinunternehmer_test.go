package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestKleinunternehmer(t *testing.T) {
	p := p2025(t)

	t.Run("well_below_limits", func(t *testing.T) {
		st := Kleinunternehmer(p, d("10000"), 12)
		if !st.Eligible {
			t.Error("expected eligible")
		}
		if st.CurrentExceeded || st.ProjectedExceeded || st.ApproachingLimit {
			t.Errorf("expected no warnings, got %+v", st)
		}
		if !st.AnnualizedRevenue.Equal(d("10000")) {
			t.Errorf("closed year should not annualize, got %s", st.AnnualizedRevenue)
		}
	})

	t.Run("approaching_current_limit", func(t *testing.T) {
		// 18000 / 22000 = 0.8182, above the 0.8 warn ratio.
		st := Kleinunternehmer(p, d("18000"), 12)
		if !st.ApproachingLimit {
			t.Error("expected approaching-limit warning")
		}
		if !st.Eligible {
			t.Error("a warning alone should not revoke eligibility")
		}
	})

	t.Run("current_limit_reached", func(t *testing.T) {
		st := Kleinunternehmer(p, d("22000"), 12)
		if !st.CurrentExceeded {
			t.Error("expected current limit exceeded at exactly 22000")
		}
		if st.Eligible {
			t.Error("expected not eligible")
		}
		if st.ApproachingLimit {
			t.Error("exceeded suppresses the approaching warning")
		}
	})

	t.Run("annualization_trips_projected_limit", func(t *testing.T) {
		// 10000 over two months projects to 60000, above the 50000 limit.
		st := Kleinunternehmer(p, d("10000"), 2)
		if !st.AnnualizedRevenue.Equal(d("60000")) {
			t.Errorf("expected annualized 60000, got %s", st.AnnualizedRevenue)
		}
		if st.CurrentExceeded {
			t.Error("observed revenue is below the current limit")
		}
		if !st.ProjectedExceeded {
			t.Error("expected projected limit exceeded")
		}
		if st.Eligible {
			t.Error("expected not eligible on projection alone")
		}
	})

	t.Run("months_elapsed_clamped", func(t *testing.T) {
		st := Kleinunternehmer(p, d("1200"), 0)
		if !st.AnnualizedRevenue.Equal(d("14400")) {
			t.Errorf("months 0 should clamp to 1, got annualized %s", st.AnnualizedRevenue)
		}
		st = Kleinunternehmer(p, d("1200"), 15)
		if !st.AnnualizedRevenue.Equal(d("1200")) {
			t.Errorf("months above 12 should clamp to 12, got annualized %s", st.AnnualizedRevenue)
		}
	})

	t.Run("zero_revenue", func(t *testing.T) {
		st := Kleinunternehmer(p, decimal.Zero, 6)
		if !st.Eligible {
			t.Error("expected eligible with no revenue")
		}
		if !st.CurrentRatio.IsZero() || !st.ProjectedRatio.IsZero() {
			t.Errorf("expected zero ratios, got %s / %s", st.CurrentRatio, st.ProjectedRatio)
		}
	})
}
