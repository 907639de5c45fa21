package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAbfaerbung(t *testing.T) {
	p := p2025(t)

	t.Run("at_threshold_not_infected", func(t *testing.T) {
		// Exactly 3% commercial share stays geringfügig.
		st := Abfaerbung(p, d("97000"), d("3000"))
		if !st.GewerbeRatio.Equal(d("0.03")) {
			t.Errorf("expected ratio 0.03, got %s", st.GewerbeRatio)
		}
		if st.Infected {
			t.Error("expected not infected at exactly the threshold")
		}
	})

	t.Run("above_threshold_infected", func(t *testing.T) {
		st := Abfaerbung(p, d("96000"), d("4000"))
		if !st.Infected {
			t.Error("expected infected above the threshold")
		}
	})

	t.Run("no_revenue", func(t *testing.T) {
		st := Abfaerbung(p, decimal.Zero, decimal.Zero)
		if st.Infected {
			t.Error("expected not infected with no revenue")
		}
		if !st.GewerbeRatio.IsZero() {
			t.Errorf("expected zero ratio, got %s", st.GewerbeRatio)
		}
	})

	t.Run("pure_gewerbe", func(t *testing.T) {
		st := Abfaerbung(p, decimal.Zero, d("5000"))
		if !st.Infected {
			t.Error("a fully commercial mix is above the threshold")
		}
	})
}

func TestGewerbesteuerThreshold(t *testing.T) {
	p := p2025(t)

	t.Run("projection_exceeds", func(t *testing.T) {
		st := GewerbesteuerThreshold(p, d("15000"), 6)
		if !st.ProjectedProfit.Equal(d("30000")) {
			t.Errorf("expected projected 30000, got %s", st.ProjectedProfit)
		}
		if st.Exceeded {
			t.Error("observed profit is still below the Freibetrag")
		}
		if !st.ProjectedToExceed {
			t.Error("expected the projection to exceed the Freibetrag")
		}
		if !st.Headroom.Equal(d("9500")) {
			t.Errorf("expected headroom 9500, got %s", st.Headroom)
		}
	})

	t.Run("observed_exceeds", func(t *testing.T) {
		st := GewerbesteuerThreshold(p, d("25000"), 12)
		if !st.Exceeded {
			t.Error("expected exceeded above 24500")
		}
		if st.Headroom.IsPositive() {
			t.Errorf("expected non-positive headroom, got %s", st.Headroom)
		}
	})
}

func TestMandatoryFiling(t *testing.T) {
	p := p2025(t)

	if st := MandatoryFiling(p, d("410")); st.FilingRequired {
		t.Error("side income of exactly 410 should not require filing")
	}
	if st := MandatoryFiling(p, d("410.01")); !st.FilingRequired {
		t.Error("side income above 410 should require filing")
	}
}

func TestBilanzierung(t *testing.T) {
	p := p2025(t)

	t.Run("under_both_limits", func(t *testing.T) {
		st := Bilanzierung(p, d("500000"), d("60000"))
		if st.Bilanzierungspflicht {
			t.Error("expected no obligation under both limits")
		}
	})

	t.Run("revenue_limit_alone", func(t *testing.T) {
		st := Bilanzierung(p, d("800001"), d("10000"))
		if !st.RevenueOver || st.ProfitOver {
			t.Errorf("expected only revenue over, got %+v", st)
		}
		if !st.Bilanzierungspflicht {
			t.Error("expected obligation on revenue alone")
		}
	})

	t.Run("profit_limit_alone", func(t *testing.T) {
		st := Bilanzierung(p, d("100000"), d("80001"))
		if st.RevenueOver || !st.ProfitOver {
			t.Errorf("expected only profit over, got %+v", st)
		}
		if !st.Bilanzierungspflicht {
			t.Error("expected obligation on profit alone")
		}
	})
}

func TestArbZG(t *testing.T) {
	p := p2025(t)

	t.Run("at_limit_compliant", func(t *testing.T) {
		st := ArbZG(p, d("40"), d("8"))
		if !st.Compliant {
			t.Error("expected compliant at exactly 48 hours")
		}
		if !st.ProgressValue.Equal(d("1")) {
			t.Errorf("expected progress 1, got %s", st.ProgressValue)
		}
	})

	t.Run("over_limit", func(t *testing.T) {
		st := ArbZG(p, d("40"), d("20"))
		if st.Compliant {
			t.Error("expected non-compliant above 48 hours")
		}
		if !st.ProgressValue.GreaterThan(d("1")) {
			t.Errorf("progress should stay unclamped above the limit, got %s", st.ProgressValue)
		}
	})

	t.Run("components_reported_separately", func(t *testing.T) {
		st := ArbZG(p, d("38.5"), d("12"))
		if !st.AvgEmploymentHours.Equal(d("38.5")) || !st.AvgSelfEmployedHours.Equal(d("12")) {
			t.Errorf("expected the components preserved, got %+v", st)
		}
		if !st.AvgWeeklyHours.Equal(d("50.5")) {
			t.Errorf("expected combined 50.5 hours, got %s", st.AvgWeeklyHours)
		}
	})
}
