package calculator

import (
	"testing"
)

func TestProjectFlags(t *testing.T) {
	p := p2025(t)

	t.Run("complexity_bands", func(t *testing.T) {
		if f := ProjectFlags(p, FlagInput{AnnualRevenue: d("4999")}); f.ComplexityBand != BandMicro {
			t.Errorf("expected MICRO, got %s", f.ComplexityBand)
		}
		if f := ProjectFlags(p, FlagInput{AnnualRevenue: d("5000")}); f.ComplexityBand != BandSmall {
			t.Errorf("expected SMALL, got %s", f.ComplexityBand)
		}
		if f := ProjectFlags(p, FlagInput{AnnualRevenue: d("100000")}); f.ComplexityBand != BandMedium {
			t.Errorf("expected MEDIUM, got %s", f.ComplexityBand)
		}
	})

	t.Run("mixed_streams_enable_abfaerbung_tools", func(t *testing.T) {
		f := ProjectFlags(p, FlagInput{HasFreiberuf: true, HasGewerbe: true})
		if !f.ShowAbfaerbungMonitor || !f.ShowMultiStreamAllocation {
			t.Errorf("expected mixed-stream tools, got %+v", f)
		}

		f = ProjectFlags(p, FlagInput{HasFreiberuf: true})
		if f.ShowAbfaerbungMonitor || f.ShowMultiStreamAllocation {
			t.Errorf("a single stream cannot abfärben, got %+v", f)
		}
	})

	t.Run("kleinunternehmer_hides_vat_surfaces", func(t *testing.T) {
		f := ProjectFlags(p, FlagInput{
			HasFreiberuf:     true,
			Kleinunternehmer: true,
			HasEUClients:     true,
		})
		if f.ShowUStVoranmeldung {
			t.Error("a Kleinunternehmer files no UStVA")
		}
		if f.ShowReverseCharge || f.ShowZMHints {
			t.Error("a Kleinunternehmer issues no reverse charge invoices")
		}
		if !f.ShowKleinunternehmerModule {
			t.Error("expected the §19 module for a Kleinunternehmer")
		}
	})

	t.Run("regular_taxation_with_eu_clients", func(t *testing.T) {
		f := ProjectFlags(p, FlagInput{HasFreiberuf: true, HasEUClients: true})
		if !f.ShowUStVoranmeldung || !f.ShowReverseCharge || !f.ShowZMHints {
			t.Errorf("expected VAT surfaces for regular taxation, got %+v", f)
		}
	})

	t.Run("employment_plus_self_employment", func(t *testing.T) {
		f := ProjectFlags(p, FlagInput{HasEmployment: true, HasGewerbe: true})
		if !f.ShowSocialInsuranceMonitor || !f.ShowArbZGMonitor {
			t.Errorf("expected the employment monitors, got %+v", f)
		}

		f = ProjectFlags(p, FlagInput{HasGewerbe: true})
		if f.ShowSocialInsuranceMonitor || f.ShowArbZGMonitor {
			t.Errorf("monitors need an employment stream, got %+v", f)
		}
	})

	t.Run("vorauszahlung_planner_needs_scale", func(t *testing.T) {
		f := ProjectFlags(p, FlagInput{HasFreiberuf: true, AnnualRevenue: d("2000")})
		if f.ShowVorauszahlungPlanner {
			t.Error("MICRO band hides the planner")
		}

		f = ProjectFlags(p, FlagInput{HasFreiberuf: true, AnnualRevenue: d("20000")})
		if !f.ShowVorauszahlungPlanner {
			t.Error("expected the planner above the MICRO band")
		}
	})

	t.Run("onboarding_flag", func(t *testing.T) {
		if f := ProjectFlags(p, FlagInput{}); !f.ShowOnboarding {
			t.Error("expected onboarding until completed")
		}
		if f := ProjectFlags(p, FlagInput{OnboardingComplete: true}); f.ShowOnboarding {
			t.Error("expected onboarding hidden once complete")
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		in := FlagInput{
			AnnualRevenue: d("42000"),
			HasEmployment: true,
			HasFreiberuf:  true,
			HasGewerbe:    true,
			HasEUClients:  true,
		}
		if ProjectFlags(p, in) != ProjectFlags(p, in) {
			t.Error("the same input must project the same flags")
		}
	})
}
