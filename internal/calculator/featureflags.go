package calculator

import (
	"github.com/shopspring/decimal"

	"dreistrom/internal/taxrates"
)

// ComplexityBand groups users by business size so the UI can hide modules
// that are irrelevant at their scale.
type ComplexityBand string

const (
	BandMicro  ComplexityBand = "MICRO"
	BandSmall  ComplexityBand = "SMALL"
	BandMedium ComplexityBand = "MEDIUM"
)

// FlagInput aggregates everything the flag projection depends on.
type FlagInput struct {
	AnnualRevenue          decimal.Decimal
	HasEmployment          bool
	HasFreiberuf           bool
	HasGewerbe             bool
	Kleinunternehmer       bool
	KleinunternehmerNear   bool
	AbfaerbungInfected     bool
	GewerbesteuerRelevant  bool
	BilanzierungRequired   bool
	HasEUClients           bool
	HasThirdCountryClients bool
	HasInvoices            bool
	HasAssets              bool
	HasMarketplaceIncome   bool
	OnboardingComplete     bool
}

// UserFeatureFlags is the deterministic projection of a user's ledger onto
// the UI surface. The same ledger always produces the same flags.
type UserFeatureFlags struct {
	ComplexityBand ComplexityBand `json:"complexity_band"`

	ShowKleinunternehmerModule bool `json:"show_kleinunternehmer_module"`
	ShowUStVoranmeldung        bool `json:"show_ust_voranmeldung"`
	ShowGewerbesteuerModule    bool `json:"show_gewerbesteuer_module"`
	ShowBilanzierungWarning    bool `json:"show_bilanzierung_warning"`
	ShowAbfaerbungMonitor      bool `json:"show_abfaerbung_monitor"`
	ShowMultiStreamAllocation  bool `json:"show_multi_stream_allocation"`
	ShowInvoiceModule          bool `json:"show_invoice_module"`
	ShowReverseCharge          bool `json:"show_reverse_charge"`
	ShowZMHints                bool `json:"show_zm_hints"`
	ShowThirdCountryHints      bool `json:"show_third_country_hints"`
	ShowSocialInsuranceMonitor bool `json:"show_social_insurance_monitor"`
	ShowArbZGMonitor           bool `json:"show_arbzg_monitor"`
	ShowVorauszahlungPlanner   bool `json:"show_vorauszahlung_planner"`
	ShowTaxReserve             bool `json:"show_tax_reserve"`
	ShowHomeOffice             bool `json:"show_home_office"`
	ShowDepreciation           bool `json:"show_depreciation"`
	ShowPayoutImport           bool `json:"show_payout_import"`
	ShowComplianceCalendar     bool `json:"show_compliance_calendar"`
	ShowOnboarding             bool `json:"show_onboarding"`
}

// ProjectFlags derives the feature flags from the aggregated input.
func ProjectFlags(p taxrates.Params, in FlagInput) UserFeatureFlags {
	band := BandMicro
	switch {
	case in.AnnualRevenue.GreaterThanOrEqual(d("100000")):
		band = BandMedium
	case in.AnnualRevenue.GreaterThanOrEqual(d("5000")):
		band = BandSmall
	}

	selfEmployed := in.HasFreiberuf || in.HasGewerbe
	mixed := in.HasFreiberuf && in.HasGewerbe

	return UserFeatureFlags{
		ComplexityBand: band,

		ShowKleinunternehmerModule: selfEmployed && (in.Kleinunternehmer || in.KleinunternehmerNear),
		ShowUStVoranmeldung:        selfEmployed && !in.Kleinunternehmer,
		ShowGewerbesteuerModule:    in.HasGewerbe && in.GewerbesteuerRelevant,
		ShowBilanzierungWarning:    in.BilanzierungRequired,
		ShowAbfaerbungMonitor:      mixed,
		ShowMultiStreamAllocation:  mixed,
		ShowInvoiceModule:          selfEmployed,
		ShowReverseCharge:          in.HasEUClients && !in.Kleinunternehmer,
		ShowZMHints:                in.HasEUClients && !in.Kleinunternehmer,
		ShowThirdCountryHints:      in.HasThirdCountryClients,
		ShowSocialInsuranceMonitor: in.HasEmployment && selfEmployed,
		ShowArbZGMonitor:           in.HasEmployment && selfEmployed,
		ShowVorauszahlungPlanner:   selfEmployed && band != BandMicro,
		ShowTaxReserve:             selfEmployed,
		ShowHomeOffice:             selfEmployed,
		ShowDepreciation:           in.HasAssets || band == BandMedium,
		ShowPayoutImport:           in.HasMarketplaceIncome || in.HasGewerbe,
		ShowComplianceCalendar:     selfEmployed,
		ShowOnboarding:             !in.OnboardingComplete,
	}
}
