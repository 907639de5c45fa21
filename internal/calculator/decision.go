package calculator

import (
	"github.com/shopspring/decimal"

	"dreistrom/internal/taxrates"
)

// Decision option identifiers for the Kleinunternehmer question.
const (
	OptionKleinunternehmer = "OPTION_A" // apply §19, no VAT on invoices
	OptionRegelbesteuerung = "OPTION_B" // opt out, charge VAT, deduct Vorsteuer
)

// DecisionInput aggregates the signals the Kleinunternehmer recommendation
// is based on.
type DecisionInput struct {
	B2BRevenue        decimal.Decimal `json:"b2b_revenue"`
	B2CRevenue        decimal.Decimal `json:"b2c_revenue"`
	AnnualExpenses    decimal.Decimal `json:"annual_expenses"`
	ObservedRevenue   decimal.Decimal `json:"observed_revenue"`
	AnnualizedRevenue decimal.Decimal `json:"annualized_revenue"`
}

// DecisionResult is the scored recommendation.
type DecisionResult struct {
	Recommendation    string          `json:"recommendation"`
	Score             int             `json:"score"`
	B2BRatio          decimal.Decimal `json:"b2b_ratio"`
	VorsteuerEstimate decimal.Decimal `json:"vorsteuer_estimate"`
	Reasons           []string        `json:"reasons"`
}

// EvaluateKleinunternehmer scores whether opting out of §19 UStG
// (Regelbesteuerung) is advisable. Mostly-B2B revenue and meaningful
// Vorsteuer make the opt-out attractive; exceeding the revenue limits makes
// it mandatory.
func EvaluateKleinunternehmer(p taxrates.Params, in DecisionInput) DecisionResult {
	// Over the current limit the regulation no longer applies at all.
	if in.ObservedRevenue.GreaterThanOrEqual(p.KleinunternehmerLimitCurrent) {
		return DecisionResult{
			Recommendation:    OptionRegelbesteuerung,
			Score:             0,
			B2BRatio:          ratio(in.B2BRevenue, in.B2BRevenue.Add(in.B2CRevenue)),
			VorsteuerEstimate: in.AnnualExpenses.Mul(p.RegularVATRate).Round(2),
			Reasons: []string{
				"Der Umsatz überschreitet die Grenze von 22.000 EUR; die Kleinunternehmerregelung ist nicht mehr anwendbar.",
			},
		}
	}

	score := 0
	var reasons []string

	b2bRatio := ratio(in.B2BRevenue, in.B2BRevenue.Add(in.B2CRevenue))
	switch {
	case b2bRatio.GreaterThanOrEqual(d("0.5")):
		score += 2
		reasons = append(reasons, "Überwiegend B2B-Umsätze: Geschäftskunden können die Umsatzsteuer als Vorsteuer abziehen.")
	case b2bRatio.GreaterThanOrEqual(d("0.3")):
		score++
		reasons = append(reasons, "Nennenswerter B2B-Anteil an den Umsätzen.")
	}

	vorsteuer := in.AnnualExpenses.Mul(p.RegularVATRate).Round(2)
	switch {
	case vorsteuer.GreaterThanOrEqual(d("1000")):
		score += 2
		reasons = append(reasons, "Hohes Vorsteuerpotenzial aus Betriebsausgaben.")
	case vorsteuer.GreaterThanOrEqual(d("500")):
		score++
		reasons = append(reasons, "Moderates Vorsteuerpotenzial aus Betriebsausgaben.")
	}

	if in.ObservedRevenue.GreaterThanOrEqual(p.KleinunternehmerLimitCurrent.Mul(p.KleinunternehmerWarnRatio)) {
		score++
		reasons = append(reasons, "Der Umsatz nähert sich der Kleinunternehmergrenze.")
	}

	if in.AnnualizedRevenue.GreaterThan(p.KleinunternehmerLimitProjected) {
		score += 2
		reasons = append(reasons, "Der hochgerechnete Jahresumsatz überschreitet die Prognosegrenze von 50.000 EUR.")
	}

	recommendation := OptionKleinunternehmer
	if score >= 3 {
		recommendation = OptionRegelbesteuerung
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Keine Anzeichen dafür, dass sich der Verzicht auf §19 UStG lohnt.")
	}

	return DecisionResult{
		Recommendation:    recommendation,
		Score:             score,
		B2BRatio:          b2bRatio,
		VorsteuerEstimate: vorsteuer,
		Reasons:           reasons,
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }
