package calculator

import (
	"github.com/shopspring/decimal"

	"dreistrom/internal/taxrates"
)

// GewerbesteuerResult is the full trade tax computation including the §35
// EStG credit against income tax.
type GewerbesteuerResult struct {
	Year                int             `json:"year"`
	GewerbeProfit       decimal.Decimal `json:"gewerbe_profit"`
	Freibetrag          decimal.Decimal `json:"freibetrag"`
	Bemessungsgrundlage decimal.Decimal `json:"bemessungsgrundlage"`
	Messbetrag          decimal.Decimal `json:"messbetrag"`
	Hebesatz            decimal.Decimal `json:"hebesatz"`
	Gewerbesteuer       decimal.Decimal `json:"gewerbesteuer"`
	Par35Credit         decimal.Decimal `json:"par35_credit"`
	NetBurden           decimal.Decimal `json:"net_burden"`
}

// Gewerbesteuer computes trade tax for a commercial profit. The assessment
// base is the profit above the Freibetrag rounded down to full hundred euros
// (§11 Abs. 1 GewStG). A zero hebesatz falls back to the statutory default.
// incomeTax caps the §35 credit, since the credit cannot exceed the income
// tax attributable to the commercial income.
func Gewerbesteuer(p taxrates.Params, gewerbeProfit, hebesatz, incomeTax decimal.Decimal) GewerbesteuerResult {
	if hebesatz.IsZero() {
		hebesatz = p.DefaultHebesatz
	}

	base := decimal.Max(gewerbeProfit.Sub(p.GewerbesteuerFreibetrag), decimal.Zero)
	base = base.Div(hundred).Floor().Mul(hundred)

	messbetrag := base.Mul(p.Steuermesszahl).Round(2)
	gewst := messbetrag.Mul(hebesatz).Div(hundred).Round(2)

	credit := decimal.Min(p.Par35AnrechnungsFaktor.Mul(messbetrag), incomeTax).Round(2)
	net := decimal.Max(gewst.Sub(credit), decimal.Zero)

	return GewerbesteuerResult{
		Year:                p.Year,
		GewerbeProfit:       euros(gewerbeProfit),
		Freibetrag:          p.GewerbesteuerFreibetrag,
		Bemessungsgrundlage: base,
		Messbetrag:          messbetrag,
		Hebesatz:            hebesatz,
		Gewerbesteuer:       gewst,
		Par35Credit:         credit,
		NetBurden:           net,
	}
}
