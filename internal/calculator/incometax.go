package calculator

import (
	"github.com/shopspring/decimal"

	"dreistrom/internal/taxrates"
)

var tenThousand = decimal.NewFromInt(10000)

// IncomeTax applies the §32a EStG progressive schedule to the taxable income.
// The statute defines the result in whole euros, so the amount is floored.
func IncomeTax(p taxrates.Params, taxable decimal.Decimal) decimal.Decimal {
	if taxable.LessThanOrEqual(p.Grundfreibetrag) {
		return decimal.Zero
	}

	var tax decimal.Decimal
	switch {
	case taxable.LessThanOrEqual(p.Zone2End):
		y := taxable.Sub(p.Grundfreibetrag).Div(tenThousand)
		tax = p.Zone2Quadratic.Mul(y).Add(p.Zone2Linear).Mul(y)
	case taxable.LessThanOrEqual(p.Zone3End):
		z := taxable.Sub(p.Zone2End).Div(tenThousand)
		tax = p.Zone3Quadratic.Mul(z).Add(p.Zone3Linear).Mul(z).Add(p.Zone3Constant)
	case taxable.LessThanOrEqual(p.Zone4End):
		tax = p.Zone4Rate.Mul(taxable).Sub(p.Zone4Subtract)
	default:
		tax = p.Zone5Rate.Mul(taxable).Sub(p.Zone5Subtract)
	}

	return tax.Floor()
}

// MarginalRate returns the marginal tax rate at the given taxable income,
// derived from the zone the income falls into.
func MarginalRate(p taxrates.Params, taxable decimal.Decimal) decimal.Decimal {
	two := decimal.NewFromInt(2)
	switch {
	case taxable.LessThanOrEqual(p.Grundfreibetrag):
		return decimal.Zero
	case taxable.LessThanOrEqual(p.Zone2End):
		y := taxable.Sub(p.Grundfreibetrag).Div(tenThousand)
		return two.Mul(p.Zone2Quadratic).Mul(y).Add(p.Zone2Linear).Div(tenThousand).Round(4)
	case taxable.LessThanOrEqual(p.Zone3End):
		z := taxable.Sub(p.Zone2End).Div(tenThousand)
		return two.Mul(p.Zone3Quadratic).Mul(z).Add(p.Zone3Linear).Div(tenThousand).Round(4)
	case taxable.LessThanOrEqual(p.Zone4End):
		return p.Zone4Rate
	default:
		return p.Zone5Rate
	}
}

// Soli computes the Solidaritätszuschlag on an income tax amount. Below the
// exemption no surcharge applies; inside the Milderungszone the surcharge is
// capped at the zone's marginal rate on the amount above the exemption.
func Soli(p taxrates.Params, incomeTax decimal.Decimal) decimal.Decimal {
	if incomeTax.LessThanOrEqual(p.SoliExemption) {
		return decimal.Zero
	}
	full := incomeTax.Mul(p.SoliRate)
	capped := incomeTax.Sub(p.SoliExemption).Mul(p.SoliMilderungszoneRate)
	return decimal.Min(full, capped).Round(2)
}

// AssessmentResult is the full projected tax picture for one year.
type AssessmentResult struct {
	Year             int             `json:"year"`
	EmploymentIncome decimal.Decimal `json:"employment_income"`
	EmploymentNet    decimal.Decimal `json:"employment_net"`
	FreiberufProfit  decimal.Decimal `json:"freiberuf_profit"`
	GewerbeProfit    decimal.Decimal `json:"gewerbe_profit"`
	TaxableIncome    decimal.Decimal `json:"taxable_income"`
	IncomeTax        decimal.Decimal `json:"income_tax"`
	Soli             decimal.Decimal `json:"soli"`
	TotalTax         decimal.Decimal `json:"total_tax"`
	EffectiveRate    decimal.Decimal `json:"effective_rate"`
	MarginalRate     decimal.Decimal `json:"marginal_rate"`
}

// Assess combines the three income streams into the taxable income and runs
// the progressive schedule plus Soli. Employment income is reduced by the
// Werbungskostenpauschale (never below zero); the combined income is reduced
// by the Sonderausgabenpauschale. Stream losses offset other streams, but the
// taxable income never drops below zero.
func Assess(p taxrates.Params, employmentIncome, freiberufIncome, gewerbeIncome, freiberufExpenses, gewerbeExpenses decimal.Decimal) AssessmentResult {
	employmentNet := decimal.Max(employmentIncome.Sub(p.Werbungskostenpauschale), decimal.Zero)
	freiberufProfit := freiberufIncome.Sub(freiberufExpenses)
	gewerbeProfit := gewerbeIncome.Sub(gewerbeExpenses)

	taxable := employmentNet.
		Add(freiberufProfit).
		Add(gewerbeProfit).
		Sub(p.Sonderausgabenpauschale)
	taxable = decimal.Max(taxable, decimal.Zero).Floor()

	incomeTax := IncomeTax(p, taxable)
	soli := Soli(p, incomeTax)
	total := incomeTax.Add(soli)

	grossIncome := employmentIncome.Add(freiberufIncome).Add(gewerbeIncome)
	effective := ratio(total, grossIncome)

	return AssessmentResult{
		Year:             p.Year,
		EmploymentIncome: euros(employmentIncome),
		EmploymentNet:    euros(employmentNet),
		FreiberufProfit:  euros(freiberufProfit),
		GewerbeProfit:    euros(gewerbeProfit),
		TaxableIncome:    taxable,
		IncomeTax:        incomeTax,
		Soli:             soli,
		TotalTax:         total,
		EffectiveRate:    effective,
		MarginalRate:     MarginalRate(p, taxable),
	}
}
