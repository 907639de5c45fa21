package calculator

import (
	"github.com/shopspring/decimal"

	"dreistrom/internal/taxrates"
)

// AbfaerbungStatus is the §15 Abs. 3 Nr. 1 EStG infection assessment.
// When commercial revenue exceeds the geringfügigkeit ratio of total
// self-employed revenue, the freelance stream is at risk of being
// reclassified as commercial in its entirety.
type AbfaerbungStatus struct {
	Year             int             `json:"year"`
	FreiberufRevenue decimal.Decimal `json:"freiberuf_revenue"`
	GewerbeRevenue   decimal.Decimal `json:"gewerbe_revenue"`
	GewerbeRatio     decimal.Decimal `json:"gewerbe_ratio"`
	Threshold        decimal.Decimal `json:"threshold"`
	Infected         bool            `json:"infected"`
}

// Abfaerbung computes the infection status from revenue by stream.
func Abfaerbung(p taxrates.Params, freiberufRevenue, gewerbeRevenue decimal.Decimal) AbfaerbungStatus {
	total := freiberufRevenue.Add(gewerbeRevenue)
	r := ratio(gewerbeRevenue, total)

	return AbfaerbungStatus{
		Year:             p.Year,
		FreiberufRevenue: euros(freiberufRevenue),
		GewerbeRevenue:   euros(gewerbeRevenue),
		GewerbeRatio:     r,
		Threshold:        p.AbfaerbungRatio,
		Infected:         r.GreaterThan(p.AbfaerbungRatio),
	}
}

// GewerbesteuerThresholdStatus reports how close the commercial profit is to
// the §11 GewStG Freibetrag.
type GewerbesteuerThresholdStatus struct {
	Year              int             `json:"year"`
	GewerbeProfit     decimal.Decimal `json:"gewerbe_profit"`
	ProjectedProfit   decimal.Decimal `json:"projected_profit"`
	Freibetrag        decimal.Decimal `json:"freibetrag"`
	Headroom          decimal.Decimal `json:"headroom"`
	Exceeded          bool            `json:"exceeded"`
	ProjectedToExceed bool            `json:"projected_to_exceed"`
}

// GewerbesteuerThreshold assesses the commercial profit against the
// Freibetrag. monthsElapsed drives the straight-line annualization for
// running years.
func GewerbesteuerThreshold(p taxrates.Params, gewerbeProfit decimal.Decimal, monthsElapsed int) GewerbesteuerThresholdStatus {
	if monthsElapsed < 1 {
		monthsElapsed = 1
	}
	if monthsElapsed > 12 {
		monthsElapsed = 12
	}

	projected := gewerbeProfit.
		Div(decimal.NewFromInt(int64(monthsElapsed))).
		Mul(twelve).
		Round(2)

	return GewerbesteuerThresholdStatus{
		Year:              p.Year,
		GewerbeProfit:     euros(gewerbeProfit),
		ProjectedProfit:   projected,
		Freibetrag:        p.GewerbesteuerFreibetrag,
		Headroom:          p.GewerbesteuerFreibetrag.Sub(gewerbeProfit).Round(2),
		Exceeded:          gewerbeProfit.GreaterThan(p.GewerbesteuerFreibetrag),
		ProjectedToExceed: projected.GreaterThan(p.GewerbesteuerFreibetrag),
	}
}

// MandatoryFilingStatus is the §46 Abs. 2 Nr. 1 EStG assessment for employees
// with side income.
type MandatoryFilingStatus struct {
	Year           int             `json:"year"`
	SideIncome     decimal.Decimal `json:"side_income"`
	Threshold      decimal.Decimal `json:"threshold"`
	FilingRequired bool            `json:"filing_required"`
}

// MandatoryFiling reports whether non-wage income triggers a filing obligation.
func MandatoryFiling(p taxrates.Params, sideIncome decimal.Decimal) MandatoryFilingStatus {
	return MandatoryFilingStatus{
		Year:           p.Year,
		SideIncome:     euros(sideIncome),
		Threshold:      p.MandatoryFilingThreshold,
		FilingRequired: sideIncome.GreaterThan(p.MandatoryFilingThreshold),
	}
}

// BilanzierungStatus is the §141 AO bookkeeping obligation assessment.
type BilanzierungStatus struct {
	Year                 int             `json:"year"`
	Revenue              decimal.Decimal `json:"revenue"`
	Profit               decimal.Decimal `json:"profit"`
	RevenueLimit         decimal.Decimal `json:"revenue_limit"`
	ProfitLimit          decimal.Decimal `json:"profit_limit"`
	RevenueOver          bool            `json:"revenue_over"`
	ProfitOver           bool            `json:"profit_over"`
	Bilanzierungspflicht bool            `json:"bilanzierungspflicht"`
}

// Bilanzierung checks commercial revenue and profit against the §141 AO
// limits. Either limit alone triggers the obligation to move from EÜR to
// double-entry bookkeeping.
func Bilanzierung(p taxrates.Params, revenue, profit decimal.Decimal) BilanzierungStatus {
	revOver := revenue.GreaterThan(p.BilanzierungRevenueLimit)
	profitOver := profit.GreaterThan(p.BilanzierungProfitLimit)

	return BilanzierungStatus{
		Year:                 p.Year,
		Revenue:              euros(revenue),
		Profit:               euros(profit),
		RevenueLimit:         p.BilanzierungRevenueLimit,
		ProfitLimit:          p.BilanzierungProfitLimit,
		RevenueOver:          revOver,
		ProfitOver:           profitOver,
		Bilanzierungspflicht: revOver || profitOver,
	}
}
