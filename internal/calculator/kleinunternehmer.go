package calculator

import (
	"github.com/shopspring/decimal"

	"dreistrom/internal/taxrates"
)

// KleinunternehmerStatus is the §19 UStG small business assessment for one year.
type KleinunternehmerStatus struct {
	Year              int             `json:"year"`
	ObservedRevenue   decimal.Decimal `json:"observed_revenue"`
	AnnualizedRevenue decimal.Decimal `json:"annualized_revenue"`
	CurrentLimit      decimal.Decimal `json:"current_limit"`
	ProjectedLimit    decimal.Decimal `json:"projected_limit"`
	CurrentRatio      decimal.Decimal `json:"current_ratio"`
	ProjectedRatio    decimal.Decimal `json:"projected_ratio"`
	CurrentExceeded   bool            `json:"current_exceeded"`
	ProjectedExceeded bool            `json:"projected_exceeded"`
	ApproachingLimit  bool            `json:"approaching_limit"`
	Eligible          bool            `json:"eligible"`
}

// Kleinunternehmer assesses the §19 UStG status from self-employed revenue
// observed so far. For a running year the revenue is annualized straight-line
// over the elapsed months; monthsElapsed must be in [1,12] and is 12 for
// closed years.
func Kleinunternehmer(p taxrates.Params, observedRevenue decimal.Decimal, monthsElapsed int) KleinunternehmerStatus {
	if monthsElapsed < 1 {
		monthsElapsed = 1
	}
	if monthsElapsed > 12 {
		monthsElapsed = 12
	}

	annualized := observedRevenue.
		Div(decimal.NewFromInt(int64(monthsElapsed))).
		Mul(twelve).
		Round(2)

	currentRatio := ratio(observedRevenue, p.KleinunternehmerLimitCurrent)
	projectedRatio := ratio(annualized, p.KleinunternehmerLimitProjected)

	currentExceeded := currentRatio.GreaterThanOrEqual(decimal.NewFromInt(1))
	projectedExceeded := projectedRatio.GreaterThanOrEqual(decimal.NewFromInt(1))

	return KleinunternehmerStatus{
		Year:              p.Year,
		ObservedRevenue:   euros(observedRevenue),
		AnnualizedRevenue: annualized,
		CurrentLimit:      p.KleinunternehmerLimitCurrent,
		ProjectedLimit:    p.KleinunternehmerLimitProjected,
		CurrentRatio:      currentRatio,
		ProjectedRatio:    projectedRatio,
		CurrentExceeded:   currentExceeded,
		ProjectedExceeded: projectedExceeded,
		ApproachingLimit:  !currentExceeded && currentRatio.GreaterThanOrEqual(p.KleinunternehmerWarnRatio),
		Eligible:          !currentExceeded && !projectedExceeded,
	}
}
