package calculator

import (
	"time"

	"github.com/shopspring/decimal"

	"dreistrom/internal/taxrates"
)

// ScheduledPayment is one quarterly prepayment slot.
type ScheduledPayment struct {
	Quarter int             `json:"quarter"`
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
}

// estDueDates returns the §37 EStG due dates (10 March/June/September/December).
func estDueDates(year int) [4]time.Time {
	months := [4]time.Month{time.March, time.June, time.September, time.December}
	var dates [4]time.Time
	for i, m := range months {
		dates[i] = time.Date(year, m, 10, 0, 0, 0, 0, time.UTC)
	}
	return dates
}

// VorauszahlungSchedule splits an annual prepayment basis into four quarterly
// payments. The first three quarters get the rounded quarter amount; the last
// quarter absorbs the rounding residual so the schedule sums exactly to the
// basis.
func VorauszahlungSchedule(year int, annualBasis decimal.Decimal) []ScheduledPayment {
	quarterly := annualBasis.Div(decimal.NewFromInt(4)).Round(2)
	dates := estDueDates(year)

	payments := make([]ScheduledPayment, 0, 4)
	var assigned decimal.Decimal
	for q := 1; q <= 4; q++ {
		amount := quarterly
		if q == 4 {
			amount = annualBasis.Sub(assigned)
		}
		assigned = assigned.Add(amount)
		payments = append(payments, ScheduledPayment{
			Quarter: q,
			DueDate: dates[q-1],
			Amount:  amount,
		})
	}
	return payments
}

// DeviationResult compares the prepayment basis against the projected actual
// tax and recommends an adjustment request when the relative deviation
// reaches the materiality threshold.
type DeviationResult struct {
	Year                  int             `json:"year"`
	Basis                 decimal.Decimal `json:"basis"`
	ProjectedTax          decimal.Decimal `json:"projected_tax"`
	Deviation             decimal.Decimal `json:"deviation"`
	DeviationRatio        decimal.Decimal `json:"deviation_ratio"`
	Threshold             decimal.Decimal `json:"threshold"`
	AdjustmentRecommended bool            `json:"adjustment_recommended"`
	// Direction is "INCREASE" when actuals run above the basis, "DECREASE"
	// when prepayments look too high, and empty when no adjustment is due.
	Direction string `json:"direction,omitempty"`
}

// VorauszahlungDeviation evaluates whether the prepayment basis should be
// adjusted given the projected actual tax for the year.
func VorauszahlungDeviation(p taxrates.Params, basis, projectedTax decimal.Decimal) DeviationResult {
	deviation := projectedTax.Sub(basis)
	r := decimal.Zero
	if !basis.IsZero() {
		r = deviation.Div(basis).Round(4)
	} else if !projectedTax.IsZero() {
		r = decimal.NewFromInt(1)
	}

	recommended := r.Abs().GreaterThanOrEqual(p.VorauszahlungDeviationThreshold)
	direction := ""
	if recommended {
		if deviation.IsPositive() {
			direction = "INCREASE"
		} else {
			direction = "DECREASE"
		}
	}

	return DeviationResult{
		Year:                  p.Year,
		Basis:                 euros(basis),
		ProjectedTax:          euros(projectedTax),
		Deviation:             euros(deviation),
		DeviationRatio:        r,
		Threshold:             p.VorauszahlungDeviationThreshold,
		AdjustmentRecommended: recommended,
		Direction:             direction,
	}
}

// TaxReserveResult is the recommended monthly transfer to a tax reserve.
type TaxReserveResult struct {
	Year             int             `json:"year"`
	NetProfit        decimal.Decimal `json:"net_profit"`
	ProjectedProfit  decimal.Decimal `json:"projected_profit"`
	ReserveRate      decimal.Decimal `json:"reserve_rate"`
	AnnualReserve    decimal.Decimal `json:"annual_reserve"`
	AlreadyReserved  decimal.Decimal `json:"already_reserved"`
	RemainingReserve decimal.Decimal `json:"remaining_reserve"`
	MonthsRemaining  int             `json:"months_remaining"`
	MonthlyReserve   decimal.Decimal `json:"monthly_reserve"`
}

// TaxReserve projects the year-to-date net profit to a full year (day-of-year
// annualization while the year is running) and spreads the outstanding
// reserve over the remaining months. rate zero falls back to the default.
func TaxReserve(p taxrates.Params, netProfit, alreadyReserved, rate decimal.Decimal, year int, today time.Time) TaxReserveResult {
	if rate.IsZero() {
		rate = p.DefaultReserveRate
	}
	netProfit = decimal.Max(netProfit, decimal.Zero)

	projected := netProfit
	if today.Year() == year && today.Month() < time.December {
		dayOfYear := today.YearDay()
		daysInYear := 365
		if isLeapYear(year) {
			daysInYear = 366
		}
		if dayOfYear > 0 {
			projected = netProfit.
				Mul(decimal.NewFromInt(int64(daysInYear))).
				Div(decimal.NewFromInt(int64(dayOfYear))).
				Round(2)
		}
	}

	annual := projected.Mul(rate).Round(2)
	remaining := decimal.Max(annual.Sub(alreadyReserved), decimal.Zero)

	monthsRemaining := 0
	switch {
	case today.Year() < year:
		monthsRemaining = 12
	case today.Year() == year:
		monthsRemaining = 12 - int(today.Month()) + 1
	}

	monthly := decimal.Zero
	if monthsRemaining > 0 {
		monthly = remaining.Div(decimal.NewFromInt(int64(monthsRemaining))).Round(2)
	}

	return TaxReserveResult{
		Year:             year,
		NetProfit:        euros(netProfit),
		ProjectedProfit:  projected,
		ReserveRate:      rate,
		AnnualReserve:    annual,
		AlreadyReserved:  euros(alreadyReserved),
		RemainingReserve: remaining,
		MonthsRemaining:  monthsRemaining,
		MonthlyReserve:   monthly,
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
