package calculator

import (
	"time"

	"github.com/shopspring/decimal"

	"dreistrom/internal/taxrates"
)

// DepreciationLine is one year of a linear AfA schedule.
type DepreciationLine struct {
	Year      int             `json:"year"`
	Months    int             `json:"months"`
	Amount    decimal.Decimal `json:"amount"`
	Remaining decimal.Decimal `json:"remaining"`
}

// IsGWG reports whether an asset may be expensed immediately as a
// geringwertiges Wirtschaftsgut.
func IsGWG(p taxrates.Params, netCost decimal.Decimal) bool {
	return netCost.LessThanOrEqual(p.GWGLimit)
}

// DepreciationSchedule builds the linear schedule with monthly pro-rata in
// the acquisition year (Monatsprinzip, §7 Abs. 1 S. 4 EStG). Yearly amounts
// are rounded to cents; the final year absorbs the residual so the schedule
// sums exactly to the net cost and the remaining book value ends at zero.
func DepreciationSchedule(netCost decimal.Decimal, acquisition time.Time, usefulLifeMonths int) []DepreciationLine {
	if usefulLifeMonths <= 0 || !netCost.IsPositive() {
		return nil
	}

	monthly := netCost.Div(decimal.NewFromInt(int64(usefulLifeMonths)))

	var lines []DepreciationLine
	remaining := netCost
	monthsLeft := usefulLifeMonths
	year := acquisition.Year()
	// Months of depreciation claimed in the first calendar year.
	monthsThisYear := 12 - int(acquisition.Month()) + 1

	for monthsLeft > 0 {
		if monthsThisYear > monthsLeft {
			monthsThisYear = monthsLeft
		}

		amount := monthly.Mul(decimal.NewFromInt(int64(monthsThisYear))).Round(2)
		if monthsLeft == monthsThisYear {
			amount = remaining
		}

		remaining = remaining.Sub(amount)
		lines = append(lines, DepreciationLine{
			Year:      year,
			Months:    monthsThisYear,
			Amount:    amount,
			Remaining: remaining,
		})

		monthsLeft -= monthsThisYear
		monthsThisYear = 12
		year++
	}

	return lines
}

// DepreciationForYear returns the AfA amount attributable to a single year.
func DepreciationForYear(netCost decimal.Decimal, acquisition time.Time, usefulLifeMonths, year int) decimal.Decimal {
	for _, line := range DepreciationSchedule(netCost, acquisition, usefulLifeMonths) {
		if line.Year == year {
			return line.Amount
		}
	}
	return decimal.Zero
}
