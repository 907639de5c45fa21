package calculator

import (
	"github.com/shopspring/decimal"

	"dreistrom/internal/taxrates"
)

// HomeOfficeResult compares the Tagespauschale against the Arbeitszimmer
// deduction and recommends the larger one.
type HomeOfficeResult struct {
	Year                int             `json:"year"`
	DaysWorkedFromHome  int             `json:"days_worked_from_home"`
	EligibleDays        int             `json:"eligible_days"`
	PauschaleAmount     decimal.Decimal `json:"pauschale_amount"`
	ArbeitszimmerAmount decimal.Decimal `json:"arbeitszimmer_amount"`
	// Recommended is "PAUSCHALE" or "ARBEITSZIMMER".
	Recommended string `json:"recommended"`
}

// HomeOffice evaluates both deduction methods. The Arbeitszimmer method
// requires a dedicated room; it deducts the area share of the annual dwelling
// costs. Zero dwelling area disables that method.
func HomeOffice(p taxrates.Params, daysWorkedFromHome int, officeArea, dwellingArea, annualDwellingCosts decimal.Decimal) HomeOfficeResult {
	days := daysWorkedFromHome
	if days > p.HomeofficeMaxDays {
		days = p.HomeofficeMaxDays
	}
	if days < 0 {
		days = 0
	}

	pauschale := p.HomeofficeTagespauschale.Mul(decimal.NewFromInt(int64(days)))
	pauschale = decimal.Min(pauschale, p.HomeofficePauschaleCap)

	arbeitszimmer := decimal.Zero
	if dwellingArea.IsPositive() && officeArea.IsPositive() {
		arbeitszimmer = annualDwellingCosts.Mul(officeArea).Div(dwellingArea).Round(2)
	}

	recommended := "PAUSCHALE"
	if arbeitszimmer.GreaterThan(pauschale) {
		recommended = "ARBEITSZIMMER"
	}

	return HomeOfficeResult{
		Year:                p.Year,
		DaysWorkedFromHome:  daysWorkedFromHome,
		EligibleDays:        days,
		PauschaleAmount:     pauschale,
		ArbeitszimmerAmount: arbeitszimmer,
		Recommended:         recommended,
	}
}
