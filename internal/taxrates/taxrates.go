// Package taxrates holds the statutory parameters the compliance engine
// depends on, versioned by assessment year. Calculators never hard-code
// monetary limits; they receive a Params value so that historic years stay
// reproducible when the legislature moves a threshold.
package taxrates

import (
	"github.com/shopspring/decimal"

	apperrors "dreistrom/internal/errors"
)

// Params bundles every statutory number for one assessment year.
type Params struct {
	Year int

	// §32a EStG progressive income tax schedule.
	Grundfreibetrag decimal.Decimal
	Zone2End        decimal.Decimal
	Zone2Quadratic  decimal.Decimal
	Zone2Linear     decimal.Decimal
	Zone3End        decimal.Decimal
	Zone3Quadratic  decimal.Decimal
	Zone3Linear     decimal.Decimal
	Zone3Constant   decimal.Decimal
	Zone4End        decimal.Decimal
	Zone4Rate       decimal.Decimal
	Zone4Subtract   decimal.Decimal
	Zone5Rate       decimal.Decimal
	Zone5Subtract   decimal.Decimal

	// Solidaritätszuschlag.
	SoliRate               decimal.Decimal
	SoliExemption          decimal.Decimal
	SoliMilderungszoneRate decimal.Decimal

	// Pauschbeträge.
	Werbungskostenpauschale decimal.Decimal
	Sonderausgabenpauschale decimal.Decimal

	// §19 UStG Kleinunternehmerregelung.
	KleinunternehmerLimitCurrent   decimal.Decimal
	KleinunternehmerLimitProjected decimal.Decimal
	KleinunternehmerWarnRatio      decimal.Decimal

	// §15 Abs. 3 Nr. 1 EStG Abfärbung (geringfügigkeitsgrenze, as a ratio).
	AbfaerbungRatio decimal.Decimal

	// Gewerbesteuer.
	GewerbesteuerFreibetrag decimal.Decimal
	Steuermesszahl          decimal.Decimal
	DefaultHebesatz         decimal.Decimal
	Par35AnrechnungsFaktor  decimal.Decimal

	// §141 AO Bilanzierungspflicht.
	BilanzierungRevenueLimit decimal.Decimal
	BilanzierungProfitLimit  decimal.Decimal

	// §46 Abs. 2 Nr. 1 EStG mandatory filing.
	MandatoryFilingThreshold decimal.Decimal

	// Social insurance primacy of self-employment.
	SelbststaendigkeitHoursLimit decimal.Decimal
	GrenzbereichRatio            decimal.Decimal

	// §3 ArbZG working time.
	ArbZGMaxWeeklyHours decimal.Decimal

	// Home office.
	HomeofficeTagespauschale decimal.Decimal
	HomeofficePauschaleCap   decimal.Decimal
	HomeofficeMaxDays        int

	// Geringwertige Wirtschaftsgüter (net acquisition cost).
	GWGLimit decimal.Decimal

	// Umsatzsteuer.
	RegularVATRate decimal.Decimal

	// Vorauszahlungen: relative deviation that warrants an adjustment request.
	VorauszahlungDeviationThreshold decimal.Decimal

	// Recommended tax reserve rate on net profit.
	DefaultReserveRate decimal.Decimal
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func shared(p Params) Params {
	p.SoliRate = d("0.055")
	p.SoliMilderungszoneRate = d("0.119")
	p.Werbungskostenpauschale = d("1230")
	p.Sonderausgabenpauschale = d("36")
	p.KleinunternehmerLimitCurrent = d("22000")
	p.KleinunternehmerLimitProjected = d("50000")
	p.KleinunternehmerWarnRatio = d("0.8")
	p.AbfaerbungRatio = d("0.03")
	p.GewerbesteuerFreibetrag = d("24500")
	p.Steuermesszahl = d("0.035")
	p.DefaultHebesatz = d("410")
	p.Par35AnrechnungsFaktor = d("4.0")
	p.BilanzierungRevenueLimit = d("800000")
	p.BilanzierungProfitLimit = d("80000")
	p.MandatoryFilingThreshold = d("410")
	p.SelbststaendigkeitHoursLimit = d("20")
	p.GrenzbereichRatio = d("0.9")
	p.ArbZGMaxWeeklyHours = d("48")
	p.HomeofficeTagespauschale = d("6")
	p.HomeofficePauschaleCap = d("1260")
	p.HomeofficeMaxDays = 210
	p.GWGLimit = d("800")
	p.RegularVATRate = d("0.19")
	p.VorauszahlungDeviationThreshold = d("0.10")
	p.DefaultReserveRate = d("0.30")
	return p
}

var params2024 = shared(Params{
	Year:            2024,
	Grundfreibetrag: d("11604"),
	Zone2End:        d("17005"),
	Zone2Quadratic:  d("922.98"),
	Zone2Linear:     d("1400"),
	Zone3End:        d("66760"),
	Zone3Quadratic:  d("181.19"),
	Zone3Linear:     d("2397"),
	Zone3Constant:   d("1025.38"),
	Zone4End:        d("277825"),
	Zone4Rate:       d("0.42"),
	Zone4Subtract:   d("10602.13"),
	Zone5Rate:       d("0.45"),
	Zone5Subtract:   d("18936.88"),
	SoliExemption:   d("18130"),
})

var params2025 = shared(Params{
	Year:            2025,
	Grundfreibetrag: d("12096"),
	Zone2End:        d("17443"),
	Zone2Quadratic:  d("932.30"),
	Zone2Linear:     d("1400"),
	Zone3End:        d("68480"),
	Zone3Quadratic:  d("176.64"),
	Zone3Linear:     d("2397"),
	Zone3Constant:   d("1015.13"),
	Zone4End:        d("277825"),
	Zone4Rate:       d("0.42"),
	Zone4Subtract:   d("10911.92"),
	Zone5Rate:       d("0.45"),
	Zone5Subtract:   d("19246.67"),
	SoliExemption:   d("19950"),
})

const (
	earliestYear = 2024
	latestYear   = 2025
)

var byYear = map[int]Params{
	2024: params2024,
	2025: params2025,
}

// ForYear returns the statutory parameters for the given assessment year.
// Years after the latest maintained table use the latest table, since future
// values are not yet legislated. Years before the earliest table return
// ErrRatesUnavailable; callers are expected to degrade gracefully.
func ForYear(year int) (Params, error) {
	if year < earliestYear {
		return Params{}, apperrors.WithMessage(apperrors.ErrRatesUnavailable,
			"No statutory parameters maintained for years before 2024")
	}
	if year > latestYear {
		return byYear[latestYear], nil
	}
	return byYear[year], nil
}

// Latest returns the most recent maintained parameter table.
func Latest() Params { return byYear[latestYear] }
