package calculator

import (
	"github.com/shopspring/decimal"

	"dreistrom/internal/taxrates"
)

// RiskLevel grades the hauptberuflich-selbstständig exposure.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "SAFE"
	RiskWarning  RiskLevel = "WARNING"
	RiskCritical RiskLevel = "CRITICAL"
)

// SocialInsuranceStatus is the assessment of whether self-employment has
// become the main occupation, which would end employer-funded health
// insurance coverage.
type SocialInsuranceStatus struct {
	Year                 int             `json:"year"`
	AvgSelfEmployedHours decimal.Decimal `json:"avg_self_employed_hours"`
	HoursLimit           decimal.Decimal `json:"hours_limit"`
	EmploymentIncome     decimal.Decimal `json:"employment_income"`
	SelfEmployedIncome   decimal.Decimal `json:"self_employed_income"`
	HoursRisk            bool            `json:"hours_risk"`
	IncomeRisk           bool            `json:"income_risk"`
	RiskLevel            RiskLevel       `json:"risk_level"`
}

// SocialInsurance classifies the risk. Both signals firing is CRITICAL, one
// signal is WARNING. Being inside the grenzbereich (90% of a limit) also
// raises a WARNING so users see the risk before crossing it.
func SocialInsurance(p taxrates.Params, avgSelfEmployedHours, employmentIncome, selfEmployedIncome decimal.Decimal) SocialInsuranceStatus {
	hoursRisk := avgSelfEmployedHours.GreaterThan(p.SelbststaendigkeitHoursLimit)
	incomeRisk := selfEmployedIncome.GreaterThan(employmentIncome)

	hoursNear := avgSelfEmployedHours.GreaterThanOrEqual(
		p.SelbststaendigkeitHoursLimit.Mul(p.GrenzbereichRatio))
	incomeNear := !employmentIncome.IsZero() && selfEmployedIncome.GreaterThanOrEqual(
		employmentIncome.Mul(p.GrenzbereichRatio))

	level := RiskSafe
	switch {
	case hoursRisk && incomeRisk:
		level = RiskCritical
	case hoursRisk || incomeRisk || hoursNear || incomeNear:
		level = RiskWarning
	}

	return SocialInsuranceStatus{
		Year:                 p.Year,
		AvgSelfEmployedHours: avgSelfEmployedHours.Round(2),
		HoursLimit:           p.SelbststaendigkeitHoursLimit,
		EmploymentIncome:     euros(employmentIncome),
		SelfEmployedIncome:   euros(selfEmployedIncome),
		HoursRisk:            hoursRisk,
		IncomeRisk:           incomeRisk,
		RiskLevel:            level,
	}
}

// ArbZGStatus is the §3 ArbZG working time compliance view for users who
// combine employment with self-employment. The two components are reported
// separately so the user can see which side drives the total.
type ArbZGStatus struct {
	Year                 int             `json:"year"`
	AvgEmploymentHours   decimal.Decimal `json:"avg_employment_hours"`
	AvgSelfEmployedHours decimal.Decimal `json:"avg_self_employed_hours"`
	AvgWeeklyHours       decimal.Decimal `json:"avg_weekly_hours"`
	MaxWeeklyHours       decimal.Decimal `json:"max_weekly_hours"`
	// ProgressValue is the raw utilization ratio and intentionally not
	// clamped, so values above 1 signal how far over the limit the user is.
	ProgressValue decimal.Decimal `json:"progress_value"`
	Compliant     bool            `json:"compliant"`
}

// ArbZG checks combined average weekly working hours against the statutory
// maximum.
func ArbZG(p taxrates.Params, employmentHours, selfEmployedHours decimal.Decimal) ArbZGStatus {
	total := employmentHours.Add(selfEmployedHours)
	return ArbZGStatus{
		Year:                 p.Year,
		AvgEmploymentHours:   employmentHours.Round(2),
		AvgSelfEmployedHours: selfEmployedHours.Round(2),
		AvgWeeklyHours:       total.Round(2),
		MaxWeeklyHours:       p.ArbZGMaxWeeklyHours,
		ProgressValue:        ratio(total, p.ArbZGMaxWeeklyHours),
		Compliant:            total.LessThanOrEqual(p.ArbZGMaxWeeklyHours),
	}
}
