package models

// SocialInsuranceEntry records one month of hours and income used by the
// hauptberuflich-selbstständig monitor. Upserted per user, year, and month.
type SocialInsuranceEntry struct {
	Base
	UserID                  string  `gorm:"type:uuid;not null;uniqueIndex:idx_user_si" json:"user_id"`
	Year                    int     `gorm:"not null;uniqueIndex:idx_user_si" json:"year"`
	Month                   int     `gorm:"not null;uniqueIndex:idx_user_si" json:"month"`
	EmploymentHoursWeekly   float64 `json:"employment_hours_weekly"`
	SelfEmployedHoursWeekly float64 `json:"self_employed_hours_weekly"`
	EmploymentIncomeCents   int64   `json:"employment_income_cents"`
	SelfEmployedIncomeCents int64   `json:"self_employed_income_cents"`
}
