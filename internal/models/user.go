package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	Password         string     `gorm:"not null" json:"-"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash string     `gorm:"size:64" json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	// Kleinunternehmer opt-in recorded during onboarding (§19 UStG).
	Kleinunternehmer bool `gorm:"default:false" json:"kleinunternehmer"`
	// Municipal trade tax multiplier; zero means the statutory default applies.
	Hebesatz int `gorm:"default:0" json:"hebesatz"`

	IncomeEntries  []IncomeEntry  `gorm:"foreignKey:UserID" json:"income_entries,omitempty"`
	ExpenseEntries []ExpenseEntry `gorm:"foreignKey:UserID" json:"expense_entries,omitempty"`
	Invoices       []Invoice      `gorm:"foreignKey:UserID" json:"invoices,omitempty"`
	Clients        []Client       `gorm:"foreignKey:UserID" json:"clients,omitempty"`
}
