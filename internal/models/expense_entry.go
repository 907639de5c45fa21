package models

import "time"

// ExpenseCategory classifies business expenses for the EÜR.
type ExpenseCategory string

const (
	ExpenseOffice    ExpenseCategory = "OFFICE"
	ExpenseTravel    ExpenseCategory = "TRAVEL"
	ExpenseHardware  ExpenseCategory = "HARDWARE"
	ExpenseSoftware  ExpenseCategory = "SOFTWARE"
	ExpenseInsurance ExpenseCategory = "INSURANCE"
	ExpenseRent      ExpenseCategory = "RENT"
	ExpenseTelecom   ExpenseCategory = "TELECOM"
	ExpenseTraining  ExpenseCategory = "TRAINING"
	ExpenseOther     ExpenseCategory = "OTHER"
)

// ExpenseEntry represents a single expense booking. When an allocation rule is
// attached, the amount is split across the streams by the rule's percentages;
// otherwise the expense belongs entirely to the stream it was booked on.
type ExpenseEntry struct {
	Base
	UserID           string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Stream           IncomeStream    `gorm:"not null;index" json:"stream"`
	AmountCents      int64           `gorm:"not null" json:"amount_cents"`
	Currency         string          `gorm:"size:3;not null;default:EUR" json:"currency"`
	Category         ExpenseCategory `gorm:"not null" json:"category"`
	EntryDate        time.Time       `gorm:"not null;index" json:"entry_date"`
	Description      string          `json:"description"`
	GWG              bool            `gorm:"default:false" json:"gwg"`
	AllocationRuleID *string         `gorm:"type:uuid" json:"allocation_rule_id,omitempty"`

	AllocationRule *AllocationRule `gorm:"foreignKey:AllocationRuleID" json:"allocation_rule,omitempty"`
}
