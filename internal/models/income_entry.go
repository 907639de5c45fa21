package models

import "time"

// IncomeStream identifies which of the three income streams an entry belongs to.
type IncomeStream string

const (
	StreamEmployment IncomeStream = "EMPLOYMENT"
	StreamFreiberuf  IncomeStream = "FREIBERUF"
	StreamGewerbe    IncomeStream = "GEWERBE"
)

// SelfEmployedStreams are the streams that feed the EÜR and the revenue thresholds.
var SelfEmployedStreams = []IncomeStream{StreamFreiberuf, StreamGewerbe}

// IncomeEntry represents a single income booking in one stream.
// Amounts are stored in euro cents.
type IncomeEntry struct {
	Base
	UserID      string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Stream      IncomeStream `gorm:"not null;index" json:"stream"`
	AmountCents int64        `gorm:"not null" json:"amount_cents"`
	Currency    string       `gorm:"size:3;not null;default:EUR" json:"currency"`
	EntryDate   time.Time    `gorm:"not null;index" json:"entry_date"`
	Source      string       `json:"source"`
	Description string       `json:"description"`
	ClientID    *string      `gorm:"type:uuid" json:"client_id,omitempty"`
	InvoiceID   *string      `gorm:"type:uuid" json:"invoice_id,omitempty"`
}
