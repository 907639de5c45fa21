package models

import "time"

// PayoutPlatform identifies the marketplace a payout report came from.
type PayoutPlatform string

const (
	PlatformApple  PayoutPlatform = "APPLE"
	PlatformGoogle PayoutPlatform = "GOOGLE"
)

// PayoutBatch is one imported marketplace payout report. The batch ID is
// derived from the report contents and makes re-imports idempotent.
type PayoutBatch struct {
	Base
	UserID        string         `gorm:"type:uuid;not null;uniqueIndex:idx_user_batch" json:"user_id"`
	Platform      PayoutPlatform `gorm:"not null" json:"platform"`
	BatchID       string         `gorm:"not null;uniqueIndex:idx_user_batch" json:"batch_id"`
	PeriodStart   time.Time      `json:"period_start"`
	RowCount      int            `json:"row_count"`
	NetTotalCents int64          `json:"net_total_cents"`
	IncomeEntryID *string        `gorm:"type:uuid" json:"income_entry_id,omitempty"`
	Rows          []PayoutRow    `gorm:"foreignKey:BatchRef" json:"rows,omitempty"`
}

// PayoutRow is a single settled sale inside a payout report.
// Marketplace sales carry no German VAT; the platform is the deemed supplier.
type PayoutRow struct {
	Base
	BatchRef        string `gorm:"type:uuid;not null;index" json:"batch_ref"`
	UserID          string `gorm:"type:uuid;not null;index" json:"user_id"`
	Country         string `gorm:"size:2" json:"country"`
	Currency        string `gorm:"size:3" json:"currency"`
	ProductID       string `json:"product_id"`
	Title           string `json:"title"`
	Quantity        int    `json:"quantity"`
	NetCents        int64  `json:"net_cents"`
	CommissionCents int64  `json:"commission_cents"`
	GrossCents      int64  `json:"gross_cents"`
}
