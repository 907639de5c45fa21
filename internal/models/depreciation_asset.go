package models

import "time"

// DepreciationAsset is a fixed asset depreciated linearly over its useful
// life (AfA, §7 EStG). Assets at or under the GWG limit are expensed
// immediately instead. ExpenseEntryID links assets that were capitalized
// automatically from an expense booking above the GWG limit.
type DepreciationAsset struct {
	Base
	UserID           string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Stream           IncomeStream `gorm:"not null" json:"stream"`
	Name             string       `gorm:"not null" json:"name"`
	AcquisitionDate  time.Time    `gorm:"not null" json:"acquisition_date"`
	NetCostCents     int64        `gorm:"not null" json:"net_cost_cents"`
	UsefulLifeMonths int          `gorm:"not null" json:"useful_life_months"`
	GWG              bool         `gorm:"default:false" json:"gwg"`
	ExpenseEntryID   *string      `gorm:"type:uuid;index" json:"expense_entry_id,omitempty"`
}
