package models

// AllocationRule splits a mixed-use expense across the two self-employed
// streams and the private share. The three percentages must sum to 100.
type AllocationRule struct {
	Base
	UserID       string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string `gorm:"not null" json:"name"`
	FreiberufPct int    `gorm:"not null" json:"freiberuf_pct"`
	GewerbePct   int    `gorm:"not null" json:"gewerbe_pct"`
	PersonalPct  int    `gorm:"not null" json:"personal_pct"`
}

// SumsToHundred reports whether the percentages form a complete split.
func (r *AllocationRule) SumsToHundred() bool {
	return r.FreiberufPct+r.GewerbePct+r.PersonalPct == 100
}
