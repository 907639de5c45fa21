package models

import "time"

// VorauszahlungStatus is the payment state of one quarterly prepayment.
// OVERDUE is projected at read time and never persisted.
type VorauszahlungStatus string

const (
	VorauszahlungScheduled VorauszahlungStatus = "SCHEDULED"
	VorauszahlungPaid      VorauszahlungStatus = "PAID"
	VorauszahlungOverdue   VorauszahlungStatus = "OVERDUE"
)

// Vorauszahlung is one quarterly income tax prepayment (§37 EStG).
type Vorauszahlung struct {
	Base
	UserID      string              `gorm:"type:uuid;not null;uniqueIndex:idx_user_vz" json:"user_id"`
	Year        int                 `gorm:"not null;uniqueIndex:idx_user_vz" json:"year"`
	Quarter     int                 `gorm:"not null;uniqueIndex:idx_user_vz" json:"quarter"`
	DueDate     time.Time           `gorm:"not null" json:"due_date"`
	BasisCents  int64               `gorm:"not null" json:"basis_cents"`
	AmountCents int64               `gorm:"not null" json:"amount_cents"`
	PaidCents   int64               `gorm:"not null;default:0" json:"paid_cents"`
	Status      VorauszahlungStatus `gorm:"not null;default:SCHEDULED" json:"status"`
	PaidAt      *time.Time          `json:"paid_at,omitempty"`
}

// TableName uses the German plural instead of the generated one.
func (Vorauszahlung) TableName() string { return "vorauszahlungen" }

// EffectiveStatus projects SCHEDULED prepayments past their due date to OVERDUE.
func (v *Vorauszahlung) EffectiveStatus(now time.Time) VorauszahlungStatus {
	if v.Status == VorauszahlungScheduled && now.After(v.DueDate) {
		return VorauszahlungOverdue
	}
	return v.Status
}
