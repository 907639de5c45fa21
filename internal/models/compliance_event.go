package models

import "time"

// ComplianceEventType enumerates the statutory deadline categories.
type ComplianceEventType string

const (
	EventUStVoranmeldung    ComplianceEventType = "UST_VORANMELDUNG"
	EventUStErklaerung      ComplianceEventType = "UST_ERKLAERUNG"
	EventEStErklaerung      ComplianceEventType = "EST_ERKLAERUNG"
	EventGewStErklaerung    ComplianceEventType = "GEWST_ERKLAERUNG"
	EventEStVorauszahlung   ComplianceEventType = "EST_VORAUSZAHLUNG"
	EventGewStVorauszahlung ComplianceEventType = "GEWST_VORAUSZAHLUNG"
	EventEUeRAbgabe         ComplianceEventType = "EUER_ABGABE"
	EventZMMeldung          ComplianceEventType = "ZM_REPORT"
	EventSozialversicherung ComplianceEventType = "SOCIAL_INSURANCE"
	EventCustom             ComplianceEventType = "CUSTOM"
)

// ComplianceEventStatus is the lifecycle state of a calendar event.
// OVERDUE is projected at read time for PENDING events past their due date.
type ComplianceEventStatus string

const (
	EventPending   ComplianceEventStatus = "PENDING"
	EventCompleted ComplianceEventStatus = "COMPLETED"
	EventCancelled ComplianceEventStatus = "CANCELLED"
	EventOverdue   ComplianceEventStatus = "OVERDUE"
)

// ComplianceEvent is a single deadline on the compliance calendar.
type ComplianceEvent struct {
	Base
	UserID      string                `gorm:"type:uuid;not null;index" json:"user_id"`
	EventType   ComplianceEventType   `gorm:"not null;index" json:"event_type"`
	Title       string                `gorm:"not null" json:"title"`
	Description string                `json:"description"`
	DueDate     time.Time             `gorm:"not null;index" json:"due_date"`
	Year        int                   `gorm:"not null;index" json:"year"`
	Status      ComplianceEventStatus `gorm:"not null;default:PENDING" json:"status"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}

// EffectiveStatus projects PENDING events past their due date to OVERDUE.
func (e *ComplianceEvent) EffectiveStatus(now time.Time) ComplianceEventStatus {
	if e.Status == EventPending && now.After(e.DueDate) {
		return EventOverdue
	}
	return e.Status
}
