package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
// OVERDUE is a read-time projection of SENT past its due date and is never
// persisted.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceSent      InvoiceStatus = "SENT"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
	InvoiceOverdue   InvoiceStatus = "OVERDUE"
)

// invoiceTransitions encodes the allowed status graph. OVERDUE appears only
// as a source: it is reached by projection, but an overdue invoice can still
// be paid or cancelled.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft:   {InvoiceSent, InvoiceCancelled},
	InvoiceSent:    {InvoicePaid, InvoiceCancelled},
	InvoiceOverdue: {InvoicePaid, InvoiceCancelled},
}

// CanTransitionTo reports whether moving from s to target is allowed.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	for _, t := range invoiceTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// VatTreatment determines how VAT is applied to an invoice.
type VatTreatment string

const (
	VatRegular       VatTreatment = "REGULAR"
	VatReverseCharge VatTreatment = "REVERSE_CHARGE"
	VatIntraEU       VatTreatment = "INTRA_EU"
	VatThirdCountry  VatTreatment = "THIRD_COUNTRY"
	VatSmallBusiness VatTreatment = "SMALL_BUSINESS"
)

// ForcesZeroVat reports whether the treatment legally requires a zero VAT amount.
func (v VatTreatment) ForcesZeroVat() bool {
	switch v {
	case VatReverseCharge, VatIntraEU, VatThirdCountry, VatSmallBusiness:
		return true
	}
	return false
}

// LineItem is a single invoice position. Stored as JSON alongside the invoice.
// VatRate is the rate applied to this position; exempt treatments force it
// to zero on every line.
type LineItem struct {
	Description   string          `json:"description"`
	Quantity      int64           `json:"quantity"`
	UnitNetCents  int64           `json:"unit_net_cents"`
	TotalNetCents int64           `json:"total_net_cents"`
	VatRate       decimal.Decimal `json:"vat_rate"`
	VatCents      int64           `json:"vat_cents"`
}

// Invoice represents an outgoing invoice on one of the self-employed streams.
type Invoice struct {
	Base
	UserID       string        `gorm:"type:uuid;not null;index" json:"user_id"`
	Stream       IncomeStream  `gorm:"not null" json:"stream"`
	Number       string        `gorm:"index" json:"number"`
	ClientID     string        `gorm:"type:uuid;not null" json:"client_id"`
	IssueDate    time.Time     `gorm:"not null" json:"issue_date"`
	DueDate      time.Time     `gorm:"not null" json:"due_date"`
	LineItems    []LineItem    `gorm:"serializer:json" json:"line_items"`
	NetCents     int64         `gorm:"not null" json:"net_cents"`
	VatCents     int64         `gorm:"not null" json:"vat_cents"`
	GrossCents   int64         `gorm:"not null" json:"gross_cents"`
	Currency     string        `gorm:"size:3;not null;default:EUR" json:"currency"`
	VatTreatment VatTreatment  `gorm:"not null" json:"vat_treatment"`
	Status       InvoiceStatus `gorm:"not null;default:DRAFT;index" json:"status"`
	Notes        string        `json:"notes"`
	ZMReportable bool          `gorm:"default:false" json:"zm_reportable"`
	PaidAt       *time.Time    `json:"paid_at,omitempty"`

	Client Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

// EffectiveStatus projects SENT invoices past their due date to OVERDUE.
func (i *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if i.Status == InvoiceSent && now.After(i.DueDate) {
		return InvoiceOverdue
	}
	return i.Status
}

// InvoiceSequence tracks the last assigned invoice number per stream and year,
// so numbering stays gap-free.
type InvoiceSequence struct {
	Base
	UserID     string       `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_seq" json:"user_id"`
	Stream     IncomeStream `gorm:"not null;uniqueIndex:idx_invoice_seq" json:"stream"`
	Year       int          `gorm:"not null;uniqueIndex:idx_invoice_seq" json:"year"`
	LastNumber int          `gorm:"not null;default:0" json:"last_number"`
}
