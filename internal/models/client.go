package models

// ClientType distinguishes business customers from consumers, which drives
// the VAT treatment of invoices.
type ClientType string

const (
	ClientB2B ClientType = "B2B"
	ClientB2C ClientType = "B2C"
)

// Client represents an invoicing counterparty.
type Client struct {
	Base
	UserID     string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string     `gorm:"not null" json:"name"`
	ClientType ClientType `gorm:"not null" json:"client_type"`
	// ISO 3166-1 alpha-2 country code of the client's seat.
	Country string `gorm:"size:2;not null;default:DE" json:"country"`
	// EU VAT identification number, required for reverse-charge invoicing.
	UstIDNr string `json:"ust_id_nr"`
	Email   string `json:"email"`
	Active  bool   `gorm:"default:true" json:"active"`
}
