package calculator

import (
	"strings"

	"dreistrom/internal/models"
)

// euCountries are the EU member states (ISO 3166-1 alpha-2), excluding DE
// which is handled as domestic.
var euCountries = map[string]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true, "CZ": true,
	"DK": true, "EE": true, "ES": true, "FI": true, "FR": true, "GR": true,
	"HU": true, "IE": true, "IT": true, "LT": true, "LU": true, "LV": true,
	"MT": true, "NL": true, "PL": true, "PT": true, "RO": true, "SE": true,
	"SI": true, "SK": true,
}

// IsEUCountry reports whether the country code is a non-German EU member state.
func IsEUCountry(code string) bool {
	return euCountries[strings.ToUpper(code)]
}

// Statutory invoice notices. Appended to the invoice notes exactly once.
const (
	NoticeReverseCharge = "Steuerschuldnerschaft des Leistungsempfängers (Reverse-Charge-Verfahren, §13b UStG)."
	NoticeSmallBusiness = "Gemäß §19 UStG wird keine Umsatzsteuer berechnet."
	NoticeIntraEU       = "Steuerfreie innergemeinschaftliche Lieferung/Leistung."
	NoticeThirdCountry  = "Nicht im Inland steuerbare Leistung (§3a UStG)."
)

// DetermineVatTreatment derives the VAT treatment of an invoice from the
// client and the supplier's §19 status. A Kleinunternehmer never charges VAT
// regardless of the counterparty. EU business customers with a VAT ID shift
// the tax liability (reverse charge); EU consumers are taxed like domestic
// ones; customers outside the EU are not taxable in Germany.
func DetermineVatTreatment(client *models.Client, kleinunternehmer bool) models.VatTreatment {
	if kleinunternehmer {
		return models.VatSmallBusiness
	}

	country := strings.ToUpper(client.Country)
	switch {
	case country == "DE" || country == "":
		return models.VatRegular
	case IsEUCountry(country):
		if client.ClientType == models.ClientB2B && client.UstIDNr != "" {
			return models.VatReverseCharge
		}
		return models.VatRegular
	default:
		return models.VatThirdCountry
	}
}

// NoticeFor returns the statutory notice for a treatment, or empty for
// regular taxation.
func NoticeFor(t models.VatTreatment) string {
	switch t {
	case models.VatReverseCharge:
		return NoticeReverseCharge
	case models.VatSmallBusiness:
		return NoticeSmallBusiness
	case models.VatIntraEU:
		return NoticeIntraEU
	case models.VatThirdCountry:
		return NoticeThirdCountry
	default:
		return ""
	}
}

// AppendNotice adds the notice to the notes if it is not already present.
func AppendNotice(notes, notice string) string {
	if notice == "" || strings.Contains(notes, notice) {
		return notes
	}
	if notes == "" {
		return notice
	}
	return notes + "\n" + notice
}

// ZMReportable reports whether the invoice must appear in the
// Zusammenfassende Meldung.
func ZMReportable(treatment models.VatTreatment, country string) bool {
	if !IsEUCountry(country) {
		return false
	}
	return treatment == models.VatReverseCharge || treatment == models.VatIntraEU
}
