// Package pdf renders invoices and EÜR summaries as PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"dreistrom/internal/calculator"
	"dreistrom/internal/models"
)

const dateLayout = "02.01.2006"

// formatEuro renders a cent amount as a German currency string.
func formatEuro(cents int64) string {
	return calculator.FromCents(cents).StringFixed(2) + " EUR"
}

func formatDecimal(v decimal.Decimal) string {
	return v.StringFixed(2) + " EUR"
}

// newDocument creates an A4 portrait document with the shared font setup.
// The cp1252 translator covers the German umlauts in titles and notices.
func newDocument() (*gofpdf.Fpdf, func(string) string) {
	doc := gofpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetMargins(20, 20, 20)
	doc.AddPage()
	return doc, tr
}

// RenderInvoice produces the PDF for an issued invoice.
func RenderInvoice(invoice *models.Invoice, issuer *models.User) ([]byte, error) {
	doc, tr := newDocument()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, tr(fmt.Sprintf("Rechnung %s", invoice.Number)))
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 5, tr(fmt.Sprintf("%s %s", issuer.FirstName, issuer.LastName)))
	doc.Ln(8)
	doc.Cell(0, 5, tr(fmt.Sprintf("Rechnungsempfänger: %s", invoice.Client.Name)))
	doc.Ln(5)
	doc.Cell(0, 5, tr(fmt.Sprintf("Land: %s", invoice.Client.Country)))
	if invoice.Client.UstIDNr != "" {
		doc.Ln(5)
		doc.Cell(0, 5, tr(fmt.Sprintf("USt-IdNr: %s", invoice.Client.UstIDNr)))
	}
	doc.Ln(8)
	doc.Cell(0, 5, tr(fmt.Sprintf("Rechnungsdatum: %s", invoice.IssueDate.Format(dateLayout))))
	doc.Ln(5)
	doc.Cell(0, 5, tr(fmt.Sprintf("Fällig am: %s", invoice.DueDate.Format(dateLayout))))
	doc.Ln(10)

	// Line item table.
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(90, 7, tr("Beschreibung"), "1", 0, "L", false, 0, "")
	doc.CellFormat(20, 7, tr("Menge"), "1", 0, "R", false, 0, "")
	doc.CellFormat(30, 7, tr("Einzelpreis"), "1", 0, "R", false, 0, "")
	doc.CellFormat(30, 7, tr("Netto"), "1", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	for _, item := range invoice.LineItems {
		doc.CellFormat(90, 7, tr(item.Description), "1", 0, "L", false, 0, "")
		doc.CellFormat(20, 7, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		doc.CellFormat(30, 7, tr(formatEuro(item.UnitNetCents)), "1", 0, "R", false, 0, "")
		doc.CellFormat(30, 7, tr(formatEuro(item.TotalNetCents)), "1", 1, "R", false, 0, "")
	}

	doc.Ln(4)
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(140, 6, tr("Nettobetrag"), "", 0, "R", false, 0, "")
	doc.CellFormat(30, 6, tr(formatEuro(invoice.NetCents)), "", 1, "R", false, 0, "")
	doc.CellFormat(140, 6, tr("Umsatzsteuer"), "", 0, "R", false, 0, "")
	doc.CellFormat(30, 6, tr(formatEuro(invoice.VatCents)), "", 1, "R", false, 0, "")
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(140, 7, tr("Gesamtbetrag"), "T", 0, "R", false, 0, "")
	doc.CellFormat(30, 7, tr(formatEuro(invoice.GrossCents)), "T", 1, "R", false, 0, "")

	if invoice.Notes != "" {
		doc.Ln(8)
		doc.SetFont("Helvetica", "I", 9)
		doc.MultiCell(0, 5, tr(invoice.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EuerLine is one row of the rendered EÜR summary.
type EuerLine struct {
	Label  string
	Amount decimal.Decimal
}

// RenderEuer produces the PDF for one stream's Einnahmen-Überschuss-Rechnung.
func RenderEuer(year int, stream models.IncomeStream, income, expenses, depreciation, profit decimal.Decimal) ([]byte, error) {
	doc, tr := newDocument()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, tr(fmt.Sprintf("Einnahmen-Überschuss-Rechnung %d", year)))
	doc.Ln(8)
	doc.SetFont("Helvetica", "", 11)
	doc.Cell(0, 6, tr(fmt.Sprintf("Einkunftsart: %s", stream)))
	doc.Ln(6)
	doc.Cell(0, 6, tr(fmt.Sprintf("Erstellt am: %s", time.Now().Format(dateLayout))))
	doc.Ln(12)

	lines := []EuerLine{
		{Label: "Betriebseinnahmen", Amount: income},
		{Label: "Betriebsausgaben", Amount: expenses.Neg()},
		{Label: "Absetzung für Abnutzung (AfA)", Amount: depreciation.Neg()},
	}

	doc.SetFont("Helvetica", "", 11)
	for _, line := range lines {
		doc.CellFormat(120, 8, tr(line.Label), "B", 0, "L", false, 0, "")
		doc.CellFormat(50, 8, tr(formatDecimal(line.Amount)), "B", 1, "R", false, 0, "")
	}

	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(120, 10, tr("Gewinn / Verlust"), "", 0, "L", false, 0, "")
	doc.CellFormat(50, 10, tr(formatDecimal(profit)), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
