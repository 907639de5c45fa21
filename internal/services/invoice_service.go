package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dreistrom/internal/calculator"
	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
	"dreistrom/internal/taxrates"
)

// invoiceService handles the invoice lifecycle: drafting, VAT treatment,
// gap-free numbering, issuing and payment.
type invoiceService struct {
	db       *gorm.DB
	notifier *Notifier
}

// NewInvoiceService creates a new InvoiceServicer.
func NewInvoiceService(db *gorm.DB, notifier *Notifier) InvoiceServicer {
	return &invoiceService{db: db, notifier: notifier}
}

// InvoiceInput is the payload for creating or updating a draft. VatTreatment
// overrides the derived treatment when set; §19 suppliers always invoice as
// SMALL_BUSINESS.
type InvoiceInput struct {
	Stream       models.IncomeStream
	ClientID     string
	IssueDate    time.Time
	DueDate      time.Time
	LineItems    []models.LineItem
	VatTreatment models.VatTreatment
	Notes        string
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	Status models.InvoiceStatus
	Stream models.IncomeStream
	Year   int
}

// CreateDraft creates a new invoice in DRAFT. The VAT treatment is derived
// from the client and the user's §19 status; the number is assigned on issue
// so cancelled drafts never burn a sequence slot.
func (s *invoiceService) CreateDraft(userID string, input InvoiceInput) (*models.Invoice, error) {
	if input.Stream != models.StreamFreiberuf && input.Stream != models.StreamGewerbe {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "Invoices can only be issued on FREIBERUF or GEWERBE")
	}
	if len(input.LineItems) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "An invoice needs at least one line item")
	}
	if input.DueDate.Before(input.IssueDate) {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "Due date must not precede the issue date")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var client models.Client
	if err := s.db.Where("id = ? AND user_id = ?", input.ClientID, userID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrClientNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	invoice := &models.Invoice{
		UserID:    userID,
		Stream:    input.Stream,
		ClientID:  client.ID,
		IssueDate: input.IssueDate,
		DueDate:   input.DueDate,
		Currency:  "EUR",
		Status:    models.InvoiceDraft,
		Notes:     input.Notes,
	}
	if err := s.applyAmounts(invoice, &client, user.Kleinunternehmer, input, input.IssueDate.Year()); err != nil {
		return nil, err
	}

	if err := s.db.Create(invoice).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return invoice, nil
}

// UpdateDraft replaces the editable fields of a draft. Issued invoices are
// immutable.
func (s *invoiceService) UpdateDraft(userID, invoiceID string, input InvoiceInput) (*models.Invoice, error) {
	invoice, err := s.find(userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceDraft {
		return nil, apperrors.WithMessage(apperrors.ErrInvoiceNotEditable,
			fmt.Sprintf("Invoice in status %s cannot be edited", invoice.Status))
	}
	if len(input.LineItems) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "An invoice needs at least one line item")
	}
	if input.DueDate.Before(input.IssueDate) {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "Due date must not precede the issue date")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	clientID := invoice.ClientID
	if input.ClientID != "" {
		clientID = input.ClientID
	}
	var client models.Client
	if err := s.db.Where("id = ? AND user_id = ?", clientID, userID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrClientNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	invoice.ClientID = client.ID
	invoice.IssueDate = input.IssueDate
	invoice.DueDate = input.DueDate
	invoice.Notes = input.Notes
	if err := s.applyAmounts(invoice, &client, user.Kleinunternehmer, input, input.IssueDate.Year()); err != nil {
		return nil, err
	}

	if err := s.db.Save(invoice).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return invoice, nil
}

// applyAmounts recomputes treatment, per-line VAT, totals and the statutory
// notice. Exempt treatments force every line rate to zero; lines without an
// explicit rate default to the regular rate of the issue year.
func (s *invoiceService) applyAmounts(invoice *models.Invoice, client *models.Client, kleinunternehmer bool, input InvoiceInput, year int) error {
	treatment := input.VatTreatment
	switch treatment {
	case "":
		treatment = calculator.DetermineVatTreatment(client, kleinunternehmer)
	case models.VatRegular, models.VatReverseCharge, models.VatIntraEU,
		models.VatThirdCountry, models.VatSmallBusiness:
		if kleinunternehmer {
			treatment = models.VatSmallBusiness
		}
	default:
		return apperrors.WithMessage(apperrors.ErrValidation,
			fmt.Sprintf("Unknown VAT treatment %s", treatment))
	}

	params, err := taxrates.ForYear(year)
	if err != nil {
		params = taxrates.Latest()
	}

	items := input.LineItems
	var netCents, vatCents int64
	for i := range items {
		if items[i].Quantity <= 0 || items[i].UnitNetCents < 0 {
			return apperrors.WithMessage(apperrors.ErrValidation, "Line items need a positive quantity and a non-negative unit price")
		}
		if items[i].VatRate.IsNegative() || items[i].VatRate.GreaterThan(decimal.NewFromInt(1)) {
			return apperrors.WithMessage(apperrors.ErrValidation, "Line item VAT rates must be between 0 and 1")
		}
		items[i].TotalNetCents = items[i].Quantity * items[i].UnitNetCents

		switch {
		case treatment.ForcesZeroVat():
			items[i].VatRate = decimal.Zero
		case items[i].VatRate.IsZero():
			items[i].VatRate = params.RegularVATRate
		}
		items[i].VatCents = calculator.ToCents(
			calculator.FromCents(items[i].TotalNetCents).Mul(items[i].VatRate).Round(2))

		netCents += items[i].TotalNetCents
		vatCents += items[i].VatCents
	}

	invoice.LineItems = items
	invoice.NetCents = netCents
	invoice.VatCents = vatCents
	invoice.GrossCents = netCents + vatCents
	invoice.VatTreatment = treatment
	invoice.ZMReportable = calculator.ZMReportable(treatment, client.Country)
	invoice.Notes = calculator.AppendNotice(invoice.Notes, calculator.NoticeFor(treatment))
	return nil
}

// Get returns one invoice with its client preloaded.
func (s *invoiceService) Get(userID, invoiceID string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.Preload("Client").Where("id = ? AND user_id = ?", invoiceID, userID).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvoiceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &invoice, nil
}

// List returns the user's invoices, newest first. A status filter of OVERDUE
// matches SENT invoices past their due date.
func (s *invoiceService) List(userID string, filter InvoiceFilter) ([]models.Invoice, error) {
	q := s.db.Preload("Client").Where("user_id = ?", userID)
	if filter.Stream != "" {
		q = q.Where("stream = ?", filter.Stream)
	}
	if filter.Year > 0 {
		q = q.Where("issue_date >= ? AND issue_date < ?",
			time.Date(filter.Year, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(filter.Year+1, 1, 1, 0, 0, 0, 0, time.UTC))
	}
	switch filter.Status {
	case "":
	case models.InvoiceOverdue:
		q = q.Where("status = ? AND due_date < ?", models.InvoiceSent, time.Now())
	default:
		q = q.Where("status = ?", filter.Status)
	}

	var invoices []models.Invoice
	if err := q.Order("issue_date DESC, created_at DESC").Find(&invoices).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return invoices, nil
}

// Transition moves an invoice along the status graph. Issuing assigns the
// next gap-free number and books the income entry; payment stamps paid_at.
func (s *invoiceService) Transition(userID, invoiceID string, target models.InvoiceStatus) (*models.Invoice, error) {
	invoice, err := s.find(userID, invoiceID)
	if err != nil {
		return nil, err
	}

	if !invoice.Status.CanTransitionTo(target) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransition,
			fmt.Sprintf("Cannot move invoice from %s to %s", invoice.Status, target))
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": target}

		if invoice.Status == models.InvoiceDraft && target == models.InvoiceSent {
			number, err := nextInvoiceNumber(tx, userID, invoice.Stream, invoice.IssueDate.Year())
			if err != nil {
				return err
			}
			updates["number"] = number
			invoice.Number = number

			entry := models.IncomeEntry{
				UserID:      userID,
				Stream:      invoice.Stream,
				AmountCents: invoice.NetCents,
				Currency:    invoice.Currency,
				EntryDate:   invoice.IssueDate,
				Source:      "invoice",
				Description: fmt.Sprintf("Rechnung %s", number),
				ClientID:    &invoice.ClientID,
				InvoiceID:   &invoice.ID,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}

		if target == models.InvoicePaid {
			now := time.Now()
			updates["paid_at"] = now
		}

		// The update is guarded on the status loaded above. A concurrent
		// transition makes it match zero rows, rolling back the income
		// entry and the sequence increment with it.
		res := tx.Model(&models.Invoice{}).
			Where("id = ? AND status = ?", invoice.ID, invoice.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidTransition,
				fmt.Sprintf("Invoice left status %s concurrently", invoice.Status))
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.InvoiceChanged(userID, invoice.ID, string(target))
	if target == models.InvoiceSent {
		s.notifier.LedgerChanged(userID)
	}
	return s.Get(userID, invoice.ID)
}

// DeleteDraft removes a draft. Issued invoices must be cancelled instead.
func (s *invoiceService) DeleteDraft(userID, invoiceID string) error {
	invoice, err := s.find(userID, invoiceID)
	if err != nil {
		return err
	}
	if invoice.Status != models.InvoiceDraft {
		return apperrors.WithMessage(apperrors.ErrInvoiceNotEditable, "Only drafts can be deleted")
	}
	if err := s.db.Delete(invoice).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// find loads an invoice without preloads for mutation paths.
func (s *invoiceService) find(userID, invoiceID string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.Where("id = ? AND user_id = ?", invoiceID, userID).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvoiceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &invoice, nil
}

// streamPrefix maps the stream to the invoice number prefix.
func streamPrefix(stream models.IncomeStream) string {
	if stream == models.StreamGewerbe {
		return "GW"
	}
	return "FB"
}

// nextInvoiceNumber increments the per-stream-and-year sequence inside the
// surrounding transaction and formats the number, e.g. FB-2025-0001.
func nextInvoiceNumber(tx *gorm.DB, userID string, stream models.IncomeStream, year int) (string, error) {
	var seq models.InvoiceSequence
	err := tx.Where("user_id = ? AND stream = ? AND year = ?", userID, stream, year).First(&seq).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		seq = models.InvoiceSequence{UserID: userID, Stream: stream, Year: year, LastNumber: 1}
		if err := tx.Create(&seq).Error; err != nil {
			return "", err
		}
	case err != nil:
		return "", err
	default:
		// Increment in SQL and re-read: two issuers racing on the same
		// counter serialize on the row instead of both reading the same
		// last number.
		if err := tx.Model(&seq).UpdateColumn("last_number", gorm.Expr("last_number + 1")).Error; err != nil {
			return "", err
		}
		if err := tx.First(&seq, "id = ?", seq.ID).Error; err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%s-%d-%04d", streamPrefix(stream), year, seq.LastNumber), nil
}
