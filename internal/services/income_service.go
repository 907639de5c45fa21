package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
	"dreistrom/internal/pagination"
)

// incomeService handles income ledger business logic.
type incomeService struct {
	db       *gorm.DB
	notifier *Notifier
}

// NewIncomeService creates a new IncomeServicer.
func NewIncomeService(db *gorm.DB, notifier *Notifier) IncomeServicer {
	return &incomeService{db: db, notifier: notifier}
}

// CreateEntry books a new income entry.
func (s *incomeService) CreateEntry(userID string, stream models.IncomeStream, amountCents int64, entryDate time.Time, source, description string, clientID *string) (*models.IncomeEntry, error) {
	if amountCents <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be positive")
	}

	if clientID != nil {
		var client models.Client
		if err := s.db.Where("id = ? AND user_id = ?", *clientID, userID).First(&client).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrClientNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	entry := &models.IncomeEntry{
		UserID:      userID,
		Stream:      stream,
		AmountCents: amountCents,
		Currency:    "EUR",
		EntryDate:   entryDate,
		Source:      source,
		Description: description,
		ClientID:    clientID,
	}

	if err := s.db.Create(entry).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.LedgerChanged(userID)
	return entry, nil
}

// IncomeFilter holds optional filter parameters for listing income entries.
type IncomeFilter struct {
	Stream   *models.IncomeStream
	FromDate *time.Time
	ToDate   *time.Time
}

// GetUserEntries returns a paginated list of income entries.
func (s *incomeService) GetUserEntries(userID string, page pagination.PageRequest, filter IncomeFilter) (*pagination.PageResponse[models.IncomeEntry], error) {
	page.Defaults()

	base := s.db.Model(&models.IncomeEntry{}).Where("user_id = ?", userID)
	if filter.Stream != nil {
		base = base.Where("stream = ?", *filter.Stream)
	}
	if filter.FromDate != nil {
		base = base.Where("entry_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("entry_date <= ?", *filter.ToDate)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.IncomeEntry
	if err := base.Order("entry_date DESC").Scopes(pagination.Paginate(page)).Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetEntryByID returns an income entry if it belongs to the user.
func (s *incomeService) GetEntryByID(userID, entryID string) (*models.IncomeEntry, error) {
	var entry models.IncomeEntry
	if err := s.db.Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}

// UpdateEntry updates an income entry's fields.
func (s *incomeService) UpdateEntry(userID, entryID string, amountCents *int64, entryDate *time.Time, source, description string) (*models.IncomeEntry, error) {
	entry, err := s.GetEntryByID(userID, entryID)
	if err != nil {
		return nil, err
	}

	// Entries created from issued invoices stay in sync with their invoice.
	if entry.InvoiceID != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidState, "Income entries created from invoices cannot be edited directly")
	}

	updates := make(map[string]interface{})
	if amountCents != nil {
		if *amountCents <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be positive")
		}
		updates["amount_cents"] = *amountCents
	}
	if entryDate != nil {
		updates["entry_date"] = *entryDate
	}
	if source != "" {
		updates["source"] = source
	}
	if description != "" {
		updates["description"] = description
	}

	if len(updates) > 0 {
		if err := s.db.Model(entry).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		s.notifier.LedgerChanged(userID)
	}

	return entry, nil
}

// DeleteEntry soft-deletes an income entry.
func (s *incomeService) DeleteEntry(userID, entryID string) error {
	entry, err := s.GetEntryByID(userID, entryID)
	if err != nil {
		return err
	}

	if entry.InvoiceID != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidState, "Income entries created from invoices cannot be deleted directly")
	}

	if err := s.db.Delete(entry).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.LedgerChanged(userID)
	return nil
}
