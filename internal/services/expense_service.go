package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"dreistrom/internal/calculator"
	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
	"dreistrom/internal/pagination"
	"dreistrom/internal/taxrates"
)

// expenseService handles expense ledger business logic.
type expenseService struct {
	db       *gorm.DB
	notifier *Notifier
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, notifier *Notifier) ExpenseServicer {
	return &expenseService{db: db, notifier: notifier}
}

// defaultUsefulLifeMonths is the AfA life assumed for auto-capitalized
// purchases until the user corrects the asset.
const defaultUsefulLifeMonths = 36

// capitalizedAsset builds the depreciation asset backing an expense booked
// above the GWG limit.
func capitalizedAsset(entry *models.ExpenseEntry) *models.DepreciationAsset {
	name := entry.Description
	if name == "" {
		name = string(entry.Category)
	}
	return &models.DepreciationAsset{
		UserID:           entry.UserID,
		Stream:           entry.Stream,
		Name:             name,
		AcquisitionDate:  entry.EntryDate,
		NetCostCents:     entry.AmountCents,
		UsefulLifeMonths: defaultUsefulLifeMonths,
		ExpenseEntryID:   &entry.ID,
	}
}

// CreateEntry books a new expense entry. The GWG flag is derived from the net
// amount against the statutory limit of the entry's year; amounts above the
// limit are capitalized into a linked depreciation asset and flow into the
// EÜR through AfA instead of the expense sum.
func (s *expenseService) CreateEntry(userID string, stream models.IncomeStream, amountCents int64, category models.ExpenseCategory, entryDate time.Time, description string, allocationRuleID *string) (*models.ExpenseEntry, error) {
	if amountCents <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be positive")
	}

	if allocationRuleID != nil {
		var rule models.AllocationRule
		if err := s.db.Where("id = ? AND user_id = ?", *allocationRuleID, userID).First(&rule).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrAllocationRuleNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	params, err := taxrates.ForYear(entryDate.Year())
	if err != nil {
		params = taxrates.Latest()
	}
	gwg := calculator.IsGWG(params, calculator.FromCents(amountCents))

	entry := &models.ExpenseEntry{
		UserID:           userID,
		Stream:           stream,
		AmountCents:      amountCents,
		Currency:         "EUR",
		Category:         category,
		EntryDate:        entryDate,
		Description:      description,
		GWG:              gwg,
		AllocationRuleID: allocationRuleID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		if !gwg {
			return tx.Create(capitalizedAsset(entry)).Error
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.LedgerChanged(userID)
	return entry, nil
}

// GetUserEntries returns a paginated list of expense entries.
func (s *expenseService) GetUserEntries(userID string, page pagination.PageRequest, stream *models.IncomeStream) (*pagination.PageResponse[models.ExpenseEntry], error) {
	page.Defaults()

	base := s.db.Model(&models.ExpenseEntry{}).Where("user_id = ?", userID)
	if stream != nil {
		base = base.Where("stream = ?", *stream)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.ExpenseEntry
	if err := base.Preload("AllocationRule").Order("entry_date DESC").Scopes(pagination.Paginate(page)).Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetEntryByID returns an expense entry if it belongs to the user.
func (s *expenseService) GetEntryByID(userID, entryID string) (*models.ExpenseEntry, error) {
	var entry models.ExpenseEntry
	if err := s.db.Preload("AllocationRule").Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}

// UpdateEntry updates an expense entry's fields. Amount and date changes
// re-derive the GWG flag and reconcile the linked depreciation asset: a
// booking crossing the limit upward gets capitalized, one crossing downward
// sheds its asset.
func (s *expenseService) UpdateEntry(userID, entryID string, amountCents *int64, category *models.ExpenseCategory, entryDate *time.Time, description string, allocationRuleID *string) (*models.ExpenseEntry, error) {
	entry, err := s.GetEntryByID(userID, entryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if amountCents != nil {
		if *amountCents <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be positive")
		}
		updates["amount_cents"] = *amountCents
	}
	if category != nil {
		updates["category"] = *category
	}
	if entryDate != nil {
		updates["entry_date"] = *entryDate
	}
	if description != "" {
		updates["description"] = description
	}
	if allocationRuleID != nil {
		var rule models.AllocationRule
		if err := s.db.Where("id = ? AND user_id = ?", *allocationRuleID, userID).First(&rule).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrAllocationRuleNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["allocation_rule_id"] = *allocationRuleID
	}

	if amountCents != nil || entryDate != nil {
		newAmount := entry.AmountCents
		if amountCents != nil {
			newAmount = *amountCents
		}
		newDate := entry.EntryDate
		if entryDate != nil {
			newDate = *entryDate
		}
		params, perr := taxrates.ForYear(newDate.Year())
		if perr != nil {
			params = taxrates.Latest()
		}
		updates["gwg"] = calculator.IsGWG(params, calculator.FromCents(newAmount))
	}

	if len(updates) > 0 {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(entry).Updates(updates).Error; err != nil {
				return err
			}
			return syncCapitalizedAsset(tx, entry)
		})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		s.notifier.LedgerChanged(userID)
	}

	return entry, nil
}

// syncCapitalizedAsset reconciles the depreciation asset linked to the entry
// with its current GWG flag and amounts.
func syncCapitalizedAsset(tx *gorm.DB, entry *models.ExpenseEntry) error {
	var asset models.DepreciationAsset
	err := tx.Where("expense_entry_id = ?", entry.ID).First(&asset).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if entry.GWG {
			return nil
		}
		return tx.Create(capitalizedAsset(entry)).Error
	case err != nil:
		return err
	case entry.GWG:
		return tx.Delete(&asset).Error
	default:
		return tx.Model(&asset).Updates(map[string]interface{}{
			"stream":           entry.Stream,
			"acquisition_date": entry.EntryDate,
			"net_cost_cents":   entry.AmountCents,
		}).Error
	}
}

// DeleteEntry soft-deletes an expense entry and any asset capitalized from it.
func (s *expenseService) DeleteEntry(userID, entryID string) error {
	entry, err := s.GetEntryByID(userID, entryID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_entry_id = ?", entry.ID).Delete(&models.DepreciationAsset{}).Error; err != nil {
			return err
		}
		return tx.Delete(entry).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.LedgerChanged(userID)
	return nil
}
