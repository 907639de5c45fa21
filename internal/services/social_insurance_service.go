package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
)

// socialInsuranceService maintains the monthly hours/income entries feeding
// the social insurance and working time monitors.
type socialInsuranceService struct {
	db       *gorm.DB
	notifier *Notifier
}

// NewSocialInsuranceService creates a new SocialInsuranceServicer.
func NewSocialInsuranceService(db *gorm.DB, notifier *Notifier) SocialInsuranceServicer {
	return &socialInsuranceService{db: db, notifier: notifier}
}

// UpsertEntry creates or replaces the entry for one month.
func (s *socialInsuranceService) UpsertEntry(userID string, year, month int, employmentHours, selfEmployedHours float64, employmentCents, selfEmployedCents int64) (*models.SocialInsuranceEntry, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "month must be between 1 and 12")
	}
	if employmentHours < 0 || selfEmployedHours < 0 || employmentCents < 0 || selfEmployedCents < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "hours and income must not be negative")
	}

	var entry models.SocialInsuranceEntry
	err := s.db.Where("user_id = ? AND year = ? AND month = ?", userID, year, month).First(&entry).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry = models.SocialInsuranceEntry{
			UserID:                  userID,
			Year:                    year,
			Month:                   month,
			EmploymentHoursWeekly:   employmentHours,
			SelfEmployedHoursWeekly: selfEmployedHours,
			EmploymentIncomeCents:   employmentCents,
			SelfEmployedIncomeCents: selfEmployedCents,
		}
		if err := s.db.Create(&entry).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	default:
		updates := map[string]interface{}{
			"employment_hours_weekly":    employmentHours,
			"self_employed_hours_weekly": selfEmployedHours,
			"employment_income_cents":    employmentCents,
			"self_employed_income_cents": selfEmployedCents,
		}
		if err := s.db.Model(&entry).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	s.notifier.LedgerChanged(userID)
	return &entry, nil
}

// GetEntries lists the monthly entries of a year.
func (s *socialInsuranceService) GetEntries(userID string, year int) ([]models.SocialInsuranceEntry, error) {
	var entries []models.SocialInsuranceEntry
	if err := s.db.Where("user_id = ? AND year = ?", userID, year).Order("month").Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entries, nil
}
