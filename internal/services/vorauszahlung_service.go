package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dreistrom/internal/calculator"
	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
	"dreistrom/internal/taxrates"
)

// vorauszahlungService maintains the quarterly prepayment schedule.
type vorauszahlungService struct {
	db  *gorm.DB
	tax TaxServicer
}

// NewVorauszahlungService creates a new VorauszahlungServicer.
func NewVorauszahlungService(db *gorm.DB, tax TaxServicer) VorauszahlungServicer {
	return &vorauszahlungService{db: db, tax: tax}
}

// Generate builds the four quarterly prepayments for the year. The basis is
// the prior year's assessment, mirroring how the Finanzamt sets prepayments
// under §37 EStG. Regeneration is idempotent per quarter: paid quarters keep
// their payment, unpaid quarters are updated to the new basis.
func (s *vorauszahlungService) Generate(userID string, year int) ([]models.Vorauszahlung, error) {
	assessment, err := s.tax.Assess(userID, year-1)
	if err != nil {
		return nil, err
	}

	basis := assessment.TotalTax
	schedule := calculator.VorauszahlungSchedule(year, basis)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, p := range schedule {
			var existing models.Vorauszahlung
			err := tx.Where("user_id = ? AND year = ? AND quarter = ?", userID, year, p.Quarter).
				First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				vz := models.Vorauszahlung{
					UserID:      userID,
					Year:        year,
					Quarter:     p.Quarter,
					DueDate:     p.DueDate,
					BasisCents:  calculator.ToCents(basis),
					AmountCents: calculator.ToCents(p.Amount),
					Status:      models.VorauszahlungScheduled,
				}
				if err := tx.Create(&vz).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			case existing.Status == models.VorauszahlungPaid:
				// Paid quarters are never rewritten.
			default:
				updates := map[string]interface{}{
					"basis_cents":  calculator.ToCents(basis),
					"amount_cents": calculator.ToCents(p.Amount),
					"due_date":     p.DueDate,
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.List(userID, year)
}

// List returns the schedule of a year ordered by quarter.
func (s *vorauszahlungService) List(userID string, year int) ([]models.Vorauszahlung, error) {
	var payments []models.Vorauszahlung
	if err := s.db.Where("user_id = ? AND year = ?", userID, year).Order("quarter").Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payments, nil
}

// Pay records a payment on one quarter.
func (s *vorauszahlungService) Pay(userID, vorauszahlungID string, paidCents int64) (*models.Vorauszahlung, error) {
	if paidCents <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "paid amount must be positive")
	}

	var vz models.Vorauszahlung
	if err := s.db.Where("id = ? AND user_id = ?", vorauszahlungID, userID).First(&vz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVorauszahlungNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if vz.Status == models.VorauszahlungPaid {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransition, "This Vorauszahlung is already paid")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"paid_cents": paidCents,
		"status":     models.VorauszahlungPaid,
		"paid_at":    now,
	}
	if err := s.db.Model(&vz).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &vz, nil
}

// Deviation compares the scheduled basis against the annualized projection of
// the running year and recommends an adjustment request when they diverge
// materially.
func (s *vorauszahlungService) Deviation(userID string, year int) (*calculator.DeviationResult, error) {
	params, err := taxrates.ForYear(year)
	if err != nil {
		return nil, err
	}

	payments, err := s.List(userID, year)
	if err != nil {
		return nil, err
	}

	basis := decimal.Zero
	if len(payments) > 0 {
		basis = calculator.FromCents(payments[0].BasisCents)
	}

	assessment, err := s.tax.AssessAnnualized(userID, year)
	if err != nil {
		return nil, err
	}

	result := calculator.VorauszahlungDeviation(params, basis, assessment.TotalTax)
	return &result, nil
}
