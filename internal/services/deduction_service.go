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

// deductionService covers the home office comparison and the AfA asset
// register.
type deductionService struct {
	db       *gorm.DB
	notifier *Notifier
}

// NewDeductionService creates a new DeductionServicer.
func NewDeductionService(db *gorm.DB, notifier *Notifier) DeductionServicer {
	return &deductionService{db: db, notifier: notifier}
}

// HomeOfficeInput carries the user's home office situation for one year.
type HomeOfficeInput struct {
	Year                int
	DaysWorkedFromHome  int
	OfficeArea          decimal.Decimal
	DwellingArea        decimal.Decimal
	AnnualDwellingCosts decimal.Decimal
}

// HomeOffice compares the Tagespauschale against the Arbeitszimmer deduction.
func (s *deductionService) HomeOffice(userID string, input HomeOfficeInput) (*calculator.HomeOfficeResult, error) {
	params, err := taxrates.ForYear(input.Year)
	if err != nil {
		return nil, err
	}
	if input.DaysWorkedFromHome < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "days must not be negative")
	}
	if input.OfficeArea.IsNegative() || input.DwellingArea.IsNegative() || input.AnnualDwellingCosts.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "areas and costs must not be negative")
	}
	if input.OfficeArea.GreaterThan(input.DwellingArea) {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "office area cannot exceed the dwelling area")
	}

	result := calculator.HomeOffice(params, input.DaysWorkedFromHome,
		input.OfficeArea, input.DwellingArea, input.AnnualDwellingCosts)
	return &result, nil
}

// AssetInput is the payload for registering a fixed asset.
type AssetInput struct {
	Stream           models.IncomeStream
	Name             string
	AcquisitionDate  time.Time
	NetCostCents     int64
	UsefulLifeMonths int
}

// CreateAsset registers an asset. Assets at or under the GWG limit are
// flagged for immediate write-off and carry no schedule.
func (s *deductionService) CreateAsset(userID string, input AssetInput) (*models.DepreciationAsset, error) {
	if input.Stream != models.StreamFreiberuf && input.Stream != models.StreamGewerbe {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "Assets belong to FREIBERUF or GEWERBE")
	}
	if input.NetCostCents <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "net cost must be positive")
	}
	if input.UsefulLifeMonths <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "useful life must be positive")
	}

	params, err := taxrates.ForYear(input.AcquisitionDate.Year())
	if err != nil {
		params = taxrates.Latest()
	}

	asset := &models.DepreciationAsset{
		UserID:           userID,
		Stream:           input.Stream,
		Name:             input.Name,
		AcquisitionDate:  input.AcquisitionDate,
		NetCostCents:     input.NetCostCents,
		UsefulLifeMonths: input.UsefulLifeMonths,
		GWG:              calculator.IsGWG(params, calculator.FromCents(input.NetCostCents)),
	}
	if err := s.db.Create(asset).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.LedgerChanged(userID)
	return asset, nil
}

// ListAssets returns the asset register ordered by acquisition date.
func (s *deductionService) ListAssets(userID string) ([]models.DepreciationAsset, error) {
	var assets []models.DepreciationAsset
	if err := s.db.Where("user_id = ?", userID).Order("acquisition_date").Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return assets, nil
}

// AssetSchedule holds an asset with its full AfA schedule.
type AssetSchedule struct {
	Asset    models.DepreciationAsset      `json:"asset"`
	Schedule []calculator.DepreciationLine `json:"schedule"`
}

// Schedule returns the linear AfA schedule of one asset. GWG assets return an
// empty schedule; they are expensed in the acquisition year.
func (s *deductionService) Schedule(userID, assetID string) (*AssetSchedule, error) {
	asset, err := s.findAsset(userID, assetID)
	if err != nil {
		return nil, err
	}

	var lines []calculator.DepreciationLine
	if !asset.GWG {
		lines = calculator.DepreciationSchedule(
			calculator.FromCents(asset.NetCostCents), asset.AcquisitionDate, asset.UsefulLifeMonths)
	}
	if lines == nil {
		lines = []calculator.DepreciationLine{}
	}
	return &AssetSchedule{Asset: *asset, Schedule: lines}, nil
}

// DeleteAsset removes an asset from the register.
func (s *deductionService) DeleteAsset(userID, assetID string) error {
	asset, err := s.findAsset(userID, assetID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(asset).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	s.notifier.LedgerChanged(userID)
	return nil
}

func (s *deductionService) findAsset(userID, assetID string) (*models.DepreciationAsset, error) {
	var asset models.DepreciationAsset
	err := s.db.Where("id = ? AND user_id = ?", assetID, userID).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &asset, nil
}
