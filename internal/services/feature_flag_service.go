package services

import (
	"time"

	"gorm.io/gorm"

	"dreistrom/internal/calculator"
	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
	"dreistrom/internal/taxrates"
)

// featureFlagService projects the ledger onto the UI feature flags. The
// projection is deterministic: the same ledger state always yields the same
// flags.
type featureFlagService struct {
	db     *gorm.DB
	status StatusServicer
}

// NewFeatureFlagService creates a new FeatureFlagServicer.
func NewFeatureFlagService(db *gorm.DB, status StatusServicer) FeatureFlagServicer {
	return &featureFlagService{db: db, status: status}
}

// Flags computes the feature flag set for a tax year.
func (s *featureFlagService) Flags(userID string, year int) (*calculator.UserFeatureFlags, error) {
	params, err := taxrates.ForYear(year)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	revenue, err := sumIncome(s.db, userID, models.SelfEmployedStreams, year)
	if err != nil {
		return nil, err
	}

	in := calculator.FlagInput{
		AnnualRevenue:    revenue,
		Kleinunternehmer: user.Kleinunternehmer,
	}

	if in.HasEmployment, err = streamHasEntries(s.db, userID, models.StreamEmployment, year); err != nil {
		return nil, err
	}
	if in.HasFreiberuf, err = streamHasEntries(s.db, userID, models.StreamFreiberuf, year); err != nil {
		return nil, err
	}
	if in.HasGewerbe, err = streamHasEntries(s.db, userID, models.StreamGewerbe, year); err != nil {
		return nil, err
	}

	ku, err := s.status.Kleinunternehmer(userID, year)
	if err != nil {
		return nil, err
	}
	in.KleinunternehmerNear = ku.ApproachingLimit || ku.ProjectedExceeded

	abf, err := s.status.Abfaerbung(userID, year)
	if err != nil {
		return nil, err
	}
	in.AbfaerbungInfected = abf.Infected

	gewst, err := s.status.GewerbesteuerThreshold(userID, year)
	if err != nil {
		return nil, err
	}
	in.GewerbesteuerRelevant = in.HasGewerbe && (gewst.Exceeded || gewst.ProjectedToExceed)

	bilanz, err := s.status.Bilanzierung(userID, year)
	if err != nil {
		return nil, err
	}
	in.BilanzierungRequired = bilanz.Bilanzierungspflicht

	var clients []models.Client
	if err := s.db.Where("user_id = ? AND active = ?", userID, true).Find(&clients).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, c := range clients {
		if c.Country == "DE" {
			continue
		}
		if calculator.IsEUCountry(c.Country) {
			in.HasEUClients = true
		} else {
			in.HasThirdCountryClients = true
		}
	}

	if in.HasInvoices, err = s.exists(&models.Invoice{}, "user_id = ?", userID); err != nil {
		return nil, err
	}
	if in.HasAssets, err = s.exists(&models.DepreciationAsset{}, "user_id = ?", userID); err != nil {
		return nil, err
	}
	if in.HasMarketplaceIncome, err = s.exists(&models.PayoutBatch{}, "user_id = ?", userID); err != nil {
		return nil, err
	}

	if in.OnboardingComplete, err = s.onboardingComplete(userID); err != nil {
		return nil, err
	}

	flags := calculator.ProjectFlags(params, in)
	return &flags, nil
}

// FlagsNow computes the flags for the current year.
func (s *featureFlagService) FlagsNow(userID string) (*calculator.UserFeatureFlags, error) {
	return s.Flags(userID, time.Now().Year())
}

func (s *featureFlagService) exists(model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := s.db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// onboardingComplete is true once every required step is completed or the
// workflow was never started (existing businesses skip onboarding entirely).
func (s *featureFlagService) onboardingComplete(userID string) (bool, error) {
	var total int64
	if err := s.db.Model(&models.RegistrationStep{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if total == 0 {
		return true, nil
	}

	var open int64
	err := s.db.Model(&models.RegistrationStep{}).
		Where("user_id = ? AND optional = ? AND status NOT IN ?", userID, false,
			[]models.StepStatus{models.StepCompleted, models.StepSkipped}).
		Count(&open).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return open == 0, nil
}
