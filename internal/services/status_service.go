package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dreistrom/internal/calculator"
	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
	"dreistrom/internal/taxrates"
)

// statusService computes the threshold monitor statuses by aggregating the
// ledger and delegating to the pure calculators.
type statusService struct {
	db *gorm.DB
}

// NewStatusService creates a new StatusServicer.
func NewStatusService(db *gorm.DB) StatusServicer {
	return &statusService{db: db}
}

// Kleinunternehmer returns the §19 UStG status for the year.
func (s *statusService) Kleinunternehmer(userID string, year int) (*calculator.KleinunternehmerStatus, error) {
	params, err := taxrates.ForYear(year)
	if err != nil {
		return nil, err
	}

	revenue, err := sumIncome(s.db, userID, models.SelfEmployedStreams, year)
	if err != nil {
		return nil, err
	}

	status := calculator.Kleinunternehmer(params, revenue, monthsElapsed(year, time.Now()))
	return &status, nil
}

// Abfaerbung returns the §15 Abs. 3 EStG infection status for the year.
func (s *statusService) Abfaerbung(userID string, year int) (*calculator.AbfaerbungStatus, error) {
	params, err := taxrates.ForYear(year)
	if err != nil {
		return nil, err
	}

	freiberuf, err := sumIncome(s.db, userID, []models.IncomeStream{models.StreamFreiberuf}, year)
	if err != nil {
		return nil, err
	}
	gewerbe, err := sumIncome(s.db, userID, []models.IncomeStream{models.StreamGewerbe}, year)
	if err != nil {
		return nil, err
	}

	status := calculator.Abfaerbung(params, freiberuf, gewerbe)
	return &status, nil
}

// GewerbesteuerThreshold returns the Freibetrag proximity status for the year.
func (s *statusService) GewerbesteuerThreshold(userID string, year int) (*calculator.GewerbesteuerThresholdStatus, error) {
	params, err := taxrates.ForYear(year)
	if err != nil {
		return nil, err
	}

	profit, err := s.streamProfit(userID, models.StreamGewerbe, year)
	if err != nil {
		return nil, err
	}

	status := calculator.GewerbesteuerThreshold(params, profit, monthsElapsed(year, time.Now()))
	return &status, nil
}

// MandatoryFiling returns the §46 EStG filing obligation status for the year.
func (s *statusService) MandatoryFiling(userID string, year int) (*calculator.MandatoryFilingStatus, error) {
	params, err := taxrates.ForYear(year)
	if err != nil {
		return nil, err
	}

	freiberufProfit, err := s.streamProfit(userID, models.StreamFreiberuf, year)
	if err != nil {
		return nil, err
	}
	gewerbeProfit, err := s.streamProfit(userID, models.StreamGewerbe, year)
	if err != nil {
		return nil, err
	}

	sideIncome := decimal.Max(freiberufProfit.Add(gewerbeProfit), decimal.Zero)
	status := calculator.MandatoryFiling(params, sideIncome)
	return &status, nil
}

// Bilanzierung returns the §141 AO bookkeeping obligation status for the year.
func (s *statusService) Bilanzierung(userID string, year int) (*calculator.BilanzierungStatus, error) {
	params, err := taxrates.ForYear(year)
	if err != nil {
		return nil, err
	}

	revenue, err := sumIncome(s.db, userID, []models.IncomeStream{models.StreamGewerbe}, year)
	if err != nil {
		return nil, err
	}
	profit, err := s.streamProfit(userID, models.StreamGewerbe, year)
	if err != nil {
		return nil, err
	}

	status := calculator.Bilanzierung(params, revenue, profit)
	return &status, nil
}

// SocialInsurance returns the hauptberuflich-selbstständig risk for the year.
func (s *statusService) SocialInsurance(userID string, year int) (*calculator.SocialInsuranceStatus, error) {
	params, err := taxrates.ForYear(year)
	if err != nil {
		return nil, err
	}

	entries, err := s.insuranceEntries(userID, year)
	if err != nil {
		return nil, err
	}

	var seHours decimal.Decimal
	var employmentCents, seCents int64
	for _, e := range entries {
		seHours = seHours.Add(decimal.NewFromFloat(e.SelfEmployedHoursWeekly))
		employmentCents += e.EmploymentIncomeCents
		seCents += e.SelfEmployedIncomeCents
	}
	if n := len(entries); n > 0 {
		seHours = seHours.Div(decimal.NewFromInt(int64(n)))
	}

	status := calculator.SocialInsurance(params, seHours,
		calculator.FromCents(employmentCents), calculator.FromCents(seCents))
	return &status, nil
}

// ArbZG returns the combined working time status for the year.
func (s *statusService) ArbZG(userID string, year int) (*calculator.ArbZGStatus, error) {
	params, err := taxrates.ForYear(year)
	if err != nil {
		return nil, err
	}

	entries, err := s.insuranceEntries(userID, year)
	if err != nil {
		return nil, err
	}

	var employment, selfEmployed decimal.Decimal
	for _, e := range entries {
		employment = employment.Add(decimal.NewFromFloat(e.EmploymentHoursWeekly))
		selfEmployed = selfEmployed.Add(decimal.NewFromFloat(e.SelfEmployedHoursWeekly))
	}
	if n := len(entries); n > 0 {
		months := decimal.NewFromInt(int64(n))
		employment = employment.Div(months)
		selfEmployed = selfEmployed.Div(months)
	}

	status := calculator.ArbZG(params, employment, selfEmployed)
	return &status, nil
}

// streamProfit computes income minus allocated expenses for one stream.
func (s *statusService) streamProfit(userID string, stream models.IncomeStream, year int) (decimal.Decimal, error) {
	income, err := sumIncome(s.db, userID, []models.IncomeStream{stream}, year)
	if err != nil {
		return decimal.Zero, err
	}
	expenses, err := sumAllocatedExpenses(s.db, userID, stream, year)
	if err != nil {
		return decimal.Zero, err
	}
	return income.Sub(expenses), nil
}

func (s *statusService) insuranceEntries(userID string, year int) ([]models.SocialInsuranceEntry, error) {
	var entries []models.SocialInsuranceEntry
	if err := s.db.Where("user_id = ? AND year = ?", userID, year).Order("month").Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entries, nil
}
