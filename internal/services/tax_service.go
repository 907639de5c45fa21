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

// taxService aggregates the ledger into the yearly tax picture.
type taxService struct {
	db *gorm.DB
}

// NewTaxService creates a new TaxServicer.
func NewTaxService(db *gorm.DB) TaxServicer {
	return &taxService{db: db}
}

// yearSums holds the booked stream totals of one year in euros.
type yearSums struct {
	employment        decimal.Decimal
	freiberufIncome   decimal.Decimal
	gewerbeIncome     decimal.Decimal
	freiberufExpenses decimal.Decimal
	gewerbeExpenses   decimal.Decimal
}

func (s *taxService) streamSums(userID string, year int) (yearSums, error) {
	var sums yearSums
	var err error

	sums.employment, err = sumIncome(s.db, userID, []models.IncomeStream{models.StreamEmployment}, year)
	if err != nil {
		return sums, err
	}
	sums.freiberufIncome, err = sumIncome(s.db, userID, []models.IncomeStream{models.StreamFreiberuf}, year)
	if err != nil {
		return sums, err
	}
	sums.gewerbeIncome, err = sumIncome(s.db, userID, []models.IncomeStream{models.StreamGewerbe}, year)
	if err != nil {
		return sums, err
	}
	sums.freiberufExpenses, err = s.totalStreamExpenses(userID, models.StreamFreiberuf, year)
	if err != nil {
		return sums, err
	}
	sums.gewerbeExpenses, err = s.totalStreamExpenses(userID, models.StreamGewerbe, year)
	if err != nil {
		return sums, err
	}
	return sums, nil
}

// Assess computes the projected income tax for the year, including Soli.
func (s *taxService) Assess(userID string, year int) (*calculator.AssessmentResult, error) {
	params, err := taxrates.ForYear(year)
	if err != nil {
		return nil, err
	}

	sums, err := s.streamSums(userID, year)
	if err != nil {
		return nil, err
	}

	result := calculator.Assess(params, sums.employment, sums.freiberufIncome, sums.gewerbeIncome, sums.freiberufExpenses, sums.gewerbeExpenses)
	return &result, nil
}

// AssessAnnualized assesses the year with the running-year figures projected
// to a full year. While the year is in progress the booked stream sums are
// scaled by the elapsed months; closed years are assessed as booked.
func (s *taxService) AssessAnnualized(userID string, year int) (*calculator.AssessmentResult, error) {
	params, err := taxrates.ForYear(year)
	if err != nil {
		return nil, err
	}

	sums, err := s.streamSums(userID, year)
	if err != nil {
		return nil, err
	}

	months := monthsElapsed(year, time.Now())
	if months < 12 && months > 0 {
		factor := decimal.NewFromInt(12).Div(decimal.NewFromInt(int64(months)))
		sums.employment = sums.employment.Mul(factor).Round(2)
		sums.freiberufIncome = sums.freiberufIncome.Mul(factor).Round(2)
		sums.gewerbeIncome = sums.gewerbeIncome.Mul(factor).Round(2)
		sums.freiberufExpenses = sums.freiberufExpenses.Mul(factor).Round(2)
		sums.gewerbeExpenses = sums.gewerbeExpenses.Mul(factor).Round(2)
	}

	result := calculator.Assess(params, sums.employment, sums.freiberufIncome, sums.gewerbeIncome, sums.freiberufExpenses, sums.gewerbeExpenses)
	return &result, nil
}

// Gewerbesteuer computes the trade tax including the §35 EStG credit. The
// user's municipal hebesatz applies when set; otherwise the statutory
// default.
func (s *taxService) Gewerbesteuer(userID string, year int) (*calculator.GewerbesteuerResult, error) {
	params, err := taxrates.ForYear(year)
	if err != nil {
		return nil, err
	}

	assessment, err := s.Assess(userID, year)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	hebesatz := decimal.Zero
	if user.Hebesatz > 0 {
		hebesatz = decimal.NewFromInt(int64(user.Hebesatz))
	}

	result := calculator.Gewerbesteuer(params, assessment.GewerbeProfit, hebesatz, assessment.IncomeTax)
	return &result, nil
}

// EuerResult is the Einnahmen-Überschuss-Rechnung for one stream.
type EuerResult struct {
	Year         int                 `json:"year"`
	Stream       models.IncomeStream `json:"stream"`
	Income       decimal.Decimal     `json:"income"`
	Expenses     decimal.Decimal     `json:"expenses"`
	Depreciation decimal.Decimal     `json:"depreciation"`
	Profit       decimal.Decimal     `json:"profit"`
}

// DualEuerResult holds both self-employed streams side by side.
type DualEuerResult struct {
	Year           int             `json:"year"`
	Freiberuf      EuerResult      `json:"freiberuf"`
	Gewerbe        EuerResult      `json:"gewerbe"`
	CombinedProfit decimal.Decimal `json:"combined_profit"`
}

// Euer computes the EÜR for one self-employed stream.
func (s *taxService) Euer(userID string, stream models.IncomeStream, year int) (*EuerResult, error) {
	if stream != models.StreamFreiberuf && stream != models.StreamGewerbe {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "EÜR is only available for FREIBERUF and GEWERBE")
	}

	income, err := sumIncome(s.db, userID, []models.IncomeStream{stream}, year)
	if err != nil {
		return nil, err
	}
	expenses, err := sumAllocatedExpenses(s.db, userID, stream, year)
	if err != nil {
		return nil, err
	}
	afa, err := depreciationForYear(s.db, userID, stream, year)
	if err != nil {
		return nil, err
	}

	return &EuerResult{
		Year:         year,
		Stream:       stream,
		Income:       income,
		Expenses:     expenses,
		Depreciation: afa,
		Profit:       income.Sub(expenses).Sub(afa).Round(2),
	}, nil
}

// DualEuer computes both EÜRs; the streams must stay separate for the
// Finanzamt even when the same person runs both.
func (s *taxService) DualEuer(userID string, year int) (*DualEuerResult, error) {
	freiberuf, err := s.Euer(userID, models.StreamFreiberuf, year)
	if err != nil {
		return nil, err
	}
	gewerbe, err := s.Euer(userID, models.StreamGewerbe, year)
	if err != nil {
		return nil, err
	}

	return &DualEuerResult{
		Year:           year,
		Freiberuf:      *freiberuf,
		Gewerbe:        *gewerbe,
		CombinedProfit: freiberuf.Profit.Add(gewerbe.Profit),
	}, nil
}

// Reserve recommends a monthly tax reserve transfer. alreadyReserved is what
// the user has set aside this year so far.
func (s *taxService) Reserve(userID string, year int, alreadyReserved decimal.Decimal) (*calculator.TaxReserveResult, error) {
	params, err := taxrates.ForYear(year)
	if err != nil {
		return nil, err
	}

	dual, err := s.DualEuer(userID, year)
	if err != nil {
		return nil, err
	}

	result := calculator.TaxReserve(params, dual.CombinedProfit, alreadyReserved, decimal.Zero, year, time.Now())
	return &result, nil
}

// totalStreamExpenses is allocated expenses plus the stream's AfA.
func (s *taxService) totalStreamExpenses(userID string, stream models.IncomeStream, year int) (decimal.Decimal, error) {
	expenses, err := sumAllocatedExpenses(s.db, userID, stream, year)
	if err != nil {
		return decimal.Zero, err
	}
	afa, err := depreciationForYear(s.db, userID, stream, year)
	if err != nil {
		return decimal.Zero, err
	}
	return expenses.Add(afa), nil
}
