package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dreistrom/internal/calculator"
	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
)

// yearRange returns the inclusive date window of a calendar year.
func yearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	return start, end
}

// monthsElapsed returns how many months of the year count as observed when
// annualizing running-year figures.
func monthsElapsed(year int, now time.Time) int {
	switch {
	case now.Year() > year:
		return 12
	case now.Year() < year:
		return 12
	default:
		return int(now.Month())
	}
}

// sumIncome sums income entries for the given streams in euros.
func sumIncome(db *gorm.DB, userID string, streams []models.IncomeStream, year int) (decimal.Decimal, error) {
	start, end := yearRange(year)

	var cents int64
	err := db.Model(&models.IncomeEntry{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Where("user_id = ? AND stream IN ? AND entry_date BETWEEN ? AND ?", userID, streams, start, end).
		Scan(&cents).Error
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return calculator.FromCents(cents), nil
}

// sumAllocatedExpenses sums the share of expenses attributable to one stream.
// Expenses without an allocation rule count fully toward the stream they were
// booked on; expenses with a rule contribute their percentage share.
// Capitalized entries are excluded: their cost reaches the EÜR through the
// yearly AfA of the linked asset, not through the expense sum.
func sumAllocatedExpenses(db *gorm.DB, userID string, stream models.IncomeStream, year int) (decimal.Decimal, error) {
	start, end := yearRange(year)

	var expenses []models.ExpenseEntry
	err := db.Preload("AllocationRule").
		Where("user_id = ? AND entry_date BETWEEN ? AND ?", userID, start, end).
		Find(&expenses).Error
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := decimal.Zero
	for _, e := range expenses {
		if !e.GWG {
			continue
		}
		amount := calculator.FromCents(e.AmountCents)
		if e.AllocationRule != nil {
			var pct int
			switch stream {
			case models.StreamFreiberuf:
				pct = e.AllocationRule.FreiberufPct
			case models.StreamGewerbe:
				pct = e.AllocationRule.GewerbePct
			}
			if pct == 0 {
				continue
			}
			total = total.Add(amount.Mul(decimal.NewFromInt(int64(pct))).Div(decimal.NewFromInt(100)))
		} else if e.Stream == stream {
			total = total.Add(amount)
		}
	}
	return total.Round(2), nil
}

// depreciationForYear sums the AfA amounts of all non-GWG assets attributable
// to the stream and year.
func depreciationForYear(db *gorm.DB, userID string, stream models.IncomeStream, year int) (decimal.Decimal, error) {
	var assets []models.DepreciationAsset
	err := db.Where("user_id = ? AND stream = ? AND gwg = ?", userID, stream, false).
		Find(&assets).Error
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := decimal.Zero
	for _, a := range assets {
		total = total.Add(calculator.DepreciationForYear(
			calculator.FromCents(a.NetCostCents), a.AcquisitionDate, a.UsefulLifeMonths, year))
	}
	return total.Round(2), nil
}

// streamHasEntries reports whether the user booked any income on the stream
// during the year.
func streamHasEntries(db *gorm.DB, userID string, stream models.IncomeStream, year int) (bool, error) {
	start, end := yearRange(year)

	var count int64
	err := db.Model(&models.IncomeEntry{}).
		Where("user_id = ? AND stream = ? AND entry_date BETWEEN ? AND ?", userID, stream, start, end).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}
