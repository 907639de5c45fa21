package services

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dreistrom/internal/calculator"
	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/logger"
	"dreistrom/internal/models"
)

// Marketplace commission rates. Apple halves its cut for members of the
// small business program.
var (
	appleCommissionRate    = decimal.RequireFromString("0.30")
	appleSmallBusinessRate = decimal.RequireFromString("0.15")
)

const appleDateFormat = "01/02/2006"

// importService parses marketplace payout reports into the ledger.
// Marketplace sales carry no German VAT for the developer (§3 Abs. 3a UStG,
// the platform is the deemed supplier), so every imported row books VAT zero.
type importService struct {
	db       *gorm.DB
	notifier *Notifier
}

// NewImportService creates a new ImportServicer.
func NewImportService(db *gorm.DB, notifier *Notifier) ImportServicer {
	return &importService{db: db, notifier: notifier}
}

// ImportResult summarizes one imported batch.
type ImportResult struct {
	Batch    models.PayoutBatch `json:"batch"`
	Imported int                `json:"imported"`
	Skipped  int                `json:"skipped"`
}

// ImportApple parses an App Store Connect financial report (tab-separated).
// Rows whose Sales-or-Return flag is not "S" are skipped; the partner share
// is the net amount and the gross is reconstructed from the commission rate.
func (s *importService) ImportApple(userID, content string, smallBusinessProgram bool) (*ImportResult, error) {
	rate := appleCommissionRate
	if smallBusinessProgram {
		rate = appleSmallBusinessRate
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrUnparsableFile, fmt.Sprintf("Invalid Apple CSV format: %v", err))
	}
	if len(records) < 2 {
		return nil, apperrors.WithMessage(apperrors.ErrUnparsableFile, "Apple report contains no data rows")
	}

	var rows []models.PayoutRow
	var periodStart time.Time
	skipped := 0
	for _, fields := range records[1:] {
		if len(fields) < 18 {
			skipped++
			continue
		}

		startDate, err := time.Parse(appleDateFormat, strings.TrimSpace(fields[0]))
		if err != nil {
			logger.Get().Warnw("skipping unparseable apple row", "error", err)
			skipped++
			continue
		}
		if strings.ToUpper(strings.TrimSpace(fields[9])) != "S" {
			skipped++
			continue
		}

		qty, err := strconv.Atoi(strings.TrimSpace(fields[5]))
		if err != nil {
			skipped++
			continue
		}
		net, err := decimal.NewFromString(strings.TrimSpace(fields[7]))
		if err != nil {
			skipped++
			continue
		}

		// net = gross * (1 - rate), so gross = net / (1 - rate).
		gross := net.Div(decimal.NewFromInt(1).Sub(rate)).Round(2)
		commission := gross.Sub(net)

		if periodStart.IsZero() || startDate.Before(periodStart) {
			periodStart = startDate
		}

		rows = append(rows, models.PayoutRow{
			UserID:          userID,
			Country:         strings.ToUpper(strings.TrimSpace(fields[17])),
			Currency:        strings.ToUpper(strings.TrimSpace(fields[8])),
			ProductID:       strings.TrimSpace(fields[1]),
			Title:           strings.TrimSpace(fields[13]),
			Quantity:        qty,
			NetCents:        calculator.ToCents(net),
			CommissionCents: calculator.ToCents(commission),
			GrossCents:      calculator.ToCents(gross),
		})
	}

	return s.storeBatch(userID, models.PlatformApple, content, periodStart, rows, skipped)
}

// googleColumns is the expected header of a Play Console earnings report.
var googleColumns = []string{
	"Transaction Date", "Transaction Type", "Product ID", "Product Title",
	"Buyer Country", "Currency", "Gross Amount", "Commission Amount", "Net Amount",
}

// ImportGoogle parses a Play Console earnings report (comma-separated).
// Google reports carry the commission per row, so no rate reconstruction is
// needed; only "Charge" rows book revenue.
func (s *importService) ImportGoogle(userID, content string) (*ImportResult, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrUnparsableFile, fmt.Sprintf("Invalid Google CSV format: %v", err))
	}
	if len(records) < 2 || len(records[0]) < len(googleColumns) {
		return nil, apperrors.WithMessage(apperrors.ErrUnparsableFile, "Google report contains no data rows")
	}

	var rows []models.PayoutRow
	var periodStart time.Time
	skipped := 0
	for _, fields := range records[1:] {
		if len(fields) < len(googleColumns) {
			skipped++
			continue
		}

		txDate, err := time.Parse("2006-01-02", strings.TrimSpace(fields[0]))
		if err != nil {
			logger.Get().Warnw("skipping unparseable google row", "error", err)
			skipped++
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(fields[1]), "Charge") {
			skipped++
			continue
		}

		gross, gerr := decimal.NewFromString(strings.TrimSpace(fields[6]))
		commission, cerr := decimal.NewFromString(strings.TrimSpace(fields[7]))
		net, nerr := decimal.NewFromString(strings.TrimSpace(fields[8]))
		if gerr != nil || cerr != nil || nerr != nil {
			skipped++
			continue
		}

		if periodStart.IsZero() || txDate.Before(periodStart) {
			periodStart = txDate
		}

		rows = append(rows, models.PayoutRow{
			UserID:          userID,
			Country:         strings.ToUpper(strings.TrimSpace(fields[4])),
			Currency:        strings.ToUpper(strings.TrimSpace(fields[5])),
			ProductID:       strings.TrimSpace(fields[2]),
			Title:           strings.TrimSpace(fields[3]),
			Quantity:        1,
			NetCents:        calculator.ToCents(net),
			CommissionCents: calculator.ToCents(commission),
			GrossCents:      calculator.ToCents(gross),
		})
	}

	return s.storeBatch(userID, models.PlatformGoogle, content, periodStart, rows, skipped)
}

// ListBatches returns the imported batches, newest first.
func (s *importService) ListBatches(userID string) ([]models.PayoutBatch, error) {
	var batches []models.PayoutBatch
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&batches).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return batches, nil
}

// storeBatch persists the batch, its rows and the aggregated income entry.
// The batch ID is the content hash, so importing the same report twice is
// rejected as a duplicate.
func (s *importService) storeBatch(userID string, platform models.PayoutPlatform, content string, periodStart time.Time, rows []models.PayoutRow, skipped int) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrUnparsableFile, "No importable rows found in the report")
	}

	sum := sha256.Sum256([]byte(content))
	batchID := hex.EncodeToString(sum[:])

	var existing int64
	err := s.db.Model(&models.PayoutBatch{}).
		Where("user_id = ? AND batch_id = ?", userID, batchID).
		Count(&existing).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if existing > 0 {
		return nil, apperrors.ErrDuplicateImport
	}

	var netTotal int64
	for _, r := range rows {
		netTotal += r.NetCents
	}

	batch := models.PayoutBatch{
		UserID:        userID,
		Platform:      platform,
		BatchID:       batchID,
		PeriodStart:   periodStart,
		RowCount:      len(rows),
		NetTotalCents: netTotal,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&batch).Error; err != nil {
			return err
		}
		for i := range rows {
			rows[i].BatchRef = batch.ID
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}

		// Marketplace payouts are commercial income by nature.
		entry := models.IncomeEntry{
			UserID:      userID,
			Stream:      models.StreamGewerbe,
			AmountCents: netTotal,
			Currency:    "EUR",
			EntryDate:   periodStart,
			Source:      strings.ToLower(string(platform)) + "-payout",
			Description: fmt.Sprintf("%s payout import (%d Positionen)", platform, len(rows)),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.Model(&batch).Update("income_entry_id", entry.ID).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.LedgerChanged(userID)
	return &ImportResult{Batch: batch, Imported: len(rows), Skipped: skipped}, nil
}
