package services

import (
	"strings"
	"testing"

	"dreistrom/internal/models"
	"dreistrom/internal/testutil"
)

// appleRow builds one tab-separated line of an App Store Connect financial
// report, filling only the columns the importer reads.
func appleRow(date, productID, qty, net, currency, flag, title, country string) string {
	fields := make([]string, 18)
	fields[0] = date
	fields[1] = productID
	fields[5] = qty
	fields[7] = net
	fields[8] = currency
	fields[9] = flag
	fields[13] = title
	fields[17] = country
	return strings.Join(fields, "\t")
}

func appleReport(rows ...string) string {
	header := appleRow("Start Date", "Vendor Identifier", "Quantity", "Partner Share",
		"Currency", "Sales or Return", "Title", "Country Of Sale")
	return header + "\n" + strings.Join(rows, "\n") + "\n"
}

const googleHeader = "Transaction Date,Transaction Type,Product ID,Product Title," +
	"Buyer Country,Currency,Gross Amount,Commission Amount,Net Amount"

func TestImportApple(t *testing.T) {
	t.Run("books_sales_rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewImportService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		content := appleReport(
			appleRow("01/01/2025", "com.app.pro", "2", "7.00", "EUR", "S", "Pro App", "DE"),
			appleRow("01/05/2025", "com.app.pro", "1", "3.50", "EUR", "S", "Pro App", "FR"),
			appleRow("01/07/2025", "com.app.pro", "1", "3.50", "EUR", "R", "Pro App", "DE"),
		)

		result, err := svc.ImportApple(user.ID, content, false)
		testutil.AssertNoError(t, err)

		if result.Imported != 2 || result.Skipped != 1 {
			t.Errorf("expected 2 imported and the refund skipped, got %+v", result)
		}
		if result.Batch.Platform != models.PlatformApple {
			t.Errorf("expected APPLE, got %s", result.Batch.Platform)
		}
		if result.Batch.NetTotalCents != 1050 {
			t.Errorf("expected net total 1050 cents, got %d", result.Batch.NetTotalCents)
		}
		if result.Batch.PeriodStart.Month() != 1 || result.Batch.PeriodStart.Day() != 1 {
			t.Errorf("expected the earliest sale as period start, got %s", result.Batch.PeriodStart)
		}

		// The gross is reconstructed from the 30% commission.
		var rows []models.PayoutRow
		if err := db.Where("batch_ref = ?", result.Batch.ID).Order("net_cents DESC").Find(&rows).Error; err != nil {
			t.Fatalf("load rows failed: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 stored rows, got %d", len(rows))
		}
		if rows[0].GrossCents != 1000 || rows[0].CommissionCents != 300 {
			t.Errorf("expected gross 1000 and commission 300, got %d/%d",
				rows[0].GrossCents, rows[0].CommissionCents)
		}
		if rows[0].Quantity != 2 || rows[0].Country != "DE" {
			t.Errorf("unexpected row data: %+v", rows[0])
		}
	})

	t.Run("small_business_program_rate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewImportService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		content := appleReport(
			appleRow("02/01/2025", "com.app.pro", "1", "7.00", "EUR", "S", "Pro App", "DE"),
		)

		result, err := svc.ImportApple(user.ID, content, true)
		testutil.AssertNoError(t, err)

		var row models.PayoutRow
		if err := db.First(&row, "batch_ref = ?", result.Batch.ID).Error; err != nil {
			t.Fatalf("load row failed: %v", err)
		}
		// 7.00 / 0.85 rounds to 8.24 at the 15% rate.
		if row.GrossCents != 824 || row.CommissionCents != 124 {
			t.Errorf("expected gross 824 and commission 124, got %d/%d",
				row.GrossCents, row.CommissionCents)
		}
	})

	t.Run("creates_commercial_income_entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewImportService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		content := appleReport(
			appleRow("03/01/2025", "com.app.pro", "1", "10.00", "EUR", "S", "Pro App", "DE"),
		)

		result, err := svc.ImportApple(user.ID, content, false)
		testutil.AssertNoError(t, err)

		var batch models.PayoutBatch
		if err := db.First(&batch, "id = ?", result.Batch.ID).Error; err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		if batch.IncomeEntryID == nil {
			t.Fatal("expected the batch linked to an income entry")
		}

		var entry models.IncomeEntry
		if err := db.First(&entry, "id = ?", *batch.IncomeEntryID).Error; err != nil {
			t.Fatalf("load entry failed: %v", err)
		}
		if entry.Stream != models.StreamGewerbe {
			t.Errorf("payout income must be GEWERBE, got %s", entry.Stream)
		}
		if entry.AmountCents != 1000 {
			t.Errorf("expected the net total booked, got %d", entry.AmountCents)
		}
		if entry.Source != "apple-payout" {
			t.Errorf("expected source apple-payout, got %q", entry.Source)
		}
	})

	t.Run("short_rows_are_skipped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewImportService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		content := appleReport(
			appleRow("04/01/2025", "com.app.pro", "1", "7.00", "EUR", "S", "Pro App", "DE"),
			"truncated\tline",
		)

		result, err := svc.ImportApple(user.ID, content, false)
		testutil.AssertNoError(t, err)
		if result.Imported != 1 || result.Skipped != 1 {
			t.Errorf("expected the short row skipped, got %+v", result)
		}
	})

	t.Run("no_importable_rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewImportService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		content := appleReport(
			appleRow("05/01/2025", "com.app.pro", "1", "7.00", "EUR", "R", "Pro App", "DE"),
		)

		_, err := svc.ImportApple(user.ID, content, false)
		testutil.AssertAppError(t, err, "UNPARSABLE_FILE")
	})
}

func TestImportGoogle(t *testing.T) {
	t.Run("books_charge_rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewImportService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		content := googleHeader + "\n" +
			"2025-01-15,Charge,com.app.pro,Pro App,DE,EUR,10.00,3.00,7.00\n" +
			"2025-01-15,Google fee,com.app.pro,Pro App,DE,EUR,-3.00,0.00,-3.00\n" +
			"2025-01-20,Charge,com.app.pro,Pro App,AT,EUR,5.00,1.50,3.50\n"

		result, err := svc.ImportGoogle(user.ID, content)
		testutil.AssertNoError(t, err)

		if result.Imported != 2 || result.Skipped != 1 {
			t.Errorf("expected fee rows skipped, got %+v", result)
		}
		if result.Batch.Platform != models.PlatformGoogle {
			t.Errorf("expected GOOGLE, got %s", result.Batch.Platform)
		}
		if result.Batch.NetTotalCents != 1050 {
			t.Errorf("expected net total 1050 cents, got %d", result.Batch.NetTotalCents)
		}

		// Google reports the commission per row, no reconstruction.
		var row models.PayoutRow
		if err := db.First(&row, "batch_ref = ? AND country = ?", result.Batch.ID, "DE").Error; err != nil {
			t.Fatalf("load row failed: %v", err)
		}
		if row.GrossCents != 1000 || row.CommissionCents != 300 || row.NetCents != 700 {
			t.Errorf("unexpected amounts: %+v", row)
		}
	})

	t.Run("garbage_content", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewImportService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.ImportGoogle(user.ID, "not,a\nreal,report\n")
		testutil.AssertAppError(t, err, "UNPARSABLE_FILE")
	})
}

func TestDuplicateImport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewImportService(db, newTestNotifier(db))
	user := testutil.CreateTestUser(t, db)

	content := googleHeader + "\n" +
		"2025-02-15,Charge,com.app.pro,Pro App,DE,EUR,10.00,3.00,7.00\n"

	if _, err := svc.ImportGoogle(user.ID, content); err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	_, err := svc.ImportGoogle(user.ID, content)
	testutil.AssertAppError(t, err, "DUPLICATE_IMPORT")

	// A different user may import the same report.
	other := testutil.CreateTestUser(t, db)
	_, err = svc.ImportGoogle(other.ID, content)
	testutil.AssertNoError(t, err)
}

func TestListBatches(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewImportService(db, newTestNotifier(db))
	user := testutil.CreateTestUser(t, db)

	first := googleHeader + "\n2025-01-15,Charge,a,A,DE,EUR,10.00,3.00,7.00\n"
	second := googleHeader + "\n2025-02-15,Charge,b,B,DE,EUR,20.00,6.00,14.00\n"

	if _, err := svc.ImportGoogle(user.ID, first); err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	if _, err := svc.ImportGoogle(user.ID, second); err != nil {
		t.Fatalf("second import failed: %v", err)
	}

	batches, err := svc.ListBatches(user.ID)
	testutil.AssertNoError(t, err)
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
}
