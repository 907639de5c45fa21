package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dreistrom/internal/models"
	"dreistrom/internal/testutil"
)

func TestCreateExpenseEntry(t *testing.T) {
	t.Run("small_amount_is_deducted_in_year", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		entry, err := svc.CreateEntry(user.ID, models.StreamFreiberuf, 50000,
			models.ExpenseOffice, date2024(time.March), "Schreibtisch", nil)
		testutil.AssertNoError(t, err)

		if !entry.GWG {
			t.Error("expected a 500 euro booking flagged GWG")
		}
		var assets int64
		if err := db.Model(&models.DepreciationAsset{}).
			Where("expense_entry_id = ?", entry.ID).Count(&assets).Error; err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if assets != 0 {
			t.Errorf("GWG bookings must not be capitalized, got %d assets", assets)
		}
	})

	t.Run("amount_above_limit_is_capitalized", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		entry, err := svc.CreateEntry(user.ID, models.StreamGewerbe, 360000,
			models.ExpenseHardware, date2024(time.January), "Workstation", nil)
		testutil.AssertNoError(t, err)

		if entry.GWG {
			t.Error("a 3600 euro booking is above the GWG limit")
		}

		var asset models.DepreciationAsset
		if err := db.First(&asset, "expense_entry_id = ?", entry.ID).Error; err != nil {
			t.Fatalf("expected an auto-created asset: %v", err)
		}
		if asset.NetCostCents != 360000 || asset.UsefulLifeMonths != defaultUsefulLifeMonths {
			t.Errorf("unexpected asset: %+v", asset)
		}
		if asset.Stream != models.StreamGewerbe || asset.Name != "Workstation" {
			t.Errorf("asset must mirror the booking, got %+v", asset)
		}
	})

	t.Run("capitalized_cost_flows_through_afa", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, newTestNotifier(db))
		tax := NewTaxService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestIncome(t, db, user.ID, models.StreamGewerbe, 2000000, date2024(time.February))

		// 3600 over 36 months from January: 1200 per full year.
		_, err := svc.CreateEntry(user.ID, models.StreamGewerbe, 360000,
			models.ExpenseHardware, date2024(time.January), "Workstation", nil)
		testutil.AssertNoError(t, err)

		euer, err := tax.Euer(user.ID, models.StreamGewerbe, 2024)
		testutil.AssertNoError(t, err)

		if !euer.Expenses.IsZero() {
			t.Errorf("the capitalized cost must not appear in the expense sum, got %s", euer.Expenses)
		}
		if !euer.Depreciation.Equal(decimal.NewFromInt(1200)) {
			t.Errorf("expected 1200 AfA, got %s", euer.Depreciation)
		}
		if !euer.Profit.Equal(decimal.NewFromInt(18800)) {
			t.Errorf("expected profit 18800, got %s", euer.Profit)
		}
	})

	t.Run("validation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateEntry(user.ID, models.StreamFreiberuf, 0,
			models.ExpenseOther, date2024(time.March), "", nil)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})
}

func TestUpdateExpenseEntry(t *testing.T) {
	t.Run("amount_change_rederives_gwg", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		entry, err := svc.CreateEntry(user.ID, models.StreamFreiberuf, 50000,
			models.ExpenseHardware, date2024(time.March), "Monitor", nil)
		testutil.AssertNoError(t, err)

		raised := int64(360000)
		updated, err := svc.UpdateEntry(user.ID, entry.ID, &raised, nil, nil, "", nil)
		testutil.AssertNoError(t, err)

		if updated.GWG {
			t.Error("expected the raised amount to lose the GWG flag")
		}
		var asset models.DepreciationAsset
		if err := db.First(&asset, "expense_entry_id = ?", entry.ID).Error; err != nil {
			t.Fatalf("expected the booking capitalized after the update: %v", err)
		}
		if asset.NetCostCents != 360000 {
			t.Errorf("expected the asset cost synced, got %d", asset.NetCostCents)
		}
	})

	t.Run("lowering_below_limit_sheds_the_asset", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		entry, err := svc.CreateEntry(user.ID, models.StreamFreiberuf, 360000,
			models.ExpenseHardware, date2024(time.March), "Workstation", nil)
		testutil.AssertNoError(t, err)

		lowered := int64(50000)
		updated, err := svc.UpdateEntry(user.ID, entry.ID, &lowered, nil, nil, "", nil)
		testutil.AssertNoError(t, err)

		if !updated.GWG {
			t.Error("expected the lowered amount flagged GWG again")
		}
		var assets int64
		if err := db.Model(&models.DepreciationAsset{}).
			Where("expense_entry_id = ?", entry.ID).Count(&assets).Error; err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if assets != 0 {
			t.Errorf("expected the asset removed, got %d", assets)
		}
	})
}

func TestDeleteExpenseEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db, newTestNotifier(db))
	user := testutil.CreateTestUser(t, db)

	entry, err := svc.CreateEntry(user.ID, models.StreamGewerbe, 360000,
		models.ExpenseHardware, date2024(time.May), "Server", nil)
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.DeleteEntry(user.ID, entry.ID))

	var assets int64
	if err := db.Model(&models.DepreciationAsset{}).
		Where("expense_entry_id = ?", entry.ID).Count(&assets).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if assets != 0 {
		t.Errorf("expected the linked asset deleted with the entry, got %d", assets)
	}
}
