package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dreistrom/internal/models"
	"dreistrom/internal/testutil"
)

func TestAssessService(t *testing.T) {
	t.Run("empty_ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxService(db)
		user := testutil.CreateTestUser(t, db)

		result, err := svc.Assess(user.ID, 2024)
		testutil.AssertNoError(t, err)
		if !result.TaxableIncome.IsZero() || !result.TotalTax.IsZero() {
			t.Errorf("expected a zero assessment, got %+v", result)
		}
	})

	t.Run("combines_all_streams", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestIncome(t, db, user.ID, models.StreamEmployment, 3000000, date2024(time.January))
		testutil.CreateTestIncome(t, db, user.ID, models.StreamFreiberuf, 2000000, date2024(time.March))
		testutil.CreateTestIncome(t, db, user.ID, models.StreamGewerbe, 1000000, date2024(time.May))
		testutil.CreateTestExpense(t, db, user.ID, models.StreamFreiberuf, 500000, date2024(time.April))

		result, err := svc.Assess(user.ID, 2024)
		testutil.AssertNoError(t, err)

		if !result.FreiberufProfit.Equal(decimal.NewFromInt(15000)) {
			t.Errorf("expected freiberuf profit 15000, got %s", result.FreiberufProfit)
		}
		if !result.GewerbeProfit.Equal(decimal.NewFromInt(10000)) {
			t.Errorf("expected gewerbe profit 10000, got %s", result.GewerbeProfit)
		}
		// 28770 + 15000 + 10000 - 36 = 53734
		if !result.TaxableIncome.Equal(decimal.NewFromInt(53734)) {
			t.Errorf("expected taxable 53734, got %s", result.TaxableIncome)
		}
		if !result.IncomeTax.IsPositive() {
			t.Errorf("expected positive income tax, got %s", result.IncomeTax)
		}
	})

	t.Run("entries_outside_year_ignored", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestIncome(t, db, user.ID, models.StreamFreiberuf, 2000000,
			time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))

		result, err := svc.Assess(user.ID, 2024)
		testutil.AssertNoError(t, err)
		if !result.TaxableIncome.IsZero() {
			t.Errorf("2025 income must not leak into 2024, got %s", result.TaxableIncome)
		}
	})

	t.Run("annualized_assessment_of_closed_year_matches_booked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestIncome(t, db, user.ID, models.StreamFreiberuf, 2000000, date2024(time.March))

		booked, err := svc.Assess(user.ID, 2024)
		testutil.AssertNoError(t, err)
		projected, err := svc.AssessAnnualized(user.ID, 2024)
		testutil.AssertNoError(t, err)

		if !projected.TaxableIncome.Equal(booked.TaxableIncome) || !projected.TotalTax.Equal(booked.TotalTax) {
			t.Errorf("closed years must not be scaled: booked %+v, projected %+v", booked, projected)
		}
	})
}

func TestEuer(t *testing.T) {
	t.Run("per_stream", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestIncome(t, db, user.ID, models.StreamFreiberuf, 2000000, date2024(time.March))
		testutil.CreateTestExpense(t, db, user.ID, models.StreamFreiberuf, 300000, date2024(time.April))
		testutil.CreateTestIncome(t, db, user.ID, models.StreamGewerbe, 1000000, date2024(time.May))

		euer, err := svc.Euer(user.ID, models.StreamFreiberuf, 2024)
		testutil.AssertNoError(t, err)

		if !euer.Income.Equal(decimal.NewFromInt(20000)) {
			t.Errorf("expected income 20000, got %s", euer.Income)
		}
		if !euer.Expenses.Equal(decimal.NewFromInt(3000)) {
			t.Errorf("expected expenses 3000, got %s", euer.Expenses)
		}
		if !euer.Profit.Equal(decimal.NewFromInt(17000)) {
			t.Errorf("expected profit 17000, got %s", euer.Profit)
		}
	})

	t.Run("allocated_expenses_split_across_streams", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxService(db)
		user := testutil.CreateTestUser(t, db)
		rule := testutil.CreateTestAllocationRule(t, db, user.ID, 60, 30, 10)

		expense := testutil.CreateTestExpense(t, db, user.ID, models.StreamFreiberuf, 100000, date2024(time.March))
		if err := db.Model(expense).Update("allocation_rule_id", rule.ID).Error; err != nil {
			t.Fatalf("failed to attach rule: %v", err)
		}

		freiberuf, err := svc.Euer(user.ID, models.StreamFreiberuf, 2024)
		testutil.AssertNoError(t, err)
		gewerbe, err := svc.Euer(user.ID, models.StreamGewerbe, 2024)
		testutil.AssertNoError(t, err)

		if !freiberuf.Expenses.Equal(decimal.NewFromInt(600)) {
			t.Errorf("expected 60%% of 1000, got %s", freiberuf.Expenses)
		}
		if !gewerbe.Expenses.Equal(decimal.NewFromInt(300)) {
			t.Errorf("expected 30%% of 1000, got %s", gewerbe.Expenses)
		}
	})

	t.Run("invalid_stream", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Euer(user.ID, models.StreamEmployment, 2024)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})
}

func TestDualEuer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaxService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestIncome(t, db, user.ID, models.StreamFreiberuf, 2000000, date2024(time.March))
	testutil.CreateTestIncome(t, db, user.ID, models.StreamGewerbe, 1000000, date2024(time.May))

	dual, err := svc.DualEuer(user.ID, 2024)
	testutil.AssertNoError(t, err)

	if dual.Freiberuf.Stream != models.StreamFreiberuf || dual.Gewerbe.Stream != models.StreamGewerbe {
		t.Errorf("streams must stay separate, got %+v", dual)
	}
	if !dual.CombinedProfit.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("expected combined profit 30000, got %s", dual.CombinedProfit)
	}
}

func TestGewerbesteuerService(t *testing.T) {
	t.Run("uses_user_hebesatz", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxService(db)
		user := testutil.CreateTestUser(t, db)
		if err := db.Model(user).Update("hebesatz", 490).Error; err != nil {
			t.Fatalf("failed to set hebesatz: %v", err)
		}
		testutil.CreateTestIncome(t, db, user.ID, models.StreamGewerbe, 3000000, date2024(time.March))

		result, err := svc.Gewerbesteuer(user.ID, 2024)
		testutil.AssertNoError(t, err)
		if !result.Hebesatz.Equal(decimal.NewFromInt(490)) {
			t.Errorf("expected the municipal 490, got %s", result.Hebesatz)
		}
		if !result.Gewerbesteuer.IsPositive() {
			t.Errorf("expected trade tax above the Freibetrag, got %s", result.Gewerbesteuer)
		}
	})

	t.Run("defaults_hebesatz", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxService(db)
		user := testutil.CreateTestUser(t, db)

		result, err := svc.Gewerbesteuer(user.ID, 2024)
		testutil.AssertNoError(t, err)
		if !result.Hebesatz.Equal(decimal.NewFromInt(410)) {
			t.Errorf("expected the statutory default 410, got %s", result.Hebesatz)
		}
	})
}

func TestReserve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaxService(db)
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestIncome(t, db, user.ID, models.StreamFreiberuf, 2000000, date2024(time.March))

	result, err := svc.Reserve(user.ID, 2024, decimal.Zero)
	testutil.AssertNoError(t, err)

	// 2024 is closed, so the profit is not annualized further.
	if !result.AnnualReserve.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("expected 30%% of 20000, got %s", result.AnnualReserve)
	}
	if result.MonthsRemaining != 0 {
		t.Errorf("expected no months remaining in a closed year, got %d", result.MonthsRemaining)
	}
}
