package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dreistrom/internal/calculator"
	"dreistrom/internal/models"
	"dreistrom/internal/testutil"
)

// date2024 returns a fixed entry date inside the closed 2024 tax year, so
// the monitors see twelve elapsed months and skip annualization.
func date2024(month time.Month) time.Time {
	return time.Date(2024, month, 15, 0, 0, 0, 0, time.UTC)
}

func TestKleinunternehmerStatus(t *testing.T) {
	t.Run("aggregates_self_employed_streams", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStatusService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestIncome(t, db, user.ID, models.StreamFreiberuf, 800000, date2024(time.March))
		testutil.CreateTestIncome(t, db, user.ID, models.StreamGewerbe, 400000, date2024(time.May))
		// Employment income never counts toward the §19 limit.
		testutil.CreateTestIncome(t, db, user.ID, models.StreamEmployment, 5000000, date2024(time.June))

		status, err := svc.Kleinunternehmer(user.ID, 2024)
		testutil.AssertNoError(t, err)

		if !status.ObservedRevenue.Equal(calculator.FromCents(1200000)) {
			t.Errorf("expected 12000 observed, got %s", status.ObservedRevenue)
		}
		if !status.Eligible {
			t.Error("expected eligible below both limits")
		}
	})

	t.Run("limit_exceeded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStatusService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestIncome(t, db, user.ID, models.StreamFreiberuf, 2300000, date2024(time.March))

		status, err := svc.Kleinunternehmer(user.ID, 2024)
		testutil.AssertNoError(t, err)
		if !status.CurrentExceeded || status.Eligible {
			t.Errorf("expected the limit exceeded, got %+v", status)
		}
	})
}

func TestAbfaerbungStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewStatusService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestIncome(t, db, user.ID, models.StreamFreiberuf, 9600000, date2024(time.March))
	testutil.CreateTestIncome(t, db, user.ID, models.StreamGewerbe, 400000, date2024(time.April))

	status, err := svc.Abfaerbung(user.ID, 2024)
	testutil.AssertNoError(t, err)

	// 4000 of 100000 is 4%, above the 3% geringfügigkeit ratio.
	if !status.Infected {
		t.Errorf("expected infection at 4%% commercial share, got %+v", status)
	}
}

func TestMandatoryFilingStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewStatusService(db)
	user := testutil.CreateTestUser(t, db)

	status, err := svc.MandatoryFiling(user.ID, 2024)
	testutil.AssertNoError(t, err)
	if status.FilingRequired {
		t.Error("no side income means no filing obligation")
	}

	testutil.CreateTestIncome(t, db, user.ID, models.StreamFreiberuf, 50000, date2024(time.March))

	status, err = svc.MandatoryFiling(user.ID, 2024)
	testutil.AssertNoError(t, err)
	if !status.FilingRequired {
		t.Error("500 of side profit exceeds the 410 threshold")
	}
}

func TestBilanzierungStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewStatusService(db)
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestIncome(t, db, user.ID, models.StreamGewerbe, 8100000, date2024(time.March))
	testutil.CreateTestExpense(t, db, user.ID, models.StreamGewerbe, 500000, date2024(time.April))

	status, err := svc.Bilanzierung(user.ID, 2024)
	testutil.AssertNoError(t, err)
	if status.Bilanzierungspflicht {
		t.Error("81000 revenue and 76000 profit are under both §141 AO limits")
	}

	// Profit above 80000 triggers the obligation even below the revenue limit.
	testutil.CreateTestIncome(t, db, user.ID, models.StreamGewerbe, 1000000, date2024(time.May))

	status, err = svc.Bilanzierung(user.ID, 2024)
	testutil.AssertNoError(t, err)
	if !status.Bilanzierungspflicht {
		t.Errorf("expected the profit limit crossed at 86000, got %+v", status)
	}
}

func TestSocialInsuranceStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewStatusService(db)
	user := testutil.CreateTestUser(t, db)

	// Two months averaging 25 self-employed hours, with self-employed
	// income above the employment income.
	testutil.CreateTestSocialInsuranceEntry(t, db, user.ID, 2024, 1, 24, 300000, 400000)
	testutil.CreateTestSocialInsuranceEntry(t, db, user.ID, 2024, 2, 26, 300000, 400000)

	status, err := svc.SocialInsurance(user.ID, 2024)
	testutil.AssertNoError(t, err)

	if !status.AvgSelfEmployedHours.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected average of 25 hours, got %s", status.AvgSelfEmployedHours)
	}
	if status.RiskLevel != calculator.RiskCritical {
		t.Errorf("expected CRITICAL with both signals, got %s", status.RiskLevel)
	}
}

func TestArbZGStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewStatusService(db)
	user := testutil.CreateTestUser(t, db)

	// Fixture employment hours are 40; 10 self-employed hours on top
	// exceed the 48 hour ArbZG ceiling.
	testutil.CreateTestSocialInsuranceEntry(t, db, user.ID, 2024, 1, 10, 300000, 100000)

	status, err := svc.ArbZG(user.ID, 2024)
	testutil.AssertNoError(t, err)

	if status.Compliant {
		t.Errorf("expected 50 combined hours to be non-compliant, got %+v", status)
	}
	if !status.AvgEmploymentHours.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected 40 employment hours, got %s", status.AvgEmploymentHours)
	}
	if !status.AvgSelfEmployedHours.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected 10 self-employed hours, got %s", status.AvgSelfEmployedHours)
	}
}

func TestStatusRatesUnavailable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewStatusService(db)
	user := testutil.CreateTestUser(t, db)

	_, err := svc.Kleinunternehmer(user.ID, 2019)
	testutil.AssertAppError(t, err, "RATES_UNAVAILABLE")
}
