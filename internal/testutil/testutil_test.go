package testutil_test

import (
	"testing"
	"time"

	"dreistrom/internal/errors"
	"dreistrom/internal/models"
	"dreistrom/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{
		"users", "income_entries", "expense_entries", "allocation_rules",
		"clients", "invoices", "invoice_sequences", "compliance_events",
		"registration_steps", "decision_points", "vorauszahlungen",
		"social_insurance_entries", "depreciation_assets", "payout_batches",
		"payout_rows", "audit_logs",
	} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	income := testutil.CreateTestIncome(t, db, user.ID, models.StreamFreiberuf, 100_00, time.Now())
	if income.UserID != user.ID {
		t.Errorf("income entry should belong to the user")
	}

	client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "FR")
	if client.UstIDNr == "" {
		t.Error("foreign B2B client should get a USt-IdNr")
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.ErrNotFound
	testutil.AssertAppError(t, err, "NOT_FOUND")
}
