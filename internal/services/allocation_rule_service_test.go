package services

import (
	"testing"
	"time"

	"dreistrom/internal/models"
	"dreistrom/internal/pagination"
	"dreistrom/internal/testutil"
)

func TestCreateRule(t *testing.T) {
	t.Run("valid_split", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationRuleService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		rule, err := svc.CreateRule(user.ID, "Arbeitszimmer", 60, 30, 10)
		testutil.AssertNoError(t, err)
		if rule.ID == "" {
			t.Fatal("expected a rule ID")
		}
		if rule.FreiberufPct != 60 || rule.GewerbePct != 30 || rule.PersonalPct != 10 {
			t.Errorf("unexpected split: %+v", rule)
		}
	})

	t.Run("sum_below_hundred", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationRuleService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateRule(user.ID, "Broken", 50, 30, 10)
		testutil.AssertAppError(t, err, "ALLOCATION_SUM_INVALID")
	})

	t.Run("sum_above_hundred", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationRuleService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateRule(user.ID, "Broken", 60, 30, 20)
		testutil.AssertAppError(t, err, "ALLOCATION_SUM_INVALID")
	})
}

func TestUpdateRule(t *testing.T) {
	t.Run("revalidates_sum", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationRuleService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		rule := testutil.CreateTestAllocationRule(t, db, user.ID, 50, 50, 0)

		_, err := svc.UpdateRule(user.ID, rule.ID, "", 90, 20, 0)
		testutil.AssertAppError(t, err, "ALLOCATION_SUM_INVALID")
	})

	t.Run("updates_split", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationRuleService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		rule := testutil.CreateTestAllocationRule(t, db, user.ID, 50, 50, 0)

		updated, err := svc.UpdateRule(user.ID, rule.ID, "Neuer Name", 70, 20, 10)
		testutil.AssertNoError(t, err)
		if updated.FreiberufPct != 70 || updated.GewerbePct != 20 || updated.PersonalPct != 10 {
			t.Errorf("unexpected split after update: %+v", updated)
		}
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationRuleService(db, newTestNotifier(db))
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		rule := testutil.CreateTestAllocationRule(t, db, owner.ID, 50, 50, 0)

		_, err := svc.UpdateRule(other.ID, rule.ID, "", 50, 50, 0)
		testutil.AssertAppError(t, err, "ALLOCATION_RULE_NOT_FOUND")
	})
}

func TestDeleteRule(t *testing.T) {
	t.Run("unused_rule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationRuleService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		rule := testutil.CreateTestAllocationRule(t, db, user.ID, 100, 0, 0)

		testutil.AssertNoError(t, svc.DeleteRule(user.ID, rule.ID))

		_, err := svc.GetRuleByID(user.ID, rule.ID)
		testutil.AssertAppError(t, err, "ALLOCATION_RULE_NOT_FOUND")
	})

	t.Run("referenced_rule_blocked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationRuleService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		rule := testutil.CreateTestAllocationRule(t, db, user.ID, 100, 0, 0)

		expense := testutil.CreateTestExpense(t, db, user.ID, models.StreamFreiberuf, 5000, time.Now())
		if err := db.Model(expense).Update("allocation_rule_id", rule.ID).Error; err != nil {
			t.Fatalf("failed to attach rule: %v", err)
		}

		err := svc.DeleteRule(user.ID, rule.ID)
		testutil.AssertAppError(t, err, "ALLOCATION_RULE_IN_USE")
	})
}

func TestGetUserRules(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAllocationRuleService(db, newTestNotifier(db))
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	testutil.CreateTestAllocationRule(t, db, user.ID, 100, 0, 0)
	testutil.CreateTestAllocationRule(t, db, user.ID, 50, 50, 0)
	testutil.CreateTestAllocationRule(t, db, other.ID, 0, 100, 0)

	page, err := svc.GetUserRules(user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 2 {
		t.Errorf("expected 2 rules, got %d", page.TotalItems)
	}
}
