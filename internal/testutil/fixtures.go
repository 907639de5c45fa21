package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"dreistrom/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestIncome creates an income entry on the given stream and date.
func CreateTestIncome(t *testing.T, db *gorm.DB, userID string, stream models.IncomeStream, amountCents int64, date time.Time) *models.IncomeEntry {
	t.Helper()

	entry := &models.IncomeEntry{
		UserID:      userID,
		Stream:      stream,
		AmountCents: amountCents,
		Currency:    "EUR",
		EntryDate:   date,
		Source:      fmt.Sprintf("Test Source %d", nextID()),
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test income entry: %v", err)
	}
	return entry
}

// CreateTestExpense creates an in-year deductible expense entry on the given
// stream and date. Capitalized bookings are made through the expense service
// instead, so the flag is set directly here.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string, stream models.IncomeStream, amountCents int64, date time.Time) *models.ExpenseEntry {
	t.Helper()

	entry := &models.ExpenseEntry{
		UserID:      userID,
		Stream:      stream,
		AmountCents: amountCents,
		Currency:    "EUR",
		Category:    models.ExpenseOther,
		EntryDate:   date,
		GWG:         true,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test expense entry: %v", err)
	}
	return entry
}

// CreateTestAllocationRule creates a rule with the given split.
func CreateTestAllocationRule(t *testing.T, db *gorm.DB, userID string, freiberuf, gewerbe, personal int) *models.AllocationRule {
	t.Helper()

	rule := &models.AllocationRule{
		UserID:       userID,
		Name:         fmt.Sprintf("Test Rule %d", nextID()),
		FreiberufPct: freiberuf,
		GewerbePct:   gewerbe,
		PersonalPct:  personal,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test allocation rule: %v", err)
	}
	return rule
}

// CreateTestClient creates a client with the given type and country.
func CreateTestClient(t *testing.T, db *gorm.DB, userID string, clientType models.ClientType, country string) *models.Client {
	t.Helper()

	client := &models.Client{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Client %d", nextID()),
		ClientType: clientType,
		Country:    country,
		Active:     true,
	}
	if clientType == models.ClientB2B && country != "DE" {
		client.UstIDNr = country + "123456789"
	}
	if err := db.Create(client).Error; err != nil {
		t.Fatalf("failed to create test client: %v", err)
	}
	return client
}

// CreateTestInvoice creates a draft invoice for the given client.
func CreateTestInvoice(t *testing.T, db *gorm.DB, userID, clientID string, stream models.IncomeStream, netCents int64) *models.Invoice {
	t.Helper()

	now := time.Now()
	inv := &models.Invoice{
		UserID:    userID,
		Stream:    stream,
		ClientID:  clientID,
		IssueDate: now,
		DueDate:   now.AddDate(0, 0, 14),
		LineItems: []models.LineItem{{
			Description:   fmt.Sprintf("Test Position %d", nextID()),
			Quantity:      1,
			UnitNetCents:  netCents,
			TotalNetCents: netCents,
		}},
		NetCents:     netCents,
		VatCents:     0,
		GrossCents:   netCents,
		Currency:     "EUR",
		VatTreatment: models.VatRegular,
		Status:       models.InvoiceDraft,
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("failed to create test invoice: %v", err)
	}
	return inv
}

// CreateTestSocialInsuranceEntry creates one monthly entry.
func CreateTestSocialInsuranceEntry(t *testing.T, db *gorm.DB, userID string, year, month int, seHours float64, employmentCents, seCents int64) *models.SocialInsuranceEntry {
	t.Helper()

	entry := &models.SocialInsuranceEntry{
		UserID:                  userID,
		Year:                    year,
		Month:                   month,
		EmploymentHoursWeekly:   40,
		SelfEmployedHoursWeekly: seHours,
		EmploymentIncomeCents:   employmentCents,
		SelfEmployedIncomeCents: seCents,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test social insurance entry: %v", err)
	}
	return entry
}
