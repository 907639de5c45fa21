package services

import (
	"time"

	"github.com/shopspring/decimal"

	"dreistrom/internal/calculator"
	"dreistrom/internal/models"
	"dreistrom/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	UpdateTaxProfile(userID string, kleinunternehmer bool, hebesatz int) (*models.User, error)
}

// IncomeServicer defines the contract for the income ledger.
type IncomeServicer interface {
	CreateEntry(userID string, stream models.IncomeStream, amountCents int64, entryDate time.Time, source, description string, clientID *string) (*models.IncomeEntry, error)
	GetUserEntries(userID string, page pagination.PageRequest, filter IncomeFilter) (*pagination.PageResponse[models.IncomeEntry], error)
	GetEntryByID(userID, entryID string) (*models.IncomeEntry, error)
	UpdateEntry(userID, entryID string, amountCents *int64, entryDate *time.Time, source, description string) (*models.IncomeEntry, error)
	DeleteEntry(userID, entryID string) error
}

// ExpenseServicer defines the contract for the expense ledger.
type ExpenseServicer interface {
	CreateEntry(userID string, stream models.IncomeStream, amountCents int64, category models.ExpenseCategory, entryDate time.Time, description string, allocationRuleID *string) (*models.ExpenseEntry, error)
	GetUserEntries(userID string, page pagination.PageRequest, stream *models.IncomeStream) (*pagination.PageResponse[models.ExpenseEntry], error)
	GetEntryByID(userID, entryID string) (*models.ExpenseEntry, error)
	UpdateEntry(userID, entryID string, amountCents *int64, category *models.ExpenseCategory, entryDate *time.Time, description string, allocationRuleID *string) (*models.ExpenseEntry, error)
	DeleteEntry(userID, entryID string) error
}

// AllocationRuleServicer defines the contract for expense allocation rules.
type AllocationRuleServicer interface {
	CreateRule(userID, name string, freiberufPct, gewerbePct, personalPct int) (*models.AllocationRule, error)
	GetUserRules(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.AllocationRule], error)
	GetRuleByID(userID, ruleID string) (*models.AllocationRule, error)
	UpdateRule(userID, ruleID, name string, freiberufPct, gewerbePct, personalPct int) (*models.AllocationRule, error)
	DeleteRule(userID, ruleID string) error
}

// ClientServicer defines the contract for invoicing counterparties.
type ClientServicer interface {
	CreateClient(userID, name string, clientType models.ClientType, country, ustIDNr, email string) (*models.Client, error)
	GetUserClients(userID string, page pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.Client], error)
	GetClientByID(userID, clientID string) (*models.Client, error)
	UpdateClient(userID, clientID, name, country, ustIDNr, email string, active *bool) (*models.Client, error)
	DeleteClient(userID, clientID string) error
}

// StatusServicer defines the contract for the threshold monitors.
type StatusServicer interface {
	Kleinunternehmer(userID string, year int) (*calculator.KleinunternehmerStatus, error)
	Abfaerbung(userID string, year int) (*calculator.AbfaerbungStatus, error)
	GewerbesteuerThreshold(userID string, year int) (*calculator.GewerbesteuerThresholdStatus, error)
	MandatoryFiling(userID string, year int) (*calculator.MandatoryFilingStatus, error)
	Bilanzierung(userID string, year int) (*calculator.BilanzierungStatus, error)
	SocialInsurance(userID string, year int) (*calculator.SocialInsuranceStatus, error)
	ArbZG(userID string, year int) (*calculator.ArbZGStatus, error)
}

// SocialInsuranceServicer defines the contract for the monthly hours ledger.
type SocialInsuranceServicer interface {
	UpsertEntry(userID string, year, month int, employmentHours, selfEmployedHours float64, employmentCents, selfEmployedCents int64) (*models.SocialInsuranceEntry, error)
	GetEntries(userID string, year int) ([]models.SocialInsuranceEntry, error)
}

// TaxServicer defines the contract for the tax assessment and the EÜR.
type TaxServicer interface {
	Assess(userID string, year int) (*calculator.AssessmentResult, error)
	AssessAnnualized(userID string, year int) (*calculator.AssessmentResult, error)
	Gewerbesteuer(userID string, year int) (*calculator.GewerbesteuerResult, error)
	Euer(userID string, stream models.IncomeStream, year int) (*EuerResult, error)
	DualEuer(userID string, year int) (*DualEuerResult, error)
	Reserve(userID string, year int, alreadyReserved decimal.Decimal) (*calculator.TaxReserveResult, error)
}

// VorauszahlungServicer defines the contract for the prepayment schedule.
type VorauszahlungServicer interface {
	Generate(userID string, year int) ([]models.Vorauszahlung, error)
	List(userID string, year int) ([]models.Vorauszahlung, error)
	Pay(userID, vorauszahlungID string, paidCents int64) (*models.Vorauszahlung, error)
	Deviation(userID string, year int) (*calculator.DeviationResult, error)
}

// CalendarServicer defines the contract for the compliance calendar.
type CalendarServicer interface {
	Generate(userID string, year int) ([]models.ComplianceEvent, error)
	List(userID string, year int) ([]models.ComplianceEvent, error)
	CreateCustomEvent(userID, title, description string, dueDate time.Time) (*models.ComplianceEvent, error)
	Complete(userID, eventID string) (*models.ComplianceEvent, error)
	Cancel(userID, eventID string) (*models.ComplianceEvent, error)
}

// FeatureFlagServicer defines the contract for the feature flag projection.
type FeatureFlagServicer interface {
	Flags(userID string, year int) (*calculator.UserFeatureFlags, error)
	FlagsNow(userID string) (*calculator.UserFeatureFlags, error)
}

// OnboardingServicer defines the contract for the registration workflow.
type OnboardingServicer interface {
	Initialize(userID string) (*OnboardingProgress, error)
	Progress(userID string) (*OnboardingProgress, error)
	StartStep(userID string, stepNumber int) (*StepWithDecisions, error)
	CompleteStep(userID string, stepNumber int) (*StepWithDecisions, error)
	SkipStep(userID string, stepNumber int) (*StepWithDecisions, error)
	Decide(userID, decisionID, choice string) (*models.DecisionPoint, error)
	EvaluateKleinunternehmer(userID string, year int) (*calculator.DecisionResult, error)
}

// InvoiceServicer defines the contract for the invoice lifecycle.
type InvoiceServicer interface {
	CreateDraft(userID string, input InvoiceInput) (*models.Invoice, error)
	UpdateDraft(userID, invoiceID string, input InvoiceInput) (*models.Invoice, error)
	Get(userID, invoiceID string) (*models.Invoice, error)
	List(userID string, filter InvoiceFilter) ([]models.Invoice, error)
	Transition(userID, invoiceID string, target models.InvoiceStatus) (*models.Invoice, error)
	DeleteDraft(userID, invoiceID string) error
}

// DeductionServicer defines the contract for home office and AfA.
type DeductionServicer interface {
	HomeOffice(userID string, input HomeOfficeInput) (*calculator.HomeOfficeResult, error)
	CreateAsset(userID string, input AssetInput) (*models.DepreciationAsset, error)
	ListAssets(userID string) ([]models.DepreciationAsset, error)
	Schedule(userID, assetID string) (*AssetSchedule, error)
	DeleteAsset(userID, assetID string) error
}

// ImportServicer defines the contract for marketplace payout imports.
type ImportServicer interface {
	ImportApple(userID, content string, smallBusinessProgram bool) (*ImportResult, error)
	ImportGoogle(userID, content string) (*ImportResult, error)
	ListBatches(userID string) ([]models.PayoutBatch, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
