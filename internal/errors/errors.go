// Package errors provides custom error types for the DreiStrom API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrValidation     = &AppError{Code: "VALIDATION_ERROR", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrConflict       = &AppError{Code: "CONFLICT", Message: "The resource was modified concurrently", StatusCode: http.StatusConflict}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Workflow errors.
var (
	ErrDependencyUnmet    = &AppError{Code: "DEPENDENCY_UNMET", Message: "Required predecessor steps are not completed", StatusCode: http.StatusConflict}
	ErrInvalidState       = &AppError{Code: "INVALID_STATE", Message: "Operation not allowed in the current state", StatusCode: http.StatusConflict}
	ErrInvalidTransition  = &AppError{Code: "INVALID_TRANSITION", Message: "Status transition not allowed", StatusCode: http.StatusConflict}
	ErrStepNotFound       = &AppError{Code: "STEP_NOT_FOUND", Message: "Registration step not found", StatusCode: http.StatusNotFound}
	ErrDecisionNotFound   = &AppError{Code: "DECISION_NOT_FOUND", Message: "Decision point not found", StatusCode: http.StatusNotFound}
	ErrOnboardingNotFound = &AppError{Code: "ONBOARDING_NOT_FOUND", Message: "Onboarding has not been initialized", StatusCode: http.StatusNotFound}
)

// Statutory parameter errors.
var (
	ErrRatesUnavailable = &AppError{Code: "RATES_UNAVAILABLE", Message: "No statutory parameters available for the requested year", StatusCode: http.StatusUnprocessableEntity}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Ledger errors.
var (
	ErrIncomeEntryNotFound    = &AppError{Code: "INCOME_ENTRY_NOT_FOUND", Message: "Income entry not found", StatusCode: http.StatusNotFound}
	ErrExpenseEntryNotFound   = &AppError{Code: "EXPENSE_ENTRY_NOT_FOUND", Message: "Expense entry not found", StatusCode: http.StatusNotFound}
	ErrAllocationRuleNotFound = &AppError{Code: "ALLOCATION_RULE_NOT_FOUND", Message: "Allocation rule not found", StatusCode: http.StatusNotFound}
	ErrAllocationRuleInUse    = &AppError{Code: "ALLOCATION_RULE_IN_USE", Message: "Allocation rule is referenced by existing expenses", StatusCode: http.StatusConflict}
	ErrAllocationSum          = &AppError{Code: "ALLOCATION_SUM_INVALID", Message: "Allocation percentages must sum to exactly 100", StatusCode: http.StatusBadRequest}
	ErrClientNotFound         = &AppError{Code: "CLIENT_NOT_FOUND", Message: "Client not found", StatusCode: http.StatusNotFound}
)

// Invoice errors.
var (
	ErrInvoiceNotFound    = &AppError{Code: "INVOICE_NOT_FOUND", Message: "Invoice not found", StatusCode: http.StatusNotFound}
	ErrInvoiceNotEditable = &AppError{Code: "INVOICE_NOT_EDITABLE", Message: "Only draft invoices can be edited", StatusCode: http.StatusConflict}
)

// Calendar errors.
var (
	ErrEventNotFound = &AppError{Code: "EVENT_NOT_FOUND", Message: "Compliance event not found", StatusCode: http.StatusNotFound}
)

// Tax errors.
var (
	ErrVorauszahlungNotFound = &AppError{Code: "VORAUSZAHLUNG_NOT_FOUND", Message: "Vorauszahlung not found", StatusCode: http.StatusNotFound}
	ErrAssetNotFound         = &AppError{Code: "ASSET_NOT_FOUND", Message: "Depreciation asset not found", StatusCode: http.StatusNotFound}
)

// Import errors.
var (
	ErrDuplicateImport = &AppError{Code: "DUPLICATE_IMPORT", Message: "This payout batch has already been imported", StatusCode: http.StatusConflict}
	ErrUnparsableFile  = &AppError{Code: "UNPARSABLE_FILE", Message: "The uploaded report could not be parsed", StatusCode: http.StatusBadRequest}
)
