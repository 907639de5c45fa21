// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ustIDRegex matches EU VAT identification numbers: two-letter country
// prefix followed by 2-12 alphanumeric characters.
var ustIDRegex = regexp.MustCompile(`^[A-Z]{2}[0-9A-Za-z]{2,12}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("income_stream", validateIncomeStream)
		_ = v.RegisterValidation("self_employed_stream", validateSelfEmployedStream)
		_ = v.RegisterValidation("expense_category", validateExpenseCategory)
		_ = v.RegisterValidation("client_type", validateClientType)
		_ = v.RegisterValidation("invoice_status", validateInvoiceStatus)
		_ = v.RegisterValidation("vat_treatment", validateVatTreatment)
		_ = v.RegisterValidation("event_type", validateEventType)
		_ = v.RegisterValidation("payout_platform", validatePayoutPlatform)
		_ = v.RegisterValidation("decision_option", validateDecisionOption)
		_ = v.RegisterValidation("ust_id", validateUstID)
	}
}

func validateIncomeStream(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "EMPLOYMENT", "FREIBERUF", "GEWERBE":
		return true
	}
	return false
}

func validateSelfEmployedStream(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "FREIBERUF", "GEWERBE":
		return true
	}
	return false
}

func validateExpenseCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "OFFICE", "TRAVEL", "HARDWARE", "SOFTWARE", "INSURANCE", "RENT", "TELECOM", "TRAINING", "OTHER":
		return true
	}
	return false
}

func validateClientType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "B2B", "B2C":
		return true
	}
	return false
}

func validateInvoiceStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "DRAFT", "SENT", "PAID", "CANCELLED":
		return true
	}
	return false
}

func validateVatTreatment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "REGULAR", "REVERSE_CHARGE", "INTRA_EU", "THIRD_COUNTRY", "SMALL_BUSINESS":
		return true
	}
	return false
}

func validateEventType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "UST_VORANMELDUNG", "UST_ERKLAERUNG", "EST_ERKLAERUNG", "GEWST_ERKLAERUNG",
		"EST_VORAUSZAHLUNG", "GEWST_VORAUSZAHLUNG", "EUER_ABGABE",
		"ZM_REPORT", "SOCIAL_INSURANCE", "CUSTOM":
		return true
	}
	return false
}

func validatePayoutPlatform(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "APPLE", "GOOGLE":
		return true
	}
	return false
}

func validateDecisionOption(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "OPTION_A", "OPTION_B":
		return true
	}
	return false
}

func validateUstID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	return ustIDRegex.MatchString(s)
}
