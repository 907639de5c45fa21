package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/services"
)

// StatusHandler exposes the threshold monitors.
type StatusHandler struct {
	statusService services.StatusServicer
	siService     services.SocialInsuranceServicer
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(statusService services.StatusServicer, siService services.SocialInsuranceServicer) *StatusHandler {
	return &StatusHandler{statusService: statusService, siService: siService}
}

// respondStatus writes the monitor result, degrading gracefully for years
// without maintained statutory parameters.
func respondStatus(c *gin.Context, year int, result interface{}, err error) {
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrRatesUnavailable.Code {
			c.JSON(http.StatusOK, gin.H{"available": false, "year": year})
			return
		}
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true, "year": year, "status": result})
}

// Kleinunternehmer returns the §19 UStG monitor
// @Summary     Kleinunternehmer status
// @Description Revenue against the §19 UStG limits, with straight-line annualization for the running year
// @Tags        vat
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {object} calculator.KleinunternehmerStatus "Status"
// @Router      /vat/kleinunternehmer [get]
func (h *StatusHandler) Kleinunternehmer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := yearFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.statusService.Kleinunternehmer(userID, year)
	respondStatus(c, year, status, err)
}

// Abfaerbung returns the §15 Abs. 3 EStG monitor
// @Summary     Abfärbung status
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {object} calculator.AbfaerbungStatus "Status"
// @Router      /dashboard/abfaerbung [get]
func (h *StatusHandler) Abfaerbung(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := yearFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.statusService.Abfaerbung(userID, year)
	respondStatus(c, year, status, err)
}

// Gewerbesteuer returns the Freibetrag proximity monitor
// @Summary     Gewerbesteuer threshold status
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {object} calculator.GewerbesteuerThresholdStatus "Status"
// @Router      /dashboard/gewerbesteuer [get]
func (h *StatusHandler) Gewerbesteuer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := yearFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.statusService.GewerbesteuerThreshold(userID, year)
	respondStatus(c, year, status, err)
}

// MandatoryFiling returns the §46 EStG monitor
// @Summary     Mandatory filing status
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {object} calculator.MandatoryFilingStatus "Status"
// @Router      /dashboard/mandatory-filing [get]
func (h *StatusHandler) MandatoryFiling(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := yearFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.statusService.MandatoryFiling(userID, year)
	respondStatus(c, year, status, err)
}

// Bilanzierung returns the §141 AO monitor
// @Summary     Bilanzierung status
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {object} calculator.BilanzierungStatus "Status"
// @Router      /dashboard/bilanzierung [get]
func (h *StatusHandler) Bilanzierung(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := yearFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.statusService.Bilanzierung(userID, year)
	respondStatus(c, year, status, err)
}

// ArbZG returns the combined working time monitor
// @Summary     Working time status
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {object} calculator.ArbZGStatus "Status"
// @Router      /dashboard/arbzg [get]
func (h *StatusHandler) ArbZG(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := yearFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.statusService.ArbZG(userID, year)
	respondStatus(c, year, status, err)
}

// SocialInsuranceStatus returns the hauptberuflich-selbstständig risk
// @Summary     Social insurance status
// @Tags        social-insurance
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {object} calculator.SocialInsuranceStatus "Status"
// @Router      /social-insurance/status [get]
func (h *StatusHandler) SocialInsuranceStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := yearFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.statusService.SocialInsurance(userID, year)
	respondStatus(c, year, status, err)
}

// SocialInsuranceEntryRequest is the monthly hours/income upsert payload.
type SocialInsuranceEntryRequest struct {
	Year                    int     `json:"year" binding:"required,min=2000,max=2200"`
	Month                   int     `json:"month" binding:"required,min=1,max=12"`
	EmploymentHoursWeekly   float64 `json:"employment_hours_weekly" binding:"min=0,max=168"`
	SelfEmployedHoursWeekly float64 `json:"self_employed_hours_weekly" binding:"min=0,max=168"`
	EmploymentIncomeCents   int64   `json:"employment_income_cents" binding:"min=0"`
	SelfEmployedIncomeCents int64   `json:"self_employed_income_cents" binding:"min=0"`
}

// UpsertSocialInsuranceEntry records the hours and income of one month
// @Summary     Upsert social insurance entry
// @Description Create or replace the monthly hours/income entry feeding the monitors
// @Tags        social-insurance
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SocialInsuranceEntryRequest true "Monthly entry"
// @Success     200 {object} models.SocialInsuranceEntry "Stored entry"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /social-insurance/entries [put]
func (h *StatusHandler) UpsertSocialInsuranceEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SocialInsuranceEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	entry, err := h.siService.UpsertEntry(userID, req.Year, req.Month,
		req.EmploymentHoursWeekly, req.SelfEmployedHoursWeekly,
		req.EmploymentIncomeCents, req.SelfEmployedIncomeCents)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// ListSocialInsuranceEntries lists the monthly entries of a year
// @Summary     List social insurance entries
// @Tags        social-insurance
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {array} models.SocialInsuranceEntry "Entries"
// @Router      /social-insurance/entries [get]
func (h *StatusHandler) ListSocialInsuranceEntries(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := yearFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entries, err := h.siService.GetEntries(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
