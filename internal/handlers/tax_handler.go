package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/services"
)

// TaxHandler exposes the tax assessment and the prepayment planner.
type TaxHandler struct {
	taxService services.TaxServicer
	vzService  services.VorauszahlungServicer
}

// NewTaxHandler creates a new TaxHandler.
func NewTaxHandler(taxService services.TaxServicer, vzService services.VorauszahlungServicer) *TaxHandler {
	return &TaxHandler{taxService: taxService, vzService: vzService}
}

// Assessment returns the projected income tax
// @Summary     Income tax assessment
// @Description §32a EStG assessment across all three streams, including Soli
// @Tags        tax
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {object} calculator.AssessmentResult "Assessment"
// @Failure     422 {object} ErrorResponse "No statutory parameters for the year"
// @Router      /tax/assessment [get]
func (h *TaxHandler) Assessment(c *gin.Context) {
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

	result, err := h.taxService.Assess(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "assessment": result})
}

// Gewerbesteuer returns the trade tax projection
// @Summary     Gewerbesteuer projection
// @Description Trade tax with the §35 EStG credit against income tax
// @Tags        tax
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {object} calculator.GewerbesteuerResult "Projection"
// @Router      /tax/gewerbesteuer [get]
func (h *TaxHandler) Gewerbesteuer(c *gin.Context) {
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

	result, err := h.taxService.Gewerbesteuer(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "gewerbesteuer": result})
}

// Reserve returns the monthly tax reserve recommendation
// @Summary     Tax reserve recommendation
// @Tags        tax
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Param       already_reserved query number false "Amount already set aside this year"
// @Success     200 {object} calculator.TaxReserveResult "Recommendation"
// @Router      /tax/reserve [get]
func (h *TaxHandler) Reserve(c *gin.Context) {
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

	alreadyReserved := decimal.Zero
	if raw := c.Query("already_reserved"); raw != "" {
		alreadyReserved, err = decimal.NewFromString(raw)
		if err != nil || alreadyReserved.IsNegative() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, "Invalid already_reserved"))
			return
		}
	}

	result, err := h.taxService.Reserve(userID, year, alreadyReserved)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "reserve": result})
}

// ListVorauszahlungen returns the prepayment schedule
// @Summary     List Vorauszahlungen
// @Tags        tax
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {array} models.Vorauszahlung "Schedule"
// @Router      /tax/vorauszahlungen [get]
func (h *TaxHandler) ListVorauszahlungen(c *gin.Context) {
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

	payments, err := h.vzService.List(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "vorauszahlungen": payments})
}

// GenerateVorauszahlungenRequest selects the year to schedule.
type GenerateVorauszahlungenRequest struct {
	Year int `json:"year" binding:"required,min=2000,max=2200"`
}

// GenerateVorauszahlungen builds the quarterly schedule
// @Summary     Generate Vorauszahlungen
// @Description Build the four quarterly prepayments from the current assessment; paid quarters are preserved
// @Tags        tax
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body GenerateVorauszahlungenRequest true "Year"
// @Success     200 {array} models.Vorauszahlung "Schedule"
// @Router      /tax/vorauszahlungen/generate [post]
func (h *TaxHandler) GenerateVorauszahlungen(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GenerateVorauszahlungenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	payments, err := h.vzService.Generate(userID, req.Year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": req.Year, "vorauszahlungen": payments})
}

// PayVorauszahlungRequest records the paid amount.
type PayVorauszahlungRequest struct {
	PaidCents int64 `json:"paid_cents" binding:"required,gt=0"`
}

// PayVorauszahlung records a payment on one quarter
// @Summary     Pay Vorauszahlung
// @Tags        tax
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Vorauszahlung ID"
// @Param       request body PayVorauszahlungRequest true "Paid amount"
// @Success     200 {object} models.Vorauszahlung "Updated quarter"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     422 {object} ErrorResponse "Already paid"
// @Router      /tax/vorauszahlungen/{id}/pay [post]
func (h *TaxHandler) PayVorauszahlung(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayVorauszahlungRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	vz, err := h.vzService.Pay(userID, c.Param("id"), req.PaidCents)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"vorauszahlung": vz})
}

// VorauszahlungDeviation compares the schedule to the current projection
// @Summary     Vorauszahlung deviation
// @Description Recommends an adjustment request when the projection diverges materially from the basis
// @Tags        tax
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {object} calculator.DeviationResult "Deviation"
// @Router      /tax/vorauszahlungen/deviation [get]
func (h *TaxHandler) VorauszahlungDeviation(c *gin.Context) {
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

	result, err := h.vzService.Deviation(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "deviation": result})
}
