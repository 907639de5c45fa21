package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
	"dreistrom/internal/pagination"
	"dreistrom/internal/services"
)

// IncomeHandler handles income ledger requests.
type IncomeHandler struct {
	incomeService services.IncomeServicer
}

// NewIncomeHandler creates a new IncomeHandler.
func NewIncomeHandler(incomeService services.IncomeServicer) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService}
}

// CreateIncomeRequest represents the income creation payload.
type CreateIncomeRequest struct {
	Stream      models.IncomeStream `json:"stream" binding:"required,income_stream"`
	AmountCents int64               `json:"amount_cents" binding:"required,gt=0"`
	EntryDate   time.Time           `json:"entry_date" binding:"required"`
	Source      string              `json:"source" binding:"max=255"`
	Description string              `json:"description" binding:"max=1000"`
	ClientID    *string             `json:"client_id" binding:"omitempty,uuid"`
}

// UpdateIncomeRequest represents the income update payload.
type UpdateIncomeRequest struct {
	AmountCents *int64     `json:"amount_cents" binding:"omitempty,gt=0"`
	EntryDate   *time.Time `json:"entry_date"`
	Source      string     `json:"source" binding:"max=255"`
	Description string     `json:"description" binding:"max=1000"`
}

// listIncomeQuery binds the income list filters.
type listIncomeQuery struct {
	pagination.PageRequest
	Stream   *models.IncomeStream `form:"stream" binding:"omitempty,income_stream"`
	FromDate *time.Time           `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time           `form:"to_date" time_format:"2006-01-02"`
}

// CreateEntry books a new income entry
// @Summary     Create income entry
// @Description Book an income entry on one of the three streams
// @Tags        income
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateIncomeRequest true "Income entry data"
// @Success     201 {object} models.IncomeEntry "Created entry"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Client not found"
// @Router      /income [post]
func (h *IncomeHandler) CreateEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	entry, err := h.incomeService.CreateEntry(userID, req.Stream, req.AmountCents, req.EntryDate, req.Source, req.Description, req.ClientID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// ListEntries returns the user's income entries
// @Summary     List income entries
// @Description Paginated income entries with optional stream and date filters
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       stream query string false "Income stream filter"
// @Success     200 {object} pagination.PageResponse[models.IncomeEntry] "Income entries"
// @Router      /income [get]
func (h *IncomeHandler) ListEntries(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query listIncomeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	filter := services.IncomeFilter{
		Stream:   query.Stream,
		FromDate: query.FromDate,
		ToDate:   query.ToDate,
	}
	page, err := h.incomeService.GetUserEntries(userID, query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetEntry returns one income entry
// @Summary     Get income entry
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entry ID"
// @Success     200 {object} models.IncomeEntry "Income entry"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /income/{id} [get]
func (h *IncomeHandler) GetEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.incomeService.GetEntryByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// UpdateEntry updates an income entry
// @Summary     Update income entry
// @Tags        income
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entry ID"
// @Param       request body UpdateIncomeRequest true "Fields to update"
// @Success     200 {object} models.IncomeEntry "Updated entry"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     422 {object} ErrorResponse "Entry is invoice-linked"
// @Router      /income/{id} [put]
func (h *IncomeHandler) UpdateEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	entry, err := h.incomeService.UpdateEntry(userID, c.Param("id"), req.AmountCents, req.EntryDate, req.Source, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// DeleteEntry deletes an income entry
// @Summary     Delete income entry
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entry ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     422 {object} ErrorResponse "Entry is invoice-linked"
// @Router      /income/{id} [delete]
func (h *IncomeHandler) DeleteEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.incomeService.DeleteEntry(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
