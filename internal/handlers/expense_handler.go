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

// ExpenseHandler handles expense ledger requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// CreateExpenseRequest represents the expense creation payload.
type CreateExpenseRequest struct {
	Stream           models.IncomeStream    `json:"stream" binding:"required,income_stream"`
	AmountCents      int64                  `json:"amount_cents" binding:"required,gt=0"`
	Category         models.ExpenseCategory `json:"category" binding:"required,expense_category"`
	EntryDate        time.Time              `json:"entry_date" binding:"required"`
	Description      string                 `json:"description" binding:"max=1000"`
	AllocationRuleID *string                `json:"allocation_rule_id" binding:"omitempty,uuid"`
}

// UpdateExpenseRequest represents the expense update payload.
type UpdateExpenseRequest struct {
	AmountCents      *int64                  `json:"amount_cents" binding:"omitempty,gt=0"`
	Category         *models.ExpenseCategory `json:"category" binding:"omitempty,expense_category"`
	EntryDate        *time.Time              `json:"entry_date"`
	Description      string                  `json:"description" binding:"max=1000"`
	AllocationRuleID *string                 `json:"allocation_rule_id" binding:"omitempty,uuid"`
}

// listExpenseQuery binds the expense list filters.
type listExpenseQuery struct {
	pagination.PageRequest
	Stream *models.IncomeStream `form:"stream" binding:"omitempty,income_stream"`
}

// CreateEntry books a new expense entry
// @Summary     Create expense entry
// @Description Book an expense; mixed-use expenses reference an allocation rule
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExpenseRequest true "Expense entry data"
// @Success     201 {object} models.ExpenseEntry "Created entry"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Allocation rule not found"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	entry, err := h.expenseService.CreateEntry(userID, req.Stream, req.AmountCents, req.Category, req.EntryDate, req.Description, req.AllocationRuleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// ListEntries returns the user's expense entries
// @Summary     List expense entries
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       stream query string false "Stream filter"
// @Success     200 {object} pagination.PageResponse[models.ExpenseEntry] "Expense entries"
// @Router      /expenses [get]
func (h *ExpenseHandler) ListEntries(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query listExpenseQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	page, err := h.expenseService.GetUserEntries(userID, query.PageRequest, query.Stream)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetEntry returns one expense entry
// @Summary     Get expense entry
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entry ID"
// @Success     200 {object} models.ExpenseEntry "Expense entry"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.expenseService.GetEntryByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// UpdateEntry updates an expense entry
// @Summary     Update expense entry
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entry ID"
// @Param       request body UpdateExpenseRequest true "Fields to update"
// @Success     200 {object} models.ExpenseEntry "Updated entry"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	entry, err := h.expenseService.UpdateEntry(userID, c.Param("id"), req.AmountCents, req.Category, req.EntryDate, req.Description, req.AllocationRuleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// DeleteEntry deletes an expense entry
// @Summary     Delete expense entry
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entry ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteEntry(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
