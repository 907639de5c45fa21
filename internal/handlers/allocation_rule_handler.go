package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/pagination"
	"dreistrom/internal/services"
)

// AllocationRuleHandler handles allocation rule requests.
type AllocationRuleHandler struct {
	ruleService services.AllocationRuleServicer
}

// NewAllocationRuleHandler creates a new AllocationRuleHandler.
func NewAllocationRuleHandler(ruleService services.AllocationRuleServicer) *AllocationRuleHandler {
	return &AllocationRuleHandler{ruleService: ruleService}
}

// AllocationRuleRequest represents the rule creation/update payload.
// The three percentages must sum to exactly 100.
type AllocationRuleRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	FreiberufPct int    `json:"freiberuf_pct" binding:"min=0,max=100"`
	GewerbePct   int    `json:"gewerbe_pct" binding:"min=0,max=100"`
	PersonalPct  int    `json:"personal_pct" binding:"min=0,max=100"`
}

// CreateRule creates a new allocation rule
// @Summary     Create allocation rule
// @Description Create a percentage split for mixed-use expenses
// @Tags        allocation-rules
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AllocationRuleRequest true "Allocation rule data"
// @Success     201 {object} models.AllocationRule "Created rule"
// @Failure     400 {object} ErrorResponse "Percentages do not sum to 100"
// @Router      /allocation-rules [post]
func (h *AllocationRuleHandler) CreateRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AllocationRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	rule, err := h.ruleService.CreateRule(userID, req.Name, req.FreiberufPct, req.GewerbePct, req.PersonalPct)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

// ListRules returns the user's allocation rules
// @Summary     List allocation rules
// @Tags        allocation-rules
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.AllocationRule] "Allocation rules"
// @Router      /allocation-rules [get]
func (h *AllocationRuleHandler) ListRules(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	rules, err := h.ruleService.GetUserRules(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rules)
}

// UpdateRule updates an allocation rule
// @Summary     Update allocation rule
// @Description Replace the split; affects all expenses referencing the rule
// @Tags        allocation-rules
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Rule ID"
// @Param       request body AllocationRuleRequest true "New split"
// @Success     200 {object} models.AllocationRule "Updated rule"
// @Failure     400 {object} ErrorResponse "Percentages do not sum to 100"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /allocation-rules/{id} [put]
func (h *AllocationRuleHandler) UpdateRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AllocationRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	rule, err := h.ruleService.UpdateRule(userID, c.Param("id"), req.Name, req.FreiberufPct, req.GewerbePct, req.PersonalPct)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// DeleteRule deletes an allocation rule
// @Summary     Delete allocation rule
// @Description Fails while expenses still reference the rule
// @Tags        allocation-rules
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Rule ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Rule still referenced"
// @Router      /allocation-rules/{id} [delete]
func (h *AllocationRuleHandler) DeleteRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ruleService.DeleteRule(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
