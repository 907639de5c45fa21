package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/services"
)

// OnboardingHandler exposes the registration workflow.
type OnboardingHandler struct {
	onboardingService services.OnboardingServicer
	audit             services.AuditServicer
}

// NewOnboardingHandler creates a new OnboardingHandler.
func NewOnboardingHandler(onboardingService services.OnboardingServicer, audit services.AuditServicer) *OnboardingHandler {
	return &OnboardingHandler{onboardingService: onboardingService, audit: audit}
}

func stepNumberFromPath(c *gin.Context) (int, error) {
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil || n < 1 {
		return 0, apperrors.WithMessage(apperrors.ErrValidation, "Invalid step number")
	}
	return n, nil
}

// Initialize seeds the registration steps
// @Summary     Initialize onboarding
// @Description Seeds the registration checklist; calling it again returns the existing progress
// @Tags        onboarding
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.OnboardingProgress "Progress"
// @Router      /onboarding/initialize [post]
func (h *OnboardingHandler) Initialize(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.onboardingService.Initialize(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(userID, "onboarding.initialize", "onboarding", userID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, progress)
}

// Progress returns the current onboarding state
// @Summary     Onboarding progress
// @Tags        onboarding
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.OnboardingProgress "Progress"
// @Failure     404 {object} ErrorResponse "Not initialized"
// @Router      /onboarding/progress [get]
func (h *OnboardingHandler) Progress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.onboardingService.Progress(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// StartStep moves a step to IN_PROGRESS
// @Summary     Start step
// @Description Fails while a required predecessor is neither completed nor skipped
// @Tags        onboarding
// @Produce     json
// @Security    BearerAuth
// @Param       number path int true "Step number"
// @Success     200 {object} services.StepWithDecisions "Updated step"
// @Failure     404 {object} ErrorResponse "Step not found"
// @Failure     409 {object} ErrorResponse "Dependencies unmet or wrong state"
// @Router      /onboarding/steps/{number}/start [post]
func (h *OnboardingHandler) StartStep(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	number, err := stepNumberFromPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	step, err := h.onboardingService.StartStep(userID, number)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"step": step})
}

// CompleteStep moves a step to COMPLETED
// @Summary     Complete step
// @Tags        onboarding
// @Produce     json
// @Security    BearerAuth
// @Param       number path int true "Step number"
// @Success     200 {object} services.StepWithDecisions "Updated step"
// @Failure     404 {object} ErrorResponse "Step not found"
// @Failure     409 {object} ErrorResponse "Step not in progress"
// @Router      /onboarding/steps/{number}/complete [post]
func (h *OnboardingHandler) CompleteStep(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	number, err := stepNumberFromPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	step, err := h.onboardingService.CompleteStep(userID, number)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(userID, "onboarding.complete_step", "registration_step", step.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"step": step})
}

// SkipStep marks an optional step as SKIPPED
// @Summary     Skip step
// @Tags        onboarding
// @Produce     json
// @Security    BearerAuth
// @Param       number path int true "Step number"
// @Success     200 {object} services.StepWithDecisions "Updated step"
// @Failure     404 {object} ErrorResponse "Step not found"
// @Failure     409 {object} ErrorResponse "Step is not optional"
// @Router      /onboarding/steps/{number}/skip [post]
func (h *OnboardingHandler) SkipStep(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	number, err := stepNumberFromPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	step, err := h.onboardingService.SkipStep(userID, number)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"step": step})
}

// DecideRequest carries the chosen option.
type DecideRequest struct {
	Choice string `json:"choice" binding:"required"`
}

// Decide records the choice on a decision point
// @Summary     Record decision
// @Description Stores the user's choice; the stored recommendation stays advisory and a decision can be revised
// @Tags        onboarding
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Decision point ID"
// @Param       request body DecideRequest true "Choice"
// @Success     200 {object} models.DecisionPoint "Updated decision point"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /onboarding/decisions/{id} [post]
func (h *OnboardingHandler) Decide(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	decision, err := h.onboardingService.Decide(userID, c.Param("id"), req.Choice)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(userID, "onboarding.decide", "decision_point", decision.ID, c.ClientIP(),
		map[string]interface{}{"choice": req.Choice})
	c.JSON(http.StatusOK, gin.H{"decision": decision})
}

// EvaluateKleinunternehmer runs the §19 UStG decision engine
// @Summary     Evaluate Kleinunternehmer decision
// @Description Scores the regulation against the user's ledger and persists the recommendation on the decision point
// @Tags        onboarding
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {object} calculator.DecisionResult "Recommendation"
// @Router      /onboarding/decisions/kleinunternehmer/evaluate [get]
func (h *OnboardingHandler) EvaluateKleinunternehmer(c *gin.Context) {
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

	result, err := h.onboardingService.EvaluateKleinunternehmer(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "evaluation": result})
}
