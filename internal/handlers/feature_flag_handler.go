package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dreistrom/internal/services"
)

// FeatureFlagHandler exposes the UI feature flag projection.
type FeatureFlagHandler struct {
	flagService services.FeatureFlagServicer
}

// NewFeatureFlagHandler creates a new FeatureFlagHandler.
func NewFeatureFlagHandler(flagService services.FeatureFlagServicer) *FeatureFlagHandler {
	return &FeatureFlagHandler{flagService: flagService}
}

// Flags returns the feature flags derived from the user's ledger
// @Summary     Feature flags
// @Description Derives which surfaces apply to the user from profile, ledger and monitor state
// @Tags        features
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {object} calculator.UserFeatureFlags "Flags"
// @Router      /features/flags [get]
func (h *FeatureFlagHandler) Flags(c *gin.Context) {
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

	flags, err := h.flagService.Flags(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "flags": flags})
}
