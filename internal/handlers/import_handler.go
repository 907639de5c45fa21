package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/services"
)

// maxReportSize caps uploaded payout reports at 10 MiB.
const maxReportSize = 10 << 20

// ImportHandler handles marketplace payout report uploads.
type ImportHandler struct {
	importService services.ImportServicer
	audit         services.AuditServicer
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importService services.ImportServicer, audit services.AuditServicer) *ImportHandler {
	return &ImportHandler{importService: importService, audit: audit}
}

// reportContent reads the uploaded report, from the "file" multipart field
// when present, otherwise from the raw request body.
func reportContent(c *gin.Context) (string, error) {
	if file, err := c.FormFile("file"); err == nil {
		if file.Size > maxReportSize {
			return "", apperrors.WithMessage(apperrors.ErrValidation, "Report exceeds the size limit")
		}
		f, err := file.Open()
		if err != nil {
			return "", apperrors.Wrap(apperrors.ErrUnparsableFile, err)
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxReportSize))
		if err != nil {
			return "", apperrors.Wrap(apperrors.ErrUnparsableFile, err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxReportSize))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrUnparsableFile, err)
	}
	if len(data) == 0 {
		return "", apperrors.WithMessage(apperrors.ErrValidation, "Empty report")
	}
	return string(data), nil
}

// ImportApple imports an App Store Connect payout report
// @Summary     Import Apple payout report
// @Description Parses the tab-separated financial report, books the aggregated income entry and stores the batch; re-uploads of the same report are rejected
// @Tags        imports
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "Financial report"
// @Param       small_business_program query bool false "Apply the 15% small business commission rate"
// @Success     200 {object} services.ImportResult "Import result"
// @Failure     400 {object} ErrorResponse "Unparsable report"
// @Failure     409 {object} ErrorResponse "Batch already imported"
// @Router      /imports/apple [post]
func (h *ImportHandler) ImportApple(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	content, err := reportContent(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	smallBusiness := c.Query("small_business_program") == "true" || c.PostForm("small_business_program") == "true"

	result, err := h.importService.ImportApple(userID, content, smallBusiness)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(userID, "import.apple", "payout_batch", result.Batch.ID, c.ClientIP(),
		map[string]interface{}{"imported": result.Imported, "skipped": result.Skipped})
	c.JSON(http.StatusOK, result)
}

// ImportGoogle imports a Google Play earnings report
// @Summary     Import Google payout report
// @Description Parses the comma-separated earnings report, books the aggregated income entry and stores the batch; re-uploads of the same report are rejected
// @Tags        imports
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "Earnings report"
// @Success     200 {object} services.ImportResult "Import result"
// @Failure     400 {object} ErrorResponse "Unparsable report"
// @Failure     409 {object} ErrorResponse "Batch already imported"
// @Router      /imports/google [post]
func (h *ImportHandler) ImportGoogle(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	content, err := reportContent(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.importService.ImportGoogle(userID, content)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(userID, "import.google", "payout_batch", result.Batch.ID, c.ClientIP(),
		map[string]interface{}{"imported": result.Imported, "skipped": result.Skipped})
	c.JSON(http.StatusOK, result)
}

// ListBatches lists the imported payout batches
// @Summary     List payout batches
// @Tags        imports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.PayoutBatch "Batches"
// @Router      /imports/batches [get]
func (h *ImportHandler) ListBatches(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	batches, err := h.importService.ListBatches(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"batches": batches})
}
