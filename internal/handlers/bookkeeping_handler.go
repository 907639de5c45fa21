package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
	"dreistrom/internal/pdf"
	"dreistrom/internal/services"
)

// BookkeepingHandler exposes the EÜR views.
type BookkeepingHandler struct {
	taxService services.TaxServicer
}

// NewBookkeepingHandler creates a new BookkeepingHandler.
func NewBookkeepingHandler(taxService services.TaxServicer) *BookkeepingHandler {
	return &BookkeepingHandler{taxService: taxService}
}

// streamFromPath parses the :stream path segment. Only the self-employed
// streams carry an EÜR.
func streamFromPath(c *gin.Context) (models.IncomeStream, error) {
	stream := models.IncomeStream(strings.ToUpper(c.Param("stream")))
	if stream != models.StreamFreiberuf && stream != models.StreamGewerbe {
		return "", apperrors.WithMessage(apperrors.ErrValidation, "Stream must be FREIBERUF or GEWERBE")
	}
	return stream, nil
}

// Euer returns the EÜR of one stream
// @Summary     EÜR per stream
// @Description Einnahmen-Überschuss-Rechnung (§4 Abs. 3 EStG) for one self-employed stream
// @Tags        bookkeeping
// @Produce     json
// @Security    BearerAuth
// @Param       stream path string true "Income stream (FREIBERUF or GEWERBE)"
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {object} services.EuerResult "EÜR"
// @Failure     400 {object} ErrorResponse "Invalid stream"
// @Router      /bookkeeping/eur/{stream} [get]
func (h *BookkeepingHandler) Euer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	stream, err := streamFromPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := yearFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.taxService.Euer(userID, stream, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"euer": result})
}

// DualEuer returns both self-employed EÜRs side by side
// @Summary     Dual EÜR
// @Description Separate FREIBERUF and GEWERBE results plus the combined profit
// @Tags        bookkeeping
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {object} services.DualEuerResult "Dual EÜR"
// @Router      /bookkeeping/eur/dual [get]
func (h *BookkeepingHandler) DualEuer(c *gin.Context) {
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

	result, err := h.taxService.DualEuer(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"euer": result})
}

// EuerPDF renders the EÜR of one stream as a PDF document
// @Summary     EÜR PDF export
// @Tags        bookkeeping
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       stream path string true "Income stream (FREIBERUF or GEWERBE)"
// @Param       year query int false "Tax year (defaults to current)"
// @Success     200 {file} binary "PDF document"
// @Failure     400 {object} ErrorResponse "Invalid stream"
// @Router      /bookkeeping/eur/{stream}/pdf [get]
func (h *BookkeepingHandler) EuerPDF(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	stream, err := streamFromPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := yearFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.taxService.Euer(userID, stream, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	doc, err := pdf.RenderEuer(result.Year, result.Stream, result.Income, result.Expenses, result.Depreciation, result.Profit)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	filename := fmt.Sprintf("euer-%s-%d.pdf", strings.ToLower(string(stream)), year)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", doc)
}
