package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
	"dreistrom/internal/pdf"
	"dreistrom/internal/services"
)

// InvoiceHandler handles the invoice lifecycle.
type InvoiceHandler struct {
	invoiceService services.InvoiceServicer
	userService    services.UserServicer
	audit          services.AuditServicer
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService services.InvoiceServicer, userService services.UserServicer, audit services.AuditServicer) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, userService: userService, audit: audit}
}

// LineItemRequest is one invoice position. A zero VAT rate means the regular
// rate of the issue year; exempt treatments zero it regardless.
type LineItemRequest struct {
	Description  string          `json:"description" binding:"required,max=500"`
	Quantity     int64           `json:"quantity" binding:"required,gt=0"`
	UnitNetCents int64           `json:"unit_net_cents" binding:"required,gt=0"`
	VatRate      decimal.Decimal `json:"vat_rate"`
}

// InvoiceRequest is the draft create/update payload.
type InvoiceRequest struct {
	Stream       models.IncomeStream `json:"stream" binding:"required,income_stream"`
	ClientID     string              `json:"client_id" binding:"required,uuid"`
	IssueDate    time.Time           `json:"issue_date" binding:"required" time_format:"2006-01-02"`
	DueDate      time.Time           `json:"due_date" binding:"required" time_format:"2006-01-02"`
	LineItems    []LineItemRequest   `json:"line_items" binding:"required,min=1,dive"`
	VatTreatment models.VatTreatment `json:"vat_treatment" binding:"omitempty,oneof=REGULAR REVERSE_CHARGE INTRA_EU THIRD_COUNTRY SMALL_BUSINESS"`
	Notes        string              `json:"notes" binding:"max=2000"`
}

// TransitionRequest names the target invoice status.
type TransitionRequest struct {
	Status models.InvoiceStatus `json:"status" binding:"required"`
}

// listInvoicesQuery binds the invoice list filters.
type listInvoicesQuery struct {
	Status string              `form:"status"`
	Stream models.IncomeStream `form:"stream"`
	Year   int                 `form:"year"`
}

func (r *InvoiceRequest) toInput() services.InvoiceInput {
	items := make([]models.LineItem, 0, len(r.LineItems))
	for _, li := range r.LineItems {
		items = append(items, models.LineItem{
			Description:  li.Description,
			Quantity:     li.Quantity,
			UnitNetCents: li.UnitNetCents,
			VatRate:      li.VatRate,
		})
	}
	return services.InvoiceInput{
		Stream:       r.Stream,
		ClientID:     r.ClientID,
		IssueDate:    r.IssueDate,
		DueDate:      r.DueDate,
		LineItems:    items,
		VatTreatment: r.VatTreatment,
		Notes:        r.Notes,
	}
}

// invoicePayload projects OVERDUE at read time.
func invoicePayload(inv *models.Invoice) gin.H {
	return gin.H{"invoice": inv, "effective_status": inv.EffectiveStatus(time.Now())}
}

// CreateInvoice creates a draft invoice
// @Summary     Create invoice draft
// @Description Create a DRAFT invoice; the number is assigned when the invoice is issued
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body InvoiceRequest true "Invoice data"
// @Success     201 {object} models.Invoice "Created draft"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	invoice, err := h.invoiceService.CreateDraft(userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(userID, "invoice.create", "invoice", invoice.ID, c.ClientIP(), nil)
	c.JSON(http.StatusCreated, invoicePayload(invoice))
}

// ListInvoices returns the user's invoices
// @Summary     List invoices
// @Description Filterable by status (including the OVERDUE projection), stream and year
// @Tags        invoices
// @Produce     json
// @Security    BearerAuth
// @Param       status query string false "Status filter (DRAFT, SENT, PAID, CANCELLED, OVERDUE)"
// @Param       stream query string false "Stream filter (FREIBERUF or GEWERBE)"
// @Param       year query int false "Issue year filter"
// @Success     200 {array} models.Invoice "Invoices"
// @Router      /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query listInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	filter := services.InvoiceFilter{
		Status: models.InvoiceStatus(strings.ToUpper(query.Status)),
		Stream: query.Stream,
		Year:   query.Year,
	}
	invoices, err := h.invoiceService.List(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	now := time.Now()
	payload := make([]gin.H, 0, len(invoices))
	for i := range invoices {
		payload = append(payload, gin.H{"invoice": invoices[i], "effective_status": invoices[i].EffectiveStatus(now)})
	}
	c.JSON(http.StatusOK, gin.H{"invoices": payload})
}

// GetInvoice returns one invoice
// @Summary     Get invoice
// @Tags        invoices
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Invoice ID"
// @Success     200 {object} models.Invoice "Invoice"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoice, err := h.invoiceService.Get(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoicePayload(invoice))
}

// UpdateInvoice updates a draft invoice
// @Summary     Update invoice draft
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Invoice ID"
// @Param       request body InvoiceRequest true "Invoice data"
// @Success     200 {object} models.Invoice "Updated draft"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Not a draft"
// @Router      /invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	invoice, err := h.invoiceService.UpdateDraft(userID, c.Param("id"), req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(userID, "invoice.update", "invoice", invoice.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, invoicePayload(invoice))
}

// TransitionInvoice moves an invoice along its lifecycle
// @Summary     Transition invoice status
// @Description DRAFT to SENT issues the invoice, assigns its number and books the income entry; SENT to PAID stamps the payment
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Invoice ID"
// @Param       request body TransitionRequest true "Target status"
// @Success     200 {object} models.Invoice "Updated invoice"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Transition not allowed"
// @Router      /invoices/{id}/status [post]
func (h *InvoiceHandler) TransitionInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	invoice, err := h.invoiceService.Transition(userID, c.Param("id"), req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(userID, "invoice.transition", "invoice", invoice.ID, c.ClientIP(),
		map[string]interface{}{"status": string(req.Status)})
	c.JSON(http.StatusOK, invoicePayload(invoice))
}

// DeleteInvoice deletes a draft invoice
// @Summary     Delete invoice draft
// @Tags        invoices
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Invoice ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Not a draft"
// @Router      /invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.invoiceService.DeleteDraft(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(userID, "invoice.delete", "invoice", c.Param("id"), c.ClientIP(), nil)
	c.Status(http.StatusNoContent)
}

// InvoicePDF renders an invoice as a PDF document
// @Summary     Invoice PDF export
// @Tags        invoices
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       id path string true "Invoice ID"
// @Success     200 {file} binary "PDF document"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /invoices/{id}/pdf [get]
func (h *InvoiceHandler) InvoicePDF(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoice, err := h.invoiceService.Get(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	issuer, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	doc, err := pdf.RenderInvoice(invoice, issuer)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	name := invoice.Number
	if name == "" {
		name = "entwurf-" + invoice.ID
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "rechnung-"+name+".pdf"))
	c.Data(http.StatusOK, "application/pdf", doc)
}
