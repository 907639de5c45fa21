package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/ical"
	"dreistrom/internal/services"
)

// CalendarHandler exposes the compliance calendar.
type CalendarHandler struct {
	calendarService services.CalendarServicer
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(calendarService services.CalendarServicer) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// ListEvents returns the compliance events of a year
// @Summary     List compliance events
// @Description Events ordered by due date; OPEN deadlines past due are projected to OVERDUE
// @Tags        calendar
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Year (defaults to current)"
// @Success     200 {array} models.ComplianceEvent "Events"
// @Router      /calendar/events [get]
func (h *CalendarHandler) ListEvents(c *gin.Context) {
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

	events, err := h.calendarService.List(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	now := time.Now()
	payload := make([]gin.H, 0, len(events))
	for i := range events {
		payload = append(payload, gin.H{"event": events[i], "effective_status": events[i].EffectiveStatus(now)})
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "events": payload})
}

// GenerateCalendarRequest selects the year to populate.
type GenerateCalendarRequest struct {
	Year int `json:"year" binding:"required,min=2000,max=2200"`
}

// GenerateEvents populates the statutory deadlines of a year
// @Summary     Generate compliance events
// @Description Idempotently derives the statutory deadlines from the user's profile and ledger; completed and cancelled events are preserved
// @Tags        calendar
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body GenerateCalendarRequest true "Year"
// @Success     200 {array} models.ComplianceEvent "Events"
// @Router      /calendar/generate [post]
func (h *CalendarHandler) GenerateEvents(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GenerateCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	events, err := h.calendarService.Generate(userID, req.Year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": req.Year, "events": events})
}

// CustomEventRequest is the user-defined deadline payload.
type CustomEventRequest struct {
	Title       string    `json:"title" binding:"required,max=255"`
	Description string    `json:"description" binding:"max=2000"`
	DueDate     time.Time `json:"due_date" binding:"required" time_format:"2006-01-02"`
}

// CreateCustomEvent adds a user-defined deadline
// @Summary     Create custom event
// @Tags        calendar
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CustomEventRequest true "Event data"
// @Success     201 {object} models.ComplianceEvent "Created event"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /calendar/events [post]
func (h *CalendarHandler) CreateCustomEvent(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CustomEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	event, err := h.calendarService.CreateCustomEvent(userID, req.Title, req.Description, req.DueDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event": event})
}

// CompleteEvent marks a pending event as completed
// @Summary     Complete event
// @Tags        calendar
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Event ID"
// @Success     200 {object} models.ComplianceEvent "Updated event"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Not pending"
// @Router      /calendar/events/{id}/complete [post]
func (h *CalendarHandler) CompleteEvent(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	event, err := h.calendarService.Complete(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event})
}

// CancelEvent marks a pending event as cancelled
// @Summary     Cancel event
// @Tags        calendar
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Event ID"
// @Success     200 {object} models.ComplianceEvent "Updated event"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Not pending"
// @Router      /calendar/events/{id}/cancel [post]
func (h *CalendarHandler) CancelEvent(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	event, err := h.calendarService.Cancel(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event})
}

// ExportICS serves the calendar as an iCalendar feed
// @Summary     Export calendar as .ics
// @Tags        calendar
// @Produce     text/calendar
// @Security    BearerAuth
// @Param       year query int false "Year (defaults to current)"
// @Success     200 {string} string "iCalendar document"
// @Router      /calendar/export.ics [get]
func (h *CalendarHandler) ExportICS(c *gin.Context) {
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

	events, err := h.calendarService.List(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("compliance-%d.ics", year)))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ical.Render(events)))
}
