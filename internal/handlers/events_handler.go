package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/events"
	"dreistrom/internal/observability"
	"dreistrom/internal/services"
)

// heartbeatInterval keeps intermediaries from closing idle SSE connections.
const heartbeatInterval = 30 * time.Second

// EventsHandler serves the server-sent-events stream.
type EventsHandler struct {
	broker   *events.Broker
	notifier *services.Notifier
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(broker *events.Broker, notifier *services.Notifier) *EventsHandler {
	return &EventsHandler{broker: broker, notifier: notifier}
}

// Stream opens the per-user event stream
// @Summary     Event stream
// @Description Server-sent events carrying monitor, flag, calendar and invoice changes; a snapshot is pushed on connect and a heartbeat every 30 seconds
// @Tags        events
// @Produce     text/event-stream
// @Security    BearerAuth
// @Success     200 {string} string "SSE stream"
// @Router      /events/stream [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInternalServer, "Streaming unsupported"))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ch := h.broker.Subscribe(userID)
	observability.StreamOpened()
	defer func() {
		h.broker.Unsubscribe(userID, ch)
		observability.StreamClosed()
	}()

	// Push the current state so the client does not render stale data
	// until the first change.
	go h.notifier.LedgerChanged(userID)

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", events.EventHeartbeat)
			flusher.Flush()
		}
	}
}
