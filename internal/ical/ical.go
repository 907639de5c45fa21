// Package ical serializes the compliance calendar as an iCalendar feed.
package ical

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"dreistrom/internal/models"
)

const productID = "-//DreiStrom//Compliance Calendar//DE"

// Render builds the .ics document for a set of compliance events. Cancelled
// events are carried with a CANCELLED status so subscribed calendars drop
// them on refresh.
func Render(events []models.ComplianceEvent) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		ev := cal.AddEvent(fmt.Sprintf("%s@dreistrom", e.ID))
		ev.SetDtStampTime(e.CreatedAt)
		ev.SetAllDayStartAt(e.DueDate)
		ev.SetAllDayEndAt(e.DueDate.Add(24 * time.Hour))
		ev.SetSummary(e.Title)
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}

		switch e.Status {
		case models.EventCancelled:
			ev.SetStatus(ics.ObjectStatusCancelled)
		case models.EventCompleted:
			ev.SetStatus(ics.ObjectStatusConfirmed)
		default:
			ev.SetStatus(ics.ObjectStatusTentative)
		}
	}

	return cal.Serialize()
}
