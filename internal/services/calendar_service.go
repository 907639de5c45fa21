package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
)

// calendarService maintains the compliance calendar of statutory deadlines.
type calendarService struct {
	db       *gorm.DB
	notifier *Notifier
}

// NewCalendarService creates a new CalendarServicer.
func NewCalendarService(db *gorm.DB, notifier *Notifier) CalendarServicer {
	return &calendarService{db: db, notifier: notifier}
}

// statutoryEvent is one deadline template produced by the generator.
type statutoryEvent struct {
	eventType   models.ComplianceEventType
	title       string
	description string
	dueDate     time.Time
}

// statutoryEvents builds the deadline set for a tax year. Annual returns are
// due on 31 July of the following year (§149 AO). Kleinunternehmer skip the
// Umsatzsteuer-Voranmeldungen; users without commercial income skip the
// Gewerbesteuer deadlines. ZM deadlines only apply when the user issued
// ZM-reportable invoices, the monthly Sozialversicherung check-ins only when
// the user keeps the hours ledger for the year.
func statutoryEvents(year int, kleinunternehmer, gewerbeRelevant, zmRelevant, svRelevant bool) []statutoryEvent {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	events := []statutoryEvent{
		{
			eventType:   models.EventEStErklaerung,
			title:       fmt.Sprintf("Einkommensteuererklärung %d", year),
			description: "Abgabe der Einkommensteuererklärung beim Finanzamt.",
			dueDate:     date(year+1, time.July, 31),
		},
		{
			eventType:   models.EventEUeRAbgabe,
			title:       fmt.Sprintf("Anlage EÜR %d", year),
			description: "Einnahmen-Überschuss-Rechnung je Einkunftsart einreichen.",
			dueDate:     date(year+1, time.July, 31),
		},
	}

	// Quarterly income tax prepayments (§37 EStG).
	for q, m := range []time.Month{time.March, time.June, time.September, time.December} {
		events = append(events, statutoryEvent{
			eventType:   models.EventEStVorauszahlung,
			title:       fmt.Sprintf("Einkommensteuer-Vorauszahlung Q%d/%d", q+1, year),
			description: "Quartalsweise Einkommensteuer-Vorauszahlung.",
			dueDate:     date(year, m, 10),
		})
	}

	if !kleinunternehmer {
		events = append(events, statutoryEvent{
			eventType:   models.EventUStErklaerung,
			title:       fmt.Sprintf("Umsatzsteuererklärung %d", year),
			description: "Abgabe der Umsatzsteuer-Jahreserklärung.",
			dueDate:     date(year+1, time.July, 31),
		})
		// Quarterly Voranmeldungen, due on the 10th after quarter end.
		quarterEnds := []time.Time{
			date(year, time.April, 10),
			date(year, time.July, 10),
			date(year, time.October, 10),
			date(year+1, time.January, 10),
		}
		for q, due := range quarterEnds {
			events = append(events, statutoryEvent{
				eventType:   models.EventUStVoranmeldung,
				title:       fmt.Sprintf("Umsatzsteuer-Voranmeldung Q%d/%d", q+1, year),
				description: "Quartalsweise Umsatzsteuer-Voranmeldung übermitteln.",
				dueDate:     due,
			})
		}
	}

	if zmRelevant {
		// Zusammenfassende Meldung, due on the 25th after quarter end
		// (§18a UStG).
		zmDue := []time.Time{
			date(year, time.April, 25),
			date(year, time.July, 25),
			date(year, time.October, 25),
			date(year+1, time.January, 25),
		}
		for q, due := range zmDue {
			events = append(events, statutoryEvent{
				eventType:   models.EventZMMeldung,
				title:       fmt.Sprintf("ZM Q%d/%d", q+1, year),
				description: fmt.Sprintf("Zusammenfassende Meldung %d. Quartal", q+1),
				dueDate:     due,
			})
		}
	}

	if svRelevant {
		for m := 1; m <= 12; m++ {
			events = append(events, statutoryEvent{
				eventType:   models.EventSozialversicherung,
				title:       fmt.Sprintf("SV-Beitrag %02d/%d", m, year),
				description: fmt.Sprintf("Sozialversicherungsbeitrag %02d/%d prüfen und überweisen.", m, year),
				// Day zero of the following month is the month's last day.
				dueDate: time.Date(year, time.Month(m+1), 0, 0, 0, 0, 0, time.UTC),
			})
		}
	}

	if gewerbeRelevant {
		events = append(events, statutoryEvent{
			eventType:   models.EventGewStErklaerung,
			title:       fmt.Sprintf("Gewerbesteuererklärung %d", year),
			description: "Abgabe der Gewerbesteuererklärung.",
			dueDate:     date(year+1, time.July, 31),
		})
		for q, m := range []time.Month{time.February, time.May, time.August, time.November} {
			events = append(events, statutoryEvent{
				eventType:   models.EventGewStVorauszahlung,
				title:       fmt.Sprintf("Gewerbesteuer-Vorauszahlung Q%d/%d", q+1, year),
				description: "Quartalsweise Gewerbesteuer-Vorauszahlung (§19 GewStG).",
				dueDate:     date(year, m, 15),
			})
		}
	}

	return events
}

// Generate creates the statutory deadlines for a tax year. Generation is
// idempotent: events are keyed by type and due date, and existing events are
// left untouched regardless of their status, so completed or cancelled
// entries survive regeneration.
func (s *calendarService) Generate(userID string, year int) ([]models.ComplianceEvent, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	gewerbeRelevant, err := streamHasEntries(s.db, userID, models.StreamGewerbe, year)
	if err != nil {
		return nil, err
	}

	start, end := yearRange(year)
	var zmInvoices int64
	err = s.db.Model(&models.Invoice{}).
		Where("user_id = ? AND zm_reportable = ? AND status <> ? AND issue_date BETWEEN ? AND ?",
			userID, true, models.InvoiceDraft, start, end).
		Count(&zmInvoices).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var svEntries int64
	err = s.db.Model(&models.SocialInsuranceEntry{}).
		Where("user_id = ? AND year = ?", userID, year).
		Count(&svEntries).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	templates := statutoryEvents(year, user.Kleinunternehmer, gewerbeRelevant, zmInvoices > 0, svEntries > 0)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, t := range templates {
			var count int64
			err := tx.Model(&models.ComplianceEvent{}).
				Where("user_id = ? AND event_type = ? AND due_date = ?", userID, t.eventType, t.dueDate).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			event := models.ComplianceEvent{
				UserID:      userID,
				EventType:   t.eventType,
				Title:       t.title,
				Description: t.description,
				DueDate:     t.dueDate,
				Year:        year,
				Status:      models.EventPending,
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.CalendarChanged(userID)
	return s.List(userID, year)
}

// List returns the events of a tax year ordered by due date.
func (s *calendarService) List(userID string, year int) ([]models.ComplianceEvent, error) {
	var events []models.ComplianceEvent
	if err := s.db.Where("user_id = ? AND year = ?", userID, year).Order("due_date").Find(&events).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return events, nil
}

// CreateCustomEvent adds a user-defined deadline.
func (s *calendarService) CreateCustomEvent(userID, title, description string, dueDate time.Time) (*models.ComplianceEvent, error) {
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "title is required")
	}

	event := &models.ComplianceEvent{
		UserID:      userID,
		EventType:   models.EventCustom,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Year:        dueDate.Year(),
		Status:      models.EventPending,
	}
	if err := s.db.Create(event).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.CalendarChanged(userID)
	return event, nil
}

// Complete marks a pending event as done.
func (s *calendarService) Complete(userID, eventID string) (*models.ComplianceEvent, error) {
	return s.transition(userID, eventID, models.EventCompleted)
}

// Cancel marks a pending event as not applicable.
func (s *calendarService) Cancel(userID, eventID string) (*models.ComplianceEvent, error) {
	return s.transition(userID, eventID, models.EventCancelled)
}

func (s *calendarService) transition(userID, eventID string, target models.ComplianceEventStatus) (*models.ComplianceEvent, error) {
	var event models.ComplianceEvent
	if err := s.db.Where("id = ? AND user_id = ?", eventID, userID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if event.Status != models.EventPending {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransition,
			fmt.Sprintf("Cannot move event from %s to %s", event.Status, target))
	}

	updates := map[string]interface{}{"status": target}
	if target == models.EventCompleted {
		now := time.Now()
		updates["completed_at"] = now
	}
	if err := s.db.Model(&event).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.CalendarChanged(userID)
	return &event, nil
}
