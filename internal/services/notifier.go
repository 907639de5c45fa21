package services

import (
	"time"

	"dreistrom/internal/events"
	"dreistrom/internal/logger"
)

// Notifier pushes compliance status changes onto the event broker whenever
// the ledger mutates. Pushes are best-effort: a failed recomputation is
// logged and dropped, it never fails the triggering write.
type Notifier struct {
	broker *events.Broker
	status StatusServicer
	flags  FeatureFlagServicer
}

// NewNotifier creates a notifier over the broker and the status sources.
func NewNotifier(broker *events.Broker, status StatusServicer, flags FeatureFlagServicer) *Notifier {
	return &Notifier{broker: broker, status: status, flags: flags}
}

// LedgerChanged recomputes the monitor statuses for the current year and
// publishes the ones that changed since the last push.
func (n *Notifier) LedgerChanged(userID string) {
	if n.broker.SubscriberCount(userID) == 0 {
		return
	}
	year := time.Now().Year()

	if ku, err := n.status.Kleinunternehmer(userID, year); err == nil {
		n.broker.PublishIfChanged(userID, events.EventKleinunternehmer, ku)
	} else {
		logger.Get().Warnw("kleinunternehmer push failed", "user_id", userID, "error", err)
	}

	if abf, err := n.status.Abfaerbung(userID, year); err == nil {
		n.broker.PublishIfChanged(userID, events.EventAbfaerbung, abf)
	} else {
		logger.Get().Warnw("abfaerbung push failed", "user_id", userID, "error", err)
	}

	if si, err := n.status.SocialInsurance(userID, year); err == nil {
		n.broker.PublishIfChanged(userID, events.EventSocialInsurance, si)
	} else {
		logger.Get().Warnw("social insurance push failed", "user_id", userID, "error", err)
	}

	if mf, err := n.status.MandatoryFiling(userID, year); err == nil {
		n.broker.PublishIfChanged(userID, events.EventMandatoryFiling, mf)
	} else {
		logger.Get().Warnw("mandatory filing push failed", "user_id", userID, "error", err)
	}

	if flags, err := n.flags.Flags(userID, year); err == nil {
		n.broker.PublishIfChanged(userID, events.EventFeatureFlags, flags)
	} else {
		logger.Get().Warnw("feature flag push failed", "user_id", userID, "error", err)
	}
}

// CalendarChanged signals that the compliance calendar was modified.
func (n *Notifier) CalendarChanged(userID string) {
	n.broker.Publish(userID, events.EventCalendarChanged, map[string]interface{}{
		"changed_at": time.Now().UTC(),
	})
}

// InvoiceChanged signals an invoice lifecycle change.
func (n *Notifier) InvoiceChanged(userID, invoiceID string, status string) {
	n.broker.Publish(userID, events.EventInvoiceChanged, map[string]interface{}{
		"invoice_id": invoiceID,
		"status":     status,
		"changed_at": time.Now().UTC(),
	})
}
