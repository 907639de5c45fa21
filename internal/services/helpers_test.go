package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dreistrom/internal/events"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newTestNotifier wires a notifier over a fresh broker. Without subscribers
// the ledger pushes short-circuit, so tests exercise the service logic
// without SSE side effects.
func newTestNotifier(db *gorm.DB) *Notifier {
	status := NewStatusService(db)
	flags := NewFeatureFlagService(db, status)
	return NewNotifier(events.NewBroker(), status, flags)
}
