package models

import (
	"testing"
	"time"
)

func TestInvoiceTransitions(t *testing.T) {
	allowed := []struct {
		from, to InvoiceStatus
	}{
		{InvoiceDraft, InvoiceSent},
		{InvoiceDraft, InvoiceCancelled},
		{InvoiceSent, InvoicePaid},
		{InvoiceSent, InvoiceCancelled},
		{InvoiceOverdue, InvoicePaid},
		{InvoiceOverdue, InvoiceCancelled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct {
		from, to InvoiceStatus
	}{
		{InvoiceDraft, InvoicePaid},
		{InvoicePaid, InvoiceCancelled},
		{InvoicePaid, InvoiceSent},
		{InvoiceCancelled, InvoiceSent},
		{InvoiceSent, InvoiceDraft},
		{InvoiceOverdue, InvoiceDraft},
	}
	for _, tc := range forbidden {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s must be rejected", tc.from, tc.to)
		}
	}
}

func TestForcesZeroVat(t *testing.T) {
	if VatRegular.ForcesZeroVat() {
		t.Error("regular taxation carries VAT")
	}
	for _, v := range []VatTreatment{VatReverseCharge, VatIntraEU, VatThirdCountry, VatSmallBusiness} {
		if !v.ForcesZeroVat() {
			t.Errorf("%s must force zero VAT", v)
		}
	}
}

func TestInvoiceEffectiveStatus(t *testing.T) {
	due := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	inv := Invoice{Status: InvoiceSent, DueDate: due}

	if got := inv.EffectiveStatus(due.AddDate(0, 0, -1)); got != InvoiceSent {
		t.Errorf("expected SENT before the due date, got %s", got)
	}
	if got := inv.EffectiveStatus(due.AddDate(0, 0, 1)); got != InvoiceOverdue {
		t.Errorf("expected OVERDUE past the due date, got %s", got)
	}

	// Only SENT invoices project to OVERDUE.
	inv.Status = InvoicePaid
	if got := inv.EffectiveStatus(due.AddDate(0, 0, 1)); got != InvoicePaid {
		t.Errorf("expected PAID untouched, got %s", got)
	}
	inv.Status = InvoiceDraft
	if got := inv.EffectiveStatus(due.AddDate(0, 0, 1)); got != InvoiceDraft {
		t.Errorf("expected DRAFT untouched, got %s", got)
	}
}
