package services

import (
	"strings"
	"sync"
	"testing"
	"time"

	"dreistrom/internal/calculator"
	"dreistrom/internal/models"
	"dreistrom/internal/testutil"
)

func invoiceInput(clientID string, stream models.IncomeStream, unitNetCents int64) InvoiceInput {
	issue := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	return InvoiceInput{
		Stream:    stream,
		ClientID:  clientID,
		IssueDate: issue,
		DueDate:   issue.AddDate(0, 0, 14),
		LineItems: []models.LineItem{
			{Description: "Beratung", Quantity: 1, UnitNetCents: unitNetCents},
		},
	}
}

func TestCreateDraft(t *testing.T) {
	t.Run("domestic_regular_vat", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "DE")

		inv, err := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamFreiberuf, 10000))
		testutil.AssertNoError(t, err)

		if inv.Status != models.InvoiceDraft {
			t.Errorf("expected DRAFT, got %s", inv.Status)
		}
		if inv.Number != "" {
			t.Errorf("drafts must not carry a number, got %q", inv.Number)
		}
		if inv.VatTreatment != models.VatRegular {
			t.Errorf("expected REGULAR, got %s", inv.VatTreatment)
		}
		if inv.NetCents != 10000 || inv.VatCents != 1900 || inv.GrossCents != 11900 {
			t.Errorf("expected 10000/1900/11900, got %d/%d/%d", inv.NetCents, inv.VatCents, inv.GrossCents)
		}
	})

	t.Run("kleinunternehmer_zero_vat_with_notice", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		if err := db.Model(user).Update("kleinunternehmer", true).Error; err != nil {
			t.Fatalf("failed to set §19 status: %v", err)
		}
		client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2C, "DE")

		inv, err := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamFreiberuf, 10000))
		testutil.AssertNoError(t, err)

		if inv.VatTreatment != models.VatSmallBusiness {
			t.Errorf("expected SMALL_BUSINESS, got %s", inv.VatTreatment)
		}
		if inv.VatCents != 0 || inv.GrossCents != 10000 {
			t.Errorf("expected zero VAT, got %d/%d", inv.VatCents, inv.GrossCents)
		}
		if !strings.Contains(inv.Notes, calculator.NoticeSmallBusiness) {
			t.Errorf("expected the §19 notice in the notes, got %q", inv.Notes)
		}
		if len(inv.LineItems) != 1 || !inv.LineItems[0].VatRate.IsZero() {
			t.Errorf("expected the line rate forced to zero, got %+v", inv.LineItems)
		}
	})

	t.Run("eu_b2b_reverse_charge", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "FR")

		inv, err := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamGewerbe, 50000))
		testutil.AssertNoError(t, err)

		if inv.VatTreatment != models.VatReverseCharge {
			t.Errorf("expected REVERSE_CHARGE, got %s", inv.VatTreatment)
		}
		if inv.VatCents != 0 {
			t.Errorf("reverse charge carries no VAT, got %d", inv.VatCents)
		}
		if !inv.ZMReportable {
			t.Error("expected ZM-reportable")
		}
		if !strings.Contains(inv.Notes, calculator.NoticeReverseCharge) {
			t.Errorf("expected the §13b notice, got %q", inv.Notes)
		}
	})

	t.Run("line_item_totals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "DE")

		input := invoiceInput(client.ID, models.StreamFreiberuf, 0)
		input.LineItems = []models.LineItem{
			{Description: "Stunden", Quantity: 8, UnitNetCents: 9500},
			{Description: "Anfahrt", Quantity: 1, UnitNetCents: 3000},
		}
		inv, err := svc.CreateDraft(user.ID, input)
		testutil.AssertNoError(t, err)

		if inv.LineItems[0].TotalNetCents != 76000 {
			t.Errorf("expected line total 76000, got %d", inv.LineItems[0].TotalNetCents)
		}
		if inv.NetCents != 79000 {
			t.Errorf("expected net 79000, got %d", inv.NetCents)
		}
	})

	t.Run("mixed_line_item_rates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "DE")

		input := invoiceInput(client.ID, models.StreamFreiberuf, 0)
		input.LineItems = []models.LineItem{
			{Description: "Beratung", Quantity: 1, UnitNetCents: 10000, VatRate: d("0.19")},
			{Description: "Buchlieferung", Quantity: 1, UnitNetCents: 10000, VatRate: d("0.07")},
		}
		inv, err := svc.CreateDraft(user.ID, input)
		testutil.AssertNoError(t, err)

		if inv.LineItems[0].VatCents != 1900 || inv.LineItems[1].VatCents != 700 {
			t.Errorf("expected 1900 and 700 cents line VAT, got %d/%d",
				inv.LineItems[0].VatCents, inv.LineItems[1].VatCents)
		}
		if inv.VatCents != 2600 || inv.GrossCents != 22600 {
			t.Errorf("expected the per-line VAT summed, got %d/%d", inv.VatCents, inv.GrossCents)
		}
	})

	t.Run("explicit_intra_eu_treatment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "AT")

		input := invoiceInput(client.ID, models.StreamGewerbe, 40000)
		input.LineItems[0].VatRate = d("0.19")
		input.VatTreatment = models.VatIntraEU
		inv, err := svc.CreateDraft(user.ID, input)
		testutil.AssertNoError(t, err)

		if inv.VatTreatment != models.VatIntraEU {
			t.Errorf("expected INTRA_EU, got %s", inv.VatTreatment)
		}
		if inv.VatCents != 0 || !inv.LineItems[0].VatRate.IsZero() {
			t.Errorf("intra-EU supplies carry no VAT, got %d cents at rate %s",
				inv.VatCents, inv.LineItems[0].VatRate)
		}
		if !inv.ZMReportable {
			t.Error("expected ZM-reportable")
		}
		if !strings.Contains(inv.Notes, calculator.NoticeIntraEU) {
			t.Errorf("expected the intra-EU notice, got %q", inv.Notes)
		}
	})

	t.Run("validation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "DE")

		input := invoiceInput(client.ID, models.StreamEmployment, 10000)
		_, err := svc.CreateDraft(user.ID, input)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")

		input = invoiceInput(client.ID, models.StreamFreiberuf, 10000)
		input.LineItems = nil
		_, err = svc.CreateDraft(user.ID, input)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")

		input = invoiceInput(client.ID, models.StreamFreiberuf, 10000)
		input.DueDate = input.IssueDate.AddDate(0, 0, -1)
		_, err = svc.CreateDraft(user.ID, input)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")

		input = invoiceInput(client.ID, models.StreamFreiberuf, 10000)
		input.LineItems[0].Quantity = 0
		_, err = svc.CreateDraft(user.ID, input)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("unknown_client", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateDraft(user.ID, invoiceInput("00000000-0000-0000-0000-000000000000", models.StreamFreiberuf, 10000))
		testutil.AssertAppError(t, err, "CLIENT_NOT_FOUND")
	})
}

func TestTransitionInvoice(t *testing.T) {
	t.Run("issue_assigns_number_and_books_income", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "DE")

		draft, err := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamFreiberuf, 10000))
		testutil.AssertNoError(t, err)

		issued, err := svc.Transition(user.ID, draft.ID, models.InvoiceSent)
		testutil.AssertNoError(t, err)

		if issued.Number != "FB-2025-0001" {
			t.Errorf("expected FB-2025-0001, got %q", issued.Number)
		}
		if issued.Status != models.InvoiceSent {
			t.Errorf("expected SENT, got %s", issued.Status)
		}

		var entry models.IncomeEntry
		if err := db.Where("user_id = ? AND invoice_id = ?", user.ID, draft.ID).First(&entry).Error; err != nil {
			t.Fatalf("expected a booked income entry: %v", err)
		}
		if entry.AmountCents != 10000 || entry.Stream != models.StreamFreiberuf {
			t.Errorf("unexpected income entry: %+v", entry)
		}
		if entry.Source != "invoice" {
			t.Errorf("expected source invoice, got %q", entry.Source)
		}
	})

	t.Run("sequence_is_gap_free_per_stream", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "DE")

		first, _ := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamFreiberuf, 10000))
		second, _ := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamFreiberuf, 20000))
		commercial, _ := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamGewerbe, 30000))

		a, err := svc.Transition(user.ID, first.ID, models.InvoiceSent)
		testutil.AssertNoError(t, err)
		b, err := svc.Transition(user.ID, second.ID, models.InvoiceSent)
		testutil.AssertNoError(t, err)
		c, err := svc.Transition(user.ID, commercial.ID, models.InvoiceSent)
		testutil.AssertNoError(t, err)

		if a.Number != "FB-2025-0001" || b.Number != "FB-2025-0002" {
			t.Errorf("expected consecutive FB numbers, got %q and %q", a.Number, b.Number)
		}
		if c.Number != "GW-2025-0001" {
			t.Errorf("expected an independent GW sequence, got %q", c.Number)
		}
	})

	t.Run("cancelled_draft_burns_no_number", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "DE")

		doomed, _ := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamFreiberuf, 10000))
		cancelled, err := svc.Transition(user.ID, doomed.ID, models.InvoiceCancelled)
		testutil.AssertNoError(t, err)
		if cancelled.Number != "" {
			t.Errorf("cancelled drafts must stay unnumbered, got %q", cancelled.Number)
		}

		next, _ := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamFreiberuf, 10000))
		issued, err := svc.Transition(user.ID, next.ID, models.InvoiceSent)
		testutil.AssertNoError(t, err)
		if issued.Number != "FB-2025-0001" {
			t.Errorf("expected the first number despite the cancelled draft, got %q", issued.Number)
		}
	})

	t.Run("racing_issuers_book_income_once", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "DE")

		// A single connection serializes the statements without lock errors
		// while both issuers still pass the pre-transaction status check.
		sqlDB, err := db.DB()
		if err != nil {
			t.Fatalf("unwrap db failed: %v", err)
		}
		sqlDB.SetMaxOpenConns(1)

		draft, _ := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamFreiberuf, 10000))

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Transition(user.ID, draft.ID, models.InvoiceSent)
			}(i)
		}
		wg.Wait()

		if (errs[0] == nil) == (errs[1] == nil) {
			t.Errorf("exactly one issuer must win, got %v and %v", errs[0], errs[1])
		}

		var entries int64
		if err := db.Model(&models.IncomeEntry{}).
			Where("user_id = ? AND invoice_id = ?", user.ID, draft.ID).
			Count(&entries).Error; err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if entries != 1 {
			t.Errorf("expected exactly one booked income entry, got %d", entries)
		}

		var seq models.InvoiceSequence
		if err := db.First(&seq, "user_id = ?", user.ID).Error; err != nil {
			t.Fatalf("load sequence failed: %v", err)
		}
		if seq.LastNumber != 1 {
			t.Errorf("expected one consumed number, got %d", seq.LastNumber)
		}
	})

	t.Run("payment_stamps_paid_at", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "DE")

		draft, _ := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamFreiberuf, 10000))
		if _, err := svc.Transition(user.ID, draft.ID, models.InvoiceSent); err != nil {
			t.Fatalf("issue failed: %v", err)
		}

		paid, err := svc.Transition(user.ID, draft.ID, models.InvoicePaid)
		testutil.AssertNoError(t, err)
		if paid.Status != models.InvoicePaid {
			t.Errorf("expected PAID, got %s", paid.Status)
		}
		if paid.PaidAt == nil {
			t.Error("expected paid_at to be stamped")
		}
	})

	t.Run("illegal_transitions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "DE")

		draft, _ := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamFreiberuf, 10000))
		_, err := svc.Transition(user.ID, draft.ID, models.InvoicePaid)
		testutil.AssertAppError(t, err, "INVALID_TRANSITION")

		if _, err := svc.Transition(user.ID, draft.ID, models.InvoiceSent); err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		if _, err := svc.Transition(user.ID, draft.ID, models.InvoicePaid); err != nil {
			t.Fatalf("payment failed: %v", err)
		}

		_, err = svc.Transition(user.ID, draft.ID, models.InvoiceCancelled)
		testutil.AssertAppError(t, err, "INVALID_TRANSITION")
	})
}

func TestUpdateDraft(t *testing.T) {
	t.Run("recomputes_amounts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		domestic := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "DE")
		foreign := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "FR")

		draft, _ := svc.CreateDraft(user.ID, invoiceInput(domestic.ID, models.StreamFreiberuf, 10000))

		input := invoiceInput(foreign.ID, models.StreamFreiberuf, 20000)
		updated, err := svc.UpdateDraft(user.ID, draft.ID, input)
		testutil.AssertNoError(t, err)

		if updated.VatTreatment != models.VatReverseCharge {
			t.Errorf("expected treatment re-derived for the new client, got %s", updated.VatTreatment)
		}
		if updated.NetCents != 20000 || updated.VatCents != 0 {
			t.Errorf("expected 20000 net and zero VAT, got %d/%d", updated.NetCents, updated.VatCents)
		}
	})

	t.Run("issued_invoice_immutable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvoiceService(db, newTestNotifier(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "DE")

		draft, _ := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamFreiberuf, 10000))
		if _, err := svc.Transition(user.ID, draft.ID, models.InvoiceSent); err != nil {
			t.Fatalf("issue failed: %v", err)
		}

		_, err := svc.UpdateDraft(user.ID, draft.ID, invoiceInput(client.ID, models.StreamFreiberuf, 99999))
		testutil.AssertAppError(t, err, "INVOICE_NOT_EDITABLE")
	})
}

func TestDeleteDraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewInvoiceService(db, newTestNotifier(db))
	user := testutil.CreateTestUser(t, db)
	client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "DE")

	draft, _ := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamFreiberuf, 10000))
	testutil.AssertNoError(t, svc.DeleteDraft(user.ID, draft.ID))
	_, err := svc.Get(user.ID, draft.ID)
	testutil.AssertAppError(t, err, "INVOICE_NOT_FOUND")

	issued, _ := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamFreiberuf, 10000))
	if _, err := svc.Transition(user.ID, issued.ID, models.InvoiceSent); err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	err = svc.DeleteDraft(user.ID, issued.ID)
	testutil.AssertAppError(t, err, "INVOICE_NOT_EDITABLE")
}

func TestListInvoices(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewInvoiceService(db, newTestNotifier(db))
	user := testutil.CreateTestUser(t, db)
	client := testutil.CreateTestClient(t, db, user.ID, models.ClientB2B, "DE")

	draft, _ := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamFreiberuf, 10000))
	open, _ := svc.CreateDraft(user.ID, invoiceInput(client.ID, models.StreamGewerbe, 20000))
	if _, err := svc.Transition(user.ID, open.ID, models.InvoiceSent); err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	all, err := svc.List(user.ID, InvoiceFilter{})
	testutil.AssertNoError(t, err)
	if len(all) != 2 {
		t.Fatalf("expected 2 invoices, got %d", len(all))
	}

	drafts, err := svc.List(user.ID, InvoiceFilter{Status: models.InvoiceDraft})
	testutil.AssertNoError(t, err)
	if len(drafts) != 1 || drafts[0].ID != draft.ID {
		t.Errorf("expected only the draft, got %d invoices", len(drafts))
	}

	commercial, err := svc.List(user.ID, InvoiceFilter{Stream: models.StreamGewerbe})
	testutil.AssertNoError(t, err)
	if len(commercial) != 1 || commercial[0].ID != open.ID {
		t.Errorf("expected only the commercial invoice, got %d", len(commercial))
	}

	// The issued invoice is 14 days from issue and thus already overdue
	// relative to the 2025 test dates.
	overdue, err := svc.List(user.ID, InvoiceFilter{Status: models.InvoiceOverdue})
	testutil.AssertNoError(t, err)
	if len(overdue) != 1 || overdue[0].ID != open.ID {
		t.Errorf("expected the open invoice as overdue, got %d", len(overdue))
	}
}
