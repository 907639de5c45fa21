package calculator

import (
	"strings"
	"testing"

	"dreistrom/internal/models"
)

func TestDetermineVatTreatment(t *testing.T) {
	cases := []struct {
		name             string
		clientType       models.ClientType
		country          string
		ustID            string
		kleinunternehmer bool
		want             models.VatTreatment
	}{
		{"kleinunternehmer_overrides_everything", models.ClientB2B, "FR", "FR12345678901", true, models.VatSmallBusiness},
		{"domestic", models.ClientB2B, "DE", "", false, models.VatRegular},
		{"empty_country_treated_as_domestic", models.ClientB2C, "", "", false, models.VatRegular},
		{"eu_b2b_with_vat_id", models.ClientB2B, "FR", "FR12345678901", false, models.VatReverseCharge},
		{"eu_b2b_without_vat_id", models.ClientB2B, "FR", "", false, models.VatRegular},
		{"eu_b2c", models.ClientB2C, "AT", "", false, models.VatRegular},
		{"third_country", models.ClientB2B, "US", "", false, models.VatThirdCountry},
		{"lowercase_country_code", models.ClientB2B, "fr", "FR12345678901", false, models.VatReverseCharge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &models.Client{
				ClientType: tc.clientType,
				Country:    tc.country,
				UstIDNr:    tc.ustID,
			}
			got := DetermineVatTreatment(client, tc.kleinunternehmer)
			if got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestIsEUCountry(t *testing.T) {
	if !IsEUCountry("FR") || !IsEUCountry("at") {
		t.Error("expected EU member states to be recognized")
	}
	if IsEUCountry("DE") {
		t.Error("DE is handled as domestic, not EU")
	}
	if IsEUCountry("US") || IsEUCountry("GB") || IsEUCountry("CH") {
		t.Error("expected non-EU countries to be rejected")
	}
}

func TestNoticeFor(t *testing.T) {
	if NoticeFor(models.VatRegular) != "" {
		t.Error("regular taxation needs no notice")
	}
	if NoticeFor(models.VatReverseCharge) != NoticeReverseCharge {
		t.Error("expected the reverse charge notice")
	}
	if NoticeFor(models.VatSmallBusiness) != NoticeSmallBusiness {
		t.Error("expected the §19 notice")
	}
	if NoticeFor(models.VatIntraEU) != NoticeIntraEU {
		t.Error("expected the intra-EU notice")
	}
	if NoticeFor(models.VatThirdCountry) != NoticeThirdCountry {
		t.Error("expected the third country notice")
	}
}

func TestAppendNotice(t *testing.T) {
	t.Run("empty_notes", func(t *testing.T) {
		got := AppendNotice("", NoticeSmallBusiness)
		if got != NoticeSmallBusiness {
			t.Errorf("expected the bare notice, got %q", got)
		}
	})

	t.Run("appends_on_new_line", func(t *testing.T) {
		got := AppendNotice("Zahlbar innerhalb von 14 Tagen.", NoticeReverseCharge)
		if !strings.HasSuffix(got, "\n"+NoticeReverseCharge) {
			t.Errorf("expected the notice appended on a new line, got %q", got)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		once := AppendNotice("", NoticeThirdCountry)
		twice := AppendNotice(once, NoticeThirdCountry)
		if once != twice {
			t.Errorf("appending twice must not duplicate the notice: %q", twice)
		}
	})

	t.Run("empty_notice_is_noop", func(t *testing.T) {
		if got := AppendNotice("notes", ""); got != "notes" {
			t.Errorf("expected unchanged notes, got %q", got)
		}
	})
}

func TestZMReportable(t *testing.T) {
	if !ZMReportable(models.VatReverseCharge, "FR") {
		t.Error("EU reverse charge invoices belong in the ZM")
	}
	if !ZMReportable(models.VatIntraEU, "AT") {
		t.Error("intra-EU supplies belong in the ZM")
	}
	if ZMReportable(models.VatIntraEU, "US") {
		t.Error("the ZM only covers EU counterparties")
	}
	if ZMReportable(models.VatRegular, "FR") {
		t.Error("regular invoices are not ZM-reportable")
	}
	if ZMReportable(models.VatThirdCountry, "US") {
		t.Error("third country invoices are not ZM-reportable")
	}
}
