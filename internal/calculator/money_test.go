package calculator

import (
	"testing"
)

func TestFromCents(t *testing.T) {
	if v := FromCents(12345); !v.Equal(d("123.45")) {
		t.Errorf("expected 123.45, got %s", v)
	}
	if v := FromCents(-500); !v.Equal(d("-5")) {
		t.Errorf("expected -5, got %s", v)
	}
	if v := FromCents(0); !v.IsZero() {
		t.Errorf("expected zero, got %s", v)
	}
}

func TestToCents(t *testing.T) {
	if c := ToCents(d("123.45")); c != 12345 {
		t.Errorf("expected 12345, got %d", c)
	}
	if c := ToCents(d("123.455")); c != 12346 {
		t.Errorf("expected sub-cent amounts rounded, got %d", c)
	}
	if c := ToCents(d("-5")); c != -500 {
		t.Errorf("expected -500, got %d", c)
	}
}

func TestCentsRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 123456789} {
		if got := ToCents(FromCents(cents)); got != cents {
			t.Errorf("round trip of %d returned %d", cents, got)
		}
	}
}
