package models

import "testing"

func TestParseMinuteOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"06:00", 360},
		{"09:30", 570},
		{"23:59", 1439},
		{"24:00", 1440},
		{" 08:00 ", 480},
	}
	for _, c := range cases {
		got, err := ParseMinuteOfDay(c.in)
		if err != nil {
			t.Fatalf("parse %q: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("parse %q: expected %d, got %d", c.in, c.want, got)
		}
	}
}

func TestParseMinuteOfDayRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "9", "25:00", "24:01", "12:60", "ab:cd", "-1:00"} {
		if _, err := ParseMinuteOfDay(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestFormatMinuteOfDay(t *testing.T) {
	if got := FormatMinuteOfDay(570); got != "09:30" {
		t.Fatalf("expected 09:30, got %s", got)
	}
	if got := FormatMinuteOfDay(1440); got != "24:00" {
		t.Fatalf("expected 24:00, got %s", got)
	}
}
