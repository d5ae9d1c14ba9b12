package calendar

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"evtariff/internal/models"
)

func writeCalendar(t *testing.T, dir string, year string, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, year+".json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write calendar: %v", err)
	}
}

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return d
}

func TestClassifySeasonBoundaries(t *testing.T) {
	c := New("")
	cases := []struct {
		date string
		want models.Season
	}{
		{"2025-05-31", models.SeasonNonSummer},
		{"2025-06-01", models.SeasonSummer},
		{"2025-09-30", models.SeasonSummer},
		{"2025-10-01", models.SeasonNonSummer},
	}
	for _, cse := range cases {
		got := c.Classify(date(t, cse.date))
		if got.Season != cse.want {
			t.Fatalf("%s: expected season %s, got %s", cse.date, cse.want, got.Season)
		}
	}
}

func TestClassifyWeekendIsHoliday(t *testing.T) {
	c := New("")
	// 2025-07-05 is a Saturday, 2025-07-07 a Monday.
	if got := c.Classify(date(t, "2025-07-05")); got.DayType != models.DayTypeHoliday {
		t.Fatalf("expected Saturday to be holiday, got %s", got.DayType)
	}
	if got := c.Classify(date(t, "2025-07-07")); got.DayType != models.DayTypeWeekday {
		t.Fatalf("expected Monday to be weekday, got %s", got.DayType)
	}
}

func TestClassifyCalendarFile(t *testing.T) {
	dir := t.TempDir()
	writeCalendar(t, dir, "2025", `{
		"days": {
			"2025-10-10": {"description": "National Day", "isHoliday": true},
			"2025-02-08": {"description": "makeup workday", "isWorkday": true}
		}
	}`)
	c := New(dir)

	// Friday flagged as a public holiday.
	if got := c.Classify(date(t, "2025-10-10")); got.DayType != models.DayTypeHoliday {
		t.Fatalf("expected flagged holiday, got %s", got.DayType)
	}
	// Saturday traded for a weekday.
	if got := c.Classify(date(t, "2025-02-08")); got.DayType != models.DayTypeWeekday {
		t.Fatalf("expected makeup workday to be weekday, got %s", got.DayType)
	}

	info := c.Info(date(t, "2025-10-10"))
	if info.Description != "National Day" {
		t.Fatalf("expected description from calendar file, got %q", info.Description)
	}
	if info.Season != models.SeasonNonSummer {
		t.Fatalf("expected non-summer in October, got %s", info.Season)
	}
}

func TestClassifyMissingYearFallsBack(t *testing.T) {
	c := New(t.TempDir())
	if got := c.Classify(date(t, "2025-07-06")); got.DayType != models.DayTypeHoliday {
		t.Fatalf("expected Sunday fallback to holiday, got %s", got.DayType)
	}
}
