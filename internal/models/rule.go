package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Season splits the year into the two Taipower pricing seasons.
type Season string

const (
	SeasonSummer    Season = "summer"
	SeasonNonSummer Season = "non_summer"
)

// DayType distinguishes weekday pricing from holiday pricing.
type DayType string

const (
	DayTypeWeekday DayType = "weekday"
	DayTypeHoliday DayType = "holiday"
)

// ParseSeason validates a season value coming from the API or storage.
func ParseSeason(s string) (Season, error) {
	switch Season(s) {
	case SeasonSummer, SeasonNonSummer:
		return Season(s), nil
	}
	return "", fmt.Errorf("models: unknown season %q", s)
}

// ParseDayType validates a day type value coming from the API or storage.
func ParseDayType(s string) (DayType, error) {
	switch DayType(s) {
	case DayTypeWeekday, DayTypeHoliday:
		return DayType(s), nil
	}
	return "", fmt.Errorf("models: unknown day type %q", s)
}

// RecurringRule prices a half-open [StartMinute, EndMinute) window of every
// calendar date matching its season and day type. EndMinute may be 1440,
// meaning the window runs to midnight.
type RecurringRule struct {
	ID          int64           `db:"id" json:"id"`
	Season      Season          `db:"season" json:"season"`
	DayType     DayType         `db:"day_type" json:"day_type"`
	StartMinute int             `db:"start_minute" json:"start_minute"`
	EndMinute   int             `db:"end_minute" json:"end_minute"`
	UnitPrice   decimal.Decimal `db:"price" json:"price"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Covers reports whether the rule window contains the given minute of day.
func (r RecurringRule) Covers(minute int) bool {
	return minute >= r.StartMinute && minute < r.EndMinute
}

// Overlaps reports whether two half-open windows intersect.
func (r RecurringRule) Overlaps(startMinute, endMinute int) bool {
	return r.StartMinute < endMinute && startMinute < r.EndMinute
}

// DateOverride prices a half-open window of one exact calendar date and takes
// precedence over any recurring rule. When two overrides for the same date
// overlap, the one created last (highest ID) wins; overlapping entries are a
// data-entry conflict surfaced through the ID ordering, never merged.
type DateOverride struct {
	ID          int64           `db:"id" json:"id"`
	Date        time.Time       `db:"date" json:"date"`
	StartMinute int             `db:"start_minute" json:"start_minute"`
	EndMinute   int             `db:"end_minute" json:"end_minute"`
	UnitPrice   decimal.Decimal `db:"price" json:"price"`
	Label       string          `db:"label" json:"label"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Covers reports whether the override window contains the given minute of day.
func (o DateOverride) Covers(minute int) bool {
	return minute >= o.StartMinute && minute < o.EndMinute
}

// DateKey formats a timestamp as the calendar-date key used to index
// overrides (the date in the instant's own location).
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
