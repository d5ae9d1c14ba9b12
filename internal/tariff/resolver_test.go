package tariff

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"evtariff/internal/models"
)

type fakeClassifier struct {
	class DayClass
}

func (f fakeClassifier) Classify(time.Time) DayClass {
	return f.class
}

func summerWeekday() fakeClassifier {
	return fakeClassifier{class: DayClass{Season: models.SeasonSummer, DayType: models.DayTypeWeekday}}
}

func price(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, time.UTC)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return ts
}

func TestResolveRecurringRule(t *testing.T) {
	snap := NewSnapshot("v1", []models.RecurringRule{
		{ID: 1, Season: models.SeasonSummer, DayType: models.DayTypeWeekday, StartMinute: 0, EndMinute: 540, UnitPrice: price("1.96")},
		{ID: 2, Season: models.SeasonSummer, DayType: models.DayTypeWeekday, StartMinute: 540, EndMinute: 1440, UnitPrice: price("5.01")},
	}, nil)
	resolver := NewResolver(summerWeekday(), time.UTC)

	got, err := resolver.Resolve(at(t, "2025-07-01 08:30"), snap)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !got.Equal(price("1.96")) {
		t.Fatalf("expected 1.96, got %s", got)
	}

	got, err = resolver.Resolve(at(t, "2025-07-01 12:00"), snap)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !got.Equal(price("5.01")) {
		t.Fatalf("expected 5.01, got %s", got)
	}
}

func TestResolveBoundaryIsHalfOpen(t *testing.T) {
	snap := NewSnapshot("v1", []models.RecurringRule{
		{ID: 1, Season: models.SeasonSummer, DayType: models.DayTypeWeekday, StartMinute: 420, EndMinute: 480, UnitPrice: price("1")},
		{ID: 2, Season: models.SeasonSummer, DayType: models.DayTypeWeekday, StartMinute: 480, EndMinute: 540, UnitPrice: price("2")},
	}, nil)
	resolver := NewResolver(summerWeekday(), time.UTC)

	// 08:00 exactly belongs to [08:00, 09:00), not [07:00, 08:00).
	got, err := resolver.Resolve(at(t, "2025-07-01 08:00"), snap)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !got.Equal(price("2")) {
		t.Fatalf("expected boundary sample to take the starting interval's price 2, got %s", got)
	}
}

func TestResolveOverrideWins(t *testing.T) {
	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	snap := NewSnapshot("v1", []models.RecurringRule{
		{ID: 1, Season: models.SeasonSummer, DayType: models.DayTypeWeekday, StartMinute: 0, EndMinute: 1440, UnitPrice: price("5.01")},
	}, []models.DateOverride{
		{ID: 10, Date: date, StartMinute: 600, EndMinute: 720, UnitPrice: price("0.99"), Label: "promo"},
	})
	resolver := NewResolver(summerWeekday(), time.UTC)

	quote, err := resolver.Quote(at(t, "2025-07-01 10:30"), snap)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !quote.Override {
		t.Fatalf("expected override to win")
	}
	if !quote.UnitPrice.Equal(price("0.99")) {
		t.Fatalf("expected override price 0.99, got %s", quote.UnitPrice)
	}
	if quote.Label != "promo" {
		t.Fatalf("expected label promo, got %q", quote.Label)
	}

	// Outside the override window the recurring rule applies again.
	got, err := resolver.Resolve(at(t, "2025-07-01 13:00"), snap)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !got.Equal(price("5.01")) {
		t.Fatalf("expected recurring price 5.01, got %s", got)
	}
}

func TestResolveConflictingOverridesLastWriteWins(t *testing.T) {
	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	snap := NewSnapshot("v1", nil, []models.DateOverride{
		{ID: 11, Date: date, StartMinute: 0, EndMinute: 1440, UnitPrice: price("3")},
		{ID: 12, Date: date, StartMinute: 600, EndMinute: 720, UnitPrice: price("7")},
	})
	resolver := NewResolver(summerWeekday(), time.UTC)

	got, err := resolver.Resolve(at(t, "2025-07-01 10:30"), snap)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !got.Equal(price("7")) {
		t.Fatalf("expected most recently created override to win with 7, got %s", got)
	}
}

func TestResolveRuleGapFails(t *testing.T) {
	snap := NewSnapshot("v1", []models.RecurringRule{
		{ID: 1, Season: models.SeasonSummer, DayType: models.DayTypeWeekday, StartMinute: 480, EndMinute: 1440, UnitPrice: price("5.01")},
	}, nil)
	resolver := NewResolver(summerWeekday(), time.UTC)

	_, err := resolver.Resolve(at(t, "2025-07-01 03:00"), snap)
	if !errors.Is(err, ErrNoApplicableRule) {
		t.Fatalf("expected ErrNoApplicableRule, got %v", err)
	}
}

func TestResolveUsesClassifierGroup(t *testing.T) {
	snap := NewSnapshot("v1", []models.RecurringRule{
		{ID: 1, Season: models.SeasonSummer, DayType: models.DayTypeWeekday, StartMinute: 0, EndMinute: 1440, UnitPrice: price("5.01")},
		{ID: 2, Season: models.SeasonSummer, DayType: models.DayTypeHoliday, StartMinute: 0, EndMinute: 1440, UnitPrice: price("1.96")},
	}, nil)
	holiday := fakeClassifier{class: DayClass{Season: models.SeasonSummer, DayType: models.DayTypeHoliday}}
	resolver := NewResolver(holiday, time.UTC)

	got, err := resolver.Resolve(at(t, "2025-07-05 12:00"), snap)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !got.Equal(price("1.96")) {
		t.Fatalf("expected holiday price 1.96, got %s", got)
	}
}
