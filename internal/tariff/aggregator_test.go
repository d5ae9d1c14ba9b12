package tariff

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"evtariff/internal/models"
)

func summerWeekdaySnapshot(rules ...models.RecurringRule) *Snapshot {
	return NewSnapshot("v1", rules, nil)
}

func flatPolicy(basic string) models.BillingPolicy {
	return models.BillingPolicy{
		BasicFee:           price(basic),
		OveruseThresholdWh: 100000,
		OveruseUnitPrice:   decimal.Zero,
	}
}

func linearSession(t *testing.T, id int64, from, to string, startWh, endWh float64) models.ChargingSession {
	t.Helper()
	start := at(t, from)
	stop := at(t, to)
	return models.ChargingSession{
		ID:        id,
		StartedAt: start,
		StoppedAt: stop,
		Samples: []models.MeterSample{
			{Timestamp: start, EnergyWh: startWh},
			{Timestamp: stop, EnergyWh: endWh},
		},
	}
}

func newAggregator() *Aggregator {
	return NewAggregator(NewResolver(summerWeekday(), time.UTC))
}

func TestComputeCostSingleRate(t *testing.T) {
	snap := summerWeekdaySnapshot(models.RecurringRule{
		ID: 1, Season: models.SeasonSummer, DayType: models.DayTypeWeekday,
		StartMinute: 480, EndMinute: 720, UnitPrice: price("5.0"),
	})
	session := linearSession(t, 42, "2025-07-01 08:00", "2025-07-01 09:00", 0, 2000)

	breakdown, err := newAggregator().ComputeCost(session, snap, flatPolicy("10"))
	if err != nil {
		t.Fatalf("compute cost: %v", err)
	}
	if !breakdown.EnergyCost.Equal(price("10")) {
		t.Fatalf("expected energy cost 10, got %s", breakdown.EnergyCost)
	}
	if !breakdown.OveruseFee.IsZero() {
		t.Fatalf("expected zero overuse fee, got %s", breakdown.OveruseFee)
	}
	if breakdown.TotalCost.StringFixed(2) != "20.00" {
		t.Fatalf("expected total 20.00, got %s", breakdown.TotalCost.StringFixed(2))
	}
	if breakdown.TotalEnergyWh != 2000 {
		t.Fatalf("expected 2000 Wh, got %f", breakdown.TotalEnergyWh)
	}
	if breakdown.SnapshotVersion != "v1" {
		t.Fatalf("expected snapshot version v1, got %s", breakdown.SnapshotVersion)
	}
}

func TestComputeCostSplitsAtRateChange(t *testing.T) {
	snap := summerWeekdaySnapshot(
		models.RecurringRule{ID: 1, Season: models.SeasonSummer, DayType: models.DayTypeWeekday, StartMinute: 0, EndMinute: 480, UnitPrice: price("1")},
		models.RecurringRule{ID: 2, Season: models.SeasonSummer, DayType: models.DayTypeWeekday, StartMinute: 480, EndMinute: 1440, UnitPrice: price("2")},
	)
	// 1000 Wh spread linearly across 07:30..08:30: half before the 08:00
	// rate change, half after.
	session := linearSession(t, 7, "2025-07-01 07:30", "2025-07-01 08:30", 0, 1000)

	breakdown, err := newAggregator().ComputeCost(session, snap, flatPolicy("0"))
	if err != nil {
		t.Fatalf("compute cost: %v", err)
	}
	if !breakdown.EnergyCost.Equal(price("1.5")) {
		t.Fatalf("expected energy cost 1.5, got %s", breakdown.EnergyCost)
	}
	if len(breakdown.Lines) != 2 {
		t.Fatalf("expected 2 detail lines, got %d", len(breakdown.Lines))
	}
	if !breakdown.Lines[1].From.Equal(at(t, "2025-07-01 08:00")) {
		t.Fatalf("expected second line to start at 08:00, got %s", breakdown.Lines[1].From)
	}
}

func TestComputeCostOveruseFee(t *testing.T) {
	snap := summerWeekdaySnapshot(models.RecurringRule{
		ID: 1, Season: models.SeasonSummer, DayType: models.DayTypeWeekday,
		StartMinute: 0, EndMinute: 1440, UnitPrice: price("2.0"),
	})
	session := linearSession(t, 9, "2025-07-01 00:00", "2025-07-01 12:00", 0, 120000)
	policy := models.BillingPolicy{
		BasicFee:           price("75"),
		OveruseThresholdWh: 100000,
		OveruseUnitPrice:   price("8.0"),
	}

	breakdown, err := newAggregator().ComputeCost(session, snap, policy)
	if err != nil {
		t.Fatalf("compute cost: %v", err)
	}
	if !breakdown.OveruseFee.Equal(price("160")) {
		t.Fatalf("expected overuse fee 160, got %s", breakdown.OveruseFee)
	}
	// 120 kWh * 2.0 + 75 basic + 160 overuse
	if breakdown.TotalCost.StringFixed(2) != "475.00" {
		t.Fatalf("expected total 475.00, got %s", breakdown.TotalCost.StringFixed(2))
	}
}

func TestComputeCostRuleGapAborts(t *testing.T) {
	snap := summerWeekdaySnapshot(models.RecurringRule{
		ID: 1, Season: models.SeasonSummer, DayType: models.DayTypeWeekday,
		StartMinute: 480, EndMinute: 1440, UnitPrice: price("5.0"),
	})
	// Session starts at 03:00 where nothing applies.
	session := linearSession(t, 3, "2025-07-01 03:00", "2025-07-01 09:00", 0, 5000)

	breakdown, err := newAggregator().ComputeCost(session, snap, flatPolicy("10"))
	if !errors.Is(err, ErrNoApplicableRule) {
		t.Fatalf("expected ErrNoApplicableRule, got %v", err)
	}
	if breakdown != nil {
		t.Fatalf("expected no partial breakdown, got %+v", breakdown)
	}
}

func TestComputeCostRejectsMalformedSessions(t *testing.T) {
	snap := summerWeekdaySnapshot(models.RecurringRule{
		ID: 1, Season: models.SeasonSummer, DayType: models.DayTypeWeekday,
		StartMinute: 0, EndMinute: 1440, UnitPrice: price("2.0"),
	})
	agg := newAggregator()

	regressed := linearSession(t, 1, "2025-07-01 08:00", "2025-07-01 09:00", 2000, 1000)
	if _, err := agg.ComputeCost(regressed, snap, flatPolicy("0")); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for energy regression, got %v", err)
	}

	unsorted := models.ChargingSession{ID: 2, Samples: []models.MeterSample{
		{Timestamp: at(t, "2025-07-01 09:00"), EnergyWh: 0},
		{Timestamp: at(t, "2025-07-01 08:00"), EnergyWh: 1000},
	}}
	if _, err := agg.ComputeCost(unsorted, snap, flatPolicy("0")); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for unsorted samples, got %v", err)
	}

	short := models.ChargingSession{ID: 3, Samples: []models.MeterSample{
		{Timestamp: at(t, "2025-07-01 08:00"), EnergyWh: 0},
	}}
	if _, err := agg.ComputeCost(short, snap, flatPolicy("0")); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for single sample, got %v", err)
	}
}

func TestComputeCostAdditiveUnderSampleSplit(t *testing.T) {
	snap := summerWeekdaySnapshot(
		models.RecurringRule{ID: 1, Season: models.SeasonSummer, DayType: models.DayTypeWeekday, StartMinute: 0, EndMinute: 540, UnitPrice: price("1.96")},
		models.RecurringRule{ID: 2, Season: models.SeasonSummer, DayType: models.DayTypeWeekday, StartMinute: 540, EndMinute: 1440, UnitPrice: price("5.01")},
	)
	agg := newAggregator()

	whole := models.ChargingSession{ID: 5, Samples: []models.MeterSample{
		{Timestamp: at(t, "2025-07-01 08:00"), EnergyWh: 0},
		{Timestamp: at(t, "2025-07-01 09:30"), EnergyWh: 3000},
		{Timestamp: at(t, "2025-07-01 11:00"), EnergyWh: 6000},
	}}
	first := models.ChargingSession{ID: 5, Samples: whole.Samples[:2]}
	second := models.ChargingSession{ID: 5, Samples: whole.Samples[1:]}

	total, err := agg.ComputeCost(whole, snap, flatPolicy("0"))
	if err != nil {
		t.Fatalf("compute whole: %v", err)
	}
	a, err := agg.ComputeCost(first, snap, flatPolicy("0"))
	if err != nil {
		t.Fatalf("compute first half: %v", err)
	}
	b, err := agg.ComputeCost(second, snap, flatPolicy("0"))
	if err != nil {
		t.Fatalf("compute second half: %v", err)
	}

	sum := a.EnergyCost.Add(b.EnergyCost)
	if !total.EnergyCost.Equal(sum) {
		t.Fatalf("energy cost not additive under split: whole=%s parts=%s", total.EnergyCost, sum)
	}
}

func TestComputeCostIdempotent(t *testing.T) {
	snap := summerWeekdaySnapshot(
		models.RecurringRule{ID: 1, Season: models.SeasonSummer, DayType: models.DayTypeWeekday, StartMinute: 0, EndMinute: 540, UnitPrice: price("1.96")},
		models.RecurringRule{ID: 2, Season: models.SeasonSummer, DayType: models.DayTypeWeekday, StartMinute: 540, EndMinute: 1440, UnitPrice: price("5.01")},
	)
	session := linearSession(t, 8, "2025-07-01 08:17", "2025-07-01 10:43", 120, 7340)
	policy := models.BillingPolicy{BasicFee: price("75"), OveruseThresholdWh: 2000, OveruseUnitPrice: price("1.02")}
	agg := newAggregator()

	one, err := agg.ComputeCost(session, snap, policy)
	if err != nil {
		t.Fatalf("first compute: %v", err)
	}
	two, err := agg.ComputeCost(session, snap, policy)
	if err != nil {
		t.Fatalf("second compute: %v", err)
	}

	if one.TotalCost.String() != two.TotalCost.String() ||
		one.EnergyCost.String() != two.EnergyCost.String() ||
		one.OveruseFee.String() != two.OveruseFee.String() ||
		one.BasicFee.String() != two.BasicFee.String() {
		t.Fatalf("breakdowns differ between identical computations: %+v vs %+v", one, two)
	}
	if len(one.Lines) != len(two.Lines) {
		t.Fatalf("detail lines differ: %d vs %d", len(one.Lines), len(two.Lines))
	}
	for i := range one.Lines {
		if one.Lines[i].Cost.String() != two.Lines[i].Cost.String() {
			t.Fatalf("line %d differs: %s vs %s", i, one.Lines[i].Cost, two.Lines[i].Cost)
		}
	}
}

func TestComputeCostCrossesMidnight(t *testing.T) {
	rules := []models.RecurringRule{
		{ID: 1, Season: models.SeasonSummer, DayType: models.DayTypeWeekday, StartMinute: 0, EndMinute: 1440, UnitPrice: price("3")},
		{ID: 2, Season: models.SeasonSummer, DayType: models.DayTypeHoliday, StartMinute: 0, EndMinute: 1440, UnitPrice: price("1")},
	}
	snap := NewSnapshot("v1", rules, nil)

	// Friday 23:00 -> Saturday 01:00; the classifier flips to holiday at
	// midnight, so the two hours are priced differently.
	classifier := weekendClassifier{}
	agg := NewAggregator(NewResolver(classifier, time.UTC))
	session := linearSession(t, 11, "2025-07-04 23:00", "2025-07-05 01:00", 0, 2000)

	breakdown, err := agg.ComputeCost(session, snap, flatPolicy("0"))
	if err != nil {
		t.Fatalf("compute cost: %v", err)
	}
	// 1 kWh at 3 + 1 kWh at 1
	if !breakdown.EnergyCost.Equal(price("4")) {
		t.Fatalf("expected energy cost 4, got %s", breakdown.EnergyCost)
	}
}

type weekendClassifier struct{}

func (weekendClassifier) Classify(date time.Time) DayClass {
	dayType := models.DayTypeWeekday
	if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
		dayType = models.DayTypeHoliday
	}
	return DayClass{Season: models.SeasonSummer, DayType: dayType}
}
