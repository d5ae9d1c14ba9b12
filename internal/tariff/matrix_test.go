package tariff

import (
	"testing"

	"evtariff/internal/models"
)

func TestProjectMatrix(t *testing.T) {
	snap := NewSnapshot("v1", []models.RecurringRule{
		{ID: 1, Season: models.SeasonNonSummer, DayType: models.DayTypeWeekday, StartMinute: 0, EndMinute: 360, UnitPrice: price("1.89")},
		{ID: 2, Season: models.SeasonNonSummer, DayType: models.DayTypeWeekday, StartMinute: 360, EndMinute: 660, UnitPrice: price("4.78")},
		// 10:30..14:00 overlaps hour 10 together with the rule above.
		{ID: 3, Season: models.SeasonNonSummer, DayType: models.DayTypeWeekday, StartMinute: 630, EndMinute: 840, UnitPrice: price("1.89")},
	}, nil)

	grid := ProjectMatrix(models.SeasonNonSummer, models.DayTypeWeekday, snap)

	if !grid[3].Defined || !grid[3].Price.Equal(price("1.89")) {
		t.Fatalf("expected hour 3 priced 1.89, got %+v", grid[3])
	}
	if !grid[7].Defined || !grid[7].Price.Equal(price("4.78")) {
		t.Fatalf("expected hour 7 priced 4.78, got %+v", grid[7])
	}
	if !grid[10].Ambiguous || grid[10].Defined {
		t.Fatalf("expected hour 10 flagged ambiguous, got %+v", grid[10])
	}
	if grid[15].Defined || grid[15].Ambiguous {
		t.Fatalf("expected hour 15 absent, got %+v", grid[15])
	}
}

func TestProjectMatrixPartialHourCoverage(t *testing.T) {
	snap := NewSnapshot("v1", []models.RecurringRule{
		{ID: 1, Season: models.SeasonSummer, DayType: models.DayTypeHoliday, StartMinute: 510, EndMinute: 570, UnitPrice: price("2.5")},
	}, nil)

	grid := ProjectMatrix(models.SeasonSummer, models.DayTypeHoliday, snap)

	// 08:30..09:30 covers part of both hour 8 and hour 9.
	for _, hour := range []int{8, 9} {
		if !grid[hour].Defined || !grid[hour].Price.Equal(price("2.5")) {
			t.Fatalf("expected hour %d priced 2.5, got %+v", hour, grid[hour])
		}
	}
	if grid[7].Defined {
		t.Fatalf("expected hour 7 absent, got %+v", grid[7])
	}
}

func TestProjectMatrixIgnoresOtherGroups(t *testing.T) {
	snap := NewSnapshot("v1", []models.RecurringRule{
		{ID: 1, Season: models.SeasonSummer, DayType: models.DayTypeWeekday, StartMinute: 0, EndMinute: 1440, UnitPrice: price("5.01")},
	}, nil)

	grid := ProjectMatrix(models.SeasonSummer, models.DayTypeHoliday, snap)
	for hour, cell := range grid {
		if cell.Defined {
			t.Fatalf("expected empty holiday grid, hour %d got %+v", hour, cell)
		}
	}
}
