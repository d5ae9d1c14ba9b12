package tariff

import (
	"github.com/shopspring/decimal"

	"evtariff/internal/models"
)

// HourCell is one hour of the projected pricing grid. An undefined cell
// means no rule covers any part of the hour; an ambiguous cell means the
// hour spans differently priced rules and the UI should show a dash instead
// of picking one.
type HourCell struct {
	Hour      int             `json:"hour"`
	Price     decimal.Decimal `json:"price"`
	Defined   bool            `json:"defined"`
	Ambiguous bool            `json:"ambiguous"`
}

// ProjectMatrix builds the hour(0..23) price grid of one (season, day type)
// group for the pricing chart. It is a pure read projection over the
// snapshot's recurring rules; overrides do not appear in the grid.
func ProjectMatrix(season models.Season, dayType models.DayType, snap *Snapshot) [24]HourCell {
	var grid [24]HourCell
	rules := snap.RulesFor(season, dayType)

	for hour := 0; hour < 24; hour++ {
		cell := HourCell{Hour: hour}
		for _, rule := range rules {
			if !rule.Overlaps(hour*60, (hour+1)*60) {
				continue
			}
			if !cell.Defined {
				cell.Defined = true
				cell.Price = rule.UnitPrice
				continue
			}
			if !cell.Price.Equal(rule.UnitPrice) {
				cell.Ambiguous = true
				cell.Price = decimal.Decimal{}
			}
		}
		if cell.Ambiguous {
			cell.Defined = false
		}
		grid[hour] = cell
	}
	return grid
}
