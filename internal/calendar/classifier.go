// Package calendar implements the season/holiday classification the tariff
// engine delegates to. Season follows the Taipower definition (June through
// September is summer). Day type comes from per-year calendar files plus
// weekend logic: an explicitly flagged holiday is a holiday on any weekday,
// and a weekend day is a holiday unless the calendar marks it as a makeup
// workday.
package calendar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"evtariff/internal/models"
	"evtariff/internal/tariff"
)

type dayEntry struct {
	Description string `json:"description"`
	IsHoliday   bool   `json:"isHoliday"`
	IsWorkday   bool   `json:"isWorkday"`
}

type yearFile struct {
	Days map[string]dayEntry `json:"days"`
}

// Classifier resolves DayClass from calendar files in a directory named
// "<year>.json". Years without a file fall back to plain weekend logic.
// Loaded years are cached; the zero directory disables file lookups.
type Classifier struct {
	dir string

	mu    sync.RWMutex
	years map[int]map[string]dayEntry
}

// New builds a classifier reading calendar files from dir.
func New(dir string) *Classifier {
	return &Classifier{dir: dir, years: make(map[int]map[string]dayEntry)}
}

// Classify returns the season and day type of the given date. It never
// fails: a missing or unreadable calendar file degrades to weekend-only
// holiday detection.
func (c *Classifier) Classify(date time.Time) tariff.DayClass {
	season := models.SeasonNonSummer
	if m := date.Month(); m >= time.June && m <= time.September {
		season = models.SeasonSummer
	}

	dayType := models.DayTypeWeekday
	weekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday
	if weekend {
		dayType = models.DayTypeHoliday
	}

	if entry, ok := c.lookup(date); ok {
		switch {
		case entry.IsHoliday:
			dayType = models.DayTypeHoliday
		case entry.IsWorkday:
			// Makeup workday: a weekend that trades places with a weekday.
			dayType = models.DayTypeWeekday
		}
	}

	return tariff.DayClass{Season: season, DayType: dayType}
}

// DayInfo is the classification of one date plus its calendar description,
// served to the UI's holiday lookup.
type DayInfo struct {
	Date        string         `json:"date"`
	Season      models.Season  `json:"season"`
	DayType     models.DayType `json:"day_type"`
	Description string         `json:"description,omitempty"`
}

// Info returns the classification together with the calendar file's
// description of the date, if any.
func (c *Classifier) Info(date time.Time) DayInfo {
	cls := c.Classify(date)
	entry, _ := c.lookup(date)
	return DayInfo{
		Date:        models.DateKey(date),
		Season:      cls.Season,
		DayType:     cls.DayType,
		Description: entry.Description,
	}
}

func (c *Classifier) lookup(date time.Time) (dayEntry, bool) {
	if c.dir == "" {
		return dayEntry{}, false
	}
	year := date.Year()

	c.mu.RLock()
	days, loaded := c.years[year]
	c.mu.RUnlock()

	if !loaded {
		days = c.loadYear(year)
		c.mu.Lock()
		c.years[year] = days
		c.mu.Unlock()
	}

	entry, ok := days[models.DateKey(date)]
	return entry, ok
}

func (c *Classifier) loadYear(year int) map[string]dayEntry {
	path := filepath.Join(c.dir, fmt.Sprintf("%d.json", year))
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]dayEntry{}
	}
	var file yearFile
	if err := json.Unmarshal(data, &file); err != nil {
		return map[string]dayEntry{}
	}
	if file.Days == nil {
		return map[string]dayEntry{}
	}
	return file.Days
}
