package tariff

import (
	"sort"
	"time"

	"evtariff/internal/models"
)

// DayClass is the calendar classification of one date.
type DayClass struct {
	Season  models.Season  `json:"season"`
	DayType models.DayType `json:"day_type"`
}

// DayClassifier decides season and day type for a calendar date. Holiday and
// season logic lives outside the engine; implementations must be pure.
type DayClassifier interface {
	Classify(date time.Time) DayClass
}

type groupKey struct {
	season  models.Season
	dayType models.DayType
}

// Snapshot is an immutable, consistent view of the rule set used for one
// resolution or aggregation call. The calling layer builds a fresh snapshot
// per request (copy-on-read); the engine never sees concurrent mutation.
type Snapshot struct {
	Version string

	rules         []models.RecurringRule
	overrides     []models.DateOverride
	byGroup       map[groupKey][]models.RecurringRule
	byDate        map[string][]models.DateOverride
	recurringMark []int
}

// NewSnapshot indexes the given rule set under a version identifier. Input
// slices are copied; the caller may keep mutating its own copies.
func NewSnapshot(version string, rules []models.RecurringRule, overrides []models.DateOverride) *Snapshot {
	s := &Snapshot{
		Version:   version,
		rules:     append([]models.RecurringRule(nil), rules...),
		overrides: append([]models.DateOverride(nil), overrides...),
		byGroup:   make(map[groupKey][]models.RecurringRule),
		byDate:    make(map[string][]models.DateOverride),
	}

	markSet := make(map[int]struct{})
	for _, r := range s.rules {
		key := groupKey{season: r.Season, dayType: r.DayType}
		s.byGroup[key] = append(s.byGroup[key], r)
		markSet[r.StartMinute] = struct{}{}
		markSet[r.EndMinute] = struct{}{}
	}
	for _, group := range s.byGroup {
		sort.Slice(group, func(i, j int) bool { return group[i].StartMinute < group[j].StartMinute })
	}
	for _, o := range s.overrides {
		key := models.DateKey(o.Date)
		s.byDate[key] = append(s.byDate[key], o)
	}
	for _, day := range s.byDate {
		sort.Slice(day, func(i, j int) bool { return day[i].ID < day[j].ID })
	}

	s.recurringMark = make([]int, 0, len(markSet))
	for m := range markSet {
		s.recurringMark = append(s.recurringMark, m)
	}
	sort.Ints(s.recurringMark)
	return s
}

// Rules returns the raw recurring rule set (for caching and listing).
func (s *Snapshot) Rules() []models.RecurringRule {
	return s.rules
}

// Overrides returns the raw override set (for caching and listing).
func (s *Snapshot) Overrides() []models.DateOverride {
	return s.overrides
}

// RulesFor returns the recurring rules of one (season, day type) group,
// sorted by start minute.
func (s *Snapshot) RulesFor(season models.Season, dayType models.DayType) []models.RecurringRule {
	return s.byGroup[groupKey{season: season, dayType: dayType}]
}

// OverridesOn returns the overrides of one calendar date, sorted by creation
// order (ascending ID).
func (s *Snapshot) OverridesOn(dateKey string) []models.DateOverride {
	return s.byDate[dateKey]
}

// MinuteMarks returns every minute of the given date at which the resolved
// price could change: all recurring rule boundaries plus that date's
// override boundaries. The list is sorted and de-duplicated.
func (s *Snapshot) MinuteMarks(dateKey string) []int {
	day := s.byDate[dateKey]
	if len(day) == 0 {
		return s.recurringMark
	}
	markSet := make(map[int]struct{}, len(s.recurringMark)+2*len(day))
	for _, m := range s.recurringMark {
		markSet[m] = struct{}{}
	}
	for _, o := range day {
		markSet[o.StartMinute] = struct{}{}
		markSet[o.EndMinute] = struct{}{}
	}
	marks := make([]int, 0, len(markSet))
	for m := range markSet {
		marks = append(marks, m)
	}
	sort.Ints(marks)
	return marks
}
