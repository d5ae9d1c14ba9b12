package tariff

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"evtariff/internal/models"
)

// Resolver answers "what is the unit price at this instant" against one rule
// snapshot. It is stateless and safe for concurrent use.
type Resolver struct {
	classifier DayClassifier
	loc        *time.Location
}

// NewResolver builds a resolver. All minute-of-day arithmetic happens in loc,
// the tariff's civil timezone.
func NewResolver(classifier DayClassifier, loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{classifier: classifier, loc: loc}
}

// Location returns the tariff's civil timezone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Quote is a fully resolved price at one instant.
type Quote struct {
	At        time.Time       `json:"at"`
	UnitPrice decimal.Decimal `json:"price"`
	Season    models.Season   `json:"season"`
	DayType   models.DayType  `json:"day_type"`
	Override  bool            `json:"override"`
	Label     string          `json:"label,omitempty"`
}

// Resolve returns the unit price applicable at the given instant, or
// ErrNoApplicableRule if the snapshot leaves the instant uncovered.
func (r *Resolver) Resolve(at time.Time, snap *Snapshot) (decimal.Decimal, error) {
	quote, err := r.Quote(at, snap)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return quote.UnitPrice, nil
}

// Quote resolves the price together with the classification that produced
// it. Overrides win over recurring rules; among overlapping overrides of the
// same date the most recently created one (highest ID) wins. Interval
// boundaries are half-open: an instant exactly on a boundary belongs to the
// window starting there.
func (r *Resolver) Quote(at time.Time, snap *Snapshot) (Quote, error) {
	local := at.In(r.loc)
	minute := local.Hour()*60 + local.Minute()
	dateKey := models.DateKey(local)

	var winner *models.DateOverride
	day := snap.OverridesOn(dateKey)
	for i := range day {
		if !day[i].Covers(minute) {
			continue
		}
		if winner == nil || day[i].ID > winner.ID {
			winner = &day[i]
		}
	}
	if winner != nil {
		cls := r.classifier.Classify(local)
		return Quote{
			At:        at,
			UnitPrice: winner.UnitPrice,
			Season:    cls.Season,
			DayType:   cls.DayType,
			Override:  true,
			Label:     winner.Label,
		}, nil
	}

	cls := r.classifier.Classify(local)
	for _, rule := range snap.RulesFor(cls.Season, cls.DayType) {
		if rule.Covers(minute) {
			return Quote{
				At:        at,
				UnitPrice: rule.UnitPrice,
				Season:    cls.Season,
				DayType:   cls.DayType,
			}, nil
		}
	}

	return Quote{}, fmt.Errorf("%w: %s %s %s at %s",
		ErrNoApplicableRule, dateKey, cls.Season, cls.DayType, models.FormatMinuteOfDay(minute))
}
