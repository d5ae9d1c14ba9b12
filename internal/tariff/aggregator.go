package tariff

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"evtariff/internal/models"
)

var wattHoursPerKWh = decimal.NewFromInt(1000)

// Aggregator integrates price over a session's metered energy. It performs
// no I/O; rule snapshot and session arrive fully materialized and the same
// inputs always produce the same breakdown.
type Aggregator struct {
	resolver *Resolver
}

// NewAggregator builds an aggregator over the given resolver.
func NewAggregator(resolver *Resolver) *Aggregator {
	return &Aggregator{resolver: resolver}
}

// ComputeCost turns a session and a billing policy into a cost breakdown.
//
// Each gap between adjacent samples is cut at every instant where the
// resolved price could change (rule boundaries and midnights), consumption
// inside a gap is spread linearly across the cuts, and each sub-interval is
// priced at its midpoint. The linear spread is a modeling choice, not a
// measurement fact. Rounding happens once on the final total, never per
// sub-interval. Any rule gap aborts the whole computation; partial costs are
// never returned.
func (a *Aggregator) ComputeCost(session models.ChargingSession, snap *Snapshot, policy models.BillingPolicy) (*models.CostBreakdown, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}

	energyCost := decimal.Zero
	lines := make([]models.CostLine, 0, len(session.Samples))

	for i := 1; i < len(session.Samples); i++ {
		prev, cur := session.Samples[i-1], session.Samples[i]
		gapEnergy := cur.EnergyWh - prev.EnergyWh
		gapDur := cur.Timestamp.Sub(prev.Timestamp)

		cuts := a.cuts(prev.Timestamp, cur.Timestamp, snap)
		from := prev.Timestamp
		for _, to := range append(cuts, cur.Timestamp) {
			if !to.After(from) {
				continue
			}
			share := float64(to.Sub(from)) / float64(gapDur)
			subEnergy := gapEnergy * share
			mid := from.Add(to.Sub(from) / 2)

			price, err := a.resolver.Resolve(mid, snap)
			if err != nil {
				return nil, err
			}
			cost := price.Mul(decimal.NewFromFloat(subEnergy).Div(wattHoursPerKWh))
			energyCost = energyCost.Add(cost)
			lines = append(lines, models.CostLine{
				From:      from,
				To:        to,
				EnergyWh:  subEnergy,
				UnitPrice: price,
				Cost:      cost.Round(2),
			})
			from = to
		}
	}

	totalEnergy := session.TotalEnergyWh()
	overuseFee := decimal.Zero
	if overWh := totalEnergy - float64(policy.OveruseThresholdWh); overWh > 0 {
		overuseFee = policy.OveruseUnitPrice.Mul(decimal.NewFromFloat(overWh).Div(wattHoursPerKWh))
	}

	total := policy.BasicFee.Add(energyCost).Add(overuseFee).Round(2)

	return &models.CostBreakdown{
		SessionID:       session.ID,
		SnapshotVersion: snap.Version,
		TotalEnergyWh:   totalEnergy,
		BasicFee:        policy.BasicFee.Round(2),
		EnergyCost:      energyCost.Round(2),
		OveruseFee:      overuseFee.Round(2),
		TotalCost:       total,
		Lines:           lines,
	}, nil
}

func validateSession(session models.ChargingSession) error {
	if len(session.Samples) < 2 {
		return fmt.Errorf("%w: need at least two meter samples, got %d", ErrInvalidSession, len(session.Samples))
	}
	for i := 1; i < len(session.Samples); i++ {
		prev, cur := session.Samples[i-1], session.Samples[i]
		if !cur.Timestamp.After(prev.Timestamp) {
			return fmt.Errorf("%w: samples not strictly time-ordered at index %d", ErrInvalidSession, i)
		}
		if cur.EnergyWh < prev.EnergyWh {
			return fmt.Errorf("%w: cumulative energy regressed at index %d", ErrInvalidSession, i)
		}
	}
	return nil
}

// cuts returns every instant strictly inside (from, to) at which the
// resolved price could change: minute marks of the snapshot on each touched
// date, plus the midnights between dates (season and day type can flip
// there).
func (a *Aggregator) cuts(from, to time.Time, snap *Snapshot) []time.Time {
	loc := a.resolver.Location()
	localFrom := from.In(loc)

	var cuts []time.Time
	day := time.Date(localFrom.Year(), localFrom.Month(), localFrom.Day(), 0, 0, 0, 0, loc)
	for !day.After(to) {
		if day.After(from) && day.Before(to) {
			cuts = append(cuts, day)
		}
		for _, mark := range snap.MinuteMarks(models.DateKey(day)) {
			at := day.Add(time.Duration(mark) * time.Minute)
			if at.After(from) && at.Before(to) {
				cuts = append(cuts, at)
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return cuts
}
