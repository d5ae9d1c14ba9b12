package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingPolicy carries the per-session fee parameters applied on top of the
// time-of-day energy cost.
type BillingPolicy struct {
	BasicFee           decimal.Decimal `db:"basic_fee" json:"basic_fee"`
	OveruseThresholdWh int64           `db:"threshold_wh" json:"overuse_threshold_wh"`
	OveruseUnitPrice   decimal.Decimal `db:"overuse_price" json:"overuse_unit_price"`
}

// CostLine is one priced sub-interval of a session, kept for audit display.
type CostLine struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	EnergyWh  float64         `json:"energy_wh"`
	UnitPrice decimal.Decimal `json:"price"`
	Cost      decimal.Decimal `json:"cost"`
}

// CostBreakdown is the billing result for one (session, rule snapshot) pair.
// It is immutable once computed; recomputing against a different snapshot
// produces a new breakdown with a different snapshot version.
type CostBreakdown struct {
	SessionID       int64           `json:"session_id"`
	SnapshotVersion string          `json:"snapshot_version"`
	TotalEnergyWh   float64         `json:"total_energy_wh"`
	BasicFee        decimal.Decimal `json:"basic_fee"`
	EnergyCost      decimal.Decimal `json:"energy_cost"`
	OveruseFee      decimal.Decimal `json:"overuse_fee"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	Lines           []CostLine      `json:"details"`
	ComputedAt      time.Time       `json:"computed_at"`
}
