package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"evtariff/internal/models"
)

// BreakdownRepository persists computed cost breakdowns for audit. Rows are
// append-only: recomputing a session against a newer snapshot inserts a new
// row with its own snapshot version, it never rewrites an old one.
type BreakdownRepository struct {
	db *sql.DB
}

// NewBreakdownRepository returns repository.
func NewBreakdownRepository(db *sql.DB) *BreakdownRepository {
	return &BreakdownRepository{db: db}
}

// Insert stores a breakdown together with its detail lines.
func (r *BreakdownRepository) Insert(ctx context.Context, b *models.CostBreakdown) error {
	details, err := json.Marshal(b.Lines)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO cost_breakdowns
			(session_id, snapshot_version, total_energy_wh, basic_fee, energy_cost, overuse_fee, total_cost, details, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		b.SessionID,
		b.SnapshotVersion,
		b.TotalEnergyWh,
		b.BasicFee,
		b.EnergyCost,
		b.OveruseFee,
		b.TotalCost,
		details,
		b.ComputedAt,
	)
	return err
}

// Latest returns the most recently computed breakdown for a session, if any.
func (r *BreakdownRepository) Latest(ctx context.Context, sessionID int64) (*models.CostBreakdown, error) {
	const query = `
		SELECT session_id, snapshot_version, total_energy_wh, basic_fee, energy_cost, overuse_fee, total_cost, details, computed_at
		FROM cost_breakdowns
		WHERE session_id = $1
		ORDER BY computed_at DESC
		LIMIT 1
	`
	var b models.CostBreakdown
	var details []byte
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&b.SessionID,
		&b.SnapshotVersion,
		&b.TotalEnergyWh,
		&b.BasicFee,
		&b.EnergyCost,
		&b.OveruseFee,
		&b.TotalCost,
		&details,
		&b.ComputedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(details, &b.Lines); err != nil {
		return nil, err
	}
	return &b, nil
}
