package repository

import (
	"context"
	"database/sql"
	"errors"

	"evtariff/internal/models"
)

// PolicyRepository reads the billing policy row: flat basic fee, overuse
// threshold and overuse unit price.
type PolicyRepository struct {
	db *sql.DB
}

// NewPolicyRepository returns repository.
func NewPolicyRepository(db *sql.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// Get returns the current billing policy.
func (r *PolicyRepository) Get(ctx context.Context) (models.BillingPolicy, error) {
	const query = `
		SELECT basic_fee, threshold_wh, overuse_price
		FROM base_rates
		WHERE id = 1
	`
	var policy models.BillingPolicy
	err := r.db.QueryRowContext(ctx, query).Scan(&policy.BasicFee, &policy.OveruseThresholdWh, &policy.OveruseUnitPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BillingPolicy{}, errors.New("repository: billing policy not configured")
	}
	if err != nil {
		return models.BillingPolicy{}, err
	}
	return policy, nil
}

// Update replaces the billing policy row.
func (r *PolicyRepository) Update(ctx context.Context, policy models.BillingPolicy) error {
	const query = `
		INSERT INTO base_rates (id, basic_fee, threshold_wh, overuse_price)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET basic_fee = EXCLUDED.basic_fee,
		    threshold_wh = EXCLUDED.threshold_wh,
		    overuse_price = EXCLUDED.overuse_price
	`
	_, err := r.db.ExecContext(ctx, query, policy.BasicFee, policy.OveruseThresholdWh, policy.OveruseUnitPrice)
	return err
}
