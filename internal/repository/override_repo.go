package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"evtariff/internal/models"
	"evtariff/internal/tariff"
)

// OverrideRepository manages date-specific price overrides. Overrides may
// overlap each other; the resolver settles conflicts by creation order, so
// the serial id column doubles as the last-write-wins version field.
type OverrideRepository struct {
	db *sql.DB
}

// NewOverrideRepository returns repository.
func NewOverrideRepository(db *sql.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

// ListByDate returns the overrides of one calendar date in creation order.
func (r *OverrideRepository) ListByDate(ctx context.Context, date time.Time) ([]models.DateOverride, error) {
	const query = `
		SELECT id, date, start_minute, end_minute, price, label, created_at
		FROM daily_pricing_rules
		WHERE date = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOverrides(rows)
}

// Insert stores a new override.
func (r *OverrideRepository) Insert(ctx context.Context, o *models.DateOverride) error {
	const query = `
		INSERT INTO daily_pricing_rules (date, start_minute, end_minute, price, label, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		o.Date, o.StartMinute, o.EndMinute, o.UnitPrice, o.Label,
	).Scan(&o.ID, &o.CreatedAt)
}

// Update rewrites an existing override in place.
func (r *OverrideRepository) Update(ctx context.Context, o *models.DateOverride) error {
	const query = `
		UPDATE daily_pricing_rules
		SET date = $1, start_minute = $2, end_minute = $3, price = $4, label = $5
		WHERE id = $6
	`
	res, err := r.db.ExecContext(ctx, query, o.Date, o.StartMinute, o.EndMinute, o.UnitPrice, o.Label, o.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, o.ID)
}

// Delete removes an override by id. Missing ids are reported, not ignored.
func (r *OverrideRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM daily_pricing_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

// DuplicateDay copies all overrides of sourceDate onto each target date in
// one transaction. Returns the number of copied entries per target.
func (r *OverrideRepository) DuplicateDay(ctx context.Context, sourceDate time.Time, targets []time.Time) (int, error) {
	source, err := r.ListByDate(ctx, sourceDate)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO daily_pricing_rules (date, start_minute, end_minute, price, label, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	for _, target := range targets {
		for _, o := range source {
			if _, err := tx.ExecContext(ctx, query, target, o.StartMinute, o.EndMinute, o.UnitPrice, o.Label); err != nil {
				return 0, err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(source), nil
}

func requireAffected(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: override %d", tariff.ErrRuleNotFound, id)
	}
	return nil
}

func scanOverrides(rows *sql.Rows) ([]models.DateOverride, error) {
	var overrides []models.DateOverride
	for rows.Next() {
		var o models.DateOverride
		if err := rows.Scan(&o.ID, &o.Date, &o.StartMinute, &o.EndMinute, &o.UnitPrice, &o.Label, &o.CreatedAt); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}
