package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"evtariff/internal/models"
	"evtariff/internal/tariff"
)

// RuleRepository is the write-path adapter over the pricing_rules table. It
// enforces the non-overlap invariant the resolver depends on: inserts that
// would overlap a differently priced interval are rejected, and hour-aligned
// edits go through Replace, which swaps the exactly coinciding rule and the
// new one in a single transaction so no zero-coverage window is observable.
type RuleRepository struct {
	db *sql.DB
}

// NewRuleRepository returns repository.
func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

const selectRules = `
	SELECT id, season, day_type, start_minute, end_minute, price, created_at, updated_at
	FROM pricing_rules
	ORDER BY season, day_type, start_minute
`

// List returns all recurring rules ordered by group and start time.
func (r *RuleRepository) List(ctx context.Context) ([]models.RecurringRule, error) {
	rows, err := r.db.QueryContext(ctx, selectRules)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

// Insert adds a rule after checking it does not overlap a differently
// priced interval in its (season, day type) group.
func (r *RuleRepository) Insert(ctx context.Context, rule *models.RecurringRule) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := checkOverlapConflict(ctx, tx, rule, 0); err != nil {
		return err
	}
	if err := insertRule(ctx, tx, rule); err != nil {
		return err
	}
	return tx.Commit()
}

// Replace atomically swaps the rule whose interval exactly coincides with
// the new one (if any) for the replacement. Arbitrary non-coinciding
// overlaps are still rejected; automatic reconciliation of those is out of
// scope for the adapter.
func (r *RuleRepository) Replace(ctx context.Context, rule *models.RecurringRule) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const dropCoinciding = `
		DELETE FROM pricing_rules
		WHERE season = $1 AND day_type = $2 AND start_minute = $3 AND end_minute = $4
	`
	if _, err := tx.ExecContext(ctx, dropCoinciding, rule.Season, rule.DayType, rule.StartMinute, rule.EndMinute); err != nil {
		return err
	}
	if err := checkOverlapConflict(ctx, tx, rule, 0); err != nil {
		return err
	}
	if err := insertRule(ctx, tx, rule); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes the rule identified by its group and interval. A missing
// rule is reported as tariff.ErrRuleNotFound, never swallowed.
func (r *RuleRepository) Delete(ctx context.Context, season models.Season, dayType models.DayType, startMinute, endMinute int) error {
	const query = `
		DELETE FROM pricing_rules
		WHERE season = $1 AND day_type = $2 AND start_minute = $3 AND end_minute = $4
	`
	res, err := r.db.ExecContext(ctx, query, season, dayType, startMinute, endMinute)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s %s %s-%s", tariff.ErrRuleNotFound,
			season, dayType, models.FormatMinuteOfDay(startMinute), models.FormatMinuteOfDay(endMinute))
	}
	return nil
}

// LoadSnapshot materializes a fresh, versioned snapshot of the whole rule
// set. The copy is what gives the engine snapshot isolation: concurrent rule
// writes cannot touch a snapshot already handed out.
func (r *RuleRepository) LoadSnapshot(ctx context.Context) (*tariff.Snapshot, error) {
	rules, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	const query = `
		SELECT id, date, start_minute, end_minute, price, label, created_at
		FROM daily_pricing_rules
		ORDER BY date, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []models.DateOverride
	for rows.Next() {
		var o models.DateOverride
		if err := rows.Scan(&o.ID, &o.Date, &o.StartMinute, &o.EndMinute, &o.UnitPrice, &o.Label, &o.CreatedAt); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tariff.NewSnapshot(uuid.NewString(), rules, overrides), nil
}

func checkOverlapConflict(ctx context.Context, tx *sql.Tx, rule *models.RecurringRule, excludeID int64) error {
	const query = `
		SELECT start_minute, end_minute, price
		FROM pricing_rules
		WHERE season = $1 AND day_type = $2
		  AND start_minute < $3 AND $4 < end_minute
		  AND price <> $5
		  AND id <> $6
		LIMIT 1
	`
	var start, end int
	var price string
	err := tx.QueryRowContext(ctx, query,
		rule.Season, rule.DayType, rule.EndMinute, rule.StartMinute, rule.UnitPrice, excludeID,
	).Scan(&start, &end, &price)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s %s %s-%s collides with %s-%s priced %s",
		tariff.ErrOverlappingRuleConflict,
		rule.Season, rule.DayType,
		models.FormatMinuteOfDay(rule.StartMinute), models.FormatMinuteOfDay(rule.EndMinute),
		models.FormatMinuteOfDay(start), models.FormatMinuteOfDay(end), price)
}

func insertRule(ctx context.Context, tx *sql.Tx, rule *models.RecurringRule) error {
	const query = `
		INSERT INTO pricing_rules (season, day_type, start_minute, end_minute, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	return tx.QueryRowContext(ctx, query,
		rule.Season, rule.DayType, rule.StartMinute, rule.EndMinute, rule.UnitPrice,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func scanRules(rows *sql.Rows) ([]models.RecurringRule, error) {
	var rules []models.RecurringRule
	for rows.Next() {
		var rule models.RecurringRule
		if err := rows.Scan(
			&rule.ID,
			&rule.Season,
			&rule.DayType,
			&rule.StartMinute,
			&rule.EndMinute,
			&rule.UnitPrice,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
