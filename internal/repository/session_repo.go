package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"evtariff/internal/models"
)

// ErrSessionNotFound means the transaction does not exist or has not
// finished yet; only completed sessions can be billed.
var ErrSessionNotFound = errors.New("repository: session not found or not completed")

// SessionRepository materializes charging sessions from the metering
// collaborator's tables (transactions plus ordered meter_values).
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository returns repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get loads one completed session with its ordered meter samples. Boundary
// samples are synthesized from the transaction's start/stop meter readings
// when the telemetry series does not reach the session bounds, mirroring
// what the metering side reports for sparse sessions.
func (r *SessionRepository) Get(ctx context.Context, sessionID int64) (*models.ChargingSession, error) {
	const txnQuery = `
		SELECT transaction_id, charge_point_id, id_tag, start_timestamp, stop_timestamp, meter_start, meter_stop
		FROM transactions
		WHERE transaction_id = $1 AND stop_timestamp IS NOT NULL AND meter_stop IS NOT NULL
	`
	session := &models.ChargingSession{}
	var meterStart, meterStop float64
	err := r.db.QueryRowContext(ctx, txnQuery, sessionID).Scan(
		&session.ID,
		&session.ChargePointID,
		&session.IDTag,
		&session.StartedAt,
		&session.StoppedAt,
		&meterStart,
		&meterStop,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, err
	}

	const samplesQuery = `
		SELECT timestamp, value
		FROM meter_values
		WHERE transaction_id = $1
		ORDER BY timestamp ASC
	`
	rows, err := r.db.QueryContext(ctx, samplesQuery, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var sample models.MeterSample
		if err := rows.Scan(&sample.Timestamp, &sample.EnergyWh); err != nil {
			return nil, err
		}
		session.Samples = append(session.Samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(session.Samples) == 0 || session.Samples[0].Timestamp.After(session.StartedAt) {
		session.Samples = append([]models.MeterSample{{Timestamp: session.StartedAt, EnergyWh: meterStart}}, session.Samples...)
	}
	if last := session.Samples[len(session.Samples)-1]; last.Timestamp.Before(session.StoppedAt) {
		session.Samples = append(session.Samples, models.MeterSample{Timestamp: session.StoppedAt, EnergyWh: meterStop})
	}

	return session, nil
}
