package models

import "time"

// MeterSample is one cumulative energy reading reported during a session.
type MeterSample struct {
	Timestamp time.Time `json:"timestamp"`
	EnergyWh  float64   `json:"energy_wh"`
}

// ChargingSession is one charging event's ordered metered-energy series,
// bounded by start and stop and owned by exactly one charge point and tag.
// Energy readings are cumulative and must be non-decreasing.
type ChargingSession struct {
	ID            int64         `json:"session_id"`
	ChargePointID string        `json:"charge_point_id"`
	IDTag         string        `json:"id_tag"`
	StartedAt     time.Time     `json:"started_at"`
	StoppedAt     time.Time     `json:"stopped_at"`
	Samples       []MeterSample `json:"samples"`
}

// TotalEnergyWh is the metered consumption across the whole session.
func (s ChargingSession) TotalEnergyWh() float64 {
	if len(s.Samples) < 2 {
		return 0
	}
	return s.Samples[len(s.Samples)-1].EnergyWh - s.Samples[0].EnergyWh
}
