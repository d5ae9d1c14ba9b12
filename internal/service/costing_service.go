package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"evtariff/internal/models"
	"evtariff/internal/repository"
	"evtariff/internal/tariff"
)

// CostingService turns completed sessions into cost breakdowns: load the
// session and billing policy, compute against the current snapshot, persist
// the result for audit. Engine errors pass through unchanged; a failed
// computation stores nothing.
type CostingService struct {
	sessions   *repository.SessionRepository
	policies   *repository.PolicyRepository
	breakdowns *repository.BreakdownRepository
	pricing    *PricingService
	aggregator *tariff.Aggregator
	logger     *zap.Logger
}

// NewCostingService builds service.
func NewCostingService(
	sessions *repository.SessionRepository,
	policies *repository.PolicyRepository,
	breakdowns *repository.BreakdownRepository,
	pricing *PricingService,
	aggregator *tariff.Aggregator,
	logger *zap.Logger,
) *CostingService {
	return &CostingService{
		sessions:   sessions,
		policies:   policies,
		breakdowns: breakdowns,
		pricing:    pricing,
		aggregator: aggregator,
		logger:     logger,
	}
}

// SessionCost computes and persists the breakdown for one session.
func (s *CostingService) SessionCost(ctx context.Context, sessionID int64) (*models.CostBreakdown, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	policy, err := s.policies.Get(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := s.pricing.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.aggregator.ComputeCost(*session, snap, policy)
	if err != nil {
		return nil, err
	}
	breakdown.ComputedAt = time.Now().UTC()

	if err := s.breakdowns.Insert(ctx, breakdown); err != nil {
		return nil, err
	}

	s.logger.Info("session cost computed",
		zap.Int64("session_id", sessionID),
		zap.String("snapshot_version", breakdown.SnapshotVersion),
		zap.Float64("total_energy_wh", breakdown.TotalEnergyWh),
		zap.String("total_cost", breakdown.TotalCost.StringFixed(2)),
	)
	return breakdown, nil
}
