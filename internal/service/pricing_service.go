package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"evtariff/internal/cache"
	"evtariff/internal/models"
	"evtariff/internal/repository"
	"evtariff/internal/tariff"
)

// ErrInvalidInput marks editor submissions rejected before touching
// storage (unparseable times, unknown enums, negative prices).
var ErrInvalidInput = errors.New("service: invalid input")

// ChangeListener is notified after every successful rule-set write. The live
// rate ticker hangs off this to re-broadcast immediately.
type ChangeListener interface {
	RuleSetChanged()
}

// PricingService owns rule editing and snapshot supply. All engine calls go
// through snapshots it hands out; writes invalidate the cached snapshot so
// the next computation sees a fresh version.
type PricingService struct {
	rules     *repository.RuleRepository
	overrides *repository.OverrideRepository
	cache     *cache.SnapshotCache
	resolver  *tariff.Resolver
	listener  ChangeListener
	logger    *zap.Logger
}

// NewPricingService builds service. cache may be nil (snapshots then always
// come from the database).
func NewPricingService(
	rules *repository.RuleRepository,
	overrides *repository.OverrideRepository,
	snapshotCache *cache.SnapshotCache,
	resolver *tariff.Resolver,
	logger *zap.Logger,
) *PricingService {
	return &PricingService{
		rules:     rules,
		overrides: overrides,
		cache:     snapshotCache,
		resolver:  resolver,
		logger:    logger,
	}
}

// SetChangeListener registers the rule-change hook. Called once at wiring
// time, before the service starts serving.
func (s *PricingService) SetChangeListener(l ChangeListener) {
	s.listener = l
}

// RuleInput is one recurring rule as submitted by the editor UI.
type RuleInput struct {
	Season    string
	DayType   string
	StartTime string
	EndTime   string
	Price     decimal.Decimal
}

// OverrideInput is one date override as submitted by the editor UI.
type OverrideInput struct {
	ID        int64
	Date      string
	StartTime string
	EndTime   string
	Price     decimal.Decimal
	Label     string
}

// ListRules returns all recurring rules.
func (s *PricingService) ListRules(ctx context.Context) ([]models.RecurringRule, error) {
	return s.rules.List(ctx)
}

// AddRule validates and inserts a recurring rule.
func (s *PricingService) AddRule(ctx context.Context, input RuleInput) (*models.RecurringRule, error) {
	rule, err := s.ruleFromInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.rules.Insert(ctx, rule); err != nil {
		return nil, err
	}
	s.ruleSetChanged(ctx, "rule added",
		zap.String("season", string(rule.Season)),
		zap.String("day_type", string(rule.DayType)),
		zap.String("window", window(rule.StartMinute, rule.EndMinute)))
	return rule, nil
}

// ReplaceRule atomically swaps the exactly coinciding rule for the new one.
func (s *PricingService) ReplaceRule(ctx context.Context, input RuleInput) (*models.RecurringRule, error) {
	rule, err := s.ruleFromInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.rules.Replace(ctx, rule); err != nil {
		return nil, err
	}
	s.ruleSetChanged(ctx, "rule replaced",
		zap.String("season", string(rule.Season)),
		zap.String("day_type", string(rule.DayType)),
		zap.String("window", window(rule.StartMinute, rule.EndMinute)))
	return rule, nil
}

// DeleteRule removes a recurring rule identified by group and window.
func (s *PricingService) DeleteRule(ctx context.Context, input RuleInput) error {
	rule, err := s.ruleFromInput(input)
	if err != nil {
		return err
	}
	if err := s.rules.Delete(ctx, rule.Season, rule.DayType, rule.StartMinute, rule.EndMinute); err != nil {
		return err
	}
	s.ruleSetChanged(ctx, "rule deleted",
		zap.String("season", string(rule.Season)),
		zap.String("day_type", string(rule.DayType)),
		zap.String("window", window(rule.StartMinute, rule.EndMinute)))
	return nil
}

// OverridesFor lists the overrides of one date.
func (s *PricingService) OverridesFor(ctx context.Context, date string) ([]models.DateOverride, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	return s.overrides.ListByDate(ctx, day)
}

// AddOverride validates and inserts a date override.
func (s *PricingService) AddOverride(ctx context.Context, input OverrideInput) (*models.DateOverride, error) {
	o, err := s.overrideFromInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.overrides.Insert(ctx, o); err != nil {
		return nil, err
	}
	s.ruleSetChanged(ctx, "override added", zap.String("date", models.DateKey(o.Date)), zap.Int64("id", o.ID))
	return o, nil
}

// UpdateOverride rewrites an existing override.
func (s *PricingService) UpdateOverride(ctx context.Context, input OverrideInput) (*models.DateOverride, error) {
	o, err := s.overrideFromInput(input)
	if err != nil {
		return nil, err
	}
	o.ID = input.ID
	if err := s.overrides.Update(ctx, o); err != nil {
		return nil, err
	}
	s.ruleSetChanged(ctx, "override updated", zap.String("date", models.DateKey(o.Date)), zap.Int64("id", o.ID))
	return o, nil
}

// DeleteOverride removes an override by id.
func (s *PricingService) DeleteOverride(ctx context.Context, id int64) error {
	if err := s.overrides.Delete(ctx, id); err != nil {
		return err
	}
	s.ruleSetChanged(ctx, "override deleted", zap.Int64("id", id))
	return nil
}

// DuplicateDay copies one date's overrides onto the target dates.
func (s *PricingService) DuplicateDay(ctx context.Context, sourceDate string, targetDates []string) (int, error) {
	source, err := parseDate(sourceDate)
	if err != nil {
		return 0, err
	}
	targets := make([]time.Time, 0, len(targetDates))
	for _, raw := range targetDates {
		target, err := parseDate(raw)
		if err != nil {
			return 0, err
		}
		targets = append(targets, target)
	}
	copied, err := s.overrides.DuplicateDay(ctx, source, targets)
	if err != nil {
		return 0, err
	}
	s.ruleSetChanged(ctx, "overrides duplicated",
		zap.String("source", sourceDate), zap.Int("targets", len(targets)), zap.Int("copied", copied))
	return copied, nil
}

// Snapshot returns the current rule snapshot, cache first.
func (s *PricingService) Snapshot(ctx context.Context) (*tariff.Snapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("snapshot cache read failed", zap.Error(err))
		} else if snap != nil {
			return snap, nil
		}
	}

	snap, err := s.rules.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Save(ctx, snap); err != nil {
			s.logger.Warn("snapshot cache write failed", zap.Error(err))
		}
	}
	return snap, nil
}

// Quote resolves the unit price at one instant against the current snapshot.
func (s *PricingService) Quote(ctx context.Context, at time.Time) (tariff.Quote, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return tariff.Quote{}, err
	}
	return s.resolver.Quote(at, snap)
}

// Matrix projects the hour grid of one (season, day type) group.
func (s *PricingService) Matrix(ctx context.Context, season, dayType string) ([24]tariff.HourCell, error) {
	parsedSeason, err := models.ParseSeason(season)
	if err != nil {
		return [24]tariff.HourCell{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	parsedDayType, err := models.ParseDayType(dayType)
	if err != nil {
		return [24]tariff.HourCell{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return [24]tariff.HourCell{}, err
	}
	return tariff.ProjectMatrix(parsedSeason, parsedDayType, snap), nil
}

func (s *PricingService) ruleFromInput(input RuleInput) (*models.RecurringRule, error) {
	season, err := models.ParseSeason(input.Season)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	dayType, err := models.ParseDayType(input.DayType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	start, end, err := parseWindow(input.StartTime, input.EndTime)
	if err != nil {
		return nil, err
	}
	if input.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return &models.RecurringRule{
		Season:      season,
		DayType:     dayType,
		StartMinute: start,
		EndMinute:   end,
		UnitPrice:   input.Price,
	}, nil
}

func (s *PricingService) overrideFromInput(input OverrideInput) (*models.DateOverride, error) {
	date, err := parseDate(input.Date)
	if err != nil {
		return nil, err
	}
	start, end, err := parseWindow(input.StartTime, input.EndTime)
	if err != nil {
		return nil, err
	}
	if input.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return &models.DateOverride{
		Date:        date,
		StartMinute: start,
		EndMinute:   end,
		UnitPrice:   input.Price,
		Label:       input.Label,
	}, nil
}

func (s *PricingService) ruleSetChanged(ctx context.Context, msg string, fields ...zap.Field) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("snapshot cache invalidation failed", zap.Error(err))
		}
	}
	if s.listener != nil {
		s.listener.RuleSetChanged()
	}
	s.logger.Info(msg, fields...)
}

func parseWindow(startTime, endTime string) (int, int, error) {
	start, err := models.ParseMinuteOfDay(startTime)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	end, err := models.ParseMinuteOfDay(endTime)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if start >= end {
		return 0, 0, fmt.Errorf("%w: window %s-%s is empty or wraps midnight; split it at 24:00", ErrInvalidInput, startTime, endTime)
	}
	return start, end, nil
}

func parseDate(s string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, s)
	}
	return date, nil
}

func window(start, end int) string {
	return models.FormatMinuteOfDay(start) + "-" + models.FormatMinuteOfDay(end)
}
