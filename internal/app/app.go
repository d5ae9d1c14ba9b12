package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"evtariff/internal/cache"
	"evtariff/internal/calendar"
	"evtariff/internal/config"
	"evtariff/internal/db"
	httpserver "evtariff/internal/http"
	"evtariff/internal/http/handlers"
	redislib "evtariff/internal/redis"
	"evtariff/internal/repository"
	"evtariff/internal/service"
	"evtariff/internal/tariff"
	"evtariff/internal/ws"
)

// App wires tariff service dependencies.
type App struct {
	server *httpserver.Server
	ticker *ws.Ticker
	db     *sql.DB
	logger *zap.Logger
}

// New constructs application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Tariff.Timezone)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("app: load timezone %q: %w", cfg.Tariff.Timezone, err)
	}

	var snapshotCache *cache.SnapshotCache
	if cfg.Redis.Addr != "" {
		client, err := redislib.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		snapshotCache = cache.NewSnapshotCache(client, cfg.SnapshotTTL())
	} else {
		logger.Warn("redis not configured, snapshot caching disabled")
	}

	classifier := calendar.New(cfg.Tariff.CalendarDir)
	resolver := tariff.NewResolver(classifier, loc)
	aggregator := tariff.NewAggregator(resolver)

	ruleRepo := repository.NewRuleRepository(sqlDB)
	overrideRepo := repository.NewOverrideRepository(sqlDB)
	sessionRepo := repository.NewSessionRepository(sqlDB)
	policyRepo := repository.NewPolicyRepository(sqlDB)
	breakdownRepo := repository.NewBreakdownRepository(sqlDB)

	pricingService := service.NewPricingService(ruleRepo, overrideRepo, snapshotCache, resolver, logger)
	costingService := service.NewCostingService(sessionRepo, policyRepo, breakdownRepo, pricingService, aggregator, logger)

	ticker := ws.NewTicker(pricingService.Quote, cfg.TickerInterval(), logger)
	pricingService.SetChangeListener(ticker)

	rulesHandler := handlers.NewPricingRulesHandler(pricingService, logger)
	dailyHandler := handlers.NewDailyPricingHandler(pricingService, logger)
	matrixHandler := handlers.NewPricingMatrixHandler(pricingService, logger)
	costHandler := handlers.NewSessionCostHandler(costingService, logger)

	routes := httpserver.Routes{
		RulesList:     rulesHandler.List,
		RulesCreate:   rulesHandler.Create,
		RulesReplace:  rulesHandler.Replace,
		RulesDelete:   rulesHandler.Delete,
		DailyList:     dailyHandler.List,
		DailyCreate:   dailyHandler.Create,
		DailyUpdate:   dailyHandler.Update,
		DailyDelete:   dailyHandler.Delete,
		DailyDupe:     dailyHandler.Duplicate,
		Matrix:        matrixHandler.Matrix,
		Resolve:       matrixHandler.Resolve,
		Live:          ticker.HandleWS,
		SessionCost:   costHandler.Cost,
		SessionExport: costHandler.Export,
		Calendar:      handlers.NewCalendarHandler(classifier).Info,
		Health:        handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes, cfg.Auth.JWTSecret)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server: server,
		ticker: ticker,
		db:     sqlDB,
		logger: logger,
	}, nil
}

// Run starts the ticker and HTTP server.
func (a *App) Run(ctx context.Context) error {
	go a.ticker.Run(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
