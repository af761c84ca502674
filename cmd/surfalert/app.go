package main

import (
	"context"
	"fmt"

	"surfalert-service/internal/analysis"
	"surfalert-service/internal/catalog"
	"surfalert-service/internal/config"
	"surfalert-service/internal/db"
	"surfalert-service/internal/logging"
	"surfalert-service/internal/providers"
	"surfalert-service/internal/services"
)

// app holds the components shared by the serve and process commands.
type app struct {
	cfg        config.Config
	logger     *logging.Logger
	db         *db.DB
	catalog    *catalog.Catalog
	conditions *providers.ConditionsProvider
	enricher   analysis.Enricher
	service    *services.Service
	closers    []func()
}

func newApp(ctx context.Context) (*app, error) {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, catalog: catalog.Default()}
	a.closers = append(a.closers, func() { _ = logger.Close() })

	// Connect to database
	a.db, err = db.New(ctx, cfg.DB.DSN, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	a.closers = append(a.closers, a.db.Close)
	if err := a.db.Migrate(ctx); err != nil {
		a.Close()
		return nil, err
	}

	// Marine data, optionally cached in Redis
	var src providers.Source = providers.NewMarineSource(cfg.Provider, logger)
	if cfg.Redis.Addr != "" {
		store, err := providers.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warnf("Redis unavailable, conditions cache disabled: %v", err)
		} else {
			a.closers = append(a.closers, func() { _ = store.Close() })
			src = providers.NewCachedSource(src, store, cfg.Provider.CacheTTL, logger)
			logger.Infof("Conditions cache enabled (%s, ttl %s)", cfg.Redis.Addr, cfg.Provider.CacheTTL)
		}
	}
	a.conditions = providers.NewConditionsProvider(src)

	// Alert delivery
	var notifier services.Notifier
	smtp, err := providers.NewSMTPNotifier(cfg.Email)
	if err != nil {
		logger.Warnf("Email delivery disabled, alerts are only logged: %v", err)
		notifier = providers.NewLogNotifier(logger)
	} else {
		notifier = smtp
	}

	if cfg.Analysis.APIKey != "" {
		a.enricher = analysis.NewRemoteModelEnricher(cfg.Analysis, logger)
	} else {
		a.enricher = analysis.HeuristicEnricher{}
	}

	processor := services.NewProcessor(a.catalog, a.conditions, a.db, notifier, a.enricher, cfg.Provider, logger)

	var reporter services.Reporter
	if tg := providers.NewTelegramReporter(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.RatePerSecond, logger); tg != nil {
		reporter = tg
	}
	a.service = services.New(a.db, processor, reporter, logger, cfg)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
