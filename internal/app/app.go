// Package app assembles the assistant's components from configuration.
package app

import (
	"context"
	"fmt"

	"maitred/internal/api"
	"maitred/internal/catalog"
	"maitred/internal/concierge"
	"maitred/internal/config"
	"maitred/internal/delivery"
	"maitred/internal/intent"
	"maitred/internal/llm"
	"maitred/internal/moderation"
	"maitred/internal/monitoring"
	"maitred/internal/normalize"
	"maitred/internal/ordering"
	"maitred/internal/session"
	"maitred/internal/store"

	"go.uber.org/zap"
)

// App holds the wired components of one assistant instance
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *monitoring.Metrics
	Catalog   *catalog.Catalog
	Delivery  *delivery.Checker
	Finalizer *ordering.Finalizer
	Router    *intent.Router
	Concierge *concierge.Concierge
	Sessions  *session.Manager

	db *store.SQLStore
}

// New loads reference data and builds every component. Missing reference
// files degrade to an empty catalog; an unreachable database or an invalid
// LLM provider is an error.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rules := cfg.Normalizer.Rules
	if len(rules) == 0 {
		rules = normalize.DefaultRules
	}
	cat, cities := catalog.Load(cfg.Data.MenuPath, cfg.Data.CitiesPath, normalize.New(rules), logger)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  monitoring.NewMetrics(),
		Catalog:  cat,
		Delivery: delivery.NewChecker(cities, logger),
	}

	sinks := store.Multi{store.NewFileStore(cfg.Orders.CSVPath, cfg.Orders.JSONLPath, logger)}
	if cfg.Database.Enabled() {
		db, err := store.OpenSQL(cfg.Database.Driver, cfg.Database.DSN, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open order database: %w", err)
		}
		a.db = db
		sinks = append(sinks, db)
	}
	a.Finalizer = ordering.NewFinalizer(sinks, a.Metrics, logger)

	a.Router = intent.NewRouter(intent.Deps{
		Catalog:   cat,
		Delivery:  a.Delivery,
		Finalizer: a.Finalizer,
	}, cfg.Intents, logger)

	opts := []concierge.Option{concierge.WithMetrics(a.Metrics)}
	if cfg.Moderation.Enabled {
		terms := cfg.Moderation.Terms
		if len(terms) == 0 {
			terms = moderation.DefaultTerms
		}
		opts = append(opts, concierge.WithFilter(moderation.NewFilter(terms)))
	}
	if cfg.LLM.Enabled() {
		model, err := llm.NewModel(cfg.LLM)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize language model: %w", err)
		}
		timeout := cfg.GetLLMTimeout()
		opts = append(opts,
			concierge.WithGate(llm.NewGate(model, timeout, a.Metrics, logger)),
			concierge.WithResponder(llm.NewResponder(model, timeout, cfg.LLM.SystemPrompt, a.Metrics, logger)))
		logger.Info("Language model enabled", zap.String("provider", cfg.LLM.Provider), zap.String("model", cfg.LLM.Model))
	} else {
		logger.Info("No language model configured; unrecognized queries get a rephrase prompt")
	}
	a.Concierge = concierge.New(a.Router, logger, opts...)

	a.Sessions = session.NewManager(cat, a.Metrics, logger)
	return a, nil
}

// APIServer builds the HTTP API over the app's components
func (a *App) APIServer() *api.Server {
	deps := api.Deps{
		Catalog:   a.Catalog,
		Delivery:  a.Delivery,
		Sessions:  a.Sessions,
		Concierge: a.Concierge,
		Finalizer: a.Finalizer,
		Metrics:   a.Metrics,
	}
	if a.db != nil {
		deps.Orders = a.db
	}
	return api.NewServer(deps, a.Config.Server, a.Config.Auth, a.Logger)
}

// RunSweeper expires idle sessions until ctx is cancelled
func (a *App) RunSweeper(ctx context.Context) {
	a.Sessions.RunSweeper(ctx, a.Config.GetSessionSweepInterval(), a.Config.GetSessionIdleTimeout())
}

// Close releases the database connection, if any
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
