package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"traffic-care-service/internal/config"
	"traffic-care-service/internal/db"
	"traffic-care-service/internal/notify"
	"traffic-care-service/internal/repository"
	"traffic-care-service/internal/service"
	"traffic-care-service/internal/source"
	"traffic-care-service/internal/summary"
)

// app is the wired service graph shared by the server and the one-shot
// commands.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	database *gorm.DB

	registry *service.Registry
	settings *service.SettingsService
	logbook  *service.Logbook
	checks   *service.CheckService
	vehicles *service.VehicleService
	tests    *service.TestHarness
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}

	keys := repository.KeysFor(cfg.State.KeyPrefix)

	a.registry, err = service.NewRegistry(ctx, store, keys.Vehicles)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.settings, err = service.NewSettingsService(ctx, store, keys.Schedule)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.logbook, err = service.NewLogbook(ctx, store, keys.Logs, log.With().Str("component", "logbook").Logger())
	if err != nil {
		a.Close()
		return nil, err
	}

	fixture := source.NewFixtureSource()
	if cfg.Check.FixtureFile != "" {
		fixture, err = source.LoadFixtureFile(cfg.Check.FixtureFile)
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	lookups := source.WithTimeout(fixture, cfg.Check.FetchTimeout)
	notifier := notify.NewEmailJS(cfg.Notify.EmailJSEndpoint, cfg.Notify.FromName, cfg.Notify.Timeout, a.settings.EmailConfig).
		WithLocation(cfg.Location())
	summarizer := summary.New(summary.Config{
		APIKey:  cfg.Summary.APIKey,
		Model:   cfg.Summary.Model,
		Timeout: cfg.Summary.Timeout,
	}, log.With().Str("component", "summary").Logger())

	a.checks = service.NewCheckService(
		a.registry,
		a.settings,
		a.logbook,
		lookups,
		notifier,
		cfg.Check.Concurrency,
		log.With().Str("component", "checks").Logger(),
	)
	a.vehicles = service.NewVehicleService(a.registry, a.checks, a.logbook, summarizer, log)
	a.tests = service.NewTestHarness(a.registry, a.settings, a.checks, a.logbook)

	log.Debug().
		Str("backend", cfg.State.Backend).
		Str("prefix", keys.Vehicles).
		Int("vehicles", len(a.registry.List())).
		Msg("state loaded")

	return a, nil
}

func (a *app) openStore() (service.DocumentStore, error) {
	switch a.cfg.State.Backend {
	case config.StateBackendPostgres:
		database, err := db.New(a.cfg, a.log)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.database = database
		return repository.NewStateRepository(database), nil
	default:
		store, err := repository.NewFileStateRepository(a.cfg.State.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func (a *app) health(ctx context.Context) error {
	if a.database == nil {
		return nil
	}
	return db.HealthCheck(ctx, a.database)
}

func (a *app) Close() {
	if a.database == nil {
		return
	}
	if err := db.Close(a.database); err != nil {
		a.log.Warn().Err(err).Msg("failed to close database")
	}
}
