package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	electionengine "electoral/contexts/governance/election-engine"
	boltadapter "electoral/contexts/governance/election-engine/adapters/bolt"
	"electoral/contexts/governance/election-engine/adapters/cache"
	postgresadapter "electoral/contexts/governance/election-engine/adapters/postgres"
	systemadapter "electoral/contexts/governance/election-engine/adapters/system"
	"electoral/contexts/governance/election-engine/ports"
	"electoral/internal/platform/config"
	"electoral/internal/platform/db"
	"electoral/internal/platform/httpserver"
	"electoral/internal/platform/messaging"

	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server    *httpserver.Server
	elections electionengine.Module
	embedded  bool
	interval  time.Duration
	closer    func() error
	logger    *slog.Logger
}

type WorkerApp struct {
	elections    electionengine.Module
	pollInterval time.Duration
	closer       func() error
	logger       *slog.Logger
}

// Runtime is a fully wired election module plus the handle that releases
// its storage.
type Runtime struct {
	Config    config.Config
	Elections electionengine.Module
	Close     func() error
}

// BuildRuntime wires the election module against the configured store driver
// and the event bus.
func BuildRuntime(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	var module electionengine.Module
	closer := func() error { return nil }

	switch cfg.StoreDriver {
	case config.StorePostgres:
		// Several api replicas share one database, and the election cache is
		// process-local, so reads go straight to postgres.
		pg, err := db.Connect(cfg.PostgresDSN, PostgresPool(cfg))
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := postgresadapter.Migrate(pg.DB); err != nil {
				_ = pg.Close()
				return nil, fmt.Errorf("migrate election schema: %w", err)
			}
		}
		repo := postgresadapter.NewRepository(pg.DB, logger)
		module = electionengine.NewModule(electionengine.Dependencies{
			Records:         repo,
			Reader:          repo,
			Outbox:          repo,
			Results:         repo,
			Clock:           systemadapter.Clock{},
			IDGen:           systemadapter.UUIDGenerator{},
			Publisher:       bus,
			Subscriber:      bus,
			OutboxBatchSize: cfg.OutboxBatchSize,
			DisableArchiver: !cfg.EnableResultsArchiver,
			Logger:          logger,
		})
		closer = pg.Close

	case config.StoreBolt:
		electionCache, err := newElectionCache(cfg)
		if err != nil {
			return nil, err
		}
		file, err := db.OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		store, err := boltadapter.NewStore(file.DB, logger)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		module = electionengine.NewModule(electionengine.Dependencies{
			Records:         store,
			Reader:          store,
			Outbox:          store,
			Results:         store,
			Cache:           electionCache,
			Clock:           systemadapter.Clock{},
			IDGen:           systemadapter.UUIDGenerator{},
			Publisher:       bus,
			Subscriber:      bus,
			OutboxBatchSize: cfg.OutboxBatchSize,
			DisableArchiver: !cfg.EnableResultsArchiver,
			Logger:          logger,
		})
		closer = file.Close

	case config.StoreMemory, "":
		module = electionengine.NewInMemoryModule(logger).WithEventBus(bus, bus)
		module.Relay.BatchSize = cfg.OutboxBatchSize
		module.Archiver.Disabled = !cfg.EnableResultsArchiver

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	logger.Info("election runtime wired",
		"event", "bootstrap_runtime_wired",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"store_driver", cfg.StoreDriver,
		"cache_enabled", module.Handler.Queries.Cache != nil,
		"cache_size", cfg.ElectionCacheSize,
	)
	return &Runtime{Config: cfg, Elections: module, Close: closer}, nil
}

// PostgresPool maps the configured pool limits onto the db settings.
func PostgresPool(cfg config.Config) db.PoolSettings {
	return db.PoolSettings{
		MaxOpenConns:    cfg.PostgresMaxOpenConns,
		MaxIdleConns:    cfg.PostgresMaxIdleConns,
		ConnMaxLifetime: cfg.PostgresConnMaxLifetime,
	}
}

// newElectionCache builds the snapshot cache for single-process stores.
func newElectionCache(cfg config.Config) (ports.ElectionCache, error) {
	electionCache, err := cache.NewElectionCache(cfg.ElectionCacheSize)
	if err != nil {
		return nil, err
	}
	return electionCache, nil
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	runtime, err := BuildRuntime(cfg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(runtime.Elections, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:    server,
		elections: runtime.Elections,
		// Memory and bolt stores are owned by this process, so their outbox is
		// drained here rather than by a separate worker.
		embedded: cfg.StoreDriver != config.StorePostgres,
		interval: cfg.OutboxPollInterval,
		closer:   runtime.Close,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if cfg.StoreDriver != config.StorePostgres {
		return nil, errors.New("worker requires STORE_DRIVER=postgres; memory and bolt stores run their workers inside the api process")
	}
	runtime, err := BuildRuntime(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &WorkerApp{
		elections:    runtime.Elections,
		pollInterval: cfg.OutboxPollInterval,
		closer:       runtime.Close,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"embedded_workers", a.embedded,
		)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(a.server.Start)
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	if a.embedded {
		group.Go(func() error {
			return runWorkers(groupCtx, a.elections, a.interval)
		})
	}
	return group.Wait()
}

func (a *APIApp) Close() error {
	if a.closer != nil {
		return a.closer()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)
	return runWorkers(ctx, w.elections, w.pollInterval)
}

func (w *WorkerApp) Close() error {
	if w.closer != nil {
		return w.closer()
	}
	return nil
}

// runWorkers subscribes the results archiver and drives the outbox relay
// until ctx is cancelled.
func runWorkers(ctx context.Context, elections electionengine.Module, interval time.Duration) error {
	if err := elections.Archiver.Start(ctx); err != nil {
		return err
	}
	return elections.Relay.Run(ctx, interval)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
