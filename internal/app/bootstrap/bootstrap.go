// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	lifecycleengine "quorum/contexts/election-operations/lifecycle-engine"
	lifecyclepostgres "quorum/contexts/election-operations/lifecycle-engine/adapters/postgres"
	lifecycleports "quorum/contexts/election-operations/lifecycle-engine/ports"
	votecasting "quorum/contexts/election-operations/vote-casting"
	votingpostgres "quorum/contexts/election-operations/vote-casting/adapters/postgres"
	"quorum/internal/platform/config"
	"quorum/internal/platform/db"
	"quorum/internal/platform/httpserver"
	"quorum/internal/platform/messaging"
	"quorum/internal/shared/events"

	"golang.org/x/sync/errgroup"
)

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	lifecycle     lifecycleengine.Module
	sweepEnabled  bool
	relayEnabled  bool
	sweepInterval time.Duration
	relayInterval time.Duration
	logger        *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus, err := messaging.NewBus(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	lifecycleModule, votingModule := buildModules(pg, bus, cfg, logger)
	server := httpserver.New(lifecycleModule, votingModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus, err := messaging.NewBus(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	lifecycleModule, _ := buildModules(pg, bus, cfg, logger)
	return &WorkerApp{
		postgres:      pg,
		lifecycle:     lifecycleModule,
		sweepEnabled:  cfg.EnableDueElectionSweeper,
		relayEnabled:  cfg.EnableOutboxRelay,
		sweepInterval: cfg.SchedulerInterval,
		relayInterval: 2 * time.Second,
		logger:        logger,
	}, nil
}

func buildModules(pg *db.Postgres, bus *messaging.Bus, cfg config.Config, logger *slog.Logger) (lifecycleengine.Module, votecasting.Module) {
	lifecycleRepo := lifecyclepostgres.NewRepository(pg.DB, logger)
	lifecycleModule := lifecycleengine.NewModule(lifecycleengine.Dependencies{
		Elections:       lifecycleRepo,
		Races:           lifecycleRepo,
		Ballots:         lifecycleRepo,
		Votes:           lifecycleRepo,
		Members:         lifecycleRepo,
		Outbox:          lifecycleRepo,
		OutboxRepo:      lifecycleRepo,
		Publisher:       busPublisher{bus: bus, source: cfg.ServiceName},
		Clock:           lifecyclepostgres.SystemClock{},
		IDGen:           lifecyclepostgres.UUIDGenerator{},
		OutboxBatchSize: cfg.OutboxBatchSize,
		Logger:          logger,
	})

	votingRepo := votingpostgres.NewRepository(pg.DB, logger)
	votingModule := votecasting.NewModule(votecasting.Dependencies{
		Directory: votingRepo,
		Voters:    votingRepo,
		Votes:     votingRepo,
		Members:   votingRepo,
		Clock:     votingpostgres.SystemClock{},
		IDGen:     votingpostgres.UUIDGenerator{},
		Logger:    logger,
	})
	return lifecycleModule, votingModule
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

// Run drives the two background loops. Each worker finishes one RunOnce
// before its next tick fires, so sweeps never overlap.
func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"sweep_interval", w.sweepInterval.String(),
		"sweep_enabled", w.sweepEnabled,
		"relay_enabled", w.relayEnabled,
	)

	group, ctx := errgroup.WithContext(ctx)
	if w.sweepEnabled {
		group.Go(func() error {
			return w.runEvery(ctx, "due_election_sweep", w.sweepInterval, w.lifecycle.Sweeper.RunOnce)
		})
	}
	if w.relayEnabled {
		group.Go(func() error {
			return w.runEvery(ctx, "outbox_relay", w.relayInterval, w.lifecycle.Relay.RunOnce)
		})
	}
	return group.Wait()
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

// runEvery runs fn once per tick. A failing tick is logged and retried on the
// next interval; only context cancellation stops the loop.
func (w *WorkerApp) runEvery(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := fn(ctx); err != nil {
			w.logger.Error("worker tick failed",
				"event", "bootstrap_worker_tick_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"worker", name,
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// busPublisher adapts the lifecycle module's publisher port to the shared
// event bus envelope.
type busPublisher struct {
	bus    *messaging.Bus
	source string
}

func (p busPublisher) Publish(ctx context.Context, topic string, event lifecycleports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope{
		EventID:       event.EventID,
		EventType:     event.EventType,
		SourceService: p.source,
		OccurredAtUTC: event.OccurredAt.UTC(),
		EntityType:    event.EntityType,
		EntityID:      event.EntityID,
		Payload:       event.Payload,
	})
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
