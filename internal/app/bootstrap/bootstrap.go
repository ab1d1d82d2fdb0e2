package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	policyservice "dropcover/contexts/insurance/policy-service"
	"dropcover/contexts/insurance/policy-service/adapters/payment"
	insurancepostgres "dropcover/contexts/insurance/policy-service/adapters/postgres"
	insuranceworkers "dropcover/contexts/insurance/policy-service/application/workers"
	dropservice "dropcover/contexts/token-drops/drop-service"
	dropmemory "dropcover/contexts/token-drops/drop-service/adapters/memory"
	droppostgres "dropcover/contexts/token-drops/drop-service/adapters/postgres"
	dropworkers "dropcover/contexts/token-drops/drop-service/application/workers"
	dropports "dropcover/contexts/token-drops/drop-service/ports"
	"dropcover/internal/platform/config"
	"dropcover/internal/platform/db"
	"dropcover/internal/platform/httpserver"
	"dropcover/internal/platform/messaging"
	"dropcover/internal/platform/metrics"
	"dropcover/internal/platform/ratelimiter"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const idempotencyTTL = 7 * 24 * time.Hour

type APIApp struct {
	server         *httpserver.Server
	postgres       *db.Postgres
	delivery       dropworkers.DeliveryConsumer
	enableDelivery bool
	logger         *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	expirer       insuranceworkers.PolicyExpirer
	enableExpirer bool
	pollInterval  time.Duration
	logger        *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	var pg *db.Postgres
	var insurance policyservice.Module
	var drops dropservice.Module
	var profiles dropports.ProfileRepository

	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}

		insuranceRepo := insurancepostgres.NewRepository(pg.DB, logger)
		insurance = policyservice.NewModule(policyservice.Dependencies{
			Policies:       insuranceRepo,
			Payments:       payment.AckProcessor{Logger: logger},
			Idempotency:    insuranceRepo,
			Clock:          insurancepostgres.SystemClock{},
			IdempotencyTTL: idempotencyTTL,
			Logger:         logger,
		})

		dropsRepo := droppostgres.NewRepository(pg.DB, logger)
		drops = dropservice.NewModule(dropservice.Dependencies{
			Drops:          dropsRepo,
			Subscriptions:  dropsRepo,
			Profiles:       dropsRepo,
			Notifications:  dropsRepo,
			Idempotency:    dropsRepo,
			Publisher:      bus,
			IDs:            droppostgres.UUIDGenerator{},
			Clock:          droppostgres.SystemClock{},
			IdempotencyTTL: idempotencyTTL,
			Logger:         logger,
		})
		profiles = dropsRepo
	} else {
		logger.Warn("POSTGRES_DSN not set, running against in-memory adapters",
			"event", "bootstrap_memory_fallback",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)

		insurance = policyservice.NewInMemoryModule(logger)

		store := dropmemory.NewStore()
		drops = dropservice.NewModule(dropservice.Dependencies{
			Drops:          store,
			Subscriptions:  store,
			Profiles:       store,
			Notifications:  store,
			Idempotency:    store,
			Publisher:      bus,
			IDs:            dropmemory.UUIDGenerator{},
			Clock:          store,
			IdempotencyTTL: idempotencyTTL,
			Logger:         logger,
		})
		drops.Store = store
		profiles = store
	}

	limiter := ratelimiter.New(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)
	server := httpserver.New(insurance, drops, limiter, logger, normalizeAddr(cfg.HTTPPort))

	return &APIApp{
		server:   server,
		postgres: pg,
		delivery: dropworkers.DeliveryConsumer{
			Profiles:   profiles,
			Subscriber: bus,
			Logger:     logger,
		},
		enableDelivery: cfg.EnableDeliveryConsumer,
		logger:         logger,
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

	repo := insurancepostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		expirer: insuranceworkers.PolicyExpirer{
			Policies:  repo,
			Clock:     insurancepostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		enableExpirer: cfg.EnablePolicyExpirer,
		pollInterval:  2 * time.Second,
		logger:        logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.enableDelivery {
		if err := a.delivery.Start(ctx); err != nil {
			return err
		}
	}
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

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if w.enableExpirer {
			err := w.expirer.RunOnce(ctx)
			metrics.RecordWorkerRun("policy_expirer", err == nil)
			if err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
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
