package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/game-store/internal/config"
	"github.com/tuanvumaihuynh/game-store/internal/event"
	"github.com/tuanvumaihuynh/game-store/internal/http"
	"github.com/tuanvumaihuynh/game-store/internal/log"
	"github.com/tuanvumaihuynh/game-store/internal/relay"
	"github.com/tuanvumaihuynh/game-store/internal/repository"
	"github.com/tuanvumaihuynh/game-store/internal/service"
	"github.com/tuanvumaihuynh/game-store/internal/storage/db"
	"github.com/tuanvumaihuynh/game-store/internal/storage/mq"
	"github.com/tuanvumaihuynh/game-store/internal/store"
	"github.com/tuanvumaihuynh/game-store/internal/telemetry"
	"github.com/tuanvumaihuynh/game-store/internal/validation"
	"github.com/tuanvumaihuynh/game-store/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log     config.Log
		HTTP    config.HTTP
		Store   config.Store
		Catalog config.Catalog
		Relay   config.Relay
		Otel    config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	var (
		st                  store.Store
		health              db.HealthChecker
		dbClient            *db.Client
		outboxMsgRepository repository.OutboxMsgRepository
		kafkaProducer       *mq.KafkaProducer
		kafkaConsumer       *mq.KafkaConsumer
	)

	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		logger.WarnContext(ctx, "using in-memory store, data does not survive a restart")
		st = store.NewMemory()
	default:
		type BackendConfig struct {
			Postgres config.Postgres
			Kafka    config.Kafka
		}
		backendCfg, err := config.New[BackendConfig]()
		if err != nil {
			return fmt.Errorf("error loading backend config: %w", err)
		}

		pgxPool, err := db.NewPgxPool(ctx, backendCfg.Postgres)
		if err != nil {
			return fmt.Errorf("error creating pgx pool: %w", err)
		}
		defer pgxPool.Close()

		dbClient = db.NewClient(pgxPool)
		health = dbClient
		outboxMsgRepository = repository.NewOutboxMsgRepository(dbClient)
		st = repository.NewStore(
			dbClient,
			repository.NewProductRepository(dbClient),
			repository.NewSaleRepository(dbClient),
			outboxMsgRepository,
		)

		kafkaProducer, err = mq.NewKafkaProducer(ctx, backendCfg.Kafka)
		if err != nil {
			return fmt.Errorf("error creating kafka producer: %w", err)
		}
		defer kafkaProducer.Close()

		kafkaConsumer, err = mq.NewKafkaConsumer(ctx, backendCfg.Kafka, logger)
		if err != nil {
			return fmt.Errorf("error creating kafka consumer: %w", err)
		}
	}

	if cfg.Store.Breaker.Enabled {
		st = store.WithCircuitBreaker(st, cfg.Store.Breaker, logger)
	}

	validator, err := validation.New()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	locks := service.NewStockLocks()
	catalog := service.NewProductCatalog(cfg.Catalog, logger, validator, st, locks)
	ledger := service.NewSaleLedger(logger, validator, st, locks)
	statistics := service.NewStatisticsService(st)

	httpSvc, err := http.New(cfg.HTTP, logger, catalog, ledger, statistics, health)
	if err != nil {
		return fmt.Errorf("error creating http service: %w", err)
	}

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	if kafkaConsumer != nil {
		wg.Go(func() {
			svc := event.New(cfg.Catalog, logger, kafkaConsumer)
			cleanup, err := svc.Run(ctx)
			if err != nil {
				panic(fmt.Errorf("error running event service: %w", err))
			}
			logger.InfoContext(ctx, "event service started")

			<-interruptChan

			logger.InfoContext(ctx, "event service is shutting down")
			cleanup()

			logger.InfoContext(ctx, "event service is stopped")
		})
	}

	wg.Go(func() {
		cleanup, err := httpSvc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	if kafkaProducer != nil {
		wg.Go(func() {
			svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
			cleanup := svc.Run(ctx)
			logger.InfoContext(ctx, "relay service started")

			<-interruptChan

			logger.InfoContext(ctx, "relay service is shutting down")
			cleanup()

			logger.InfoContext(ctx, "relay service is stopped")
		})
	}

	wg.Wait()

	return nil
}
