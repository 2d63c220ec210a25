package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sla-service/internal/api/http"
	"github.com/spec-kit/sla-service/internal/api/http/handlers"
	"github.com/spec-kit/sla-service/internal/auth"
	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/observability"
	"github.com/spec-kit/sla-service/internal/persistence"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/service"
	"github.com/spec-kit/sla-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	policyRepo := repository.NewPolicyRepository(pool)
	recordRepo := repository.NewSLARecordRepository(pool)

	resolver := service.NewPolicyResolver(policyRepo, cfg.SLA.IOTimeout())

	var cache service.StatusCache
	if sc := persistence.NewStatusCache(redis, cfg.SLA.StatusCacheTTL(), logger); sc != nil {
		cache = sc
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	liveService := service.NewLiveStatusService(cfg.SLA, service.LiveStatusDependencies{
		TicketRepo: ticketRepo,
		Resolver:   resolver,
		Cache:      cache,
	}, logger)
	syncService := service.NewSyncService(cfg.SLA, service.SyncDependencies{
		TicketRepo: ticketRepo,
		RecordRepo: recordRepo,
		Resolver:   resolver,
		Cache:      cache,
		Dispatcher: dispatcher,
		Metrics:    metrics,
	}, logger)

	worker.StartRecomputeWorker(dispatcher, syncService, logger)

	tokens := auth.NewTokenManager(cfg.Auth.ServiceTokenSecret, cfg.Auth.ServiceTokenTTLMinutes)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	slaHandler := handlers.NewSLAHandler(liveService, resolver, dispatcher)
	syncHandler := handlers.NewSyncHandler(syncService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       healthHandler,
		SLA:          slaHandler,
		Sync:         syncHandler,
		OperatorAuth: auth.RequireServiceToken(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
