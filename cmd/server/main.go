package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lee-tech/workforce-admin/api/handlers"
	"github.com/lee-tech/workforce-admin/config"
	"github.com/lee-tech/workforce-admin/internal/cache"
	"github.com/lee-tech/workforce-admin/internal/events"
	"github.com/lee-tech/workforce-admin/internal/logging"
	"github.com/lee-tech/workforce-admin/internal/metrics"
	"github.com/lee-tech/workforce-admin/internal/navigation"
	"github.com/lee-tech/workforce-admin/internal/repository"
	"github.com/lee-tech/workforce-admin/internal/server"
	"github.com/lee-tech/workforce-admin/internal/service"
	"github.com/lee-tech/workforce-admin/internal/upstream"
	"github.com/lee-tech/workforce-admin/internal/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("workforce-admin: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.ServiceName, cfg.ServiceVersion, !cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	menu, err := navigation.LoadMenu(cfg.MenuConfigPath)
	if err != nil {
		return fmt.Errorf("load menu: %w", err)
	}

	var recorder *metrics.Metrics
	if cfg.MetricsEnabled {
		recorder = metrics.New()
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	sessionRepo := repository.NewSessionRepository(db)
	if err := sessionRepo.Migrate(); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("migrate sessions: %w", err)
	}

	healthChecks := map[string]handlers.HealthCheck{
		"database": sqlDB.PingContext,
	}

	var store cache.Store
	var redisStore *cache.RedisStore
	if cfg.RedisAddr != "" {
		redisStore = cache.NewRedisStore(redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}), cfg.ServiceName)
		store = redisStore
		healthChecks["cache"] = redisStore.Ping
	} else {
		logger.Info("REDIS_ADDR not set, using in-process catalog cache")
		store = cache.NewMemoryStore()
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.Connect(cfg.NATSURL, cfg.AuditSubjectPrefix, cfg.ServiceName, logger)
		if err != nil {
			logger.Warn("audit events disabled", zap.Error(err))
		} else {
			publisher = natsPublisher
		}
	}

	clientOpts := []upstream.Option{upstream.WithLogger(logger)}
	if recorder != nil {
		clientOpts = append(clientOpts, upstream.WithObserver(recorder))
	}
	client, err := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, clientOpts...)
	if err != nil {
		return fmt.Errorf("init upstream client: %w", err)
	}

	validator := validation.New()
	var cacheRecorder cache.Recorder
	if recorder != nil {
		cacheRecorder = recorder
	}
	catalogCache := cache.NewCatalog(store, cfg.CacheTTL, cacheRecorder)

	structureRepo := repository.NewStructureRepository(client)
	sessionSvc := service.NewSessionService(repository.NewAuthRepository(client), sessionRepo, menu, service.SessionConfig{
		Issuer: cfg.ServiceName,
		Secret: cfg.JWTSecret,
		TTL:    cfg.SessionTTL,
	}, logger)
	licenseSvc := service.NewLicenseService(repository.NewLicenseRepository(client), validator, publisher, logger)
	catalogSvc := service.NewCatalogService(repository.NewCatalogRepository(client), catalogCache, validator, publisher, logger)
	userSvc := service.NewUserService(repository.NewUserRepository(client), structureRepo, catalogSvc, sessionSvc, validator, publisher, logger)
	structureSvc := service.NewStructureService(structureRepo)

	purgeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if purged, err := sessionSvc.PurgeExpired(purgeCtx); err != nil {
		logger.Warn("failed to purge expired sessions", zap.Error(err))
	} else if purged > 0 {
		logger.Info("purged expired sessions", zap.Int64("count", purged))
	}
	cancel()

	guard := handlers.NewGuard(sessionSvc, handlers.NewRoutePermissionResolver(), logger)

	srv := server.New(server.Options{
		Addr:            cfg.HTTPAddr,
		ReadTimeout:     cfg.HTTPReadTimeout,
		WriteTimeout:    cfg.HTTPWriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		Metrics:         recorder,
		MetricsPath:     cfg.MetricsPath,
		Logger:          logger,
	},
		handlers.NewHealthHandler(cfg.ServiceName, cfg.ServiceVersion, healthChecks),
		handlers.NewSessionHandler(sessionSvc, guard, logger),
		handlers.NewTokenIntrospectionHandler(sessionSvc, logger),
		handlers.NewLicenseHandler(licenseSvc, guard, logger),
		handlers.NewUserHandler(userSvc, guard, logger),
		handlers.NewCatalogHandler(catalogSvc, guard, logger),
		handlers.NewStructureHandler(structureSvc, guard, logger),
	)
	srv.OnShutdown("database", sqlDB.Close)
	if redisStore != nil {
		srv.OnShutdown("cache", redisStore.Close)
	}
	srv.OnShutdown("events", publisher.Close)

	logger.Info("workforce admin starting",
		zap.String("environment", cfg.Environment),
		zap.String("upstream", cfg.UpstreamBaseURL),
		zap.Int("menu_items", len(menu.Items())))

	return srv.Run(ctx)
}
