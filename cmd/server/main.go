package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/roamio/backend/api/handler"
	"github.com/roamio/backend/internal/config"
	"github.com/roamio/backend/internal/infrastructure/buffer"
	"github.com/roamio/backend/internal/infrastructure/monitor"
	"github.com/roamio/backend/internal/infrastructure/notifier"
	"github.com/roamio/backend/internal/infrastructure/objectstore"
	pgInfra "github.com/roamio/backend/internal/infrastructure/postgres"
	redisInfra "github.com/roamio/backend/internal/infrastructure/redis"
	"github.com/roamio/backend/internal/middleware"
	"github.com/roamio/backend/internal/router"
	"github.com/roamio/backend/internal/services"
	"github.com/roamio/backend/internal/services/lifecycle"
	"github.com/roamio/backend/pkg/httpcontext"
	"github.com/roamio/backend/pkg/logger"
	"github.com/roamio/backend/repository/postgres"
	redisRepo "github.com/roamio/backend/repository/redis"
	authUC "github.com/roamio/backend/usecase/auth"
	catalogUC "github.com/roamio/backend/usecase/catalog"
	favoritesUC "github.com/roamio/backend/usecase/favorites"
	leadsUC "github.com/roamio/backend/usecase/leads"
	"github.com/roamio/backend/usecase/media"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	assets, err := objectstore.New(
		cfg.ObjectStore.BaseURL,
		cfg.ObjectStore.APIKey,
		cfg.ObjectStore.Timeout,
		cfg.ObjectStore.RequestsPerSecond,
	)
	if err != nil {
		zapLogger.Fatal("object store client failed", zap.Error(err))
	}

	cleanupStore, err := buffer.Open(cfg.Cleanup.Path, "asset_cleanup")
	if err != nil {
		zapLogger.Fatal("failed to open cleanup queue", zap.Error(err))
	}
	manager.Register("cleanup_queue", func(ctx context.Context) error {
		return cleanupStore.Close()
	})

	mon := monitor.New(pool, redisClient, cleanupStore, assets, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	sweeper := services.NewAssetSweeper(cleanupStore, assets, zapLogger, services.SweeperConfig{
		Interval:   cfg.Cleanup.SweepInterval,
		BatchSize:  cfg.Cleanup.BatchSize,
		MaxRetries: cfg.Cleanup.MaxRetries,
	})
	sweeper.Start()
	manager.Register("asset_sweeper", func(ctx context.Context) error {
		sweeper.Stop(ctx)
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	leadRepo := postgres.NewLeadRepository(pool)
	destinationRepo := postgres.NewDestinationRepository(pool)
	catalogRouter := postgres.NewCatalogRouter(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Auth.SessionTTL)
	favoriteRepo := redisRepo.NewFavoriteRepository(redisClient)

	resolver := authUC.NewResolver(zapLogger,
		authUC.NewSessionVerifier(sessionRepo),
		authUC.NewBearerVerifier(cfg.Auth.JWTSecret),
	)
	authService := authUC.NewService(
		userRepo,
		sessionRepo,
		cfg.Auth.JWTSecret,
		cfg.Auth.JWTIssuer,
		cfg.Auth.SessionTTL,
		cfg.Auth.TokenTTL,
		zapLogger,
	)

	reconciler := media.NewReconciler(assets, services.NewCleanupBridge(sweeper), cfg.ObjectStore.UploadsInFlight, zapLogger)
	webhook := notifier.NewWebhook(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout, zapLogger)

	catalogService := catalogUC.New(catalogRouter, destinationRepo, reconciler, zapLogger)
	favoritesService := favoritesUC.New(favoriteRepo, catalogRouter, zapLogger)
	leadsService := leadsUC.New(leadRepo, catalogRouter, webhook, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:      apiHandler.NewAuthHandler(authService, ctxAdapter, zapLogger, cfg.Auth.SessionCookie),
		Catalog:   apiHandler.NewCatalogHandler(catalogService, ctxAdapter, zapLogger),
		Favorites: apiHandler.NewFavoritesHandler(favoritesService, ctxAdapter, zapLogger),
		Leads:     apiHandler.NewLeadsHandler(leadsService, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	principal := middleware.ResolvePrincipal(resolver, cfg.Auth.SessionCookie)
	r := router.New(handlers, principal)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
