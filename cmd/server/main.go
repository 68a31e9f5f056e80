package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/adapter/httpapi"
	natsadapter "github.com/anshulag21/eaglehurst-platform-sub001/internal/adapter/messaging/nats"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/adapter/repository/cache"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/adapter/repository/gormdb"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/adapter/search"
	s3storage "github.com/anshulag21/eaglehurst-platform-sub001/internal/adapter/storage/s3"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/config"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/metrics"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/tracer"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/scheduler"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/usecase"

	"go.uber.org/zap"
)

func main() {
	// 1. Logger first; everything else reports through it.
	appLogger := logger.NewLogger()
	defer appLogger.Sync()

	// 2. Configuration (CONFIG_PATH yaml file, .env, then environment).
	cfg := config.MustLoad()
	appLogger.Info("Application starting",
		zap.String("service_name", cfg.ServiceName),
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPServer.Port),
	)

	// 3. OpenTelemetry tracer. A no-op provider comes back when the
	// OTLP endpoint is unset, so shutdown is safe either way.
	tp := tracer.InitTracer(cfg.ServiceName, cfg.Tracing.OTLPEndpoint, appLogger)
	defer func() {
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := tp.Shutdown(ctxShutdown); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	// 4. MySQL. The store is the one hard dependency.
	db, err := gormdb.Open(cfg.MySQL.DSN)
	if err != nil {
		appLogger.Fatal("Failed to connect to MySQL", zap.Error(err))
	}
	if err := gormdb.AutoMigrate(db); err != nil {
		appLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	store := gormdb.NewStore(db)
	appLogger.Info("MySQL connected and migrated")

	// 5. Optional infrastructure. Each one degrades to nil when
	// disabled or unreachable; the usecases nil-check every port.
	var listingCache domain.ListingCache
	if cfg.Redis.Enabled {
		c, err := cache.NewListingCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			appLogger.Warn("Redis unavailable, running without listing cache", zap.Error(err))
		} else {
			defer c.Close()
			listingCache = c
			appLogger.Info("Listing cache initialized", zap.String("addr", cfg.Redis.Addr))
		}
	}

	var publisher domain.EventPublisher
	if cfg.NATS.Enabled {
		p, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			appLogger.Warn("NATS unavailable, running without event publishing", zap.Error(err))
		} else {
			defer p.Close()
			publisher = p
			appLogger.Info("NATS publisher initialized", zap.String("url", cfg.NATS.URL))
		}
	}

	var mediaStorage domain.MediaStorage
	if cfg.Minio.Enabled {
		s, err := s3storage.NewS3Storage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL, appLogger)
		if err != nil {
			appLogger.Warn("MinIO unavailable, media uploads disabled", zap.Error(err))
		} else {
			mediaStorage = s
			appLogger.Info("Media storage initialized", zap.String("bucket", cfg.Minio.Bucket))
		}
	}

	var searchClient *search.Client
	var listingIndex domain.ListingIndex
	if cfg.Meilisearch.Enabled {
		sc := search.NewClient(cfg.Meilisearch.Host, cfg.Meilisearch.APIKey)
		if err := sc.InitIndex(); err != nil {
			appLogger.Warn("Meilisearch unavailable, full-text search falls back to the store", zap.Error(err))
		} else {
			searchClient = sc
			listingIndex = sc
			appLogger.Info("Search index initialized", zap.String("host", cfg.Meilisearch.Host))
		}
	}

	// 6. Metrics registry; the HTTP middleware and handlers record into it.
	metricsManager := metrics.NewMetricsManager(cfg.Metrics.Namespace)

	// 7. Usecases.
	policy := usecase.NewVisibilityPolicy(store, appLogger)
	analyticsUC := usecase.NewAnalyticsUsecase(store, appLogger)
	listingUC := usecase.NewListingUsecase(store, policy, analyticsUC, listingCache, listingIndex, mediaStorage, publisher, appLogger)
	editUC := usecase.NewEditUsecase(store, listingCache, listingIndex, publisher, appLogger)
	savedUC := usecase.NewSavedUsecase(store, policy, publisher, appLogger)
	connectionUC := usecase.NewConnectionUsecase(store, listingCache, publisher, appLogger)
	mediaUC := usecase.NewMediaUsecase(store, mediaStorage, appLogger)
	profileUC := usecase.NewProfileUsecase(store, appLogger)

	// 8. HTTP surface.
	router := httpapi.NewRouter(httpapi.RouterDeps{
		Listings:    httpapi.NewListingHandler(listingUC, analyticsUC, metricsManager, appLogger),
		Edits:       httpapi.NewEditHandler(editUC, appLogger),
		Saved:       httpapi.NewSavedHandler(savedUC, appLogger),
		Connections: httpapi.NewConnectionHandler(connectionUC, metricsManager, appLogger),
		Media:       httpapi.NewMediaHandler(mediaUC, appLogger),
		Profiles:    httpapi.NewProfileHandler(profileUC, appLogger),
		JWTSecret:   cfg.JWT.Secret,
		ServiceName: cfg.ServiceName,
		Logger:      appLogger,
		Metrics:     metricsManager,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPServer.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 9. Prometheus metrics server on its own port.
	go func() {
		if err := metrics.StartMetricsServer(cfg.Metrics.Port, appLogger, metricsManager.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()

	// 10. Background reindex keeps the search index converging with the
	// store after missed writes.
	if searchClient != nil {
		reindexer := scheduler.NewScheduler(store, searchClient, appLogger)
		if err := reindexer.Start(cfg.Meilisearch.ReindexCron); err != nil {
			appLogger.Error("Failed to start reindex scheduler", zap.Error(err))
		} else {
			defer reindexer.Stop()
		}
	}

	// 11. Block until shutdown signal, then drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.TimeoutGraceful)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown error", zap.Error(err))
	}
	appLogger.Info("Application stopped")
}
