package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/186mph/calsoft-assets/internal/cache"
	"github.com/186mph/calsoft-assets/internal/config"
	"github.com/186mph/calsoft-assets/internal/database"
	httpapi "github.com/186mph/calsoft-assets/internal/http"
	"github.com/186mph/calsoft-assets/internal/logger"
	"github.com/186mph/calsoft-assets/internal/repository"
	"github.com/186mph/calsoft-assets/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "calsoft-assets")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := cache.NewRedisClient(cache.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Cache and audit stream are best-effort: a dead redis degrades
	// status projection and lineage auditing, never request handling.
	if err := cache.Ping(context.Background(), redisClient); err != nil {
		log.Warn("Redis unavailable, status cache and audit events degraded", zap.Error(err))
	}

	jobsRepo := repository.NewPostgresJobsRepository(db)
	assetsRepo := repository.NewPostgresAssetsRepository(db)
	reportsRepo := repository.NewPostgresReportsRepository(db)
	identitiesRepo := repository.NewPostgresIdentitiesRepository(db)
	lineageRepo := repository.NewPostgresLineageRepository(db)

	kv := cache.NewRedisKV(redisClient)
	publisher := cache.NewRedisStreamPublisher(redisClient)

	search := service.NewCatalogSearch(assetsRepo, reportsRepo, log)
	issuer := service.NewIdentityIssuer(identitiesRepo, cfg.Identity.DefaultCompanyKey, cfg.Identity.RetryAttempts, log)
	projector := service.NewStatusProjector(reportsRepo, kv, time.Duration(cfg.Status.CacheTTL)*time.Second, log)
	lineage := service.NewLineageEngine(jobsRepo, assetsRepo, reportsRepo, lineageRepo, publisher, cfg.Audit.Stream, log)

	var filestore *service.FilestoreClient
	if cfg.Filestore.BaseURL != "" {
		filestore = service.NewFilestoreClient(cfg.Filestore.BaseURL, cfg.Filestore.APIKey, log)
	}

	handler := httpapi.NewCatalogHandler(search, issuer, projector, lineage, assetsRepo, reportsRepo, filestore, log)
	router := httpapi.NewRouter(log)
	router.RegisterCatalogRoutes(handler)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}
