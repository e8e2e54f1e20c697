package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"jamjam-trek/config"
	"jamjam-trek/providers/trekapi"
	"jamjam-trek/services"
	"jamjam-trek/storage"
)

var snapshotsStoredCounter prometheus.Counter

func init() {
	snapshotsStoredCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_snapshots_stored_total",
			Help: "Total number of collection snapshots written to the archive.",
		},
	)
	prometheus.MustRegister(snapshotsStoredCounter)
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optionaler Antwort-Cache
	var cache trekapi.Cache
	if cfg.CacheEnabled() {
		rdb, err := storage.NewRedisClient(ctx, cfg)
		if err != nil {
			logging.Warn("Redis not reachable, running without response cache", zap.Error(err))
		} else {
			defer rdb.Close()
			cache = storage.NewResponseCache(rdb, cfg.CacheTTL, logging)
			logging.Info("Response cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
		}
	}

	api := trekapi.NewClient(cfg, cache, logging)

	// Snapshots brauchen Datenbank und S3
	var store services.SnapshotStore
	var archive services.Archiver
	if cfg.SnapshotsEnabled() {
		db, err := storage.OpenDB(cfg)
		if err != nil {
			logging.Fatal("Failed to connect to snapshot database", zap.Error(err))
		}
		logging.Info("Successfully connected to snapshot database.")

		s3Client, err := storage.NewS3Client(ctx, cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		store = storage.NewSnapshotStore(db)
		archive = storage.NewArchive(s3Client, cfg, logging)
	} else {
		logging.Info("Snapshots disabled, DB_HOST/DB_NAME/S3_URL/S3_BUCKET not set.")
	}
	snapshotService := services.NewSnapshotService(cfg, api, store, archive, logging)

	router := setupRouter(cfg, api, snapshotService, logging)

	// Setup Cron
	cronScheduler := cron.New()
	if cfg.SnapshotsEnabled() {
		_, err := cronScheduler.AddFunc(cfg.CronSchedule, func() {
			logging.Info("Running scheduled snapshot job...")
			runSnapshots(context.Background(), snapshotService, logging)
		})
		if err != nil {
			logging.Fatal("Invalid cron schedule", zap.String("schedule", cfg.CronSchedule), zap.Error(err))
		}
	}
	cronScheduler.Start()
	defer cronScheduler.Stop()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort), zap.String("api", cfg.APIBaseURL))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server shutdown failed", zap.Error(err))
	}
}

// setupRouter baut den gin-Router mit allen Routen und Middlewares.
func setupRouter(cfg *config.Config, api *trekapi.Client, snapshots *services.SnapshotService, logging *zap.Logger) *gin.Engine {
	router := gin.New()
	// Ohne konfigurierte Proxies ist ClientIP die Verbindungsadresse; das Rate-Limit hängt daran.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logging.Warn("Invalid TRUSTED_PROXIES, trusting no proxy", zap.Strings("proxies", cfg.TrustedProxies), zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())
	router.Use(traceIDMiddleware())
	router.Use(metricsMiddleware())
	router.Use(requestLogMiddleware(logging))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	setupPublicRoutes(router, cfg, api, logging)
	setupAdminRoutes(router, api, services.NewDashboardService(logging), snapshots, logging)
	return router
}

// runSnapshots exportiert alle Collections und rotiert danach das Archiv.
func runSnapshots(ctx context.Context, svc *services.SnapshotService, logging *zap.Logger) {
	count, err := svc.Run(ctx)
	if errors.Is(err, services.ErrSnapshotRunning) {
		logging.Warn("Snapshot job skipped, previous run still active")
		return
	}
	if err != nil {
		logging.Error("Snapshot job failed", zap.Error(err))
		return
	}
	snapshotsStoredCounter.Add(float64(count))

	deleted, err := svc.Rotate(ctx)
	if err != nil {
		logging.Error("Snapshot rotation failed", zap.Error(err))
	}
	logging.Info("Snapshot job completed", zap.Int("stored", count), zap.Int("rotated", deleted))
}
