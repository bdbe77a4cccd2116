package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tempo-schedule-api/api/swagger"
	"github.com/noah-isme/tempo-schedule-api/internal/handler"
	internalmiddleware "github.com/noah-isme/tempo-schedule-api/internal/middleware"
	"github.com/noah-isme/tempo-schedule-api/internal/models"
	"github.com/noah-isme/tempo-schedule-api/internal/repository"
	"github.com/noah-isme/tempo-schedule-api/internal/service"
	"github.com/noah-isme/tempo-schedule-api/pkg/cache"
	"github.com/noah-isme/tempo-schedule-api/pkg/config"
	"github.com/noah-isme/tempo-schedule-api/pkg/database"
	"github.com/noah-isme/tempo-schedule-api/pkg/jobs"
	"github.com/noah-isme/tempo-schedule-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tempo-schedule-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tempo-schedule-api/pkg/middleware/requestid"
	"github.com/noah-isme/tempo-schedule-api/pkg/storage"
)

// @title TEMPO Schedule API
// @version 1.0.0
// @description Weekly fitness-class schedule and instructor assignment service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()
	validate := validator.New()
	checks := map[string]handler.ReadinessCheck{}

	var (
		stateSync *service.StateSyncService
		syncQueue *jobs.Queue
		db        *sqlx.DB
		redisConn *redis.Client
	)
	if cfg.Sync.Enabled {
		var store *repository.StateRepository
		if db, err = database.NewPostgres(ctx, cfg.Database); err != nil {
			logr.Warn("postgres unavailable, state will not be stored in the database", zap.Error(err))
		} else {
			store = repository.NewStateRepository(db)
			if err := store.EnsureSchema(ctx); err != nil {
				logr.Warn("failed to ensure state schema", zap.Error(err))
			}
			checks["postgres"] = func(ctx context.Context) error { return db.PingContext(ctx) }
		}

		var stateCache *repository.CacheRepository
		if redisConn, err = cache.NewRedis(ctx, cfg.Redis); err != nil {
			logr.Warn("redis unavailable, state cache disabled", zap.Error(err))
		} else {
			stateCache = repository.NewCacheRepository(redisConn, "tempo", logr)
			checks["redis"] = func(ctx context.Context) error { return redisConn.Ping(ctx).Err() }
		}

		backup, err := storage.NewLocalStorage(cfg.Sync.BackupDir)
		if err != nil {
			logr.Warn("local backup disabled", zap.Error(err))
		}

		stateSync = service.NewStateSyncService(optionalStore(store), optionalCache(stateCache), optionalBackup(backup), logr, metricsSvc, service.StateSyncConfig{
			StateID:           cfg.Sync.StateID,
			Debounce:          cfg.Sync.Debounce,
			CacheTTL:          cfg.Sync.CacheTTL,
			SnapshotRetention: cfg.Sync.SnapshotRetention,
		})
		syncQueue = jobs.NewQueue("state-sync", stateSync.HandleJob, jobs.QueueConfig{
			Workers:    1,
			BufferSize: 16,
			MaxRetries: cfg.Sync.WorkerRetries,
			RetryDelay: time.Second,
			Logger:     logr,
		})
		syncQueue.Start(ctx)
		stateSync.AttachQueue(syncQueue)
		stateSync.PruneSnapshots()
	}

	initial, source := loadInitialState(ctx, stateSync)
	logr.Info("schedule state loaded", zap.String("source", source), zap.Int("instructors", len(initial.Instructors)))

	engine := service.NewAssignmentEngine(service.AssignmentEngineConfig{
		GeneralistClassType:    cfg.Scheduler.GeneralistClassType,
		DisableSpecialistBonus: !cfg.Scheduler.SpecialistBonus,
		LoadRatioTolerance:     cfg.Scheduler.LoadRatioTolerance,
	}, logr, metricsSvc)
	scheduleSvc := service.NewClassScheduleService(initial, engine, validate, logr, metricsSvc, service.ClassScheduleConfig{
		HistoryDepth: cfg.Scheduler.HistoryDepth,
	})
	if stateSync != nil {
		scheduleSvc.SetStateSink(stateSync)
	}
	if cfg.Scheduler.SeedTemplateOnEmptyBoot && scheduleSvc.GetTotalScheduledSlots() == 0 {
		scheduleSvc.SeedTemplateClasses()
	}

	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		AdminPasswordHash: cfg.Admin.PasswordHash,
	})
	if !authSvc.Enabled() {
		logr.Warn("ADMIN_PASSWORD_HASH is empty, administrative routes are not gated")
	}

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportSvc = service.NewExportService(scheduleSvc, logr, nil, nil)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	registerRoutes(r, cfg, routeDeps{
		schedules:   handler.NewScheduleHandler(scheduleSvc),
		instructors: handler.NewInstructorHandler(scheduleSvc),
		exports:     handler.NewExportHandler(exportSvc),
		auth:        handler.NewAuthHandler(authSvc),
		metrics:     handler.NewMetricsHandler(metricsSvc, checks),
		authSvc:     authSvc,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown", zap.Error(err))
	}
	if syncQueue != nil {
		syncQueue.Stop()
	}
	if stateSync != nil {
		if err := stateSync.Flush(shutdownCtx); err != nil {
			logr.Warn("final state sync failed", zap.Error(err))
		}
	}
	if redisConn != nil {
		_ = redisConn.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}

type routeDeps struct {
	schedules   *handler.ScheduleHandler
	instructors *handler.InstructorHandler
	exports     *handler.ExportHandler
	auth        *handler.AuthHandler
	metrics     *handler.MetricsHandler
	authSvc     *service.AuthService
}

func registerRoutes(r *gin.Engine, cfg *config.Config, deps routeDeps) {
	r.GET("/health", deps.metrics.Health)
	r.GET("/ready", deps.metrics.Ready)
	r.GET("/metrics", deps.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := internalmiddleware.AdminOnly(deps.authSvc)
	withAdmin := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, admin...), h)
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())

	api.GET("/metrics/summary", deps.metrics.Summary)
	api.POST("/auth/admin", deps.auth.AdminLogin)
	api.GET("/auth/session", withAdmin(deps.auth.Session)...)

	api.GET("/catalog", deps.schedules.Catalog)
	api.GET("/state", deps.schedules.State)

	schedule := api.Group("/schedule")
	schedule.GET("", deps.schedules.Schedule)
	schedule.GET("/stats", deps.schedules.Stats)
	schedule.GET("/audit", deps.schedules.Audit)
	if cfg.Exports.Enabled {
		schedule.GET("/export", deps.exports.Export)
	}
	schedule.POST("/classes", deps.schedules.AddClass)
	schedule.DELETE("/classes", deps.schedules.RemoveClass)
	schedule.POST("/assign", deps.schedules.Assign)
	schedule.GET("/locks", deps.schedules.LockStatus)
	schedule.POST("/locks", deps.schedules.Lock)
	schedule.DELETE("/locks", deps.schedules.Unlock)
	schedule.POST("/generate", withAdmin(deps.schedules.Generate)...)
	schedule.POST("/seed", withAdmin(deps.schedules.Seed)...)
	schedule.POST("/clear", withAdmin(deps.schedules.Clear)...)
	schedule.POST("/undo", withAdmin(deps.schedules.Undo)...)

	instructors := api.Group("/instructors")
	instructors.GET("", deps.instructors.List)
	instructors.POST("", deps.instructors.Create)
	instructors.POST("/register", deps.instructors.Register)
	instructors.GET("/:id", deps.instructors.Get)
	instructors.PATCH("/:id", deps.instructors.Update)
	instructors.DELETE("/:id", withAdmin(deps.instructors.Delete)...)
	instructors.GET("/:id/classes", deps.instructors.Classes)
	instructors.PUT("/:id/availability", deps.instructors.SetAvailability)
}

func loadInitialState(ctx context.Context, stateSync *service.StateSyncService) (models.ScheduleState, string) {
	if stateSync == nil {
		return models.NewScheduleState(), "default"
	}
	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return stateSync.Load(loadCtx)
}

// The optional* helpers keep nil pointers from becoming non-nil interface values.

func optionalStore(store *repository.StateRepository) service.StateStore {
	if store == nil {
		return nil
	}
	return store
}

func optionalCache(c *repository.CacheRepository) service.StateCache {
	if c == nil {
		return nil
	}
	return c
}

func optionalBackup(b *storage.LocalStorage) service.StateBackup {
	if b == nil {
		return nil
	}
	return b
}
