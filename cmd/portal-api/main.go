package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"founder-portal/ops-portal/ops-portal-backend/internal/assistant"
	"founder-portal/ops-portal/ops-portal-backend/internal/auth"
	"founder-portal/ops-portal/ops-portal-backend/internal/config"
	"founder-portal/ops-portal/ops-portal-backend/internal/dashboard"
	"founder-portal/ops-portal/ops-portal-backend/internal/documents"
	"founder-portal/ops-portal/ops-portal-backend/internal/finance"
	"founder-portal/ops-portal/ops-portal-backend/internal/fundraising"
	"founder-portal/ops-portal/ops-portal-backend/internal/logger"
	"founder-portal/ops-portal/ops-portal-backend/internal/middleware"
	"founder-portal/ops-portal/ops-portal-backend/internal/milestones"
	"founder-portal/ops-portal/ops-portal-backend/internal/notifications"
	"founder-portal/ops-portal/ops-portal-backend/internal/notifications/websocket"
	"founder-portal/ops-portal/ops-portal-backend/internal/reports/scheduler"
	"founder-portal/ops-portal/ops-portal-backend/internal/team"
	"founder-portal/ops-portal/ops-portal-backend/pkg/storage"
)

func main() {
	configPath := flag.String("config", "config.json", "path to JSON config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	db, err := openDatabase(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	store, err := newObjectStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	var provider assistant.Provider
	if cfg.Assistant.Enabled() {
		p, err := assistant.NewGenAIProvider(ctx, cfg.Assistant.APIKey, cfg.Assistant.Model, cfg.Assistant.Temperature)
		if err != nil {
			log.Fatal("Failed to initialize assistant provider", zap.Error(err))
		}
		provider = p
	} else {
		log.Info("Assistant disabled, no API key configured")
	}
	assistantSvc := assistant.NewService(provider, cfg.Assistant.Timeout, log)

	// Realtime push and cache invalidation share one in-process bus
	hub := websocket.NewManager(cfg.Server.AllowOrigin, log)
	bus := notifications.NewBus(hub.Broadcast)

	teamSvc := team.NewService(team.NewPostgresRepository(db), bus, log)
	fundraisingSvc := fundraising.NewService(fundraising.NewPostgresRepository(db), teamSvc, assistantSvc, bus, log)
	financeSvc := finance.NewService(finance.NewPostgresRepository(db), assistantSvc, bus, log)
	milestoneSvc := milestones.NewService(milestones.NewPostgresRepository(db), assistantSvc, bus, log)
	documentSvc := documents.NewService(documents.NewPostgresRepository(db), store, cfg.Storage.Bucket, assistantSvc, log)
	authSvc := auth.NewService(cfg.Security)

	aggregator := dashboard.NewAggregator(dashboard.Sources{
		CapTable:   teamSvc,
		Pipeline:   fundraisingSvc,
		Milestones: milestoneSvc,
		Finance:    financeSvc,
	}, dashboard.NewCache(cfg.Dashboard.CacheTTL), log)
	bus.Subscribe(aggregator.Subscriber())

	jobs := scheduler.NewManager(5*time.Minute, log)
	if err := jobs.AddJob("cap_table_snapshot", cfg.Scheduler.SnapshotCron, scheduler.SnapshotJob(teamSvc)); err != nil {
		log.Fatal("Failed to schedule cap table snapshots", zap.Error(err))
	}
	if err := jobs.Start(); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.AllowOrigin))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"assistant":   assistantSvc.Enabled(),
			"connections": hub.ConnectionCount(),
			"timestamp":   time.Now(),
		})
	})
	router.GET("/ws", func(c *gin.Context) {
		if _, err := hub.HandleConnection(c.Writer, c.Request); err != nil {
			log.Warn("WebSocket upgrade failed", zap.Error(err))
		}
	})

	authHandler := auth.NewHandler(authSvc, log)
	authHandler.RegisterRoutes(router)

	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth([]byte(cfg.Security.JWTSecret)))
	{
		authHandler.RegisterProtectedRoutes(api)
		team.NewHandler(teamSvc, log).RegisterRoutes(api)
		fundraising.NewHandler(fundraisingSvc, log).RegisterRoutes(api)
		finance.NewHandler(financeSvc, log).RegisterRoutes(api)
		milestones.NewHandler(milestoneSvc, log).RegisterRoutes(api)
		documents.NewHandler(documentSvc, log).RegisterRoutes(api)
		assistant.NewHandler(assistantSvc, log).RegisterRoutes(api)
		dashboard.NewHandler(aggregator, log).RegisterRoutes(api)
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("addr", srv.Addr))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	jobs.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting")
}

func openDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseURL()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(
			&team.Member{},
			&team.CapTableSnapshot{},
			&fundraising.Investor{},
			&fundraising.Simulation{},
			&finance.Record{},
			&milestones.Milestone{},
			&documents.Document{},
		); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return db, nil
}

func newObjectStore(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStore, error) {
	switch cfg.Driver {
	case "s3":
		return storage.NewS3Store(ctx, cfg.Region, cfg.Endpoint)
	default:
		return storage.NewMemoryStore(), nil
	}
}
