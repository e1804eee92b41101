package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/shenikar/mine_safety_dashboard/internal/artifact"
	"github.com/shenikar/mine_safety_dashboard/internal/backend"
	"github.com/shenikar/mine_safety_dashboard/internal/chat"
	"github.com/shenikar/mine_safety_dashboard/internal/config"
	"github.com/shenikar/mine_safety_dashboard/internal/feed"
	v1 "github.com/shenikar/mine_safety_dashboard/internal/handler/http/v1"
	"github.com/shenikar/mine_safety_dashboard/internal/handler/web"
	"github.com/shenikar/mine_safety_dashboard/internal/repository"
	"github.com/shenikar/mine_safety_dashboard/internal/service"
	"github.com/shenikar/mine_safety_dashboard/internal/webhook"
	"github.com/shenikar/mine_safety_dashboard/pkg/logger"
	"github.com/shenikar/mine_safety_dashboard/pkg/postgres"
	redisclient "github.com/shenikar/mine_safety_dashboard/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/mine_safety_dashboard/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	shutdownTimeout = 5 * time.Second
	janitorInterval = time.Minute
)

// @title Mine Safety Dashboard API
// @version 1.0
// @description Incident analytics, grouped alerts and the mine officer assistant chat.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{
		Use:   "mine-safety-dashboard",
		Short: "Mine safety monitoring dashboard",
		Long: `Mine safety dashboard aggregates incident statistics, groups active
alerts and proxies officer queries and audit report requests to the
safety backend.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.AddCommand(newServeCmd(), newSnapshotCmd(), newAlertsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// app - общие зависимости команд
type app struct {
	cfg         *config.Config
	log         *logrus.Logger
	client      *backend.Client
	redisClient *redis.Client
	source      service.IncidentSource
	cache       *repository.CachedSource
}

// newApp загружает конфигурацию и подключает внешний сервис и Redis
func newApp(ctx context.Context, logFormat string) (*app, error) {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logFormat == "" {
		logFormat = cfg.LogFormat
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel, logFormat)

	a := &app{cfg: cfg, log: log, client: backend.NewClient(cfg, log)}
	a.source = a.client

	if cfg.RedisEnabled() {
		a.redisClient, err = redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		log.Info("Successfully connected to Redis")

		if cfg.CacheTTL > 0 {
			a.cache = repository.NewCachedSource(a.client, a.redisClient, cfg.CacheTTL, log)
			a.source = a.cache
		}
	}
	return a, nil
}

func (a *app) close() {
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
}

// dashboardService собирает сервис дашборда; notifier может быть nil
func (a *app) dashboardService(notifier service.AlertNotifier) service.DashboardService {
	var updates service.UpdatesSource
	if a.cfg.UpdatesFeedURL != "" {
		updates = feed.NewFetcher(a.cfg.UpdatesFeedURL, a.cfg.UpdatesLimit, a.cfg.BackendTimeout, a.log)
	}
	return service.NewDashboardService(a.source, notifier, updates, a.log, a.cfg)
}

func runServe(ctx context.Context) error {
	a, err := newApp(ctx, "")
	if err != nil {
		logrus.WithError(err).Error("Failed to initialize application")
		return err
	}
	defer a.close()
	cfg, log := a.cfg, a.log

	// Хранилище PDF-отчётов
	var artifacts artifact.Store = artifact.NewMemoryStore()
	if a.redisClient != nil {
		artifacts = artifact.NewRedisStore(a.redisClient, cfg.ArtifactTTL)
	}

	// Вебхуки по оповещениям высокого риска
	var (
		notifier service.AlertNotifier
		worker   *webhook.AlertWorker
	)
	if a.redisClient != nil && cfg.WebhookURL != "" {
		notifier = webhook.NewNotifier(a.redisClient, webhook.NewRedisAlertPublisher(a.redisClient), log)
		worker = webhook.NewAlertWorker(a.redisClient, log, cfg)
		worker.Start(ctx)
	}

	// Журнал чата в PostgreSQL
	var (
		transcriptWriter chat.TranscriptWriter
		transcriptReader v1.TranscriptReader
	)
	if cfg.TranscriptsEnabled() {
		log.Info("Running database migrations...")
		if err := postgres.Migrate(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			log.WithError(err).Error("Failed to run database migrations")
			return err
		}

		dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Error("Failed to connect to PostgreSQL")
			return err
		}
		defer dbpool.Close()
		log.Info("Successfully connected to PostgreSQL")

		transcripts := repository.NewTranscriptRepository(dbpool)
		transcriptWriter, transcriptReader = transcripts, transcripts
	}

	// Инициализация сервисов
	dashboardService := a.dashboardService(notifier)
	chatOpts := chat.Options{HistoryLimit: cfg.ChatHistoryLimit, IdleTimeout: cfg.ChatSessionIdleTimeout}
	chats := chat.NewManager(a.client, artifacts, transcriptWriter, log, chatOpts)
	chats.StartJanitor(ctx, janitorInterval)

	var cacheInvalidator v1.CacheInvalidator
	if a.cache != nil {
		cacheInvalidator = a.cache
	}

	// Инициализация хэндлеров
	apiHandler := v1.NewHandler(dashboardService, chats, artifacts, transcriptReader, cacheInvalidator, log, cfg)
	webHandler, err := web.NewHandler(dashboardService, chats, artifacts, log, chatOpts)
	if err != nil {
		log.WithError(err).Error("Failed to initialize web handler")
		return err
	}

	// Настройка Gin роутера
	router := gin.New()
	router.Use(gin.Recovery(), v1.RequestLoggerMiddleware(log))
	apiHandler.RegisterRoutes(router.Group("/api/v1"))
	webHandler.RegisterRoutes(router)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: router,
	}

	// Запуск сервера в горутине
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	select {
	case <-ctx.Done():
		log.Info("Received shutdown signal, shutting down server...")
	case err := <-serverErr:
		log.WithError(err).Error("Error starting HTTP server")
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	// Освобождаем файлы всех открытых сессий
	chats.Shutdown(shutdownCtx)
	if worker != nil {
		worker.Wait()
	}

	log.Info("Server gracefully stopped")
	return nil
}
