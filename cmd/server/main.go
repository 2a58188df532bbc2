package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"intervue/internal/config"
	"intervue/internal/evaluator"
	"intervue/internal/handlers"
	"intervue/internal/jobs"
	"intervue/internal/llm"
	_ "intervue/internal/llm/gemini"
	"intervue/internal/metrics"
	"intervue/internal/prompts"
	"intervue/internal/resume"
	"intervue/internal/routers"
	"intervue/internal/session"
	"intervue/internal/store"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func registerRoutes(router *chi.Mux, sessionHandler *handlers.SessionHandler, recordsHandler *handlers.RecordsHandler, healthHandler *handlers.HealthHandler, jwtSecret string) {
	routers.HealthRoutes(router, healthHandler)
	routers.SessionRoutes(router, sessionHandler, jwtSecret)
	routers.RecordRoutes(router, recordsHandler, jwtSecret)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// initDatabase opens the record store, local SQLite when configured and
// PostgreSQL otherwise.
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.SQLitePath != "" {
		return gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
	}
	return gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{})
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider))

	// prompt manager
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	// AI provider; "none" runs every evaluation through deterministic fallbacks
	var aiProvider llm.Provider
	if cfg.Provider != "none" {
		aiProvider, err = llm.NewProvider(cfg.Provider)
		if err != nil {
			logger.Fatal("Failed to initialize AI provider", zap.Error(err))
		}
	}

	// session store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	sessionStore := store.NewRedisSessionStore(redisClient)

	// record store
	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize record database", zap.Error(err))
	}
	recordRepo, err := store.NewRecordRepository(db)
	if err != nil {
		logger.Fatal("Failed to migrate record database", zap.Error(err))
	}

	uploader, err := store.NewLocalUploader(cfg.UploadDir)
	if err != nil {
		logger.Fatal("Failed to initialize upload directory", zap.Error(err))
	}

	gateway := evaluator.NewGateway(aiProvider, promptManager, logger)

	hub := session.NewHub(session.Deps{
		Store:     sessionStore,
		Records:   recordRepo,
		Evaluator: gateway,
		Uploader:  uploader,
		Extractor: resume.NewFieldExtractor(),
		Logger:    logger,
	})

	sessionHandler := handlers.NewSessionHandler(hub, logger)
	recordsHandler := handlers.NewRecordsHandler(recordRepo, logger)
	healthHandler := handlers.NewHealthHandler(aiProvider, promptManager, cfg, redisClient, db)

	// archive retry job for record commits that failed at completion time
	retryJob := jobs.NewArchiveRetryJob(hub, &jobs.ArchiveRetryConfig{
		Schedule: getEnv("ARCHIVE_RETRY_SCHEDULE", "@every 5m"),
		Timeout:  time.Minute,
		Enabled:  getEnv("ARCHIVE_RETRY_ENABLED", "true") == "true",
	}, logger)
	if err := retryJob.Start(); err != nil {
		logger.Error("Failed to start archive retry job", zap.Error(err))
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{getEnv("CORS_ORIGIN", "http://localhost:5173")},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Logger, chimiddleware.Recoverer, chimiddleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware())

	router.Handle("/metrics", metrics.Handler())
	registerRoutes(router, sessionHandler, recordsHandler, healthHandler, cfg.JWTSecret)

	serverAddr := ":" + cfg.Port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	retryJob.Stop()

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
