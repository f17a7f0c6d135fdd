package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/naqd/naqd/internal/api"
	"github.com/naqd/naqd/internal/assistant"
	"github.com/naqd/naqd/internal/cache"
	"github.com/naqd/naqd/internal/clientstate"
	"github.com/naqd/naqd/internal/db"
	"github.com/naqd/naqd/internal/gate"
	"github.com/naqd/naqd/pkg/config"
	"github.com/naqd/naqd/pkg/logging"
	"github.com/naqd/naqd/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting naqd API server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisCache.Close()

	var responses clientstate.Backend
	if redisCache.Enabled() {
		responses = clientstate.NewRedis(redisCache)
	}

	repo := db.NewRepository(database.DB)
	svc := api.Services{
		Posts:     db.NewPostRepository(repo),
		Comments:  db.NewCommentRepository(repo),
		State:     clientstate.ForCache(redisCache),
		Verifier:  gate.NewSecretVerifier(cfg.Gate.AuthPassword, cfg.Gate.DeletePassword),
		Responses: api.NewResponseCache(responses, cfg.Forum.CacheTTL),
		Health:    map[string]api.HealthChecker{"database": database},
	}
	if redisCache.Enabled() {
		svc.Health["redis"] = redisCache
	} else {
		logger.Warn("Redis disabled; client state is kept in memory and lost on restart")
	}
	if cfg.Assistant.APIKey != "" {
		svc.Suggester = assistant.New(assistant.NewOpenAICompleter(&cfg.Assistant), cfg.Assistant.Timeout)
	} else {
		logger.Warn("No assistant API key configured; assistant.suggest is unavailable")
	}

	// Create Gin router
	if strings.EqualFold(cfg.Logging.Level, "DEBUG") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	api.NewRouter(svc, cfg).SetupRoutes(router)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", api.ClientHeader},
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
