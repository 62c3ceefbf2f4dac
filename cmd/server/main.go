package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/tendo-app/backend/internal/analytics"
	"github.com/tendo-app/backend/internal/config"
	"github.com/tendo-app/backend/internal/events"
	"github.com/tendo-app/backend/internal/handlers"
	"github.com/tendo-app/backend/internal/logger"
	"github.com/tendo-app/backend/internal/metrics"
	"github.com/tendo-app/backend/internal/middleware"
	"github.com/tendo-app/backend/internal/prompting"
	"github.com/tendo-app/backend/internal/store"
	"github.com/tendo-app/backend/internal/tasks"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== Tendo backend starting ===",
		zap.String("data_dir", cfg.DataDir),
		zap.String("port", cfg.Port),
	)

	metrics.Initialize()

	// Open the flat-file store
	st, err := store.Open(cfg.DataDir)
	if err != nil {
		logger.Log.Fatal("Failed to open data store", zap.Error(err))
	}
	defer st.Close()

	// Initialize the event hub
	hub := events.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Reload notifications: tell clients their data changed out from under them
	if err := st.Watch(func(name string) {
		hub.Broadcast(events.New(events.TypeTaskUpdated, map[string]string{"reloaded": name}))
	}); err != nil {
		logger.WarnWithFields("file watching unavailable, external edits need a restart", err)
	}

	// Initialize services
	taskService := tasks.NewService(st, hub)
	analyticsService := analytics.NewService(st)
	promptingService := prompting.NewService(st, taskService, hub)

	if err := promptingService.Start(cfg.DigestCron); err != nil {
		logger.Log.Fatal("Failed to start prompting service", zap.Error(err))
	}
	defer promptingService.Stop()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.Use(middleware.NewRateLimiter(middleware.RateLimitConfig{
		Limit:  cfg.RateLimit,
		Window: time.Minute,
	}))

	h := handlers.NewHandlers(st, taskService, promptingService, analyticsService, hub)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info("Tendo backend listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}
