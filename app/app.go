// File: app/app.go
package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backups-api/config"
	"backups-api/db"
	"backups-api/handler"
	"backups-api/logger"
	"backups-api/repository"
	"backups-api/router"
	"backups-api/service"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, "file://db/migrations"); err != nil {
		logger.Log.Fatalf("Error running database migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to redis: %v", err)
	}
	defer redisClient.Close()

	cfg := &config.AppConfig

	// --- Wiring All Layers Together ---
	// The database handle and secrets are constructed here and passed down;
	// no layer below reaches for them through a global.
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)

	issuer := service.NewTokenIssuer(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.AccessTTL())
	authService := service.NewAuthService(database, userRepo, tokenRepo, issuer, cfg.SessionTTL())
	limiter := service.NewLoginLimiter(redisClient, cfg.LoginLimiter.MaxAttempts,
		time.Duration(cfg.LoginLimiter.WindowMinutes)*time.Minute)

	authHandler := handler.NewAuthHandler(authService, limiter, cfg.Server.Environment == "production")
	authMw := handler.NewAuthMiddleware(issuer)

	r := router.NewRouter(authHandler, authMw)

	// Background sweep of refresh records past their absolute expiry.
	janitor := service.NewSessionJanitor(tokenRepo,
		time.Duration(cfg.Janitor.SweepIntervalMinutes)*time.Minute)
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	go janitor.Run(janitorCtx)

	// --- Start the Server with Graceful Shutdown ---
	port := cfg.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	stopJanitor()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
