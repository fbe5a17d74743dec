package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/okonek/traintrack/internal/handler"
	"github.com/okonek/traintrack/internal/realtime"
	"github.com/okonek/traintrack/internal/repository/sqlite"
	"github.com/okonek/traintrack/internal/service"
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "traintrack.db")
	reminderSpec := envOrDefault("REMINDER_SPEC", "@every 10m")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if len(jwtSecret) < 32 {
		slog.Error("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
		os.Exit(1)
	}

	// Default to secure cookies; disable only for local development.
	cookieSecure := os.Getenv("COOKIE_SECURE") != "false"

	bcryptCost := 12
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			slog.Error("invalid BCRYPT_COST", "error", err)
			os.Exit(1)
		}
		if parsed < 4 || parsed > 14 {
			slog.Error("BCRYPT_COST must be between 4 and 14", "value", parsed)
			os.Exit(1)
		}
		bcryptCost = parsed
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	chatService := service.NewChatService(db.Messages())
	hub := realtime.NewHub(chatService, logger)

	authService := service.NewAuthService(db.Users(), jwtSecret, bcryptCost)
	scheduleService := service.NewScheduleService(db.Schedules(), hub)
	feedService := service.NewFeedService(db.Posts())
	metricsService := service.NewMetricsService(db.Metrics())
	countdownService := service.NewCountdownService(db.KV(), nil)

	reminderService := service.NewReminderService(db.Schedules(), hub, logger)
	if err := reminderService.Start(reminderSpec); err != nil {
		slog.Error("failed to start reminder sweep", "error", err)
		os.Exit(1)
	}
	defer reminderService.Stop()

	loginLimiter := service.NewTokenBucket(0.2, 5)  // 5 attempts, one refill per 5s
	wsLimiter := service.NewTokenBucket(0.5, 10)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux,
		authService, scheduleService, chatService, feedService,
		metricsService, countdownService, hub, loginLimiter, wsLimiter,
		cookieSecure)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
