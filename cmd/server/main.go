package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/agendahq/agenda/internal/config"
	"github.com/agendahq/agenda/internal/handler"
	"github.com/agendahq/agenda/internal/repository"
	"github.com/agendahq/agenda/internal/service"
	"github.com/agendahq/agenda/internal/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected")

	bookingRepo := repository.NewBookingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)

	notificationSvc := service.NewNotificationService(notificationRepo)
	bookingSvc := service.NewBookingService(bookingRepo, notificationSvc)
	authSvc := service.NewAuthService(userRepo, service.AuthConfig{
		JWTSecret:          cfg.JWTSecret,
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		OAuthRedirectURL:   cfg.OAuthRedirectURL,
	})

	ctx := context.Background()
	if _, err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	reminder := worker.NewReminder(bookingRepo, notificationSvc, cfg.ReminderInterval, cfg.ReminderLookahead)
	if err := reminder.Start(ctx); err != nil {
		return fmt.Errorf("start reminder worker: %w", err)
	}
	defer func() {
		if err := reminder.Stop(); err != nil {
			slog.Error("stop reminder worker", "error", err)
		}
	}()

	authHandler := handler.NewAuthHandler(authSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewAppValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Use(middleware.RequestID())
	e.Use(handler.RequestLogger())
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return handler.JSON(c, http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/google", authHandler.GoogleRedirect)
	auth.GET("/google/callback", authHandler.GoogleCallback)

	protected := api.Group("", handler.JWTAuth(authSvc))
	protected.GET("/auth/me", authHandler.Me)

	protected.POST("/bookings", bookingHandler.Create)
	protected.GET("/bookings", bookingHandler.ListAll)
	protected.GET("/bookings/me", bookingHandler.ListMine)
	protected.GET("/bookings/me/alerts", bookingHandler.MyAlerts)
	protected.GET("/bookings/alerts", bookingHandler.AllAlerts)
	protected.PATCH("/bookings/:id", bookingHandler.Update)
	protected.DELETE("/bookings/:id", bookingHandler.Cancel)

	protected.GET("/notifications", notificationHandler.ListAll)
	protected.GET("/notifications/me", notificationHandler.ListMine)
	protected.PATCH("/notifications/read-all", notificationHandler.MarkAllRead)
	protected.PATCH("/notifications/:id/read", notificationHandler.MarkRead)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- e.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
