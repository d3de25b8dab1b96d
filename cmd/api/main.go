package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hisworks-api/internal/app"
	"github.com/hisworks-api/internal/config"
	jwtinfra "github.com/hisworks-api/internal/infrastructure/jwt"
	transporthttp "github.com/hisworks-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	// JWT provider (optional; authenticated routes reject every request without it).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		logger.Warn("JWT provider not available", "error", err)
	}

	deps := &transporthttp.Deps{
		ReminderRepo:     a.ReminderRepo,
		UserRepo:         a.UserRepo,
		TestimonyRepo:    a.TestimonyRepo,
		DeviceRepo:       a.DeviceRepo,
		NotificationRepo: a.NotificationRepo,
		Lifecycle:        a.Lifecycle,
		JWTProvider:      jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
