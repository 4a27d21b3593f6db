package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/reachout/backend/internal/middleware"
	"github.com/anonto42/reachout/backend/internal/router"
	"github.com/anonto42/reachout/backend/internal/validators"
	"github.com/anonto42/reachout/backend/pkg/config"
	"github.com/anonto42/reachout/backend/pkg/firebase"
	"github.com/anonto42/reachout/backend/pkg/zlog"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := zlog.Init(zlog.Options{
		Level:   cfg.LogLevel,
		Path:    cfg.LogPath,
		Console: !cfg.IsProduction(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		zlog.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	// Firebase login is optional
	var verifier middleware.IDTokenVerifier
	firebaseApp, err := firebase.InitFirebase(context.Background(), firebase.Options{
		CredentialsPath: cfg.FirebaseCredentialsPath,
		ProjectID:       cfg.FirebaseProjectID,
	})
	switch {
	case err == nil:
		verifier = firebaseApp.AuthClient
	case errors.Is(err, firebase.ErrNotConfigured):
		zlog.Warn("Firebase not configured, firebase-login disabled")
	default:
		zlog.Fatal("Failed to initialize Firebase", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	config.SetupMiddleware(e, cfg)

	if err := router.SetupRoutes(e, cfg, db, verifier); err != nil {
		zlog.Fatal("Failed to set up routes", zap.Error(err))
	}

	go func() {
		zlog.Info("Starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zlog.Error("Server shutdown failed", zap.Error(err))
	}
	zlog.Info("Server exited")
}
