// Package main provides the entry point for the Shortly URL shortener service.
package main

import (
	"Shortly-Backend/internal/auth"
	"Shortly-Backend/internal/config"
	"Shortly-Backend/internal/database"
	httpHandler "Shortly-Backend/internal/handler/http"
	"Shortly-Backend/internal/repository"
	"Shortly-Backend/internal/repository/memory"
	"Shortly-Backend/internal/repository/postgres"
	"Shortly-Backend/internal/service"
	"Shortly-Backend/pkg/logger"
	"Shortly-Backend/pkg/title"
	"context"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaevor/go-nanoid"
	"go.uber.org/zap"
)

const sessionCleanupInterval = time.Hour

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting Shortly service", zap.String("env", cfg.Env), zap.String("storage", cfg.Storage))

	// Initialize storage backend
	var storage repository.Storage
	switch cfg.Storage {
	case "memory":
		storage = memory.New()
		log.Info("using in-memory storage")
	default:
		db, err := database.NewConnection(&cfg.Database, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer func() {
			if err := database.Close(db, log); err != nil {
				log.Error("failed to close database connection", zap.Error(err))
			}
		}()

		if cfg.Database.AutoMigrate {
			if err := database.AutoMigrate(db, log); err != nil {
				log.Fatal("failed to run database migrations", zap.Error(err))
			}
		} else {
			log.Info("skipping database migrations (auto_migrate: false)")
		}

		storage = postgres.New(db, log)
	}

	// Initialize short-code generator
	generateCode, err := nanoid.Standard(cfg.Shortener.CodeLength)
	if err != nil {
		log.Fatal("failed to initialize code generator", zap.Int("code_length", cfg.Shortener.CodeLength), zap.Error(err))
	}

	// Initialize services
	titleFetcher := title.NewFetcher(cfg.TitleFetcher.Timeout, log)
	shortener := service.NewShortener(storage, titleFetcher, generateCode, log)
	passwordService := auth.NewPasswordService()
	sessionManager := auth.NewSessionManager(storage, &auth.SessionConfig{
		Secret:     []byte(cfg.Session.Secret),
		TTL:        cfg.Session.TTL,
		CookieName: cfg.Session.CookieName,
		Issuer:     "Shortly-Backend",
	}, log)

	// Create HTTP server
	server := httpHandler.NewServer(storage, shortener, sessionManager, passwordService, log, cfg.Shortener.BaseURL)

	httpServer := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      server.SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// Periodically drop expired sessions
	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	defer janitorCancel()
	go func() {
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-janitorCtx.Done():
				return
			case <-ticker.C:
				removed, err := storage.DeleteExpiredSessions(janitorCtx)
				if err != nil {
					log.Error("failed to delete expired sessions", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("removed expired sessions", zap.Int64("count", removed))
				}
			}
		}
	}()

	log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down Shortly service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}
}
