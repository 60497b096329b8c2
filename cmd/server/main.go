package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/azure/brand-pulse/internal/analyses"
	"github.com/azure/brand-pulse/internal/config"
	"github.com/azure/brand-pulse/internal/explorer"
	"github.com/azure/brand-pulse/internal/export"
	"github.com/azure/brand-pulse/internal/history"
	"github.com/azure/brand-pulse/internal/notifications"
	"github.com/azure/brand-pulse/internal/scheduler"
	"github.com/azure/brand-pulse/internal/sources"
	"github.com/azure/brand-pulse/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting Brand Pulse server")

	kv, closeStorage, err := storage.Open(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := closeStorage(); err != nil {
			logrus.Errorf("Failed to close storage: %v", err)
		}
	}()

	queue := notifications.NewQueue(cfg.NotificationTTL)
	if cfg.TeamsWebhookURL != "" {
		queue.SetRelay(notifications.NewTeamsRelay(cfg.TeamsWebhookURL))
	}

	client := sources.NewAPIClient(cfg.APIBaseURL, cfg.RequestTimeout)
	explorerService := explorer.NewService(
		client,
		client,
		history.New(kv),
		analyses.New(kv, cfg.AnalysisCacheCapacity),
		queue,
	)
	if cfg.EmailEnabled() {
		explorerService.SetMailer(export.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword))
	}

	schedulerService := scheduler.NewService(cfg.HealthCheckSchedule, cfg.RequestTimeout, client, explorerService)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      newRouter(explorerService, kv, cfg.NotificationEmail),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
