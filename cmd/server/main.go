package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jwaldner/mtts/internal/config"
	"github.com/jwaldner/mtts/internal/handlers"
	"github.com/jwaldner/mtts/internal/logger"
	"github.com/jwaldner/mtts/internal/metrics"
	"github.com/jwaldner/mtts/internal/payload"
)

func main() {
	cfg := config.Load()

	// Initialize proper logging with config level and file path
	if err := logger.InitFromConfig(logger.Config{
		Level:      cfg.Logging.LogLevel,
		File:       cfg.Logging.LogFile,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	}); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	logger.Always.Printf("🚀 Trend Template results service starting - Port: %s", cfg.Port)

	if logger.Level() == "verbose" {
		fmt.Printf("⚠️  VERBOSE LOGGING ENABLED - payload loads and requests will be logged to %s\n", cfg.Logging.LogFile)
	}

	// The service republishes the screener output; it never fetches over HTTP itself
	store := payload.NewStore(cfg.Data.ResultsFile, payload.NewLoader(cfg.FetchTimeout()))
	logger.Always.Printf("📦 payload source: %s", store.Source())
	registry := metrics.NewRegistry()
	resultsHandler := handlers.NewResultsHandler(store, registry)

	if _, err := resultsHandler.Reload(context.Background(), "startup"); err != nil {
		// keep serving; /health reports 503 until a reload succeeds
		logger.Warn.Printf("⚠️ initial payload load failed: %v", err)
	}

	scheduler := cron.New()
	if spec := cfg.CronSpec(); spec != "" {
		if _, err := scheduler.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := resultsHandler.Reload(ctx, "cron"); err != nil {
				logger.Error.Printf("❌ scheduled reload failed: %v", err)
			}
		}); err != nil {
			log.Fatalf("Invalid reload schedule %q: %v", spec, err)
		}
		scheduler.Start()
		logger.Always.Printf("⏰ payload reload scheduled: %s", spec)
	}

	r := handlers.NewRouter(resultsHandler, registry)
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("🌐 Server starting on http://localhost:%s\n", cfg.Port)
		logger.Always.Printf("🌐 Server starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Always.Printf("🛑 shutting down")
	<-scheduler.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error.Printf("❌ shutdown: %v", err)
	}
}
