package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hornethelper/internal/app"
	"hornethelper/internal/config"
	"hornethelper/internal/logging"
	"hornethelper/internal/tracing"
)

// @title Hornet Helper API
// @version 1.0
// @description Study session matching, calendars and chat for campus students
// @host localhost:8080
// @BasePath /v1
func main() {
	cfg := config.Load()
	logger := logging.Setup(os.Stdout, cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitTracerProvider(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	if cfg.Recommender.IsEnabled() {
		logger.Info("Recommender configured", "url", cfg.Recommender.BaseURL, "timeout", cfg.Recommender.Timeout())
	} else {
		logger.Warn("RECOMMENDER_URL not set, assistant replies with the fallback message")
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Startup failed", "error", err)
		os.Exit(1)
	}

	var feeds sync.WaitGroup
	feeds.Add(1)
	go func() {
		defer feeds.Done()
		a.RunFeeds(ctx)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ListenAndServe failed", "error", err)
			stop()
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	feeds.Wait()
	a.Close(shutdownCtx)
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("Failed to flush traces", "error", err)
	}

	logger.Info("Server exited")
}
