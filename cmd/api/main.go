// Package main is the entry point for the API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/hr-service-desk/internal/app"
	"github.com/capitalize-ai/hr-service-desk/internal/config"
	"github.com/capitalize-ai/hr-service-desk/internal/handler"
	"github.com/capitalize-ai/hr-service-desk/pkg/logger"
	"github.com/capitalize-ai/hr-service-desk/pkg/tracing"
)

var version = "dev"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server", zap.String("version", version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "hr-service-desk", version, cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(context.Background(), tp)
		}
	}

	desk, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start service desk", zap.Error(err))
		os.Exit(1)
	}
	defer desk.Close()

	go desk.FrontDesk.Threads().Run(ctx, cfg.ThreadSweepInterval)

	router := handler.NewRouter(handler.RouterConfig{
		Health:             handler.NewHealthHandler(desk.Store, desk.NATS),
		Chat:               handler.NewChatHandler(desk.FrontDesk, desk.Dispatcher, log),
		Cases:              handler.NewCaseHandler(desk.Store, desk.Dispatcher, journal(desk), log),
		Logger:             log,
		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRequests:  cfg.RateLimitRequests,
		RateLimitWindow:    cfg.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	if cfg.IsDevelopment() {
		return logger.NewDevelopment()
	}
	return logger.New(cfg.LogLevel)
}

// journal returns the case journal, or nil when NATS is disabled.
func journal(desk *app.App) handler.CaseJournal {
	if desk.Journal == nil {
		return nil
	}
	return desk.Journal
}
