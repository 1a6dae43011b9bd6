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

	"golang.org/x/sync/errgroup"

	"fintech/internal/assistant"
	"fintech/internal/cache"
	"fintech/internal/cli"
	apphttp "fintech/internal/http"
	applog "fintech/internal/log"
	"fintech/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	maxChatSessions = 1000
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open record store", applog.FieldError, err, "backend", cfg.DataBackend)
		return err
	}
	if backend.Cleanup != nil {
		defer func() {
			if err := backend.Cleanup(); err != nil {
				logger.Error("Failed to close record store", applog.FieldError, err)
			}
		}()
	}

	summary, err := cli.LoadSummary(cfg)
	if err != nil {
		logger.Error("Failed to load financial summary", applog.FieldError, err)
		return err
	}

	// Events are optional; without a broker writes and answers are not published.
	var (
		expenseEvents services.EventPublisher
		chatEvents    assistant.ChatPublisher
	)
	if amqpClient := cli.ConnectAMQP(logger, cfg); amqpClient != nil {
		defer amqpClient.Close()
		expenseEvents, chatEvents = amqpClient, amqpClient
	}

	remote := cli.RemoteAdvisor(cfg)
	if remote == nil {
		logger.Info("Remote advisor disabled - answering locally only")
	}
	asst := assistant.New(assistant.Options{
		Store:     backend.Store,
		Summary:   summary,
		Remote:    remote,
		Timeout:   cfg.AdvisorTimeout,
		Delay:     cfg.ResponseDelay,
		Publisher: chatEvents,
	})
	sessions := assistant.NewSessions(asst, maxChatSessions, cfg.SessionTTL)

	caches := cache.NewManager()
	caches.Register("chat_sessions", sessions.Cleaner())
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Store:              backend.Store,
		Expenses:           services.NewExpenseService(backend.Store, expenseEvents),
		Assistant:          asst,
		Sessions:           sessions,
		Ping:               backend.Ping,
		JWTSecret:          cfg.JWTSecret,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set - authenticated advice endpoint will reject every request")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintech server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
