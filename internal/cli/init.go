// Package cli holds the start-up steps shared by the binaries and the
// fintechctl command tree.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintech/internal/amqp"
	"fintech/internal/assistant"
	"fintech/internal/backend"
	"fintech/internal/config"
	"fintech/internal/core"
	applog "fintech/internal/log"
	"fintech/internal/remote"
)

// SetupLogger installs a text logger at the given level as the slog default.
func SetupLogger(level, component string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: component,
		Format:    "text",
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development; a missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig exits the process when the configuration is invalid.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend opens and seeds the configured record store.
func OpenBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger.WithComponent(applog.ComponentStorage).Logger).CreateBackend(ctx, bcfg)
}

// LoadSummary reads SUMMARY_FILE, or returns the built-in reference data.
func LoadSummary(cfg *config.Config) (core.FinancialSummary, error) {
	if cfg.SummaryFile == "" {
		return core.DefaultSummary(), nil
	}
	s, err := core.LoadSummary(cfg.SummaryFile)
	if err != nil {
		return core.FinancialSummary{}, fmt.Errorf("load summary %s: %w", cfg.SummaryFile, err)
	}
	return s, nil
}

// RemoteAdvisor returns the advice service client, or nil when ADVISOR_URL
// is unset.
func RemoteAdvisor(cfg *config.Config) assistant.Advisor {
	if cfg.AdvisorURL == "" {
		return nil
	}
	return remote.NewClient(remote.Config{
		BaseURL:     cfg.AdvisorURL,
		Token:       cfg.AdvisorToken,
		AllowPublic: cfg.AdvisorAllowPublic,
		HTTPClient:  &http.Client{Timeout: cfg.AdvisorTimeout},
	})
}

// ConnectAMQP dials the broker when AMQP_URL is set. A failed dial is logged
// and yields nil so the caller can run without events.
func ConnectAMQP(logger *applog.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker, continuing without events", applog.FieldError, err)
		return nil
	}
	logger.Info("AMQP client connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM, after
// cleanup has run within timeout. done is closed once cleanup finished.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the shutdown sequence has finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
