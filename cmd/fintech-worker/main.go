package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintech/internal/amqp"
	"fintech/internal/cli"
	"fintech/internal/config"
	applog "fintech/internal/log"
	"fintech/internal/sheets"
	gsheet "fintech/internal/sheets/google"
	mem "fintech/internal/sheets/memory"
	"fintech/internal/store"
	"fintech/internal/worker"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	logger.Info("Starting fintech-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		return err
	}

	exporter, err := newExporter(logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize exporter", applog.FieldError, err)
		return err
	}
	exportWorker := worker.NewExportWorker(exporter)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		return err
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close failed", applog.FieldError, err)
		}
		expenses, chats := exportWorker.Stats()
		logger.Info("Export totals", "expenses", expenses, "chats", chats)
	})

	if cfg.ExportOnStart {
		if err := exportSnapshot(ctx, logger, cfg, exportWorker); err != nil {
			// the event stream still works without the snapshot
			logger.Error("Startup snapshot export failed", applog.FieldError, err)
		}
	}

	if err := amqpClient.Consume(ctx, exportWorker.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		amqpClient.Close()
		return err
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
	return nil
}

// newExporter targets the configured spreadsheet, or keeps rows in memory
// when none is set.
func newExporter(logger *applog.Logger, cfg *config.Config) (sheets.Exporter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, exporting to memory")
		return mem.New(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		ExpensesSheet:   cfg.GoogleSheetName,
		ChatSheet:       cfg.GoogleChatSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, err
	}
	if err := client.EnsureHeaders(ctx); err != nil {
		return nil, err
	}
	logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}

func exportSnapshot(ctx context.Context, logger *applog.Logger, cfg *config.Config, w *worker.ExportWorker) error {
	backend, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	if backend.Cleanup != nil {
		defer backend.Cleanup()
	}

	expenses, err := store.Expenses(ctx, backend.Store)
	if err != nil {
		return err
	}
	n, err := w.ExportAll(ctx, expenses)
	logger.Info("Startup snapshot exported", "count", n)
	return err
}
