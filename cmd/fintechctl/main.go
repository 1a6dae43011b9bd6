package main

import (
	"context"
	"os"

	"fintech/internal/cli"
	applog "fintech/internal/log"
	"fintech/internal/store"
)

func main() {
	cli.LoadEnvFile()

	// records go to stderr so command output stays pipeable
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: applog.ComponentCLI,
		Output:    os.Stderr,
	})
	applog.SetDefault(logger)

	cfg := cli.LoadAndValidateConfig(logger)
	summary, err := cli.LoadSummary(cfg)
	if err != nil {
		logger.Error("Failed to load financial summary", applog.FieldError, err)
		os.Exit(1)
	}

	app := &cli.App{
		Config:  cfg,
		Logger:  logger,
		Summary: summary,
		Remote:  cli.RemoteAdvisor(cfg),
		OpenStore: func(ctx context.Context) (store.Store, func() error, error) {
			backend, err := cli.OpenBackend(ctx, logger, cfg)
			if err != nil {
				return nil, nil, err
			}
			return backend.Store, backend.Cleanup, nil
		},
	}

	if err := cli.NewRootCommand(app).Execute(); err != nil {
		os.Exit(1)
	}
}
