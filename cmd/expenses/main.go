package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"expenses/internal/backend"
	"expenses/internal/cli"
	"expenses/internal/config"
	"expenses/internal/export"
	applog "expenses/internal/log"
	"expenses/internal/services"
	"expenses/internal/storage"
)

func main() {
	exportPath := flag.String("export", "", "write all expenses to this .xlsx file and exit")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.SetupLogger(""))
	logger := cli.SetupLogger(cfg.LogLevel)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	if err := run(ctx, cfg, logger, *exportPath); err != nil {
		logger.Error("Expense tracker failed", applog.FieldError, err)
		fmt.Fprintln(os.Stderr, "error:", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger, exportPath string) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}

	store, err := services.Open(ctx, res.Snapshotter, services.WithLogger(logger))
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close storage", applog.FieldError, err)
		}
	}()
	if err != nil {
		// Store is usable but empty; whatever is on disk stays as it was.
		if errors.Is(err, storage.ErrMalformedStorage) {
			fmt.Fprintf(os.Stderr, "warning: %s could not be read and was left untouched; starting with an empty list\n",
				res.Snapshotter.Location())
		} else {
			fmt.Fprintf(os.Stderr, "warning: could not load expenses (%v); starting with an empty list\n", err)
		}
	}

	if exportPath != "" {
		return exportExpenses(store, cfg.Currency, exportPath, logger)
	}

	prompt := cli.NewPrompter(os.Stdin, os.Stdout, cfg.DescriptionMaxLen)
	defer prompt.Close()

	app := cli.NewApp(store, prompt, cli.NewRenderer(os.Stdout, cfg.Currency), logger)
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Expense tracker stopped", applog.FieldOperation, applog.OpShutdown)
	return nil
}

func exportExpenses(store *services.ExpenseStore, currency, path string, logger *applog.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := export.WriteXLSX(f, store.ListAll(), store.TotalAmount(), currency); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}

	logger.WithComponent(applog.ComponentExport).Info("Expenses exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldPath, path,
		applog.FieldCount, store.Len())
	fmt.Printf("Exported %d expenses to %s\n", store.Len(), path)
	return nil
}
