package backend

import (
	"context"
	"fmt"

	applog "expenses/internal/log"
	"expenses/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case JSONBackend:
		return f.createJSONBackend(ctx, config)
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createJSONBackend(ctx context.Context, config Config) (*BackendResult, error) {
	snap := storage.NewJSONFile(config.ExpensesFile)

	f.logger.InfoContext(ctx, "Initialized JSON file backend",
		applog.NewFields().WithStorage(config.Type.String(), config.ExpensesFile).ToSlice()...)

	return &BackendResult{
		Snapshotter: snap,
		Cleanup:     snap.Close,
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	snap, err := storage.NewSQLiteSnapshotter(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		applog.NewFields().WithStorage(config.Type.String(), config.SQLiteDBPath).ToSlice()...)

	return &BackendResult{
		Snapshotter: snap,
		Cleanup:     snap.Close,
	}, nil
}
