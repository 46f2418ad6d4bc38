package backend

import (
	"context"
	"fmt"
	"log/slog"

	"donatrack/internal/store"
	"donatrack/internal/store/memory"
	"donatrack/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	opts   store.Options
}

// NewFactory creates a new backend factory. opts supplies the clock and id
// generator; its Seed field is overridden by each Config.
func NewFactory(logger *slog.Logger, opts store.Options) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
		opts:   opts,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts := f.opts
	opts.Seed = config.Seed

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config, opts)
	case MemoryBackend:
		return f.createMemoryBackend(opts)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config, opts store.Options) (*BackendResult, error) {
	s, err := sqlite.New(ctx, config.SQLiteName, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"database", config.SQLiteName,
		"seeded", opts.Seed)

	return &BackendResult{
		Store:   s,
		Cleanup: s.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(opts store.Options) (*BackendResult, error) {
	s := memory.New(opts)

	f.logger.Info("Initialized memory backend", "seeded", opts.Seed)

	return &BackendResult{
		Store:   s,
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}
