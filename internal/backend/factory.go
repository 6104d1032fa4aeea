package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rinkbook/internal/cache"
	"rinkbook/internal/core"
	"rinkbook/internal/storage"
	"rinkbook/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store storage.Store
		err   error
	)
	switch config.Type {
	case SQLiteBackend:
		store, err = f.createSQLiteStore(config)
	case MemoryBackend:
		store = memory.New()
		f.logger.Info("Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	result := &BackendResult{Store: store}
	closeCaches, err := f.attachCaches(ctx, config, result)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	result.Cleanup = func() error {
		return errors.Join(closeCaches(), store.Close())
	}
	return result, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (storage.Store, error) {
	if err := storage.RunMigrations(config.SQLiteDBPath); err != nil {
		return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
	}

	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return repo, nil
}

// attachCaches fills the summary caches on result and returns a func that
// releases them.
func (f *DefaultFactory) attachCaches(ctx context.Context, config Config, result *BackendResult) (func() error, error) {
	switch config.Cache {
	case RedisCache:
		client, err := cache.NewRedisClient(ctx, config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		result.SeasonCache = cache.NewRedisCache[core.SeasonSummary](client, config.CacheTTL)
		result.ExpenseCache = cache.NewRedisCache[core.ExpenseSummary](client, config.CacheTTL)
		f.logger.Info("Initialized Redis summary cache", "ttl", config.CacheTTL)
		return client.Close, nil

	default:
		seasons := cache.NewLRUCache[core.SeasonSummary](config.CacheSize, config.CacheTTL)
		expenses := cache.NewLRUCache[core.ExpenseSummary](config.CacheSize, config.CacheTTL)
		manager := cache.NewManager()
		manager.Register(seasons)
		manager.Register(expenses)
		manager.StartCleanup(config.CacheTTL)

		result.SeasonCache = seasons
		result.ExpenseCache = expenses
		f.logger.Info("Initialized in-memory summary cache", "size", config.CacheSize, "ttl", config.CacheTTL)
		return func() error {
			manager.Stop()
			return nil
		}, nil
	}
}
