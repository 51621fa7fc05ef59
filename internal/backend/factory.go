package backend

import (
	"context"
	"fmt"

	"expensetracker/internal/log"
	"expensetracker/internal/storage"
	"expensetracker/internal/storage/cloud"
	"expensetracker/internal/storage/local"
)

type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	localStore, err := f.createLocal(config)
	if err != nil {
		return nil, err
	}

	var cloudStore storage.Adapter
	if config.CloudDatabaseURL != "" {
		cloudStore, err = f.createCloud(ctx, config)
		if err != nil {
			localStore.Close()
			return nil, err
		}
	} else {
		f.logger.InfoContext(ctx, "Cloud backend not configured, running local only")
	}

	d := NewDispatcher(localStore, cloudStore)
	return &Result{Dispatcher: d, Local: localStore, Cleanup: d.Close}, nil
}

func (f *DefaultFactory) createLocal(config Config) (*local.Store, error) {
	var kv local.KV
	switch config.Local {
	case SQLiteLocal:
		sqliteKV, err := local.OpenSQLite(config.LocalDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local sqlite store: %w", err)
		}
		kv = sqliteKV
	case MemoryLocal:
		kv = local.NewMemoryKV()
	default:
		return nil, fmt.Errorf("unsupported local backend: %s", config.Local)
	}

	f.logger.Info("Initialized local backend",
		"type", config.Local.String(),
		"db_path", config.LocalDBPath)
	return local.NewStore(kv, local.WithLogger(f.logger)), nil
}

func (f *DefaultFactory) createCloud(ctx context.Context, config Config) (storage.Adapter, error) {
	if config.CloudMigrate {
		if err := cloud.RunMigrations(config.CloudDatabaseURL); err != nil {
			return nil, fmt.Errorf("migrate cloud schema: %w", err)
		}
	}
	store, err := cloud.Connect(ctx, config.CloudDatabaseURL, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloud backend: %w", err)
	}
	f.logger.Info("Initialized cloud backend", "migrated", config.CloudMigrate)
	return store, nil
}
