package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/ak/sba/internal/domain/repositories"
	"github.com/ak/sba/internal/infrastructure/config"
	"github.com/ak/sba/internal/infrastructure/database"
	"github.com/ak/sba/internal/pkg/logger"
	"go.uber.org/zap"
)

// Provider holds the two document databases: settings (inventory, brew
// inputs, presets, timer, draft log) and logs (one document per entry)
type Provider struct {
	Settings repositories.DocumentStore
	Logs     repositories.DocumentStore
	Driver   string

	health func(ctx context.Context) error
	close  func(ctx context.Context) error
}

// NewProvider creates a MongoDB-backed provider
func NewProvider(db *database.MongoDB, storage config.StorageConfig) *Provider {
	return &Provider{
		Settings: NewDocumentRepository(db, storage.SettingsDB),
		Logs:     NewDocumentRepository(db, storage.LogsDB),
		Driver:   config.DriverMongoDB,
		health:   db.Health,
		close:    db.Close,
	}
}

// NewSQLiteProvider creates a provider backed by a single SQLite file
func NewSQLiteProvider(db *database.SQLite, storage config.StorageConfig) *Provider {
	return &Provider{
		Settings: NewSQLiteDocumentRepository(db, storage.SettingsDB),
		Logs:     NewSQLiteDocumentRepository(db, storage.LogsDB),
		Driver:   config.DriverSQLite,
		health:   db.Health,
		close:    db.Close,
	}
}

// NewRedisProvider creates a provider backed by Redis hashes
func NewRedisProvider(rdb *database.Redis, storage config.StorageConfig) *Provider {
	return &Provider{
		Settings: NewRedisDocumentRepository(rdb, storage.SettingsDB),
		Logs:     NewRedisDocumentRepository(rdb, storage.LogsDB),
		Driver:   config.DriverRedis,
		health:   rdb.Health,
		close:    rdb.Close,
	}
}

// NewMemoryProvider creates a process-local provider
func NewMemoryProvider(storage config.StorageConfig) *Provider {
	return &Provider{
		Settings: NewMemoryDocumentRepository(storage.SettingsDB),
		Logs:     NewMemoryDocumentRepository(storage.LogsDB),
		Driver:   config.DriverMemory,
	}
}

// Open connects the configured storage driver
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Provider, error) {
	log.Info("Opening storage", zap.String("driver", cfg.Storage.Driver))

	p, err := openDriver(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{cfg.Storage.SettingsDB, cfg.Storage.LogsDB} {
		log.WithStore(name).Info("Document store ready", zap.String("driver", p.Driver))
	}
	return p, nil
}

func openDriver(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Provider, error) {
	storage := cfg.Storage

	switch storage.Driver {
	case config.DriverMongoDB:
		db, err := database.NewMongoDB(cfg.MongoDB, log)
		if err != nil {
			return nil, err
		}
		if err := db.Connect(ctx, storage.SettingsDB, storage.LogsDB); err != nil {
			return nil, err
		}
		return NewProvider(db, storage), nil

	case config.DriverSQLite:
		db, err := database.NewSQLite(cfg.SQLite, log)
		if err != nil {
			return nil, err
		}
		return NewSQLiteProvider(db, storage), nil

	case config.DriverRedis:
		rdb := database.NewRedis(cfg.Redis, log)
		if err := rdb.Connect(ctx); err != nil {
			_ = rdb.Close(ctx)
			return nil, err
		}
		return NewRedisProvider(rdb, storage), nil

	case config.DriverMemory:
		return NewMemoryProvider(storage), nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", storage.Driver)
}

// Health checks the backing connection
func (p *Provider) Health(ctx context.Context) error {
	if p.health == nil {
		return nil
	}
	return p.health(ctx)
}

// Close releases the backing connection
func (p *Provider) Close(ctx context.Context) error {
	if p.close == nil {
		return nil
	}
	if err := p.close(ctx); err != nil {
		return errors.Join(fmt.Errorf("close %s storage", p.Driver), err)
	}
	return nil
}
