package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/StreamRealm_Go/internal/config"
	"github.com/osse101/StreamRealm_Go/internal/database"
	"github.com/osse101/StreamRealm_Go/internal/database/memory"
	"github.com/osse101/StreamRealm_Go/internal/database/postgres"
	"github.com/osse101/StreamRealm_Go/internal/repository"
)

// Storage holds the repositories the services are built on.
// Pool is nil for the in-memory backend.
type Storage struct {
	Store      repository.Store
	GameEvents repository.GameEvents
	EventLog   repository.EventLog
	Pool       *pgxpool.Pool
}

// InitializeStorage opens the configured backend. For postgres it connects,
// applies pending migrations and returns repositories over the pool.
func InitializeStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		slog.Info(LogMsgStorageInitialized, "backend", config.StorageMemory)
		return &Storage{
			Store:      memory.NewStore(),
			GameEvents: memory.NewGameEvents(),
			EventLog:   memory.NewEventLog(),
		}, nil

	case config.StoragePostgres:
		pool, err := database.NewPool(ctx, cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdle, cfg.DBMaxConnLifetime)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedConnectDB, err)
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedMigrate, err)
		}
		slog.Info(LogMsgStorageInitialized, "backend", config.StoragePostgres, "host", cfg.DBHost, "db", cfg.DBName)
		return &Storage{
			Store:      postgres.NewStore(pool),
			GameEvents: postgres.NewGameEventRepository(pool),
			EventLog:   postgres.NewEventLogRepository(pool),
			Pool:       pool,
		}, nil
	}
	return nil, fmt.Errorf(ErrMsgUnknownStorage, cfg.Storage)
}

// Close releases the database pool if there is one
func (s *Storage) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}
