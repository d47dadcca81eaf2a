// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/kickoff/matchcore/internal/cache"
	"github.com/kickoff/matchcore/internal/config"
	"github.com/kickoff/matchcore/internal/logging"
	"github.com/kickoff/matchcore/internal/storage/memory"
	"github.com/kickoff/matchcore/internal/storage/postgres"
	sqlitestorage "github.com/kickoff/matchcore/internal/storage/sqlite"
	"github.com/kickoff/matchcore/internal/storage/websocket"
)

// Dependencies are shared by the database-backed implementations.
type Dependencies struct {
	DB         config.DBConfig
	LogManager *logging.SlogManager
	SeasonIDs  *cache.IDCache
	LeagueName string
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.SeasonIDs == nil {
		deps.SeasonIDs = cache.NewIDCache()
	}

	switch cfg.Type {
	case "postgres":
		return postgres.New(postgres.Dependencies{
			DB:         deps.DB,
			SeasonIDs:  deps.SeasonIDs,
			LogManager: deps.LogManager,
			LeagueName: deps.LeagueName,
		}), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: cfg.SQLite.DumpInterval,
			DumpPath:     cfg.SQLite.DumpPath,
			LeagueName:   deps.LeagueName,
		}, deps.SeasonIDs, deps.LogManager)
	case "websocket":
		return websocket.New(websocket.Config{
			URL:    cfg.WebSocket.URL,
			Secret: cfg.WebSocket.Secret,
		}, deps.LogManager.Component("storage.websocket")), nil
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
