// Package postgres implements the storage.Backend interface on PostgreSQL
// with PostGIS. Batching and conversion live in the embedded GORM backend;
// this package owns the connection.
package postgres

import (
	"fmt"

	"github.com/kickoff/matchcore/internal/cache"
	"github.com/kickoff/matchcore/internal/config"
	"github.com/kickoff/matchcore/internal/database"
	"github.com/kickoff/matchcore/internal/logging"
	gormstorage "github.com/kickoff/matchcore/internal/storage/gorm"
)

const maxOpenConns = 10

// Dependencies holds all dependencies for the postgres storage backend.
type Dependencies struct {
	DB         config.DBConfig
	SeasonIDs  *cache.IDCache
	LogManager *logging.SlogManager
	LeagueName string
}

// Backend connects on Init and then behaves like the GORM backend.
type Backend struct {
	*gormstorage.Backend
	deps Dependencies
}

// New creates a new postgres storage backend. No connection is made until Init.
func New(deps Dependencies) *Backend {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Backend{deps: deps}
}

// Init connects to postgres, validates the connection, then runs the GORM
// backend's migration and writer.
func (b *Backend) Init() error {
	db, err := database.OpenPostgres(b.deps.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:         db,
		LogManager: b.deps.LogManager,
		SeasonIDs:  b.deps.SeasonIDs,
		LeagueName: b.deps.LeagueName,
	})
	b.deps.LogManager.Component("storage.postgres").Info("Connected to database",
		"host", b.deps.DB.Host, "database", b.deps.DB.Database)
	return b.Backend.Init()
}

// Close flushes and stops the writer, then closes the connection pool.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	err := b.Backend.Close()
	if sqlDB, dbErr := b.DB().DB(); dbErr == nil {
		if closeErr := sqlDB.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
