package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/kickoff/matchcore/internal/config"
	"github.com/kickoff/matchcore/internal/database"
)

func connectDB() (*database.Manager, error) {
	m := database.NewManager(config.GetDBConfig(), ZLogger)
	if err := m.Connect(); err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return m, nil
}

// setupDB migrates the schema and seeds the league info row.
func setupDB(args []string) error {
	fs := flag.NewFlagSet("setupdb", flag.ContinueOnError)
	name := fs.String("league", config.GetLeagueConfig().Name, "league name stored in league_infos")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	m, err := connectDB()
	if err != nil {
		return err
	}
	defer m.Close()

	if m.ShouldSaveLocal {
		Logger.Warn("Postgres unreachable, schema was created in a throwaway in-memory SQLite DB")
	}
	if err := m.Setup(*name); err != nil {
		return err
	}
	Logger.Info("DB setup complete.")
	return nil
}

// migrateBackups copies every SQLite dump in -dir into the configured
// Postgres database.
func migrateBackups(args []string) error {
	fs := flag.NewFlagSet("migratebackups", flag.ContinueOnError)
	dir := fs.String("dir", ".", "directory holding *.db dumps")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	m, err := connectDB()
	if err != nil {
		return err
	}
	defer m.Close()

	if m.ShouldSaveLocal {
		return errors.New("refusing to migrate backups into an in-memory database: postgres is unreachable")
	}
	if err := m.Setup(config.GetLeagueConfig().Name); err != nil {
		return err
	}

	migrated, err := database.MigrateBackups(m.DB, *dir, ZLogger)
	for _, path := range migrated {
		fmt.Println("migrated", path)
	}
	if err != nil {
		return err
	}
	Logger.Info("Finished migrating backups.", "files", len(migrated))
	return nil
}
