package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kickoff/matchcore/internal/config"
	"github.com/kickoff/matchcore/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func TestMigrate_SQLite(t *testing.T) {
	db, err := OpenSqlite(openTestDB(t))
	require.NoError(t, err)

	require.NoError(t, Migrate(db, "Test League"))

	for _, m := range model.DatabaseModelsSQLite {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	assert.False(t, db.Migrator().HasTable(&model.ShotForecast{}))

	var info model.LeagueInfo
	require.NoError(t, db.First(&info).Error)
	assert.Equal(t, "Test League", info.Name)
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := OpenSqlite(openTestDB(t))
	require.NoError(t, err)

	require.NoError(t, Migrate(db, "First"))
	require.NoError(t, Migrate(db, "Second"))

	var count int64
	require.NoError(t, db.Model(&model.LeagueInfo{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDumpToDisk(t *testing.T) {
	db, err := OpenSqlite(openTestDB(t))
	require.NoError(t, err)
	require.NoError(t, Migrate(db, "Dump"))

	target := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, os.WriteFile(target, []byte("stale"), 0o644))

	require.NoError(t, DumpToDisk(db, target))

	dumped, err := OpenSqlite(target)
	require.NoError(t, err)
	assert.True(t, dumped.Migrator().HasTable(&model.Season{}))
}

func TestDumpToDisk_NoPath(t *testing.T) {
	db, err := OpenSqlite(openTestDB(t))
	require.NoError(t, err)
	assert.ErrorIs(t, DumpToDisk(db, ""), ErrNoDumpPath)
}

func TestGetBackupDBPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.db", "b.db", "notes.txt", "db"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.db"), 0o755))

	paths, err := GetBackupDBPaths(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.db"), filepath.Join(dir, "b.db")}, paths)
}

func TestGetBackupDBPaths_MissingDir(t *testing.T) {
	_, err := GetBackupDBPaths(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestManager_FallsBackToSQLite(t *testing.T) {
	m := NewManager(config.DBConfig{
		Host:     "127.0.0.1",
		Port:     "1",
		Username: "nobody",
		Password: "nothing",
		Database: "none",
	}, zerolog.Nop())

	require.NoError(t, m.Connect())
	t.Cleanup(func() { _ = m.Close() })

	assert.True(t, m.IsValid)
	assert.True(t, m.ShouldSaveLocal)
	assert.Equal(t, "sqlite", m.DB.Dialector.Name())

	require.NoError(t, m.Setup("Fallback"))

	m.SqliteFilePath = filepath.Join(t.TempDir(), "fallback.db")
	require.NoError(t, m.DumpMemoryToDisk())
	_, err := os.Stat(m.SqliteFilePath)
	assert.NoError(t, err)
}
