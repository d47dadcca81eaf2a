package database

import (
	"fmt"
	"os"

	"github.com/kickoff/matchcore/internal/model"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const migrateBatchSize = 1000

// MigrateBackups copies every SQLite dump in dir into dst and renames each
// migrated file with a .migrated suffix. It stops at the first failure and
// returns the paths migrated so far.
func MigrateBackups(dst *gorm.DB, dir string, log zerolog.Logger) ([]string, error) {
	paths, err := GetBackupDBPaths(dir)
	if err != nil {
		return nil, fmt.Errorf("error getting backup database paths: %w", err)
	}

	var migrated []string
	for _, path := range paths {
		src, err := OpenSqlite(path)
		if err != nil {
			return migrated, fmt.Errorf("error opening %s: %w", path, err)
		}

		n, err := MigrateBackup(src, dst, log)
		if sqlDB, dbErr := src.DB(); dbErr == nil {
			if closeErr := sqlDB.Close(); closeErr != nil {
				log.Error().Err(closeErr).Str("path", path).Msg("Error closing sqlite connection")
			}
		}
		if err != nil {
			return migrated, fmt.Errorf("error migrating %s: %w", path, err)
		}

		if err := os.Rename(path, path+".migrated"); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Error renaming sqlite file")
		}
		log.Info().Str("path", path).Int("seasons", n).Msg("Migrated backup")
		migrated = append(migrated, path)
	}
	return migrated, nil
}

// MigrateBackup copies every season in src, with its teams, fixtures,
// standings, matches and match events, into dst. Season row IDs are
// reassigned; seasons whose UUID already exists in dst are skipped.
// It returns the number of seasons copied.
func MigrateBackup(src, dst *gorm.DB, log zerolog.Logger) (int, error) {
	var seasons []model.Season
	if err := src.Find(&seasons).Error; err != nil {
		return 0, fmt.Errorf("error reading seasons: %w", err)
	}

	copied := 0
	for _, s := range seasons {
		var existing int64
		if err := dst.Model(&model.Season{}).Where("uuid = ?", s.UUID).Count(&existing).Error; err != nil {
			return copied, fmt.Errorf("error checking season %s: %w", s.UUID, err)
		}
		if existing > 0 {
			log.Info().Str("season", s.UUID).Msg("Season already present, skipping")
			continue
		}

		err := dst.Transaction(func(tx *gorm.DB) error {
			return copySeason(src, tx, s)
		})
		if err != nil {
			return copied, fmt.Errorf("error copying season %s: %w", s.UUID, err)
		}
		copied++
	}
	return copied, nil
}

func copySeason(src, dst *gorm.DB, s model.Season) error {
	oldID := s.ID
	s.ID = 0
	if err := dst.Omit(clause.Associations).Create(&s).Error; err != nil {
		return fmt.Errorf("seasons: %w", err)
	}
	newID := s.ID

	bySeason := func(db *gorm.DB) *gorm.DB { return db.Where("season_id = ?", oldID) }

	if err := copyRows(src, dst, bySeason, func(t *model.Team) { t.SeasonID = newID }); err != nil {
		return fmt.Errorf("teams: %w", err)
	}
	if err := copyRows(src, dst, bySeason, func(f *model.Fixture) { f.SeasonID = newID }); err != nil {
		return fmt.Errorf("fixtures: %w", err)
	}
	if err := copyRows(src, dst, bySeason, func(st *model.Standing) {
		st.ID = 0
		st.SeasonID = newID
	}); err != nil {
		return fmt.Errorf("standings: %w", err)
	}
	if err := copyRows(src, dst, bySeason, func(p *model.Performance) { p.SeasonID = newID }); err != nil {
		return fmt.Errorf("performances: %w", err)
	}
	if err := copyRows(src, dst, bySeason, func(m *model.Match) { m.SeasonID = newID }); err != nil {
		return fmt.Errorf("matches: %w", err)
	}

	var matchIDs []string
	if err := src.Model(&model.Match{}).Where("season_id = ?", oldID).Pluck("id", &matchIDs).Error; err != nil {
		return fmt.Errorf("match ids: %w", err)
	}
	if len(matchIDs) == 0 {
		return nil
	}
	byMatch := func(db *gorm.DB) *gorm.DB { return db.Where("match_id IN ?", matchIDs) }

	if err := copyRows(src, dst, byMatch, func(e *model.RuleEvent) { e.ID = 0 }); err != nil {
		return fmt.Errorf("rule events: %w", err)
	}
	if err := copyRows(src, dst, byMatch, func(g *model.Goal) { g.ID = 0 }); err != nil {
		return fmt.Errorf("goals: %w", err)
	}
	if err := copyRows(src, dst, byMatch, func(*model.BallSample) {}); err != nil {
		return fmt.Errorf("ball samples: %w", err)
	}
	return nil
}

// copyRows reads the rows of M selected by scope from src, applies mutate
// to each and inserts them into dst, ignoring rows that already exist.
func copyRows[M any](src, dst *gorm.DB, scope func(*gorm.DB) *gorm.DB, mutate func(*M)) error {
	var rows []M
	if err := src.Scopes(scope).Find(&rows).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		mutate(&rows[i])
	}
	return dst.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, migrateBatchSize).Error
}
