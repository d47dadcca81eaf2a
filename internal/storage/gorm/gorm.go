// Package gormstorage implements the storage.Backend interface on top of GORM
// with internal queues and a background DB writer goroutine. The postgres
// and sqlite backends embed it and only add connection handling.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickoff/matchcore/internal/cache"
	"github.com/kickoff/matchcore/internal/database"
	"github.com/kickoff/matchcore/internal/logging"
	"github.com/kickoff/matchcore/internal/model"
	"github.com/kickoff/matchcore/internal/model/convert"
	"github.com/kickoff/matchcore/internal/queue"
	"github.com/kickoff/matchcore/internal/trajectory"
	"github.com/kickoff/matchcore/pkg/core"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultWriteInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	LogManager    *logging.SlogManager
	SeasonIDs     *cache.IDCache // season UUID -> database ID
	LeagueName    string
	WriteInterval time.Duration
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	Fixtures    *queue.Queue[model.Fixture]
	Standings   *queue.Queue[model.Standing]
	RuleEvents  *queue.Queue[model.RuleEvent]
	Goals       *queue.Queue[model.Goal]
	BallSamples *queue.Queue[model.BallSample]
	Forecasts   *queue.Queue[model.ShotForecast]
}

func newQueues() *queues {
	return &queues{
		Fixtures:    queue.New[model.Fixture](),
		Standings:   queue.New[model.Standing](),
		RuleEvents:  queue.New[model.RuleEvent](),
		Goals:       queue.New[model.Goal](),
		BallSamples: queue.New[model.BallSample](),
		Forecasts:   queue.New[model.ShotForecast](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps     Dependencies
	log      *slog.Logger
	queues   *queues
	seasonID atomic.Uint64

	writeMu       sync.Mutex
	lastWriteTime atomic.Int64 // nanoseconds

	stopChan  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.SeasonIDs == nil {
		deps.SeasonIDs = cache.NewIDCache()
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.WriteInterval <= 0 {
		deps.WriteInterval = defaultWriteInterval
	}
	return &Backend{
		deps: deps,
		log:  deps.LogManager.Component("storage.gorm"),
	}
}

// Init creates internal queues, runs schema migration, and starts the DB writer goroutine.
// Without a DB the backend only queues, which is what the unit tests rely on.
func (b *Backend) Init() error {
	b.queues = newQueues()
	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})

	if b.deps.DB == nil {
		close(b.done)
		return nil
	}

	if err := database.Migrate(b.deps.DB, b.deps.LeagueName); err != nil {
		close(b.done)
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.log.Info("Database setup complete", "dialect", b.deps.DB.Dialector.Name())

	go b.writeLoop()
	return nil
}

// Close stops the DB writer goroutine and flushes whatever is still queued.
func (b *Backend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		if b.stopChan == nil {
			return
		}
		close(b.stopChan)
		<-b.done
		err = b.Flush()
	})
	return err
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// SeasonID returns the database ID of the current season.
func (b *Backend) SeasonID() uint {
	return uint(b.seasonID.Load())
}

// SetSeasonID sets the current season for subsequent writes (used by CLI tools).
func (b *Backend) SetSeasonID(id uint) {
	b.seasonID.Store(uint64(id))
}

// StartSeason inserts the season and its teams synchronously so that the
// database ID is known before any fixture is queued.
func (b *Backend) StartSeason(info core.SeasonInfo, teams []core.Team) error {
	if b.deps.DB == nil {
		return nil
	}

	gormSeason := convert.CoreToSeason(info)
	if err := b.deps.DB.Create(&gormSeason).Error; err != nil {
		return fmt.Errorf("failed to insert new season: %w", err)
	}

	gormTeams := make([]model.Team, 0, len(teams))
	for _, t := range teams {
		gormTeams = append(gormTeams, convert.CoreToTeam(gormSeason.ID, t))
	}
	if len(gormTeams) > 0 {
		if err := b.deps.DB.Create(&gormTeams).Error; err != nil {
			return fmt.Errorf("failed to insert teams: %w", err)
		}
	}

	b.seasonID.Store(uint64(gormSeason.ID))
	b.deps.SeasonIDs.Set(info.ID, gormSeason.ID)
	b.log.Info("Season stored", "season", info.Number, "id", gormSeason.ID, "teams", len(gormTeams))
	return nil
}

// EndSeason flushes pending writes and marks the season completed.
func (b *Backend) EndSeason(summary core.SeasonSummary) error {
	if b.deps.DB == nil {
		return nil
	}
	if err := b.Flush(); err != nil {
		b.log.Error("Flush before season end failed", "error", err)
	}

	err := b.deps.DB.Model(&model.Season{}).
		Where("uuid = ?", summary.SeasonID).
		Updates(map[string]any{
			"completed":               true,
			"champion_id":             summary.ChampionID,
			"matches":                 summary.Matches,
			"average_goals_per_match": summary.AverageGoalsPerMatch,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update season: %w", err)
	}
	return nil
}

// SaveFixtures converts and queues the season's fixtures.
func (b *Backend) SaveFixtures(fixtures []core.Fixture) error {
	seasonID := b.SeasonID()
	for _, f := range fixtures {
		b.queues.Fixtures.Push(convert.CoreToFixture(seasonID, f))
	}
	return nil
}

// RecordResult queues the played version of the fixture. The fixture writer
// upserts, so the result replaces the scheduled row.
func (b *Backend) RecordResult(r core.MatchResult) error {
	at := r.Time
	gormObj := convert.CoreToFixture(b.SeasonID(), core.Fixture{
		ID:       r.FixtureID,
		Season:   r.Season,
		Matchday: r.Matchday,
		HomeID:   r.HomeID,
		AwayID:   r.AwayID,
		Played:   true,
		Result:   &core.Result{HomeScore: r.HomeScore, AwayScore: r.AwayScore},
	})
	if !at.IsZero() {
		gormObj.PlayedAt = &at
	}
	b.queues.Fixtures.Push(gormObj)
	return nil
}

// SaveStandings converts and queues every row of the snapshot.
func (b *Backend) SaveStandings(s core.StandingsSnapshot) error {
	seasonID, ok := b.deps.SeasonIDs.Get(s.SeasonID)
	if !ok {
		seasonID = b.SeasonID()
	}
	for _, row := range s.Rows {
		b.queues.Standings.Push(convert.CoreToStanding(seasonID, s.Matchday, row))
	}
	return nil
}

// StartMatch inserts the match row synchronously; its events reference it.
func (b *Backend) StartMatch(m core.MatchInfo) error {
	if b.deps.DB == nil {
		return nil
	}
	gormMatch := convert.CoreToMatch(b.SeasonID(), m)
	if err := b.deps.DB.Create(&gormMatch).Error; err != nil {
		return fmt.Errorf("failed to insert new match: %w", err)
	}
	return nil
}

// EndMatch flushes pending events and stores the final score.
func (b *Backend) EndMatch(m core.MatchInfo) error {
	if b.deps.DB == nil {
		return nil
	}
	if err := b.Flush(); err != nil {
		b.log.Error("Flush before match end failed", "match", m.ID, "error", err)
	}

	gormMatch := convert.CoreToMatch(b.SeasonID(), m)
	err := b.deps.DB.Model(&model.Match{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"home_score": gormMatch.HomeScore,
			"away_score": gormMatch.AwayScore,
			"end_time":   gormMatch.EndTime,
			"completed":  gormMatch.Completed,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	return nil
}

// RecordRuleEvent converts and queues a rule event.
func (b *Backend) RecordRuleEvent(e core.RuleEvent) error {
	b.queues.RuleEvents.Push(convert.CoreToRuleEvent(e, time.Now()))
	return nil
}

// RecordGoal converts and queues a goal.
func (b *Backend) RecordGoal(g core.GoalEvent) error {
	b.queues.Goals.Push(convert.CoreToGoal(g, time.Now()))
	return nil
}

// RecordBallSample converts and queues a ball sample.
func (b *Backend) RecordBallSample(s core.BallSample) error {
	b.queues.BallSamples.Push(convert.CoreToBallSample(s))
	return nil
}

// RecordShotForecast converts and queues a predicted shot path.
func (b *Backend) RecordShotForecast(matchID string, f trajectory.Forecast, path []mgl64.Vec3) error {
	b.queues.Forecasts.Push(convert.CoreToShotForecast(matchID, f, path))
	return nil
}

// RecordPerformance stores the current backlog synchronously. Samples taken
// before a season exists are skipped.
func (b *Backend) RecordPerformance(dispatcherBacklog int) error {
	if b.deps.DB == nil || b.SeasonID() == 0 {
		return nil
	}
	perf := model.Performance{
		Time:              time.Now(),
		SeasonID:          b.SeasonID(),
		DispatcherBacklog: dispatcherBacklog,
		WriteQueueLengths: model.WriteQueueLengths{
			Fixtures:    uint16(b.queues.Fixtures.Len()),
			Standings:   uint16(b.queues.Standings.Len()),
			RuleEvents:  uint16(b.queues.RuleEvents.Len()),
			Goals:       uint16(b.queues.Goals.Len()),
			BallSamples: uint16(b.queues.BallSamples.Len()),
		},
		LastWriteDurationMs: float32(b.GetLastDBWriteDuration().Milliseconds()),
	}
	if err := b.deps.DB.Create(&perf).Error; err != nil {
		return fmt.Errorf("failed to insert performance: %w", err)
	}
	return nil
}

// QueueLengths reports the number of rows waiting per queue.
func (b *Backend) QueueLengths() map[string]int {
	if b.queues == nil {
		return nil
	}
	return map[string]int{
		"fixtures":     b.queues.Fixtures.Len(),
		"standings":    b.queues.Standings.Len(),
		"rule_events":  b.queues.RuleEvents.Len(),
		"goals":        b.queues.Goals.Len(),
		"ball_samples": b.queues.BallSamples.Len(),
		"forecasts":    b.queues.Forecasts.Len(),
	}
}

// GetLastDBWriteDuration returns how long the last write cycle took.
func (b *Backend) GetLastDBWriteDuration() time.Duration {
	return time.Duration(b.lastWriteTime.Load())
}

// Standings reads back the table stored for a season after the given matchday.
func (b *Backend) Standings(seasonUUID string, matchday int) ([]core.StandingsRow, error) {
	if b.deps.DB == nil {
		return nil, nil
	}
	var rows []model.Standing
	err := b.deps.DB.
		Joins("JOIN seasons ON seasons.id = standings.season_id").
		Where("seasons.uuid = ? AND standings.matchday = ?", seasonUUID, matchday).
		Order("standings.position").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query standings: %w", err)
	}
	out := make([]core.StandingsRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, convert.StandingToCore(r))
	}
	return out, nil
}

// Goals reads back the goals stored for a match in scoring order.
func (b *Backend) Goals(matchID string) ([]core.GoalEvent, error) {
	if b.deps.DB == nil {
		return nil, nil
	}
	var rows []model.Goal
	if err := b.deps.DB.Where("match_id = ?", matchID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	out := make([]core.GoalEvent, 0, len(rows))
	for _, g := range rows {
		out = append(out, convert.GoalToCore(g))
	}
	return out, nil
}

// Flush drains every queue into the database once.
func (b *Backend) Flush() error {
	if b.deps.DB == nil || b.queues == nil {
		return nil
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	start := time.Now()
	db := b.deps.DB
	err := errors.Join(
		writeQueue(db, b.queues.Fixtures, "fixtures", b.log, latestFixtures, true),
		writeQueue(db, b.queues.Standings, "standings", b.log, nil, false),
		writeQueue(db, b.queues.RuleEvents, "rule events", b.log, nil, false),
		writeQueue(db, b.queues.Goals, "goals", b.log, nil, false),
		writeQueue(db, b.queues.BallSamples, "ball samples", b.log, nil, false),
		writeQueue(db, b.queues.Forecasts, "shot forecasts", b.log, nil, false),
	)
	b.lastWriteTime.Store(int64(time.Since(start)))
	return err
}

// latestFixtures keeps the last queued version of each fixture, so a
// result pushed right after the schedule wins within one batch.
func latestFixtures(items []model.Fixture) []model.Fixture {
	index := make(map[string]int, len(items))
	out := items[:0]
	for _, f := range items {
		if i, ok := index[f.ID]; ok {
			out[i] = f
			continue
		}
		index[f.ID] = len(out)
		out = append(out, f)
	}
	return out
}

// writeQueue writes all items from a queue to the database in a transaction.
// On failure the items go back on the queue for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger, prepare func([]T) []T, upsert bool) error {
	if q.Empty() {
		return nil
	}

	items := q.GetAndEmpty()
	if prepare != nil {
		items = prepare(items)
	}

	tx := db.Begin()
	create := tx
	if upsert {
		create = tx.Clauses(clause.OnConflict{UpdateAll: true})
	}
	if err := create.Create(&items).Error; err != nil {
		log.Error("Error creating batch", "table", name, "count", len(items), "error", err)
		tx.Rollback()
		q.Push(items...)
		return fmt.Errorf("write %s: %w", name, err)
	}

	if err := tx.Commit().Error; err != nil {
		q.Push(items...)
		return fmt.Errorf("commit %s: %w", name, err)
	}
	log.Debug("Wrote batch", "table", name, "count", len(items))
	return nil
}

// writeLoop periodically drains queues into the DB until Close.
func (b *Backend) writeLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.WriteInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.log.Error("Write cycle failed", "error", err)
			}
		}
	}
}
