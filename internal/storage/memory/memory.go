// internal/storage/memory/memory.go
package memory

import (
	"errors"
	"maps"
	"sync"

	"github.com/kickoff/matchcore/internal/config"
	v1 "github.com/kickoff/matchcore/internal/storage/memory/export/v1"
	"github.com/kickoff/matchcore/pkg/core"
)

// ErrNoSeason is returned when season data is recorded before StartSeason.
var ErrNoSeason = errors.New("no season started")

// Backend stores season data in memory and exports to JSON
type Backend struct {
	cfg config.MemoryConfig

	season    *core.SeasonInfo
	summary   *core.SeasonSummary
	teams     []core.Team
	fixtures  map[string]core.Fixture
	standings []core.StandingsSnapshot
	matches   map[string]*v1.MatchRecord // keyed by match ID

	lastExportPath string
	lastExportMeta core.UploadMetadata

	mu sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		fixtures: make(map[string]core.Fixture),
		matches:  make(map[string]*v1.MatchRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSeason begins recording a new season
func (b *Backend) StartSeason(info core.SeasonInfo, teams []core.Team) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.season = &info
	b.summary = nil
	b.teams = append([]core.Team(nil), teams...)

	// Reset all collections
	b.fixtures = make(map[string]core.Fixture)
	b.standings = nil
	b.matches = make(map[string]*v1.MatchRecord)

	return nil
}

// EndSeason finalizes and exports the season data
func (b *Backend) EndSeason(summary core.SeasonSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.season == nil {
		return ErrNoSeason
	}
	b.summary = &summary
	return b.exportJSON()
}

// SaveFixtures records the schedule, replacing fixtures with the same ID
func (b *Backend) SaveFixtures(fixtures []core.Fixture) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, f := range fixtures {
		b.fixtures[f.ID] = f
	}
	return nil
}

// RecordResult marks the fixture as played
func (b *Backend) RecordResult(r core.MatchResult) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, ok := b.fixtures[r.FixtureID]
	if !ok {
		f = core.Fixture{ID: r.FixtureID, Season: r.Season, Matchday: r.Matchday, HomeID: r.HomeID, AwayID: r.AwayID}
	}
	f.Played = true
	f.Result = &core.Result{HomeScore: r.HomeScore, AwayScore: r.AwayScore}
	b.fixtures[r.FixtureID] = f
	return nil
}

// SaveStandings appends a table snapshot
func (b *Backend) SaveStandings(s core.StandingsSnapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s.Rows = append([]core.StandingsRow(nil), s.Rows...)
	b.standings = append(b.standings, s)
	return nil
}

// StartMatch registers a new match
func (b *Backend) StartMatch(m core.MatchInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.matches[m.ID] = &v1.MatchRecord{Info: m}
	return nil
}

// EndMatch stores the final match info
func (b *Backend) EndMatch(m core.MatchInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.record(m.ID).Info = m
	return nil
}

// record returns the match record, creating one for events that arrive
// without a StartMatch.
func (b *Backend) record(matchID string) *v1.MatchRecord {
	r, ok := b.matches[matchID]
	if !ok {
		r = &v1.MatchRecord{Info: core.MatchInfo{ID: matchID}}
		b.matches[matchID] = r
	}
	return r
}

func (b *Backend) RecordRuleEvent(e core.RuleEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var matchID string
	switch ev := e.(type) {
	case core.OffsideEvent:
		matchID = ev.MatchID
	case core.FoulEvent:
		matchID = ev.MatchID
	case core.OutOfBoundsEvent:
		matchID = ev.MatchID
	}
	r := b.record(matchID)
	r.RuleEvents = append(r.RuleEvents, e)
	return nil
}

func (b *Backend) RecordGoal(g core.GoalEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := b.record(g.MatchID)
	r.Goals = append(r.Goals, g)
	return nil
}

func (b *Backend) RecordBallSample(s core.BallSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := b.record(s.MatchID)
	r.Samples = append(r.Samples, s)
	return nil
}

// GetExportedFilePath returns the path of the last exported file
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata returns metadata describing the last export
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportMeta
}

// Match returns a copy of the recorded match
func (b *Backend) Match(id string) (v1.MatchRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.matches[id]
	if !ok {
		return v1.MatchRecord{}, false
	}
	return *r, true
}

// Fixtures returns a copy of the recorded fixtures keyed by ID
func (b *Backend) Fixtures() map[string]core.Fixture {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.fixtures)
}

func (b *Backend) seasonData() *v1.SeasonData {
	return &v1.SeasonData{
		Info:      *b.season,
		Summary:   b.summary,
		Teams:     b.teams,
		Fixtures:  b.fixtures,
		Standings: b.standings,
		Matches:   b.matches,
	}
}
