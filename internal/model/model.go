package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&LeagueInfo{},
	&Season{},
	&Team{},
	&Fixture{},
	&Standing{},
	&Match{},
	&RuleEvent{},
	&Goal{},
	&BallSample{},
	&ShotForecast{},
	&Performance{},
}

// DatabaseModelsSQLite omits the line string forecasts, which need PostGIS.
var DatabaseModelsSQLite = []interface{}{
	&LeagueInfo{},
	&Season{},
	&Team{},
	&Fixture{},
	&Standing{},
	&Match{},
	&RuleEvent{},
	&Goal{},
	&BallSample{},
	&Performance{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// LeagueInfo describes the instance. One row is created on first setup.
type LeagueInfo struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:127"`
	Description string `json:"description" gorm:"size:255"`
	Website     string `json:"website" gorm:"size:255"`
}

func (*LeagueInfo) TableName() string {
	return "league_infos"
}

// Performance is a periodic sample of the writer backlog.
type Performance struct {
	Time                time.Time         `json:"time" gorm:"type:timestamptz;index:idx_performance_time"`
	SeasonID            uint              `json:"seasonId" gorm:"index:idx_performance_season_id"`
	Season              Season            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SeasonID;"`
	DispatcherBacklog   int               `json:"dispatcherBacklog"`
	WriteQueueLengths   WriteQueueLengths `json:"writeQueueLengths" gorm:"embedded;embeddedPrefix:writequeue_"`
	LastWriteDurationMs float32           `json:"lastWriteDurationMs"`
}

func (*Performance) TableName() string {
	return "performances"
}

// WriteQueueLengths is the model for the write queue lengths
type WriteQueueLengths struct {
	Fixtures    uint16 `json:"fixtures"`
	Standings   uint16 `json:"standings"`
	RuleEvents  uint16 `json:"ruleEvents"`
	Goals       uint16 `json:"goals"`
	BallSamples uint16 `json:"ballSamples"`
}

////////////////////////
// LEAGUE MODELS
////////////////////////

// Season is one double round-robin.
type Season struct {
	gorm.Model
	UUID                 string    `json:"uuid" gorm:"size:36;uniqueIndex"`
	League               string    `json:"league" gorm:"size:127"`
	Number               int       `json:"number"`
	TeamCount            int       `json:"teamCount"`
	Matchdays            int       `json:"matchdays"`
	StartTime            time.Time `json:"startTime" gorm:"type:timestamptz;index:idx_season_start"`
	Completed            bool      `json:"completed" gorm:"default:false"`
	ChampionID           string    `json:"championId" gorm:"size:64;default:NULL"`
	Matches              int       `json:"matches"`
	AverageGoalsPerMatch float64   `json:"averageGoalsPerMatch"`

	Teams     []Team
	Fixtures  []Fixture
	Standings []Standing
}

func (*Season) TableName() string {
	return "seasons"
}

// Team is a club as entered into a season.
// Uses composite primary key (SeasonID, TeamID).
type Team struct {
	SeasonID  uint   `json:"seasonId" gorm:"primaryKey;autoIncrement:false"`
	TeamID    string `json:"teamId" gorm:"primaryKey;size:64"`
	Season    Season `gorm:"foreignkey:SeasonID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Name      string `json:"name" gorm:"size:127"`
	ShortName string `json:"shortName" gorm:"size:16"`
	Overall   int    `json:"overall"`
	Attack    int    `json:"attack"`
	Midfield  int    `json:"midfield"`
	Defense   int    `json:"defense"`
}

func (*Team) TableName() string {
	return "teams"
}

// Fixture is a scheduled match. Result holds {"homeScore":h,"awayScore":a}
// once played.
type Fixture struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	SeasonID  uint           `json:"seasonId" gorm:"index:idx_fixture_season_matchday"`
	Season    Season         `gorm:"foreignkey:SeasonID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Matchday  int            `json:"matchday" gorm:"index:idx_fixture_season_matchday"`
	HomeID    string         `json:"homeId" gorm:"size:64"`
	AwayID    string         `json:"awayId" gorm:"size:64"`
	Played    bool           `json:"played" gorm:"default:false"`
	Result    datatypes.JSON `json:"result" gorm:"default:NULL"`
	PlayedAt  *time.Time     `json:"playedAt" gorm:"type:timestamptz"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (*Fixture) TableName() string {
	return "fixtures"
}

// Standing is one table row after a matchday.
type Standing struct {
	ID             uint   `json:"id" gorm:"primarykey"`
	SeasonID       uint   `json:"seasonId" gorm:"index:idx_standing_season_matchday"`
	Season         Season `gorm:"foreignkey:SeasonID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Matchday       int    `json:"matchday" gorm:"index:idx_standing_season_matchday"`
	TeamID         string `json:"teamId" gorm:"size:64"`
	Position       int    `json:"position"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
	Points         int    `json:"points"`
}

func (*Standing) TableName() string {
	return "standings"
}

////////////////////////
// MATCH MODELS
////////////////////////

// Match is a simulated match session.
type Match struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	SeasonID  uint       `json:"seasonId" gorm:"index:idx_match_season_id"`
	FixtureID string     `json:"fixtureId" gorm:"size:36;default:NULL"`
	HomeID    string     `json:"homeId" gorm:"size:64"`
	AwayID    string     `json:"awayId" gorm:"size:64"`
	HomeScore int        `json:"homeScore"`
	AwayScore int        `json:"awayScore"`
	StartTime time.Time  `json:"startTime" gorm:"type:timestamptz;index:idx_match_start"`
	EndTime   *time.Time `json:"endTime" gorm:"type:timestamptz"`
	Completed bool       `json:"completed" gorm:"default:false"`
}

func (*Match) TableName() string {
	return "matches"
}

// RuleEvent is an offside, foul or out-of-bounds call. Kind-specific fields
// live in Details.
type RuleEvent struct {
	ID       uint           `json:"id" gorm:"primarykey"`
	Time     time.Time      `json:"time" gorm:"type:timestamptz"`
	MatchID  string         `json:"matchId" gorm:"size:36;index:idx_rule_event_match_id"`
	Match    Match          `gorm:"foreignkey:MatchID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Kind     string         `json:"kind" gorm:"size:16"`
	Minute   int            `json:"minute"`
	Position geom.Point     `json:"position"`
	Details  datatypes.JSON `json:"details" gorm:"type:jsonb;default:'{}'"`
}

func (*RuleEvent) TableName() string {
	return "rule_events"
}

// Goal is a goal scored in a match.
type Goal struct {
	ID        uint       `json:"id" gorm:"primarykey"`
	Time      time.Time  `json:"time" gorm:"type:timestamptz"`
	MatchID   string     `json:"matchId" gorm:"size:36;index:idx_goal_match_id"`
	Match     Match      `gorm:"foreignkey:MatchID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Side      string     `json:"side" gorm:"size:8"`
	Scorer    string     `json:"scorer" gorm:"size:64;default:NULL"`
	Minute    int        `json:"minute"`
	Position  geom.Point `json:"position"`
	HomeScore int        `json:"homeScore"`
	AwayScore int        `json:"awayScore"`
}

func (*Goal) TableName() string {
	return "goals"
}

// BallSample is the ball state at a sampled tick.
// Uses composite primary key (MatchID, Tick).
type BallSample struct {
	MatchID  string     `json:"matchId" gorm:"primaryKey;size:36"`
	Tick     uint64     `json:"tick" gorm:"primaryKey;autoIncrement:false"`
	Clock    float64    `json:"clock"`
	Position geom.Point `json:"position"`
	Velocity geom.Point `json:"velocity"`
	Speed    float64    `json:"speed"`
	SpinRate float64    `json:"spinRate"`
	Grounded bool       `json:"grounded"`
}

func (*BallSample) TableName() string {
	return "ball_samples"
}

// ShotForecast is a predicted flight path stored as an XYZ line string.
type ShotForecast struct {
	ID            uint            `json:"id" gorm:"primarykey"`
	CreatedAt     time.Time       `json:"createdAt"`
	MatchID       string          `json:"matchId" gorm:"size:36;default:NULL"`
	Start         geom.Point      `json:"start"`
	Landing       geom.Point      `json:"landing"`
	TimeToLanding float64         `json:"timeToLanding"`
	OnTarget      bool            `json:"onTarget"`
	Path          geom.LineString `json:"path"`
}

func (*ShotForecast) TableName() string {
	return "shot_forecasts"
}
