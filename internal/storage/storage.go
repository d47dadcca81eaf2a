// internal/storage/storage.go
package storage

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickoff/matchcore/internal/trajectory"
	"github.com/kickoff/matchcore/pkg/core"
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Season management
	StartSeason(info core.SeasonInfo, teams []core.Team) error
	EndSeason(summary core.SeasonSummary) error

	// League records
	SaveFixtures(fixtures []core.Fixture) error
	RecordResult(r core.MatchResult) error
	SaveStandings(s core.StandingsSnapshot) error

	// Match management
	StartMatch(m core.MatchInfo) error
	EndMatch(m core.MatchInfo) error

	// Event recording
	RecordRuleEvent(e core.RuleEvent) error
	RecordGoal(g core.GoalEvent) error
	RecordBallSample(s core.BallSample) error
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the league web frontend.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}

// ForecastRecorder is an optional interface for backends that can store
// predicted shot paths.
type ForecastRecorder interface {
	RecordShotForecast(matchID string, f trajectory.Forecast, path []mgl64.Vec3) error
}

// QueueReporter is an optional interface for backends that buffer writes.
type QueueReporter interface {
	QueueLengths() map[string]int
}

// PerformanceRecorder is an optional interface for backends that persist
// periodic backlog samples.
type PerformanceRecorder interface {
	RecordPerformance(dispatcherBacklog int) error
}
