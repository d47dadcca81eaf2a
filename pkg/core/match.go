// pkg/core/match.go
package core

import "time"

// MatchInfo describes a played match session.
type MatchInfo struct {
	ID        string    `json:"id"`
	FixtureID string    `json:"fixtureId,omitempty"`
	HomeID    string    `json:"homeId"`
	AwayID    string    `json:"awayId"`
	HomeScore int       `json:"homeScore"`
	AwayScore int       `json:"awayScore"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime,omitzero"`
	Completed bool      `json:"completed"`
}

// UploadMetadata carries details about an exported season file.
type UploadMetadata struct {
	League       string
	Season       int
	ChampionID   string
	Matches      int
	ExportedFile string
}
