// pkg/core/league.go
package core

import "time"

// Team is a club taking part in a league season.
type Team struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Overall   int    `json:"overall"`
	Attack    int    `json:"attack"`
	Midfield  int    `json:"midfield"`
	Defense   int    `json:"defense"`
}

// Result is the final score of a fixture.
type Result struct {
	HomeScore int `json:"homeScore"`
	AwayScore int `json:"awayScore"`
}

// Fixture is a scheduled match between two teams on a matchday.
type Fixture struct {
	ID       string  `json:"id"`
	Season   int     `json:"season"`
	Matchday int     `json:"matchday"` // 1-based
	HomeID   string  `json:"homeId"`
	AwayID   string  `json:"awayId"`
	Played   bool    `json:"played"`
	Result   *Result `json:"result,omitempty"`
}

// MatchResult is a registered result, kept in registration order.
type MatchResult struct {
	FixtureID string    `json:"fixtureId"`
	Season    int       `json:"season"`
	Matchday  int       `json:"matchday"`
	HomeID    string    `json:"homeId"`
	AwayID    string    `json:"awayId"`
	HomeScore int       `json:"homeScore"`
	AwayScore int       `json:"awayScore"`
	Time      time.Time `json:"time"`
}

// StandingsRow is one team's aggregated league record.
type StandingsRow struct {
	TeamID         string `json:"teamId"`
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

// PointsPerGame returns points divided by matches played.
func (r StandingsRow) PointsPerGame() float64 {
	if r.Played == 0 {
		return 0
	}
	return float64(r.Points) / float64(r.Played)
}

// WinPercentage returns the share of matches won, 0-100.
func (r StandingsRow) WinPercentage() float64 {
	if r.Played == 0 {
		return 0
	}
	return float64(r.Won) / float64(r.Played) * 100
}

// SeasonInfo describes a season when it starts.
type SeasonInfo struct {
	ID        string    `json:"id"`
	League    string    `json:"league"`
	Number    int       `json:"number"`
	Teams     int       `json:"teams"`
	Matchdays int       `json:"matchdays"`
	StartTime time.Time `json:"startTime"`
}

// SeasonSummary is produced when the last fixture of a season is played.
type SeasonSummary struct {
	SeasonID             string         `json:"seasonId"`
	Number               int            `json:"number"`
	ChampionID           string         `json:"championId"`
	Matches              int            `json:"matches"`
	AverageGoalsPerMatch float64        `json:"averageGoalsPerMatch"`
	Table                []StandingsRow `json:"table"`
}

// StandingsSnapshot is the table after a given matchday.
type StandingsSnapshot struct {
	SeasonID string         `json:"seasonId"`
	Season   int            `json:"season"`
	Matchday int            `json:"matchday"`
	Rows     []StandingsRow `json:"rows"`
}
