// Package v1 contains the v1 export format for season data.
// Rows inside events, tables and ball tracks are positional arrays to keep
// the files small; the index comments document each layout.
package v1

// FormatVersion is written into every export.
const FormatVersion = "1"

// Export is the root JSON structure for v1 format
type Export struct {
	FormatVersion        string     `json:"formatVersion"`
	League               string     `json:"league"`
	Season               int        `json:"season"`
	SeasonID             string     `json:"seasonId"`
	StartTime            string     `json:"startTime"`
	Completed            bool       `json:"completed"`
	ChampionID           string     `json:"championId,omitempty"`
	AverageGoalsPerMatch float64    `json:"averageGoalsPerMatch"`
	Teams                []Team     `json:"teams"`
	Fixtures             [][]any    `json:"fixtures"`
	Matchdays            []Matchday `json:"matchdays"`
	Table                [][]any    `json:"table"`
	Matches              []Match    `json:"matches"`
}

// Team is a club entered into the season.
type Team struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
	Overall   int    `json:"overall"`
}

// Matchday is the table after one round of fixtures.
type Matchday struct {
	Number int     `json:"number"`
	Table  [][]any `json:"table"`
}

// Match is a simulated match with its event log and sampled ball track.
type Match struct {
	ID        string      `json:"id"`
	FixtureID string      `json:"fixtureId,omitempty"`
	HomeID    string      `json:"homeId"`
	AwayID    string      `json:"awayId"`
	Score     [2]int      `json:"score"`
	StartTime string      `json:"startTime"`
	EndTime   string      `json:"endTime,omitempty"`
	Completed bool        `json:"completed"`
	Events    [][]any     `json:"events"`
	Ball      [][]float64 `json:"ball"`
}
