// Package league schedules a double round robin season and keeps its
// standings.
package league

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/kickoff/matchcore/pkg/core"
)

const (
	// HomeAdvantage is added to the home side's rating in simulated matches.
	HomeAdvantage = 3
	// DrawProbability is the chance of a simulated draw.
	DrawProbability = 0.25
)

// Season owns the fixtures, results and table of one league season. It is
// not safe for concurrent use.
type Season struct {
	id     string
	league string
	number int
	start  time.Time

	teams    []core.Team
	byID     map[string]core.Team
	fixtures []core.Fixture
	table    *Table
	results  []core.MatchResult

	rng Rand
	now func() time.Time
}

// NewSeason generates the fixtures of a new season. When rng is not nil the
// fixtures of each matchday are shuffled and simulated results are
// available.
func NewSeason(league string, number int, teams []core.Team, rng Rand) (*Season, error) {
	fixtures, err := GenerateFixtures(teams, number)
	if err != nil {
		return nil, err
	}
	if rng != nil {
		ShuffleWithinMatchdays(fixtures, rng)
	}

	byID := make(map[string]core.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}

	s := &Season{
		id:       uuid.NewString(),
		league:   league,
		number:   number,
		teams:    slices.Clone(teams),
		byID:     byID,
		fixtures: fixtures,
		table:    NewTable(teams),
		rng:      rng,
		now:      time.Now,
	}
	s.start = s.now().UTC()
	return s, nil
}

// ID returns the season's unique id.
func (s *Season) ID() string { return s.id }

// Number returns the season number.
func (s *Season) Number() int { return s.number }

// Matchdays returns the number of matchdays in the season.
func (s *Season) Matchdays() int { return 2 * (len(s.teams) - 1) }

// Info describes the season.
func (s *Season) Info() core.SeasonInfo {
	return core.SeasonInfo{
		ID:        s.id,
		League:    s.league,
		Number:    s.number,
		Teams:     len(s.teams),
		Matchdays: s.Matchdays(),
		StartTime: s.start,
	}
}

// Teams returns the teams taking part.
func (s *Season) Teams() []core.Team { return slices.Clone(s.teams) }

// Team looks up a team by id.
func (s *Season) Team(id string) (core.Team, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// Fixtures returns a copy of all fixtures in schedule order.
func (s *Season) Fixtures() []core.Fixture { return slices.Clone(s.fixtures) }

// Table returns the current standings.
func (s *Season) Table() []core.StandingsRow { return s.table.Rows() }

// Row returns a team's standings row.
func (s *Season) Row(teamID string) (core.StandingsRow, bool) { return s.table.Row(teamID) }

// Results returns the registered results in registration order.
func (s *Season) Results() []core.MatchResult { return slices.Clone(s.results) }

// CurrentMatchday returns the earliest matchday that still has an unplayed
// fixture. ok is false once the season is complete.
func (s *Season) CurrentMatchday() (matchday int, ok bool) {
	for _, f := range s.fixtures {
		if !f.Played && (!ok || f.Matchday < matchday) {
			matchday, ok = f.Matchday, true
		}
	}
	return matchday, ok
}

// UpcomingFixtures returns the unplayed fixtures of a matchday.
func (s *Season) UpcomingFixtures(matchday int) []core.Fixture {
	var out []core.Fixture
	for _, f := range s.fixtures {
		if f.Matchday == matchday && !f.Played {
			out = append(out, f)
		}
	}
	return out
}

// MatchdayResults returns the results registered for a matchday.
func (s *Season) MatchdayResults(matchday int) []core.MatchResult {
	var out []core.MatchResult
	for _, r := range s.results {
		if r.Matchday == matchday {
			out = append(out, r)
		}
	}
	return out
}

// RegisterMatchResult records the result of the fixture in which homeID
// hosts awayID and updates the table.
func (s *Season) RegisterMatchResult(homeID, awayID string, homeScore, awayScore int) (core.MatchResult, error) {
	idx := slices.IndexFunc(s.fixtures, func(f core.Fixture) bool {
		return f.HomeID == homeID && f.AwayID == awayID
	})
	if idx < 0 {
		if _, ok := s.byID[homeID]; !ok {
			return core.MatchResult{}, fmt.Errorf("%w: %q", ErrUnknownTeam, homeID)
		}
		if _, ok := s.byID[awayID]; !ok {
			return core.MatchResult{}, fmt.Errorf("%w: %q", ErrUnknownTeam, awayID)
		}
		return core.MatchResult{}, fmt.Errorf("%w: %s v %s", ErrFixtureNotFound, homeID, awayID)
	}
	return s.registerFixture(idx, homeScore, awayScore)
}

// RegisterFixtureResult records the result of a fixture by id.
func (s *Season) RegisterFixtureResult(fixtureID string, homeScore, awayScore int) (core.MatchResult, error) {
	idx := slices.IndexFunc(s.fixtures, func(f core.Fixture) bool { return f.ID == fixtureID })
	if idx < 0 {
		return core.MatchResult{}, fmt.Errorf("%w: id %q", ErrFixtureNotFound, fixtureID)
	}
	return s.registerFixture(idx, homeScore, awayScore)
}

func (s *Season) registerFixture(idx, homeScore, awayScore int) (core.MatchResult, error) {
	f := &s.fixtures[idx]
	if f.Played {
		return core.MatchResult{}, fmt.Errorf("%w: %s v %s", ErrAlreadyPlayed, f.HomeID, f.AwayID)
	}
	if err := s.table.RegisterResult(*f, homeScore, awayScore); err != nil {
		return core.MatchResult{}, err
	}
	f.Played = true
	f.Result = &core.Result{HomeScore: homeScore, AwayScore: awayScore}

	r := core.MatchResult{
		FixtureID: f.ID,
		Season:    s.number,
		Matchday:  f.Matchday,
		HomeID:    f.HomeID,
		AwayID:    f.AwayID,
		HomeScore: homeScore,
		AwayScore: awayScore,
		Time:      s.now().UTC(),
	}
	s.results = append(s.results, r)
	return r, nil
}

// SetRand sets the random source used for simulated results. Fixture order
// is left as generated.
func (s *Season) SetRand(rng Rand) { s.rng = rng }

// SimulateMatch draws a plausible score from the team ratings. The home
// side gets HomeAdvantage rating points, a draw has a fixed probability
// and the away side wins otherwise.
func (s *Season) SimulateMatch(home, away core.Team) (core.Result, error) {
	if s.rng == nil {
		return core.Result{}, ErrNoRand
	}
	return SimulateScore(home, away, s.rng), nil
}

// SimulateScore is SimulateMatch with an explicit random source.
func SimulateScore(home, away core.Team, rng Rand) core.Result {
	h := float64(home.Overall + HomeAdvantage)
	a := float64(away.Overall)
	homeWin := 0.5
	if h+a > 0 {
		homeWin = h / (h + a)
	}

	var r core.Result
	switch roll := rng.Float64(); {
	case roll < homeWin:
		r.HomeScore = 1 + rng.IntN(3)
		r.AwayScore = rng.IntN(r.HomeScore)
	case roll < homeWin+DrawProbability:
		g := rng.IntN(3)
		r.HomeScore, r.AwayScore = g, g
	default:
		r.AwayScore = 1 + rng.IntN(3)
		r.HomeScore = rng.IntN(r.AwayScore)
	}
	return r
}

// SimulateMatchday simulates and registers every unplayed fixture of a
// matchday.
func (s *Season) SimulateMatchday(matchday int) ([]core.MatchResult, error) {
	if s.rng == nil {
		return nil, ErrNoRand
	}
	var out []core.MatchResult
	for _, f := range s.UpcomingFixtures(matchday) {
		score := SimulateScore(s.byID[f.HomeID], s.byID[f.AwayID], s.rng)
		r, err := s.RegisterFixtureResult(f.ID, score.HomeScore, score.AwayScore)
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}

// IsComplete reports whether every fixture has a result.
func (s *Season) IsComplete() bool {
	n := len(s.teams)
	return len(s.results) >= n*(n-1)
}

// AverageGoalsPerMatch returns the mean number of goals over registered
// results.
func (s *Season) AverageGoalsPerMatch() float64 {
	if len(s.results) == 0 {
		return 0
	}
	total := 0
	for _, r := range s.results {
		total += r.HomeScore + r.AwayScore
	}
	return float64(total) / float64(len(s.results))
}

// Snapshot returns the table labelled with the season and a matchday.
func (s *Season) Snapshot(matchday int) core.StandingsSnapshot {
	return core.StandingsSnapshot{
		SeasonID: s.id,
		Season:   s.number,
		Matchday: matchday,
		Rows:     s.table.Rows(),
	}
}

// Summary returns the final table and champion of a completed season.
func (s *Season) Summary() (core.SeasonSummary, error) {
	if !s.IsComplete() {
		return core.SeasonSummary{}, ErrSeasonOpen
	}
	return core.SeasonSummary{
		SeasonID:             s.id,
		Number:               s.number,
		ChampionID:           s.table.Leader().TeamID,
		Matches:              len(s.results),
		AverageGoalsPerMatch: s.AverageGoalsPerMatch(),
		Table:                s.table.Rows(),
	}, nil
}

// Next starts the following season with the same teams and random source.
func (s *Season) Next() (*Season, error) {
	return NewSeason(s.league, s.number+1, s.teams, s.rng)
}
