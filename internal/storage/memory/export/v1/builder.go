package v1

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/kickoff/matchcore/pkg/core"
)

// SeasonData contains all the data needed to build an export
type SeasonData struct {
	Info      core.SeasonInfo
	Summary   *core.SeasonSummary
	Teams     []core.Team
	Fixtures  map[string]core.Fixture // keyed by fixture ID
	Standings []core.StandingsSnapshot
	Matches   map[string]*MatchRecord // keyed by match ID
}

// MatchRecord groups a match with all its time-series data
type MatchRecord struct {
	Info       core.MatchInfo
	RuleEvents []core.RuleEvent
	Goals      []core.GoalEvent
	Samples    []core.BallSample
}

// Build creates an Export from the season data
func Build(data *SeasonData) Export {
	export := Export{
		FormatVersion: FormatVersion,
		League:        data.Info.League,
		Season:        data.Info.Number,
		SeasonID:      data.Info.ID,
		StartTime:     formatTime(data.Info.StartTime),
		Teams:         make([]Team, 0, len(data.Teams)),
		Fixtures:      make([][]any, 0, len(data.Fixtures)),
		Matchdays:     make([]Matchday, 0, len(data.Standings)),
		Table:         make([][]any, 0),
		Matches:       make([]Match, 0, len(data.Matches)),
	}

	if data.Summary != nil {
		export.Completed = true
		export.ChampionID = data.Summary.ChampionID
		export.AverageGoalsPerMatch = round(data.Summary.AverageGoalsPerMatch, 2)
		export.Table = tableRows(data.Summary.Table)
	} else if n := len(data.Standings); n > 0 {
		export.Table = tableRows(data.Standings[n-1].Rows)
	}

	for _, t := range data.Teams {
		export.Teams = append(export.Teams, Team{ID: t.ID, Name: t.Name, ShortName: t.ShortName, Overall: t.Overall})
	}

	fixtures := make([]core.Fixture, 0, len(data.Fixtures))
	for _, f := range data.Fixtures {
		fixtures = append(fixtures, f)
	}
	slices.SortFunc(fixtures, func(a, b core.Fixture) int {
		return cmp.Or(cmp.Compare(a.Matchday, b.Matchday), cmp.Compare(a.ID, b.ID))
	})
	for _, f := range fixtures {
		export.Fixtures = append(export.Fixtures, fixtureRow(f))
	}

	for _, s := range data.Standings {
		export.Matchdays = append(export.Matchdays, Matchday{Number: s.Matchday, Table: tableRows(s.Rows)})
	}

	records := make([]*MatchRecord, 0, len(data.Matches))
	for _, r := range data.Matches {
		records = append(records, r)
	}
	slices.SortFunc(records, func(a, b *MatchRecord) int {
		return cmp.Or(a.Info.StartTime.Compare(b.Info.StartTime), cmp.Compare(a.Info.ID, b.Info.ID))
	})
	for _, r := range records {
		export.Matches = append(export.Matches, buildMatch(r))
	}

	return export
}

func fixtureRow(f core.Fixture) []any {
	row := []any{
		f.ID,       // [0] fixture id
		f.Matchday, // [1] matchday
		f.HomeID,   // [2] home team
		f.AwayID,   // [3] away team
		nil,        // [4] home score
		nil,        // [5] away score
	}
	if f.Played && f.Result != nil {
		row[4] = f.Result.HomeScore
		row[5] = f.Result.AwayScore
	}
	return row
}

func tableRows(rows []core.StandingsRow) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{
			r.Position,       // [0] position
			r.TeamID,         // [1] team
			r.Played,         // [2] played
			r.Won,            // [3] won
			r.Drawn,          // [4] drawn
			r.Lost,           // [5] lost
			r.GoalsFor,       // [6] goals for
			r.GoalsAgainst,   // [7] goals against
			r.GoalDifference, // [8] goal difference
			r.Points,         // [9] points
		})
	}
	return out
}

func buildMatch(r *MatchRecord) Match {
	m := Match{
		ID:        r.Info.ID,
		FixtureID: r.Info.FixtureID,
		HomeID:    r.Info.HomeID,
		AwayID:    r.Info.AwayID,
		Score:     [2]int{r.Info.HomeScore, r.Info.AwayScore},
		StartTime: formatTime(r.Info.StartTime),
		EndTime:   formatTime(r.Info.EndTime),
		Completed: r.Info.Completed,
		Events:    make([][]any, 0, len(r.RuleEvents)+len(r.Goals)),
		Ball:      make([][]float64, 0, len(r.Samples)),
	}

	for _, e := range r.RuleEvents {
		m.Events = append(m.Events, ruleEventRow(e))
	}
	for _, g := range r.Goals {
		m.Events = append(m.Events, []any{
			g.Minute,                         // [0] minute
			"goal",                           // [1] kind
			g.Side.String(),                  // [2] side
			g.Scorer,                         // [3] scorer
			vec(g.Position),                  // [4] position
			[2]int{g.HomeScore, g.AwayScore}, // [5] score after the goal
		})
	}
	slices.SortStableFunc(m.Events, func(a, b []any) int {
		return cmp.Compare(a[0].(int), b[0].(int))
	})

	for _, s := range r.Samples {
		p := s.Ball.Position
		m.Ball = append(m.Ball, []float64{
			float64(s.Tick),                 // [0] tick
			round(s.Clock, 3),               // [1] match seconds
			round(p.X(), 3),                 // [2] x
			round(p.Y(), 3),                 // [3] y (height)
			round(p.Z(), 3),                 // [4] z
			round(s.Ball.Velocity.Len(), 2), // [5] speed
		})
	}
	return m
}

func ruleEventRow(e core.RuleEvent) []any {
	switch ev := e.(type) {
	case core.OffsideEvent:
		return []any{ev.Minute, ev.Kind().String(), ev.Side.String(), ev.Player, vec(ev.Position)}
	case core.FoulEvent:
		return []any{ev.Minute, ev.Kind().String(), ev.Aggressor, ev.Victim, vec(ev.Position)}
	case core.OutOfBoundsEvent:
		return []any{ev.Minute, ev.Kind().String(), ev.Restart.String(), vec(ev.Position), vec(ev.RestartPosition)}
	default:
		return []any{e.EventMinute(), e.Kind().String()}
	}
}

func vec(v [3]float64) []float64 {
	return []float64{round(v[0], 2), round(v[1], 2), round(v[2], 2)}
}

func round(f float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(f*scale) / scale
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
