package league

import (
	"fmt"
	"sort"

	"github.com/kickoff/matchcore/pkg/core"
)

// Table holds the standings of a season. Rows stay ordered by points, then
// goal difference, then goals scored, all descending. Ties beyond that keep
// their previous relative order.
type Table struct {
	rows []core.StandingsRow
}

// NewTable creates a table with one empty row per team, in the given order.
func NewTable(teams []core.Team) *Table {
	rows := make([]core.StandingsRow, len(teams))
	for i, t := range teams {
		rows[i] = core.StandingsRow{TeamID: t.ID, Position: i + 1}
	}
	return &Table{rows: rows}
}

func (t *Table) find(id string) int {
	for i := range t.rows {
		if t.rows[i].TeamID == id {
			return i
		}
	}
	return -1
}

// RegisterResult applies a played fixture to both teams' rows and re-sorts
// the table.
func (t *Table) RegisterResult(f core.Fixture, homeScore, awayScore int) error {
	if homeScore < 0 || awayScore < 0 {
		return fmt.Errorf("%w: %d-%d", ErrNegativeScore, homeScore, awayScore)
	}
	if f.HomeID == f.AwayID {
		return fmt.Errorf("%w: %q cannot play itself", ErrUnknownTeam, f.HomeID)
	}
	hi, ai := t.find(f.HomeID), t.find(f.AwayID)
	if hi < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownTeam, f.HomeID)
	}
	if ai < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownTeam, f.AwayID)
	}

	record(&t.rows[hi], homeScore, awayScore)
	record(&t.rows[ai], awayScore, homeScore)
	t.sort()
	t.verify()
	return nil
}

func record(r *core.StandingsRow, scored, conceded int) {
	r.Played++
	r.GoalsFor += scored
	r.GoalsAgainst += conceded
	r.GoalDifference = r.GoalsFor - r.GoalsAgainst
	switch {
	case scored > conceded:
		r.Won++
		r.Points += 3
	case scored == conceded:
		r.Drawn++
		r.Points++
	default:
		r.Lost++
	}
}

func (t *Table) sort() {
	sort.SliceStable(t.rows, func(i, j int) bool {
		a, b := t.rows[i], t.rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		return a.GoalsFor > b.GoalsFor
	})
	for i := range t.rows {
		t.rows[i].Position = i + 1
	}
}

// verify panics when a row disagrees with its own counters.
func (t *Table) verify() {
	for _, r := range t.rows {
		switch {
		case r.GoalDifference != r.GoalsFor-r.GoalsAgainst:
			panic(fmt.Sprintf("league: %s goal difference %d, want %d", r.TeamID, r.GoalDifference, r.GoalsFor-r.GoalsAgainst))
		case r.Points != 3*r.Won+r.Drawn:
			panic(fmt.Sprintf("league: %s has %d points from %dW %dD", r.TeamID, r.Points, r.Won, r.Drawn))
		case r.Played != r.Won+r.Drawn+r.Lost:
			panic(fmt.Sprintf("league: %s played %d but has %dW %dD %dL", r.TeamID, r.Played, r.Won, r.Drawn, r.Lost))
		}
	}
}

// Rows returns a copy of the standings in table order.
func (t *Table) Rows() []core.StandingsRow {
	out := make([]core.StandingsRow, len(t.rows))
	copy(out, t.rows)
	return out
}

// Row returns the standings row of one team.
func (t *Table) Row(teamID string) (core.StandingsRow, bool) {
	if i := t.find(teamID); i >= 0 {
		return t.rows[i], true
	}
	return core.StandingsRow{}, false
}

// Leader returns the top row.
func (t *Table) Leader() core.StandingsRow {
	if len(t.rows) == 0 {
		return core.StandingsRow{}
	}
	return t.rows[0]
}
