package convert

import (
	"encoding/json"

	"github.com/kickoff/matchcore/internal/geo"
	"github.com/kickoff/matchcore/internal/model"
	"github.com/kickoff/matchcore/pkg/core"
)

func parseSide(s string) core.Side {
	switch s {
	case "home":
		return core.SideHome
	case "away":
		return core.SideAway
	default:
		return 0
	}
}

// SeasonToCore converts a GORM Season to a core.SeasonInfo.
// GORM Season.UUID maps to core SeasonInfo.ID.
func SeasonToCore(s model.Season) core.SeasonInfo {
	return core.SeasonInfo{
		ID:        s.UUID,
		League:    s.League,
		Number:    s.Number,
		Teams:     s.TeamCount,
		Matchdays: s.Matchdays,
		StartTime: s.StartTime,
	}
}

func TeamToCore(t model.Team) core.Team {
	return core.Team{
		ID:        t.TeamID,
		Name:      t.Name,
		ShortName: t.ShortName,
		Overall:   t.Overall,
		Attack:    t.Attack,
		Midfield:  t.Midfield,
		Defense:   t.Defense,
	}
}

// FixtureToCore converts a GORM Fixture. season is the season number,
// which the row only references by database ID.
func FixtureToCore(f model.Fixture, season int) core.Fixture {
	out := core.Fixture{
		ID:       f.ID,
		Season:   season,
		Matchday: f.Matchday,
		HomeID:   f.HomeID,
		AwayID:   f.AwayID,
		Played:   f.Played,
	}
	if len(f.Result) > 0 {
		var r core.Result
		if err := json.Unmarshal(f.Result, &r); err == nil {
			out.Result = &r
		}
	}
	return out
}

func StandingToCore(s model.Standing) core.StandingsRow {
	return core.StandingsRow{
		TeamID:         s.TeamID,
		Position:       s.Position,
		Played:         s.Played,
		Won:            s.Won,
		Drawn:          s.Drawn,
		Lost:           s.Lost,
		GoalsFor:       s.GoalsFor,
		GoalsAgainst:   s.GoalsAgainst,
		GoalDifference: s.GoalDifference,
		Points:         s.Points,
	}
}

// MatchToCore converts a GORM Match. A NULL end time becomes the zero time.
func MatchToCore(m model.Match) core.MatchInfo {
	out := core.MatchInfo{
		ID:        m.ID,
		FixtureID: m.FixtureID,
		HomeID:    m.HomeID,
		AwayID:    m.AwayID,
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
		StartTime: m.StartTime,
		Completed: m.Completed,
	}
	if m.EndTime != nil {
		out.EndTime = *m.EndTime
	}
	return out
}

func GoalToCore(g model.Goal) core.GoalEvent {
	pos, _ := geo.Vec3FromPoint(g.Position)
	return core.GoalEvent{
		MatchID:   g.MatchID,
		Side:      parseSide(g.Side),
		Scorer:    g.Scorer,
		Position:  pos,
		Minute:    g.Minute,
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
	}
}

// BallSampleToCore rebuilds the sampled ball state. Spin direction is not
// stored, so only position, velocity and contact survive.
func BallSampleToCore(s model.BallSample) core.BallSample {
	pos, _ := geo.Vec3FromPoint(s.Position)
	vel, _ := geo.Vec3FromPoint(s.Velocity)
	return core.BallSample{
		MatchID: s.MatchID,
		Tick:    s.Tick,
		Clock:   s.Clock,
		Ball: core.BallState{
			Position: pos,
			Velocity: vel,
			Grounded: s.Grounded,
		},
	}
}
