// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickoff/matchcore/internal/geo"
	"github.com/kickoff/matchcore/internal/model"
	"github.com/kickoff/matchcore/internal/trajectory"
	"github.com/kickoff/matchcore/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// toJSON marshals v for a jsonb column, falling back to an empty object.
func toJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}

// CoreToSeason converts a core.SeasonInfo to a GORM model.Season.
// The core ID is stored as the UUID; the numeric primary key is assigned by the database.
func CoreToSeason(info core.SeasonInfo) model.Season {
	return model.Season{
		UUID:      info.ID,
		League:    info.League,
		Number:    info.Number,
		TeamCount: info.Teams,
		Matchdays: info.Matchdays,
		StartTime: info.StartTime,
	}
}

// CoreToTeam converts a core.Team entered into the season with database ID seasonID.
func CoreToTeam(seasonID uint, t core.Team) model.Team {
	return model.Team{
		SeasonID:  seasonID,
		TeamID:    t.ID,
		Name:      t.Name,
		ShortName: t.ShortName,
		Overall:   t.Overall,
		Attack:    t.Attack,
		Midfield:  t.Midfield,
		Defense:   t.Defense,
	}
}

// CoreToFixture converts a core.Fixture to a GORM model.Fixture.
func CoreToFixture(seasonID uint, f core.Fixture) model.Fixture {
	out := model.Fixture{
		ID:       f.ID,
		SeasonID: seasonID,
		Matchday: f.Matchday,
		HomeID:   f.HomeID,
		AwayID:   f.AwayID,
		Played:   f.Played,
	}
	if f.Result != nil {
		out.Result = toJSON(f.Result)
	}
	return out
}

// CoreToStanding converts one table row after the given matchday.
func CoreToStanding(seasonID uint, matchday int, r core.StandingsRow) model.Standing {
	return model.Standing{
		SeasonID:       seasonID,
		Matchday:       matchday,
		TeamID:         r.TeamID,
		Position:       r.Position,
		Played:         r.Played,
		Won:            r.Won,
		Drawn:          r.Drawn,
		Lost:           r.Lost,
		GoalsFor:       r.GoalsFor,
		GoalsAgainst:   r.GoalsAgainst,
		GoalDifference: r.GoalDifference,
		Points:         r.Points,
	}
}

// CoreToMatch converts a core.MatchInfo to a GORM model.Match.
// A zero EndTime is stored as NULL.
func CoreToMatch(seasonID uint, m core.MatchInfo) model.Match {
	out := model.Match{
		ID:        m.ID,
		SeasonID:  seasonID,
		FixtureID: m.FixtureID,
		HomeID:    m.HomeID,
		AwayID:    m.AwayID,
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
		StartTime: m.StartTime,
		Completed: m.Completed,
	}
	if !m.EndTime.IsZero() {
		end := m.EndTime
		out.EndTime = &end
	}
	return out
}

// CoreToRuleEvent converts any rule event variant. The variant itself,
// minus the shared columns, goes into Details.
func CoreToRuleEvent(e core.RuleEvent, at time.Time) model.RuleEvent {
	out := model.RuleEvent{
		Time:   at,
		Kind:   e.Kind().String(),
		Minute: e.EventMinute(),
	}

	var details map[string]any
	switch ev := e.(type) {
	case core.OffsideEvent:
		out.MatchID = ev.MatchID
		out.Position = geo.PointFromVec3(ev.Position)
		details = map[string]any{"player": ev.Player, "side": ev.Side.String()}
	case core.FoulEvent:
		out.MatchID = ev.MatchID
		out.Position = geo.PointFromVec3(ev.Position)
		details = map[string]any{"aggressor": ev.Aggressor, "victim": ev.Victim}
	case core.OutOfBoundsEvent:
		out.MatchID = ev.MatchID
		out.Position = geo.PointFromVec3(ev.Position)
		details = map[string]any{
			"restart":         ev.Restart.String(),
			"restartPosition": []float64{ev.RestartPosition.X(), ev.RestartPosition.Y(), ev.RestartPosition.Z()},
		}
	}
	out.Details = toJSON(details)
	return out
}

// CoreToGoal converts a core.GoalEvent to a GORM model.Goal.
func CoreToGoal(g core.GoalEvent, at time.Time) model.Goal {
	return model.Goal{
		Time:      at,
		MatchID:   g.MatchID,
		Side:      g.Side.String(),
		Scorer:    g.Scorer,
		Minute:    g.Minute,
		Position:  geo.PointFromVec3(g.Position),
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
	}
}

// CoreToBallSample converts a core.BallSample to a GORM model.BallSample.
// Velocity is stored as a point in the same frame as the position.
func CoreToBallSample(s core.BallSample) model.BallSample {
	return model.BallSample{
		MatchID:  s.MatchID,
		Tick:     s.Tick,
		Clock:    s.Clock,
		Position: geo.PointFromVec3(s.Ball.Position),
		Velocity: geo.PointFromVec3(s.Ball.Velocity),
		Speed:    s.Ball.Velocity.Len(),
		SpinRate: s.Ball.Spin.Len(),
		Grounded: s.Ball.Grounded,
	}
}

// CoreToShotForecast converts a forecast and its sampled path. A path with
// fewer than two points is stored as an empty line string.
func CoreToShotForecast(matchID string, f trajectory.Forecast, path []mgl64.Vec3) model.ShotForecast {
	ls, err := geo.LineStringFromPath(path)
	if err != nil {
		ls = geom.LineString{}
	}
	return model.ShotForecast{
		MatchID:       matchID,
		Start:         geo.PointFromVec3(f.Shot.Start),
		Landing:       geo.PointFromVec3(f.Landing),
		TimeToLanding: f.TimeToLanding,
		OnTarget:      f.OnTarget,
		Path:          ls,
	}
}
