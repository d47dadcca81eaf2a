package convert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickoff/matchcore/internal/trajectory"
	"github.com/kickoff/matchcore/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreToTeam(t *testing.T) {
	team := core.Team{ID: "liv", Name: "Liverpool", ShortName: "LIV", Overall: 85, Attack: 87, Midfield: 84, Defense: 83}
	m := CoreToTeam(5, team)

	assert.Equal(t, uint(5), m.SeasonID)
	assert.Equal(t, "liv", m.TeamID)
	assert.Equal(t, 87, m.Attack)
	assert.Equal(t, team, TeamToCore(m))
}

func TestCoreToFixture_Result(t *testing.T) {
	f := core.Fixture{ID: "fx", Season: 1, Matchday: 2, HomeID: "a", AwayID: "b", Played: true, Result: &core.Result{HomeScore: 3, AwayScore: 3}}
	m := CoreToFixture(9, f)

	assert.Equal(t, uint(9), m.SeasonID)
	assert.JSONEq(t, `{"homeScore":3,"awayScore":3}`, string(m.Result))

	unplayed := CoreToFixture(9, core.Fixture{ID: "fx2"})
	assert.Nil(t, unplayed.Result)
}

func TestCoreToStanding(t *testing.T) {
	row := core.StandingsRow{TeamID: "a", Position: 1, Played: 2, Won: 2, GoalsFor: 5, GoalsAgainst: 1, GoalDifference: 4, Points: 6}
	m := CoreToStanding(1, 2, row)

	assert.Equal(t, 2, m.Matchday)
	assert.Equal(t, row, StandingToCore(m))
}

func TestCoreToMatch_EndTime(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	info := core.MatchInfo{ID: "m", HomeID: "a", AwayID: "b", StartTime: start}

	m := CoreToMatch(1, info)
	assert.Nil(t, m.EndTime)

	info.EndTime = start.Add(90 * time.Minute)
	info.Completed = true
	m = CoreToMatch(1, info)
	require.NotNil(t, m.EndTime)
	assert.Equal(t, info.EndTime, *m.EndTime)
	assert.Equal(t, info, MatchToCore(m))
}

func TestCoreToRuleEvent(t *testing.T) {
	at := time.Now()
	tests := []struct {
		name    string
		event   core.RuleEvent
		kind    string
		details map[string]any
	}{
		{
			name:    "offside",
			event:   core.OffsideEvent{MatchID: "m", Player: "p7", Side: core.SideHome, Position: mgl64.Vec3{0, 0, 30}, Minute: 12},
			kind:    "offside",
			details: map[string]any{"player": "p7", "side": "home"},
		},
		{
			name:    "foul",
			event:   core.FoulEvent{MatchID: "m", Aggressor: "p4", Victim: "p10", Minute: 40},
			kind:    "foul",
			details: map[string]any{"aggressor": "p4", "victim": "p10"},
		},
		{
			name:  "out of bounds",
			event: core.OutOfBoundsEvent{MatchID: "m", Restart: core.RestartThrowIn, Position: mgl64.Vec3{35, 0, 4}, RestartPosition: mgl64.Vec3{34, 0, 4}, Minute: 3},
			kind:  "out_of_bounds",
			details: map[string]any{
				"restart":         "throw_in",
				"restartPosition": []any{34.0, 0.0, 4.0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := CoreToRuleEvent(tt.event, at)
			assert.Equal(t, "m", m.MatchID)
			assert.Equal(t, tt.kind, m.Kind)
			assert.Equal(t, tt.event.EventMinute(), m.Minute)

			var details map[string]any
			require.NoError(t, json.Unmarshal(m.Details, &details))
			assert.Equal(t, tt.details, details)
		})
	}
}

func TestCoreToBallSample_Derived(t *testing.T) {
	m := CoreToBallSample(core.BallSample{
		MatchID: "m",
		Tick:    6,
		Ball: core.BallState{
			Velocity: mgl64.Vec3{3, 0, 4},
			Spin:     mgl64.Vec3{0, 0, 2},
			Grounded: true,
		},
	})

	assert.InDelta(t, 5.0, m.Speed, 1e-9)
	assert.InDelta(t, 2.0, m.SpinRate, 1e-9)
	assert.True(t, m.Grounded)
}

func TestCoreToShotForecast(t *testing.T) {
	f := trajectory.Forecast{
		Shot:          trajectory.Shot{Start: mgl64.Vec3{0, 0, 30}},
		Landing:       mgl64.Vec3{0, 0, 52},
		TimeToLanding: 1.1,
		OnTarget:      true,
	}
	path := []mgl64.Vec3{{0, 0, 30}, {0, 1, 40}, {0, 0, 52}}

	m := CoreToShotForecast("m", f, path)
	assert.True(t, m.OnTarget)
	assert.Equal(t, 3, m.Path.Coordinates().Length())

	short := CoreToShotForecast("m", f, path[:1])
	assert.True(t, short.Path.IsEmpty())
}
