package match

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickoff/matchcore/internal/ballphysics"
	"github.com/kickoff/matchcore/internal/dispatcher"
	"github.com/kickoff/matchcore/internal/rules"
	"github.com/kickoff/matchcore/pkg/core"
)

const dt = 1.0 / 60

type published struct {
	topic   string
	payload any
}

type recorder struct {
	events []published
}

func (r *recorder) Publish(topic string, payload any) error {
	r.events = append(r.events, published{topic, payload})
	return nil
}

func (r *recorder) on(topic string) []any {
	var out []any
	for _, e := range r.events {
		if e.topic == topic {
			out = append(out, e.payload)
		}
	}
	return out
}

func newSession(t *testing.T, cfg Config) (*Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	s, err := New(cfg, core.Fixture{ID: "fx-1", HomeID: "home", AwayID: "away"}, Dependencies{
		Physics:   ballphysics.DefaultConfig(),
		Rules:     rules.DefaultConfig(),
		Publisher: rec,
	})
	require.NoError(t, err)
	s.Start(time.Date(2026, 8, 15, 15, 0, 0, 0, time.UTC))
	return s, rec
}

func tickUntil(t *testing.T, s *Session, players []core.PlayerAgentState, max int, done func(TickResult) bool) TickResult {
	t.Helper()
	for range max {
		res, err := s.Tick(dt, players)
		require.NoError(t, err)
		if done(res) {
			return res
		}
	}
	t.Fatalf("condition not reached in %d ticks", max)
	return TickResult{}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HalfDuration = 0
	_, err := New(cfg, core.Fixture{}, Dependencies{
		Physics: ballphysics.DefaultConfig(),
		Rules:   rules.DefaultConfig(),
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(DefaultConfig(), core.Fixture{}, Dependencies{
		Physics: ballphysics.Config{},
		Rules:   rules.DefaultConfig(),
	})
	assert.ErrorIs(t, err, ballphysics.ErrInvalidConfig)
}

func TestNew_InitialState(t *testing.T) {
	s, rec := newSession(t, DefaultConfig())

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, "fx-1", s.Info().FixtureID)
	assert.Equal(t, PeriodFirstHalf, s.Period())
	assert.Equal(t, rules.StatePlaying, s.State())
	assert.Equal(t, mgl64.Vec3{}, s.Ball().Position)
	assert.True(t, s.Ball().Grounded)
	assert.Equal(t, 1.0, s.AttackDir(core.SideHome))
	assert.Equal(t, -1.0, s.AttackDir(core.SideAway))
	require.Len(t, rec.on(dispatcher.TopicMatchStart), 1)
}

func TestTick_Errors(t *testing.T) {
	s, err := New(DefaultConfig(), core.Fixture{}, Dependencies{
		Physics: ballphysics.DefaultConfig(),
		Rules:   rules.DefaultConfig(),
	})
	require.NoError(t, err)

	_, err = s.Tick(dt, nil)
	assert.ErrorIs(t, err, ErrNotStarted)

	s.Start(time.Now())
	for _, bad := range []float64{0, -dt, math.NaN(), math.Inf(1)} {
		_, err = s.Tick(bad, nil)
		assert.ErrorIs(t, err, ErrInvalidTick, "dt=%v", bad)
	}
	assert.Zero(t, s.Clock())
}

func TestTick_HomeGoal(t *testing.T) {
	s, rec := newSession(t, DefaultConfig())
	striker := core.PlayerAgentState{ID: "h9", Side: core.SideHome, Role: core.RoleStriker, Position: mgl64.Vec3{0, 0, 49}}

	s.PlaceBall(mgl64.Vec3{0, 0, 49.5})
	part, err := s.Touch(striker)
	require.NoError(t, err)
	assert.Equal(t, core.BodyFoot, part)
	require.NoError(t, s.Kick(core.KickCommand{Direction: mgl64.Vec3{0, 0, 1}, Power: 1}))

	res := tickUntil(t, s, nil, 10, func(r TickResult) bool { return r.Goal != nil })

	assert.Equal(t, core.SideHome, res.Goal.Side)
	assert.Equal(t, "h9", res.Goal.Scorer)
	assert.Equal(t, 1, res.Goal.HomeScore)
	assert.Nil(t, res.Event, "ball in the net is not called out")

	home, away := s.Score()
	assert.Equal(t, 1, home)
	assert.Equal(t, 0, away)
	assert.Equal(t, mgl64.Vec3{}, s.Ball().Position, "kick-off from the centre spot")
	assert.Equal(t, rules.StatePlaying, s.State())

	goals := rec.on(dispatcher.TopicGoal)
	require.Len(t, goals, 1)
	assert.Equal(t, s.ID(), goals[0].(core.GoalEvent).MatchID)
	assert.Empty(t, rec.on(dispatcher.TopicOutOfBounds))
}

func TestTick_AwayGoal(t *testing.T) {
	s, _ := newSession(t, DefaultConfig())

	s.PlaceBall(mgl64.Vec3{1, 0, -49.5})
	require.NoError(t, s.Kick(core.KickCommand{Direction: mgl64.Vec3{0, 0, -1}, Power: 1}))

	res := tickUntil(t, s, nil, 10, func(r TickResult) bool { return r.Goal != nil })

	assert.Equal(t, core.SideAway, res.Goal.Side)
	assert.Empty(t, res.Goal.Scorer)
	home, away := s.Score()
	assert.Equal(t, 0, home)
	assert.Equal(t, 1, away)
}

func TestTick_ThrowInStopsPlayAndRestarts(t *testing.T) {
	s, rec := newSession(t, DefaultConfig())

	s.PlaceBall(mgl64.Vec3{29.9, 0, 4})
	require.NoError(t, s.Kick(core.KickCommand{Direction: mgl64.Vec3{1, 0, 0}, Power: 1}))

	res, err := s.Tick(dt, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Event)
	ev, ok := res.Event.(core.OutOfBoundsEvent)
	require.True(t, ok)
	assert.Equal(t, core.RestartThrowIn, ev.Restart)
	assert.Equal(t, mgl64.Vec3{30, 0, 4}, ev.RestartPosition)
	assert.Equal(t, rules.StateThrowIn, s.State())
	require.Len(t, rec.on(dispatcher.TopicOutOfBounds), 1)

	frozen := s.Ball().Position
	assert.ErrorIs(t, s.Kick(core.KickCommand{Direction: mgl64.Vec3{-1, 0, 0}, Power: 1}), ErrDeadBall)
	_, err = s.Tick(dt, nil)
	require.NoError(t, err)
	assert.Equal(t, frozen, s.Ball().Position, "dead ball does not move")

	res = tickUntil(t, s, nil, 120, func(r TickResult) bool { return r.Resumed })
	assert.Equal(t, rules.StatePlaying, res.State)
	assert.Equal(t, mgl64.Vec3{30, 0, 4}, s.Ball().Position)
	assert.False(t, s.Ball().IsMoving())
	assert.Len(t, rec.on(dispatcher.TopicOutOfBounds), 1, "the stoppage is called once")
}

func TestTick_OffsidePublished(t *testing.T) {
	s, rec := newSession(t, DefaultConfig())
	players := []core.PlayerAgentState{
		{ID: "h9", Side: core.SideHome, Role: core.RoleStriker, Position: mgl64.Vec3{0, 0, 20}},
		{ID: "a4", Side: core.SideAway, Role: core.RoleBack, Position: mgl64.Vec3{-5, 0, 10}},
		{ID: "a1", Side: core.SideAway, Role: core.RoleGoalkeeper, Position: mgl64.Vec3{0, 0, 5}},
	}

	res, err := s.Tick(dt, players)
	require.NoError(t, err)

	ev, ok := res.Event.(core.OffsideEvent)
	require.True(t, ok)
	assert.Equal(t, "h9", ev.Player)
	assert.Equal(t, rules.StateOffside, s.State())
	require.Len(t, rec.on(dispatcher.TopicOffside), 1)

	tickUntil(t, s, players, 200, func(r TickResult) bool { return r.Resumed })
	assert.Equal(t, mgl64.Vec3{0, 0, 20}, s.Ball().Position, "free kick from the offender's position")
}

func TestTick_HalfTimeAndFullTime(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HalfDuration = time.Second
	cfg.SampleEvery = 0
	s, rec := newSession(t, cfg)

	s.PlaceBall(mgl64.Vec3{5, 0, 5})
	tickUntil(t, s, nil, 100, func(r TickResult) bool { return r.HalfTime })

	assert.Equal(t, PeriodSecondHalf, s.Period())
	assert.Equal(t, -1.0, s.AttackDir(core.SideHome), "ends swap at half time")
	assert.Equal(t, mgl64.Vec3{}, s.Ball().Position)

	tickUntil(t, s, nil, 100, func(r TickResult) bool { return r.FullTime })

	assert.Equal(t, PeriodFullTime, s.Period())
	info := s.Info()
	assert.True(t, info.Completed)
	assert.Equal(t, info.StartTime.Add(s.Clock()), info.EndTime)
	assert.GreaterOrEqual(t, s.Clock(), 2*time.Second)

	_, err := s.Tick(dt, nil)
	assert.ErrorIs(t, err, ErrMatchOver)
	assert.ErrorIs(t, s.Kick(core.KickCommand{Direction: mgl64.Vec3{0, 0, 1}, Power: 1}), ErrMatchOver)

	ends := rec.on(dispatcher.TopicMatchEnd)
	require.Len(t, ends, 1)
	assert.True(t, ends[0].(core.MatchInfo).Completed)
	assert.Empty(t, rec.on(dispatcher.TopicBallSample))
}

func TestTick_SecondHalfGoalCreditsSwappedSide(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HalfDuration = time.Second
	s, _ := newSession(t, cfg)
	tickUntil(t, s, nil, 100, func(r TickResult) bool { return r.HalfTime })

	// home now attacks -Z
	s.PlaceBall(mgl64.Vec3{0, 0, -49.5})
	require.NoError(t, s.Kick(core.KickCommand{Direction: mgl64.Vec3{0, 0, -1}, Power: 1}))
	res := tickUntil(t, s, nil, 10, func(r TickResult) bool { return r.Goal != nil })
	assert.Equal(t, core.SideHome, res.Goal.Side)
}

func TestTick_BallSamples(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleEvery = 2
	s, rec := newSession(t, cfg)

	for range 5 {
		_, err := s.Tick(dt, nil)
		require.NoError(t, err)
	}

	samples := rec.on(dispatcher.TopicBallSample)
	require.Len(t, samples, 2)
	assert.Equal(t, uint64(2), samples[0].(core.BallSample).Tick)
	assert.Equal(t, uint64(4), samples[1].(core.BallSample).Tick)
	assert.Equal(t, s.ID(), samples[1].(core.BallSample).MatchID)
	assert.InDelta(t, 4*dt, samples[1].(core.BallSample).Clock, 1e-6)
}

func TestTick_DroppedBallBouncesThenSettles(t *testing.T) {
	s, _ := newSession(t, DefaultConfig())
	s.SetBall(core.BallState{Position: mgl64.Vec3{0, 2, 0}})

	bounced := false
	res := tickUntil(t, s, nil, 600, func(r TickResult) bool {
		if !r.Ball.Grounded && r.Ball.Velocity.Y() > 0 {
			bounced = true
		}
		return r.Ball.Grounded
	})

	assert.True(t, bounced, "a two metre drop rebounds before settling")
	assert.Zero(t, res.Ball.Position.Y())
	assert.Zero(t, res.Ball.Velocity.Y())
}

func TestTick_KickIntoTurfRebounds(t *testing.T) {
	s, _ := newSession(t, DefaultConfig())
	require.NoError(t, s.Kick(core.KickCommand{Direction: mgl64.Vec3{0, -0.3, 1}, Power: 1}))
	require.False(t, s.Ball().Grounded)

	rose := false
	for range 60 {
		res, err := s.Tick(dt, nil)
		require.NoError(t, err)
		require.GreaterOrEqual(t, res.Ball.Position.Y(), 0.0)
		if res.Ball.Velocity.Y() > 0 {
			rose = true
		}
		if res.Ball.Grounded {
			assert.Zero(t, res.Ball.Velocity.Y())
		}
	}
	assert.True(t, rose, "the turf throws the ball back up")
	assert.Greater(t, s.Ball().Position.Z(), 0.0)
}

func TestTick_WoodworkLiftsRollingBall(t *testing.T) {
	s, _ := newSession(t, DefaultConfig())
	s.SetBall(core.BallState{Position: mgl64.Vec3{3.5, 0, 40}, Velocity: mgl64.Vec3{0, 0, 15}, Grounded: true})

	require.NoError(t, s.HitWoodwork(mgl64.Vec3{0, 0.6, -1}))
	require.False(t, s.Ball().Grounded)
	require.Greater(t, s.Ball().Velocity.Y(), 0.0)

	peak := 0.0
	tickUntil(t, s, nil, 180, func(r TickResult) bool {
		peak = math.Max(peak, r.Ball.Position.Y())
		return r.Ball.Position.Y() == 0
	})
	assert.Greater(t, peak, 1.0, "the ball leaves the ground")
	assert.Less(t, s.Ball().Position.Z(), 40.0)
}

func TestTick_FastShotAtLowRateStillScores(t *testing.T) {
	s, rec := newSession(t, DefaultConfig())
	// at 4 Hz a 40 m/s shot covers more ground per tick than the goal is deep
	s.SetBall(core.BallState{Position: mgl64.Vec3{0, 1, 45}, Velocity: mgl64.Vec3{0, 0, 40}})

	res, err := s.Tick(0.25, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Goal)
	assert.Equal(t, core.SideHome, res.Goal.Side)
	assert.Len(t, rec.on(dispatcher.TopicGoal), 1)
}

func TestTick_NilPublisher(t *testing.T) {
	s, err := New(DefaultConfig(), core.Fixture{}, Dependencies{
		Physics: ballphysics.DefaultConfig(),
		Rules:   rules.DefaultConfig(),
	})
	require.NoError(t, err)
	s.Start(time.Now())

	s.PlaceBall(mgl64.Vec3{0, 0, 49.5})
	require.NoError(t, s.Kick(core.KickCommand{Direction: mgl64.Vec3{0, 0, 1}, Power: 1}))
	tickUntil(t, s, nil, 10, func(r TickResult) bool { return r.Goal != nil })
}

func TestShootWithCurve_DeflectsBall(t *testing.T) {
	s, _ := newSession(t, DefaultConfig())

	require.NoError(t, s.ShootWithCurve(mgl64.Vec3{0, 0.2, 1}, 1, core.CurveRight))
	for range 30 {
		_, err := s.Tick(dt, nil)
		require.NoError(t, err)
	}
	assert.NotZero(t, s.Ball().Position.X(), "curve moves the ball sideways")

	assert.ErrorIs(t, s.ShootWithCurve(mgl64.Vec3{}, 1, core.CurveLeft), ballphysics.ErrZeroDirection)
}

func TestHitWoodwork(t *testing.T) {
	s, _ := newSession(t, DefaultConfig())
	s.SetBall(core.BallState{Position: mgl64.Vec3{3.66, 1, 50}, Velocity: mgl64.Vec3{0, 0, 10}})

	require.NoError(t, s.HitWoodwork(mgl64.Vec3{0, 0, -1}))
	assert.InDelta(t, -8, s.Ball().Velocity.Z(), 1e-9)
}

func TestSnapshot(t *testing.T) {
	s, _ := newSession(t, DefaultConfig())
	_, err := s.Tick(dt, nil)
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, s.ID(), snap.Info.ID)
	assert.Equal(t, PeriodFirstHalf, snap.Period)
	assert.Equal(t, "playing", snap.State)
	assert.Equal(t, 0, snap.Minute)
}

func TestRuleTopic(t *testing.T) {
	assert.Equal(t, dispatcher.TopicOffside, RuleTopic(core.OffsideEvent{}))
	assert.Equal(t, dispatcher.TopicFoul, RuleTopic(core.FoulEvent{}))
	assert.Equal(t, dispatcher.TopicOutOfBounds, RuleTopic(core.OutOfBoundsEvent{}))
}
