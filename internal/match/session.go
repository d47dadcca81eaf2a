// Package match owns a single match: the ball, the clock, the rule engine
// and the goals. A Session is driven by its caller one fixed tick at a
// time and publishes what happens to a Publisher.
package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/kickoff/matchcore/internal/ballphysics"
	"github.com/kickoff/matchcore/internal/dispatcher"
	"github.com/kickoff/matchcore/internal/rules"
	"github.com/kickoff/matchcore/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrMatchOver   = errors.New("match is over")
	ErrNotStarted  = errors.New("match has not started")
	ErrInvalidTick = errors.New("tick length must be positive and finite")
	ErrDeadBall    = errors.New("ball is dead during a stoppage")
)

// Publisher receives the session's outbound events.
// *dispatcher.Dispatcher satisfies it.
type Publisher interface {
	Publish(topic string, payload any) error
}

// Period is the part of the match being played.
type Period uint8

const (
	PeriodFirstHalf Period = iota
	PeriodSecondHalf
	PeriodFullTime
)

func (p Period) String() string {
	switch p {
	case PeriodFirstHalf:
		return "first_half"
	case PeriodSecondHalf:
		return "second_half"
	default:
		return "full_time"
	}
}

// Dependencies are the collaborators a Session is built from. Rand and
// Effects may be nil. A nil Publisher discards events.
type Dependencies struct {
	Physics   ballphysics.Config
	Rules     rules.Config
	Rand      ballphysics.RandSource
	Effects   ballphysics.EffectFunc
	Publisher Publisher
	Logger    *slog.Logger
}

// TickResult describes what happened during one Tick.
type TickResult struct {
	Tick    uint64
	Clock   time.Duration
	Ball    core.BallState
	State   rules.State
	Event   core.RuleEvent
	Goal    *core.GoalEvent
	Resumed bool
	Dropped int

	HalfTime bool
	FullTime bool
}

// Snapshot is a read-only view of the session.
type Snapshot struct {
	Info   core.MatchInfo `json:"info"`
	Period Period         `json:"period"`
	Clock  time.Duration  `json:"clock"`
	Minute int            `json:"minute"`
	State  string         `json:"state"`
	Ball   core.BallState `json:"ball"`
}

// Session is not safe for concurrent use. One goroutine drives it.
type Session struct {
	cfg     Config
	info    core.MatchInfo
	sim     *ballphysics.Simulator
	engine  *rules.Engine
	goals   GoalDetector
	surface core.Surface
	pub     Publisher
	log     *slog.Logger

	started   bool
	ball      core.BallState
	clock     time.Duration
	tick      uint64
	period    Period
	lastTouch string

	ticks      metric.Int64Counter
	ruleEvents metric.Int64Counter
	goalsTotal metric.Int64Counter
}

// New creates a session for fixture with the ball on the centre spot and
// the home side attacking towards +Z. A fixture without an ID is a
// friendly.
func New(cfg Config, fixture core.Fixture, deps Dependencies) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	id := uuid.NewString()

	sim, err := ballphysics.New(deps.Physics, deps.Rand, deps.Effects)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", id, err)
	}
	engine, err := rules.NewEngine(deps.Rules, id)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", id, err)
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Session{
		cfg: cfg,
		info: core.MatchInfo{
			ID:        id,
			FixtureID: fixture.ID,
			HomeID:    fixture.HomeID,
			AwayID:    fixture.AwayID,
		},
		sim:     sim,
		engine:  engine,
		goals:   NewGoalDetector(cfg, deps.Rules.HalfLength),
		surface: core.ParseSurface(cfg.Surface),
		pub:     deps.Publisher,
		log:     log.With("match", id),
	}
	s.ball = s.centre()

	m := meter()
	if s.ticks, err = m.Int64Counter("match.ticks",
		metric.WithDescription("Simulation ticks advanced")); err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}
	if s.ruleEvents, err = m.Int64Counter("match.rule_events",
		metric.WithDescription("Offside, foul and out-of-bounds calls")); err != nil {
		return nil, fmt.Errorf("creating rule events counter: %w", err)
	}
	if s.goalsTotal, err = m.Int64Counter("match.goals",
		metric.WithDescription("Goals scored")); err != nil {
		return nil, fmt.Errorf("creating goals counter: %w", err)
	}

	return s, nil
}

// ID returns the match ID.
func (s *Session) ID() string { return s.info.ID }

// Info returns the match record including the current score.
func (s *Session) Info() core.MatchInfo { return s.info }

// Ball returns the current ball state.
func (s *Session) Ball() core.BallState { return s.ball }

// Clock returns the elapsed match time.
func (s *Session) Clock() time.Duration { return s.clock }

// Minute returns the elapsed whole minutes.
func (s *Session) Minute() int { return int(s.clock / time.Minute) }

// Period returns the current period.
func (s *Session) Period() Period { return s.period }

// State returns the rule engine's play state.
func (s *Session) State() rules.State { return s.engine.State() }

// Score returns the home and away goals.
func (s *Session) Score() (home, away int) { return s.info.HomeScore, s.info.AwayScore }

// AttackDir returns +1 if side currently attacks towards +Z, -1 otherwise.
func (s *Session) AttackDir(side core.Side) float64 { return s.engine.AttackDir(side) }

// DroppedViolations returns how many violations were seen during a
// stoppage and not called.
func (s *Session) DroppedViolations() int { return s.engine.Dropped() }

// Simulator exposes the session's ball physics for forecasting.
func (s *Session) Simulator() *ballphysics.Simulator { return s.sim }

// Snapshot returns a copy of the session's observable state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Info:   s.info,
		Period: s.period,
		Clock:  s.clock,
		Minute: s.Minute(),
		State:  s.engine.State().String(),
		Ball:   s.ball,
	}
}

// Start kicks off the match at wall-clock time at.
func (s *Session) Start(at time.Time) {
	if s.started {
		return
	}
	s.started = true
	s.info.StartTime = at
	s.publish(dispatcher.TopicMatchStart, s.info)
	s.log.Info("Match started", "home", s.info.HomeID, "away", s.info.AwayID)
}

// PlaceBall puts a motionless ball at pos.
func (s *Session) PlaceBall(pos mgl64.Vec3) {
	s.ball = ballphysics.AtRest(pos)
	s.ball.Surface = s.surface
}

// SetBall replaces the ball state, for scripted scenarios.
func (s *Session) SetBall(b core.BallState) {
	b.Surface = s.surface
	s.ball = b
}

// Kick strikes the ball. The ball cannot be played during a stoppage.
func (s *Session) Kick(cmd core.KickCommand) error {
	if err := s.playable(); err != nil {
		return err
	}
	next, err := s.sim.Kick(s.ball, cmd)
	if err != nil {
		return err
	}
	s.ball = next
	return nil
}

// ShootWithCurve strikes the ball with a preset curve.
func (s *Session) ShootWithCurve(dir mgl64.Vec3, power float64, curve core.CurveType) error {
	if err := s.playable(); err != nil {
		return err
	}
	next, err := s.sim.ShootWithCurve(s.ball, dir, power, curve)
	if err != nil {
		return err
	}
	s.ball = next
	return nil
}

// Touch resolves contact between the ball and player and credits the
// player with the last touch.
func (s *Session) Touch(player core.PlayerAgentState) (core.BodyPart, error) {
	if err := s.playable(); err != nil {
		return core.BodyFoot, err
	}
	next, part := s.sim.CollidePlayer(s.ball, player)
	s.ball = next
	s.lastTouch = player.ID
	return part, nil
}

// HitWoodwork bounces the ball off a post or the crossbar.
func (s *Session) HitWoodwork(normal mgl64.Vec3) error {
	if err := s.playable(); err != nil {
		return err
	}
	next, err := s.sim.CollidePost(s.ball, normal)
	if err != nil {
		return err
	}
	s.ball = next
	return nil
}

func (s *Session) playable() error {
	switch {
	case s.period == PeriodFullTime:
		return ErrMatchOver
	case s.engine.State() != rules.StatePlaying:
		return ErrDeadBall
	}
	return nil
}

// Tick advances the match by dt seconds. The ball moves only while play
// is live. Goals are checked before the rules so a ball in the net is
// never called out of play.
func (s *Session) Tick(dt float64, players []core.PlayerAgentState) (TickResult, error) {
	if s.period == PeriodFullTime {
		return TickResult{}, ErrMatchOver
	}
	if !s.started {
		return TickResult{}, ErrNotStarted
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return TickResult{}, fmt.Errorf("%w: %v", ErrInvalidTick, dt)
	}

	s.tick++
	s.clock += time.Duration(dt * float64(time.Second))
	s.ticks.Add(context.Background(), 1)

	res := TickResult{Tick: s.tick, Clock: s.clock}

	prev := s.ball.Position
	if s.engine.State() == rules.StatePlaying {
		b := s.contact(s.ball)
		s.ball = s.land(s.sim.Step(b, dt, b.Grounded))
	}

	if end, ok := s.goalScored(prev, s.ball.Position); ok && s.engine.State() == rules.StatePlaying {
		res.Goal = s.scoreGoal(end)
	} else {
		out := s.engine.Update(s.clock, s.ball, players)
		res.Event, res.Resumed, res.Dropped = out.Event, out.Resumed, out.Dropped
		if out.Event != nil {
			s.callRule(out.Event)
		}
		if out.Resumed && out.HasRestart {
			s.PlaceBall(out.Restart)
		}
	}

	if s.cfg.SampleEvery > 0 && s.tick%uint64(s.cfg.SampleEvery) == 0 {
		s.publish(dispatcher.TopicBallSample, core.BallSample{
			MatchID: s.info.ID,
			Tick:    s.tick,
			Clock:   s.clock.Seconds(),
			Ball:    s.ball,
		})
	}

	switch {
	case s.period == PeriodFirstHalf && s.clock >= s.cfg.HalfDuration:
		s.halfTime()
		res.HalfTime = true
	case s.period == PeriodSecondHalf && s.clock >= 2*s.cfg.HalfDuration:
		s.fullTime()
		res.FullTime = true
	}

	res.Ball = s.ball
	res.State = s.engine.State()
	return res, nil
}

// contact works out whether the ball is resting on the pitch before it
// moves. Any upward speed makes it airborne. A ball at or below the ground
// that is still moving down bounces first.
func (s *Session) contact(b core.BallState) core.BallState {
	if b.Velocity.Y() > 0 || b.Position.Y() > 0 {
		b.Grounded = false
		return b
	}
	b.Position[1] = 0
	if b.Velocity.Y() == 0 {
		b.Grounded = true
		return b
	}
	return s.bounce(b)
}

// land resolves a descending ball meeting the ground after a step.
func (s *Session) land(b core.BallState) core.BallState {
	if b.Position.Y() > 0 {
		return b
	}
	b.Position[1] = 0
	if b.Velocity.Y() >= 0 {
		return b
	}
	return s.bounce(b)
}

// bounce reflects a ball off the pitch. It keeps bouncing until the rebound
// speed drops below SettleSpeed and then rolls.
func (s *Session) bounce(b core.BallState) core.BallState {
	bounced, err := s.sim.CollideGround(b, core.Up)
	if err != nil {
		return b
	}
	bounced.Grounded = false
	if bounced.Velocity.Y() < s.cfg.SettleSpeed {
		bounced.Velocity[1] = 0
		bounced.Grounded = true
	}
	return bounced
}

// goalScored checks the ball's resting place and then the path it took this
// tick, so a fast ball cannot skip over the goal volume.
func (s *Session) goalScored(prev, cur mgl64.Vec3) (float64, bool) {
	if end, ok := s.goals.Check(cur); ok {
		return end, true
	}
	return s.goals.Crossed(prev, cur)
}

func (s *Session) scoreGoal(end float64) *core.GoalEvent {
	side := core.SideHome
	if s.engine.AttackDir(core.SideHome) != end {
		side = core.SideAway
	}
	if side == core.SideHome {
		s.info.HomeScore++
	} else {
		s.info.AwayScore++
	}

	goal := core.GoalEvent{
		MatchID:   s.info.ID,
		Side:      side,
		Scorer:    s.lastTouch,
		Position:  s.ball.Position,
		Minute:    s.Minute(),
		HomeScore: s.info.HomeScore,
		AwayScore: s.info.AwayScore,
	}
	s.goalsTotal.Add(context.Background(), 1, metric.WithAttributes(attribute.String("side", side.String())))
	s.publish(dispatcher.TopicGoal, goal)
	s.log.Info("Goal", "side", side, "scorer", goal.Scorer, "minute", goal.Minute,
		"score", fmt.Sprintf("%d-%d", s.info.HomeScore, s.info.AwayScore))

	s.kickoff()
	return &goal
}

func (s *Session) callRule(e core.RuleEvent) {
	s.ruleEvents.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", e.Kind().String())))
	s.publish(RuleTopic(e), e)
	s.log.Debug("Rule call", "kind", e.Kind(), "minute", e.EventMinute())
}

func (s *Session) halfTime() {
	s.period = PeriodSecondHalf
	s.engine.SwapEnds()
	s.kickoff()
	s.log.Info("Half time", "score", fmt.Sprintf("%d-%d", s.info.HomeScore, s.info.AwayScore))
}

func (s *Session) fullTime() {
	s.period = PeriodFullTime
	s.engine.Reset()
	s.info.EndTime = s.info.StartTime.Add(s.clock)
	s.info.Completed = true
	s.publish(dispatcher.TopicMatchEnd, s.info)
	s.log.Info("Full time", "score", fmt.Sprintf("%d-%d", s.info.HomeScore, s.info.AwayScore),
		"dropped", s.engine.Dropped())
}

// kickoff clears any stoppage and puts the ball on the centre spot.
func (s *Session) kickoff() {
	s.engine.Reset()
	s.ball = s.centre()
	s.lastTouch = ""
}

func (s *Session) centre() core.BallState {
	b := ballphysics.AtRest(mgl64.Vec3{})
	b.Surface = s.surface
	return b
}

func (s *Session) publish(topic string, payload any) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(topic, payload); err != nil {
		s.log.Warn("Failed to publish", "topic", topic, "error", err)
	}
}

// RuleTopic returns the dispatcher topic for a rule event.
func RuleTopic(e core.RuleEvent) string {
	switch e.Kind() {
	case core.KindOffside:
		return dispatcher.TopicOffside
	case core.KindFoul:
		return dispatcher.TopicFoul
	default:
		return dispatcher.TopicOutOfBounds
	}
}
