package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickoff/matchcore/internal/config"
	"github.com/kickoff/matchcore/internal/match"
	"github.com/kickoff/matchcore/internal/rules"
	"github.com/kickoff/matchcore/pkg/core"
)

// scriptedMatch drives a session with two stationary keepers and a shot
// towards goal whenever the ball has come to rest.
type scriptedMatch struct {
	session   *match.Session
	rules     rules.Config
	rng       interface{ Float64() float64 }
	kickEvery time.Duration

	nextSide core.Side
	lastKick time.Duration
}

func (m *scriptedMatch) players() []core.PlayerAgentState {
	keeper := func(side core.Side, id string) core.PlayerAgentState {
		line := -m.session.AttackDir(side) * (m.rules.HalfLength - 1)
		return core.PlayerAgentState{
			ID:       id,
			Side:     side,
			Role:     core.RoleGoalkeeper,
			Position: mgl64.Vec3{0, 0, line},
		}
	}
	return []core.PlayerAgentState{
		keeper(core.SideHome, "home-gk"),
		keeper(core.SideAway, "away-gk"),
	}
}

// shoot strikes at the goal attacked by the side whose turn it is.
func (m *scriptedMatch) shoot() error {
	if m.session.State() != rules.StatePlaying {
		return nil
	}
	ball := m.session.Ball()
	if ball.Velocity.Len() > 0.5 || m.session.Clock()-m.lastKick < m.kickEvery {
		return nil
	}

	side := m.nextSide
	target := mgl64.Vec3{(m.rng.Float64() - 0.5) * 12, 1.2, m.session.AttackDir(side) * m.rules.HalfLength}
	dir := target.Sub(ball.Position)
	dir[1] = dir.Len() * 0.15
	power := 1 + m.rng.Float64()*0.8

	var err error
	if curve := core.CurveType(m.rng.Float64() * 6); curve != core.CurveNone {
		err = m.session.ShootWithCurve(dir.Normalize(), power, curve)
	} else {
		err = m.session.Kick(core.KickCommand{Direction: dir.Normalize(), Power: power})
	}
	if errors.Is(err, match.ErrDeadBall) {
		return nil
	}
	if err != nil {
		return err
	}

	m.lastKick = m.session.Clock()
	m.nextSide = side.Opponent()
	return nil
}

func runMatch(ctx context.Context, args []string) error {
	lc := config.GetLeagueConfig()

	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	seed := fs.Uint64("seed", lc.Seed, "random seed, 0 draws one")
	half := fs.Duration("half", 0, "half length, defaults to match.halfDuration")
	hz := fs.Float64("hz", 60, "simulation ticks per second")
	kickEvery := fs.Duration("kick-every", 8*time.Second, "match time between scripted shots")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if !(*hz > 0) {
		return fmt.Errorf("%w: -hz must be positive", errUsage)
	}

	matchCfg, err := config.GetMatchConfig()
	if err != nil {
		return err
	}
	if *half > 0 {
		matchCfg.HalfDuration = *half
	}
	physics, err := config.GetPhysicsConfig()
	if err != nil {
		return err
	}
	rulesCfg, err := config.GetRulesConfig()
	if err != nil {
		return err
	}

	fixture := core.Fixture{HomeID: "home", AwayID: "away"}
	if len(lc.Teams) >= 2 {
		fixture.HomeID, fixture.AwayID = lc.Teams[0].ID, lc.Teams[1].ID
	}

	rng, usedSeed := newRand(*seed)
	svc, err := startServices(ctx, lc.Name)
	if err != nil {
		return err
	}
	defer svc.stop()

	session, err := match.New(matchCfg, fixture, match.Dependencies{
		Physics:   physics,
		Rules:     rulesCfg,
		Rand:      rng,
		Publisher: svc.dispatcher,
		Logger:    SlogManager.Component("match"),
	})
	if err != nil {
		return err
	}
	Logger.Info("Playing scripted match", "match", session.ID(), "seed", usedSeed)

	script := &scriptedMatch{
		session:   session,
		rules:     rulesCfg,
		rng:       rng,
		kickEvery: *kickEvery,
		nextSide:  core.SideHome,
		lastKick:  -*kickEvery,
	}
	return playScripted(ctx, os.Stdout, script, 1 / *hz)
}

// playScripted ticks the session to full time and reports every event.
func playScripted(ctx context.Context, w io.Writer, m *scriptedMatch, dt float64) error {
	s := m.session
	info := s.Info()
	fmt.Fprintf(w, "%s vs %s\n", info.HomeID, info.AwayID)
	s.Start(time.Now())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.shoot(); err != nil {
			return err
		}

		res, err := s.Tick(dt, m.players())
		if err != nil {
			return err
		}
		if line := describeTick(res, s.Minute()); line != "" {
			fmt.Fprintln(w, line)
		}
		if res.FullTime {
			home, away := s.Score()
			fmt.Fprintf(w, "Final score: %s %d - %d %s\n", info.HomeID, home, away, info.AwayID)
			if n := s.DroppedViolations(); n > 0 {
				fmt.Fprintf(w, "%d overlapping calls dropped\n", n)
			}
			return nil
		}
	}
}

// describeTick renders what happened in res, or "" when nothing did.
func describeTick(res match.TickResult, minute int) string {
	switch {
	case res.Goal != nil:
		return fmt.Sprintf("%3d' GOAL %s (%d-%d)", res.Goal.Minute, res.Goal.Side, res.Goal.HomeScore, res.Goal.AwayScore)
	case res.Event != nil:
		return fmt.Sprintf("%3d' %s", res.Event.EventMinute(), describeEvent(res.Event))
	case res.HalfTime:
		return fmt.Sprintf("%3d' half time", minute)
	case res.FullTime:
		return fmt.Sprintf("%3d' full time", minute)
	}
	return ""
}

func describeEvent(e core.RuleEvent) string {
	switch ev := e.(type) {
	case core.OffsideEvent:
		return fmt.Sprintf("offside: %s (%s)", ev.Player, ev.Side)
	case core.FoulEvent:
		return fmt.Sprintf("foul: %s on %s", ev.Aggressor, ev.Victim)
	case core.OutOfBoundsEvent:
		return fmt.Sprintf("out of bounds: %s at (%.1f, %.1f)", ev.Restart, ev.RestartPosition.X(), ev.RestartPosition.Z())
	}
	return e.Kind().String()
}
