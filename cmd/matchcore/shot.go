package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickoff/matchcore/internal/config"
	"github.com/kickoff/matchcore/internal/dispatcher"
	"github.com/kickoff/matchcore/internal/match"
	"github.com/kickoff/matchcore/internal/trajectory"
	"github.com/kickoff/matchcore/internal/worker"
)

// vecFlag is a flag.Value for "x,y,z".
type vecFlag struct {
	v   mgl64.Vec3
	set bool
}

func (f *vecFlag) String() string {
	return fmt.Sprintf("%g,%g,%g", f.v[0], f.v[1], f.v[2])
}

func (f *vecFlag) Set(s string) error {
	v, err := parseVec(s)
	if err != nil {
		return err
	}
	f.v, f.set = v, true
	return nil
}

func parseVec(s string) (mgl64.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v mgl64.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mgl64.Vec3{}, fmt.Errorf("component %d of %q: %w", i, s, err)
		}
		v[i] = f
	}
	return v, nil
}

func runShot(ctx context.Context, args []string) error {
	var start, velocity, spin, target vecFlag
	start.v = mgl64.Vec3{0, 0.11, 30}

	fs := flag.NewFlagSet("shot", flag.ContinueOnError)
	fs.Var(&start, "start", "ball position x,y,z")
	fs.Var(&velocity, "velocity", "launch velocity x,y,z")
	fs.Var(&spin, "spin", "spin x,y,z")
	fs.Var(&target, "target", "aim point x,y,z, used when -velocity is not set")
	arc := fs.Float64("arc", 2, "apex height above the line to -target")
	spread := fs.Int("spread", 0, "also forecast this many shots with scaled launch speed")
	matchID := fs.String("match", "", "persist the forecast against this match id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	physics, err := config.GetPhysicsConfig()
	if err != nil {
		return err
	}
	trajCfg, err := config.GetTrajectoryConfig()
	if err != nil {
		return err
	}
	rulesCfg, err := config.GetRulesConfig()
	if err != nil {
		return err
	}
	matchCfg, err := config.GetMatchConfig()
	if err != nil {
		return err
	}

	if !velocity.set {
		if !target.set {
			target.v = mgl64.Vec3{0, 1.2, rulesCfg.HalfLength}
		}
		velocity.v, err = trajectory.VelocityToTarget(start.v, target.v, *arc, math.Abs(physics.Gravity))
		if err != nil {
			return err
		}
	}

	predictor, err := trajectory.New(physics, trajCfg)
	if err != nil {
		return err
	}
	// the goal being shot at is the one the ball travels towards
	goal := match.NewGoalDetector(matchCfg, rulesCfg.HalfLength).Box(velocity.v.Z())

	shot := trajectory.Shot{Start: start.v, Velocity: velocity.v, Spin: spin.v}
	shots := []trajectory.Shot{shot}
	for i := 1; i <= *spread; i++ {
		scale := 1 + 0.4*(float64(i)/float64(*spread)-0.5)
		shots = append(shots, trajectory.Shot{Start: start.v, Velocity: velocity.v.Mul(scale), Spin: spin.v})
	}

	forecasts, err := predictor.EvaluateShots(ctx, shots, goal)
	if err != nil {
		return err
	}
	printForecasts(os.Stdout, forecasts)

	if *matchID == "" {
		return nil
	}

	svc, err := startServices(ctx, config.GetLeagueConfig().Name)
	if err != nil {
		return err
	}
	defer svc.stop()

	return svc.dispatcher.Publish(dispatcher.TopicForecast, worker.ForecastEvent{
		MatchID:  *matchID,
		Forecast: forecasts[0],
		Path:     predictor.Points(shot),
	})
}

func printForecasts(w io.Writer, forecasts []trajectory.Forecast) {
	for i, f := range forecasts {
		target := "off target"
		if f.OnTarget {
			target = "on target"
		}
		fmt.Fprintf(w, "#%d v=(%.2f, %.2f, %.2f) lands (%.2f, %.2f, %.2f) after %.2fs, %s\n",
			i, f.Shot.Velocity.X(), f.Shot.Velocity.Y(), f.Shot.Velocity.Z(),
			f.Landing.X(), f.Landing.Y(), f.Landing.Z(), f.TimeToLanding, target)
	}
}
