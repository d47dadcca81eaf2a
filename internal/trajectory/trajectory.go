// Package trajectory forecasts ball flight with the same physics the live
// simulator uses, without touching any live state.
//
// Goal-box and landing queries check the sampled points only, not the
// segments between them. A coarse time step can step over a thin volume
// and report a miss.
package trajectory

import (
	"context"
	"errors"
	"iter"
	"math"
	"runtime"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickoff/matchcore/internal/ballphysics"
	"github.com/kickoff/matchcore/internal/vecmath"
	"github.com/kickoff/matchcore/pkg/core"
	"golang.org/x/sync/errgroup"
)

// ErrUnreachable is returned when no launch velocity reaches a target.
var ErrUnreachable = errors.New("target unreachable")

// Config sets the sampling used by the derived queries.
type Config struct {
	TimeStep float64 `json:"timeStep" mapstructure:"timeStep"`
	MaxTime  float64 `json:"maxTime" mapstructure:"maxTime"`
}

// DefaultConfig returns 50Hz sampling over five seconds.
func DefaultConfig() Config {
	return Config{TimeStep: 0.02, MaxTime: 5}
}

// Shot is the initial condition of a forecast.
type Shot struct {
	Start    mgl64.Vec3 `json:"start"`
	Velocity mgl64.Vec3 `json:"velocity"`
	Spin     mgl64.Vec3 `json:"spin"`
}

// Forecast summarizes a predicted shot.
type Forecast struct {
	Shot          Shot       `json:"shot"`
	Landing       mgl64.Vec3 `json:"landing"`
	TimeToLanding float64    `json:"timeToLanding"`
	OnTarget      bool       `json:"onTarget"`
	Points        int        `json:"points"`
}

// Predictor is safe for concurrent use. It holds no mutable state.
type Predictor struct {
	sim *ballphysics.Simulator
	cfg Config
}

// New creates a Predictor from the ball physics tunables. Random effects
// such as knuckleball pulses are never applied to forecasts.
func New(physics ballphysics.Config, cfg Config) (*Predictor, error) {
	if !(cfg.TimeStep > 0) || !(cfg.MaxTime > 0) {
		return nil, errors.New("trajectory: time step and max time must be positive")
	}
	sim, err := ballphysics.New(physics, nil, nil)
	if err != nil {
		return nil, err
	}
	return &Predictor{sim: sim, cfg: cfg}, nil
}

// Predict lazily yields ball positions sampled every dt seconds, starting at
// start. The sequence ends at maxTime or on ground contact, in which case
// the final point is clamped to y = 0. A non-positive dt yields nothing.
func (p *Predictor) Predict(start, velocity, spin mgl64.Vec3, dt, maxTime float64) iter.Seq[mgl64.Vec3] {
	return func(yield func(mgl64.Vec3) bool) {
		if !(dt > 0) || math.IsInf(dt, 0) {
			return
		}
		ball := core.BallState{Position: start, Velocity: velocity, Spin: spin}
		if ball.Position.Y() < 0 {
			yield(vecmath.WithY(ball.Position, 0))
			return
		}
		if !yield(ball.Position) {
			return
		}
		// the start may sit on the ground, every later sample at or below
		// it is the landing
		for i := 1; float64(i)*dt < maxTime; i++ {
			ball = p.sim.Step(ball, dt, false)
			if ball.Position.Y() <= 0 {
				yield(vecmath.WithY(ball.Position, 0))
				return
			}
			if !yield(ball.Position) {
				return
			}
		}
	}
}

// Sample yields the forecast for shot with the configured sampling.
func (p *Predictor) Sample(shot Shot) iter.Seq[mgl64.Vec3] {
	return p.Predict(shot.Start, shot.Velocity, shot.Spin, p.cfg.TimeStep, p.cfg.MaxTime)
}

// Points collects the forecast into a slice.
func (p *Predictor) Points(shot Shot) []mgl64.Vec3 {
	return slices.Collect(p.Sample(shot))
}

// Landing returns the last forecast point, or the start if there is none.
func (p *Predictor) Landing(shot Shot) mgl64.Vec3 {
	landing := shot.Start
	for pt := range p.Sample(shot) {
		landing = pt
	}
	return landing
}

// TimeToLanding is the number of forecast points times the time step.
func (p *Predictor) TimeToLanding(shot Shot) float64 {
	n := 0
	for range p.Sample(shot) {
		n++
	}
	return float64(n) * p.cfg.TimeStep
}

// WillLandNear reports whether the landing point is within tolerance of target.
func (p *Predictor) WillLandNear(shot Shot, target mgl64.Vec3, tolerance float64) bool {
	return p.Landing(shot).Sub(target).Len() <= tolerance
}

// IntersectsBox reports whether any forecast point falls inside box.
func (p *Predictor) IntersectsBox(shot Shot, box core.Box) bool {
	for pt := range p.Sample(shot) {
		if box.Contains(pt) {
			return true
		}
	}
	return false
}

// Forecast runs a single forecast and summarizes it against the goal box.
func (p *Predictor) Forecast(shot Shot, goal core.Box) Forecast {
	f := Forecast{Shot: shot, Landing: shot.Start}
	for pt := range p.Sample(shot) {
		f.Points++
		f.Landing = pt
		if !f.OnTarget && goal.Contains(pt) {
			f.OnTarget = true
		}
	}
	f.TimeToLanding = float64(f.Points) * p.cfg.TimeStep
	return f
}

// EvaluateShots forecasts every candidate concurrently. Results keep the
// order of shots.
func (p *Predictor) EvaluateShots(ctx context.Context, shots []Shot, goal core.Box) ([]Forecast, error) {
	out := make([]Forecast, len(shots))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, shot := range shots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = p.Forecast(shot, goal)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// VelocityToTarget returns a launch velocity that lobs the ball from start
// to target with the apex roughly arcHeight above the straight line,
// ignoring drag and spin. gravity is the magnitude of the downward
// acceleration.
func VelocityToTarget(start, target mgl64.Vec3, arcHeight, gravity float64) (mgl64.Vec3, error) {
	d := target.Sub(start)
	flat := vecmath.Horizontal(d)
	distance := flat.Len()
	dir, ok := vecmath.SafeNormalize(flat)
	if !ok || gravity <= 0 {
		return mgl64.Vec3{}, ErrUnreachable
	}

	angle := math.Atan2(d.Y()+arcHeight, distance)
	s := math.Sin(2 * angle)
	if s <= vecmath.Epsilon {
		return mgl64.Vec3{}, ErrUnreachable
	}
	speed := math.Sqrt(gravity * distance / s)

	v := dir.Mul(speed * math.Cos(angle))
	v[1] = speed * math.Sin(angle)
	return v, nil
}
