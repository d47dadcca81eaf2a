// Package ballphysics advances the match ball one fixed tick at a time and
// resolves its collisions with the ground, the woodwork and players.
package ballphysics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickoff/matchcore/internal/vecmath"
	"github.com/kickoff/matchcore/pkg/core"
)

const (
	// MinPower and MaxPower bound the normalized kick power.
	MinPower = 0.1
	MaxPower = 2.0

	// Magnus is skipped below these magnitudes so normalize stays stable.
	MinMagnusSpin  = 0.1
	MinMagnusSpeed = 1.0

	spinRestThreshold = 1e-6
)

// RandSource supplies uniform values in [0, 1). *rand.Rand from math/rand/v2
// satisfies it.
type RandSource interface {
	Float64() float64
}

// EffectKind tells the effects hook what happened to the ball.
type EffectKind uint8

const (
	EffectKick EffectKind = iota
	EffectGroundBounce
	EffectPostHit
	EffectPlayerTouch
)

// Effect is handed to the audio/VFX collaborator. It never feeds back into
// the physical state.
type Effect struct {
	Kind     EffectKind
	Position mgl64.Vec3
	Speed    float64
	BodyPart core.BodyPart
}

// EffectFunc receives effects synchronously from the simulator.
type EffectFunc func(Effect)

// Simulator is stateless between calls apart from its random source. It is
// owned by a single match session.
type Simulator struct {
	cfg     Config
	rng     RandSource
	effects EffectFunc
}

// New creates a Simulator. rng may be nil, in which case post spin kicks and
// knuckleball pulses are not applied. effects may be nil.
func New(cfg Config, rng RandSource, effects EffectFunc) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{cfg: cfg, rng: rng, effects: effects}, nil
}

// Config returns the simulator's tunables.
func (s *Simulator) Config() Config {
	return s.cfg
}

// AtRest returns a motionless grounded ball at pos.
func AtRest(pos mgl64.Vec3) core.BallState {
	return core.BallState{Position: pos, Grounded: true}
}

// Step advances state by dt seconds. A non-positive or non-finite dt
// returns state unchanged.
func (s *Simulator) Step(state core.BallState, dt float64, grounded bool) core.BallState {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return state
	}

	next := state
	next.Grounded = grounded
	v := state.Velocity

	if !grounded {
		v = v.Mul(vecmath.DecayFactor(s.cfg.AirResistance, dt))
	}

	if state.Spin.Len() > MinMagnusSpin && v.Len() > MinMagnusSpeed {
		if dir, ok := vecmath.SafeNormalize(v); ok {
			force := state.Spin.Cross(dir).Mul(s.cfg.MagnusStrength * s.falloff(state.SinceKick))
			v = v.Add(force.Mul(dt))
		}
	}

	if grounded {
		h := vecmath.Horizontal(v).Mul(vecmath.DecayFactor(s.cfg.frictionFor(state.Surface), dt))
		v = vecmath.WithY(h, v.Y())
	}

	next.Spin = state.Spin.Mul(vecmath.DecayFactor(s.cfg.SpinDecay, dt))
	if next.Spin.Len() < spinRestThreshold {
		next.Spin = mgl64.Vec3{}
	}

	next.SinceKick = state.SinceKick + dt
	v = s.knuckle(&next, v)

	if !grounded {
		v[1] += s.cfg.Gravity * dt
	}
	next.Velocity = v
	next.Position = state.Position.Add(v.Mul(dt))
	return next
}

// falloff is the Magnus strength multiplier, falling linearly from 1 at the
// kick to 0 at the end of the window.
func (s *Simulator) falloff(sinceKick float64) float64 {
	return vecmath.Clamp(1-sinceKick/s.cfg.MagnusWindow, 0, 1)
}

func (s *Simulator) knuckle(next *core.BallState, v mgl64.Vec3) mgl64.Vec3 {
	k := &next.Knuckle
	for k.Remaining > 0 && next.SinceKick >= k.NextAt {
		if s.rng == nil {
			*k = core.KnuckleSchedule{}
			break
		}
		spread := s.cfg.KnuckleSpread
		v = v.Add(mgl64.Vec3{
			s.uniform(spread[0]),
			s.uniform(spread[1]),
			s.uniform(spread[2]),
		})
		k.Remaining--
		k.NextAt += s.cfg.KnuckleInterval
	}
	return v
}

// uniform draws from [-bound, bound].
func (s *Simulator) uniform(bound float64) float64 {
	return -bound + 2*bound*s.rng.Float64()
}

// Kick applies a strike to the ball. The direction is normalized and power
// is clamped to [MinPower, MaxPower]. An invalid command leaves the ball
// untouched and returns an error.
func (s *Simulator) Kick(state core.BallState, cmd core.KickCommand) (core.BallState, error) {
	dir, ok := vecmath.SafeNormalize(cmd.Direction)
	if !ok {
		return state, ErrZeroDirection
	}
	if math.IsNaN(cmd.Power) || math.IsInf(cmd.Power, 0) || cmd.Power <= 0 {
		return state, fmt.Errorf("%w: %v", ErrInvalidPower, cmd.Power)
	}
	if !vecmath.IsFinite(cmd.Spin) {
		return state, ErrInvalidSpin
	}

	power := vecmath.Clamp(cmd.Power, MinPower, MaxPower)
	next := state
	next.Velocity = dir.Mul(power * s.cfg.ImpulseScale)
	if cmd.Spin.Len() > vecmath.Epsilon {
		next.Spin = cmd.Spin.Mul(s.cfg.CurveMultiplier)
	}
	next.Grounded = stillGrounded(next)
	next.SinceKick = 0
	next.Knuckle = core.KnuckleSchedule{}

	s.emit(Effect{Kind: EffectKick, Position: next.Position, Speed: next.Speed()})
	return next, nil
}

// CurveSpin returns the preset spin for a curve type. Knuckleballs carry no
// spin; their movement comes from scheduled pulses.
func CurveSpin(curve core.CurveType) mgl64.Vec3 {
	switch curve {
	case core.CurveRight:
		return mgl64.Vec3{0, 0, -1}
	case core.CurveLeft:
		return mgl64.Vec3{0, 0, 1}
	case core.CurveUp:
		return mgl64.Vec3{-1, 0, 0}
	case core.CurveDown:
		return mgl64.Vec3{1, 0, 0}
	default:
		return mgl64.Vec3{}
	}
}

// ShootWithCurve kicks the ball with a preset spin. A knuckleball schedules
// random velocity pulses that Step applies at fixed intervals.
func (s *Simulator) ShootWithCurve(state core.BallState, dir mgl64.Vec3, power float64, curve core.CurveType) (core.BallState, error) {
	next, err := s.Kick(state, core.KickCommand{Direction: dir, Power: power, Spin: CurveSpin(curve)})
	if err != nil {
		return state, err
	}
	if curve == core.CurveKnuckleball && s.cfg.KnucklePulses > 0 {
		next.Knuckle = core.KnuckleSchedule{
			Remaining: s.cfg.KnucklePulses,
			NextAt:    s.cfg.KnuckleInterval,
		}
	}
	return next, nil
}

// CollideGround reflects the ball off the ground about normal and applies
// the ground restitution.
func (s *Simulator) CollideGround(state core.BallState, normal mgl64.Vec3) (core.BallState, error) {
	n, ok := vecmath.SafeNormalize(normal)
	if !ok {
		return state, ErrZeroDirection
	}
	next := state
	next.Velocity = vecmath.Reflect(state.Velocity, n).Mul(s.cfg.GroundRestitution)
	s.emit(Effect{Kind: EffectGroundBounce, Position: next.Position, Speed: next.Speed()})
	return next, nil
}

// CollidePost reflects the ball off a post or the crossbar. The woodwork
// is livelier than the ground and adds a bounded random spin on each axis.
func (s *Simulator) CollidePost(state core.BallState, normal mgl64.Vec3) (core.BallState, error) {
	n, ok := vecmath.SafeNormalize(normal)
	if !ok {
		return state, ErrZeroDirection
	}
	next := state
	next.Velocity = vecmath.Reflect(state.Velocity, n).Mul(s.cfg.PostRestitution)
	if s.rng != nil {
		k := s.cfg.PostSpinKick
		next.Spin = next.Spin.Add(mgl64.Vec3{s.uniform(k), s.uniform(k), s.uniform(k)})
	}
	next.Grounded = stillGrounded(next)
	s.emit(Effect{Kind: EffectPostHit, Position: next.Position, Speed: next.Speed()})
	return next, nil
}

// BodyPartFor picks the body part touching the ball from the ball height
// relative to the player's feet.
func (s *Simulator) BodyPartFor(ballY float64, player core.PlayerAgentState) core.BodyPart {
	rel := ballY - player.Position.Y()
	switch {
	case rel > s.cfg.HeadHeight:
		return core.BodyHead
	case rel > s.cfg.ChestHeight:
		return core.BodyChest
	default:
		return core.BodyFoot
	}
}

// CollidePlayer resolves contact between the ball and a player. Headers
// push the ball down, chest traps halve its speed and foot touches scale
// it up by the player's skill.
func (s *Simulator) CollidePlayer(state core.BallState, player core.PlayerAgentState) (core.BallState, core.BodyPart) {
	part := s.BodyPartFor(state.Position.Y(), player)
	next := state
	switch part {
	case core.BodyHead:
		next.Velocity = state.Velocity.Add(core.Up.Mul(-s.cfg.HeaderImpulse))
	case core.BodyChest:
		next.Velocity = state.Velocity.Mul(s.cfg.ChestDamping)
	default:
		next.Velocity = state.Velocity.Mul(1 + player.Skill*s.cfg.SkillFactor)
	}
	next.Grounded = stillGrounded(next)
	s.emit(Effect{Kind: EffectPlayerTouch, Position: next.Position, Speed: next.Speed(), BodyPart: part})
	return next, part
}

// stillGrounded reports whether a grounded ball stays on the pitch after a
// contact. Any vertical speed lifts it off.
func stillGrounded(b core.BallState) bool {
	return b.Grounded && b.Velocity.Y() == 0
}

func (s *Simulator) emit(e Effect) {
	if s.effects != nil {
		s.effects(e)
	}
}
