// pkg/core/ball.go
package core

import "github.com/go-gl/mathgl/mgl64"

// Up is the world up axis. The pitch lies in the X/Z plane.
var Up = mgl64.Vec3{0, 1, 0}

// BallState is the physical state of the match ball.
type BallState struct {
	Position mgl64.Vec3 `json:"position"`
	Velocity mgl64.Vec3 `json:"velocity"`
	Spin     mgl64.Vec3 `json:"spin"`
	Grounded bool       `json:"grounded"`
	Surface  Surface    `json:"surface"`

	// SinceKick drives the Magnus falloff curve. Reset to zero by every kick.
	SinceKick float64 `json:"sinceKick"`

	// Knuckle holds the pending knuckleball pulses, if any.
	Knuckle KnuckleSchedule `json:"knuckle"`
}

// KnuckleSchedule is a countdown of random velocity pulses applied at fixed
// intervals after a knuckleball strike.
type KnuckleSchedule struct {
	Remaining int     `json:"remaining"`
	NextAt    float64 `json:"nextAt"` // value of SinceKick at which the next pulse fires
}

// Speed returns the magnitude of the ball velocity.
func (b BallState) Speed() float64 {
	return b.Velocity.Len()
}

// SpinRate returns the magnitude of the spin vector.
func (b BallState) SpinRate() float64 {
	return b.Spin.Len()
}

// IsMoving reports whether the ball moves faster than 0.1 m/s.
func (b BallState) IsMoving() bool {
	return b.Speed() > 0.1
}

// KickCommand is a single strike of the ball produced by the player-control layer.
type KickCommand struct {
	Direction mgl64.Vec3 `json:"direction"`
	Power     float64    `json:"power"` // normalized, clamped to [0.1, 2.0]
	Spin      mgl64.Vec3 `json:"spin"`
}

// CurveType selects a preset spin for curved shots.
type CurveType uint8

const (
	CurveNone CurveType = iota
	CurveRight
	CurveLeft
	CurveUp
	CurveDown
	CurveKnuckleball
)

func (c CurveType) String() string {
	switch c {
	case CurveRight:
		return "right"
	case CurveLeft:
		return "left"
	case CurveUp:
		return "up"
	case CurveDown:
		return "down"
	case CurveKnuckleball:
		return "knuckleball"
	default:
		return "none"
	}
}

// BodyPart is the part of a player's body that touched the ball.
type BodyPart uint8

const (
	BodyFoot BodyPart = iota
	BodyChest
	BodyHead
)

func (p BodyPart) String() string {
	switch p {
	case BodyHead:
		return "head"
	case BodyChest:
		return "chest"
	default:
		return "foot"
	}
}

// Surface is the ground material under the ball.
type Surface uint8

const (
	SurfaceGrass Surface = iota
	SurfaceDirt
	SurfaceConcrete
)

func (s Surface) String() string {
	switch s {
	case SurfaceDirt:
		return "dirt"
	case SurfaceConcrete:
		return "concrete"
	default:
		return "grass"
	}
}

// ParseSurface maps a ground tag to a Surface. Unknown tags are grass.
func ParseSurface(tag string) Surface {
	switch tag {
	case "Dirt", "dirt":
		return SurfaceDirt
	case "Concrete", "concrete":
		return SurfaceConcrete
	default:
		return SurfaceGrass
	}
}

// Box is an axis-aligned bounding volume.
type Box struct {
	Min mgl64.Vec3 `json:"min"`
	Max mgl64.Vec3 `json:"max"`
}

// Contains reports whether p lies inside the box, boundaries included.
func (b Box) Contains(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// BallSample is a telemetry snapshot of the ball during a match.
type BallSample struct {
	MatchID string    `json:"matchId"`
	Tick    uint64    `json:"tick"`
	Clock   float64   `json:"clock"` // match seconds
	Ball    BallState `json:"ball"`
}
