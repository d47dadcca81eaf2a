package ballphysics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickoff/matchcore/pkg/core"
)

// Config holds the ball physics tunables. Decay constants are per tick at
// 60Hz and are rescaled to the actual tick length.
type Config struct {
	Gravity         float64 `json:"gravity" mapstructure:"gravity"`
	AirResistance   float64 `json:"airResistance" mapstructure:"airResistance"`
	GroundFriction  float64 `json:"groundFriction" mapstructure:"groundFriction"`
	SpinDecay       float64 `json:"spinDecay" mapstructure:"spinDecay"`
	MagnusStrength  float64 `json:"magnusStrength" mapstructure:"magnusStrength"`
	MagnusWindow    float64 `json:"magnusWindow" mapstructure:"magnusWindow"` // seconds until curve falloff reaches zero
	CurveMultiplier float64 `json:"curveMultiplier" mapstructure:"curveMultiplier"`
	ImpulseScale    float64 `json:"impulseScale" mapstructure:"impulseScale"` // m/s per unit of kick power

	GroundRestitution float64 `json:"groundRestitution" mapstructure:"groundRestitution"`
	PostRestitution   float64 `json:"postRestitution" mapstructure:"postRestitution"`
	PostSpinKick      float64 `json:"postSpinKick" mapstructure:"postSpinKick"` // max random spin per axis after hitting the woodwork

	HeadHeight    float64 `json:"headHeight" mapstructure:"headHeight"`
	ChestHeight   float64 `json:"chestHeight" mapstructure:"chestHeight"`
	HeaderImpulse float64 `json:"headerImpulse" mapstructure:"headerImpulse"` // downward m/s added by a header
	ChestDamping  float64 `json:"chestDamping" mapstructure:"chestDamping"`
	SkillFactor   float64 `json:"skillFactor" mapstructure:"skillFactor"`

	KnucklePulses   int        `json:"knucklePulses" mapstructure:"knucklePulses"`
	KnuckleInterval float64    `json:"knuckleInterval" mapstructure:"knuckleInterval"`
	KnuckleSpread   mgl64.Vec3 `json:"knuckleSpread" mapstructure:"knuckleSpread"` // max velocity change per axis per pulse

	// SurfaceFriction overrides GroundFriction per surface, keyed by surface
	// name. Surfaces without an entry use GroundFriction.
	SurfaceFriction map[string]float64 `json:"surfaceFriction" mapstructure:"surfaceFriction"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		Gravity:           -9.8,
		AirResistance:     0.98,
		GroundFriction:    0.92,
		SpinDecay:         0.95,
		MagnusStrength:    2.0,
		MagnusWindow:      3.0,
		CurveMultiplier:   1.5,
		ImpulseScale:      20.0,
		GroundRestitution: 0.7,
		PostRestitution:   0.8,
		PostSpinKick:      2.0,
		HeadHeight:        1.5,
		ChestHeight:       0.8,
		HeaderImpulse:     3.0,
		ChestDamping:      0.5,
		SkillFactor:       0.01,
		KnucklePulses:     10,
		KnuckleInterval:   0.1,
		KnuckleSpread:     mgl64.Vec3{2.5, 1.0, 2.5},
		SurfaceFriction: map[string]float64{
			core.SurfaceDirt.String():     0.88,
			core.SurfaceConcrete.String(): 0.95,
		},
	}
}

// Validate checks that every tunable is in a usable range.
func (c Config) Validate() error {
	unit := func(name string, v float64) error {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in (0, 1], got %v", ErrInvalidConfig, name, v)
		}
		return nil
	}
	for name, v := range map[string]float64{
		"airResistance":     c.AirResistance,
		"groundFriction":    c.GroundFriction,
		"spinDecay":         c.SpinDecay,
		"groundRestitution": c.GroundRestitution,
		"postRestitution":   c.PostRestitution,
	} {
		if err := unit(name, v); err != nil {
			return err
		}
	}
	for name, v := range c.SurfaceFriction {
		if err := unit("surfaceFriction."+name, v); err != nil {
			return err
		}
	}
	if c.MagnusWindow <= 0 {
		return fmt.Errorf("%w: magnusWindow must be positive", ErrInvalidConfig)
	}
	if c.ImpulseScale <= 0 {
		return fmt.Errorf("%w: impulseScale must be positive", ErrInvalidConfig)
	}
	if c.ChestHeight >= c.HeadHeight {
		return fmt.Errorf("%w: chestHeight must be below headHeight", ErrInvalidConfig)
	}
	if c.KnucklePulses < 0 || (c.KnucklePulses > 0 && c.KnuckleInterval <= 0) {
		return fmt.Errorf("%w: knuckle schedule", ErrInvalidConfig)
	}
	return nil
}

// frictionFor returns the per-tick ground friction for a surface.
func (c Config) frictionFor(s core.Surface) float64 {
	if f, ok := c.SurfaceFriction[s.String()]; ok {
		return f
	}
	return c.GroundFriction
}
