package match

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned for unusable session settings.
var ErrInvalidConfig = errors.New("invalid match config")

// Config holds the session settings that are not physics or rules.
type Config struct {
	HalfDuration time.Duration `json:"halfDuration" mapstructure:"halfDuration"`
	SampleEvery  int           `json:"sampleEvery" mapstructure:"sampleEvery"` // publish a ball sample every N ticks, 0 disables

	GoalWidth      float64 `json:"goalWidth" mapstructure:"goalWidth"`
	CrossbarHeight float64 `json:"crossbarHeight" mapstructure:"crossbarHeight"`
	GoalDepth      float64 `json:"goalDepth" mapstructure:"goalDepth"`

	// SettleSpeed is the rebound speed below which a landing ball stops
	// bouncing and rolls.
	SettleSpeed float64 `json:"settleSpeed" mapstructure:"settleSpeed"`
	Surface     string  `json:"surface" mapstructure:"surface"`
}

// DefaultConfig returns a full-length match on grass.
func DefaultConfig() Config {
	return Config{
		HalfDuration:   45 * time.Minute,
		SampleEvery:    6,
		GoalWidth:      7.32,
		CrossbarHeight: 2.44,
		GoalDepth:      2,
		SettleSpeed:    0.5,
		Surface:        "grass",
	}
}

// Validate checks the session settings.
func (c Config) Validate() error {
	switch {
	case c.HalfDuration <= 0:
		return fmt.Errorf("%w: halfDuration must be positive", ErrInvalidConfig)
	case c.SampleEvery < 0:
		return fmt.Errorf("%w: sampleEvery must not be negative", ErrInvalidConfig)
	case c.GoalWidth <= 0 || c.CrossbarHeight <= 0 || c.GoalDepth <= 0:
		return fmt.Errorf("%w: goal dimensions must be positive", ErrInvalidConfig)
	case c.SettleSpeed < 0:
		return fmt.Errorf("%w: settleSpeed must not be negative", ErrInvalidConfig)
	}
	return nil
}
