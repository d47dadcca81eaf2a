package rules

import (
	"fmt"
	"time"
)

// Config holds the pitch geometry, foul heuristic thresholds and the
// length of each stoppage.
type Config struct {
	HalfWidth         float64 `json:"halfWidth" mapstructure:"halfWidth"`
	HalfLength        float64 `json:"halfLength" mapstructure:"halfLength"`
	GoalAreaHalfWidth float64 `json:"goalAreaHalfWidth" mapstructure:"goalAreaHalfWidth"`
	GoalKickLine      float64 `json:"goalKickLine" mapstructure:"goalKickLine"` // distance from the centre spot

	FoulDistance    float64 `json:"foulDistance" mapstructure:"foulDistance"`
	AggressionSpeed float64 `json:"aggressionSpeed" mapstructure:"aggressionSpeed"`
	PassivitySpeed  float64 `json:"passivitySpeed" mapstructure:"passivitySpeed"`

	FoulDelay    time.Duration `json:"foulDelay" mapstructure:"foulDelay"`
	OffsideDelay time.Duration `json:"offsideDelay" mapstructure:"offsideDelay"`
	RestartDelay time.Duration `json:"restartDelay" mapstructure:"restartDelay"`
}

// DefaultConfig returns the rules for a 60 by 100 pitch.
func DefaultConfig() Config {
	return Config{
		HalfWidth:         30,
		HalfLength:        50,
		GoalAreaHalfWidth: 7.32,
		GoalKickLine:      45,
		FoulDistance:      1.5,
		AggressionSpeed:   5,
		PassivitySpeed:    2,
		FoulDelay:         2 * time.Second,
		OffsideDelay:      2 * time.Second,
		RestartDelay:      time.Second,
	}
}

// Validate checks the geometry and thresholds.
func (c Config) Validate() error {
	switch {
	case c.HalfWidth <= 0 || c.HalfLength <= 0:
		return fmt.Errorf("rules: pitch dimensions must be positive")
	case c.GoalAreaHalfWidth <= 0 || c.GoalAreaHalfWidth >= c.HalfWidth:
		return fmt.Errorf("rules: goal area must fit inside the pitch width")
	case c.GoalKickLine <= 0 || c.GoalKickLine > c.HalfLength:
		return fmt.Errorf("rules: goal kick line must be inside the pitch")
	case c.FoulDistance <= 0:
		return fmt.Errorf("rules: foul distance must be positive")
	case c.PassivitySpeed > c.AggressionSpeed:
		return fmt.Errorf("rules: passivity speed above aggression speed")
	case c.FoulDelay < 0 || c.OffsideDelay < 0 || c.RestartDelay < 0:
		return fmt.Errorf("rules: negative stoppage delay")
	}
	return nil
}
