package ballphysics

import "errors"

var (
	// ErrZeroDirection is returned when a kick or collision normal has no length.
	ErrZeroDirection = errors.New("zero-length direction")
	// ErrInvalidPower is returned for NaN, infinite or non-positive kick power.
	ErrInvalidPower = errors.New("invalid kick power")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid physics config")
)

// ErrInvalidSpin is returned when a kick carries a non-finite spin vector.
var ErrInvalidSpin = errors.New("invalid kick spin")
