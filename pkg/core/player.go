// pkg/core/player.go
package core

import "github.com/go-gl/mathgl/mgl64"

// Side identifies which of the two teams in a match a player belongs to.
type Side uint8

const (
	SideHome Side = iota + 1
	SideAway
)

func (s Side) String() string {
	switch s {
	case SideHome:
		return "home"
	case SideAway:
		return "away"
	default:
		return "unknown"
	}
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

// Role is a player's tactical position.
type Role uint8

const (
	RoleGoalkeeper Role = iota
	RoleBack
	RoleMidfield
	RoleWing
	RoleStriker
)

func (r Role) String() string {
	switch r {
	case RoleGoalkeeper:
		return "goalkeeper"
	case RoleBack:
		return "back"
	case RoleMidfield:
		return "midfield"
	case RoleWing:
		return "wing"
	case RoleStriker:
		return "striker"
	default:
		return "unknown"
	}
}

// PlayerAgentState is the read-only view of a player the rule engine and
// collision response consume. It is owned by the movement/AI layer.
type PlayerAgentState struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Side     Side       `json:"side"`
	Role     Role       `json:"role"`
	Position mgl64.Vec3 `json:"position"` // feet, y = 0 on the pitch
	Velocity mgl64.Vec3 `json:"velocity"`
	Skill    float64    `json:"skill"` // overall rating, 0-100
}

// Speed returns the magnitude of the player's velocity.
func (p PlayerAgentState) Speed() float64 {
	return p.Velocity.Len()
}
