package rules

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickoff/matchcore/internal/vecmath"
	"github.com/kickoff/matchcore/pkg/core"
)

// Offside reports whether attacker is offside. attackDir is +1 when the
// attacker's team attacks towards +Z and -1 otherwise.
//
// Opponents are ranked along the attacking axis and the attacker is offside
// only when strictly beyond the second most advanced of them. The goalkeeper
// is ranked like any other opponent, so a goalkeeper who has left the line
// can shift the offside line.
func Offside(attacker core.PlayerAgentState, ball mgl64.Vec3, opponents []core.PlayerAgentState, attackDir float64) bool {
	if attacker.Role == core.RoleGoalkeeper {
		return false
	}
	dir := vecmath.Sign(attackDir)
	at := attacker.Position.Z() * dir

	if at <= 0 {
		return false
	}
	if at <= ball.Z()*dir {
		return false
	}
	if len(opponents) < 2 {
		return false
	}

	depth := make([]float64, len(opponents))
	for i, o := range opponents {
		depth[i] = o.Position.Z() * dir
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(depth)))

	return at > depth[1]
}

// Foul checks a pair of players for a foul. It returns the aggressor and
// the victim when the players are on opposing sides, closer than
// FoulDistance, and one is moving faster than AggressionSpeed while the other
// is slower than PassivitySpeed.
//
// This is a proximity and speed heuristic and does not model contact.
func (c Config) Foul(a, b core.PlayerAgentState) (aggressor, victim core.PlayerAgentState, ok bool) {
	if a.Side == b.Side {
		return aggressor, victim, false
	}
	if a.Position.Sub(b.Position).Len() >= c.FoulDistance {
		return aggressor, victim, false
	}
	as, bs := a.Speed(), b.Speed()
	switch {
	case as > c.AggressionSpeed && bs < c.PassivitySpeed:
		return a, b, true
	case bs > c.AggressionSpeed && as < c.PassivitySpeed:
		return b, a, true
	}
	return aggressor, victim, false
}

// OutOfBounds classifies a ball position. Past a goal line it is a goal kick
// when level with the goal area and a corner otherwise. Past a touchline it
// is a throw-in. The restart position is projected onto the nearest
// boundary feature.
func (c Config) OutOfBounds(pos mgl64.Vec3) (kind core.RestartKind, restart mgl64.Vec3, out bool) {
	x, z := pos.X(), pos.Z()
	switch {
	case math.Abs(z) > c.HalfLength:
		if math.Abs(x) < c.GoalAreaHalfWidth {
			return core.RestartGoalKick, mgl64.Vec3{0, 0, vecmath.Sign(z) * c.GoalKickLine}, true
		}
		return core.RestartCornerKick, mgl64.Vec3{vecmath.Sign(x) * c.HalfWidth, 0, vecmath.Sign(z) * c.HalfLength}, true
	case math.Abs(x) > c.HalfWidth:
		return core.RestartThrowIn, mgl64.Vec3{vecmath.Sign(x) * c.HalfWidth, 0, z}, true
	}
	return 0, mgl64.Vec3{}, false
}
