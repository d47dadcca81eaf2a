package match

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickoff/matchcore/pkg/core"
)

// GoalDetector holds the two goal volumes behind each goal line.
type GoalDetector struct {
	positive core.Box // behind the line at +Z
	negative core.Box // behind the line at -Z
}

// NewGoalDetector builds the goal boxes for a pitch whose goal lines sit
// at ±halfLength.
func NewGoalDetector(cfg Config, halfLength float64) GoalDetector {
	w := cfg.GoalWidth / 2
	return GoalDetector{
		positive: core.Box{
			Min: mgl64.Vec3{-w, 0, halfLength},
			Max: mgl64.Vec3{w, cfg.CrossbarHeight, halfLength + cfg.GoalDepth},
		},
		negative: core.Box{
			Min: mgl64.Vec3{-w, 0, -halfLength - cfg.GoalDepth},
			Max: mgl64.Vec3{w, cfg.CrossbarHeight, -halfLength},
		},
	}
}

// Box returns the goal volume at the end given by sign(end).
func (g GoalDetector) Box(end float64) core.Box {
	if end < 0 {
		return g.negative
	}
	return g.positive
}

// Check reports which end, +1 or -1, has the ball inside its goal.
func (g GoalDetector) Check(pos mgl64.Vec3) (end float64, ok bool) {
	switch {
	case g.positive.Contains(pos):
		return 1, true
	case g.negative.Contains(pos):
		return -1, true
	}
	return 0, false
}

// Crossed reports which end's goal mouth the segment from prev to cur passed
// through. Large ticks can carry a shot clean over the goal volume, so the
// crossing point on the goal line is checked against the posts and bar.
func (g GoalDetector) Crossed(prev, cur mgl64.Vec3) (end float64, ok bool) {
	for _, end := range [2]float64{1, -1} {
		box := g.Box(end)
		line := box.Min.Z()
		if end < 0 {
			line = box.Max.Z()
		}
		a, b := end*(prev.Z()-line), end*(cur.Z()-line)
		if a > 0 || b < 0 {
			continue
		}
		t := 1.0
		if b != a {
			t = a / (a - b)
		}
		hit := prev.Add(cur.Sub(prev).Mul(t))
		if hit.X() >= box.Min.X() && hit.X() <= box.Max.X() &&
			hit.Y() >= box.Min.Y() && hit.Y() <= box.Max.Y() {
			return end, true
		}
	}
	return 0, false
}
