package match

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestGoalDetector_Check(t *testing.T) {
	g := NewGoalDetector(DefaultConfig(), 50)

	end, ok := g.Check(mgl64.Vec3{0, 1, 51})
	assert.True(t, ok)
	assert.Equal(t, 1.0, end)

	end, ok = g.Check(mgl64.Vec3{-3, 0, -50.5})
	assert.True(t, ok)
	assert.Equal(t, -1.0, end)

	_, ok = g.Check(mgl64.Vec3{0, 1, 53})
	assert.False(t, ok, "behind the net")
}

func TestGoalDetector_Crossed(t *testing.T) {
	g := NewGoalDetector(DefaultConfig(), 50)

	tests := []struct {
		name      string
		prev, cur mgl64.Vec3
		end       float64
		ok        bool
	}{
		{"through the mouth past the net", mgl64.Vec3{0, 1, 45}, mgl64.Vec3{0, 0.4, 53}, 1, true},
		{"into the far goal", mgl64.Vec3{2, 0.5, -46}, mgl64.Vec3{2, 0.5, -55}, -1, true},
		{"wide of the post", mgl64.Vec3{3, 1, 45}, mgl64.Vec3{6, 1, 55}, 0, false},
		{"over the bar", mgl64.Vec3{0, 2, 45}, mgl64.Vec3{0, 3.5, 55}, 0, false},
		{"dips under the bar at the line", mgl64.Vec3{0, 3, 46}, mgl64.Vec3{0, 1, 54}, 1, true},
		{"short of the line", mgl64.Vec3{0, 1, 40}, mgl64.Vec3{0, 1, 49.9}, 0, false},
		{"coming back out", mgl64.Vec3{0, 1, 53}, mgl64.Vec3{0, 1, 45}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end, ok := g.Crossed(tt.prev, tt.cur)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.end, end)
		})
	}
}
