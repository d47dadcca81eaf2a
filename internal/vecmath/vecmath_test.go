package vecmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestDecayFactorIsRateIndependent(t *testing.T) {
	// one second at 60Hz and at 120Hz must decay by the same amount
	at60 := math.Pow(DecayFactor(0.98, 1.0/60), 60)
	at120 := math.Pow(DecayFactor(0.98, 1.0/120), 120)
	assert.InDelta(t, at60, at120, 1e-12)
	assert.InDelta(t, 0.98, DecayFactor(0.98, 1.0/60), 1e-12)
}

func TestSafeNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   mgl64.Vec3
		ok   bool
	}{
		{"unit", mgl64.Vec3{0, 0, 1}, true},
		{"long", mgl64.Vec3{3, 4, 0}, true},
		{"zero", mgl64.Vec3{}, false},
		{"tiny", mgl64.Vec3{1e-12, 0, 0}, false},
		{"nan", mgl64.Vec3{math.NaN(), 0, 0}, false},
		{"inf", mgl64.Vec3{math.Inf(1), 0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := SafeNormalize(tt.in)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, 1.0, n.Len(), 1e-12)
			} else {
				assert.Equal(t, mgl64.Vec3{}, n)
			}
		})
	}
}

func TestReflect(t *testing.T) {
	v := mgl64.Vec3{3, -4, 0}
	r := Reflect(v, mgl64.Vec3{0, 1, 0})
	assert.Equal(t, mgl64.Vec3{3, 4, 0}, r)
	assert.InDelta(t, v.Len(), r.Len(), 1e-12)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, mgl64.Vec3{1, 0, 3}, Horizontal(mgl64.Vec3{1, 2, 3}))
	assert.Equal(t, mgl64.Vec3{1, 9, 3}, WithY(mgl64.Vec3{1, 2, 3}, 9))
	assert.Equal(t, 2.0, Clamp(5, 0.1, 2))
	assert.Equal(t, 0.1, Clamp(-1, 0.1, 2))
	assert.Equal(t, 1.0, Sign(0))
	assert.Equal(t, -1.0, Sign(-0.5))
	assert.True(t, IsFinite(mgl64.Vec3{1, 2, 3}))
	assert.False(t, IsFinite(mgl64.Vec3{1, math.NaN(), 3}))
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, Lerp(mgl64.Vec3{}, mgl64.Vec3{2, 2, 2}, 0.5))
}
