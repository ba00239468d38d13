package cape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a float64 world-space vector. World space is Y-up.
type Vec3 = mgl64.Vec3

// Up is the fallback push-out direction for degenerate collision normals.
var Up = Vec3{0, 1, 0}

func V3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Finite reports whether every component is a finite number.
func Finite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
