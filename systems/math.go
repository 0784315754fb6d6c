package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// clampLength scales v down so its norm is at most maxLen.
func clampLength(v r2.Vec, maxLen float64) (r2.Vec, bool) {
	n2 := r2.Norm2(v)
	if n2 <= maxLen*maxLen {
		return v, false
	}
	return r2.Scale(maxLen/math.Sqrt(n2), v), true
}

// normalizeOrZero returns v with unit length, or the zero vector when v has no direction.
func normalizeOrZero(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}
