package matching

import (
	"math"
)

// maxEffectiveDistanceKm is the distance at which the desirability factor
// reaches zero.
const maxEffectiveDistanceKm = 1000.0

// DistanceFactor converts a distance in kilometers into a bounded [0,1]
// desirability factor: 1.0 at or below zero distance, linearly decreasing to
// 0.0 at maxEffectiveDistanceKm. Unreachable distances (Inf, NaN) score 0.0.
func DistanceFactor(km float64) float64 {
	if math.IsInf(km, 1) || math.IsNaN(km) {
		return 0.0
	}
	if km <= 0 {
		return 1.0
	}
	return clamp01(1.0 - km/maxEffectiveDistanceKm)
}
