// Package geo provides geodesic distance computation between coordinates.
package geo

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// HaversineCalculator computes great-circle distance between two points on
// the earth's surface. It satisfies domain.DistanceCalculator.
type HaversineCalculator struct{}

// NewHaversineCalculator creates a new haversine distance calculator.
func NewHaversineCalculator() *HaversineCalculator {
	return &HaversineCalculator{}
}

// DistanceKm returns the great-circle distance in kilometers. Coordinates
// outside valid ranges or non-finite inputs return an error; callers map
// errors to an unreachable distance rather than failing the request.
func (c *HaversineCalculator) DistanceKm(lat1, lon1, lat2, lon2 float64) (float64, error) {
	for _, v := range []float64{lat1, lon1, lat2, lon2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("non-finite coordinate: %v", v)
		}
	}
	if math.Abs(lat1) > 90 || math.Abs(lat2) > 90 {
		return 0, fmt.Errorf("latitude out of range: %v, %v", lat1, lat2)
	}
	if math.Abs(lon1) > 180 || math.Abs(lon2) > 180 {
		return 0, fmt.Errorf("longitude out of range: %v, %v", lon1, lon2)
	}

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a)), nil
}
