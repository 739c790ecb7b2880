package matching

import (
	"math"
)

// WeightSet defines the relative importance of each weighted factor. Blood
// compatibility carries weight 1.0 but acts only as a gate; it contributes
// nothing to the weighted sum once passed.
type WeightSet struct {
	BloodCompatibility float64
	HLA                float64
	DonorRisk          float64
	RecipientRisk      float64
	Distance           float64
	GraftViability     float64
	RecipientUrgency   float64
}

// DefaultWeights returns the configured weight distribution.
func DefaultWeights() WeightSet {
	return WeightSet{
		BloodCompatibility: 1.0,
		HLA:                0.30,
		DonorRisk:          0.15,
		RecipientRisk:      0.10,
		Distance:           0.15,
		GraftViability:     0.20,
		RecipientUrgency:   0.10,
	}
}

// ActiveSum returns the sum of the six weighted (non-gate) factors.
func (w WeightSet) ActiveSum() float64 {
	return w.HLA + w.DonorRisk + w.RecipientRisk + w.Distance + w.GraftViability + w.RecipientUrgency
}

const weightSumEpsilon = 1e-9

// Normalize divides a raw weighted sum by the active-weight total when it
// differs from 1.0. The default table sums to exactly 1.00, so this is a
// hook for future configurable weight sets.
func (w WeightSet) Normalize(raw float64) float64 {
	sum := w.ActiveSum()
	if sum == 0 || math.Abs(sum-1.0) <= weightSumEpsilon {
		return raw
	}
	return raw / sum
}
