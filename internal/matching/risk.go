package matching

const (
	riskMaxAge            = 100.0
	riskMaxComorbidities  = 5.0
	riskAgeWeight         = 0.6
	riskComorbidityWeight = 0.4
)

// Risk computes an age/comorbidity risk score in [0,1]; higher means
// riskier. The age term is squared so risk accelerates with age. The same
// formula applies to donors and recipients.
func Risk(age float64, comorbidities int) float64 {
	ageScore := (age / riskMaxAge) * (age / riskMaxAge)
	comorbidityScore := float64(comorbidities) / riskMaxComorbidities

	return clamp01(riskAgeWeight*ageScore + riskComorbidityWeight*comorbidityScore)
}

// RiskFactor converts a risk score into a desirability factor: lower risk,
// higher factor.
func RiskFactor(age float64, comorbidities int) float64 {
	return 1.0 - Risk(age, comorbidities)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
