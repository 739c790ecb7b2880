package matching

import (
	"github.com/organ-match-server/internal/domain"
)

// AssessDonorHealth produces a 0-100 donor quality score used by donor
// incentive programs. It is rule based and independent of match scoring:
// it never feeds the composite match score.
//
// The score starts at 100 and subtracts organ-specific and general age
// penalties, comorbidity penalties, lifestyle penalties, and for kidneys
// lab-derived penalties.
func AssessDonorHealth(age float64, organType domain.OrganType, comorbidities int, lifestyle *domain.LifestyleFactors, labs *domain.LabResults) float64 {
	score := 100.0

	// Organ-specific age penalties
	switch organType {
	case domain.Kidney:
		if age > 60 {
			score -= (age - 60) * 1.5
		} else if age > 50 {
			score -= (age - 50) * 1.0
		}
	case domain.Liver:
		if age > 55 {
			score -= (age - 55) * 1.5
		}
	case domain.Heart:
		if age > 50 {
			score -= (age - 50) * 2.0
		}
	}

	// General age penalties
	if age > 70 {
		score -= 20
	} else if age < 20 {
		score -= 5
	}

	score -= float64(comorbidities) * 10

	if lifestyle != nil {
		if lifestyle.Smoker {
			score -= 15
		}
		switch lifestyle.AlcoholConsumption {
		case "high":
			score -= 10
		case "moderate":
			score -= 5
		}
		if lifestyle.BMI != nil {
			if *lifestyle.BMI > 30 {
				score -= 10
			} else if *lifestyle.BMI < 18.5 {
				score -= 5
			}
		}
	}

	// Lab-derived penalties apply to kidneys only
	if labs != nil && organType == domain.Kidney {
		if labs.Creatinine != nil && *labs.Creatinine > 1.2 {
			score -= (*labs.Creatinine - 1.2) * 20
		}
		if labs.GFR != nil && *labs.GFR < 60 {
			score -= (60 - *labs.GFR) * 0.5
		}
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
