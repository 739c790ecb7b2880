package viability

import (
	"fmt"

	"github.com/organ-match-server/internal/domain"
)

// featureValues flattens a FeatureRow into name-keyed numeric and
// categorical values using the canonical schema names.
func featureValues(row *domain.FeatureRow) (numeric map[string]float64, categorical map[string]string) {
	numeric = map[string]float64{
		"donor_age":                row.DonorAge,
		"recipient_age":            row.RecipientAge,
		"donor_comorbidities":      float64(row.DonorComorbidities),
		"recipient_comorbidities":  float64(row.RecipientComorbidities),
		"cold_ischemia_time_hours": row.ColdIschemiaTimeHours,
		"distance_km":              row.DistanceKm,
		"hla_mismatches_count":     float64(row.HLAMismatchesCount),
	}
	categorical = map[string]string{
		"organ_type":           string(row.OrganType),
		"donor_blood_type":     string(row.DonorBloodType),
		"recipient_blood_type": string(row.RecipientBloodType),
	}
	return numeric, categorical
}

// Encode transforms a feature row into the model's input vector: numerics
// standardized with the fitted scaler, categoricals one-hot encoded over the
// fitted vocabulary. Unknown categories encode as all zeros, mirroring the
// training transform's unknown handling.
func (a *Artifact) Encode(row *domain.FeatureRow) ([]float64, error) {
	if row == nil {
		return nil, fmt.Errorf("feature row is nil")
	}

	numeric, categorical := featureValues(row)
	vector := make([]float64, 0, a.EncodedWidth())

	for _, name := range a.NumericFeatures {
		value, ok := numeric[name]
		if !ok {
			return nil, fmt.Errorf("feature row missing numeric feature %q", name)
		}
		params := a.Scaler[name]
		vector = append(vector, (value-params.Mean)/params.Std)
	}

	for _, name := range a.CategoricalFeatures {
		value, ok := categorical[name]
		if !ok {
			return nil, fmt.Errorf("feature row missing categorical feature %q", name)
		}
		for _, category := range a.Vocabulary[name] {
			if category == value {
				vector = append(vector, 1)
			} else {
				vector = append(vector, 0)
			}
		}
	}

	return vector, nil
}
