package domain

import (
	"time"
)

// Core Enums and Types

// OrganType represents the type of donated organ
type OrganType string

const (
	Kidney    OrganType = "Kidney"
	Liver     OrganType = "Liver"
	Heart     OrganType = "Heart"
	Lung      OrganType = "Lung"
	Pancreas  OrganType = "Pancreas"
	Intestine OrganType = "Intestine"
)

// BloodType represents an ABO/Rh blood type
type BloodType string

const (
	ONeg  BloodType = "O-"
	OPos  BloodType = "O+"
	ANeg  BloodType = "A-"
	APos  BloodType = "A+"
	BNeg  BloodType = "B-"
	BPos  BloodType = "B+"
	ABNeg BloodType = "AB-"
	ABPos BloodType = "AB+"
)

// Request/Response Models

// Organ represents a donor organ offered for matching.
// HLA alleles are ordered: locus A slot 1, locus A slot 2, locus B slot 1,
// locus B slot 2.
type Organ struct {
	OrganType          OrganType `json:"organ_type"`
	DonorAge           *float64  `json:"donor_age"`
	DonorBloodType     BloodType `json:"donor_blood_type"`
	DonorComorbidities int       `json:"donor_comorbidities"`
	DonorHLAA1         string    `json:"donor_hla_a1"`
	DonorHLAA2         string    `json:"donor_hla_a2"`
	DonorHLAB1         string    `json:"donor_hla_b1"`
	DonorHLAB2         string    `json:"donor_hla_b2"`
	DonorLocationLat   *float64  `json:"donor_location_lat"`
	DonorLocationLon   *float64  `json:"donor_location_lon"`
}

// HLAAlleles returns the donor alleles in canonical comparison order.
func (o *Organ) HLAAlleles() []string {
	return []string{o.DonorHLAA1, o.DonorHLAA2, o.DonorHLAB1, o.DonorHLAB2}
}

// RecipientCandidate represents a candidate recipient for a donor organ.
// Pointer fields distinguish absent values from zero values; required fields
// that arrive nil fail per-candidate validation, not the whole batch.
type RecipientCandidate struct {
	RecipientID            string    `json:"recipient_id,omitempty"`
	RecipientAge           *float64  `json:"recipient_age"`
	RecipientBloodType     BloodType `json:"recipient_blood_type"`
	RecipientComorbidities int       `json:"recipient_comorbidities"`
	RecipientHLAA1         *string   `json:"recipient_hla_a1"`
	RecipientHLAA2         *string   `json:"recipient_hla_a2"`
	RecipientHLAB1         *string   `json:"recipient_hla_b1"`
	RecipientHLAB2         *string   `json:"recipient_hla_b2"`
	RecipientLocationLat   *float64  `json:"recipient_location_lat"`
	RecipientLocationLon   *float64  `json:"recipient_location_lon"`
	UrgencyScore           *float64  `json:"urgency_score,omitempty"`
}

// HLAAlleles returns the recipient alleles present, in canonical order.
// Missing alleles are skipped so the mismatch counter sees the true length.
func (r *RecipientCandidate) HLAAlleles() []string {
	alleles := make([]string, 0, 4)
	for _, a := range []*string{r.RecipientHLAA1, r.RecipientHLAA2, r.RecipientHLAB1, r.RecipientHLAB2} {
		if a != nil && *a != "" {
			alleles = append(alleles, *a)
		}
	}
	return alleles
}

// LogisticsHint carries projected transport and preparation time for one
// recipient. Absence means unknown, not zero.
type LogisticsHint struct {
	EstimatedColdIschemiaHours *float64 `json:"estimated_cold_ischemia_hours"`
}

// MatchRequest is the top-level ranking request.
type MatchRequest struct {
	Organ      *Organ                   `json:"organ"`
	Recipients []RecipientCandidate     `json:"recipients"`
	Logistics  map[string]LogisticsHint `json:"logistics,omitempty"`
}

// MatchDetail is the per-candidate score breakdown.
type MatchDetail struct {
	PredictedGraftSurvivalProb float64  `json:"predicted_graft_survival_prob"`
	EstimatedColdIschemiaHours *float64 `json:"estimated_cold_ischemia_hours"`
	MaxAllowableColdIschemia   float64  `json:"max_allowable_cold_ischemia_hours"`
	HLAMismatches              int      `json:"hla_mismatches"`
	DistanceKm                 *float64 `json:"distance_km,omitempty"`
}

// MatchResult represents one ranked candidate.
type MatchResult struct {
	RecipientID string       `json:"recipient_id"`
	Score       float64      `json:"score"`
	Details     *MatchDetail `json:"details,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// MatchRun is a persisted ranking run for the audit trail.
type MatchRun struct {
	ID             string        `json:"id"`
	OrganType      OrganType     `json:"organ_type"`
	DonorBloodType BloodType     `json:"donor_blood_type"`
	CandidateCount int           `json:"candidate_count"`
	Results        []MatchResult `json:"results"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Viability Models

// FeatureRow is the fixed feature schema consumed by the viability model.
// Field order mirrors the schema the model was trained against; changing it
// without retraining is a schema mismatch.
type FeatureRow struct {
	DonorAge               float64   `json:"donor_age"`
	OrganType              OrganType `json:"organ_type"`
	DonorComorbidities     int       `json:"donor_comorbidities"`
	ColdIschemiaTimeHours  float64   `json:"cold_ischemia_time_hours"`
	DistanceKm             float64   `json:"distance_km"`
	DonorBloodType         BloodType `json:"donor_blood_type"`
	RecipientBloodType     BloodType `json:"recipient_blood_type"`
	HLAMismatchesCount     int       `json:"hla_mismatches_count"`
	RecipientAge           float64   `json:"recipient_age"`
	RecipientComorbidities int       `json:"recipient_comorbidities"`
}

// ViabilityResult is the response of a standalone viability prediction.
type ViabilityResult struct {
	GraftSurvivalProbability float64 `json:"graft_survival_probability"`
	MaxColdSurvivalHours     float64 `json:"estimated_max_cold_survival_duration_hours"`
	InputColdIschemiaHours   float64 `json:"input_cold_ischemia_time_hours"`
}

// Donor Health Models

// LifestyleFactors carries donor lifestyle inputs for health assessment.
type LifestyleFactors struct {
	Smoker             bool     `json:"smoker"`
	AlcoholConsumption string   `json:"alcohol_consumption,omitempty"`
	BMI                *float64 `json:"bmi,omitempty"`
}

// LabResults carries donor lab values; currently kidney-relevant markers.
type LabResults struct {
	Creatinine *float64 `json:"creatinine,omitempty"`
	GFR        *float64 `json:"gfr,omitempty"`
}

// DonorHealthRequest is the donor health assessment input.
type DonorHealthRequest struct {
	DonorAge           *float64          `json:"donor_age"`
	OrganType          OrganType         `json:"organ_type"`
	ComorbiditiesCount int               `json:"comorbidities_count"`
	LifestyleFactors   *LifestyleFactors `json:"lifestyle_factors,omitempty"`
	LabResults         *LabResults       `json:"lab_results,omitempty"`
}

// DonorHealthResult is the donor health assessment output.
type DonorHealthResult struct {
	DonorHealthScore float64 `json:"donor_health_score"`
}
