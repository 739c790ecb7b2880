package matching

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/organ-match-server/internal/domain"
)

// defaultViability is used when the model is unavailable or the cold
// ischemia time is unknown; a neutral probability rather than a penalty.
const defaultViability = 0.5

// defaultUrgencyScore applies when a caller omits urgency_score.
const defaultUrgencyScore = 0.5

// unreachableDistanceKm stands in for an unreachable distance in the
// viability feature row, which needs a finite value.
const unreachableDistanceKm = 9999.0

// Engine ranks recipient candidates for a donor organ. It is stateless
// across calls; the estimator and distance calculator are injected so tests
// can substitute deterministic stubs.
type Engine struct {
	logger    *logrus.Logger
	estimator domain.ViabilityEstimator
	distance  domain.DistanceCalculator
	weights   WeightSet
}

// NewEngine creates a new match engine.
func NewEngine(logger *logrus.Logger, estimator domain.ViabilityEstimator, distance domain.DistanceCalculator) *Engine {
	return &Engine{
		logger:    logger,
		estimator: estimator,
		distance:  distance,
		weights:   DefaultWeights(),
	}
}

// Score computes the composite match score in [0,1] for one organ/recipient
// pair. Blood incompatibility and cold-ischemia infeasibility are hard
// gates: they force 0.0 regardless of the weighted factors.
func (e *Engine) Score(organ *domain.Organ, recipient *domain.RecipientCandidate, graftSurvivalProb, estimatedColdIschemiaHours, maxAllowableColdIschemia float64) float64 {
	if !BloodCompatible(organ.DonorBloodType, recipient.RecipientBloodType) {
		return 0.0
	}
	if estimatedColdIschemiaHours > maxAllowableColdIschemia {
		return 0.0
	}

	hlaFactor := HLAFactor(HLAMismatchCount(organ.HLAAlleles(), recipient.HLAAlleles()))
	donorRiskFactor := RiskFactor(derefOrZero(organ.DonorAge), organ.DonorComorbidities)
	recipientRiskFactor := RiskFactor(derefOrZero(recipient.RecipientAge), recipient.RecipientComorbidities)
	distFactor := DistanceFactor(e.distanceKm(organ, recipient))
	urgency := defaultUrgency(recipient.UrgencyScore)

	raw := e.weights.HLA*hlaFactor +
		e.weights.DonorRisk*donorRiskFactor +
		e.weights.RecipientRisk*recipientRiskFactor +
		e.weights.Distance*distFactor +
		e.weights.GraftViability*graftSurvivalProb +
		e.weights.RecipientUrgency*urgency

	return clamp01(e.weights.Normalize(raw))
}

// RankCandidates validates, scores and ranks every recipient for the given
// organ. Candidates with missing required fields are reported with score 0.0
// and an error message, never silently dropped. Results are sorted by score
// descending; ties keep input order.
func (e *Engine) RankCandidates(ctx context.Context, req *domain.MatchRequest) ([]domain.MatchResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	organ := req.Organ
	maxCIT := MaxColdIschemiaHours(organ.OrganType)
	results := make([]domain.MatchResult, 0, len(req.Recipients))

	for i := range req.Recipients {
		recipient := &req.Recipients[i]
		recipientID := resolveRecipientID(recipient)

		if missing := missingRecipientFields(recipient); len(missing) > 0 {
			vErr := domain.NewMissingFieldsError(missing)
			e.logger.WithFields(logrus.Fields{
				"recipient_id": recipientID,
				"fields":       missing,
			}).Warn("Recipient failed validation, reporting with zero score")
			results = append(results, domain.MatchResult{
				RecipientID: recipientID,
				Score:       0.0,
				Error:       vErr.Error(),
			})
			continue
		}

		estimatedCIT := resolveColdIschemia(req.Logistics, recipientID)
		effectiveCIT := EffectiveColdIschemiaHours(estimatedCIT, organ.OrganType)
		mismatches := HLAMismatchCount(organ.HLAAlleles(), recipient.HLAAlleles())
		distKm := e.distanceKm(organ, recipient)

		prob := e.predictViability(ctx, organ, recipient, recipientID, estimatedCIT, mismatches, distKm)
		score := e.Score(organ, recipient, prob, effectiveCIT, maxCIT)

		detail := &domain.MatchDetail{
			PredictedGraftSurvivalProb: prob,
			EstimatedColdIschemiaHours: estimatedCIT,
			MaxAllowableColdIschemia:   maxCIT,
			HLAMismatches:              mismatches,
		}
		if !math.IsInf(distKm, 1) {
			detail.DistanceKm = &distKm
		}

		results = append(results, domain.MatchResult{
			RecipientID: recipientID,
			Score:       score,
			Details:     detail,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	e.logger.WithFields(logrus.Fields{
		"organ_type": organ.OrganType,
		"candidates": len(results),
	}).Info("Candidate ranking completed")

	return results, nil
}

// predictViability obtains a graft survival probability for one candidate,
// containing failures per the degradation policy: unknown logistics or an
// unavailable model fall back to the neutral default, per-candidate feature
// failures are penalized with 0.0.
func (e *Engine) predictViability(ctx context.Context, organ *domain.Organ, recipient *domain.RecipientCandidate, recipientID string, estimatedCIT *float64, mismatches int, distKm float64) float64 {
	if estimatedCIT == nil {
		e.logger.WithField("recipient_id", recipientID).Warn("Cold ischemia time unknown, using default viability")
		return defaultViability
	}
	if e.estimator == nil || !e.estimator.Available() {
		e.logger.WithField("recipient_id", recipientID).Warn("Viability model not available, using default viability")
		return defaultViability
	}

	featureDist := distKm
	if math.IsInf(featureDist, 1) {
		featureDist = unreachableDistanceKm
	}

	row := &domain.FeatureRow{
		DonorAge:               derefOrZero(organ.DonorAge),
		OrganType:              organ.OrganType,
		DonorComorbidities:     organ.DonorComorbidities,
		ColdIschemiaTimeHours:  *estimatedCIT,
		DistanceKm:             featureDist,
		DonorBloodType:         organ.DonorBloodType,
		RecipientBloodType:     recipient.RecipientBloodType,
		HLAMismatchesCount:     mismatches,
		RecipientAge:           derefOrZero(recipient.RecipientAge),
		RecipientComorbidities: recipient.RecipientComorbidities,
	}

	prob, err := e.estimator.PredictSurvival(ctx, row)
	if err != nil {
		if errors.Is(err, domain.ErrModelUnavailable) {
			e.logger.WithError(err).WithField("recipient_id", recipientID).Warn("Viability model degraded, using default viability")
			return defaultViability
		}
		e.logger.WithError(err).WithField("recipient_id", recipientID).Error("Viability prediction failed, penalizing candidate")
		return 0.0
	}
	return prob
}

// distanceKm computes donor-to-recipient distance, mapping any failure or
// missing coordinate to unreachable (+Inf) rather than propagating a crash.
func (e *Engine) distanceKm(organ *domain.Organ, recipient *domain.RecipientCandidate) float64 {
	if organ.DonorLocationLat == nil || organ.DonorLocationLon == nil ||
		recipient.RecipientLocationLat == nil || recipient.RecipientLocationLon == nil {
		return math.Inf(1)
	}
	km, err := e.distance.DistanceKm(
		*organ.DonorLocationLat, *organ.DonorLocationLon,
		*recipient.RecipientLocationLat, *recipient.RecipientLocationLon,
	)
	if err != nil {
		e.logger.WithError(err).Warn("Distance computation failed, treating as unreachable")
		return math.Inf(1)
	}
	return km
}

// validateRequest checks the top-level request shape. A malformed request
// rejects the whole batch with no partial output.
func validateRequest(req *domain.MatchRequest) error {
	if req == nil || req.Organ == nil {
		return domain.NewConfigurationError("'organ' is required")
	}
	if req.Recipients == nil {
		return domain.NewConfigurationError("'recipients' is required")
	}
	if missing := missingOrganFields(req.Organ); len(missing) > 0 {
		return domain.NewConfigurationError("missing fields in organ data: %v", missing)
	}
	return nil
}

func missingOrganFields(organ *domain.Organ) []string {
	var missing []string
	if organ.OrganType == "" {
		missing = append(missing, "organ_type")
	}
	if organ.DonorAge == nil {
		missing = append(missing, "donor_age")
	}
	if organ.DonorBloodType == "" {
		missing = append(missing, "donor_blood_type")
	}
	if organ.DonorHLAA1 == "" {
		missing = append(missing, "donor_hla_a1")
	}
	if organ.DonorHLAA2 == "" {
		missing = append(missing, "donor_hla_a2")
	}
	if organ.DonorHLAB1 == "" {
		missing = append(missing, "donor_hla_b1")
	}
	if organ.DonorHLAB2 == "" {
		missing = append(missing, "donor_hla_b2")
	}
	if organ.DonorLocationLat == nil {
		missing = append(missing, "donor_location_lat")
	}
	if organ.DonorLocationLon == nil {
		missing = append(missing, "donor_location_lon")
	}
	return missing
}

func missingRecipientFields(r *domain.RecipientCandidate) []string {
	var missing []string
	if r.RecipientAge == nil {
		missing = append(missing, "recipient_age")
	}
	if r.RecipientBloodType == "" {
		missing = append(missing, "recipient_blood_type")
	}
	if r.RecipientHLAA1 == nil {
		missing = append(missing, "recipient_hla_a1")
	}
	if r.RecipientHLAA2 == nil {
		missing = append(missing, "recipient_hla_a2")
	}
	if r.RecipientHLAB1 == nil {
		missing = append(missing, "recipient_hla_b1")
	}
	if r.RecipientHLAB2 == nil {
		missing = append(missing, "recipient_hla_b2")
	}
	if r.RecipientLocationLat == nil {
		missing = append(missing, "recipient_location_lat")
	}
	if r.RecipientLocationLon == nil {
		missing = append(missing, "recipient_location_lon")
	}
	return missing
}

// resolveColdIschemia resolves the estimated cold ischemia hours from the
// logistics hints. Absent or negative values are treated as unknown.
func resolveColdIschemia(logistics map[string]domain.LogisticsHint, recipientID string) *float64 {
	hint, ok := logistics[recipientID]
	if !ok || hint.EstimatedColdIschemiaHours == nil {
		return nil
	}
	if *hint.EstimatedColdIschemiaHours < 0 {
		return nil
	}
	return hint.EstimatedColdIschemiaHours
}

func resolveRecipientID(r *domain.RecipientCandidate) string {
	if r.RecipientID != "" {
		return r.RecipientID
	}
	return "recipient-" + uuid.NewString()[:8]
}

func defaultUrgency(urgency *float64) float64 {
	if urgency == nil {
		return defaultUrgencyScore
	}
	return clamp01(*urgency)
}

func derefOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
