package viability

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/organ-match-server/internal/domain"
	"github.com/organ-match-server/internal/matching"
)

// ModelEstimator implements domain.ViabilityEstimator on top of a loaded
// model artifact. The artifact is shared read-only state; the estimator is
// safe for concurrent use.
type ModelEstimator struct {
	logger   *logrus.Logger
	artifact *Artifact
	cache    *PredictionCache
}

// NewModelEstimator creates an estimator from an already loaded artifact.
// The cache is optional.
func NewModelEstimator(logger *logrus.Logger, artifact *Artifact, cache *PredictionCache) *ModelEstimator {
	return &ModelEstimator{
		logger:   logger,
		artifact: artifact,
		cache:    cache,
	}
}

// LoadModelEstimator loads the model artifact from disk and wraps it in an
// estimator. Callers decide whether a load failure is fatal; the ranking
// path treats a missing model as degraded operation, not an error.
func LoadModelEstimator(logger *logrus.Logger, path string, cache *PredictionCache) (*ModelEstimator, error) {
	artifact, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"artifact":   path,
		"version":    artifact.Version,
		"trained_at": artifact.TrainedAt,
	}).Info("Viability model artifact loaded")

	return NewModelEstimator(logger, artifact, cache), nil
}

// Available reports whether the model is loaded.
func (m *ModelEstimator) Available() bool {
	return m != nil && m.artifact != nil
}

// PredictSurvival returns the probability in [0,1] that the graft survives
// one year for the given feature row.
func (m *ModelEstimator) PredictSurvival(ctx context.Context, row *domain.FeatureRow) (float64, error) {
	if !m.Available() {
		return 0, domain.ErrModelUnavailable
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if m.cache != nil {
		if prob, ok := m.cache.Get(ctx, row); ok {
			return prob, nil
		}
	}

	vector, err := m.artifact.Encode(row)
	if err != nil {
		return 0, &domain.ComputationError{Stage: "feature encoding", Cause: err}
	}

	z := m.artifact.Intercept
	for i, coef := range m.artifact.Coefficients {
		z += coef * vector[i]
	}
	prob := sigmoid(z)

	if math.IsNaN(prob) || math.IsInf(prob, 0) {
		return 0, &domain.ComputationError{Stage: "inference", Cause: fmt.Errorf("non-finite probability")}
	}

	if m.cache != nil {
		m.cache.Set(ctx, row, prob)
	}

	return prob, nil
}

// MaxColdSurvivalHours estimates how long the organ tolerates cold storage:
// the organ's policy limit reduced by donor age over 50 and by donor
// comorbidities, floored at one hour.
func (m *ModelEstimator) MaxColdSurvivalHours(organType domain.OrganType, donorAge float64, donorComorbidities int) float64 {
	base := matching.MaxColdIschemiaHours(organType)

	agePenalty := 0.0
	if donorAge > 50 {
		agePenalty = (donorAge - 50) * 0.1
	}
	comorbidityPenalty := float64(donorComorbidities) * 0.5

	duration := base - agePenalty - comorbidityPenalty
	if duration < 1.0 {
		return 1.0
	}
	return duration
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
