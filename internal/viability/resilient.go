package viability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/organ-match-server/internal/domain"
)

const (
	defaultInferenceTimeout = 2 * time.Second
	defaultBreakerTimeout   = 30 * time.Second
	defaultBreakerFailures  = 5
)

// ResilientEstimator wraps an estimator with a per-inference timeout and a
// circuit breaker. When the breaker is open, predictions report the model as
// unavailable so ranking degrades to the neutral default instead of paying
// the failure latency for every candidate.
type ResilientEstimator struct {
	logger  *logrus.Logger
	inner   domain.ViabilityEstimator
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

// NewResilientEstimator wraps the inner estimator per model configuration.
func NewResilientEstimator(logger *logrus.Logger, inner domain.ViabilityEstimator, cfg domain.ModelConfig) *ResilientEstimator {
	timeout := cfg.InferenceTimeout
	if timeout <= 0 {
		timeout = defaultInferenceTimeout
	}

	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = defaultBreakerTimeout
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = defaultBreakerFailures
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "viability-model",
		Timeout: breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Viability model circuit breaker state changed")
		},
	})

	return &ResilientEstimator{
		logger:  logger,
		inner:   inner,
		breaker: breaker,
		timeout: timeout,
	}
}

// Available delegates to the wrapped estimator.
func (r *ResilientEstimator) Available() bool {
	return r.inner != nil && r.inner.Available()
}

// PredictSurvival runs the wrapped prediction under the breaker with a
// bounded inference time.
func (r *ResilientEstimator) PredictSurvival(ctx context.Context, row *domain.FeatureRow) (float64, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		inferCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return r.inner.PredictSurvival(inferCtx, row)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, fmt.Errorf("%w: circuit breaker open", domain.ErrModelUnavailable)
		}
		return 0, err
	}
	return result.(float64), nil
}

// MaxColdSurvivalHours delegates to the wrapped estimator; the duration
// heuristic is pure computation and needs no protection.
func (r *ResilientEstimator) MaxColdSurvivalHours(organType domain.OrganType, donorAge float64, donorComorbidities int) float64 {
	return r.inner.MaxColdSurvivalHours(organType, donorAge, donorComorbidities)
}
