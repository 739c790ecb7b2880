package viability

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/organ-match-server/internal/domain"
)

// FitOptions controls logistic-regression fitting.
type FitOptions struct {
	Version      string
	Epochs       int
	LearningRate float64
}

// Fit fits the preprocessing transform (scaler statistics and categorical
// vocabularies) and logistic-regression coefficients on labeled feature
// rows, producing a model artifact. Tuning and evaluation are out of scope;
// this exists so the artifact format is produced and consumed end to end.
func Fit(rows []domain.FeatureRow, labels []int, opts FitOptions) (*Artifact, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no training rows")
	}
	if len(rows) != len(labels) {
		return nil, fmt.Errorf("rows/labels length mismatch: %d vs %d", len(rows), len(labels))
	}

	epochs := opts.Epochs
	if epochs <= 0 {
		epochs = 200
	}
	rate := opts.LearningRate
	if rate <= 0 {
		rate = 0.1
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	artifact := &Artifact{
		Version:             version,
		TrainedAt:           time.Now().UTC(),
		NumericFeatures:     numericFeatures,
		CategoricalFeatures: categoricalFeatures,
		Scaler:              fitScaler(rows),
		Vocabulary:          fitVocabulary(rows),
	}
	artifact.Coefficients = make([]float64, artifact.EncodedWidth())

	// Encode once up front; gradient descent then iterates over vectors.
	vectors := make([][]float64, len(rows))
	for i := range rows {
		vector, err := artifact.Encode(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode training row %d: %w", i, err)
		}
		vectors[i] = vector
	}

	n := float64(len(vectors))
	for epoch := 0; epoch < epochs; epoch++ {
		gradIntercept := 0.0
		grad := make([]float64, len(artifact.Coefficients))

		for i, vector := range vectors {
			z := artifact.Intercept
			for j, coef := range artifact.Coefficients {
				z += coef * vector[j]
			}
			residual := sigmoid(z) - float64(labels[i])

			gradIntercept += residual
			for j, v := range vector {
				grad[j] += residual * v
			}
		}

		artifact.Intercept -= rate * gradIntercept / n
		for j := range artifact.Coefficients {
			artifact.Coefficients[j] -= rate * grad[j] / n
		}
	}

	if err := artifact.Validate(); err != nil {
		return nil, fmt.Errorf("fitted artifact failed validation: %w", err)
	}
	return artifact, nil
}

func fitScaler(rows []domain.FeatureRow) map[string]ScalerParams {
	sums := make(map[string]float64)
	for i := range rows {
		numeric, _ := featureValues(&rows[i])
		for name, v := range numeric {
			sums[name] += v
		}
	}

	n := float64(len(rows))
	scaler := make(map[string]ScalerParams, len(numericFeatures))
	for _, name := range numericFeatures {
		mean := sums[name] / n
		variance := 0.0
		for i := range rows {
			numeric, _ := featureValues(&rows[i])
			d := numeric[name] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / n)
		if std == 0 {
			std = 1 // constant feature: pass through unscaled
		}
		scaler[name] = ScalerParams{Mean: mean, Std: std}
	}
	return scaler
}

func fitVocabulary(rows []domain.FeatureRow) map[string][]string {
	seen := make(map[string]map[string]bool, len(categoricalFeatures))
	for _, name := range categoricalFeatures {
		seen[name] = make(map[string]bool)
	}
	for i := range rows {
		_, categorical := featureValues(&rows[i])
		for name, v := range categorical {
			seen[name][v] = true
		}
	}

	vocab := make(map[string][]string, len(categoricalFeatures))
	for _, name := range categoricalFeatures {
		categories := make([]string, 0, len(seen[name]))
		for v := range seen[name] {
			categories = append(categories, v)
		}
		sort.Strings(categories)
		vocab[name] = categories
	}
	return vocab
}
