// Package viability adapts case data into the viability model's feature
// schema and produces graft survival probability estimates.
package viability

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Canonical feature names shared between training and inference. The model
// artifact must declare exactly these, in this grouping, or loading fails:
// a schema mismatch between model and live request fields is a hard error.
var (
	numericFeatures = []string{
		"donor_age",
		"recipient_age",
		"donor_comorbidities",
		"recipient_comorbidities",
		"cold_ischemia_time_hours",
		"distance_km",
		"hla_mismatches_count",
	}
	categoricalFeatures = []string{
		"organ_type",
		"donor_blood_type",
		"recipient_blood_type",
	}
)

// ScalerParams holds the fitted standardization parameters for one numeric
// feature.
type ScalerParams struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Artifact is the versioned, trained model artifact: the preprocessing
// transform fitted at training time (scaler parameters and categorical
// vocabularies) paired with logistic-regression coefficients. It is loaded
// once at process start and treated as immutable afterwards.
type Artifact struct {
	Version             string                  `json:"version"`
	TrainedAt           time.Time               `json:"trained_at"`
	NumericFeatures     []string                `json:"numeric_features"`
	CategoricalFeatures []string                `json:"categorical_features"`
	Scaler              map[string]ScalerParams `json:"scaler"`
	Vocabulary          map[string][]string     `json:"vocabulary"`
	Intercept           float64                 `json:"intercept"`
	Coefficients        []float64               `json:"coefficients"`
}

// LoadArtifact reads and validates a model artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}

	if err := artifact.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}

	return &artifact, nil
}

// Save writes the artifact to disk, creating the directory if needed.
func (a *Artifact) Save(path string) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid artifact: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	return nil
}

// Validate checks that the artifact's schema matches the live feature
// schema and that its coefficient vector matches the encoded width.
func (a *Artifact) Validate() error {
	if !equalStrings(a.NumericFeatures, numericFeatures) {
		return fmt.Errorf("numeric feature schema mismatch: artifact %v, expected %v",
			a.NumericFeatures, numericFeatures)
	}
	if !equalStrings(a.CategoricalFeatures, categoricalFeatures) {
		return fmt.Errorf("categorical feature schema mismatch: artifact %v, expected %v",
			a.CategoricalFeatures, categoricalFeatures)
	}

	for _, name := range a.NumericFeatures {
		params, ok := a.Scaler[name]
		if !ok {
			return fmt.Errorf("missing scaler parameters for feature %q", name)
		}
		if params.Std <= 0 {
			return fmt.Errorf("non-positive scaler std for feature %q", name)
		}
	}

	width := len(a.NumericFeatures)
	for _, name := range a.CategoricalFeatures {
		vocab, ok := a.Vocabulary[name]
		if !ok || len(vocab) == 0 {
			return fmt.Errorf("missing vocabulary for feature %q", name)
		}
		width += len(vocab)
	}

	if len(a.Coefficients) != width {
		return fmt.Errorf("coefficient width %d does not match encoded feature width %d",
			len(a.Coefficients), width)
	}

	return nil
}

// EncodedWidth returns the length of the encoded feature vector.
func (a *Artifact) EncodedWidth() int {
	width := len(a.NumericFeatures)
	for _, name := range a.CategoricalFeatures {
		width += len(a.Vocabulary[name])
	}
	return width
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
