package domain

import (
	"context"
)

// ViabilityEstimator predicts one-year graft survival probability from a
// fixed-schema feature row. Implementations wrap the trained classifier and
// its paired preprocessing transform; tests substitute deterministic stubs.
type ViabilityEstimator interface {
	PredictSurvival(ctx context.Context, row *FeatureRow) (float64, error)
	MaxColdSurvivalHours(organType OrganType, donorAge float64, donorComorbidities int) float64
	Available() bool
}

// DistanceCalculator computes geodesic distance in kilometers between two
// coordinate pairs. Implementations return an unreachable sentinel
// (math.Inf) rather than an error crash when coordinates are unusable.
type DistanceCalculator interface {
	DistanceKm(lat1, lon1, lat2, lon2 float64) (float64, error)
}

// MatchStore persists ranked match runs for the audit trail. Persistence
// failures must never fail the ranking response.
type MatchStore interface {
	SaveRun(ctx context.Context, run *MatchRun) error
	GetRun(ctx context.Context, id string) (*MatchRun, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*MatchRun, error)
	Close() error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetModelConfig() *ModelConfig
	GetStorageConfig() *StorageConfig
	Validate() error
}
