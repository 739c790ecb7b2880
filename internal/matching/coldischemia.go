package matching

import (
	"github.com/organ-match-server/internal/domain"
)

// defaultMaxColdIschemiaHours applies to unrecognized organ types.
const defaultMaxColdIschemiaHours = 24.0

// organMaxColdIschemia holds organ-specific preservation limits in hours.
var organMaxColdIschemia = map[domain.OrganType]float64{
	domain.Kidney:    24,
	domain.Liver:     12,
	domain.Heart:     6,
	domain.Lung:      6,
	domain.Pancreas:  18,
	domain.Intestine: 8,
}

// MaxColdIschemiaHours returns the maximum allowable cold ischemia time for
// an organ type.
func MaxColdIschemiaHours(organType domain.OrganType) float64 {
	if hours, ok := organMaxColdIschemia[organType]; ok {
		return hours
	}
	return defaultMaxColdIschemiaHours
}

// ColdIschemiaFeasible reports whether the estimated preservation time fits
// within the organ's limit.
func ColdIschemiaFeasible(estimatedHours float64, organType domain.OrganType) bool {
	return estimatedHours <= MaxColdIschemiaHours(organType)
}

// EffectiveColdIschemiaHours resolves the hours used for scoring and
// reporting. Unknown logistics are treated as marginally infeasible (one
// hour past the limit) so they fail the gate without inventing a duration.
func EffectiveColdIschemiaHours(estimated *float64, organType domain.OrganType) float64 {
	if estimated == nil {
		return MaxColdIschemiaHours(organType) + 1.0
	}
	return *estimated
}
