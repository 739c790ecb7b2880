package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/organ-match-server/internal/domain"
)

func TestMaxColdIschemiaHours(t *testing.T) {
	tests := []struct {
		organ domain.OrganType
		want  float64
	}{
		{domain.Kidney, 24},
		{domain.Liver, 12},
		{domain.Heart, 6},
		{domain.Lung, 6},
		{domain.Pancreas, 18},
		{domain.Intestine, 8},
		{domain.OrganType("Cornea"), 24},
	}

	for _, tt := range tests {
		t.Run(string(tt.organ), func(t *testing.T) {
			assert.Equal(t, tt.want, MaxColdIschemiaHours(tt.organ))
		})
	}
}

func TestColdIschemiaFeasible(t *testing.T) {
	assert.True(t, ColdIschemiaFeasible(6.0, domain.Heart), "limit itself is feasible")
	assert.False(t, ColdIschemiaFeasible(6.1, domain.Heart))
	assert.True(t, ColdIschemiaFeasible(23.9, domain.Kidney))
}

func TestEffectiveColdIschemiaHours(t *testing.T) {
	hours := 8.5
	assert.Equal(t, 8.5, EffectiveColdIschemiaHours(&hours, domain.Liver))

	// Unknown logistics land one hour past the limit so the gate rejects
	// them without inventing a duration.
	assert.Equal(t, 13.0, EffectiveColdIschemiaHours(nil, domain.Liver))
	assert.Equal(t, 25.0, EffectiveColdIschemiaHours(nil, domain.Kidney))
	assert.Equal(t, 25.0, EffectiveColdIschemiaHours(nil, domain.OrganType("Cornea")))
}
