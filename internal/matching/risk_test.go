package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRisk(t *testing.T) {
	tests := []struct {
		name          string
		age           float64
		comorbidities int
		want          float64
	}{
		{
			name: "newborn with no comorbidities",
			age:  0, comorbidities: 0,
			want: 0.0,
		},
		{
			name: "fifty year old healthy",
			age:  50, comorbidities: 0,
			want: 0.6 * 0.25,
		},
		{
			name: "young with two comorbidities",
			age:  20, comorbidities: 2,
			want: 0.6*0.04 + 0.4*0.4,
		},
		{
			name: "age term is quadratic",
			age:  100, comorbidities: 0,
			want: 0.6,
		},
		{
			name: "caps at one",
			age:  150, comorbidities: 10,
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Risk(tt.age, tt.comorbidities), 1e-9)
		})
	}
}

func TestRisk_MonotonicInAge(t *testing.T) {
	prev := -1.0
	for age := 0.0; age <= 100; age += 10 {
		r := Risk(age, 1)
		assert.Greater(t, r, prev, "risk should strictly increase with age at %v", age)
		prev = r
	}
}

func TestRiskFactor(t *testing.T) {
	assert.InDelta(t, 1.0, RiskFactor(0, 0), 1e-9)
	assert.InDelta(t, 0.85, RiskFactor(50, 0), 1e-9)
	assert.InDelta(t, 0.0, RiskFactor(150, 10), 1e-9)
}
