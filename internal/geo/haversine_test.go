package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineCalculator_DistanceKm(t *testing.T) {
	calc := NewHaversineCalculator()

	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 40.7128, lon1: -74.0060, lat2: 40.7128, lon2: -74.0060,
			want: 0, tolerance: 1e-9,
		},
		{
			name: "New York to Los Angeles",
			lat1: 40.7128, lon1: -74.0060, lat2: 34.0522, lon2: -118.2437,
			want: 3936, tolerance: 15,
		},
		{
			name: "London to Paris",
			lat1: 51.5074, lon1: -0.1278, lat2: 48.8566, lon2: 2.3522,
			want: 344, tolerance: 5,
		},
		{
			name: "pole to pole",
			lat1: 90, lon1: 0, lat2: -90, lon2: 0,
			want: math.Pi * 6371, tolerance: 1,
		},
		{
			name: "antimeridian crossing",
			lat1: 0, lon1: 179.5, lat2: 0, lon2: -179.5,
			want: 111.19, tolerance: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tt.tolerance)
		})
	}
}

func TestHaversineCalculator_InvalidCoordinates(t *testing.T) {
	calc := NewHaversineCalculator()

	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{name: "latitude over 90", lat1: 91, lon1: 0, lat2: 0, lon2: 0},
		{name: "latitude under -90", lat1: 0, lon1: 0, lat2: -90.5, lon2: 0},
		{name: "longitude over 180", lat1: 0, lon1: 181, lat2: 0, lon2: 0},
		{name: "NaN coordinate", lat1: math.NaN(), lon1: 0, lat2: 0, lon2: 0},
		{name: "infinite coordinate", lat1: 0, lon1: math.Inf(1), lat2: 0, lon2: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.Error(t, err)
		})
	}
}
