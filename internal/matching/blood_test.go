package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/organ-match-server/internal/domain"
)

func TestBloodCompatible(t *testing.T) {
	tests := []struct {
		name      string
		donor     domain.BloodType
		recipient domain.BloodType
		want      bool
	}{
		{
			name:      "O- is universal donor",
			donor:     domain.ONeg,
			recipient: domain.ABPos,
			want:      true,
		},
		{
			name:      "AB+ is universal recipient",
			donor:     domain.BPos,
			recipient: domain.ABPos,
			want:      true,
		},
		{
			name:      "identical types are compatible",
			donor:     domain.APos,
			recipient: domain.APos,
			want:      true,
		},
		{
			name:      "Rh positive cannot give to Rh negative",
			donor:     domain.OPos,
			recipient: domain.ONeg,
			want:      false,
		},
		{
			name:      "B- cannot give to O+",
			donor:     domain.BNeg,
			recipient: domain.OPos,
			want:      false,
		},
		{
			name:      "A- gives to AB-",
			donor:     domain.ANeg,
			recipient: domain.ABNeg,
			want:      true,
		},
		{
			name:      "AB+ only gives to AB+",
			donor:     domain.ABPos,
			recipient: domain.APos,
			want:      false,
		},
		{
			name:      "unknown donor type fails closed",
			donor:     domain.BloodType("C+"),
			recipient: domain.ABPos,
			want:      false,
		},
		{
			name:      "unknown recipient type fails closed",
			donor:     domain.ONeg,
			recipient: domain.BloodType("o-"),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BloodCompatible(tt.donor, tt.recipient))
		})
	}
}

func TestBloodCompatible_ONegReachesAll(t *testing.T) {
	all := []domain.BloodType{
		domain.ONeg, domain.OPos, domain.ANeg, domain.APos,
		domain.BNeg, domain.BPos, domain.ABNeg, domain.ABPos,
	}
	for _, recipient := range all {
		assert.True(t, BloodCompatible(domain.ONeg, recipient), "O- should give to %s", recipient)
	}
}
