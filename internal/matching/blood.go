package matching

import (
	"github.com/organ-match-server/internal/domain"
)

// bloodCompatibility maps each donor blood type to the recipient types it can
// give to. O- is the universal donor, AB+ the universal recipient.
var bloodCompatibility = map[domain.BloodType][]domain.BloodType{
	domain.ONeg:  {domain.ONeg, domain.OPos, domain.ANeg, domain.APos, domain.BNeg, domain.BPos, domain.ABNeg, domain.ABPos},
	domain.OPos:  {domain.OPos, domain.APos, domain.BPos, domain.ABPos},
	domain.ANeg:  {domain.ANeg, domain.APos, domain.ABNeg, domain.ABPos},
	domain.APos:  {domain.APos, domain.ABPos},
	domain.BNeg:  {domain.BNeg, domain.BPos, domain.ABNeg, domain.ABPos},
	domain.BPos:  {domain.BPos, domain.ABPos},
	domain.ABNeg: {domain.ABNeg, domain.ABPos},
	domain.ABPos: {domain.ABPos},
}

// BloodCompatible reports whether a donor of the given type can give to the
// recipient type. Unknown type strings are incompatible: the gate fails
// closed rather than letting malformed data through.
func BloodCompatible(donor, recipient domain.BloodType) bool {
	recipients, ok := bloodCompatibility[donor]
	if !ok {
		return false
	}
	for _, r := range recipients {
		if r == recipient {
			return true
		}
	}
	return false
}
