package matching

// maxHLAMismatches is the number of compared allele slots (A1, A2, B1, B2).
const maxHLAMismatches = 4

// HLAMismatchCount compares donor and recipient allele sequences positionally
// (locus A slot 1 vs locus A slot 1, and so on) and counts unequal pairs.
// Sequences of different lengths return the recipient sequence length, the
// maximal penalty: malformed HLA data must never pass as a perfect match.
func HLAMismatchCount(donor, recipient []string) int {
	if len(donor) != len(recipient) {
		return len(recipient)
	}
	mismatches := 0
	for i := range donor {
		if donor[i] != recipient[i] {
			mismatches++
		}
	}
	return mismatches
}

// HLAFactor normalizes a mismatch count into a [0,1] desirability factor,
// 1.0 for a perfect match and 0.0 at four or more mismatches.
func HLAFactor(mismatches int) float64 {
	factor := 1.0 - float64(mismatches)/float64(maxHLAMismatches)
	if factor < 0 {
		return 0
	}
	return factor
}
