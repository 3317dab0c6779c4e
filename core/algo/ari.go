package algo

import "fmt"

// AdjustedRandIndex computes the chance-corrected agreement between two label
// maps over the same pixels. Labels are compared by partition only, so
// renumbering either map does not change the score. Identical partitions score
// 1.0, independent ones hover near 0, and the score can go negative for
// worse-than-chance agreement.
//
// When both partitions are degenerate (all one cluster, or all singletons) the
// adjustment denominator is 0 and the score is defined as 1.0, matching
// scikit-learn's adjusted_rand_score.
func AdjustedRandIndex(ref, seg []uint32) (float64, error) {
	if len(ref) != len(seg) {
		return 0, fmt.Errorf("label map size mismatch: %d vs %d", len(ref), len(seg))
	}
	if len(ref) == 0 {
		return 0, fmt.Errorf("label maps are empty")
	}

	// Contingency table and its marginals, keyed by (ref, seg) label pair.
	joint := make(map[uint64]int64)
	refSums := make(map[uint32]int64)
	segSums := make(map[uint32]int64)
	for i := range ref {
		joint[uint64(ref[i])<<32|uint64(seg[i])]++
		refSums[ref[i]]++
		segSums[seg[i]]++
	}

	comb2 := func(n int64) float64 {
		return float64(n) * float64(n-1) / 2.0
	}

	var index, refPairs, segPairs float64
	for _, n := range joint {
		index += comb2(n)
	}
	for _, n := range refSums {
		refPairs += comb2(n)
	}
	for _, n := range segSums {
		segPairs += comb2(n)
	}

	total := comb2(int64(len(ref)))
	if total == 0 {
		// Single pixel: both partitions are trivially identical.
		return 1.0, nil
	}
	expected := refPairs * segPairs / total
	maxIndex := (refPairs + segPairs) / 2.0

	if maxIndex == expected {
		return 1.0, nil
	}
	return (index - expected) / (maxIndex - expected), nil
}
