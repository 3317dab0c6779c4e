package algo

// MaxProject returns the elementwise maximum over the given planes.
// A single-plane window returns a copy of that plane unchanged.
func MaxProject(planes [][]uint16) []uint16 {
	if len(planes) == 0 {
		return nil
	}
	out := make([]uint16, len(planes[0]))
	copy(out, planes[0])
	for _, plane := range planes[1:] {
		for i, v := range plane {
			if v > out[i] {
				out[i] = v
			}
		}
	}
	return out
}

// MeanProject returns the elementwise mean over the given planes.
// Accumulation happens in uint64 and division truncates, so a window of
// constant value k reduces to exactly k.
func MeanProject(planes [][]uint16) []uint16 {
	if len(planes) == 0 {
		return nil
	}
	n := uint64(len(planes))
	sums := make([]uint64, len(planes[0]))
	for _, plane := range planes {
		for i, v := range plane {
			sums[i] += uint64(v)
		}
	}
	out := make([]uint16, len(sums))
	for i, s := range sums {
		out[i] = uint16(s / n)
	}
	return out
}
